package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viewtube/backend/internal/db"
	"github.com/viewtube/backend/internal/models"
)

// PostgresPlaylistRepository provides PostgreSQL-backed persistence for
// playlists and their video memberships.
type PostgresPlaylistRepository struct {
	pool db.Pool
}

// NewPostgresPlaylistRepository constructs a playlist repository backed by PostgreSQL.
func NewPostgresPlaylistRepository(pool db.Pool) *PostgresPlaylistRepository {
	return &PostgresPlaylistRepository{pool: pool}
}

const playlistColumns = `id, owner_id, name, description, created_at, updated_at`

func scanPlaylist(row pgx.Row) (models.Playlist, error) {
	var playlist models.Playlist
	err := row.Scan(&playlist.ID, &playlist.OwnerID, &playlist.Name,
		&playlist.Description, &playlist.CreatedAt, &playlist.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("scan playlist: %w", err)
	}
	return playlist, nil
}

// Create persists a new playlist.
func (r *PostgresPlaylistRepository) Create(ctx context.Context, playlist models.Playlist) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO playlists (id, owner_id, name, description, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, playlist.ID, playlist.OwnerID, playlist.Name, playlist.Description,
		playlist.CreatedAt, playlist.UpdatedAt)
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert playlist: %w", err)
	}

	return nil
}

// ListByOwner returns a user's playlists, newest first, without memberships.
func (r *PostgresPlaylistRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+playlistColumns+`
        FROM playlists
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}

	return playlists, nil
}

// FindOwned fetches a playlist owned by ownerID together with its videos in
// insertion order.
func (r *PostgresPlaylistRepository) FindOwned(ctx context.Context, id, ownerID string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	playlist, err := scanPlaylist(conn.QueryRow(ctx, `
        SELECT `+playlistColumns+`
        FROM playlists
        WHERE id = $1 AND owner_id = $2
    `, id, ownerID))
	if err != nil {
		return models.Playlist{}, err
	}

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.thumbnail_url, v.duration, v.views
        FROM playlist_videos pv
        JOIN videos v ON v.id = pv.video_id
        WHERE pv.playlist_id = $1
        ORDER BY pv.added_at
    `, id)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("query playlist videos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var video models.VideoSummary
		if err := rows.Scan(&video.ID, &video.Title, &video.ThumbnailURL,
			&video.Duration, &video.Views); err != nil {
			return models.Playlist{}, fmt.Errorf("scan playlist video: %w", err)
		}
		playlist.Videos = append(playlist.Videos, video)
	}
	if err := rows.Err(); err != nil {
		return models.Playlist{}, fmt.Errorf("iterate playlist videos: %w", err)
	}

	return playlist, nil
}

// UpdateOwned renames a playlist owned by ownerID.
func (r *PostgresPlaylistRepository) UpdateOwned(ctx context.Context, id, ownerID, name, description string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return scanPlaylist(conn.QueryRow(ctx, `
        UPDATE playlists
        SET name = $3, description = $4, updated_at = $5
        WHERE id = $1 AND owner_id = $2
        RETURNING `+playlistColumns+`
    `, id, ownerID, name, description, time.Now().UTC()))
}

// DeleteOwned removes a playlist owned by ownerID; memberships cascade.
func (r *PostgresPlaylistRepository) DeleteOwned(ctx context.Context, id, ownerID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM playlists
        WHERE id = $1 AND owner_id = $2
    `, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AddVideo inserts a membership with set semantics: adding an already present
// video changes nothing. The playlist must be owned by ownerID.
func (r *PostgresPlaylistRepository) AddVideo(ctx context.Context, id, ownerID, videoID string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if err := r.touchOwned(ctx, conn, id, ownerID); err != nil {
		return models.Playlist{}, err
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO playlist_videos (playlist_id, video_id, added_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (playlist_id, video_id) DO NOTHING
    `, id, videoID, time.Now().UTC())
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			return models.Playlist{}, mapped
		}
		return models.Playlist{}, fmt.Errorf("insert playlist video: %w", err)
	}

	return r.FindOwned(ctx, id, ownerID)
}

// RemoveVideo deletes a membership. The playlist must be owned by ownerID;
// removing an absent video is not an error.
func (r *PostgresPlaylistRepository) RemoveVideo(ctx context.Context, id, ownerID, videoID string) (models.Playlist, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if err := r.touchOwned(ctx, conn, id, ownerID); err != nil {
		return models.Playlist{}, err
	}

	_, err = conn.Exec(ctx, `
        DELETE FROM playlist_videos
        WHERE playlist_id = $1 AND video_id = $2
    `, id, videoID)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("delete playlist video: %w", err)
	}

	return r.FindOwned(ctx, id, ownerID)
}

// touchOwned asserts ownership and refreshes updated_at in one statement.
func (r *PostgresPlaylistRepository) touchOwned(ctx context.Context, conn *pgxpool.Conn, id, ownerID string) error {
	tag, err := conn.Exec(ctx, `
        UPDATE playlists
        SET updated_at = $3
        WHERE id = $1 AND owner_id = $2
    `, id, ownerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("touch playlist: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ PlaylistRepository = (*PostgresPlaylistRepository)(nil)
