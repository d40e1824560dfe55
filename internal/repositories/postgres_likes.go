package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/viewtube/backend/internal/db"
	"github.com/viewtube/backend/internal/models"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for the
// polymorphic like edge.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle deletes an existing (user, kind, target) edge, or inserts one when
// absent. The unique index on the triple is the arbiter for concurrent
// toggles; a lost insert race surfaces as ErrConflict.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, userID string, kind models.LikeTargetKind, targetID string) (*models.Like, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM likes
        WHERE user_id = $1 AND target_kind = $2 AND target_id = $3
    `, userID, string(kind), targetID)
	if err != nil {
		return nil, fmt.Errorf("delete like: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil, nil
	}

	like := models.Like{
		ID:         uuid.NewString(),
		UserID:     userID,
		TargetKind: kind,
		TargetID:   targetID,
		CreatedAt:  time.Now().UTC(),
	}

	_, err = conn.Exec(ctx, `
        INSERT INTO likes (id, user_id, target_kind, target_id, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, like.ID, like.UserID, string(like.TargetKind), like.TargetID, like.CreatedAt)
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("insert like: %w", err)
	}

	return &like, nil
}

// LikedVideos returns the user's liked videos with summaries, newest first.
func (r *PostgresLikeRepository) LikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT l.id, l.user_id, l.target_id, l.created_at,
               v.id, v.title, v.thumbnail_url, v.duration, v.views
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        WHERE l.user_id = $1 AND l.target_kind = 'video'
        ORDER BY l.created_at DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	var liked []models.LikedVideo
	for rows.Next() {
		entry := models.LikedVideo{Like: models.Like{TargetKind: models.LikeTargetVideo}}
		if err := rows.Scan(&entry.Like.ID, &entry.Like.UserID, &entry.Like.TargetID, &entry.Like.CreatedAt,
			&entry.Video.ID, &entry.Video.Title, &entry.Video.ThumbnailURL,
			&entry.Video.Duration, &entry.Video.Views); err != nil {
			return nil, fmt.Errorf("scan liked video: %w", err)
		}
		liked = append(liked, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked videos: %w", err)
	}

	return liked, nil
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)
