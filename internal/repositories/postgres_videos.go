package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/viewtube/backend/internal/db"
	"github.com/viewtube/backend/internal/models"
)

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

const videoColumns = `id, owner_id, title, description, video_url, thumbnail_url, duration, views, published, created_at, updated_at`

// sortColumns whitelists user-selectable sort keys against the schema.
var sortColumns = map[string]string{
	"createdAt":  "created_at",
	"created_at": "created_at",
	"views":      "views",
	"duration":   "duration",
	"title":      "title",
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description,
		&video.VideoURL, &video.ThumbnailURL, &video.Duration, &video.Views,
		&video.Published, &video.CreatedAt, &video.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("scan video: %w", err)
	}
	return video, nil
}

// Create persists a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, video_url, thumbnail_url, duration, views, published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, video.ID, video.OwnerID, video.Title, video.Description, video.VideoURL,
		video.ThumbnailURL, video.Duration, video.Views, video.Published,
		video.CreatedAt, video.UpdatedAt)
	if err != nil {
		if mapped := mapPgError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// FindByID fetches a video regardless of publish state.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return scanVideo(conn.QueryRow(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE id = $1
    `, id))
}

// List returns published videos matching the params plus the total count for
// pagination.
func (r *PostgresVideoRepository) List(ctx context.Context, params ListVideosParams) ([]models.Video, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	where := []string{"published = TRUE"}
	args := []any{}

	if params.Query != "" {
		args = append(args, "%"+params.Query+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
	}
	if params.OwnerID != "" {
		args = append(args, params.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}

	filter := strings.Join(where, " AND ")

	sortCol, ok := sortColumns[params.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(params.SortType, "asc") {
		direction = "ASC"
	}

	var total int64
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM videos WHERE `+filter, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
        SELECT %s
        FROM videos
        WHERE %s
        ORDER BY %s %s
        LIMIT $%d OFFSET $%d
    `, videoColumns, filter, sortCol, direction, len(args)-1, len(args))

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	videos, err := collectVideos(rows)
	if err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

// UpdateOwned applies the non-nil update fields to a video owned by ownerID.
func (r *PostgresVideoRepository) UpdateOwned(ctx context.Context, id, ownerID string, update VideoUpdate) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return scanVideo(conn.QueryRow(ctx, `
        UPDATE videos
        SET title = COALESCE($3, title),
            description = COALESCE($4, description),
            thumbnail_url = COALESCE($5, thumbnail_url),
            updated_at = $6
        WHERE id = $1 AND owner_id = $2
        RETURNING `+videoColumns+`
    `, id, ownerID, update.Title, update.Description, update.ThumbnailURL, time.Now().UTC()))
}

// DeleteOwned removes a video owned by ownerID and returns the deleted row so
// the caller can clean up its remote assets.
func (r *PostgresVideoRepository) DeleteOwned(ctx context.Context, id, ownerID string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return scanVideo(conn.QueryRow(ctx, `
        DELETE FROM videos
        WHERE id = $1 AND owner_id = $2
        RETURNING `+videoColumns+`
    `, id, ownerID))
}

// TogglePublishOwned flips the publish flag on a video owned by ownerID.
func (r *PostgresVideoRepository) TogglePublishOwned(ctx context.Context, id, ownerID string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return scanVideo(conn.QueryRow(ctx, `
        UPDATE videos
        SET published = NOT published, updated_at = $3
        WHERE id = $1 AND owner_id = $2
        RETURNING `+videoColumns+`
    `, id, ownerID, time.Now().UTC()))
}

// IncrementViews bumps the view counter. Any caller may do this.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return scanVideo(conn.QueryRow(ctx, `
        UPDATE videos
        SET views = views + 1
        WHERE id = $1
        RETURNING `+videoColumns+`
    `, id))
}

// ChannelStats aggregates the channel's totals for the dashboard.
func (r *PostgresVideoRepository) ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT
            (SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1),
            (SELECT COUNT(*) FROM videos WHERE owner_id = $1),
            (SELECT COALESCE(SUM(views), 0) FROM videos WHERE owner_id = $1),
            (SELECT COUNT(*)
             FROM likes l
             JOIN videos v ON v.id = l.target_id
             WHERE l.target_kind = 'video' AND v.owner_id = $1)
    `, channelID)

	var stats models.ChannelStats
	if err := row.Scan(&stats.TotalSubscribers, &stats.TotalVideos, &stats.TotalViews, &stats.TotalLikes); err != nil {
		return models.ChannelStats{}, fmt.Errorf("select channel stats: %w", err)
	}

	return stats, nil
}

// ChannelVideos lists the channel's videos for the owner dashboard, drafts
// included, newest first.
func (r *PostgresVideoRepository) ChannelVideos(ctx context.Context, channelID string, limit, offset int) ([]models.Video, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var total int64
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM videos WHERE owner_id = $1
    `, channelID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count channel videos: %w", err)
	}

	rows, err := conn.Query(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE owner_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `, channelID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query channel videos: %w", err)
	}
	defer rows.Close()

	videos, err := collectVideos(rows)
	if err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

func collectVideos(rows pgx.Rows) ([]models.Video, error) {
	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
