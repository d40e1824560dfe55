package app

import (
	"context"

	"github.com/viewtube/backend/internal/auth"
	"github.com/viewtube/backend/internal/config"
	"github.com/viewtube/backend/internal/db"
	"github.com/viewtube/backend/internal/handlers"
	"github.com/viewtube/backend/internal/media"
	"github.com/viewtube/backend/internal/middleware"
	"github.com/viewtube/backend/internal/repositories"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	prober := media.NewFFProbe(cfg.FFProbePath, cfg.FFProbeTimeout)
	store, err := media.NewS3Provider(ctx, cfg.ObjectStore, prober)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	return handlers.Dependencies{
		Users:          repositories.NewPostgresUserRepository(pool),
		Videos:         repositories.NewPostgresVideoRepository(pool),
		Comments:       repositories.NewPostgresCommentRepository(pool),
		Likes:          repositories.NewPostgresLikeRepository(pool),
		Playlists:      repositories.NewPostgresPlaylistRepository(pool),
		Subscriptions:  repositories.NewPostgresSubscriptionRepository(pool),
		Tweets:         repositories.NewPostgresTweetRepository(pool),
		Tokens:         auth.NewTokenManager(cfg.TokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Media:          store,
		AuthLimiter: middleware.NewIPRateLimiter(
			cfg.AuthRateLimit.Requests,
			cfg.AuthRateLimit.Window,
			cfg.AuthRateLimit.Burst,
			cfg.AuthRateLimit.TTL,
		),
		SecureCookies:  cfg.SecureCookies,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, nil
}
