package handlers

import (
	"context"
	"time"

	"github.com/viewtube/backend/internal/auth"
	"github.com/viewtube/backend/internal/media"
	"github.com/viewtube/backend/internal/models"
	"github.com/viewtube/backend/internal/repositories"
)

// UserStore captures the persistence operations required by the user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByLogin(ctx context.Context, login string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (models.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	RotateRefreshToken(ctx context.Context, userID, current, next string) error
	ClearRefreshToken(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateProfile(ctx context.Context, userID, fullName, email string) (models.User, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) (models.User, error)
	UpdateCover(ctx context.Context, userID, coverURL string) (models.User, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string, limit, offset int) ([]models.WatchHistoryEntry, int64, error)
	AddWatchHistory(ctx context.Context, userID, videoID string, watchedAt time.Time) error
}

// VideoStore captures the persistence operations required by the video and
// dashboard handlers.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, params repositories.ListVideosParams) ([]models.Video, int64, error)
	UpdateOwned(ctx context.Context, id, ownerID string, update repositories.VideoUpdate) (models.Video, error)
	DeleteOwned(ctx context.Context, id, ownerID string) (models.Video, error)
	TogglePublishOwned(ctx context.Context, id, ownerID string) (models.Video, error)
	IncrementViews(ctx context.Context, id string) (models.Video, error)
	ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)
	ChannelVideos(ctx context.Context, channelID string, limit, offset int) ([]models.Video, int64, error)
}

// CommentStore captures the persistence operations required by the comment handlers.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	ListByVideo(ctx context.Context, videoID string, limit, offset int) ([]models.Comment, int64, error)
	UpdateOwned(ctx context.Context, id, ownerID, content string) (models.Comment, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
}

// LikeStore captures the persistence operations required by the like handlers.
type LikeStore interface {
	Toggle(ctx context.Context, userID string, kind models.LikeTargetKind, targetID string) (*models.Like, error)
	LikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error)
}

// PlaylistStore captures the persistence operations required by the playlist handlers.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	FindOwned(ctx context.Context, id, ownerID string) (models.Playlist, error)
	UpdateOwned(ctx context.Context, id, ownerID, name, description string) (models.Playlist, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
	AddVideo(ctx context.Context, id, ownerID, videoID string) (models.Playlist, error)
	RemoveVideo(ctx context.Context, id, ownerID, videoID string) (models.Playlist, error)
}

// SubscriptionStore captures the persistence operations required by the
// subscription handlers.
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (*models.Subscription, error)
	Subscribers(ctx context.Context, channelID string) ([]models.UserSummary, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.UserSummary, error)
}

// TweetStore captures the persistence operations required by the tweet handlers.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	UpdateOwned(ctx context.Context, id, ownerID, content string) (models.Tweet, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
}

// TokenManager issues and validates the access/refresh token pair.
type TokenManager interface {
	Issue(userID, username string) (models.TokenPair, error)
	Parse(token string) (auth.Claims, error)
}

// MediaStore uploads and deletes binary assets at the remote media provider.
type MediaStore interface {
	Upload(ctx context.Context, localPath string, kind media.Kind) (media.Asset, error)
	Remove(ctx context.Context, publicID string, kind media.Kind) error
}
