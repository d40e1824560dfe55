package repositories

import (
	"context"
	"time"

	"github.com/viewtube/backend/internal/models"
)

// UserRepository defines the data access contract for users and their
// credential state.
type UserRepository interface {
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

// ListVideosParams filters and orders the public video listing.
type ListVideosParams struct {
	Query    string
	OwnerID  string
	SortBy   string
	SortType string
	Limit    int
	Offset   int
}

// VideoUpdate carries the optional fields of an owner-scoped video update.
// Nil members leave the stored value untouched.
type VideoUpdate struct {
	Title        *string
	Description  *string
	ThumbnailURL *string
}

// VideoRepository defines the data access contract for videos.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	List(ctx context.Context, params ListVideosParams) ([]models.Video, int64, error)
	UpdateOwned(ctx context.Context, id, ownerID string, update VideoUpdate) (models.Video, error)
	DeleteOwned(ctx context.Context, id, ownerID string) (models.Video, error)
	TogglePublishOwned(ctx context.Context, id, ownerID string) (models.Video, error)
	IncrementViews(ctx context.Context, id string) (models.Video, error)
	ChannelStats(ctx context.Context, channelID string) (models.ChannelStats, error)
	ChannelVideos(ctx context.Context, channelID string, limit, offset int) ([]models.Video, int64, error)
}

// CommentRepository defines the data access contract for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	ListByVideo(ctx context.Context, videoID string, limit, offset int) ([]models.Comment, int64, error)
	UpdateOwned(ctx context.Context, id, ownerID, content string) (models.Comment, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
}

// LikeRepository defines the data access contract for the polymorphic like edge.
type LikeRepository interface {
	// Toggle removes an existing (user, target) edge or creates one when
	// absent. A nil Like reports removal.
	Toggle(ctx context.Context, userID string, kind models.LikeTargetKind, targetID string) (*models.Like, error)
	LikedVideos(ctx context.Context, userID string) ([]models.LikedVideo, error)
}

// PlaylistRepository defines the data access contract for playlists and
// their video memberships.
type PlaylistRepository interface {
	Create(ctx context.Context, playlist models.Playlist) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	FindOwned(ctx context.Context, id, ownerID string) (models.Playlist, error)
	UpdateOwned(ctx context.Context, id, ownerID, name, description string) (models.Playlist, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
	AddVideo(ctx context.Context, id, ownerID, videoID string) (models.Playlist, error)
	RemoveVideo(ctx context.Context, id, ownerID, videoID string) (models.Playlist, error)
}

// SubscriptionRepository defines the data access contract for subscription edges.
type SubscriptionRepository interface {
	// Toggle removes an existing (subscriber, channel) edge or creates one
	// when absent. A nil Subscription reports removal.
	Toggle(ctx context.Context, subscriberID, channelID string) (*models.Subscription, error)
	Subscribers(ctx context.Context, channelID string) ([]models.UserSummary, error)
	SubscribedChannels(ctx context.Context, subscriberID string) ([]models.UserSummary, error)
}

// TweetRepository defines the data access contract for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Tweet, error)
	UpdateOwned(ctx context.Context, id, ownerID, content string) (models.Tweet, error)
	DeleteOwned(ctx context.Context, id, ownerID string) error
}
