package models

import "time"

// User represents an account within the ViewTube platform. Credential fields
// never serialize; responses carry the sanitized remainder.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullname"`
	AvatarURL    string    `json:"avatar"`
	CoverURL     string    `json:"coverimage,omitempty"`
	Password     string    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the subset of user fields embedded in denormalized reads.
type UserSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"fullname,omitempty"`
	AvatarURL string `json:"avatar"`
}

// Video stores an uploaded video together with its remote asset references.
type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videofile"`
	ThumbnailURL string    `json:"thumbnail"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	Published    bool      `json:"ispublished"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// VideoSummary is the subset of video fields embedded in liked-video,
// playlist, and watch-history reads.
type VideoSummary struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	ThumbnailURL string  `json:"thumbnail"`
	Duration     float64 `json:"duration"`
	Views        int64   `json:"views"`
}

// Comment is a user comment attached to a video.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"video"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LikeTargetKind discriminates the polymorphic like target.
type LikeTargetKind string

const (
	LikeTargetVideo   LikeTargetKind = "video"
	LikeTargetComment LikeTargetKind = "comment"
	LikeTargetTweet   LikeTargetKind = "tweet"
)

// Like is a toggle edge between a user and exactly one target entity.
type Like struct {
	ID         string         `json:"id"`
	UserID     string         `json:"likedBy"`
	TargetKind LikeTargetKind `json:"targetKind"`
	TargetID   string         `json:"targetId"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// LikedVideo pairs a like edge with the liked video's summary.
type LikedVideo struct {
	Like  Like         `json:"like"`
	Video VideoSummary `json:"video"`
}

// Playlist is an owner-scoped, duplicate-free set of videos.
type Playlist struct {
	ID          string         `json:"id"`
	OwnerID     string         `json:"owner"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Videos      []VideoSummary `json:"videos,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Subscription is a directed edge from a subscriber to a channel.
type Subscription struct {
	ID           string    `json:"id"`
	SubscriberID string    `json:"subscriber"`
	ChannelID    string    `json:"channel"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Tweet is a short text post owned by a user.
type Tweet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TokenPair groups the bearer credentials issued to authenticated users.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// ChannelProfile is a user profile enriched with subscription aggregates for
// a particular viewer.
type ChannelProfile struct {
	User
	SubscriberCount   int64 `json:"subscriberCount"`
	SubscribedToCount int64 `json:"subscribedToCount"`
	IsSubscribed      bool  `json:"isSubscribed"`
}

// ChannelStats aggregates a channel's totals for the dashboard.
type ChannelStats struct {
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalVideoViews"`
	TotalLikes       int64 `json:"totalVideoLikes"`
}

// WatchHistoryEntry denormalizes one watched video with its owner summary.
type WatchHistoryEntry struct {
	Video     VideoSummary `json:"video"`
	Owner     UserSummary  `json:"owner"`
	WatchedAt time.Time    `json:"watchedAt"`
}
