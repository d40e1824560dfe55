package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/viewtube/backend/internal/media"
	"github.com/viewtube/backend/internal/models"
	"github.com/viewtube/backend/internal/repositories"
)

type inMemoryUserStore struct {
	users   map[string]models.User
	history map[string]map[string]time.Time
}

func newInMemoryUserStore() *inMemoryUserStore {
	return &inMemoryUserStore{
		users:   make(map[string]models.User),
		history: make(map[string]map[string]time.Time),
	}
}

func (s *inMemoryUserStore) Create(_ context.Context, user models.User) error {
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, user.Username) || strings.EqualFold(existing.Email, user.Email) {
			return repositories.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *inMemoryUserStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *inMemoryUserStore) FindByLogin(_ context.Context, login string) (models.User, error) {
	for _, user := range s.users {
		if strings.EqualFold(user.Username, login) || strings.EqualFold(user.Email, login) {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) FindByUsernameOrEmail(_ context.Context, username, email string) (models.User, error) {
	for _, user := range s.users {
		if strings.EqualFold(user.Username, username) || strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) SetRefreshToken(_ context.Context, userID, token string) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = token
	s.users[userID] = user
	return nil
}

func (s *inMemoryUserStore) RotateRefreshToken(_ context.Context, userID, current, next string) error {
	user, ok := s.users[userID]
	if !ok || user.RefreshToken != current {
		return repositories.ErrNotFound
	}
	user.RefreshToken = next
	s.users[userID] = user
	return nil
}

func (s *inMemoryUserStore) ClearRefreshToken(_ context.Context, userID string) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = ""
	s.users[userID] = user
	return nil
}

func (s *inMemoryUserStore) UpdatePassword(_ context.Context, userID, passwordHash string) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.Password = passwordHash
	s.users[userID] = user
	return nil
}

func (s *inMemoryUserStore) UpdateProfile(_ context.Context, userID, fullName, email string) (models.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.FullName = fullName
	user.Email = email
	s.users[userID] = user
	return user, nil
}

func (s *inMemoryUserStore) UpdateAvatar(_ context.Context, userID, avatarURL string) (models.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.AvatarURL = avatarURL
	s.users[userID] = user
	return user, nil
}

func (s *inMemoryUserStore) UpdateCover(_ context.Context, userID, coverURL string) (models.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	user.CoverURL = coverURL
	s.users[userID] = user
	return user, nil
}

func (s *inMemoryUserStore) ChannelProfile(_ context.Context, username, _ string) (models.ChannelProfile, error) {
	for _, user := range s.users {
		if strings.EqualFold(user.Username, username) {
			return models.ChannelProfile{User: user}, nil
		}
	}
	return models.ChannelProfile{}, repositories.ErrNotFound
}

func (s *inMemoryUserStore) WatchHistory(_ context.Context, userID string, limit, offset int) ([]models.WatchHistoryEntry, int64, error) {
	entries := s.history[userID]
	var all []models.WatchHistoryEntry
	for videoID, at := range entries {
		all = append(all, models.WatchHistoryEntry{Video: models.VideoSummary{ID: videoID}, WatchedAt: at})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].WatchedAt.After(all[j].WatchedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *inMemoryUserStore) AddWatchHistory(_ context.Context, userID, videoID string, watchedAt time.Time) error {
	if s.history[userID] == nil {
		s.history[userID] = make(map[string]time.Time)
	}
	s.history[userID][videoID] = watchedAt
	return nil
}

type inMemoryVideoStore struct {
	videos map[string]models.Video
}

func newInMemoryVideoStore() *inMemoryVideoStore {
	return &inMemoryVideoStore{videos: make(map[string]models.Video)}
}

func (s *inMemoryVideoStore) Create(_ context.Context, video models.Video) error {
	s.videos[video.ID] = video
	return nil
}

func (s *inMemoryVideoStore) FindByID(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	return video, nil
}

func (s *inMemoryVideoStore) List(_ context.Context, params repositories.ListVideosParams) ([]models.Video, int64, error) {
	var all []models.Video
	for _, video := range s.videos {
		if !video.Published {
			continue
		}
		if params.OwnerID != "" && video.OwnerID != params.OwnerID {
			continue
		}
		if params.Query != "" && !strings.Contains(strings.ToLower(video.Title), strings.ToLower(params.Query)) {
			continue
		}
		all = append(all, video)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if params.Offset >= len(all) {
		return nil, total, nil
	}
	end := params.Offset + params.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[params.Offset:end], total, nil
}

func (s *inMemoryVideoStore) UpdateOwned(_ context.Context, id, ownerID string, update repositories.VideoUpdate) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok || video.OwnerID != ownerID {
		return models.Video{}, repositories.ErrNotFound
	}
	if update.Title != nil {
		video.Title = *update.Title
	}
	if update.Description != nil {
		video.Description = *update.Description
	}
	if update.ThumbnailURL != nil {
		video.ThumbnailURL = *update.ThumbnailURL
	}
	s.videos[id] = video
	return video, nil
}

func (s *inMemoryVideoStore) DeleteOwned(_ context.Context, id, ownerID string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok || video.OwnerID != ownerID {
		return models.Video{}, repositories.ErrNotFound
	}
	delete(s.videos, id)
	return video, nil
}

func (s *inMemoryVideoStore) TogglePublishOwned(_ context.Context, id, ownerID string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok || video.OwnerID != ownerID {
		return models.Video{}, repositories.ErrNotFound
	}
	video.Published = !video.Published
	s.videos[id] = video
	return video, nil
}

func (s *inMemoryVideoStore) IncrementViews(_ context.Context, id string) (models.Video, error) {
	video, ok := s.videos[id]
	if !ok {
		return models.Video{}, repositories.ErrNotFound
	}
	video.Views++
	s.videos[id] = video
	return video, nil
}

func (s *inMemoryVideoStore) ChannelStats(_ context.Context, channelID string) (models.ChannelStats, error) {
	stats := models.ChannelStats{}
	for _, video := range s.videos {
		if video.OwnerID == channelID {
			stats.TotalVideos++
			stats.TotalViews += video.Views
		}
	}
	return stats, nil
}

func (s *inMemoryVideoStore) ChannelVideos(_ context.Context, channelID string, limit, offset int) ([]models.Video, int64, error) {
	var all []models.Video
	for _, video := range s.videos {
		if video.OwnerID == channelID {
			all = append(all, video)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

type inMemoryLikeStore struct {
	likes map[string]models.Like
}

func newInMemoryLikeStore() *inMemoryLikeStore {
	return &inMemoryLikeStore{likes: make(map[string]models.Like)}
}

func likeKey(userID string, kind models.LikeTargetKind, targetID string) string {
	return userID + "|" + string(kind) + "|" + targetID
}

func (s *inMemoryLikeStore) Toggle(_ context.Context, userID string, kind models.LikeTargetKind, targetID string) (*models.Like, error) {
	key := likeKey(userID, kind, targetID)
	if _, ok := s.likes[key]; ok {
		delete(s.likes, key)
		return nil, nil
	}
	like := models.Like{ID: key, UserID: userID, TargetKind: kind, TargetID: targetID, CreatedAt: time.Now()}
	s.likes[key] = like
	return &like, nil
}

func (s *inMemoryLikeStore) LikedVideos(_ context.Context, userID string) ([]models.LikedVideo, error) {
	var out []models.LikedVideo
	for _, like := range s.likes {
		if like.UserID == userID && like.TargetKind == models.LikeTargetVideo {
			out = append(out, models.LikedVideo{Like: like})
		}
	}
	return out, nil
}

type inMemoryPlaylistStore struct {
	playlists map[string]models.Playlist
	members   map[string][]string
}

func newInMemoryPlaylistStore() *inMemoryPlaylistStore {
	return &inMemoryPlaylistStore{
		playlists: make(map[string]models.Playlist),
		members:   make(map[string][]string),
	}
}

func (s *inMemoryPlaylistStore) Create(_ context.Context, playlist models.Playlist) error {
	s.playlists[playlist.ID] = playlist
	return nil
}

func (s *inMemoryPlaylistStore) ListByOwner(_ context.Context, ownerID string) ([]models.Playlist, error) {
	var out []models.Playlist
	for _, playlist := range s.playlists {
		if playlist.OwnerID == ownerID {
			out = append(out, playlist)
		}
	}
	return out, nil
}

func (s *inMemoryPlaylistStore) FindOwned(_ context.Context, id, ownerID string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok || playlist.OwnerID != ownerID {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.Videos = nil
	for _, videoID := range s.members[id] {
		playlist.Videos = append(playlist.Videos, models.VideoSummary{ID: videoID})
	}
	return playlist, nil
}

func (s *inMemoryPlaylistStore) UpdateOwned(_ context.Context, id, ownerID, name, description string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok || playlist.OwnerID != ownerID {
		return models.Playlist{}, repositories.ErrNotFound
	}
	playlist.Name = name
	playlist.Description = description
	s.playlists[id] = playlist
	return playlist, nil
}

func (s *inMemoryPlaylistStore) DeleteOwned(_ context.Context, id, ownerID string) error {
	playlist, ok := s.playlists[id]
	if !ok || playlist.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	delete(s.playlists, id)
	delete(s.members, id)
	return nil
}

func (s *inMemoryPlaylistStore) AddVideo(ctx context.Context, id, ownerID, videoID string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok || playlist.OwnerID != ownerID {
		return models.Playlist{}, repositories.ErrNotFound
	}
	present := false
	for _, existing := range s.members[id] {
		if existing == videoID {
			present = true
			break
		}
	}
	if !present {
		s.members[id] = append(s.members[id], videoID)
	}
	return s.FindOwned(ctx, id, ownerID)
}

func (s *inMemoryPlaylistStore) RemoveVideo(ctx context.Context, id, ownerID, videoID string) (models.Playlist, error) {
	playlist, ok := s.playlists[id]
	if !ok || playlist.OwnerID != ownerID {
		return models.Playlist{}, repositories.ErrNotFound
	}
	var kept []string
	for _, existing := range s.members[id] {
		if existing != videoID {
			kept = append(kept, existing)
		}
	}
	s.members[id] = kept
	return s.FindOwned(ctx, id, ownerID)
}

type fakeMediaStore struct {
	uploads []string
	removed []string
}

func (s *fakeMediaStore) Upload(_ context.Context, localPath string, kind media.Kind) (media.Asset, error) {
	s.uploads = append(s.uploads, localPath)
	asset := media.Asset{URL: "http://media.test/" + string(kind) + "s/upload-" + localPath}
	if kind == media.KindVideo {
		asset.Duration = 42
	}
	return asset, nil
}

func (s *fakeMediaStore) Remove(_ context.Context, publicID string, _ media.Kind) error {
	s.removed = append(s.removed, publicID)
	return nil
}

func authedRequest(r *http.Request, user models.User) *http.Request {
	return r.WithContext(withIdentity(r.Context(), user))
}

func withURLParams(r *http.Request, pairs ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(pairs); i += 2 {
		rctx.URLParams.Add(pairs[i], pairs[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func doJSON(handler http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler(rec, r)
	return rec
}

type inMemorySubscriptionStore struct {
	subs map[string]models.Subscription
}

func newInMemorySubscriptionStore() *inMemorySubscriptionStore {
	return &inMemorySubscriptionStore{subs: make(map[string]models.Subscription)}
}

func subscriptionKey(subscriberID, channelID string) string {
	return subscriberID + "|" + channelID
}

func (s *inMemorySubscriptionStore) Toggle(_ context.Context, subscriberID, channelID string) (*models.Subscription, error) {
	key := subscriptionKey(subscriberID, channelID)
	if _, ok := s.subs[key]; ok {
		delete(s.subs, key)
		return nil, nil
	}
	sub := models.Subscription{ID: key, SubscriberID: subscriberID, ChannelID: channelID, CreatedAt: time.Now()}
	s.subs[key] = sub
	return &sub, nil
}

func (s *inMemorySubscriptionStore) Subscribers(_ context.Context, channelID string) ([]models.UserSummary, error) {
	var out []models.UserSummary
	for _, sub := range s.subs {
		if sub.ChannelID == channelID {
			out = append(out, models.UserSummary{ID: sub.SubscriberID})
		}
	}
	return out, nil
}

func (s *inMemorySubscriptionStore) SubscribedChannels(_ context.Context, subscriberID string) ([]models.UserSummary, error) {
	var out []models.UserSummary
	for _, sub := range s.subs {
		if sub.SubscriberID == subscriberID {
			out = append(out, models.UserSummary{ID: sub.ChannelID})
		}
	}
	return out, nil
}

type inMemoryTweetStore struct {
	tweets map[string]models.Tweet
}

func newInMemoryTweetStore() *inMemoryTweetStore {
	return &inMemoryTweetStore{tweets: make(map[string]models.Tweet)}
}

func (s *inMemoryTweetStore) Create(_ context.Context, tweet models.Tweet) error {
	s.tweets[tweet.ID] = tweet
	return nil
}

func (s *inMemoryTweetStore) ListByOwner(_ context.Context, ownerID string) ([]models.Tweet, error) {
	var out []models.Tweet
	for _, tweet := range s.tweets {
		if tweet.OwnerID == ownerID {
			out = append(out, tweet)
		}
	}
	return out, nil
}

func (s *inMemoryTweetStore) UpdateOwned(_ context.Context, id, ownerID, content string) (models.Tweet, error) {
	tweet, ok := s.tweets[id]
	if !ok || tweet.OwnerID != ownerID {
		return models.Tweet{}, repositories.ErrNotFound
	}
	tweet.Content = content
	s.tweets[id] = tweet
	return tweet, nil
}

func (s *inMemoryTweetStore) DeleteOwned(_ context.Context, id, ownerID string) error {
	tweet, ok := s.tweets[id]
	if !ok || tweet.OwnerID != ownerID {
		return repositories.ErrNotFound
	}
	delete(s.tweets, id)
	return nil
}
