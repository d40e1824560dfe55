package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users         UserStore
	Videos        VideoStore
	Comments      CommentStore
	Likes         LikeStore
	Playlists     PlaylistStore
	Subscriptions SubscriptionStore
	Tweets        TweetStore
	Tokens        TokenManager
	Media         MediaStore
	AuthLimiter   RateLimiter
	SecureCookies bool

	// MaxUploadBytes caps multipart form parsing on upload endpoints.
	// Zero falls back to a built-in default.
	MaxUploadBytes int64
}

// RegisterRoutes wires HTTP handlers into the provided router. Everything
// under /api/v1 except registration, login, and token refresh requires a
// valid access token.
func RegisterRoutes(r chi.Router, deps Dependencies) {
	health := HealthHandler{}
	users := UserHandler{Users: deps.Users, Tokens: deps.Tokens, Media: deps.Media, Limiter: deps.AuthLimiter, SecureCookies: deps.SecureCookies, MaxUploadBytes: deps.MaxUploadBytes}
	videos := VideoHandler{Videos: deps.Videos, Users: deps.Users, Media: deps.Media, MaxUploadBytes: deps.MaxUploadBytes}
	comments := CommentHandler{Comments: deps.Comments, Videos: deps.Videos}
	likes := LikeHandler{Likes: deps.Likes}
	playlists := PlaylistHandler{Playlists: deps.Playlists}
	subscriptions := SubscriptionHandler{Subscriptions: deps.Subscriptions}
	tweets := TweetHandler{Tweets: deps.Tweets}
	dashboard := DashboardHandler{Videos: deps.Videos}

	authn := AuthMiddleware{Users: deps.Users, Tokens: deps.Tokens}

	r.Get("/healthz", health.Handle)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/users/register", users.Register)
		r.Post("/users/login", users.Login)
		r.Post("/users/refresh-token", users.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authn.Require)

			r.Post("/users/logout", users.Logout)
			r.Patch("/users/password", users.ChangePassword)
			r.Get("/users/me", users.Me)
			r.Patch("/users/profile", users.UpdateProfile)
			r.Patch("/users/avatar", users.UpdateAvatar)
			r.Patch("/users/cover", users.UpdateCover)
			r.Get("/users/profile/{username}", users.Profile)
			r.Get("/users/watch-history", users.WatchHistory)

			r.Get("/videos", videos.List)
			r.Post("/videos", videos.Publish)
			r.Get("/videos/{id}", videos.Get)
			r.Patch("/videos/{id}", videos.Update)
			r.Delete("/videos/{id}", videos.Delete)
			r.Patch("/videos/{id}/toggle-publish", videos.TogglePublish)
			r.Patch("/videos/{id}/views", videos.IncrementViews)

			r.Get("/comments/{videoId}", comments.ListByVideo)
			r.Post("/comments/{videoId}", comments.Add)
			r.Patch("/comments/c/{commentId}", comments.Update)
			r.Delete("/comments/c/{commentId}", comments.Delete)

			r.Post("/likes/toggle/v/{videoId}", likes.ToggleVideo)
			r.Post("/likes/toggle/c/{commentId}", likes.ToggleComment)
			r.Post("/likes/toggle/t/{tweetId}", likes.ToggleTweet)
			r.Get("/likes/videos", likes.LikedVideos)

			r.Post("/playlists", playlists.Create)
			r.Get("/playlists", playlists.List)
			r.Get("/playlists/user/{userId}", playlists.ListByUser)
			r.Get("/playlists/{id}", playlists.Get)
			r.Patch("/playlists/{id}", playlists.Update)
			r.Delete("/playlists/{id}", playlists.Delete)
			r.Patch("/playlists/{id}/videos/{videoId}", playlists.AddVideo)
			r.Delete("/playlists/{id}/videos/{videoId}", playlists.RemoveVideo)

			r.Post("/subscriptions/c/{channelId}", subscriptions.Toggle)
			r.Get("/subscriptions/c/{channelId}", subscriptions.Subscribers)
			r.Get("/subscriptions/u/{subscriberId}", subscriptions.SubscribedChannels)

			r.Post("/tweets", tweets.Create)
			r.Get("/tweets/user", tweets.ListByUser)
			r.Get("/tweets/user/{userId}", tweets.ListByUser)
			r.Patch("/tweets/{id}", tweets.Update)
			r.Delete("/tweets/{id}", tweets.Delete)

			r.Get("/dashboard/stats", dashboard.Stats)
			r.Get("/dashboard/videos", dashboard.ChannelVideos)
		})
	})
}
