package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/viewtube/backend/internal/models"
	"github.com/viewtube/backend/internal/repositories"
)

// LikeHandler implements the like toggle endpoints for videos, comments,
// and tweets.
type LikeHandler struct {
	Likes LikeStore
}

// ToggleVideo handles POST /api/v1/likes/toggle/v/{videoId} requests.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetVideo, chi.URLParam(r, "videoId"),
		"Video liked successfully", "Video unliked successfully", "Video not found")
}

// ToggleComment handles POST /api/v1/likes/toggle/c/{commentId} requests.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetComment, chi.URLParam(r, "commentId"),
		"Comment liked successfully", "Comment unliked successfully", "Comment not found")
}

// ToggleTweet handles POST /api/v1/likes/toggle/t/{tweetId} requests.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.LikeTargetTweet, chi.URLParam(r, "tweetId"),
		"Tweet liked successfully", "Tweet unliked successfully", "Tweet not found")
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind models.LikeTargetKind, targetID, likedMsg, unlikedMsg, notFoundMsg string) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	like, err := h.Likes.Toggle(ctx, identity.ID, kind, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			// A concurrent toggle won the insert; the end state is liked
			// either way.
			respondData(ctx, w, http.StatusOK, nil, likedMsg)
			return
		}
		respondStoreError(ctx, w, err, notFoundMsg)
		return
	}

	if like == nil {
		respondData(ctx, w, http.StatusOK, nil, unlikedMsg)
		return
	}
	respondData(ctx, w, http.StatusOK, like, likedMsg)
}

// LikedVideos handles GET /api/v1/likes/videos requests.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	videos, err := h.Likes.LikedVideos(ctx, identity.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "Liked videos not found")
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "Liked Videos fetched successfully")
}
