package handlers

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/viewtube/backend/internal/logging"
	"github.com/viewtube/backend/internal/media"
	"github.com/viewtube/backend/internal/models"
	"github.com/viewtube/backend/internal/repositories"
)

// VideoHandler implements the video catalogue endpoints.
type VideoHandler struct {
	Videos         VideoStore
	Users          UserStore
	Media          MediaStore
	MaxUploadBytes int64
	NowFunc        func() time.Time
}

// List handles GET /api/v1/videos requests.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, limit := parsePagination(r)

	params := repositories.ListVideosParams{
		Query:    strings.TrimSpace(r.URL.Query().Get("query")),
		OwnerID:  strings.TrimSpace(r.URL.Query().Get("userId")),
		SortBy:   strings.TrimSpace(r.URL.Query().Get("sortBy")),
		SortType: strings.TrimSpace(r.URL.Query().Get("sortType")),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	videos, total, err := h.Videos.List(ctx, params)
	if err != nil {
		respondStoreError(ctx, w, err, "Videos not found")
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{
		"videos":      videos,
		"page":        page,
		"limit":       limit,
		"totalVideos": total,
		"totalPages":  totalPages(total, limit),
	}, "Videos fetched successfully")
}

// Publish handles POST /api/v1/videos requests, uploading the video file and
// thumbnail before recording the catalogue entry.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	if err := r.ParseMultipartForm(uploadLimit(h.MaxUploadBytes)); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	description := strings.TrimSpace(r.FormValue("description"))
	if title == "" || description == "" {
		respondError(ctx, w, http.StatusBadRequest, "Title and description are required")
		return
	}

	videoPath, err := saveFormFile(r, "videofile")
	if err != nil || videoPath == "" {
		respondError(ctx, w, http.StatusBadRequest, "Video file is required")
		return
	}
	thumbPath, err := saveFormFile(r, "thumbnail")
	if err != nil || thumbPath == "" {
		_ = os.Remove(videoPath)
		respondError(ctx, w, http.StatusBadRequest, "Thumbnail file is required")
		return
	}

	videoAsset, err := h.Media.Upload(ctx, videoPath, media.KindVideo)
	_ = os.Remove(videoPath)
	if err != nil {
		_ = os.Remove(thumbPath)
		logger.Error("video upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to upload video")
		return
	}

	thumbAsset, err := h.Media.Upload(ctx, thumbPath, media.KindImage)
	_ = os.Remove(thumbPath)
	if err != nil {
		logger.Error("thumbnail upload failed", "error", err)
		if rmErr := h.Media.Remove(ctx, media.PublicID(videoAsset.URL), media.KindVideo); rmErr != nil {
			logger.Warn("failed to remove orphaned video", "error", rmErr)
		}
		respondError(ctx, w, http.StatusInternalServerError, "Failed to upload thumbnail")
		return
	}

	now := h.now()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      identity.ID,
		Title:        title,
		Description:  description,
		VideoURL:     videoAsset.URL,
		ThumbnailURL: thumbAsset.URL,
		Duration:     videoAsset.Duration,
		Published:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("failed to record video", "error", err, "videoId", video.ID)
		respondStoreError(ctx, w, err, "Video owner not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, video, "Video uploaded successfully")
}

// Get handles GET /api/v1/videos/{id} requests and records the viewer's
// watch history.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	video, err := h.Videos.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(ctx, w, err, "Video not found")
		return
	}

	if err := h.Users.AddWatchHistory(ctx, identity.ID, video.ID, h.now()); err != nil {
		logging.FromContext(ctx).Warn("failed to record watch history", "error", err, "videoId", video.ID)
	}

	respondData(ctx, w, http.StatusOK, video, "Video fetched successfully")
}

// Update handles PATCH /api/v1/videos/{id} requests. Only the owner may
// update, and a missing video and a foreign video are indistinguishable.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	if err := r.ParseMultipartForm(uploadLimit(h.MaxUploadBytes)); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	var update repositories.VideoUpdate
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		update.Title = &title
	}
	if description := strings.TrimSpace(r.FormValue("description")); description != "" {
		update.Description = &description
	}

	if thumbPath, err := saveFormFile(r, "thumbnail"); err == nil && thumbPath != "" {
		asset, err := h.Media.Upload(ctx, thumbPath, media.KindImage)
		_ = os.Remove(thumbPath)
		if err != nil {
			logger.Error("thumbnail upload failed", "error", err)
			respondError(ctx, w, http.StatusInternalServerError, "Failed to upload thumbnail")
			return
		}
		update.ThumbnailURL = &asset.URL
	}

	if update.Title == nil && update.Description == nil && update.ThumbnailURL == nil {
		respondError(ctx, w, http.StatusBadRequest, "At least one field is required")
		return
	}

	video, err := h.Videos.UpdateOwned(ctx, chi.URLParam(r, "id"), identity.ID, update)
	if err != nil {
		respondStoreError(ctx, w, err, "Video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, video, "Video updated successfully")
}

// Delete handles DELETE /api/v1/videos/{id} requests, removing the stored
// media assets after the catalogue row is gone.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	video, err := h.Videos.DeleteOwned(ctx, chi.URLParam(r, "id"), identity.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "Video not found")
		return
	}

	if err := h.Media.Remove(ctx, media.PublicID(video.VideoURL), media.KindVideo); err != nil {
		logger.Warn("failed to remove video asset", "error", err, "videoId", video.ID)
	}
	if err := h.Media.Remove(ctx, media.PublicID(video.ThumbnailURL), media.KindImage); err != nil {
		logger.Warn("failed to remove thumbnail asset", "error", err, "videoId", video.ID)
	}

	respondData(ctx, w, http.StatusOK, nil, "Video deleted successfully")
}

// TogglePublish handles PATCH /api/v1/videos/{id}/toggle-publish requests.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	video, err := h.Videos.TogglePublishOwned(ctx, chi.URLParam(r, "id"), identity.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "Video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, video, "Video publish status toggled successfully")
}

// IncrementViews handles PATCH /api/v1/videos/{id}/views requests.
func (h VideoHandler) IncrementViews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := identityFrom(ctx); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	video, err := h.Videos.IncrementViews(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(ctx, w, err, "Video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, video, "Video views incremented successfully")
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
