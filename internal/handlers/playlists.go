package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/viewtube/backend/internal/models"
)

// PlaylistHandler implements the playlist endpoints. Every read and write is
// scoped to the authenticated owner.
type PlaylistHandler struct {
	Playlists PlaylistStore
	NowFunc   func() time.Time
}

// Create handles POST /api/v1/playlists requests.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(ctx, w, http.StatusBadRequest, "Playlist name is required")
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     identity.ID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "Playlist owner not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "Playlist created successfully")
}

// List handles GET /api/v1/playlists requests.
func (h PlaylistHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	playlists, err := h.Playlists.ListByOwner(ctx, identity.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "Playlists not found")
		return
	}

	respondData(ctx, w, http.StatusOK, playlists, "Playlists fetched successfully")
}

// ListByUser handles GET /api/v1/playlists/user/{userId} requests.
func (h PlaylistHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := identityFrom(ctx); !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	userID := chi.URLParam(r, "userId")
	if userID == "" {
		respondError(ctx, w, http.StatusBadRequest, "User id is required")
		return
	}

	playlists, err := h.Playlists.ListByOwner(ctx, userID)
	if err != nil {
		respondStoreError(ctx, w, err, "Playlists not found")
		return
	}

	respondData(ctx, w, http.StatusOK, playlists, "Playlists fetched successfully")
}

// Get handles GET /api/v1/playlists/{id} requests.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	playlist, err := h.Playlists.FindOwned(ctx, chi.URLParam(r, "id"), identity.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "Playlist not found or you do not have access")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "Playlist fetched successfully")
}

// Update handles PATCH /api/v1/playlists/{id} requests.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	var req playlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondError(ctx, w, http.StatusBadRequest, "Playlist name is required")
		return
	}

	playlist, err := h.Playlists.UpdateOwned(ctx, chi.URLParam(r, "id"), identity.ID, name, strings.TrimSpace(req.Description))
	if err != nil {
		respondStoreError(ctx, w, err, "Playlist not found or you do not have access")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "Playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlists/{id} requests.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	if err := h.Playlists.DeleteOwned(ctx, chi.URLParam(r, "id"), identity.ID); err != nil {
		respondStoreError(ctx, w, err, "Playlist not found or you do not have access")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "Playlist deleted successfully")
}

// AddVideo handles PATCH /api/v1/playlists/{id}/videos/{videoId} requests.
// Adding an already present video leaves a single membership.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	playlist, err := h.Playlists.AddVideo(ctx, chi.URLParam(r, "id"), identity.ID, chi.URLParam(r, "videoId"))
	if err != nil {
		respondStoreError(ctx, w, err, "Playlist not found or you do not have access")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "Video added to playlist successfully")
}

// RemoveVideo handles DELETE /api/v1/playlists/{id}/videos/{videoId} requests.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	playlist, err := h.Playlists.RemoveVideo(ctx, chi.URLParam(r, "id"), identity.ID, chi.URLParam(r, "videoId"))
	if err != nil {
		respondStoreError(ctx, w, err, "Playlist not found or you do not have access")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "Video removed from playlist successfully")
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
