package handlers

import (
	"net/http"
)

// DashboardHandler implements the owner-facing channel dashboard endpoints.
type DashboardHandler struct {
	Videos VideoStore
}

// Stats handles GET /api/v1/dashboard/stats requests.
func (h DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	stats, err := h.Videos.ChannelStats(ctx, identity.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "Channel not found")
		return
	}

	respondData(ctx, w, http.StatusOK, stats, "Channel stats fetched successfully")
}

// ChannelVideos handles GET /api/v1/dashboard/videos requests.
func (h DashboardHandler) ChannelVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	page, limit := parsePagination(r)
	videos, total, err := h.Videos.ChannelVideos(ctx, identity.ID, limit, (page-1)*limit)
	if err != nil {
		respondStoreError(ctx, w, err, "Channel not found")
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{
		"videos":      videos,
		"page":        page,
		"limit":       limit,
		"totalVideos": total,
		"totalPages":  totalPages(total, limit),
	}, "Channel videos fetched successfully")
}
