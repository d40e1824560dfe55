package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/viewtube/backend/internal/models"
)

func TestVideoHandlerListPagination(t *testing.T) {
	store := newInMemoryVideoStore()
	for i := 0; i < 12; i++ {
		id := fmt.Sprintf("video-%02d", i)
		store.videos[id] = models.Video{
			ID:        id,
			OwnerID:   "user-1",
			Title:     "Clip " + id,
			Published: true,
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Minute),
		}
	}

	handler := VideoHandler{Videos: store, Users: newInMemoryUserStore(), Media: &fakeMediaStore{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/videos?page=2&limit=5", nil)
	rec := doJSON(handler.List, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Videos      []models.Video `json:"videos"`
			Page        int            `json:"page"`
			TotalVideos int64          `json:"totalVideos"`
			TotalPages  int64          `json:"totalPages"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(envelope.Data.Videos) != 5 {
		t.Fatalf("expected 5 videos on page 2, got %d", len(envelope.Data.Videos))
	}
	if envelope.Data.TotalVideos != 12 {
		t.Fatalf("expected 12 total videos, got %d", envelope.Data.TotalVideos)
	}
	if envelope.Data.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", envelope.Data.TotalPages)
	}
}

func TestVideoHandlerGetRecordsWatchHistory(t *testing.T) {
	videos := newInMemoryVideoStore()
	users := newInMemoryUserStore()
	videos.videos["video-1"] = models.Video{ID: "video-1", OwnerID: "user-2", Published: true}
	viewer := models.User{ID: "user-1", Username: "viewer"}

	handler := VideoHandler{Videos: videos, Users: users, Media: &fakeMediaStore{}}

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/v1/videos/video-1", nil), viewer)
	req = withURLParams(req, "id", "video-1")
	rec := doJSON(handler.Get, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	if _, ok := users.history["user-1"]["video-1"]; !ok {
		t.Fatal("expected watch history entry to be recorded")
	}
}

func TestVideoHandlerUpdateNonOwnerMatchesAbsent(t *testing.T) {
	store := newInMemoryVideoStore()
	store.videos["video-1"] = models.Video{ID: "video-1", OwnerID: "user-2", Published: true}
	intruder := models.User{ID: "user-1", Username: "intruder"}

	handler := VideoHandler{Videos: store, Users: newInMemoryUserStore(), Media: &fakeMediaStore{}}

	request := func(videoID string) *httptest.ResponseRecorder {
		body, contentType := multipartBody(t, map[string]string{"title": "New title"}, nil)
		req := authedRequest(httptest.NewRequest(http.MethodPatch, "/api/v1/videos/"+videoID, body), intruder)
		req.Header.Set("Content-Type", contentType)
		req = withURLParams(req, "id", videoID)
		return doJSON(handler.Update, req)
	}

	foreign := request("video-1")
	absent := request("video-missing")

	if foreign.Code != http.StatusNotFound || absent.Code != http.StatusNotFound {
		t.Fatalf("expected both to be 404, got %d and %d", foreign.Code, absent.Code)
	}
	if foreign.Body.String() != absent.Body.String() {
		t.Fatalf("expected identical responses, got %q and %q", foreign.Body.String(), absent.Body.String())
	}
	if store.videos["video-1"].Title != "" {
		t.Fatal("expected foreign video to stay unmodified")
	}
}

func TestVideoHandlerDeleteRemovesAssets(t *testing.T) {
	store := newInMemoryVideoStore()
	mediaStore := &fakeMediaStore{}
	owner := models.User{ID: "user-1", Username: "owner"}
	store.videos["video-1"] = models.Video{
		ID:           "video-1",
		OwnerID:      "user-1",
		VideoURL:     "http://media.test/videos/abc123",
		ThumbnailURL: "http://media.test/images/def456",
		Published:    true,
	}

	handler := VideoHandler{Videos: store, Users: newInMemoryUserStore(), Media: mediaStore}

	req := authedRequest(httptest.NewRequest(http.MethodDelete, "/api/v1/videos/video-1", nil), owner)
	req = withURLParams(req, "id", "video-1")
	rec := doJSON(handler.Delete, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if _, ok := store.videos["video-1"]; ok {
		t.Fatal("expected video row to be deleted")
	}
	if len(mediaStore.removed) != 2 {
		t.Fatalf("expected 2 asset removals, got %v", mediaStore.removed)
	}
}

func TestVideoHandlerTogglePublish(t *testing.T) {
	store := newInMemoryVideoStore()
	owner := models.User{ID: "user-1", Username: "owner"}
	store.videos["video-1"] = models.Video{ID: "video-1", OwnerID: "user-1", Published: true}

	handler := VideoHandler{Videos: store, Users: newInMemoryUserStore(), Media: &fakeMediaStore{}}

	req := authedRequest(httptest.NewRequest(http.MethodPatch, "/api/v1/videos/video-1/toggle-publish", nil), owner)
	req = withURLParams(req, "id", "video-1")
	rec := doJSON(handler.TogglePublish, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if store.videos["video-1"].Published {
		t.Fatal("expected publish flag to flip")
	}
}
