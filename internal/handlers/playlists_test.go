package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/viewtube/backend/internal/models"
)

func TestPlaylistHandlerAddVideoIsIdempotent(t *testing.T) {
	store := newInMemoryPlaylistStore()
	owner := models.User{ID: "user-1", Username: "owner"}
	store.playlists["playlist-1"] = models.Playlist{ID: "playlist-1", OwnerID: "user-1", Name: "Favorites"}

	handler := PlaylistHandler{Playlists: store}

	add := func() *httptest.ResponseRecorder {
		req := authedRequest(httptest.NewRequest(http.MethodPatch, "/api/v1/playlists/playlist-1/videos/video-1", nil), owner)
		req = withURLParams(req, "id", "playlist-1", "videoId", "video-1")
		return doJSON(handler.AddVideo, req)
	}

	first := add()
	second := add()

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected both adds to succeed, got %d and %d", first.Code, second.Code)
	}

	var envelope struct {
		Data models.Playlist `json:"data"`
	}
	if err := json.NewDecoder(second.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Videos) != 1 {
		t.Fatalf("expected a single membership after duplicate add, got %d", len(envelope.Data.Videos))
	}
}

func TestPlaylistHandlerForeignPlaylistMatchesAbsent(t *testing.T) {
	store := newInMemoryPlaylistStore()
	store.playlists["playlist-1"] = models.Playlist{ID: "playlist-1", OwnerID: "user-2", Name: "Theirs"}
	intruder := models.User{ID: "user-1", Username: "intruder"}

	handler := PlaylistHandler{Playlists: store}

	get := func(id string) *httptest.ResponseRecorder {
		req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/v1/playlists/"+id, nil), intruder)
		req = withURLParams(req, "id", id)
		return doJSON(handler.Get, req)
	}

	foreign := get("playlist-1")
	absent := get("playlist-missing")

	if foreign.Code != http.StatusNotFound || absent.Code != http.StatusNotFound {
		t.Fatalf("expected both to be 404, got %d and %d", foreign.Code, absent.Code)
	}
	if foreign.Body.String() != absent.Body.String() {
		t.Fatalf("expected identical responses, got %q and %q", foreign.Body.String(), absent.Body.String())
	}
}

func TestPlaylistHandlerRemoveVideo(t *testing.T) {
	store := newInMemoryPlaylistStore()
	owner := models.User{ID: "user-1", Username: "owner"}
	store.playlists["playlist-1"] = models.Playlist{ID: "playlist-1", OwnerID: "user-1", Name: "Favorites"}
	store.members["playlist-1"] = []string{"video-1", "video-2"}

	handler := PlaylistHandler{Playlists: store}

	req := authedRequest(httptest.NewRequest(http.MethodDelete, "/api/v1/playlists/playlist-1/videos/video-1", nil), owner)
	req = withURLParams(req, "id", "playlist-1", "videoId", "video-1")
	rec := doJSON(handler.RemoveVideo, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data models.Playlist `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Videos) != 1 || envelope.Data.Videos[0].ID != "video-2" {
		t.Fatalf("expected only video-2 to remain, got %+v", envelope.Data.Videos)
	}
}

func TestPlaylistHandlerListByUser(t *testing.T) {
	store := newInMemoryPlaylistStore()
	store.playlists["playlist-1"] = models.Playlist{ID: "playlist-1", OwnerID: "user-2", Name: "Theirs"}
	store.playlists["playlist-2"] = models.Playlist{ID: "playlist-2", OwnerID: "user-1", Name: "Mine"}
	viewer := models.User{ID: "user-1", Username: "viewer"}

	handler := PlaylistHandler{Playlists: store}

	req := authedRequest(httptest.NewRequest(http.MethodGet, "/api/v1/playlists/user/user-2", nil), viewer)
	req = withURLParams(req, "userId", "user-2")
	rec := doJSON(handler.ListByUser, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data []models.Playlist `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].ID != "playlist-1" {
		t.Fatalf("expected only the requested user's playlists, got %+v", envelope.Data)
	}
}
