package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/viewtube/backend/internal/auth"
	"github.com/viewtube/backend/internal/models"
)

func newTokenManager() *auth.TokenManager {
	return auth.NewTokenManager("test-secret", time.Minute, time.Hour)
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	for name, filename := range files {
		part, err := writer.CreateFormFile(name, filename)
		if err != nil {
			t.Fatalf("create file %s: %v", name, err)
		}
		if _, err := part.Write([]byte("fake-bytes")); err != nil {
			t.Fatalf("write file %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func registerRequest(t *testing.T, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, fields, files)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/register", body)
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestUserHandlerRegister(t *testing.T) {
	store := newInMemoryUserStore()
	handler := UserHandler{Users: store, Tokens: newTokenManager(), Media: &fakeMediaStore{}}

	req := registerRequest(t, map[string]string{
		"fullname": "Test User",
		"email":    "test@example.com",
		"username": "testuser",
		"password": "Password1",
	}, map[string]string{"avatar": "avatar.png"})

	rec := doJSON(handler.Register, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	stored, err := store.FindByLogin(context.Background(), "testuser")
	if err != nil {
		t.Fatalf("expected user to be stored: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("Password1")) != nil {
		t.Fatal("stored password is not hashed")
	}
	if stored.AvatarURL == "" {
		t.Fatal("expected avatar URL to be recorded")
	}
}

func TestUserHandlerRegisterDuplicate(t *testing.T) {
	store := newInMemoryUserStore()
	store.users["user-1"] = models.User{ID: "user-1", Username: "testuser", Email: "test@example.com"}
	handler := UserHandler{Users: store, Tokens: newTokenManager(), Media: &fakeMediaStore{}}

	req := registerRequest(t, map[string]string{
		"fullname": "Test User",
		"email":    "test@example.com",
		"username": "testuser",
		"password": "Password1",
	}, map[string]string{"avatar": "avatar.png"})

	rec := doJSON(handler.Register, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d got %d", http.StatusConflict, rec.Code)
	}
}

func TestUserHandlerLogin(t *testing.T) {
	store := newInMemoryUserStore()
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	store.users["user-1"] = models.User{ID: "user-1", Username: "testuser", Email: "test@example.com", Password: string(hashed)}

	handler := UserHandler{Users: store, Tokens: newTokenManager()}

	body, err := json.Marshal(loginRequest{Username: "testuser", Password: "Password1"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := doJSON(handler.Login, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data authResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Tokens.AccessToken == "" || envelope.Data.Tokens.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued, got %+v", envelope.Data.Tokens)
	}

	stored, _ := store.FindByID(context.Background(), "user-1")
	if stored.RefreshToken != envelope.Data.Tokens.RefreshToken {
		t.Fatal("expected issued refresh token to be persisted")
	}
}

func TestUserHandlerLoginBadPassword(t *testing.T) {
	store := newInMemoryUserStore()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.DefaultCost)
	store.users["user-1"] = models.User{ID: "user-1", Username: "testuser", Password: string(hashed)}

	handler := UserHandler{Users: store, Tokens: newTokenManager()}

	body, _ := json.Marshal(loginRequest{Username: "testuser", Password: "WrongPass1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body))
	rec := doJSON(handler.Login, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestUserHandlerRefreshRotatesToken(t *testing.T) {
	store := newInMemoryUserStore()
	manager := newTokenManager()
	handler := UserHandler{Users: store, Tokens: manager}

	pair, err := manager.Issue("user-1", "testuser")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	store.users["user-1"] = models.User{ID: "user-1", Username: "testuser", RefreshToken: pair.RefreshToken}

	body, _ := json.Marshal(refreshRequest{RefreshToken: pair.RefreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", bytes.NewReader(body))
	rec := doJSON(handler.Refresh, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data models.TokenPair `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.RefreshToken == "" || envelope.Data.RefreshToken == pair.RefreshToken {
		t.Fatal("expected a fresh refresh token")
	}

	stored, _ := store.FindByID(context.Background(), "user-1")
	if stored.RefreshToken != envelope.Data.RefreshToken {
		t.Fatal("expected rotated token to replace the stored value")
	}
}

func TestUserHandlerRefreshMismatch(t *testing.T) {
	store := newInMemoryUserStore()
	manager := newTokenManager()
	handler := UserHandler{Users: store, Tokens: manager}

	pair, err := manager.Issue("user-1", "testuser")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	// A different token is on record, so the presented one was already used.
	store.users["user-1"] = models.User{ID: "user-1", Username: "testuser", RefreshToken: "something-else"}

	body, _ := json.Marshal(refreshRequest{RefreshToken: pair.RefreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", bytes.NewReader(body))
	rec := doJSON(handler.Refresh, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}

	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Message != "Refresh token is expired or used" {
		t.Fatalf("unexpected message %q", envelope.Message)
	}
}

func TestUserHandlerChangePassword(t *testing.T) {
	store := newInMemoryUserStore()
	hashed, _ := bcrypt.GenerateFromPassword([]byte("OldPass123"), bcrypt.DefaultCost)
	user := models.User{ID: "user-1", Username: "testuser", Password: string(hashed)}
	store.users["user-1"] = user

	handler := UserHandler{Users: store, Tokens: newTokenManager()}

	body, _ := json.Marshal(changePasswordRequest{OldPassword: "OldPass123", NewPassword: "NewPass123"})
	req := authedRequest(httptest.NewRequest(http.MethodPatch, "/api/v1/users/password", bytes.NewReader(body)), user)
	rec := doJSON(handler.ChangePassword, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	stored, _ := store.FindByID(context.Background(), "user-1")
	if bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("NewPass123")) != nil {
		t.Fatal("expected new password to be stored")
	}
}
