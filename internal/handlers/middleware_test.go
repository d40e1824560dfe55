package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/viewtube/backend/internal/auth"
	"github.com/viewtube/backend/internal/models"
)

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	authn := AuthMiddleware{Users: newInMemoryUserStore(), Tokens: newTokenManager()}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a token")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()
	authn.Require(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestAuthMiddlewareLoadsIdentity(t *testing.T) {
	store := newInMemoryUserStore()
	manager := newTokenManager()
	store.users["user-1"] = models.User{ID: "user-1", Username: "testuser"}

	pair, err := manager.Issue("user-1", "testuser")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	authn := AuthMiddleware{Users: store, Tokens: manager}

	var seen models.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := identityFrom(r.Context())
		if !ok {
			t.Fatal("expected identity on context")
		}
		seen = identity
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	authn.Require(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if seen.ID != "user-1" {
		t.Fatalf("expected user-1 identity, got %+v", seen)
	}
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	store := newInMemoryUserStore()
	store.users["user-1"] = models.User{ID: "user-1", Username: "testuser"}

	issuing := auth.NewTokenManager("test-secret", -time.Minute, time.Hour)
	pair, err := issuing.Issue("user-1", "testuser")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	authn := AuthMiddleware{Users: store, Tokens: newTokenManager()}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with an expired token")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	authn.Require(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d got %d", http.StatusUnauthorized, rec.Code)
	}
}
