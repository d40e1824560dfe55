package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/viewtube/backend/internal/logging"
	"github.com/viewtube/backend/internal/models"
)

type identityKey struct{}

// identityFrom returns the authenticated user stored on the context.
func identityFrom(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(identityKey{}).(models.User)
	return user, ok
}

// withIdentity stores the authenticated user on the context. Exported to
// tests via the handlers under test only.
func withIdentity(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, identityKey{}, user)
}

// AuthMiddleware resolves the caller's identity from the access token.
type AuthMiddleware struct {
	Users  UserStore
	Tokens TokenManager
}

// Require rejects requests without a valid access token and loads the
// subject's user record onto the context.
func (m AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := extractAccessToken(r)
		if token == "" {
			respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
			return
		}

		claims, err := m.Tokens.Parse(token)
		if err != nil {
			respondError(ctx, w, http.StatusUnauthorized, "Invalid access token")
			return
		}

		user, err := m.Users.FindByID(ctx, claims.Subject)
		if err != nil {
			logging.FromContext(ctx).Warn("access token subject not found", "userId", claims.Subject, "error", err)
			respondError(ctx, w, http.StatusUnauthorized, "Invalid access token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(ctx, user)))
	})
}

// extractAccessToken reads the bearer token from the Authorization header,
// falling back to the accessToken cookie.
func extractAccessToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}

	if cookie, err := r.Cookie(accessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}
