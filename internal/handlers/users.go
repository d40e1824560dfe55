package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/viewtube/backend/internal/logging"
	"github.com/viewtube/backend/internal/media"
	"github.com/viewtube/backend/internal/models"
	"github.com/viewtube/backend/internal/repositories"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,16}$`)

// UserHandler implements account, credential, and profile endpoints.
type UserHandler struct {
	Users          UserStore
	Tokens         TokenManager
	Media          MediaStore
	Limiter        RateLimiter
	SecureCookies  bool
	MaxUploadBytes int64
	NowFunc        func() time.Time
}

// Register handles POST /api/v1/users/register requests.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "register") {
		respondError(ctx, w, http.StatusTooManyRequests, "Too many requests")
		return
	}

	if err := r.ParseMultipartForm(uploadLimit(h.MaxUploadBytes)); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullname"))
	email := strings.TrimSpace(strings.ToLower(r.FormValue("email")))
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if fullName == "" || email == "" || username == "" || password == "" {
		respondError(ctx, w, http.StatusBadRequest, "All fields are required")
		return
	}
	if len(fullName) < 3 {
		respondError(ctx, w, http.StatusBadRequest, "Full name must be at least 3 characters")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "Invalid email format")
		return
	}
	if !usernamePattern.MatchString(username) {
		respondError(ctx, w, http.StatusBadRequest, "Username must be 3-16 characters long and contain only letters, numbers, or underscores")
		return
	}
	if msg := passwordStrengthError(password); msg != "" {
		respondError(ctx, w, http.StatusBadRequest, msg)
		return
	}

	username = strings.ToLower(username)

	if _, err := h.Users.FindByUsernameOrEmail(ctx, username, email); err == nil {
		respondError(ctx, w, http.StatusConflict, "User with email or username already exists")
		return
	} else if !errors.Is(err, repositories.ErrNotFound) {
		logger.Error("register user lookup failed", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "Unable to verify existing accounts")
		return
	}

	avatarPath, err := saveFormFile(r, "avatar")
	if err != nil {
		logger.Warn("register avatar spool failed", "error", err)
		respondError(ctx, w, http.StatusBadRequest, "Avatar file is required")
		return
	}
	if avatarPath == "" {
		respondError(ctx, w, http.StatusBadRequest, "Avatar file is required")
		return
	}

	avatar, err := h.Media.Upload(ctx, avatarPath, media.KindImage)
	_ = os.Remove(avatarPath)
	if err != nil {
		logger.Error("register avatar upload failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to upload avatar")
		return
	}

	// Cover image is optional, and unlike the avatar a failed upload does
	// not fail registration.
	var coverURL string
	if coverPath, err := saveFormFile(r, "coverimage"); err == nil && coverPath != "" {
		cover, err := h.Media.Upload(ctx, coverPath, media.KindImage)
		_ = os.Remove(coverPath)
		if err != nil {
			logger.Warn("register cover upload failed", "error", err)
		} else {
			coverURL = cover.URL
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("register failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to secure password")
		return
	}

	now := h.now()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		FullName:  fullName,
		AvatarURL: avatar.URL,
		CoverURL:  coverURL,
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "User with email or username already exists")
			return
		}
		logger.Error("register failed to create user", "error", err, "username", username)
		respondError(ctx, w, http.StatusInternalServerError, "Something went wrong while registering the user")
		return
	}

	respondData(ctx, w, http.StatusCreated, user, "User registered successfully")
}

// Login handles POST /api/v1/users/login requests.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "login") {
		respondError(ctx, w, http.StatusTooManyRequests, "Too many requests")
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	login := strings.TrimSpace(strings.ToLower(req.Username))
	if login == "" {
		login = strings.TrimSpace(strings.ToLower(req.Email))
	}
	if login == "" || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "Username or email and password are required")
		return
	}

	user, err := h.Users.FindByLogin(ctx, login)
	if err != nil {
		logger.Warn("login user lookup failed", "login", login, "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "Invalid user credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "Invalid user credentials")
		return
	}

	pair, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		logger.Error("failed to issue tokens", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	if err := h.Users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		logger.Error("failed to persist refresh token", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	setAuthCookies(w, pair, h.SecureCookies)
	respondData(ctx, w, http.StatusOK, authResponse{User: user, Tokens: pair}, "User logged in successfully")
}

// Logout handles POST /api/v1/users/logout requests.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	if err := h.Users.ClearRefreshToken(ctx, identity.ID); err != nil {
		logging.FromContext(ctx).Error("logout failed to clear refresh token", "error", err, "userId", identity.ID)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	clearAuthCookies(w, h.SecureCookies)
	respondData(ctx, w, http.StatusOK, nil, "User logged out successfully")
}

// Refresh handles POST /api/v1/users/refresh-token requests, rotating the
// stored refresh token on success.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "refresh") {
		respondError(ctx, w, http.StatusTooManyRequests, "Too many requests")
		return
	}

	presented := refreshTokenFromRequest(r)
	if presented == "" {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	claims, err := h.Tokens.Parse(presented)
	if err != nil {
		logger.Warn("refresh token rejected", "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	user, err := h.Users.FindByID(ctx, claims.Subject)
	if err != nil {
		logger.Warn("refresh subject not found", "userId", claims.Subject, "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	// The token must still be the single value on record; anything else
	// means it was already rotated or revoked.
	if user.RefreshToken == "" || user.RefreshToken != presented {
		logger.Warn("refresh token mismatch", "userId", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "Refresh token is expired or used")
		return
	}

	pair, err := h.Tokens.Issue(user.ID, user.Username)
	if err != nil {
		logger.Error("failed to issue tokens", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to refresh session")
		return
	}

	if err := h.Users.RotateRefreshToken(ctx, user.ID, presented, pair.RefreshToken); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Lost a rotation race; treat like any other stale token.
			respondError(ctx, w, http.StatusUnauthorized, "Refresh token is expired or used")
			return
		}
		logger.Error("failed to rotate refresh token", "error", err, "userId", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to refresh session")
		return
	}

	setAuthCookies(w, pair, h.SecureCookies)
	respondData(ctx, w, http.StatusOK, pair, "Access token refreshed successfully")
}

// ChangePassword handles PATCH /api/v1/users/password requests.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		respondError(ctx, w, http.StatusBadRequest, "Old and new passwords are required")
		return
	}
	if msg := passwordStrengthError(req.NewPassword); msg != "" {
		respondError(ctx, w, http.StatusBadRequest, msg)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.Password), []byte(req.OldPassword)); err != nil {
		respondError(ctx, w, http.StatusUnauthorized, "Invalid old password")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logging.FromContext(ctx).Error("failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to secure password")
		return
	}

	if err := h.Users.UpdatePassword(ctx, identity.ID, string(hashed)); err != nil {
		respondStoreError(ctx, w, err, "User not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "Password changed successfully")
}

// Me handles GET /api/v1/users/me requests.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	respondData(ctx, w, http.StatusOK, identity, "User fetched successfully")
}

// UpdateProfile handles PATCH /api/v1/users/profile requests.
func (h UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fullName := strings.TrimSpace(req.FullName)
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if fullName == "" || email == "" {
		respondError(ctx, w, http.StatusBadRequest, "Full name and email are required")
		return
	}
	if len(fullName) < 3 {
		respondError(ctx, w, http.StatusBadRequest, "Full name must be at least 3 characters")
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "Invalid email format")
		return
	}

	user, err := h.Users.UpdateProfile(ctx, identity.ID, fullName, email)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "Email already in use")
			return
		}
		respondStoreError(ctx, w, err, "User not found")
		return
	}

	respondData(ctx, w, http.StatusOK, user, "Account details updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar requests.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", "Avatar updated successfully",
		func(u models.User) string { return u.AvatarURL }, h.Users.UpdateAvatar)
}

// UpdateCover handles PATCH /api/v1/users/cover requests.
func (h UserHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverimage", "Cover image updated successfully",
		func(u models.User) string { return u.CoverURL }, h.Users.UpdateCover)
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field, message string,
	current func(models.User) string,
	update func(ctx context.Context, userID, url string) (models.User, error),
) {
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

	path, err := saveFormFile(r, field)
	if err != nil || path == "" {
		respondError(ctx, w, http.StatusBadRequest, "Image file is required")
		return
	}

	asset, err := h.Media.Upload(ctx, path, media.KindImage)
	_ = os.Remove(path)
	if err != nil {
		logger.Error("image upload failed", "error", err, "field", field)
		respondError(ctx, w, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	user, err := update(ctx, identity.ID, asset.URL)
	if err != nil {
		respondStoreError(ctx, w, err, "User not found")
		return
	}

	// Best-effort removal of the replaced asset.
	if old := current(identity); old != "" {
		if err := h.Media.Remove(ctx, media.PublicID(old), media.KindImage); err != nil {
			logger.Warn("failed to remove previous image", "error", err, "url", old)
		}
	}

	respondData(ctx, w, http.StatusOK, user, message)
}

// Profile handles GET /api/v1/users/profile/{username} requests.
func (h UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	username := chi.URLParam(r, "username")
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "Username is required")
		return
	}

	profile, err := h.Users.ChannelProfile(ctx, username, identity.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "Channel does not exist")
		return
	}

	respondData(ctx, w, http.StatusOK, profile, "Channel profile fetched successfully")
}

// WatchHistory handles GET /api/v1/users/watch-history requests.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := identityFrom(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	page, limit := parsePagination(r)
	entries, total, err := h.Users.WatchHistory(ctx, identity.ID, limit, (page-1)*limit)
	if err != nil {
		respondStoreError(ctx, w, err, "Watch history not found")
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{
		"history":     entries,
		"page":        page,
		"limit":       limit,
		"totalVideos": total,
		"totalPages":  totalPages(total, limit),
	}, "Watch history fetched successfully")
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// refreshTokenFromRequest reads the refresh token from cookie, falling back
// to the request body.
func refreshTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var req refreshRequest
	if err := decodeJSON(r, &req); err == nil {
		return strings.TrimSpace(req.RefreshToken)
	}
	return ""
}

// passwordStrengthError reports why the password is too weak, or "" when it
// is acceptable.
func passwordStrengthError(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters long, contain 1 uppercase, 1 lowercase, and 1 number"
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return "Password must be at least 8 characters long, contain 1 uppercase, 1 lowercase, and 1 number"
	}
	return ""
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateProfileRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

type authResponse struct {
	User   models.User      `json:"user"`
	Tokens models.TokenPair `json:"tokens"`
}
