package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/0xMishra/social-media-backend/internal/auth"
	"github.com/0xMishra/social-media-backend/internal/logging"
	"github.com/0xMishra/social-media-backend/internal/models"
	"github.com/0xMishra/social-media-backend/internal/repositories"
	"github.com/0xMishra/social-media-backend/internal/validation"
)

// AuthHandler implements the account and session endpoints.
type AuthHandler struct {
	Users     UserStore
	Passwords PasswordHasher
	Sessions  SessionIssuer
	Validator RequestValidator
	Limiter   RateLimiter
	NowFunc   func() time.Time

	// TrustProxy keys the limiter on X-Forwarded-For and X-Real-IP. Enable it
	// only behind a proxy that overwrites those headers.
	TrustProxy bool

	errs errorWriter
}

// SignUp handles POST /api/v1/user/signup.
func (h AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := checkRateLimit(h.Limiter, r, "signup", h.TrustProxy); err != nil {
		h.errs.respondError(w, r, err)
		return
	}

	var req signupRequest
	if err := h.Validator.ValidateRequest(r, validation.Request{Body: &req}); err != nil {
		h.errs.respondError(w, r, err)
		return
	}
	email := normalizeEmail(req.Email)

	hashed, err := h.Passwords.Hash(req.Password)
	if err != nil {
		h.errs.respondError(w, r, fmt.Errorf("signup: %w", err))
		return
	}

	user, err := h.Users.Create(ctx, models.User{
		Name:          strings.TrimSpace(req.Name),
		Email:         email,
		Password:      hashed,
		CreatedAt:     h.now(),
		Bio:           req.Bio,
		ProfilePicURL: req.ProfilePicURL,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			logger.Warn("signup existing account", "email", email)
			h.errs.respondError(w, r, errDuplicateUser)
			return
		}
		h.errs.respondError(w, r, fmt.Errorf("signup create user: %w", err))
		return
	}

	if !h.startSession(w, r, user.ID) {
		return
	}

	logger.Info("user signed up", "user_id", user.ID)
	respondJSON(ctx, w, http.StatusCreated, messageResponse{Success: true, Message: "signed up successfully"})
}

// Login handles POST /api/v1/user/login.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if err := checkRateLimit(h.Limiter, r, "login", h.TrustProxy); err != nil {
		h.errs.respondError(w, r, err)
		return
	}

	var req loginRequest
	if err := h.Validator.ValidateRequest(r, validation.Request{Body: &req}); err != nil {
		h.errs.respondError(w, r, err)
		return
	}
	email := normalizeEmail(req.Email)

	user, err := h.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("login unknown email", "email", email)
			h.errs.respondError(w, r, errInvalidCredentials)
			return
		}
		h.errs.respondError(w, r, fmt.Errorf("login lookup: %w", err))
		return
	}

	if !h.Passwords.Verify(req.Password, user.Password) {
		logger.Warn("login password mismatch", "user_id", user.ID)
		h.errs.respondError(w, r, errInvalidCredentials)
		return
	}

	if !h.startSession(w, r, user.ID) {
		return
	}

	respondJSON(ctx, w, http.StatusCreated, messageResponse{Success: true, Message: "logged in successfully"})
}

// Logout handles GET /api/v1/user/logout.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	respondJSON(r.Context(), w, http.StatusOK, messageResponse{Success: true, Message: "logged out successfully"})
}

// Profile handles GET /api/v1/user/{id}. It always describes the caller.
func (h AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.errs.respondError(w, r, auth.ErrUserNotFound)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, profileResponse{User: user})
}

func (h AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID string) bool {
	token, err := h.Sessions.Issue(userID)
	if err != nil {
		h.errs.respondError(w, r, fmt.Errorf("issue session: %w", err))
		return false
	}
	setSessionCookie(w, token, h.Sessions.TTL())
	return true
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
