package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/0xMishra/social-media-backend/internal/models"
	"github.com/0xMishra/social-media-backend/internal/repositories"
)

// SessionCookie names the cookie that carries the session token.
const SessionCookie = "token"

var (
	// ErrUnauthenticated indicates the request carried no session credential.
	ErrUnauthenticated = errors.New("not logged in")
	// ErrUserNotFound indicates a valid token whose user no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// UserFinder loads users by identifier.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// TokenParser verifies a session token and returns its subject.
type TokenParser interface {
	Parse(raw string) (string, error)
}

// Resolver turns a raw session credential into the persisted user it names.
type Resolver struct {
	Tokens TokenParser
	Users  UserFinder
}

// Resolve verifies raw and loads the referenced user from the store. The user
// is looked up on every call so deleted accounts stop authenticating at once.
func (r Resolver) Resolve(ctx context.Context, raw string) (models.User, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.User{}, ErrUnauthenticated
	}

	userID, err := r.Tokens.Parse(raw)
	if err != nil {
		return models.User{}, err
	}

	user, err := r.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("resolve session user: %w", err)
	}

	return user, nil
}

type ctxKey struct{}

// WithUser attaches the authenticated user to ctx.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (models.User, bool) {
	if ctx == nil {
		return models.User{}, false
	}
	user, ok := ctx.Value(ctxKey{}).(models.User)
	return user, ok && user.ID != ""
}
