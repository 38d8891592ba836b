package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/0xMishra/social-media-backend/internal/models"
	"github.com/0xMishra/social-media-backend/internal/posts"
	"github.com/0xMishra/social-media-backend/internal/storage"
	"github.com/0xMishra/social-media-backend/internal/validation"
)

// UserStore captures the persistence operations required by the auth handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// PasswordHasher hashes new passwords and checks submitted ones.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// SessionIssuer signs session tokens for authenticated users.
type SessionIssuer interface {
	Issue(userID string) (models.SessionToken, error)
	TTL() time.Duration
}

// SessionResolver turns a session cookie value into the stored user.
type SessionResolver interface {
	Resolve(ctx context.Context, raw string) (models.User, error)
}

// PostService captures the post operations exposed over HTTP.
type PostService interface {
	Create(ctx context.Context, ownerID string, input posts.PostInput) error
	Get(ctx context.Context, id string) (models.Post, error)
	List(ctx context.Context, page posts.Page) ([]models.Post, error)
	ListMine(ctx context.Context, ownerID string, page posts.Page) ([]models.Post, error)
	Update(ctx context.Context, id, ownerID string, input posts.PostInput) (models.Post, error)
	Delete(ctx context.Context, id, ownerID string) error
	ToggleLike(ctx context.Context, id, userID string) (models.Post, bool, error)
	AddComment(ctx context.Context, id, userID, text string) (models.Post, error)
}

// ImageUploader presigns direct uploads of post images.
type ImageUploader interface {
	PresignUpload(ctx context.Context, userID, contentType string) (storage.Upload, error)
}

// RequestValidator binds request parts into shapes and checks them.
type RequestValidator interface {
	ValidateRequest(r *http.Request, req validation.Request) error
}
