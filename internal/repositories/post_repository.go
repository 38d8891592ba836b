package repositories

import (
	"context"

	"github.com/0xMishra/social-media-backend/internal/models"
)

// PostFilter narrows and pages a post listing. An empty OwnerID lists every post.
type PostFilter struct {
	OwnerID string
	Limit   int
	Offset  int
}

// PostPatch lists the client-editable fields of a post. A nil Description
// leaves the stored value untouched.
type PostPatch struct {
	ImageURL    string
	Description *string
}

// PostRepository defines the data access contract for posts. Every method that
// writes returns the document as it is after the write, or ErrNotFound when no
// document matched the filter.
type PostRepository interface {
	Insert(ctx context.Context, post models.Post) (models.Post, error)
	FindByID(ctx context.Context, id string) (models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]models.Post, error)
	UpdateOwned(ctx context.Context, id, ownerID string, patch PostPatch) (models.Post, error)
	DeleteOwned(ctx context.Context, id, ownerID string) (models.Post, error)
	AddLike(ctx context.Context, id, userID string) (models.Post, error)
	RemoveLike(ctx context.Context, id, userID string) (models.Post, error)
	AppendComment(ctx context.Context, id string, comment models.Comment) (models.Post, error)
}
