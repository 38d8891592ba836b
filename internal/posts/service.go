// Package posts implements the post lifecycle: owner-scoped writes, open reads
// and the like and comment mutators.
package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/0xMishra/social-media-backend/internal/models"
	"github.com/0xMishra/social-media-backend/internal/repositories"
)

var (
	// ErrNotFound indicates the post does not exist or is not owned by the caller.
	ErrNotFound = errors.New("post not found")
	// ErrInsertFailed indicates the store did not acknowledge a new post.
	ErrInsertFailed = errors.New("trouble creating new post")
	// ErrUpdateFailed indicates a write-back matched nothing after the post was read.
	ErrUpdateFailed = errors.New("error while updating the post")
)

// PostInput carries the client-writable fields of a post. Ownership, timestamps,
// likes and comments are never taken from the client.
type PostInput struct {
	Description *string
	ImageURL    string
}

// Page bounds a listing.
type Page struct {
	Limit  int
	Offset int
}

// Service coordinates post reads and writes against a PostRepository.
type Service struct {
	Posts repositories.PostRepository
	Now   func() time.Time
}

// NewService constructs a Service using the wall clock.
func NewService(repo repositories.PostRepository) *Service {
	return &Service{Posts: repo, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Create stores a new post owned by ownerID with empty likes and comments.
func (s *Service) Create(ctx context.Context, ownerID string, input PostInput) error {
	post := models.Post{
		CreatedBy: ownerID,
		ImageURL:  input.ImageURL,
		CreatedAt: s.now(),
	}
	if input.Description != nil {
		post.Description = *input.Description
	}

	if _, err := s.Posts.Insert(ctx, post); err != nil {
		return fmt.Errorf("%w: %w", ErrInsertFailed, err)
	}
	return nil
}

// Get returns any post by id.
func (s *Service) Get(ctx context.Context, id string) (models.Post, error) {
	post, err := s.Posts.FindByID(ctx, id)
	if err != nil {
		return models.Post{}, translate(err, ErrNotFound)
	}
	return post, nil
}

// List returns every post in store order.
func (s *Service) List(ctx context.Context, page Page) ([]models.Post, error) {
	return s.list(ctx, "", page)
}

// ListMine returns the posts created by ownerID.
func (s *Service) ListMine(ctx context.Context, ownerID string, page Page) ([]models.Post, error) {
	return s.list(ctx, ownerID, page)
}

func (s *Service) list(ctx context.Context, ownerID string, page Page) ([]models.Post, error) {
	posts, err := s.Posts.List(ctx, repositories.PostFilter{OwnerID: ownerID, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// Update replaces the image and, when supplied, the description of a post
// owned by ownerID. A post owned by someone else is reported as ErrNotFound.
func (s *Service) Update(ctx context.Context, id, ownerID string, input PostInput) (models.Post, error) {
	post, err := s.Posts.UpdateOwned(ctx, id, ownerID, repositories.PostPatch{
		ImageURL:    input.ImageURL,
		Description: input.Description,
	})
	if err != nil {
		return models.Post{}, translate(err, ErrNotFound)
	}
	return post, nil
}

// Delete removes a post owned by ownerID.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.Posts.DeleteOwned(ctx, id, ownerID); err != nil {
		return translate(err, ErrNotFound)
	}
	return nil
}

// ToggleLike flips userID's membership in the likes of post id and reports
// whether the user now likes it. The branch is chosen from a prior read; the
// write itself is an atomic add-if-absent or remove, so likes never hold a
// duplicate even when two toggles race.
func (s *Service) ToggleLike(ctx context.Context, id, userID string) (models.Post, bool, error) {
	current, err := s.Posts.FindByID(ctx, id)
	if err != nil {
		return models.Post{}, false, translate(err, ErrNotFound)
	}

	if current.LikedBy(userID) {
		post, err := s.Posts.RemoveLike(ctx, id, userID)
		if err != nil {
			return models.Post{}, false, translate(err, ErrUpdateFailed)
		}
		return post, false, nil
	}

	post, err := s.Posts.AddLike(ctx, id, userID)
	if err != nil {
		return models.Post{}, false, translate(err, ErrUpdateFailed)
	}
	return post, true, nil
}

// AddComment appends a comment by userID to post id, preserving order.
func (s *Service) AddComment(ctx context.Context, id, userID, text string) (models.Post, error) {
	if _, err := s.Posts.FindByID(ctx, id); err != nil {
		return models.Post{}, translate(err, ErrNotFound)
	}

	post, err := s.Posts.AppendComment(ctx, id, models.Comment{CommentedBy: userID, Text: text})
	if err != nil {
		return models.Post{}, translate(err, ErrUpdateFailed)
	}
	return post, nil
}

// translate maps a repository miss to the given sentinel and wraps anything else.
func translate(err error, miss error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return miss
	}
	return fmt.Errorf("posts store: %w", err)
}
