package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/0xMishra/social-media-backend/internal/models"
)

// The contract helpers run the same expectations against every store
// implementation.

func exerciseUserRepository(t *testing.T, repo UserRepository) {
	t.Helper()
	ctx := context.Background()

	user, err := repo.Create(ctx, models.User{
		Name:      "alice",
		Email:     "alice@example.com",
		Password:  "secret-hash",
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected store to assign an id")
	}

	_, err = repo.Create(ctx, models.User{Name: "alice2", Email: user.Email, Password: "other", CreatedAt: time.Now().UTC()})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}

	byEmail, err := repo.FindByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.Password != "secret-hash" || byEmail.Name != "alice" {
		t.Fatalf("unexpected user %+v", byEmail)
	}

	byID, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if byID.Email != user.Email {
		t.Fatalf("unexpected user %+v", byID)
	}

	if _, err := repo.FindByID(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing id, got %v", err)
	}
	if _, err := repo.FindByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing email, got %v", err)
	}
}

func exercisePostRepository(t *testing.T, repo PostRepository, owner, other string) {
	t.Helper()
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	first, err := repo.Insert(ctx, models.Post{CreatedBy: owner, ImageURL: "first.png", Description: "one", CreatedAt: base})
	if err != nil {
		t.Fatalf("insert first: %v", err)
	}
	if first.ID == "" || len(first.Likes) != 0 || len(first.Comments) != 0 {
		t.Fatalf("unexpected inserted post %+v", first)
	}

	second, err := repo.Insert(ctx, models.Post{CreatedBy: other, ImageURL: "second.png", CreatedAt: base.Add(time.Second)})
	if err != nil {
		t.Fatalf("insert second: %v", err)
	}

	all, err := repo.List(ctx, PostFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID || all[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", all)
	}

	paged, err := repo.List(ctx, PostFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(paged) != 1 || paged[0].ID != first.ID {
		t.Fatalf("unexpected page %+v", paged)
	}

	mine, err := repo.List(ctx, PostFilter{OwnerID: owner})
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != first.ID {
		t.Fatalf("unexpected owner listing %+v", mine)
	}

	if _, err := repo.UpdateOwned(ctx, first.ID, other, PostPatch{ImageURL: "hijack.png"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound updating another owner's post, got %v", err)
	}
	updated, err := repo.UpdateOwned(ctx, first.ID, owner, PostPatch{ImageURL: "first-v2.png"})
	if err != nil {
		t.Fatalf("update owned: %v", err)
	}
	if updated.ImageURL != "first-v2.png" || updated.Description != "one" {
		t.Fatalf("expected description to be kept, got %+v", updated)
	}
	description := "edited"
	updated, err = repo.UpdateOwned(ctx, first.ID, owner, PostPatch{ImageURL: "first-v2.png", Description: &description})
	if err != nil {
		t.Fatalf("update description: %v", err)
	}
	if updated.Description != "edited" {
		t.Fatalf("expected description replaced, got %+v", updated)
	}

	liked, err := repo.AddLike(ctx, first.ID, other)
	if err != nil {
		t.Fatalf("add like: %v", err)
	}
	liked, err = repo.AddLike(ctx, first.ID, other)
	if err != nil {
		t.Fatalf("add like twice: %v", err)
	}
	if len(liked.Likes) != 1 || liked.Likes[0] != other {
		t.Fatalf("expected a single like, got %v", liked.Likes)
	}
	unliked, err := repo.RemoveLike(ctx, first.ID, other)
	if err != nil {
		t.Fatalf("remove like: %v", err)
	}
	if len(unliked.Likes) != 0 {
		t.Fatalf("expected likes to be empty, got %v", unliked.Likes)
	}

	if _, err := repo.AppendComment(ctx, first.ID, models.Comment{CommentedBy: owner, Text: "c1"}); err != nil {
		t.Fatalf("append first comment: %v", err)
	}
	commented, err := repo.AppendComment(ctx, first.ID, models.Comment{CommentedBy: other, Text: "c2"})
	if err != nil {
		t.Fatalf("append second comment: %v", err)
	}
	if len(commented.Comments) != 2 || commented.Comments[0].Text != "c1" || commented.Comments[1].Text != "c2" || commented.Comments[1].CommentedBy != other {
		t.Fatalf("unexpected comments %+v", commented.Comments)
	}

	missing := uuid.NewString()
	if _, err := repo.FindByID(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.AddLike(ctx, missing, owner); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound liking missing post, got %v", err)
	}
	if _, err := repo.AppendComment(ctx, missing, models.Comment{CommentedBy: owner, Text: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound commenting on missing post, got %v", err)
	}

	if _, err := repo.DeleteOwned(ctx, first.ID, other); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound deleting another owner's post, got %v", err)
	}
	if _, err := repo.FindByID(ctx, first.ID); err != nil {
		t.Fatalf("post should survive a foreign delete: %v", err)
	}
	if _, err := repo.DeleteOwned(ctx, first.ID, owner); err != nil {
		t.Fatalf("delete owned: %v", err)
	}
	if _, err := repo.FindByID(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted post to be gone, got %v", err)
	}
}
