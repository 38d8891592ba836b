package repositories

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/0xMishra/social-media-backend/internal/models"
)

func TestMemoryStoreUsers(t *testing.T) {
	exerciseUserRepository(t, NewMemoryStore().Users())
}

func TestMemoryStorePosts(t *testing.T) {
	exercisePostRepository(t, NewMemoryStore().Posts(), uuid.NewString(), uuid.NewString())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	post, err := store.Posts().Insert(ctx, models.Post{CreatedBy: "owner", ImageURL: "img.png", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	liked, err := store.Posts().AddLike(ctx, post.ID, "user-1")
	if err != nil {
		t.Fatalf("add like: %v", err)
	}
	liked.Likes[0] = "tampered"

	fetched, err := store.Posts().FindByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if fetched.Likes[0] != "user-1" {
		t.Fatalf("caller mutation leaked into the store: %v", fetched.Likes)
	}
}

func TestMemoryStoreConcurrentLikesNeverDuplicate(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	post, err := store.Posts().Insert(ctx, models.Post{CreatedBy: "owner", ImageURL: "img.png", CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Posts().AddLike(ctx, post.ID, "user-1")
		}()
	}
	wg.Wait()

	fetched, err := store.Posts().FindByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(fetched.Likes) != 1 {
		t.Fatalf("expected exactly one like, got %v", fetched.Likes)
	}
}

func TestMemoryStoreDeleteUser(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	user, err := store.Users().Create(ctx, models.User{Name: "bob", Email: "Bob@Example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.DeleteUser(user.ID)

	if _, err := store.Users().FindByID(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := store.Users().Create(ctx, models.User{Name: "bob", Email: "bob@example.com"}); err != nil {
		t.Fatalf("expected email to be reusable after delete: %v", err)
	}
}
