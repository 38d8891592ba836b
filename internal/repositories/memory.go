package repositories

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/0xMishra/social-media-backend/internal/models"
)

// MemoryStore implements UserRepository and PostRepository in process memory
// for tests and local development. Every method holds the store lock for its
// whole duration, matching the per-document atomicity of the Postgres store.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]models.User
	byEmail map[string]string
	posts   map[string]models.Post
	order   []string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
		posts:   make(map[string]models.Post),
	}
}

// Users returns a UserRepository view of the store.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Posts returns a PostRepository view of the store.
func (s *MemoryStore) Posts() PostRepository { return memoryPosts{s} }

type memoryUsers struct{ s *MemoryStore }

func (u memoryUsers) Create(_ context.Context, user models.User) (models.User, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := s.byEmail[key]; exists {
		return models.User{}, ErrConflict
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.users[user.ID] = user
	s.byEmail[key] = user.ID
	return user, nil
}

func (u memoryUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return s.users[id], nil
}

func (u memoryUsers) FindByID(_ context.Context, id string) (models.User, error) {
	s := u.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

// DeleteUser removes a user. The API never deletes accounts; tests use it to
// exercise sessions that outlive their user.
func (s *MemoryStore) DeleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[id]; ok {
		delete(s.byEmail, strings.ToLower(user.Email))
		delete(s.users, id)
	}
}

type memoryPosts struct{ s *MemoryStore }

func (p memoryPosts) Insert(_ context.Context, post models.Post) (models.Post, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if _, exists := s.posts[post.ID]; exists {
		return models.Post{}, ErrConflict
	}
	post.Likes = []string{}
	post.Comments = []models.Comment{}
	s.posts[post.ID] = post
	s.order = append(s.order, post.ID)
	return clonePost(post), nil
}

func (p memoryPosts) FindByID(_ context.Context, id string) (models.Post, error) {
	s := p.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return models.Post{}, ErrNotFound
	}
	return clonePost(post), nil
}

func (p memoryPosts) List(_ context.Context, filter PostFilter) ([]models.Post, error) {
	s := p.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Post, 0)
	skipped := 0
	for i := len(s.order) - 1; i >= 0; i-- {
		post, ok := s.posts[s.order[i]]
		if !ok {
			continue
		}
		if filter.OwnerID != "" && post.CreatedBy != filter.OwnerID {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, clonePost(post))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (p memoryPosts) UpdateOwned(_ context.Context, id, ownerID string, patch PostPatch) (models.Post, error) {
	return p.s.mutate(id, ownerID, func(post *models.Post) {
		post.ImageURL = patch.ImageURL
		if patch.Description != nil {
			post.Description = *patch.Description
		}
	})
}

func (p memoryPosts) DeleteOwned(_ context.Context, id, ownerID string) (models.Post, error) {
	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok || post.CreatedBy != ownerID {
		return models.Post{}, ErrNotFound
	}
	delete(s.posts, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return clonePost(post), nil
}

func (p memoryPosts) AddLike(_ context.Context, id, userID string) (models.Post, error) {
	return p.s.mutate(id, "", func(post *models.Post) {
		if !post.LikedBy(userID) {
			post.Likes = append(post.Likes, userID)
		}
	})
}

func (p memoryPosts) RemoveLike(_ context.Context, id, userID string) (models.Post, error) {
	return p.s.mutate(id, "", func(post *models.Post) {
		kept := post.Likes[:0]
		for _, liker := range post.Likes {
			if liker != userID {
				kept = append(kept, liker)
			}
		}
		post.Likes = kept
	})
}

func (p memoryPosts) AppendComment(_ context.Context, id string, comment models.Comment) (models.Post, error) {
	return p.s.mutate(id, "", func(post *models.Post) {
		post.Comments = append(post.Comments, comment)
	})
}

// mutate applies fn to a private copy of the post and stores the result. An
// empty ownerID skips the ownership check.
func (s *MemoryStore) mutate(id, ownerID string, fn func(*models.Post)) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok || (ownerID != "" && post.CreatedBy != ownerID) {
		return models.Post{}, ErrNotFound
	}
	post = clonePost(post)
	fn(&post)
	s.posts[id] = post
	return clonePost(post), nil
}

func clonePost(post models.Post) models.Post {
	post.Likes = append([]string{}, post.Likes...)
	post.Comments = append([]models.Comment{}, post.Comments...)
	return post
}

var _ UserRepository = memoryUsers{}
var _ PostRepository = memoryPosts{}
