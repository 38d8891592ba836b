package models

import "time"

// User represents an account that can author, like and comment on posts.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Password      string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	Bio           string    `json:"bio"`
	ProfilePicURL string    `json:"profilePicUrl"`
}

// Post is a single image post together with its likes and comments.
type Post struct {
	ID          string    `json:"id"`
	CreatedBy   string    `json:"createdBy"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	Likes       []string  `json:"likes"`
	Comments    []Comment `json:"comments"`
}

// Comment is embedded in a Post and is never stored on its own.
type Comment struct {
	CommentedBy string `json:"commentedBy"`
	Text        string `json:"text"`
}

// LikedBy reports whether userID is a member of the post's likes.
func (p Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// SessionToken is a signed session credential and the moment it stops being valid.
type SessionToken struct {
	Value     string
	ExpiresAt time.Time
}
