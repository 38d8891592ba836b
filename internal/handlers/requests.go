package handlers

import (
	"time"

	"github.com/0xMishra/social-media-backend/internal/models"
)

const (
	defaultPageLimit = 50
)

type signupRequest struct {
	Name          string `json:"name" validate:"required,min=3"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8,max=20,password"`
	Bio           string `json:"bio"`
	ProfilePicURL string `json:"profilePicUrl"`
}

func (s *signupRequest) ApplyDefaults(time.Time) {
	s.Bio = ""
	s.ProfilePicURL = ""
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=20,password"`
}

// postRequest is the write model for creating and updating posts. The
// server-owned fields are accepted so existing clients keep working, then
// discarded.
type postRequest struct {
	Description *string          `json:"description"`
	ImageURL    string           `json:"imageUrl" validate:"required,min=3" errmsg:"required=Image is required"`
	Likes       []string         `json:"likes"`
	Comments    []models.Comment `json:"comments"`
	CreatedBy   *string          `json:"createdBy"`
	CreatedAt   *string          `json:"createdAt"`
}

type commentRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

type postIDParams struct {
	ID string `path:"id" validate:"required,uuid"`
}

type listQuery struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

func (q *listQuery) ApplyDefaults(time.Time) {
	q.Limit = defaultPageLimit
	q.Offset = 0
}

type imageUploadRequest struct {
	ContentType string `json:"contentType" validate:"required,oneof=image/jpeg image/png image/gif image/webp"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type profileResponse struct {
	User models.User `json:"user"`
}
