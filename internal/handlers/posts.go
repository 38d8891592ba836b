package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/0xMishra/social-media-backend/internal/auth"
	"github.com/0xMishra/social-media-backend/internal/logging"
	"github.com/0xMishra/social-media-backend/internal/models"
	"github.com/0xMishra/social-media-backend/internal/posts"
	"github.com/0xMishra/social-media-backend/internal/storage"
	"github.com/0xMishra/social-media-backend/internal/validation"
)

// PostHandler implements the post endpoints. Every route it serves sits behind
// the session middleware.
type PostHandler struct {
	Posts     PostService
	Images    ImageUploader
	Validator RequestValidator

	errs errorWriter
}

// Create handles POST /api/v1/post/create.
func (h PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var body postRequest
	if err := h.Validator.ValidateRequest(r, validation.Request{Body: &body}); err != nil {
		h.errs.respondError(w, r, err)
		return
	}

	if err := h.Posts.Create(r.Context(), caller.ID, body.input()); err != nil {
		h.errs.respondError(w, r, err)
		return
	}

	respondJSON(r.Context(), w, http.StatusCreated, messageResponse{Success: true, Message: "post created successfully"})
}

// MyPosts handles GET /api/v1/post/my-posts.
func (h PostHandler) MyPosts(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var query listQuery
	if err := h.Validator.ValidateRequest(r, validation.Request{Query: &query}); err != nil {
		h.errs.respondError(w, r, err)
		return
	}

	found, err := h.Posts.ListMine(r.Context(), caller.ID, query.page())
	if err != nil {
		h.errs.respondError(w, r, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, found)
}

// All handles GET /api/v1/post/all.
func (h PostHandler) All(w http.ResponseWriter, r *http.Request) {
	var query listQuery
	if err := h.Validator.ValidateRequest(r, validation.Request{Query: &query}); err != nil {
		h.errs.respondError(w, r, err)
		return
	}

	found, err := h.Posts.List(r.Context(), query.page())
	if err != nil {
		h.errs.respondError(w, r, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, found)
}

// Get handles GET /api/v1/post/{id}.
func (h PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	var params postIDParams
	if err := h.Validator.ValidateRequest(r, validation.Request{Params: &params}); err != nil {
		h.errs.respondError(w, r, err)
		return
	}

	post, err := h.Posts.Get(r.Context(), params.ID)
	if err != nil {
		h.errs.respondError(w, r, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, post)
}

// Update handles PUT /api/v1/post/{id}.
func (h PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var (
		params postIDParams
		body   postRequest
	)
	if err := h.Validator.ValidateRequest(r, validation.Request{Params: &params, Body: &body}); err != nil {
		h.errs.respondError(w, r, err)
		return
	}

	post, err := h.Posts.Update(r.Context(), params.ID, caller.ID, body.input())
	if err != nil {
		h.errs.respondError(w, r, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, post)
}

// Delete handles DELETE /api/v1/post/{id}.
func (h PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var params postIDParams
	if err := h.Validator.ValidateRequest(r, validation.Request{Params: &params}); err != nil {
		h.errs.respondError(w, r, err)
		return
	}

	if err := h.Posts.Delete(r.Context(), params.ID, caller.ID); err != nil {
		h.errs.respondError(w, r, err)
		return
	}
	logging.FromContext(r.Context()).Info("post deleted", "post_id", params.ID)
	respondNoContent(w)
}

// Like handles PUT /api/v1/post/like/{id}. A like answers 200 with the post,
// an unlike answers 204.
func (h PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var params postIDParams
	if err := h.Validator.ValidateRequest(r, validation.Request{Params: &params}); err != nil {
		h.errs.respondError(w, r, err)
		return
	}

	post, liked, err := h.Posts.ToggleLike(r.Context(), params.ID, caller.ID)
	if err != nil {
		h.errs.respondError(w, r, err)
		return
	}
	if !liked {
		respondNoContent(w)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, post)
}

// Comment handles PUT /api/v1/post/comment/{id}.
func (h PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var (
		params postIDParams
		body   commentRequest
	)
	if err := h.Validator.ValidateRequest(r, validation.Request{Params: &params, Body: &body}); err != nil {
		h.errs.respondError(w, r, err)
		return
	}

	post, err := h.Posts.AddComment(r.Context(), params.ID, caller.ID, body.Text)
	if err != nil {
		h.errs.respondError(w, r, err)
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, post)
}

// ImageUpload handles POST /api/v1/post/image-upload.
func (h PostHandler) ImageUpload(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	if h.Images == nil {
		h.errs.respondError(w, r, errUploadsDisabled)
		return
	}

	var body imageUploadRequest
	if err := h.Validator.ValidateRequest(r, validation.Request{Body: &body}); err != nil {
		h.errs.respondError(w, r, err)
		return
	}

	upload, err := h.Images.PresignUpload(r.Context(), caller.ID, body.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedContentType) {
			h.errs.respondError(w, r, &validation.Error{Fields: []validation.FieldError{{Field: "contentType", Message: err.Error()}}})
			return
		}
		h.errs.respondError(w, r, fmt.Errorf("presign image upload: %w", err))
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, upload)
}

// caller returns the session user. The session middleware guarantees one; a
// missing user means the route was registered without it.
func (h PostHandler) caller(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.errs.respondError(w, r, auth.ErrUnauthenticated)
		return models.User{}, false
	}
	return user, true
}

func (p postRequest) input() posts.PostInput {
	return posts.PostInput{Description: p.Description, ImageURL: p.ImageURL}
}

func (q listQuery) page() posts.Page {
	return posts.Page{Limit: q.Limit, Offset: q.Offset}
}
