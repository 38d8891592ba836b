package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/0xMishra/social-media-backend/internal/auth"
	"github.com/0xMishra/social-media-backend/internal/logging"
	"github.com/0xMishra/social-media-backend/internal/posts"
	"github.com/0xMishra/social-media-backend/internal/validation"
)

// redactedStack replaces error detail in production responses.
const redactedStack = "🥞"

var (
	errDuplicateUser      = errors.New("user already exists")
	errInvalidCredentials = errors.New("invalid email or password")
	errRateLimited        = errors.New("too many requests, please try again later")
	errUploadsDisabled    = errors.New("image uploads are not configured")
)

type routeNotFoundError struct {
	path string
}

func (e routeNotFoundError) Error() string {
	return fmt.Sprintf("not found - %s", e.path)
}

type errorResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
	Stack   string                  `json:"stack,omitempty"`
}

// errorWriter is the single place request errors become responses.
type errorWriter struct {
	production bool
}

func (e errorWriter) respondError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	status, body, withStack := classify(err)
	if withStack {
		body.Stack = e.stack(err)
	}
	if status >= http.StatusInternalServerError {
		logging.FromContext(ctx).Error("unhandled request error", "error", err)
	}

	respondJSON(ctx, w, status, body)
}

func (e errorWriter) stack(err error) string {
	if e.production {
		return redactedStack
	}
	return fmt.Sprintf("%+v", err)
}

// classify maps err onto a status and body. Errors raised by the session and
// credential checks answer without a stack.
func classify(err error) (int, errorResponse, bool) {
	if verr, ok := validation.As(err); ok {
		return http.StatusUnprocessableEntity, errorResponse{Message: verr.Error(), Errors: verr.Fields}, true
	}

	var notFound routeNotFoundError
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, errorResponse{Message: notFound.Error()}, true
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusBadRequest, errorResponse{Message: "not logged in"}, false
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, errorResponse{Message: "invalid session"}, false
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Message: "user not found"}, false
	case errors.Is(err, errDuplicateUser), errors.Is(err, errInvalidCredentials):
		return http.StatusBadRequest, errorResponse{Message: err.Error()}, false
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests, errorResponse{Message: err.Error()}, false
	case errors.Is(err, errUploadsDisabled):
		return http.StatusServiceUnavailable, errorResponse{Message: err.Error()}, false
	case errors.Is(err, posts.ErrNotFound):
		return http.StatusNotFound, errorResponse{Message: posts.ErrNotFound.Error()}, true
	default:
		return http.StatusInternalServerError, errorResponse{Message: "internal server error"}, true
	}
}

// NotFoundHandler answers every request no route matched.
func NotFoundHandler(errs errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		errs.respondError(w, r, routeNotFoundError{path: r.URL.RequestURI()})
	}
}
