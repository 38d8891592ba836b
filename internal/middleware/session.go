package middleware

import (
	"context"
	"net/http"

	"github.com/0xMishra/social-media-backend/internal/auth"
	"github.com/0xMishra/social-media-backend/internal/logging"
	"github.com/0xMishra/social-media-backend/internal/models"
)

// SessionResolver turns the raw session cookie value into its user.
type SessionResolver interface {
	Resolve(ctx context.Context, raw string) (models.User, error)
}

// ErrorResponder writes the terminal response for a failed request.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// RequireSession admits a request only when its session cookie resolves to a
// stored user, which is then available through auth.UserFromContext. CORS
// preflight requests pass through untouched.
func RequireSession(resolver SessionResolver, onError ErrorResponder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			var raw string
			if cookie, err := r.Cookie(auth.SessionCookie); err == nil {
				raw = cookie.Value
			}

			user, err := resolver.Resolve(r.Context(), raw)
			if err != nil {
				onError(w, r, err)
				return
			}

			ctx := auth.WithUser(r.Context(), user)
			ctx = logging.WithUserID(ctx, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
