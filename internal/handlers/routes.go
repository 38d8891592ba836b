package handlers

import (
	"net/http"

	"github.com/0xMishra/social-media-backend/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	errs := errorWriter{production: deps.Production}
	session := middleware.RequireSession(deps.Resolver, errs.respondError)
	protect := func(h http.HandlerFunc) http.Handler { return session(h) }

	health := HealthHandler{}
	users := AuthHandler{
		Users:      deps.Users,
		Passwords:  deps.Passwords,
		Sessions:   deps.Sessions,
		Validator:  deps.Validator,
		Limiter:    deps.AuthLimiter,
		TrustProxy: deps.TrustProxyHeaders,
		errs:       errs,
	}
	postRoutes := PostHandler{
		Posts:     deps.Posts,
		Images:    deps.Images,
		Validator: deps.Validator,
		errs:      errs,
	}

	mux.HandleFunc("GET /healthz", health.Handle)
	mux.HandleFunc("GET /api/v1/{$}", Banner("API"))

	mux.HandleFunc("GET /api/v1/user/{$}", Banner("user api"))
	mux.HandleFunc("POST /api/v1/user/signup", users.SignUp)
	mux.HandleFunc("POST /api/v1/user/login", users.Login)
	mux.Handle("GET /api/v1/user/logout", protect(users.Logout))
	mux.Handle("GET /api/v1/user/{id}", protect(users.Profile))

	mux.HandleFunc("GET /api/v1/post/{$}", Banner("post api"))
	mux.Handle("POST /api/v1/post/create", protect(postRoutes.Create))
	mux.Handle("POST /api/v1/post/image-upload", protect(postRoutes.ImageUpload))
	mux.Handle("GET /api/v1/post/my-posts", protect(postRoutes.MyPosts))
	mux.Handle("GET /api/v1/post/all", protect(postRoutes.All))
	mux.Handle("GET /api/v1/post/{id}", protect(postRoutes.Get))
	mux.Handle("PUT /api/v1/post/{id}", protect(postRoutes.Update))
	mux.Handle("DELETE /api/v1/post/{id}", protect(postRoutes.Delete))
	mux.Handle("PUT /api/v1/post/like/{id}", protect(postRoutes.Like))
	mux.Handle("PUT /api/v1/post/comment/{id}", protect(postRoutes.Comment))

	mux.Handle("/", NotFoundHandler(errs))
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users       UserStore
	Passwords   PasswordHasher
	Sessions    SessionIssuer
	Resolver    SessionResolver
	Posts       PostService
	Images      ImageUploader
	Validator   RequestValidator
	AuthLimiter RateLimiter
	Production  bool

	// TrustProxyHeaders lets the auth limiter key on forwarding headers.
	TrustProxyHeaders bool
}
