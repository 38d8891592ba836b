package app

import (
	"context"
	"fmt"
	"time"

	"github.com/0xMishra/social-media-backend/internal/auth"
	"github.com/0xMishra/social-media-backend/internal/config"
	"github.com/0xMishra/social-media-backend/internal/db"
	"github.com/0xMishra/social-media-backend/internal/handlers"
	"github.com/0xMishra/social-media-backend/internal/logging"
	"github.com/0xMishra/social-media-backend/internal/middleware"
	"github.com/0xMishra/social-media-backend/internal/posts"
	"github.com/0xMishra/social-media-backend/internal/repositories"
	"github.com/0xMishra/social-media-backend/internal/storage"
	"github.com/0xMishra/social-media-backend/internal/validation"
)

// rateLimitTTL is how long an idle client key is remembered by the auth limiter.
const rateLimitTTL = 10 * time.Minute

type storeSet struct {
	users repositories.UserRepository
	posts repositories.PostRepository
	close func()
}

// openStores selects the configured persistence backend.
func openStores(ctx context.Context, cfg config.Config) (storeSet, error) {
	switch cfg.Store {
	case config.StoreMemory:
		mem := repositories.NewMemoryStore()
		return storeSet{users: mem.Users(), posts: mem.Posts(), close: func() {}}, nil
	case config.StorePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return storeSet{}, err
		}
		return postgresStores(pool), nil
	default:
		return storeSet{}, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func postgresStores(pool db.Pool) storeSet {
	return storeSet{
		users: repositories.NewPostgresUserRepository(pool),
		posts: repositories.NewPostgresPostRepository(pool),
		close: pool.Close,
	}
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, cfg config.Config, stores storeSet) (handlers.Dependencies, error) {
	logger := logging.FromContext(ctx)

	secret := cfg.JWTSecret
	if secret == "" {
		if cfg.Production() {
			return handlers.Dependencies{}, fmt.Errorf("SOCIAL_JWT_SECRET is required in production")
		}
		generated, err := auth.RandomSecret()
		if err != nil {
			return handlers.Dependencies{}, err
		}
		secret = generated
		logger.Warn("SOCIAL_JWT_SECRET not set, using a random secret; sessions will not survive a restart")
	}

	issuer, err := auth.NewTokenIssuer(secret, cfg.SessionTTL)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	deps := handlers.Dependencies{
		Users:       stores.users,
		Passwords:   auth.NewHasher(cfg.BcryptCost),
		Sessions:    issuer,
		Resolver:    auth.Resolver{Tokens: issuer, Users: stores.users},
		Posts:       posts.NewService(stores.posts),
		Validator:   validation.New(),
		AuthLimiter: middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, cfg.AuthRateBurst, rateLimitTTL),
		Production:  cfg.Production(),

		TrustProxyHeaders: cfg.TrustProxyHeaders,
	}

	if cfg.ObjectStore.Enabled() {
		images, err := storage.NewImageStore(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, err
		}
		deps.Images = images
	} else {
		logger.Info("SOCIAL_S3_BUCKET not set, image uploads disabled")
	}

	return deps, nil
}
