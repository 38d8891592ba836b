package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0xMishra/social-media-backend/internal/config"
	"github.com/0xMishra/social-media-backend/internal/logging"
)

type fakePool struct{ closed bool }

func (*fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (p *fakePool) Close() { p.closed = true }

func baseConfig() config.Config {
	return config.Config{
		Environment:        config.EnvDevelopment,
		Store:              config.StoreMemory,
		SessionTTL:         time.Hour,
		BcryptCost:         4,
		AuthRateLimit:      10,
		AuthRateWindow:     time.Minute,
		AuthRateBurst:      5,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
	}
}

func TestBuildDependencies(t *testing.T) {
	var logs bytes.Buffer
	ctx := logging.WithLogger(context.Background(), slog.New(slog.NewJSONHandler(&logs, nil)))

	stores, err := openStores(ctx, baseConfig())
	if err != nil {
		t.Fatalf("open stores: %v", err)
	}

	deps, err := buildDependencies(ctx, baseConfig(), stores)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps.Users == nil || deps.Passwords == nil || deps.Sessions == nil || deps.Resolver == nil {
		t.Fatal("expected auth collaborators to be configured")
	}
	if deps.Posts == nil || deps.Validator == nil || deps.AuthLimiter == nil {
		t.Fatal("expected post collaborators to be configured")
	}
	if deps.Images != nil {
		t.Fatal("expected image uploads to be disabled without a bucket")
	}
	if !strings.Contains(logs.String(), "random secret") {
		t.Fatalf("expected a warning about the generated secret: %s", logs.String())
	}
}

func TestBuildDependenciesWithObjectStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))

	cfg := baseConfig()
	cfg.JWTSecret = "configured-secret"
	cfg.ObjectStore = config.ObjectStoreConfig{Bucket: "test-bucket", Endpoint: "http://localhost:9000", Region: "us-east-1"}

	deps, err := buildDependencies(context.Background(), cfg, postgresStores(&fakePool{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.Images == nil {
		t.Fatal("expected image uploader to be configured")
	}
}

func TestBuildDependenciesProductionNeedsSecret(t *testing.T) {
	cfg := baseConfig()
	cfg.Environment = config.EnvProduction

	if _, err := buildDependencies(context.Background(), cfg, postgresStores(&fakePool{})); err == nil {
		t.Fatal("expected production without a secret to fail")
	}
}

func TestPostgresStoresClosePool(t *testing.T) {
	pool := &fakePool{}
	postgresStores(pool).close()
	if !pool.closed {
		t.Fatal("expected close to release the pool")
	}
}

func TestNewHandlerCORSAndLogging(t *testing.T) {
	cfg := baseConfig()
	stores, _ := openStores(context.Background(), cfg)
	deps, err := buildDependencies(context.Background(), cfg, stores)
	if err != nil {
		t.Fatalf("build dependencies: %v", err)
	}
	handler := newHandler(cfg, slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)), deps)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/post/all", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin got %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("expected credentials to be allowed")
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected healthy response with request id got %d %v", rec.Code, rec.Header())
	}
}

func TestRunRejectsUnknownCommands(t *testing.T) {
	if err := Run(context.Background(), nil); err == nil {
		t.Fatal("expected error without a command")
	}
	if err := Run(context.Background(), []string{"seed"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}
