package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/0xMishra/social-media-backend/internal/config"
	"github.com/0xMishra/social-media-backend/internal/db"
	"github.com/0xMishra/social-media-backend/internal/handlers"
	"github.com/0xMishra/social-media-backend/internal/httpserver"
	"github.com/0xMishra/social-media-backend/internal/logging"
	"github.com/0xMishra/social-media-backend/internal/middleware"
)

// Run bootstraps the social backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve or migrate")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "migrate":
		return runMigrations(ctx, args[1:], os.Stdout)
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     logging.ParseLevel(cfg.LogLevel),
	})).With(slog.String("env", cfg.Environment))
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.close()

	deps, err := buildDependencies(logging.WithLogger(ctx, logger), cfg, stores)
	if err != nil {
		return err
	}

	srv := httpserver.New(cfg.AppPort, newHandler(cfg, logger, deps), httpserver.Timeouts{
		Read:  cfg.ReadTimeout,
		Write: cfg.WriteTimeout,
	})

	listener, err := net.Listen("tcp", srv.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr(), err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", "port", cfg.AppPort, "store", cfg.Store)
		return srv.Serve(listener)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// newHandler assembles the middleware chain: request logging, then CORS, then routing.
func newHandler(cfg config.Config, logger *slog.Logger, deps handlers.Dependencies) http.Handler {
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, deps)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
	})

	return middleware.RequestLogger(logger)(corsMiddleware.Handler(mux))
}

func runMigrations(ctx context.Context, args []string, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("migrations require the %s store, got %q", config.StorePostgres, cfg.Store)
	}

	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	migrationDir := cfg.MigrationDir
	if !filepath.IsAbs(migrationDir) {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		migrationDir = filepath.Join(wd, migrationDir)
	}
	migrator := db.Migrator{Dir: migrationDir}

	switch command {
	case "up", "status":
	case "down":
		return errors.New("down migrations are not supported yet")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if command == "status" {
		status, err := migrator.Status(ctx, pool)
		if err != nil {
			return err
		}
		for _, m := range status {
			mark := " "
			if m.Applied {
				mark = "x"
			}
			fmt.Fprintf(out, "[%s] %s\n", mark, m.Name)
		}
		return nil
	}

	applied, err := migrator.Up(ctx, pool)
	for _, name := range applied {
		fmt.Fprintf(out, "applied migration %s\n", name)
	}
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(out, "no migrations to apply")
	}
	return nil
}
