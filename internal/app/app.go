package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"go-todo-list/internal/auth"
	"go-todo-list/internal/config"
	"go-todo-list/internal/database"
	"go-todo-list/internal/handler"
	"go-todo-list/internal/metrics"
	"go-todo-list/internal/middleware"
	"go-todo-list/internal/repository"
	"go-todo-list/internal/router"
	"go-todo-list/internal/service"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	userRepo := repository.NewUserRepository(db.SQL)
	todoRepo := repository.NewTodoRepository(db.SQL)
	slog.Info("database ready")

	authService := service.NewAuthService(userRepo, auth.NewPasswordHasher(cfg.BcryptCost), issuer)
	todoService := service.NewTodoService(todoRepo)
	adminService := service.NewAdminService(userRepo, todoRepo)

	opts := router.Options{
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	}
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts.Metrics = metrics.New(registry)
		opts.Metrics.RegisterPool(db.Pool)
	}

	appRouter := router.New(opts, middleware.NewAuthMiddleware(issuer), router.Handlers{
		Auth:   handler.NewAuthHandler(authService, handler.CookieConfig{Secure: cfg.IsProduction(), TTL: issuer.TTL()}),
		Todo:   handler.NewTodoHandler(todoService),
		Admin:  handler.NewAdminHandler(adminService),
		Health: handler.NewHealthHandler(db),
		Docs:   handler.NewDocsHandler(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		db:           db,
		cleanupFuncs: []func(){db.Close},
	}, nil
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests before
// releasing the database pool.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		a.cleanup()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(shutdownCtx)
	a.cleanup()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, fn := range a.cleanupFuncs {
		fn()
	}
}
