package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-tracker-api/internal/config"
	"github.com/phrazzld/task-tracker-api/internal/metrics"
	"github.com/phrazzld/task-tracker-api/internal/platform/postgres"
	"github.com/phrazzld/task-tracker-api/internal/service"
	"github.com/phrazzld/task-tracker-api/internal/service/auth"
	"github.com/phrazzld/task-tracker-api/internal/store"
	"github.com/phrazzld/task-tracker-api/internal/store/memory"
)

// application holds the shared dependencies of the server so they can be
// wired once and released together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil when running on the memory driver.
	db *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService  auth.JWTService
	userService service.UserService
	taskService service.TaskService

	metrics *metrics.Collector
}

// newApplication wires stores and services. A nil db selects the in-memory
// stores.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.NewCollector(),
	}

	if db != nil {
		app.userStore = postgres.NewPostgresUserStore(db, logger)
		app.taskStore = postgres.NewPostgresTaskStore(db, cfg.Bulk.MaxRetries, logger)
	} else {
		mem := memory.NewDB()
		app.userStore = memory.NewUserStore(mem)
		app.taskStore = memory.NewTaskStore(mem)
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return app, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	hasher := auth.NewBcryptHasher(cfg.Auth.BCryptCost)
	app.userService, err = service.NewUserService(app.userStore, hasher, hasher, logger)
	if err != nil {
		return app, fmt.Errorf("failed to create user service: %w", err)
	}

	app.taskService, err = service.NewTaskService(app.taskStore, app.userStore, cfg.Bulk, logger)
	if err != nil {
		return app, fmt.Errorf("failed to create task service: %w", err)
	}

	logger.Info("Application initialized successfully",
		slog.Int("bulk_max_items", cfg.Bulk.MaxItems),
		slog.Int("bulk_concurrency", cfg.Bulk.Concurrency))
	return app, nil
}

// shutdown drains the HTTP server and then releases the database pool.
func (app *application) shutdown(ctx context.Context, srv interface {
	Shutdown(context.Context) error
}) error {
	app.logger.Info("Shutting down server...")
	err := srv.Shutdown(ctx)
	if err != nil {
		app.logger.Error("Server shutdown failed", slog.Any("error", err))
	}
	app.cleanup()
	return err
}

// cleanup releases resources held by the application. It is safe to call on
// a partially initialized application.
func (app *application) cleanup() {
	if app == nil {
		return
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.Any("error", err))
		}
	}
	app.logger.Info("Application shutdown completed")
}
