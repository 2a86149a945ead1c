package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/walletstats/internal/config"
	"github.com/phrazzld/walletstats/internal/domain/walletstats"
	"github.com/phrazzld/walletstats/internal/events"
	"github.com/phrazzld/walletstats/internal/platform/postgres"
	"github.com/phrazzld/walletstats/internal/service"
	"github.com/phrazzld/walletstats/internal/service/auth"
	"github.com/phrazzld/walletstats/internal/store"
	"github.com/phrazzld/walletstats/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	walletStore store.WalletStore
	taskStore   task.TaskStore

	jwtService         auth.JWTService
	walletStatsService service.WalletStatsService

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication wires stores, services and the task runner. The runner is
// not started until Run.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.walletStore = postgres.NewPostgresWalletStore(db)
	app.taskStore = postgres.NewPostgresTaskStore(db)

	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		QueueSize:    cfg.Task.QueueSize,
		WorkerCount:  cfg.Task.WorkerCount,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
	}, logger)

	walletStatsFactory := task.NewWalletStatsTaskFactory(
		task.NewWalletStoreAdapter(app.walletStore, db),
		walletstats.NewDefaultService(),
		logger,
	)
	app.taskRunner.RegisterFactory(task.TaskTypeWalletStats, walletStatsFactory)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(task.NewTaskFactoryEventHandler(
		task.TaskTypeWalletStats,
		walletStatsFactory,
		app.taskRunner,
		logger,
	))

	app.walletStatsService, err = service.NewWalletStatsService(
		app.walletStore,
		app.taskStore,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet stats service: %w", err)
	}

	logger.Info("application initialized",
		"worker_count", cfg.Task.WorkerCount,
		"queue_size", cfg.Task.QueueSize)
	return app, nil
}

// Run starts the task runner and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.taskRunner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
