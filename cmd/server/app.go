package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jurisai/jurisai-api/internal/config"
	"github.com/jurisai/jurisai-api/internal/events"
	"github.com/jurisai/jurisai-api/internal/platform/gemini"
	"github.com/jurisai/jurisai-api/internal/platform/logger"
	"github.com/jurisai/jurisai-api/internal/service"
	"github.com/jurisai/jurisai-api/internal/store"
	"github.com/jurisai/jurisai-api/internal/task"
)

// application holds the initialized dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger

	db        *sql.DB
	taskStore store.TaskStore
	sweeper   *store.RetentionSweeper
	runner    *task.Runner

	submissionService *service.SubmissionService
	statusService     *service.StatusService
}

// newApplication loads configuration and wires every component: store,
// advisor, runner, services, and the dispatch path between them.
func newApplication(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server)
	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"store_driver", cfg.Store.Driver)

	app := &application{config: cfg, logger: log}

	if err := app.setupStore(ctx); err != nil {
		return nil, err
	}

	advisor, err := gemini.NewAdvisor(ctx, log, cfg.LLM)
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("failed to create advisor: %w", err)
	}

	factory, err := task.NewAnalysisTaskFactory(app.taskStore, advisor, cfg.Runner.TaskTimeout, log)
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("failed to create task factory: %w", err)
	}

	app.runner = task.NewRunner(task.RunnerConfig{
		WorkerCount:       cfg.Runner.WorkerCount,
		QueueSize:         cfg.Runner.QueueSize,
		SlowTaskWarnAfter: cfg.Runner.SlowTaskWarnAfter,
	}, log)

	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(task.NewDispatchHandler(factory, app.runner, log))

	app.submissionService, err = service.NewSubmissionService(app.taskStore, emitter, log)
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("failed to create submission service: %w", err)
	}
	app.statusService, err = service.NewStatusService(app.taskStore, log)
	if err != nil {
		app.closeDB()
		return nil, fmt.Errorf("failed to create status service: %w", err)
	}

	return app, nil
}

// setupStore opens the configured task store backend and its retention
// sweeper.
func (app *application) setupStore(ctx context.Context) error {
	switch app.config.Store.Driver {
	case "postgres":
		db, err := sql.Open("pgx", app.config.Store.URL)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := store.RunMigrations(db); err != nil {
			_ = db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		app.db = db
		pgStore := store.NewPostgresTaskStore(db, app.logger)
		app.taskStore = pgStore
		app.sweeper = store.NewRetentionSweeper(pgStore, store.RetentionSweeperConfig{
			TTL:      app.config.Store.RetentionTTL,
			Interval: app.config.Store.SweepInterval,
		}, app.logger)
		app.logger.Info("using postgres task store")
	default:
		memStore := store.NewMemoryTaskStore(app.logger)
		app.taskStore = memStore
		app.sweeper = store.NewRetentionSweeper(memStore, store.RetentionSweeperConfig{
			TTL:      app.config.Store.RetentionTTL,
			Interval: app.config.Store.SweepInterval,
		}, app.logger)
		app.logger.Info("using in-memory task store",
			"retention_ttl", app.config.Store.RetentionTTL)
	}
	return nil
}

// start launches the background components and re-dispatches any
// records a previous process left unfinished.
func (app *application) start(ctx context.Context) error {
	app.runner.Start()
	app.sweeper.Start()

	if err := app.recoverUnfinishedTasks(ctx); err != nil {
		return fmt.Errorf("failed to recover unfinished tasks: %w", err)
	}
	return nil
}

// recoverUnfinishedTasks re-submits records stranded in pending or
// processing by an earlier shutdown. Only meaningful for the durable
// store; a fresh memory store has nothing to recover.
func (app *application) recoverUnfinishedTasks(ctx context.Context) error {
	records, err := app.taskStore.List(ctx)
	if err != nil {
		return err
	}

	recovered := 0
	for _, record := range records {
		if record.Status.Terminal() {
			continue
		}
		event := events.NewTaskDispatchEvent(record.ID, record.Kind)
		if err := app.submissionService.Redispatch(ctx, event); err != nil {
			app.logger.Error("failed to re-dispatch unfinished task",
				"task_id", record.ID,
				"error", err)
			continue
		}
		recovered++
	}

	if recovered > 0 {
		app.logger.Info("re-dispatched unfinished tasks", "count", recovered)
	}
	return nil
}

// cleanup stops the background components in dependency order.
func (app *application) cleanup() {
	app.sweeper.Stop()
	app.runner.Stop()
	app.closeDB()
}

func (app *application) closeDB() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}
}
