// Package control assembles the pipeline from configuration and manages its
// lifecycle.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/vietddude/conveyor/internal/core/config"
	"github.com/vietddude/conveyor/internal/core/domain"
	"github.com/vietddude/conveyor/internal/core/worker"
	redisclient "github.com/vietddude/conveyor/internal/infra/redis"
	"github.com/vietddude/conveyor/internal/infra/storage"
	"github.com/vietddude/conveyor/internal/infra/storage/memory"
	"github.com/vietddude/conveyor/internal/infra/storage/postgres"
	"github.com/vietddude/conveyor/internal/pipeline/aggregate"
	"github.com/vietddude/conveyor/internal/pipeline/health"
	"github.com/vietddude/conveyor/internal/pipeline/metrics"
	"github.com/vietddude/conveyor/internal/pipeline/orchestrator"
	"github.com/vietddude/conveyor/internal/pipeline/retry"
	"github.com/vietddude/conveyor/internal/pipeline/stage"
)

// Runner is the main application struct that wires the pipeline together.
type Runner struct {
	cfg          *config.AppConfig
	orch         *orchestrator.Orchestrator
	results      storage.ResultRepository
	failed       storage.FailedItemRepository
	pruner       *worker.Pruner
	healthMon    *health.Monitor
	healthServer *health.Server
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// NewRunner creates a Runner with all dependencies initialized.
func NewRunner(cfg *config.AppConfig) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := slog.Default()

	// 1. Storage
	var results storage.ResultRepository
	var failed storage.FailedItemRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		migrationsDir := cfg.Database.Migrations
		if migrationsDir == "" {
			migrationsDir = "migrations"
		}
		if err := goose.Up(db.DB.DB, migrationsDir); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		results = postgres.NewResultRepo(db)
		failed = postgres.NewFailedItemRepo(db)
		log.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		results = memory.NewResultRepo(store)
		failed = memory.NewFailedRepo(store)
		log.Info("Using Memory storage")
	}

	// 2. Stage backend
	var backend stage.Backend = stage.NewSimulator(stage.SimConfig{
		Fetch:     stage.Params{Latency: cfg.Stages.Fetch.Latency, FailRate: cfg.Stages.Fetch.FailRate},
		Transform: stage.Params{Latency: cfg.Stages.Transform.Latency, FailRate: cfg.Stages.Transform.FailRate},
		Persist:   stage.Params{Latency: cfg.Stages.Persist.Latency, FailRate: cfg.Stages.Persist.FailRate},
	})

	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		backend = redisclient.NewBackend(backend, redisClient, 0)
		if db == nil {
			failed = redisclient.NewFailedItemRepo(redisClient)
		}
		log.Info("Using Redis persist backend")
	}

	// 3. Retry controller and orchestrator
	strategy := retry.DefaultBackoff(nil)
	strategy.Unit = cfg.Pipeline.BackoffUnit
	strategy.MaxDelay = cfg.Pipeline.BackoffMax
	strategy.MaxAttempts = cfg.Pipeline.MaxRetries
	strategy.Jitter = cfg.Pipeline.BackoffJitter

	ctrl, err := retry.NewController(backend, strategy, retry.ControllerConfig{
		MaxRetries:  cfg.Pipeline.MaxRetries,
		Mode:        retry.Mode(cfg.Pipeline.RetryMode),
		ItemTimeout: cfg.Pipeline.ItemTimeout,
	})
	if err != nil {
		return nil, err
	}

	orch, err := orchestrator.New(ctrl, orchestrator.Config{
		Concurrency: cfg.Pipeline.Concurrency,
	})
	if err != nil {
		return nil, err
	}

	// 4. Health monitoring and retention
	r := &Runner{
		cfg:         cfg,
		orch:        orch,
		results:     results,
		failed:      failed,
		pruner:      worker.NewPruner(cfg.Pipeline.Retention, results),
		db:          db,
		redisClient: redisClient,
		log:         log,
	}
	r.healthMon = health.NewMonitor(func() int {
		n, err := failed.Count(context.Background())
		if err != nil {
			return 0
		}
		return n
	})
	r.healthServer = health.NewServer(r.healthMon, cfg.Server.Port)

	return r, nil
}

// RunBatch runs one batch over the given ids, persists terminal items, and
// returns the ordered results with their summary. Per-item failures are data
// in the returned items; only infrastructure errors are returned as errors.
func (r *Runner) RunBatch(ctx context.Context, ids []domain.ItemID) ([]*domain.WorkItem, aggregate.Summary, error) {
	var batch *orchestrator.Batch

	if r.cfg.Pipeline.Streaming {
		s := r.orch.RunStream(ctx, ids)
		for item := range s.Arrivals() {
			r.log.Info("item finished",
				"item", item.ID, "status", item.Status, "attempts", item.Attempts)
		}
		batch = s.Wait()
	} else {
		batch = r.orch.Run(ctx, ids)
	}

	summary := aggregate.Summarize(batch.ID, batch.Items, batch.Elapsed)
	r.healthMon.RecordBatch(summary)
	if summary.Failed == 0 {
		metrics.BatchesTotal.WithLabelValues("clean").Inc()
	} else {
		metrics.BatchesTotal.WithLabelValues("partial").Inc()
	}

	if err := r.results.SaveBatch(ctx, batch.Items); err != nil {
		return batch.Items, summary, fmt.Errorf("failed to persist batch results: %w", err)
	}

	_, failedItems := aggregate.Partition(batch.Items)
	for _, item := range failedItems {
		rec := &domain.FailedItem{
			ID:        uuid.New().String(),
			BatchID:   item.BatchID,
			ItemID:    item.ID,
			Error:     item.LastError,
			Attempts:  item.Attempts,
			Status:    domain.FailedItemStatusPending,
			CreatedAt: uint64(time.Now().Unix()),
		}
		if err := r.failed.Add(ctx, rec); err != nil {
			r.log.Warn("failed to record failed item", "item", item.ID, "error", err)
		}
	}

	return batch.Items, summary, nil
}

// Start runs the service loop: batches on a ticker, health server, and the
// retention pruner. Blocks until the context is cancelled.
func (r *Runner) Start(ctx context.Context) error {
	go func() {
		r.log.Info("health server listening", "port", r.cfg.Server.Port)
		if err := r.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.log.Error("health server failed", "error", err)
		}
	}()
	go r.pruner.Start(ctx)

	ticker := time.NewTicker(r.cfg.Pipeline.ScanInterval)
	defer ticker.Stop()

	// First batch immediately, then on the ticker.
	r.runScheduledBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.runScheduledBatch(ctx)
		}
	}
}

func (r *Runner) runScheduledBatch(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	ids := make([]domain.ItemID, r.cfg.Pipeline.BatchSize)
	for i := range ids {
		ids[i] = domain.ItemID(i + 1)
	}

	_, summary, err := r.RunBatch(ctx, ids)
	if err != nil {
		r.log.Error("batch run failed", "error", err)
		return
	}
	r.log.Info("batch summary",
		"batch", summary.BatchID,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"elapsed", summary.Elapsed)
}

// Stop shuts the runner down gracefully.
func (r *Runner) Stop(ctx context.Context) error {
	if err := r.healthServer.Stop(ctx); err != nil {
		r.log.Warn("health server shutdown failed", "error", err)
	}
	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			r.log.Warn("redis close failed", "error", err)
		}
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			r.log.Warn("db close failed", "error", err)
		}
	}
	return nil
}
