package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vietddude/conveyor/internal/core/domain"
	"github.com/vietddude/conveyor/internal/pipeline/metrics"
	"github.com/vietddude/conveyor/internal/pipeline/stage"
)

// Mode selects what is re-run after a stage failure.
type Mode string

const (
	// ModeRestart re-runs the whole stage sequence from fetch. Stages are
	// declared idempotent-safe, so re-running completed stages is allowed.
	ModeRestart Mode = "restart"
	// ModeResume re-runs only from the failed stage onward, for backends
	// whose fetch is expensive.
	ModeResume Mode = "resume"
)

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	// MaxRetries bounds the number of full attempts per item. Must be >= 1.
	MaxRetries int
	// Mode selects restart or resume semantics. Empty means restart.
	Mode Mode
	// ItemTimeout bounds an item's cumulative attempt time. 0 disables it.
	ItemTimeout time.Duration
}

// Controller drives a single work item through the ordered stage sequence,
// retrying with backoff on failure. An item is owned exclusively by the
// controller invocation processing it; per-item failures are converted to
// terminal item state and never returned as errors.
type Controller struct {
	backend  stage.Backend
	strategy Strategy
	cfg      ControllerConfig
	log      *slog.Logger

	// sleep is swapped out by tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewController validates the configuration and returns a controller.
func NewController(backend stage.Backend, strategy Strategy, cfg ControllerConfig) (*Controller, error) {
	if backend == nil {
		return nil, &domain.ConfigError{Field: "backend", Reason: "must not be nil"}
	}
	if cfg.MaxRetries <= 0 {
		return nil, &domain.ConfigError{Field: "max_retries", Reason: "must be >= 1"}
	}
	switch cfg.Mode {
	case "":
		cfg.Mode = ModeRestart
	case ModeRestart, ModeResume:
	default:
		return nil, &domain.ConfigError{Field: "retry_mode", Reason: "must be restart or resume"}
	}
	if cfg.ItemTimeout < 0 {
		return nil, &domain.ConfigError{Field: "item_timeout", Reason: "must not be negative"}
	}
	if strategy == nil {
		fallback := DefaultBackoff(nil)
		fallback.MaxAttempts = cfg.MaxRetries
		strategy = fallback
	}

	return &Controller{
		backend:  backend,
		strategy: strategy,
		cfg:      cfg,
		log:      slog.Default(),
		sleep:    sleepCtx,
	}, nil
}

// Process drives one item to a terminal status. It always returns a terminal
// item, never an error: stage failures become status=failed after retries
// are exhausted, and cancellation becomes status=failed with a cancellation
// cause.
func (c *Controller) Process(ctx context.Context, id domain.ItemID) *domain.WorkItem {
	item := domain.NewWorkItem(id)
	item.Status = domain.StatusInProgress

	if c.cfg.ItemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ItemTimeout)
		defer cancel()
	}

	from := 0
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		item.Attempts = attempt + 1

		failedStage, err := c.runStages(ctx, item, from)
		if err == nil {
			item.Complete()
			metrics.ItemsProcessed.WithLabelValues(string(domain.StatusCompleted)).Inc()
			return item
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			c.fail(item, cancelCause(ctxErr, err))
			return item
		}

		if attempt == c.cfg.MaxRetries-1 || !c.strategy.ShouldRetry(err, attempt) {
			c.fail(item, err.Error())
			return item
		}

		wait := c.strategy.Delay(attempt)
		c.log.Debug("retrying item",
			"item", id, "attempt", attempt+1, "max", c.cfg.MaxRetries,
			"stage", failedStage, "wait", wait, "error", err)
		metrics.RetriesTotal.Inc()

		if err := c.sleep(ctx, wait); err != nil {
			c.fail(item, cancelCause(err, nil))
			return item
		}

		if c.cfg.Mode == ModeResume {
			from = failedStage
		} else {
			from = 0
			item.Raw = ""
			item.Processed = ""
		}
	}

	// Unreachable: every loop path returns.
	return item
}

// runStages executes the stage sequence starting at index from. On failure it
// returns the index of the failed stage and a StageError.
func (c *Controller) runStages(ctx context.Context, item *domain.WorkItem, from int) (int, error) {
	for i := from; i < len(domain.Stages); i++ {
		name := domain.Stages[i]
		start := time.Now()
		err := c.runStage(ctx, item, name)
		metrics.StageDuration.WithLabelValues(string(name)).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.StageErrors.WithLabelValues(string(name)).Inc()
			return i, &domain.StageError{ItemID: item.ID, Stage: name, Cause: err}
		}
	}
	return 0, nil
}

func (c *Controller) runStage(ctx context.Context, item *domain.WorkItem, name domain.StageName) error {
	switch name {
	case domain.StageFetch:
		raw, err := c.backend.Fetch(ctx, item.ID)
		if err != nil {
			return err
		}
		item.Raw = raw
	case domain.StageTransform:
		processed, err := c.backend.Transform(ctx, item.ID, item.Raw)
		if err != nil {
			return err
		}
		item.Processed = processed
	case domain.StagePersist:
		if err := c.backend.Persist(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) fail(item *domain.WorkItem, cause string) {
	item.Fail(cause)
	metrics.ItemsProcessed.WithLabelValues(string(domain.StatusFailed)).Inc()
	c.log.Warn("item failed", "item", item.ID, "attempts", item.Attempts, "error", cause)
}

func cancelCause(ctxErr, stageErr error) string {
	reason := "cancelled"
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		reason = "deadline exceeded"
	}
	if stageErr != nil {
		return reason + ": " + stageErr.Error()
	}
	return reason
}

// sleepCtx waits for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
