// Package orchestrator fans a batch of item ids out to concurrent retry
// controllers and joins their terminal results.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/conveyor/internal/core/domain"
	"github.com/vietddude/conveyor/internal/pipeline/metrics"
	"github.com/vietddude/conveyor/internal/pipeline/retry"
)

// Config configures the fan-out behavior.
type Config struct {
	// Concurrency bounds the number of items processed at once. 0 launches
	// one goroutine per item.
	Concurrency int
}

// Batch holds the joined results of one orchestrator run. Items preserves
// the input id order regardless of completion order.
type Batch struct {
	ID      string
	Items   []*domain.WorkItem
	Elapsed time.Duration
}

// Orchestrator runs one retry controller invocation per submitted item id.
type Orchestrator struct {
	ctrl *retry.Controller
	cfg  Config
	log  *slog.Logger
}

// New validates the configuration and returns an orchestrator.
func New(ctrl *retry.Controller, cfg Config) (*Orchestrator, error) {
	if ctrl == nil {
		return nil, &domain.ConfigError{Field: "controller", Reason: "must not be nil"}
	}
	if cfg.Concurrency < 0 {
		return nil, &domain.ConfigError{Field: "concurrency", Reason: "must not be negative"}
	}
	return &Orchestrator{
		ctrl: ctrl,
		cfg:  cfg,
		log:  slog.Default(),
	}, nil
}

// Run processes all ids concurrently and returns once every item reached a
// terminal status. No partial results are exposed before the join. One
// item's failure never short-circuits the others; a partially failed batch
// is a normal outcome, visible only through per-item status.
func (o *Orchestrator) Run(ctx context.Context, ids []domain.ItemID) *Batch {
	batch, done := o.start(ctx, ids, nil)
	<-done
	return batch
}

// Stream is the streaming variant of a batch run. Arrivals yields items in
// completion order while the run is in flight; Wait blocks for the join and
// returns the input-ordered batch.
type Stream struct {
	arrivals chan *domain.WorkItem
	done     chan struct{}
	batch    *Batch
}

// Arrivals returns terminal items in completion order. The channel is
// closed once all items are terminal.
func (s *Stream) Arrivals() <-chan *domain.WorkItem {
	return s.arrivals
}

// Wait blocks until every item is terminal and returns the batch with
// results in input order.
func (s *Stream) Wait() *Batch {
	<-s.done
	return s.batch
}

// RunStream starts a batch run and exposes completion order as a secondary
// view. The caller must drain Arrivals or call Wait.
func (o *Orchestrator) RunStream(ctx context.Context, ids []domain.ItemID) *Stream {
	s := &Stream{arrivals: make(chan *domain.WorkItem, len(ids))}
	s.batch, s.done = o.start(ctx, ids, s.arrivals)
	return s
}

// start launches the fan-out. Each worker writes exactly one slot of the
// results slice (single writer per slot, no lock needed) and optionally
// forwards the terminal item to arrivals.
func (o *Orchestrator) start(ctx context.Context, ids []domain.ItemID, arrivals chan<- *domain.WorkItem) (*Batch, chan struct{}) {
	batch := &Batch{
		ID:    uuid.New().String(),
		Items: make([]*domain.WorkItem, len(ids)),
	}
	done := make(chan struct{})
	startedAt := time.Now()

	o.log.Info("batch started", "batch", batch.ID, "items", len(ids), "concurrency", o.cfg.Concurrency)

	process := func(slot int, id domain.ItemID) {
		metrics.ItemsInFlight.Inc()
		item := o.ctrl.Process(ctx, id)
		metrics.ItemsInFlight.Dec()

		item.BatchID = batch.ID
		batch.Items[slot] = item
		if arrivals != nil {
			arrivals <- item
		}
	}

	var wg sync.WaitGroup
	if o.cfg.Concurrency <= 0 {
		// Unbounded: one goroutine per item.
		for i, id := range ids {
			wg.Add(1)
			go func(slot int, id domain.ItemID) {
				defer wg.Done()
				process(slot, id)
			}(i, id)
		}
	} else {
		// Bounded worker pool over an index feed.
		jobs := make(chan int)
		workers := o.cfg.Concurrency
		if workers > len(ids) {
			workers = len(ids)
		}
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for slot := range jobs {
					process(slot, ids[slot])
				}
			}()
		}
		go func() {
			for i := range ids {
				jobs <- i
			}
			close(jobs)
		}()
	}

	go func() {
		wg.Wait()
		batch.Elapsed = time.Since(startedAt)
		metrics.BatchDuration.Observe(batch.Elapsed.Seconds())
		if arrivals != nil {
			close(arrivals)
		}
		o.log.Info("batch finished", "batch", batch.ID, "elapsed", batch.Elapsed)
		close(done)
	}()

	return batch, done
}
