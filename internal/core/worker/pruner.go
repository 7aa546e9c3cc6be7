package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/conveyor/internal/infra/storage"
)

// Pruner deletes old stored results based on the retention policy.
type Pruner struct {
	retention time.Duration
	results   storage.ResultRepository
}

// NewPruner creates a new Pruner worker.
func NewPruner(retention time.Duration, results storage.ResultRepository) *Pruner {
	return &Pruner{
		retention: retention,
		results:   results,
	}
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	// Check interval: 10% of the retention period, clamped to [1m, 1h].
	interval := min(p.retention/10, 1*time.Hour)
	interval = max(interval, 1*time.Minute)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial prune
	p.prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *Pruner) prune(ctx context.Context) {
	threshold := uint64(time.Now().Add(-p.retention).Unix())

	deleted, err := p.results.DeleteOlderThan(ctx, threshold)
	if err != nil {
		slog.Error("failed to prune results", "error", err)
		return
	}
	if deleted > 0 {
		slog.Debug("pruned old results", "deleted", deleted)
	}
}
