// Package stage defines the I/O boundary of the pipeline.
//
// The retry controller and orchestrator depend only on the Backend
// interface; swapping the simulated backend for real network or storage
// calls requires no change to either.
package stage

import (
	"context"

	"github.com/vietddude/conveyor/internal/core/domain"
)

// Backend exposes the three stage operations an item passes through.
// Implementations must be safe to re-invoke: a retry re-runs a stage from
// scratch and no partial-stage state may be retained.
type Backend interface {
	// Fetch retrieves the raw payload for an item.
	Fetch(ctx context.Context, id domain.ItemID) (string, error)

	// Transform derives the processed payload from the raw payload.
	Transform(ctx context.Context, id domain.ItemID, raw string) (string, error)

	// Persist stores the item's processed payload.
	Persist(ctx context.Context, item *domain.WorkItem) error
}
