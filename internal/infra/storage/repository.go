package storage

import (
	"context"
	"errors"

	"github.com/vietddude/conveyor/internal/core/domain"
)

var (
	// ErrNotFound is returned when a stored result doesn't exist.
	ErrNotFound = errors.New("result not found")
)

// ResultRepository persists terminal work items.
type ResultRepository interface {
	// SaveBatch stores all terminal items of a batch.
	SaveBatch(ctx context.Context, items []*domain.WorkItem) error

	// GetByID retrieves one stored item.
	GetByID(ctx context.Context, batchID string, id domain.ItemID) (*domain.WorkItem, error)

	// ListByBatch retrieves all items of a batch in item-id order.
	ListByBatch(ctx context.Context, batchID string) ([]*domain.WorkItem, error)

	// CountByStatus counts stored items with the given status.
	CountByStatus(ctx context.Context, status domain.ItemStatus) (int, error)

	// DeleteOlderThan removes stored items finished before the given unix
	// timestamp. Returns the number of deleted rows.
	DeleteOlderThan(ctx context.Context, unixSeconds uint64) (int64, error)
}

// FailedItemRepository keeps a record of terminally failed items so they can
// be inspected or re-submitted later.
type FailedItemRepository interface {
	// Add records a failed item.
	Add(ctx context.Context, rec *domain.FailedItem) error

	// GetNext returns the oldest pending record, or nil when empty.
	GetNext(ctx context.Context) (*domain.FailedItem, error)

	// MarkResolved flags a record as resolved.
	MarkResolved(ctx context.Context, id string) error

	// Count returns the number of pending records.
	Count(ctx context.Context) (int, error)
}
