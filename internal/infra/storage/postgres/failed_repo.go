package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/conveyor/internal/core/domain"
)

// FailedItemRepo implements storage.FailedItemRepository using PostgreSQL.
type FailedItemRepo struct {
	db *DB
}

// NewFailedItemRepo creates a new PostgreSQL failed item repository.
func NewFailedItemRepo(db *DB) *FailedItemRepo {
	return &FailedItemRepo{db: db}
}

// Add records a failed item.
func (r *FailedItemRepo) Add(ctx context.Context, rec *domain.FailedItem) error {
	query := `
		INSERT INTO failed_items (id, batch_id, item_id, error_msg, attempts, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	status := string(rec.Status)
	if status == "" {
		status = string(domain.FailedItemStatusPending)
	}

	// Queue order follows the caller-supplied timestamp, matching the
	// memory and redis repositories.
	createdAt := time.Unix(int64(rec.CreatedAt), 0)
	if rec.CreatedAt == 0 {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.BatchID,
		int64(rec.ItemID),
		rec.Error,
		rec.Attempts,
		status,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add failed item: %w", err)
	}
	return nil
}

// GetNext returns the oldest pending record, or nil when empty.
func (r *FailedItemRepo) GetNext(ctx context.Context) (*domain.FailedItem, error) {
	query := `
		SELECT id, batch_id, item_id, error_msg, attempts, status, created_at
		FROM failed_items
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT 1
	`

	var dest struct {
		ID        string    `db:"id"`
		BatchID   string    `db:"batch_id"`
		ItemID    int64     `db:"item_id"`
		ErrorMsg  string    `db:"error_msg"`
		Attempts  int       `db:"attempts"`
		Status    string    `db:"status"`
		CreatedAt time.Time `db:"created_at"`
	}

	err := r.db.GetContext(ctx, &dest, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // No pending failed items
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get failed item: %w", err)
	}

	return &domain.FailedItem{
		ID:        dest.ID,
		BatchID:   dest.BatchID,
		ItemID:    domain.ItemID(dest.ItemID),
		Error:     dest.ErrorMsg,
		Attempts:  dest.Attempts,
		Status:    domain.FailedItemStatus(dest.Status),
		CreatedAt: uint64(dest.CreatedAt.Unix()),
	}, nil
}

// MarkResolved flags a record as resolved.
func (r *FailedItemRepo) MarkResolved(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(
		ctx,
		`UPDATE failed_items SET status = 'resolved' WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve failed item %s: %w", id, err)
	}
	return nil
}

// Count returns the number of pending records.
func (r *FailedItemRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM failed_items WHERE status = 'pending'`)
	if err != nil {
		return 0, fmt.Errorf("failed to count failed items: %w", err)
	}
	return count, nil
}
