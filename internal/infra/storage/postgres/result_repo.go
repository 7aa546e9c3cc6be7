package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vietddude/conveyor/internal/core/domain"
	"github.com/vietddude/conveyor/internal/infra/storage"
)

// ResultRepo implements storage.ResultRepository using PostgreSQL.
type ResultRepo struct {
	db *DB
}

// NewResultRepo creates a new PostgreSQL result repository.
func NewResultRepo(db *DB) *ResultRepo {
	return &ResultRepo{db: db}
}

type resultRow struct {
	BatchID    string       `db:"batch_id"`
	ItemID     int64        `db:"item_id"`
	Raw        string       `db:"raw_payload"`
	Processed  string       `db:"processed_payload"`
	Status     string       `db:"status"`
	LastError  string       `db:"last_error"`
	Attempts   int          `db:"attempts"`
	FinishedAt sql.NullTime `db:"finished_at"`
}

func (r resultRow) toDomain() *domain.WorkItem {
	item := &domain.WorkItem{
		ID:        domain.ItemID(r.ItemID),
		BatchID:   r.BatchID,
		Raw:       r.Raw,
		Processed: r.Processed,
		Status:    domain.ItemStatus(r.Status),
		LastError: r.LastError,
		Attempts:  r.Attempts,
	}
	if r.FinishedAt.Valid {
		item.FinishedAt = r.FinishedAt.Time
	}
	return item
}

// SaveBatch stores all terminal items of a batch.
func (r *ResultRepo) SaveBatch(ctx context.Context, items []*domain.WorkItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO results (batch_id, item_id, raw_payload, processed_payload, status, last_error, attempts, finished_at)
		VALUES (:batch_id, :item_id, :raw_payload, :processed_payload, :status, :last_error, :attempts, :finished_at)
		ON CONFLICT (batch_id, item_id) DO UPDATE SET
			raw_payload = EXCLUDED.raw_payload,
			processed_payload = EXCLUDED.processed_payload,
			status = EXCLUDED.status,
			last_error = EXCLUDED.last_error,
			attempts = EXCLUDED.attempts,
			finished_at = EXCLUDED.finished_at
	`

	rows := make([]resultRow, 0, len(items))
	for _, item := range items {
		row := resultRow{
			BatchID:   item.BatchID,
			ItemID:    int64(item.ID),
			Raw:       item.Raw,
			Processed: item.Processed,
			Status:    string(item.Status),
			LastError: item.LastError,
			Attempts:  item.Attempts,
		}
		if !item.FinishedAt.IsZero() {
			row.FinishedAt = sql.NullTime{Time: item.FinishedAt, Valid: true}
		}
		rows = append(rows, row)
	}

	if _, err := r.db.NamedExecContext(ctx, query, rows); err != nil {
		return fmt.Errorf("failed to save batch results: %w", err)
	}
	return nil
}

// GetByID retrieves one stored item.
func (r *ResultRepo) GetByID(ctx context.Context, batchID string, id domain.ItemID) (*domain.WorkItem, error) {
	query := `
		SELECT batch_id, item_id, raw_payload, processed_payload, status, last_error, attempts, finished_at
		FROM results
		WHERE batch_id = $1 AND item_id = $2
	`

	var row resultRow
	err := r.db.GetContext(ctx, &row, query, batchID, int64(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return row.toDomain(), nil
}

// ListByBatch retrieves all items of a batch in item-id order.
func (r *ResultRepo) ListByBatch(ctx context.Context, batchID string) ([]*domain.WorkItem, error) {
	query := `
		SELECT batch_id, item_id, raw_payload, processed_payload, status, last_error, attempts, finished_at
		FROM results
		WHERE batch_id = $1
		ORDER BY item_id ASC
	`

	var rows []resultRow
	if err := r.db.SelectContext(ctx, &rows, query, batchID); err != nil {
		return nil, fmt.Errorf("failed to list batch results: %w", err)
	}

	items := make([]*domain.WorkItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

// CountByStatus counts stored items with the given status.
func (r *ResultRepo) CountByStatus(ctx context.Context, status domain.ItemStatus) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM results WHERE status = $1`, string(status))
	if err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return count, nil
}

// DeleteOlderThan removes results finished before the given unix timestamp.
func (r *ResultRepo) DeleteOlderThan(ctx context.Context, unixSeconds uint64) (int64, error) {
	res, err := r.db.ExecContext(
		ctx,
		`DELETE FROM results WHERE finished_at < $1`,
		time.Unix(int64(unixSeconds), 0),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old results: %w", err)
	}
	return res.RowsAffected()
}
