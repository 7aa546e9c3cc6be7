package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/conveyor/internal/core/domain"
)

// FailedItemRepo implements storage.FailedItemRepository using Redis.
type FailedItemRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFailedItemRepo creates a new Redis-backed failed item repository.
func NewFailedItemRepo(client *Client) *FailedItemRepo {
	return &FailedItemRepo{
		rdb: client.rdb,
		ttl: 24 * time.Hour,
	}
}

// Key helpers
func queueKey() string {
	return "conveyor:failed_items"
}

func recordKey(id string) string {
	return fmt.Sprintf("conveyor:failed_item:%s", id)
}

// Add records a failed item.
func (r *FailedItemRepo) Add(ctx context.Context, rec *domain.FailedItem) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal failed item: %w", err)
	}

	if err := r.rdb.Set(ctx, recordKey(rec.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set failed item: %w", err)
	}

	// Sorted set ordered by creation time, oldest first.
	if err := r.rdb.ZAdd(ctx, queueKey(), redis.Z{
		Score:  float64(rec.CreatedAt),
		Member: rec.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to queue: %w", err)
	}

	return nil
}

// GetNext returns the oldest pending record, or nil when empty.
func (r *FailedItemRepo) GetNext(ctx context.Context) (*domain.FailedItem, error) {
	results, err := r.rdb.ZRange(ctx, queueKey(), 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange failed: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	id := results[0]
	data, err := r.rdb.Get(ctx, recordKey(id)).Bytes()
	if err == redis.Nil {
		// Record expired but ID still queued, drop it.
		r.rdb.ZRem(ctx, queueKey(), id)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get failed item: %w", err)
	}

	var rec domain.FailedItem
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal failed item: %w", err)
	}
	return &rec, nil
}

// MarkResolved removes the record from the pending queue.
func (r *FailedItemRepo) MarkResolved(ctx context.Context, id string) error {
	data, err := r.rdb.Get(ctx, recordKey(id)).Bytes()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to get failed item: %w", err)
	}

	if err == nil {
		var rec domain.FailedItem
		if jsonErr := json.Unmarshal(data, &rec); jsonErr == nil {
			rec.Status = domain.FailedItemStatusResolved
			if newData, jsonErr := json.Marshal(rec); jsonErr == nil {
				_ = r.rdb.Set(ctx, recordKey(id), newData, r.ttl).Err()
			}
		}
	}

	if err := r.rdb.ZRem(ctx, queueKey(), id).Err(); err != nil {
		return fmt.Errorf("failed to remove from queue: %w", err)
	}
	return nil
}

// Count returns the number of pending records.
func (r *FailedItemRepo) Count(ctx context.Context) (int, error) {
	n, err := r.rdb.ZCard(ctx, queueKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count failed items: %w", err)
	}
	return int(n), nil
}
