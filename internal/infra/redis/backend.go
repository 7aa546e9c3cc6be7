package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/vietddude/conveyor/internal/core/domain"
	"github.com/vietddude/conveyor/internal/pipeline/stage"
)

// Backend is a stage backend whose persist stage writes processed payloads
// to Redis. Fetch and transform are delegated to an inner backend, so the
// retry controller and orchestrator are unaware of the swap.
type Backend struct {
	inner stage.Backend
	rdb   *Client
	ttl   time.Duration
}

// NewBackend wraps inner with a Redis persist stage. A zero ttl keeps
// payloads forever.
func NewBackend(inner stage.Backend, client *Client, ttl time.Duration) *Backend {
	return &Backend{
		inner: inner,
		rdb:   client,
		ttl:   ttl,
	}
}

func resultKey(batchID string, id domain.ItemID) string {
	return fmt.Sprintf("conveyor:result:%s:%d", batchID, id)
}

func (b *Backend) Fetch(ctx context.Context, id domain.ItemID) (string, error) {
	return b.inner.Fetch(ctx, id)
}

func (b *Backend) Transform(ctx context.Context, id domain.ItemID, raw string) (string, error) {
	return b.inner.Transform(ctx, id, raw)
}

// Persist stores the processed payload. Safe to re-invoke: a retry simply
// overwrites the same key.
func (b *Backend) Persist(ctx context.Context, item *domain.WorkItem) error {
	key := resultKey(item.BatchID, item.ID)
	if err := b.rdb.rdb.Set(ctx, key, item.Processed, b.ttl).Err(); err != nil {
		return fmt.Errorf("failed to persist item %d: %w", item.ID, err)
	}
	return nil
}

// Load reads back a persisted payload, for verification and tests.
func (b *Backend) Load(ctx context.Context, batchID string, id domain.ItemID) (string, error) {
	val, err := b.rdb.rdb.Get(ctx, resultKey(batchID, id)).Result()
	if err != nil {
		return "", fmt.Errorf("failed to load item %d: %w", id, err)
	}
	return val, nil
}
