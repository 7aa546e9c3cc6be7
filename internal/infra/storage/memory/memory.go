package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vietddude/conveyor/internal/core/domain"
	"github.com/vietddude/conveyor/internal/infra/storage"
)

// MemoryStorage backs the repositories with mutex-guarded maps. Used when no
// database is configured, and by tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	results map[string]map[domain.ItemID]*domain.WorkItem // batchID -> itemID -> item
	failed  []*domain.FailedItem
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		results: make(map[string]map[domain.ItemID]*domain.WorkItem),
	}
}

// -----------------------------------------------------------------------------
// Result Repository
// -----------------------------------------------------------------------------

type ResultRepo struct {
	store *MemoryStorage
}

func NewResultRepo(store *MemoryStorage) *ResultRepo {
	return &ResultRepo{store: store}
}

func (r *ResultRepo) SaveBatch(ctx context.Context, items []*domain.WorkItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, item := range items {
		batch, ok := r.store.results[item.BatchID]
		if !ok {
			batch = make(map[domain.ItemID]*domain.WorkItem)
			r.store.results[item.BatchID] = batch
		}
		copied := *item
		batch[item.ID] = &copied
	}
	return nil
}

func (r *ResultRepo) GetByID(ctx context.Context, batchID string, id domain.ItemID) (*domain.WorkItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if item, ok := r.store.results[batchID][id]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, storage.ErrNotFound
}

func (r *ResultRepo) ListByBatch(ctx context.Context, batchID string) ([]*domain.WorkItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	batch := r.store.results[batchID]
	items := make([]*domain.WorkItem, 0, len(batch))
	for _, item := range batch {
		copied := *item
		items = append(items, &copied)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *ResultRepo) CountByStatus(ctx context.Context, status domain.ItemStatus) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	count := 0
	for _, batch := range r.store.results {
		for _, item := range batch {
			if item.Status == status {
				count++
			}
		}
	}
	return count, nil
}

func (r *ResultRepo) DeleteOlderThan(ctx context.Context, unixSeconds uint64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var deleted int64
	for batchID, batch := range r.store.results {
		for id, item := range batch {
			if !item.FinishedAt.IsZero() && uint64(item.FinishedAt.Unix()) < unixSeconds {
				delete(batch, id)
				deleted++
			}
		}
		if len(batch) == 0 {
			delete(r.store.results, batchID)
		}
	}
	return deleted, nil
}

// -----------------------------------------------------------------------------
// Failed Item Repository
// -----------------------------------------------------------------------------

type FailedRepo struct {
	store *MemoryStorage
}

func NewFailedRepo(store *MemoryStorage) *FailedRepo {
	return &FailedRepo{store: store}
}

func (r *FailedRepo) Add(ctx context.Context, rec *domain.FailedItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *rec
	r.store.failed = append(r.store.failed, &copied)
	return nil
}

func (r *FailedRepo) GetNext(ctx context.Context) (*domain.FailedItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, rec := range r.store.failed {
		if rec.Status == domain.FailedItemStatusPending {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *FailedRepo) MarkResolved(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, rec := range r.store.failed {
		if rec.ID == id {
			rec.Status = domain.FailedItemStatusResolved
		}
	}
	return nil
}

func (r *FailedRepo) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	count := 0
	for _, rec := range r.store.failed {
		if rec.Status == domain.FailedItemStatusPending {
			count++
		}
	}
	return count, nil
}
