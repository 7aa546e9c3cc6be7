package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vietddude/conveyor/internal/core/domain"
	"github.com/vietddude/conveyor/internal/infra/storage"
)

func TestResultRepo_SaveAndGet(t *testing.T) {
	repo := NewResultRepo(NewMemoryStorage())
	ctx := context.Background()

	item := domain.NewWorkItem(1)
	item.BatchID = "b1"
	item.Processed = "RAW_DATA_1"
	item.Complete()

	if err := repo.SaveBatch(ctx, []*domain.WorkItem{item}); err != nil {
		t.Fatalf("SaveBatch failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "b1", 1)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Processed != "RAW_DATA_1" || got.Status != domain.StatusCompleted {
		t.Errorf("unexpected item: %+v", got)
	}

	// Stored copy is isolated from the caller's item.
	item.Processed = "mutated"
	got2, _ := repo.GetByID(ctx, "b1", 1)
	if got2.Processed != "RAW_DATA_1" {
		t.Error("stored item shares memory with caller")
	}

	if _, err := repo.GetByID(ctx, "b1", 99); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResultRepo_ListByBatchOrdered(t *testing.T) {
	repo := NewResultRepo(NewMemoryStorage())
	ctx := context.Background()

	var items []*domain.WorkItem
	for _, id := range []domain.ItemID{3, 1, 2} {
		item := domain.NewWorkItem(id)
		item.BatchID = "b1"
		item.Complete()
		items = append(items, item)
	}
	if err := repo.SaveBatch(ctx, items); err != nil {
		t.Fatalf("SaveBatch failed: %v", err)
	}

	list, err := repo.ListByBatch(ctx, "b1")
	if err != nil {
		t.Fatalf("ListByBatch failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 items, got %d", len(list))
	}
	for i, want := range []domain.ItemID{1, 2, 3} {
		if list[i].ID != want {
			t.Errorf("position %d: expected id %d, got %d", i, want, list[i].ID)
		}
	}
}

func TestResultRepo_CountAndPrune(t *testing.T) {
	repo := NewResultRepo(NewMemoryStorage())
	ctx := context.Background()

	old := domain.NewWorkItem(1)
	old.BatchID = "b1"
	old.Complete()
	old.FinishedAt = time.Now().Add(-2 * time.Hour)

	fresh := domain.NewWorkItem(2)
	fresh.BatchID = "b1"
	fresh.Fail("boom")

	if err := repo.SaveBatch(ctx, []*domain.WorkItem{old, fresh}); err != nil {
		t.Fatalf("SaveBatch failed: %v", err)
	}

	if n, _ := repo.CountByStatus(ctx, domain.StatusFailed); n != 1 {
		t.Errorf("expected 1 failed, got %d", n)
	}

	deleted, err := repo.DeleteOlderThan(ctx, uint64(time.Now().Add(-time.Hour).Unix()))
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}
	if _, err := repo.GetByID(ctx, "b1", 1); !errors.Is(err, storage.ErrNotFound) {
		t.Error("old item should be pruned")
	}
	if _, err := repo.GetByID(ctx, "b1", 2); err != nil {
		t.Error("fresh item should survive pruning")
	}
}

func TestFailedRepo_Queue(t *testing.T) {
	repo := NewFailedRepo(NewMemoryStorage())
	ctx := context.Background()

	if rec, _ := repo.GetNext(ctx); rec != nil {
		t.Fatal("empty repo returned a record")
	}

	first := &domain.FailedItem{ID: "a", ItemID: 1, Status: domain.FailedItemStatusPending}
	second := &domain.FailedItem{ID: "b", ItemID: 2, Status: domain.FailedItemStatusPending}
	_ = repo.Add(ctx, first)
	_ = repo.Add(ctx, second)

	if n, _ := repo.Count(ctx); n != 2 {
		t.Errorf("expected 2 pending, got %d", n)
	}

	next, err := repo.GetNext(ctx)
	if err != nil || next == nil || next.ID != "a" {
		t.Fatalf("expected record a, got %+v (err %v)", next, err)
	}

	if err := repo.MarkResolved(ctx, "a"); err != nil {
		t.Fatalf("MarkResolved failed: %v", err)
	}
	next, _ = repo.GetNext(ctx)
	if next == nil || next.ID != "b" {
		t.Errorf("expected record b after resolving a, got %+v", next)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("expected 1 pending, got %d", n)
	}
}
