package control

import (
	"context"
	"testing"
	"time"

	"github.com/vietddude/conveyor/internal/core/config"
	"github.com/vietddude/conveyor/internal/core/domain"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Server: config.ServerConfig{Port: 0},
		Pipeline: config.PipelineConfig{
			MaxRetries:   2,
			BackoffUnit:  time.Millisecond,
			RetryMode:    "restart",
			ScanInterval: time.Minute,
			BatchSize:    3,
		},
	}
}

func TestRunner_BatchWithMemoryStorage(t *testing.T) {
	r, err := NewRunner(testConfig())
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	defer r.Stop(context.Background())

	ids := []domain.ItemID{1, 2, 3}
	items, summary, err := r.RunBatch(context.Background(), ids)
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	if summary.Total != 3 || summary.Succeeded != 3 || summary.Failed != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	for i, id := range ids {
		if items[i].ID != id {
			t.Errorf("slot %d: expected id %d, got %d", i, id, items[i].ID)
		}
		if items[i].Status != domain.StatusCompleted {
			t.Errorf("item %d: expected completed, got %s", id, items[i].Status)
		}
	}

	// Terminal items were persisted.
	stored, err := r.results.ListByBatch(context.Background(), summary.BatchID)
	if err != nil {
		t.Fatalf("ListByBatch failed: %v", err)
	}
	if len(stored) != 3 {
		t.Errorf("expected 3 stored items, got %d", len(stored))
	}
}

func TestRunner_RecordsFailedItems(t *testing.T) {
	cfg := testConfig()
	cfg.Stages.Fetch.FailRate = 1

	r, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	defer r.Stop(context.Background())

	_, summary, err := r.RunBatch(context.Background(), []domain.ItemID{1, 2})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}

	if summary.Failed != 2 {
		t.Fatalf("expected 2 failed, got %d", summary.Failed)
	}
	if n, _ := r.failed.Count(context.Background()); n != 2 {
		t.Errorf("expected 2 failed records, got %d", n)
	}

	// Degraded but not broken: the runner reports, it doesn't error.
	report := r.healthMon.Check()
	if report.PendingRetry != 2 {
		t.Errorf("expected 2 pending retries in health report, got %d", report.PendingRetry)
	}
}

func TestRunner_StreamingMode(t *testing.T) {
	cfg := testConfig()
	cfg.Pipeline.Streaming = true

	r, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	defer r.Stop(context.Background())

	items, summary, err := r.RunBatch(context.Background(), []domain.ItemID{5, 6, 7})
	if err != nil {
		t.Fatalf("RunBatch failed: %v", err)
	}
	if summary.Succeeded != 3 {
		t.Errorf("expected 3 succeeded, got %d", summary.Succeeded)
	}
	for i, id := range []domain.ItemID{5, 6, 7} {
		if items[i].ID != id {
			t.Errorf("streaming mode must still return input order: slot %d got %d", i, items[i].ID)
		}
	}
}

func TestNewRunner_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Pipeline.MaxRetries = 0

	if _, err := NewRunner(cfg); err == nil {
		t.Fatal("expected config validation error")
	}
}
