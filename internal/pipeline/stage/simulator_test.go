package stage

import (
	"context"
	"testing"
	"time"

	"github.com/vietddude/conveyor/internal/core/domain"
)

func TestSimulator_ZeroFailRate(t *testing.T) {
	sim := NewSimulator(SimConfig{})
	ctx := context.Background()

	raw, err := sim.Fetch(ctx, 42)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if raw != "raw_data_42" {
		t.Errorf("unexpected raw payload: %q", raw)
	}

	processed, err := sim.Transform(ctx, 42, raw)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}
	if processed != "RAW_DATA_42" {
		t.Errorf("unexpected processed payload: %q", processed)
	}

	item := domain.NewWorkItem(42)
	item.Processed = processed
	if err := sim.Persist(ctx, item); err != nil {
		t.Fatalf("persist failed: %v", err)
	}
	if saved, ok := sim.Saved(42); !ok || saved != "RAW_DATA_42" {
		t.Errorf("persist stored %q (found=%v)", saved, ok)
	}
}

func TestSimulator_FullFailRate(t *testing.T) {
	sim := NewSimulator(SimConfig{Fetch: Params{FailRate: 1}})

	if _, err := sim.Fetch(context.Background(), 1); err == nil {
		t.Fatal("expected injected failure")
	}
}

func TestSimulator_LatencyHonored(t *testing.T) {
	sim := NewSimulator(SimConfig{Fetch: Params{Latency: 50 * time.Millisecond}})

	start := time.Now()
	if _, err := sim.Fetch(context.Background(), 1); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("fetch returned after %v, expected at least 50ms", elapsed)
	}
}

func TestSimulator_CancelledContext(t *testing.T) {
	sim := NewSimulator(SimConfig{Fetch: Params{Latency: time.Second}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := sim.Fetch(ctx, 1)
	if err == nil {
		t.Fatal("expected context error")
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("cancelled fetch should return promptly")
	}
}

func TestSimulator_SeededFailuresReproducible(t *testing.T) {
	cfg := SimConfig{Fetch: Params{FailRate: 0.5}}
	a := NewSimulatorWithSeed(cfg, 99)
	b := NewSimulatorWithSeed(cfg, 99)

	for i := 0; i < 20; i++ {
		_, errA := a.Fetch(context.Background(), domain.ItemID(i))
		_, errB := b.Fetch(context.Background(), domain.ItemID(i))
		if (errA == nil) != (errB == nil) {
			t.Fatalf("call %d diverged: %v vs %v", i, errA, errB)
		}
	}
}
