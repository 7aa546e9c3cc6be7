// Demo runner: processes ten items through the simulated pipeline with a
// 20% fetch failure rate and prints the summary. For the full service, see
// cmd/conveyor.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/vietddude/conveyor/internal/core/domain"
	"github.com/vietddude/conveyor/internal/pipeline/aggregate"
	"github.com/vietddude/conveyor/internal/pipeline/orchestrator"
	"github.com/vietddude/conveyor/internal/pipeline/retry"
	"github.com/vietddude/conveyor/internal/pipeline/stage"
)

func main() {
	ctx := context.Background()

	// 1. Simulated stages: 500ms fetch with 20% failures, 300ms transform,
	// 200ms persist.
	cfg := stage.DefaultSimConfig()
	cfg.Fetch.FailRate = 0.2
	backend := stage.NewSimulator(cfg)

	// 2. Retry controller: 3 attempts, 1s/2s backoff between them.
	strategy := retry.DefaultBackoff(nil)
	ctrl, err := retry.NewController(backend, strategy, retry.ControllerConfig{MaxRetries: 3})
	if err != nil {
		log.Fatalf("controller setup failed: %v", err)
	}

	// 3. Fan out over ten items.
	orch, err := orchestrator.New(ctrl, orchestrator.Config{})
	if err != nil {
		log.Fatalf("orchestrator setup failed: %v", err)
	}

	ids := make([]domain.ItemID, 10)
	for i := range ids {
		ids[i] = domain.ItemID(i + 1)
	}

	fmt.Printf("=== Processing %d items through pipeline ===\n\n", len(ids))
	start := time.Now()

	s := orch.RunStream(ctx, ids)
	for item := range s.Arrivals() {
		switch item.Status {
		case domain.StatusCompleted:
			fmt.Printf("  ✓ item %d done (attempts: %d)\n", item.ID, item.Attempts)
		case domain.StatusFailed:
			fmt.Printf("  ✗ item %d failed after %d attempts\n", item.ID, item.Attempts)
		}
	}
	batch := s.Wait()

	summary := aggregate.Summarize(batch.ID, batch.Items, time.Since(start))
	fmt.Println()
	fmt.Print(aggregate.Render(summary, batch.Items))

	succeeded, _ := aggregate.Partition(batch.Items)
	if len(succeeded) > 0 {
		fmt.Println("\nSample results:")
		for i, item := range succeeded {
			if i == 3 {
				break
			}
			fmt.Printf("  item %d: %s -> %s\n", item.ID, item.Raw, item.Processed)
		}
	}
}
