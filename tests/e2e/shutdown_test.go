package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/vietddude/conveyor/internal/control"
	"github.com/vietddude/conveyor/internal/core/config"
)

func TestGracefulShutdown(t *testing.T) {
	// Memory storage, long scan interval: the runner starts, runs one
	// batch, then idles until cancelled.
	cfg := &config.AppConfig{
		Server: config.ServerConfig{Port: 18090},
		Pipeline: config.PipelineConfig{
			MaxRetries:   1,
			BackoffUnit:  time.Millisecond,
			RetryMode:    "restart",
			ScanInterval: time.Hour,
			BatchSize:    2,
		},
	}

	runner, err := control.NewRunner(cfg)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runner.Start(ctx)
	}()

	// Give the first batch time to finish, then cancel.
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after cancellation")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	if err := runner.Stop(shutdownCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
