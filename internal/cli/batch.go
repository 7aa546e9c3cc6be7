package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/conveyor/internal/control"
	"github.com/vietddude/conveyor/internal/core/domain"
	"github.com/vietddude/conveyor/internal/pipeline/aggregate"
)

var batchCount int

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a single batch and print the summary",
	Run:   runBatch,
}

func init() {
	batchCmd.Flags().IntVar(&batchCount, "items", 10, "number of items to process")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	runner, err := control.NewRunner(cfg)
	if err != nil {
		slog.Error("Failed to initialize runner", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = runner.Stop(context.Background())
	}()

	ids := make([]domain.ItemID, batchCount)
	for i := range ids {
		ids[i] = domain.ItemID(i + 1)
	}

	items, summary, err := runner.RunBatch(context.Background(), ids)
	if err != nil {
		slog.Error("Batch failed", "error", err)
		os.Exit(1)
	}

	fmt.Print(aggregate.Render(summary, items))

	succeeded, _ := aggregate.Partition(items)
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
