// Package aggregate partitions terminal batch results and renders summaries.
package aggregate

import (
	"fmt"
	"strings"
	"time"

	"github.com/vietddude/conveyor/internal/core/domain"
)

// Summary describes the outcome of one batch. A batch with failed items is
// a normal, fully handled outcome, not an error.
type Summary struct {
	BatchID   string        `json:"batch_id"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Partition splits terminal items into succeeded and failed lists,
// preserving their order.
func Partition(items []*domain.WorkItem) (succeeded, failed []*domain.WorkItem) {
	for _, item := range items {
		switch item.Status {
		case domain.StatusCompleted:
			succeeded = append(succeeded, item)
		case domain.StatusFailed:
			failed = append(failed, item)
		}
	}
	return succeeded, failed
}

// Summarize computes the batch summary. Pure function over the terminal
// item collection.
func Summarize(batchID string, items []*domain.WorkItem, elapsed time.Duration) Summary {
	succeeded, failed := Partition(items)
	return Summary{
		BatchID:   batchID,
		Total:     len(items),
		Succeeded: len(succeeded),
		Failed:    len(failed),
		Elapsed:   elapsed,
	}
}

// Render formats the summary with per-item failure detail, in the shape the
// demo prints to the console.
func Render(s Summary, items []*domain.WorkItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Pipeline complete in %.2fs ===\n", s.Elapsed.Seconds())
	fmt.Fprintf(&b, "Successful: %d/%d\n", s.Succeeded, s.Total)
	fmt.Fprintf(&b, "Failed: %d/%d\n", s.Failed, s.Total)

	_, failed := Partition(items)
	if len(failed) > 0 {
		b.WriteString("\nFailed items:\n")
		for _, item := range failed {
			fmt.Fprintf(&b, "  item %d: %s (attempts: %d)\n", item.ID, item.LastError, item.Attempts)
		}
	}
	return b.String()
}
