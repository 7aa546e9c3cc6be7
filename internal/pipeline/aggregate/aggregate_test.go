package aggregate

import (
	"strings"
	"testing"
	"time"

	"github.com/vietddude/conveyor/internal/core/domain"
)

func terminalItems() []*domain.WorkItem {
	ok1 := domain.NewWorkItem(1)
	ok1.Attempts = 1
	ok1.Processed = "RAW_DATA_1"
	ok1.Complete()

	bad := domain.NewWorkItem(2)
	bad.Attempts = 3
	bad.Fail("item 2: fetch: simulated failure")

	ok2 := domain.NewWorkItem(3)
	ok2.Attempts = 2
	ok2.Processed = "RAW_DATA_3"
	ok2.Complete()

	return []*domain.WorkItem{ok1, bad, ok2}
}

func TestPartition(t *testing.T) {
	succeeded, failed := Partition(terminalItems())

	if len(succeeded) != 2 {
		t.Errorf("expected 2 succeeded, got %d", len(succeeded))
	}
	if len(failed) != 1 {
		t.Errorf("expected 1 failed, got %d", len(failed))
	}
	if succeeded[0].ID != 1 || succeeded[1].ID != 3 {
		t.Error("succeeded list should preserve order")
	}
	if failed[0].ID != 2 {
		t.Errorf("expected failed item 2, got %d", failed[0].ID)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize("batch-a", terminalItems(), 1500*time.Millisecond)

	if s.Total != 3 || s.Succeeded != 2 || s.Failed != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.Elapsed != 1500*time.Millisecond {
		t.Errorf("unexpected elapsed: %v", s.Elapsed)
	}
	if s.BatchID != "batch-a" {
		t.Errorf("unexpected batch id: %q", s.BatchID)
	}
}

func TestRender(t *testing.T) {
	items := terminalItems()
	out := Render(Summarize("b", items, 2*time.Second), items)

	for _, want := range []string{
		"Successful: 2/3",
		"Failed: 1/3",
		"item 2: item 2: fetch: simulated failure (attempts: 3)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q:\n%s", want, out)
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize("empty", nil, 0)
	if s.Total != 0 || s.Succeeded != 0 || s.Failed != 0 {
		t.Errorf("unexpected summary for empty batch: %+v", s)
	}
}
