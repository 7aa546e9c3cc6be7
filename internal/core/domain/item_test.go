package domain

import "testing"

func TestWorkItem_Lifecycle(t *testing.T) {
	item := NewWorkItem(7)

	if item.Status != StatusPending {
		t.Errorf("expected pending, got %s", item.Status)
	}
	if item.Terminal() {
		t.Error("pending item should not be terminal")
	}

	item.Status = StatusInProgress
	item.Complete()

	if item.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", item.Status)
	}
	if !item.Terminal() {
		t.Error("completed item should be terminal")
	}
	if item.FinishedAt.IsZero() {
		t.Error("completed item should have a finish time")
	}
}

func TestWorkItem_TerminalIsFinal(t *testing.T) {
	item := NewWorkItem(1)
	item.Fail("fetch: boom")

	if item.Status != StatusFailed {
		t.Errorf("expected failed, got %s", item.Status)
	}
	if item.LastError != "fetch: boom" {
		t.Errorf("unexpected last error: %q", item.LastError)
	}

	// No transition out of a terminal state.
	item.Complete()
	if item.Status != StatusFailed {
		t.Errorf("failed item transitioned to %s", item.Status)
	}

	done := NewWorkItem(2)
	done.Complete()
	done.Fail("too late")
	if done.Status != StatusCompleted {
		t.Errorf("completed item transitioned to %s", done.Status)
	}
	if done.LastError != "" {
		t.Errorf("completed item has last error %q", done.LastError)
	}
}
