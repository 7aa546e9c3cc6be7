package domain

import "time"

// ItemID identifies a work item within a batch.
type ItemID int64

// ItemStatus tracks an item's lifecycle. Transitions are monotonic:
// pending -> in_progress -> {completed | failed}. Terminal states never
// transition again.
type ItemStatus string

const (
	StatusPending    ItemStatus = "pending"
	StatusInProgress ItemStatus = "in_progress"
	StatusCompleted  ItemStatus = "completed"
	StatusFailed     ItemStatus = "failed"
)

// WorkItem is one unit of work moving through the pipeline.
// A WorkItem is owned exclusively by its retry controller until it reaches
// a terminal status; after that it is read-only.
type WorkItem struct {
	ID         ItemID     `json:"id"`
	BatchID    string     `json:"batch_id,omitempty"`
	Raw        string     `json:"raw_payload,omitempty"`
	Processed  string     `json:"processed_payload,omitempty"`
	Status     ItemStatus `json:"status"`
	LastError  string     `json:"last_error,omitempty"`
	Attempts   int        `json:"attempts"`
	FinishedAt time.Time  `json:"finished_at,omitzero"`
}

// NewWorkItem creates a pending item with only its ID set.
func NewWorkItem(id ItemID) *WorkItem {
	return &WorkItem{
		ID:     id,
		Status: StatusPending,
	}
}

// Terminal reports whether the item reached completed or failed.
func (w *WorkItem) Terminal() bool {
	return w.Status == StatusCompleted || w.Status == StatusFailed
}

// Complete marks the item completed. No-op if already terminal.
func (w *WorkItem) Complete() {
	if w.Terminal() {
		return
	}
	w.Status = StatusCompleted
	w.LastError = ""
	w.FinishedAt = time.Now()
}

// Fail marks the item failed with the given cause. No-op if already terminal.
func (w *WorkItem) Fail(cause string) {
	if w.Terminal() {
		return
	}
	w.Status = StatusFailed
	w.LastError = cause
	w.FinishedAt = time.Now()
}
