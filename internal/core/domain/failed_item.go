package domain

// FailedItem records a work item that ended in terminal failure, so a later
// run can inspect or re-submit it.
type FailedItem struct {
	ID        string           `json:"id"`
	BatchID   string           `json:"batch_id"`
	ItemID    ItemID           `json:"item_id"`
	Error     string           `json:"error_msg"`
	Attempts  int              `json:"attempts"`
	Status    FailedItemStatus `json:"status"`
	CreatedAt uint64           `json:"created_at"`
}

type FailedItemStatus string

const (
	FailedItemStatusPending  FailedItemStatus = "pending"
	FailedItemStatusResolved FailedItemStatus = "resolved"
	FailedItemStatusIgnored  FailedItemStatus = "ignored"
)
