package health

import (
	"sync"
	"time"

	"github.com/vietddude/conveyor/internal/pipeline/aggregate"
)

// Report is the monitor's view of the pipeline.
type Report struct {
	Status       Status             `json:"status"`
	BatchesRun   int                `json:"batches_run"`
	LastBatch    *aggregate.Summary `json:"last_batch,omitempty"`
	PendingRetry int                `json:"pending_retry"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// Monitor aggregates batch outcomes into a health status.
type Monitor struct {
	mu         sync.RWMutex
	batches    int
	last       *aggregate.Summary
	pendingFn  func() int
	lastUpdate time.Time
}

// NewMonitor creates a monitor. pendingFn reports how many failed items are
// waiting for re-submission; nil means none.
func NewMonitor(pendingFn func() int) *Monitor {
	return &Monitor{pendingFn: pendingFn}
}

// RecordBatch records a finished batch.
func (m *Monitor) RecordBatch(s aggregate.Summary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	m.last = &s
	m.lastUpdate = time.Now()
}

// Check builds the current report. A batch with some failures is degraded;
// a batch where nothing succeeded is critical.
func (m *Monitor) Check() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report := Report{
		Status:     StatusHealthy,
		BatchesRun: m.batches,
		LastBatch:  m.last,
		UpdatedAt:  m.lastUpdate,
	}
	if m.pendingFn != nil {
		report.PendingRetry = m.pendingFn()
	}

	if m.last != nil && m.last.Failed > 0 {
		report.Status = StatusDegraded
		if m.last.Succeeded == 0 && m.last.Total > 0 {
			report.Status = StatusCritical
		}
	}
	return report
}
