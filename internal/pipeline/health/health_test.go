package health

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vietddude/conveyor/internal/pipeline/aggregate"
)

func TestMonitor_StatusTransitions(t *testing.T) {
	m := NewMonitor(func() int { return 2 })

	// Before any batch.
	report := m.Check()
	if report.Status != StatusHealthy {
		t.Errorf("empty monitor: expected healthy, got %s", report.Status)
	}
	if report.PendingRetry != 2 {
		t.Errorf("expected 2 pending, got %d", report.PendingRetry)
	}

	// Clean batch.
	m.RecordBatch(aggregate.Summary{Total: 5, Succeeded: 5, Elapsed: time.Second})
	if got := m.Check(); got.Status != StatusHealthy || got.BatchesRun != 1 {
		t.Errorf("clean batch: got %+v", got)
	}

	// Partial failure.
	m.RecordBatch(aggregate.Summary{Total: 5, Succeeded: 3, Failed: 2})
	if got := m.Check(); got.Status != StatusDegraded {
		t.Errorf("partial failure: expected degraded, got %s", got.Status)
	}

	// Total failure.
	m.RecordBatch(aggregate.Summary{Total: 5, Failed: 5})
	if got := m.Check(); got.Status != StatusCritical {
		t.Errorf("total failure: expected critical, got %s", got.Status)
	}
}

func TestServer_HealthEndpoint(t *testing.T) {
	m := NewMonitor(nil)
	m.RecordBatch(aggregate.Summary{Total: 3, Succeeded: 3})
	s := NewServer(m, 0)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	s.handleHealth(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy, got %q", body["status"])
	}
}

func TestServer_CriticalReturns503(t *testing.T) {
	m := NewMonitor(nil)
	m.RecordBatch(aggregate.Summary{Total: 2, Failed: 2})
	s := NewServer(m, 0)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	s.handleHealth(rec, req)

	if rec.Code != 503 {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestServer_DetailedEndpoint(t *testing.T) {
	m := NewMonitor(func() int { return 1 })
	m.RecordBatch(aggregate.Summary{BatchID: "b1", Total: 4, Succeeded: 3, Failed: 1})
	s := NewServer(m, 0)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health/detailed", nil)
	s.handleDetailed(rec, req)

	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if report.Status != StatusDegraded || report.LastBatch == nil || report.LastBatch.BatchID != "b1" {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.PendingRetry != 1 {
		t.Errorf("expected 1 pending, got %d", report.PendingRetry)
	}
}
