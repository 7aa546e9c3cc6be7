package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ItemsProcessed tracks items reaching a terminal status.
	ItemsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conveyor_items_processed_total",
			Help: "Total number of items reaching a terminal status",
		},
		[]string{"status"},
	)

	// RetriesTotal tracks retry attempts across all items.
	RetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conveyor_retries_total",
			Help: "Total number of retry attempts",
		},
	)

	// StageErrors tracks stage failures by stage name.
	StageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conveyor_stage_errors_total",
			Help: "Total number of stage failures",
		},
		[]string{"stage"},
	)

	// StageDuration tracks per-stage execution latency.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "conveyor_stage_duration_seconds",
			Help:    "Stage execution latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// ItemsInFlight tracks items currently being processed.
	ItemsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conveyor_items_in_flight",
			Help: "Number of items currently being processed",
		},
	)

	// BatchDuration tracks wall time per batch.
	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "conveyor_batch_duration_seconds",
			Help:    "Batch wall time in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// BatchesTotal tracks completed batches by outcome.
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conveyor_batches_total",
			Help: "Total number of completed batches",
		},
		[]string{"outcome"},
	)
)
