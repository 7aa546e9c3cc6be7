package config

import (
	"time"

	redisclient "github.com/vietddude/conveyor/internal/infra/redis"
	"github.com/vietddude/conveyor/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Pipeline PipelineConfig     `yaml:"pipeline"`
	Stages   StagesConfig       `yaml:"stages"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// PipelineConfig holds retry and fan-out settings.
type PipelineConfig struct {
	MaxRetries    int           `yaml:"max_retries"`    // attempts per item, >= 1
	BackoffUnit   time.Duration `yaml:"backoff_unit"`   // delay for attempt k is unit * 2^k
	BackoffMax    time.Duration `yaml:"backoff_max"`    // cap on a single delay, 0 = uncapped
	BackoffJitter bool          `yaml:"backoff_jitter"` // full jitter on delays
	RetryMode     string        `yaml:"retry_mode"`     // restart (default) or resume
	Concurrency   int           `yaml:"concurrency"`    // 0 = one goroutine per item
	ItemTimeout   time.Duration `yaml:"item_timeout"`   // 0 = disabled
	Streaming     bool          `yaml:"streaming"`      // expose arrival-order view
	ScanInterval  time.Duration `yaml:"scan_interval"`  // service mode: gap between batches
	BatchSize     int           `yaml:"batch_size"`     // service mode: items per batch
	Retention     time.Duration `yaml:"retention"`      // prune stored results older than this, 0 = keep forever
}

// StagesConfig holds per-stage simulation parameters.
type StagesConfig struct {
	Fetch     StageConfig `yaml:"fetch"`
	Transform StageConfig `yaml:"transform"`
	Persist   StageConfig `yaml:"persist"`
}

// StageConfig holds settings for one simulated stage.
type StageConfig struct {
	Latency  time.Duration `yaml:"latency"`
	FailRate float64       `yaml:"fail_rate"`
}
