package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/conveyor/internal/core/domain"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Pipeline.MaxRetries == 0 {
		cfg.Pipeline.MaxRetries = 3
	}
	if cfg.Pipeline.BackoffUnit == 0 {
		cfg.Pipeline.BackoffUnit = 1 * time.Second
	}
	if cfg.Pipeline.RetryMode == "" {
		cfg.Pipeline.RetryMode = "restart"
	}
	if cfg.Pipeline.ScanInterval == 0 {
		cfg.Pipeline.ScanInterval = 30 * time.Second
	}
	if cfg.Pipeline.BatchSize == 0 {
		cfg.Pipeline.BatchSize = 10
	}
}

// Validate rejects invalid settings. Configuration errors are fatal and
// surfaced immediately, before any pipeline work starts.
func (c *AppConfig) Validate() error {
	if c.Pipeline.MaxRetries < 1 {
		return &domain.ConfigError{Field: "pipeline.max_retries", Reason: "must be >= 1"}
	}
	if c.Pipeline.BackoffUnit < 0 {
		return &domain.ConfigError{Field: "pipeline.backoff_unit", Reason: "must not be negative"}
	}
	if c.Pipeline.Concurrency < 0 {
		return &domain.ConfigError{Field: "pipeline.concurrency", Reason: "must not be negative"}
	}
	if c.Pipeline.ItemTimeout < 0 {
		return &domain.ConfigError{Field: "pipeline.item_timeout", Reason: "must not be negative"}
	}
	if mode := c.Pipeline.RetryMode; mode != "restart" && mode != "resume" {
		return &domain.ConfigError{Field: "pipeline.retry_mode", Reason: "must be restart or resume"}
	}
	if c.Pipeline.BatchSize < 1 {
		return &domain.ConfigError{Field: "pipeline.batch_size", Reason: "must be >= 1"}
	}

	for _, s := range []struct {
		name string
		cfg  StageConfig
	}{
		{"fetch", c.Stages.Fetch},
		{"transform", c.Stages.Transform},
		{"persist", c.Stages.Persist},
	} {
		if s.cfg.FailRate < 0 || s.cfg.FailRate > 1 {
			return &domain.ConfigError{
				Field:  "stages." + s.name + ".fail_rate",
				Reason: "must be in [0,1]",
			}
		}
		if s.cfg.Latency < 0 {
			return &domain.ConfigError{
				Field:  "stages." + s.name + ".latency",
				Reason: "must not be negative",
			}
		}
	}

	return nil
}
