package stage

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/vietddude/conveyor/internal/core/domain"
)

// Params configures one simulated stage.
type Params struct {
	Latency  time.Duration // simulated I/O delay
	FailRate float64       // probability of failure in [0,1]
}

// SimConfig configures the three simulated stages.
type SimConfig struct {
	Fetch     Params
	Transform Params
	Persist   Params
}

// DefaultSimConfig simulates a typical pipeline: 500ms fetch, 300ms
// transform, 200ms persist, no injected failures.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Fetch:     Params{Latency: 500 * time.Millisecond},
		Transform: Params{Latency: 300 * time.Millisecond},
		Persist:   Params{Latency: 200 * time.Millisecond},
	}
}

// Simulator is a Backend that simulates I/O with configurable latency and
// failure injection. A seeded source makes failure sequences reproducible.
type Simulator struct {
	cfg SimConfig

	mu  sync.Mutex
	rng *rand.Rand

	saved sync.Map // domain.ItemID -> string, what Persist stored
}

// NewSimulator creates a simulator with a time-seeded failure source.
func NewSimulator(cfg SimConfig) *Simulator {
	return NewSimulatorWithSeed(cfg, time.Now().UnixNano())
}

// NewSimulatorWithSeed creates a simulator with a fixed seed.
func NewSimulatorWithSeed(cfg SimConfig, seed int64) *Simulator {
	return &Simulator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (s *Simulator) Fetch(ctx context.Context, id domain.ItemID) (string, error) {
	if err := s.simulate(ctx, s.cfg.Fetch); err != nil {
		return "", fmt.Errorf("fetch item %d: %w", id, err)
	}
	return fmt.Sprintf("raw_data_%d", id), nil
}

func (s *Simulator) Transform(ctx context.Context, id domain.ItemID, raw string) (string, error) {
	if err := s.simulate(ctx, s.cfg.Transform); err != nil {
		return "", fmt.Errorf("transform item %d: %w", id, err)
	}
	return strings.ToUpper(raw), nil
}

func (s *Simulator) Persist(ctx context.Context, item *domain.WorkItem) error {
	if err := s.simulate(ctx, s.cfg.Persist); err != nil {
		return fmt.Errorf("persist item %d: %w", item.ID, err)
	}
	s.saved.Store(item.ID, item.Processed)
	return nil
}

// Saved returns what Persist stored for an item, for tests and the demo.
func (s *Simulator) Saved(id domain.ItemID) (string, bool) {
	v, ok := s.saved.Load(id)
	if !ok {
		return "", false
	}
	return v.(string), true
}

var errInjected = fmt.Errorf("simulated failure")

// simulate sleeps for the stage latency (context-aware) and then rolls the
// failure probability.
func (s *Simulator) simulate(ctx context.Context, p Params) error {
	if p.Latency > 0 {
		timer := time.NewTimer(p.Latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if p.FailRate <= 0 {
		return nil
	}
	if p.FailRate >= 1 {
		return errInjected
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()
	if roll < p.FailRate {
		return errInjected
	}
	return nil
}
