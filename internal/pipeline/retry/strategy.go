package retry

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// FailureCategory classifies a stage failure.
type FailureCategory int

const (
	// CategoryTransient failures are worth retrying.
	CategoryTransient FailureCategory = iota
	// CategoryPermanent failures will not succeed on retry.
	CategoryPermanent
)

// Classifier maps a stage error to a failure category.
type Classifier func(err error) FailureCategory

// Strategy defines how retries are paced and bounded.
type Strategy interface {
	// Delay returns the backoff delay for the given attempt (0-indexed).
	Delay(attempt int) time.Duration

	// ShouldRetry checks if we should retry based on the error and attempt count.
	ShouldRetry(err error, attempt int) bool
}

// ExponentialBackoff waits Unit * 2^attempt between attempts, capped at
// MaxDelay when set. Jitter, when enabled, draws uniformly from [0, delay]
// so concurrent retries don't align.
type ExponentialBackoff struct {
	Unit        time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
	Jitter      bool
	Classifier  Classifier

	mu  sync.Mutex
	rng *rand.Rand
}

// DefaultBackoff returns the standard pacing: 1s, 2s, 4s over three
// attempts.
func DefaultBackoff(classifier Classifier) *ExponentialBackoff {
	if classifier == nil {
		// Treat everything as transient (safe default).
		classifier = func(err error) FailureCategory {
			return CategoryTransient
		}
	}
	return &ExponentialBackoff{
		Unit:        1 * time.Second,
		MaxDelay:    60 * time.Second,
		MaxAttempts: 3,
		Classifier:  classifier,
	}
}

// Delay calculates the delay: Unit * 2^attempt.
func (s *ExponentialBackoff) Delay(attempt int) time.Duration {
	delay := float64(s.Unit) * math.Pow(2, float64(attempt))
	if s.MaxDelay > 0 && delay > float64(s.MaxDelay) {
		delay = float64(s.MaxDelay)
	}
	if !s.Jitter {
		return time.Duration(delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return time.Duration(s.rng.Int63n(int64(delay) + 1))
}

// ShouldRetry checks if the error is transient and max attempts not exceeded.
func (s *ExponentialBackoff) ShouldRetry(err error, attempt int) bool {
	if attempt >= s.MaxAttempts-1 {
		return false
	}
	if s.Classifier == nil {
		return true
	}
	return s.Classifier(err) == CategoryTransient
}
