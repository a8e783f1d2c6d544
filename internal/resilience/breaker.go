// Package resilience provides a circuit breaker and a generic fallback chain.
//
// [Breaker] is a three-state circuit breaker (closed → open → half-open)
// that stops hammering a failing collaborator. [Chain] composes multiple
// instances of any collaborator type with per-entry breakers so a failing
// primary is bypassed in favour of healthy fallbacks.
//
// All types are safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by [Breaker.Do] while the breaker is open and the
// cool-down has not elapsed.
var ErrOpen = errors.New("resilience: circuit open")

// BreakerConfig holds tuning knobs for a [Breaker]. Zero-value fields are
// replaced with defaults.
type BreakerConfig struct {
	// Name labels the breaker in log messages.
	Name string

	// MaxFailures is the number of consecutive failures before the breaker
	// opens. Default: 3.
	MaxFailures int

	// CoolDown is how long the breaker stays open before allowing a probe
	// call. Default: 30s.
	CoolDown time.Duration
}

// Breaker is a three-state circuit breaker. After MaxFailures consecutive
// failures it opens; once the cool-down elapses a single probe call is let
// through, and its outcome decides whether the breaker closes or re-opens.
type Breaker struct {
	name        string
	maxFailures int
	coolDown    time.Duration

	mu       sync.Mutex
	failures int
	openedAt time.Time
	open     bool
	probing  bool
}

// NewBreaker creates a [Breaker] with the supplied configuration.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = 30 * time.Second
	}
	return &Breaker{
		name:        cfg.Name,
		maxFailures: cfg.MaxFailures,
		coolDown:    cfg.CoolDown,
	}
}

// Do runs fn unless the breaker is open. While open and cooling down it
// returns [ErrOpen] without calling fn; after the cool-down one probe call
// is admitted at a time.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	if b.open {
		if time.Since(b.openedAt) < b.coolDown || b.probing {
			b.mu.Unlock()
			return ErrOpen
		}
		b.probing = true
		slog.Debug("circuit breaker probing", "name", b.name)
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false

	if err != nil {
		b.failures++
		if b.open || b.failures >= b.maxFailures {
			if !b.open {
				slog.Warn("circuit breaker opened", "name", b.name, "failures", b.failures)
			}
			b.open = true
			b.openedAt = time.Now()
		}
		return err
	}

	if b.open {
		slog.Info("circuit breaker closed after successful probe", "name", b.name)
	}
	b.open = false
	b.failures = 0
	return nil
}
