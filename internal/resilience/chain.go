package resilience

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrExhausted is returned when every entry in a [Chain] fails or has an
// open breaker.
var ErrExhausted = errors.New("resilience: all fallbacks failed")

// entry pairs a collaborator with its dedicated breaker.
type entry[T any] struct {
	name    string
	value   T
	breaker *Breaker
}

// Chain tries a primary collaborator first and falls back through the
// remaining entries in registration order. Each entry has its own
// [Breaker], so a persistently failing primary is skipped outright once its
// breaker opens.
type Chain[T any] struct {
	entries []entry[T]
	cfg     BreakerConfig
}

// NewChain creates a [Chain] with primary as the first entry. cfg seeds the
// breaker configuration for every entry; the Name field is overridden per
// entry.
func NewChain[T any](name string, primary T, cfg BreakerConfig) *Chain[T] {
	c := &Chain[T]{cfg: cfg}
	c.Add(name, primary)
	return c
}

// Add appends a fallback entry. Entries are tried in the order added.
func (c *Chain[T]) Add(name string, value T) {
	cfg := c.cfg
	cfg.Name = name
	c.entries = append(c.entries, entry[T]{
		name:    name,
		value:   value,
		breaker: NewBreaker(cfg),
	})
}

// Run calls fn against each entry in order until one succeeds. Entries with
// open breakers are skipped. When every entry fails the last error is
// returned wrapped in [ErrExhausted].
func Run[T any, R any](c *Chain[T], fn func(T) (R, error)) (R, error) {
	var (
		zero    R
		lastErr error
	)
	for i := range c.entries {
		e := &c.entries[i]
		var result R
		err := e.breaker.Do(func() error {
			var callErr error
			result, callErr = fn(e.value)
			return callErr
		})
		if err == nil {
			return result, nil
		}
		lastErr = err
		if errors.Is(err, ErrOpen) {
			slog.Debug("skipping fallback entry (circuit open)", "entry", e.name)
		} else {
			slog.Warn("fallback entry failed, trying next", "entry", e.name, "error", err)
		}
	}
	return zero, fmt.Errorf("%w: %v", ErrExhausted, lastErr)
}
