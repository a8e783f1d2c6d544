package resilience_test

import (
	"errors"
	"testing"
	"time"

	"github.com/mkhalidi/rattil/internal/resilience"
)

// stub is a trivial collaborator for chain tests.
type stub struct {
	result string
	err    error
	calls  int
}

func (s *stub) call() (string, error) {
	s.calls++
	return s.result, s.err
}

func TestChain_PrimaryWins(t *testing.T) {
	t.Parallel()

	primary := &stub{result: "primary"}
	fallback := &stub{result: "fallback"}

	c := resilience.NewChain("primary", primary, resilience.BreakerConfig{})
	c.Add("fallback", fallback)

	got, err := resilience.Run(c, func(s *stub) (string, error) { return s.call() })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "primary" {
		t.Errorf("Run() = %q, want %q", got, "primary")
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestChain_FallsBackOnFailure(t *testing.T) {
	t.Parallel()

	primary := &stub{err: errBoom}
	fallback := &stub{result: "fallback"}

	c := resilience.NewChain("primary", primary, resilience.BreakerConfig{})
	c.Add("fallback", fallback)

	got, err := resilience.Run(c, func(s *stub) (string, error) { return s.call() })
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "fallback" {
		t.Errorf("Run() = %q, want %q", got, "fallback")
	}
}

func TestChain_AllFail(t *testing.T) {
	t.Parallel()

	c := resilience.NewChain("a", &stub{err: errBoom}, resilience.BreakerConfig{})
	c.Add("b", &stub{err: errBoom})

	_, err := resilience.Run(c, func(s *stub) (string, error) { return s.call() })
	if !errors.Is(err, resilience.ErrExhausted) {
		t.Errorf("Run() error = %v, want ErrExhausted", err)
	}
}

func TestChain_OpenBreakerSkipsPrimary(t *testing.T) {
	t.Parallel()

	primary := &stub{err: errBoom}
	fallback := &stub{result: "fallback"}

	c := resilience.NewChain("primary", primary, resilience.BreakerConfig{
		MaxFailures: 1,
		CoolDown:    time.Hour,
	})
	c.Add("fallback", fallback)

	// First run trips the primary's breaker.
	if _, err := resilience.Run(c, func(s *stub) (string, error) { return s.call() }); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	callsAfterTrip := primary.calls

	// Subsequent runs must not touch the primary at all.
	for i := 0; i < 3; i++ {
		got, err := resilience.Run(c, func(s *stub) (string, error) { return s.call() })
		if err != nil || got != "fallback" {
			t.Fatalf("Run() = (%q, %v), want fallback", got, err)
		}
	}
	if primary.calls != callsAfterTrip {
		t.Errorf("primary called %d times after trip, want %d (breaker open)", primary.calls, callsAfterTrip)
	}
}
