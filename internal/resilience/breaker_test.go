package resilience_test

import (
	"errors"
	"testing"
	"time"

	"github.com/mkhalidi/rattil/internal/resilience"
)

var errBoom = errors.New("boom")

func TestBreaker_OpensAfterMaxFailures(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.BreakerConfig{
		Name:        "test",
		MaxFailures: 2,
		CoolDown:    time.Hour,
	})

	for i := 0; i < 2; i++ {
		if err := b.Do(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: error = %v, want errBoom", i, err)
		}
	}

	// Third call must be rejected without invoking fn.
	called := false
	err := b.Do(func() error { called = true; return nil })
	if !errors.Is(err, resilience.ErrOpen) {
		t.Errorf("error = %v, want ErrOpen", err)
	}
	if called {
		t.Error("fn was called while the breaker was open")
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.BreakerConfig{
		MaxFailures: 2,
		CoolDown:    time.Hour,
	})

	_ = b.Do(func() error { return errBoom })
	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatalf("success call error = %v", err)
	}
	// One more failure must not open the breaker: the counter was reset.
	_ = b.Do(func() error { return errBoom })
	if err := b.Do(func() error { return nil }); errors.Is(err, resilience.ErrOpen) {
		t.Error("breaker opened although the failure streak was interrupted")
	}
}

func TestBreaker_ProbeClosesAfterCoolDown(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.BreakerConfig{
		MaxFailures: 1,
		CoolDown:    10 * time.Millisecond,
	})

	_ = b.Do(func() error { return errBoom })
	if err := b.Do(func() error { return nil }); !errors.Is(err, resilience.ErrOpen) {
		t.Fatalf("error = %v, want ErrOpen before cool-down", err)
	}

	time.Sleep(20 * time.Millisecond)

	// Probe call is admitted and its success closes the breaker.
	if err := b.Do(func() error { return nil }); err != nil {
		t.Fatalf("probe call error = %v", err)
	}
	if err := b.Do(func() error { return nil }); err != nil {
		t.Errorf("post-probe call error = %v, want closed breaker", err)
	}
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	t.Parallel()

	b := resilience.NewBreaker(resilience.BreakerConfig{
		MaxFailures: 1,
		CoolDown:    10 * time.Millisecond,
	})

	_ = b.Do(func() error { return errBoom })
	time.Sleep(20 * time.Millisecond)

	if err := b.Do(func() error { return errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("probe error = %v, want errBoom", err)
	}
	if err := b.Do(func() error { return nil }); !errors.Is(err, resilience.ErrOpen) {
		t.Errorf("error = %v, want ErrOpen after failed probe", err)
	}
}
