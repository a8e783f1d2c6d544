package advice

import (
	"context"

	"github.com/mkhalidi/rattil/internal/align"
	"github.com/mkhalidi/rattil/internal/resilience"
)

// Resilient is an [Advisor] that tries a chain of advisors in order, with a
// circuit breaker per entry. The intended composition is an LLM advisor as
// primary and [Static] as the terminal fallback, so Suggest effectively
// never fails.
type Resilient struct {
	chain *resilience.Chain[Advisor]
}

// Compile-time interface check.
var _ Advisor = (*Resilient)(nil)

// NewResilient creates a [Resilient] advisor with primary as the preferred
// entry. Register fallbacks with [Resilient.AddFallback].
func NewResilient(name string, primary Advisor, cfg resilience.BreakerConfig) *Resilient {
	return &Resilient{chain: resilience.NewChain(name, primary, cfg)}
}

// AddFallback registers an additional advisor, tried after earlier entries.
func (r *Resilient) AddFallback(name string, advisor Advisor) {
	r.chain.Add(name, advisor)
}

// Suggest delegates to the first healthy advisor in the chain.
func (r *Resilient) Suggest(ctx context.Context, report align.Report) ([]string, error) {
	return resilience.Run(r.chain, func(a Advisor) ([]string, error) {
		return a.Suggest(ctx, report)
	})
}
