// Package advice produces improvement suggestions from a session report.
//
// The advisor is an optional collaborator of the alignment engine: the
// engine's contract is satisfied with or without it. An LLM-backed advisor
// generates tailored prose; a static advisor holds a fixed suggestion list
// and serves as the mandatory fallback when the LLM is unavailable or
// failing.
package advice

import (
	"context"

	"github.com/mkhalidi/rattil/internal/align"
)

// DefaultMaxSuggestions caps the number of suggestions returned to the
// caller. A policy knob, not an algorithmic necessity.
const DefaultMaxSuggestions = 5

// Advisor turns a session report into a short list of improvement
// suggestions. Implementations must be safe for concurrent use.
type Advisor interface {
	// Suggest returns up to the advisor's configured maximum of suggestions
	// derived from the report's error counts and accuracy.
	Suggest(ctx context.Context, report align.Report) ([]string, error)
}

// capSuggestions truncates suggestions to max entries. A max of zero or
// less applies [DefaultMaxSuggestions].
func capSuggestions(suggestions []string, max int) []string {
	if max <= 0 {
		max = DefaultMaxSuggestions
	}
	if len(suggestions) > max {
		return suggestions[:max]
	}
	return suggestions
}
