package align

import (
	"math"

	"github.com/antzucaro/matchr"

	"github.com/mkhalidi/rattil/internal/arabic"
)

// Strategy selects the word-similarity measure used by a [Scorer].
type Strategy string

const (
	// StrategyJaccard scores two words by the Jaccard index of their
	// distinct-letter sets. Arabic root-and-pattern morphology means most
	// near-miss mispronunciations share the bulk of their letters, so
	// set overlap is a cheap proxy for near-equality that tolerates the
	// letter-order noise speech transcription introduces. This is the
	// default.
	StrategyJaccard Strategy = "jaccard"

	// StrategyJaroWinkler scores two words with Jaro-Winkler similarity,
	// which is order-sensitive and weights shared prefixes. Stricter than
	// Jaccard on transposed letters; offered as a configuration knob.
	StrategyJaroWinkler Strategy = "jaro-winkler"
)

// IsValid reports whether s is a recognised similarity strategy.
func (s Strategy) IsValid() bool {
	return s == StrategyJaccard || s == StrategyJaroWinkler
}

// ScorerOption is a functional option for configuring a [Scorer].
type ScorerOption func(*Scorer)

// WithStrategy selects the word-similarity measure. Default: [StrategyJaccard].
func WithStrategy(s Strategy) ScorerOption {
	return func(sc *Scorer) {
		sc.strategy = s
	}
}

// Scorer computes similarity between normalized Arabic words. It is
// read-only after construction and safe for concurrent use.
type Scorer struct {
	strategy Strategy
}

// NewScorer returns a [Scorer] configured with the supplied options.
func NewScorer(opts ...ScorerOption) *Scorer {
	sc := &Scorer{strategy: StrategyJaccard}
	for _, o := range opts {
		o(sc)
	}
	return sc
}

// WordSimilarity compares two words and returns a score in [0, 1].
//
// Both inputs are normalized first. Words that are equal after normalization
// score exactly 1.0 regardless of strategy. Two empty words score 0 — the
// function never divides by zero.
func (sc *Scorer) WordSimilarity(a, b string) float64 {
	na := arabic.Normalize(a)
	nb := arabic.Normalize(b)
	if na == nb {
		if na == "" {
			return 0
		}
		return 1.0
	}

	switch sc.strategy {
	case StrategyJaroWinkler:
		return matchr.JaroWinkler(na, nb, false)
	default:
		return jaccard(na, nb)
	}
}

// jaccard returns |A∩B| / |A∪B| over the distinct code points of the two
// words. Repeated letters count once.
func jaccard(a, b string) float64 {
	setA := runeSet(a)
	setB := runeSet(b)

	union := len(setB)
	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// runeSet returns the set of distinct code points in s.
func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

// SequenceSimilarity compares a full spoken transcript against a full
// reference text and returns a score in [0, 1].
//
// Both sides are normalized and tokenized, then matched greedily: each spoken
// token consumes the first not-yet-consumed exact match in the reference,
// scanned left to right. The score is matches / max(len(spoken), len(ref)).
// Two empty texts score 1.0.
//
// This is intentionally a weaker, order-insensitive measure than per-word
// similarity; it serves only as the headline accuracy percentage.
func SequenceSimilarity(spoken, reference string) float64 {
	spokenWords := arabic.Tokenize(spoken)
	referenceWords := arabic.Tokenize(reference)

	if len(spokenWords) == 0 && len(referenceWords) == 0 {
		return 1.0
	}

	consumed := make([]bool, len(referenceWords))
	matches := 0
	for _, sw := range spokenWords {
		for i, rw := range referenceWords {
			if !consumed[i] && sw == rw {
				consumed[i] = true
				matches++
				break
			}
		}
	}

	denom := len(spokenWords)
	if len(referenceWords) > denom {
		denom = len(referenceWords)
	}
	return float64(matches) / float64(denom)
}

// similarityPercent converts a [0, 1] score to a rounded integer percentage.
func similarityPercent(score float64) int {
	return int(math.Round(score * 100))
}

// roundPercent rounds a [0, 1] ratio to a percentage with one decimal place.
func roundPercent(ratio float64) float64 {
	return math.Round(ratio*1000) / 10
}
