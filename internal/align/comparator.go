package align

import (
	"time"

	"github.com/mkhalidi/rattil/internal/arabic"
)

// Comparison is the result of a full-session diff: the positional difference
// list and the greedy headline similarity score.
//
// The two measures deliberately use different alignment strategies — the
// similarity score is order-insensitive while the difference list is strictly
// positional — so the percentage and the error list can tell slightly
// different stories on reordered input. See the package documentation of the
// comparator for the rationale.
type Comparison struct {
	Differences []Event
	Similarity  float64
}

// ComparatorOption is a functional option for configuring a [Comparator].
type ComparatorOption func(*Comparator)

// WithComparatorScorer sets the word-similarity [Scorer] used to score
// incorrect positions. Default: a Jaccard scorer.
func WithComparatorScorer(sc *Scorer) ComparatorOption {
	return func(c *Comparator) {
		c.scorer = sc
	}
}

// Comparator performs the exhaustive end-of-session diff between a complete
// spoken transcript and the complete reference text. It is pure given its
// two string inputs, invoked once per session after recording stops, and
// safe for concurrent use.
//
// The difference list is an index-aligned diff with no re-synchronization: a
// single omission or insertion shifts every subsequent position and cascades
// into incorrect classifications. This is a known, accepted limitation for
// typical session lengths; an edit-distance alignment would change reported
// error counts and is deliberately not substituted here.
type Comparator struct {
	scorer *Scorer
}

// NewComparator returns a [Comparator] configured with the supplied options.
func NewComparator(opts ...ComparatorOption) *Comparator {
	c := &Comparator{scorer: NewScorer()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compare diffs the complete spoken transcript against the complete
// reference text.
//
// Both sides are normalized and tokenized, then compared position by
// position:
//
//   - both sides have a token and they differ → [KindIncorrect]
//   - only the spoken side has a token → [KindExtra]
//   - only the reference side has a token → [KindMissing]
//
// The similarity score is computed by [SequenceSimilarity]; two empty texts
// compare equal with similarity 1.0 and no differences.
func (c *Comparator) Compare(spoken, reference string) Comparison {
	spokenWords := arabic.Tokenize(spoken)
	referenceWords := arabic.Tokenize(reference)

	result := Comparison{
		Similarity: SequenceSimilarity(spoken, reference),
	}

	length := len(spokenWords)
	if len(referenceWords) > length {
		length = len(referenceWords)
	}

	for i := 0; i < length; i++ {
		switch {
		case i >= len(referenceWords):
			result.Differences = append(result.Differences, Event{
				Kind:     KindExtra,
				Position: i,
				Spoken:   spokenWords[i],
			})
		case i >= len(spokenWords):
			result.Differences = append(result.Differences, Event{
				Kind:     KindMissing,
				Position: i,
				Expected: referenceWords[i],
			})
		case spokenWords[i] != referenceWords[i]:
			result.Differences = append(result.Differences, Event{
				Kind:       KindIncorrect,
				Position:   i,
				Spoken:     spokenWords[i],
				Expected:   referenceWords[i],
				Similarity: similarityPercent(c.scorer.WordSimilarity(spokenWords[i], referenceWords[i])),
			})
		}
	}

	return result
}

// Report runs [Comparator.Compare] and assembles the terminal session report.
// The report is immutable once produced; the caller hands it to presentation
// and storage collaborators.
func (c *Comparator) Report(spoken, reference string) Report {
	comparison := c.Compare(spoken, reference)

	report := Report{
		TotalWords:  len(arabic.Tokenize(reference)),
		SpokenWords: len(arabic.Tokenize(spoken)),
		Accuracy:    roundPercent(comparison.Similarity),
		GeneratedAt: time.Now().UTC(),
	}

	if report.TotalWords > 0 {
		ratio := float64(report.SpokenWords) / float64(report.TotalWords)
		if ratio > 1 {
			ratio = 1
		}
		report.Completion = roundPercent(ratio)
	}

	for _, ev := range comparison.Differences {
		switch ev.Kind {
		case KindIncorrect:
			report.Incorrect = append(report.Incorrect, ev)
		case KindMissing:
			report.Missing = append(report.Missing, ev)
		case KindExtra:
			report.Extra = append(report.Extra, ev)
		}
	}

	return report
}
