package align

import (
	"errors"

	"github.com/mkhalidi/rattil/internal/arabic"
)

// defaultMatchThreshold is the minimum word-similarity score for a spoken
// word to count as a match during incremental alignment.
const defaultMatchThreshold = 0.8

// ErrCursorOutOfRange is returned by [Aligner.Advance] when the supplied
// cursor exceeds the reference length. This indicates caller misuse, not a
// normal end-of-reference condition (a cursor equal to the reference length
// is a valid no-op).
var ErrCursorOutOfRange = errors.New("align: cursor out of reference range")

// AlignerOption is a functional option for configuring an [Aligner].
type AlignerOption func(*Aligner)

// WithMatchThreshold sets the minimum word-similarity score in [0, 1] for a
// spoken word to be accepted as a match. Default: 0.8.
func WithMatchThreshold(threshold float64) AlignerOption {
	return func(a *Aligner) {
		a.threshold = threshold
	}
}

// WithScorer sets the word-similarity [Scorer]. Default: a Jaccard scorer.
func WithScorer(sc *Scorer) AlignerOption {
	return func(a *Aligner) {
		a.scorer = sc
	}
}

// Aligner consumes successive chunks of finalized spoken text and advances a
// cursor through the reference word sequence, emitting positional error
// events as it goes. It holds no session state of its own and is safe for
// concurrent use; callers own the cursor and must serialize calls that share
// one.
type Aligner struct {
	scorer    *Scorer
	threshold float64
}

// NewAligner returns an [Aligner] configured with the supplied options.
func NewAligner(opts ...AlignerOption) *Aligner {
	a := &Aligner{
		scorer:    NewScorer(),
		threshold: defaultMatchThreshold,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Advance aligns one finalized transcript chunk against reference starting
// at cursor. It returns the error events the chunk produced and the new
// cursor position.
//
// Each spoken token is compared against the reference word at its expected
// position (cursor + offset):
//
//   - similarity ≥ threshold: the position is consumed silently.
//   - similarity < threshold: a [KindIncorrect] event is emitted and the
//     position is still consumed — the aligner advances past incorrect
//     attempts rather than stalling under noisy transcription.
//   - expected position past the reference end: a [KindExtra] event is
//     emitted and the cursor does not move.
//
// Consumed positions are never revisited, even if a later chunk would have
// matched them better. The returned cursor is always ≥ the input cursor.
//
// A chunk that normalizes to no tokens, or a cursor already at the reference
// end, is a no-op: no events, unchanged cursor, nil error. A cursor beyond
// the reference length returns [ErrCursorOutOfRange].
func (a *Aligner) Advance(chunk string, cursor int, reference []string) ([]Event, int, error) {
	if cursor < 0 || cursor > len(reference) {
		return nil, cursor, ErrCursorOutOfRange
	}

	spokenWords := arabic.Tokenize(chunk)
	if len(spokenWords) == 0 || cursor == len(reference) {
		return nil, cursor, nil
	}

	var events []Event
	consumed := 0

	for i, spoken := range spokenWords {
		expectedPos := cursor + i
		if expectedPos >= len(reference) {
			events = append(events, Event{
				Kind:     KindExtra,
				Position: expectedPos,
				Spoken:   spoken,
			})
			continue
		}

		expected := reference[expectedPos]
		similarity := a.scorer.WordSimilarity(spoken, expected)
		if similarity < a.threshold {
			events = append(events, Event{
				Kind:       KindIncorrect,
				Position:   expectedPos,
				Spoken:     spoken,
				Expected:   expected,
				Similarity: similarityPercent(similarity),
			})
		}
		consumed++
	}

	return events, cursor + consumed, nil
}
