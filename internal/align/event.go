// Package align is the recitation-alignment engine: it scores similarity
// between spoken and reference Arabic words, advances a cursor through the
// reference sequence as finalized transcript chunks arrive, and produces the
// exhaustive end-of-session diff and report.
//
// Every function operates on its explicit inputs only. Text is normalized via
// [github.com/mkhalidi/rattil/internal/arabic] before any comparison, so
// callers may pass raw Quranic script or plain transcript text
// interchangeably.
package align

// Kind classifies a single deviation between spoken and reference text.
type Kind string

const (
	// KindIncorrect marks a reference position that was attempted but did
	// not match well enough.
	KindIncorrect Kind = "incorrect"

	// KindMissing marks a reference position that was never matched.
	KindMissing Kind = "missing"

	// KindExtra marks a spoken word with no corresponding reference slot.
	KindExtra Kind = "extra"
)

// Event is one classified deviation. Events are append-only for the duration
// of a session; the final report owns the categorized collection.
type Event struct {
	// Kind is the deviation category.
	Kind Kind `json:"kind"`

	// Position is the index into the reference word sequence this event
	// refers to. For KindExtra it is the index the word would have occupied.
	Position int `json:"position"`

	// Spoken is the transcribed word. Empty for KindMissing.
	Spoken string `json:"spoken,omitempty"`

	// Expected is the reference word. Empty for KindExtra.
	Expected string `json:"expected,omitempty"`

	// Similarity is the word-similarity score as a rounded percentage in
	// [0, 100]. Only meaningful for KindIncorrect.
	Similarity int `json:"similarity,omitempty"`
}
