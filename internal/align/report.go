package align

import "time"

// Report is the aggregate outcome of one recitation session. It is created
// exactly once by [Comparator.Report] when the session ends and never
// mutated afterwards.
type Report struct {
	// Accuracy is the headline similarity score as a percentage with one
	// decimal place, computed by greedy exact-match counting.
	Accuracy float64 `json:"accuracy"`

	// Completion is min(SpokenWords/TotalWords, 1) as a percentage with one
	// decimal place. Zero when the reference is empty.
	Completion float64 `json:"completion"`

	// TotalWords is the reference word count.
	TotalWords int `json:"total_words"`

	// SpokenWords is the transcript word count.
	SpokenWords int `json:"spoken_words"`

	// Incorrect, Missing, and Extra hold the categorized deviation events.
	// Every deviation classified during comparison appears exactly once in
	// exactly one of these lists.
	Incorrect []Event `json:"incorrect"`
	Missing   []Event `json:"missing"`
	Extra     []Event `json:"extra"`

	// GeneratedAt is the UTC time the report was assembled.
	GeneratedAt time.Time `json:"generated_at"`
}

// ErrorCounts returns the number of deviations per category, keyed by [Kind].
func (r Report) ErrorCounts() map[Kind]int {
	return map[Kind]int{
		KindIncorrect: len(r.Incorrect),
		KindMissing:   len(r.Missing),
		KindExtra:     len(r.Extra),
	}
}

// TotalErrors returns the total number of deviations across all categories.
func (r Report) TotalErrors() int {
	return len(r.Incorrect) + len(r.Missing) + len(r.Extra)
}
