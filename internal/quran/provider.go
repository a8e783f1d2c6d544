// Package quran defines the reference-text provider interface and types.
//
// A provider supplies the canonical text the user is expected to recite. The
// alignment engine never fetches text itself; a surah is fetched once per
// session selection and its word sequence is immutable for the session
// lifetime.
package quran

import "context"

// Ayah is one verse of a surah.
type Ayah struct {
	// Number is the verse number within the surah, starting at 1.
	Number int `json:"numberInSurah"`

	// Text is the verse text in Quranic script.
	Text string `json:"text"`
}

// Surah is one chapter of the Quran with its full verse text.
type Surah struct {
	// Number is the chapter number, 1 through 114.
	Number int `json:"number"`

	// Name is the Arabic chapter name.
	Name string `json:"name"`

	// EnglishName is the transliterated chapter name.
	EnglishName string `json:"englishName"`

	// Ayahs holds the verses in order.
	Ayahs []Ayah `json:"ayahs"`
}

// Text returns the full surah text: all verses joined by single spaces.
func (s Surah) Text() string {
	var text string
	for i, a := range s.Ayahs {
		if i > 0 {
			text += " "
		}
		text += a.Text
	}
	return text
}

// Provider supplies canonical surah text. Implementations must be safe for
// concurrent use and must respect context cancellation.
type Provider interface {
	// Surah fetches the chapter with the given number (1–114). The error is
	// non-nil for unknown chapter numbers and upstream failures.
	Surah(ctx context.Context, number int) (Surah, error)
}
