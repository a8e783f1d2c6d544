// Package arabic canonicalizes Arabic text into a comparable form.
//
// Quranic script carries diacritical marks (harakat), recitation annotation
// marks, elongation characters, and verse-number markers that a speech
// transcription engine never emits. Normalize strips all of these and folds
// common letter variants so that a spoken transcript and the canonical
// reference text can be compared word by word.
//
// Normalization is lossy by design: two distinct raw tokens may normalize to
// the same string (e.g., the four Alif forms collapse to one). That is the
// intended unit of "same word" equivalence, not a defect.
package arabic

import (
	"strings"
	"unicode"
)

// Code points removed entirely during normalization.
const (
	tatweel = 'ـ' // elongation character, purely typographic

	// Harakat and Quranic annotation ranges.
	harakatLo = 'ً' // fathatan
	harakatHi = 'ْ' // sukun
	superscriptAlef = 'ٰ'
	quranicAnnotLo  = 'ۖ' // small high ligature sad
	quranicAnnotHi  = 'ۭ' // small low meem
)

// Letter variants folded to a canonical form.
var letterFolds = map[rune]rune{
	'آ': 'ا', // Alif with madda      → Alif
	'أ': 'ا', // Alif with hamza above → Alif
	'إ': 'ا', // Alif with hamza below → Alif
	'ٱ': 'ا', // Alif wasla            → Alif
	'ى': 'ي', // Alif maqsura          → Ya
	'ة': 'ه', // Ta marbuta            → Ha
}

// Normalize canonicalizes Arabic text for word-level comparison. It is a
// total function and idempotent: Normalize(Normalize(s)) == Normalize(s).
//
// Transformations are applied in order — later steps assume earlier cleanup:
//
//  1. Strip harakat, the superscript Alef, and Quranic annotation marks.
//  2. Strip the tatweel elongation character.
//  3. Fold letter variants (Alif forms, Alif maqsura, Ta marbuta).
//  4. Remove parenthesized verse markers and bare digit runs.
//  5. Collapse whitespace runs to a single space and trim.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inParens := false
	for _, r := range text {
		switch {
		case r == '(':
			inParens = true
		case r == ')':
			inParens = false
		case inParens:
			// Verse markers like (٧) or (12) are dropped wholesale.
		case isStripped(r):
		case unicode.IsDigit(r):
		default:
			if folded, ok := letterFolds[r]; ok {
				r = folded
			}
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize normalizes text and splits it into word tokens. Empty tokens are
// never produced; the result is nil when the text normalizes to nothing.
func Tokenize(text string) []string {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

// isStripped reports whether r is removed entirely during normalization.
func isStripped(r rune) bool {
	switch {
	case r == tatweel:
		return true
	case r >= harakatLo && r <= harakatHi:
		return true
	case r == superscriptAlef:
		return true
	case r >= quranicAnnotLo && r <= quranicAnnotHi:
		return true
	}
	return false
}
