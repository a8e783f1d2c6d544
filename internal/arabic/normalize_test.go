package arabic_test

import (
	"testing"

	"github.com/mkhalidi/rattil/internal/arabic"
)

func TestNormalize_StripsDiacritics(t *testing.T) {
	t.Parallel()

	// Fully vocalized basmala normalizes to its bare-letter form.
	got := arabic.Normalize("بِسْمِ اللَّهِ الرَّحْمَٰنِ الرَّحِيمِ")
	want := "بسم الله الرحمن الرحيم"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalize_NoDiacriticSurvives(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"بِسْمِ اللَّهِ الرَّحْمَٰنِ الرَّحِيمِ",
		"قُلْ هُوَ اللَّهُ أَحَدٌ ۝",
		"الٓمٓ ۚ ذَٰلِكَ الْكِتَابُ",
	}
	for _, in := range inputs {
		out := arabic.Normalize(in)
		for _, r := range out {
			if (r >= 'ً' && r <= 'ْ') || r == 'ٰ' || r == 'ـ' {
				t.Errorf("Normalize(%q) left diacritic %U in output %q", in, r, out)
			}
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"بِسْمِ اللَّهِ",
		"الرَّحْمَٰنِ الرَّحِيمِ (١)",
		"إِيَّاكَ نَعْبُدُ وَإِيَّاكَ نَسْتَعِينُ",
		"  plain   latin  text  123 ",
	}
	for _, in := range inputs {
		once := arabic.Normalize(in)
		twice := arabic.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestNormalize_FoldsLetterVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"alif madda", "آمن", "امن"},
		{"alif hamza above", "أحد", "احد"},
		{"alif hamza below", "إياك", "اياك"},
		{"alif wasla", "ٱلله", "الله"},
		{"alif maqsura", "هدى", "هدي"},
		{"ta marbuta", "رحمة", "رحمه"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := arabic.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_RemovesVerseMarkersAndDigits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"الحمد لله رب العالمين (٢)", "الحمد لله رب العالمين"},
		{"قل هو الله احد (1)", "قل هو الله احد"},
		{"word 123 word", "word word"},
		{"٧٨٩", ""},
	}
	for _, tt := range tests {
		if got := arabic.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	t.Parallel()

	got := arabic.Normalize("  بسم\t الله \n الرحمن  ")
	want := "بسم الله الرحمن"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int
	}{
		{"basmala", "بِسْمِ اللَّهِ الرَّحْمَٰنِ الرَّحِيمِ", 4},
		{"empty", "", 0},
		{"whitespace only", "   \t\n", 0},
		{"digits only", "(٣) 12", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := arabic.Tokenize(tt.in)
			if len(got) != tt.want {
				t.Errorf("Tokenize(%q) = %v (%d tokens), want %d", tt.in, got, len(got), tt.want)
			}
		})
	}
}
