package extract

import (
	"strings"

	"golang.org/x/text/width"
)

// Normalize folds an utterance into the canonical matching form: full-width
// characters narrowed to their half-width equivalents (ＷＯ１ -> WO1,
// full-width digits and punctuation included) and ASCII letters upper-cased
// for code matching, with keyword comparison done case-insensitively.
//
// CJK text passes through width.Narrow unchanged, so byte offsets into the
// normalized text remain valid spans for claim tracking.
func Normalize(text string) string {
	narrowed := width.Narrow.String(text)
	return strings.TrimSpace(narrowed)
}

// foldASCII upper-cases ASCII letters only, leaving multi-byte runes alone.
// Coded patterns (warehouse codes, material IDs) are declared upper-case.
func foldASCII(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// foldLower lower-cases ASCII letters only, for keyword comparison.
func foldLower(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
