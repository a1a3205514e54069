// Package arabic provides deterministic text normalization and tokenization
// for Arabic legal text. All functions are pure: the same input always yields
// the same output, which lexical scoring and the tests rely on.
package arabic

import (
	"strings"
	"unicode"
)

// Diacritic code points stripped during normalization (tashkeel plus the
// superscript Alef). Combining marks in this range carry no lexical meaning.
const (
	diacriticLow    = 'ً' // fathatan
	diacriticHigh   = 'ٟ' // wavy hamza below
	superscriptAlef = 'ٰ'
	alefHamzaAbove  = 'أ'
	alefHamzaBelow  = 'إ'
	alefMadda       = 'آ'
	bareAlef        = 'ا'
	alefMaksura     = 'ى'
	ya              = 'ي'
	taMarbuta       = 'ة'
	ha              = 'ه'
)

// tokenDelims is the fixed set of non-whitespace delimiters used for token
// splitting, covering both Arabic and Latin punctuation.
const tokenDelims = "،.؛:؟!-()[]«»\"'/\\"

// isDiacritic reports whether r is a stripped combining mark.
func isDiacritic(r rune) bool {
	return (r >= diacriticLow && r <= diacriticHigh) || r == superscriptAlef
}

// FoldAlef collapses the three Alef-hamza forms to the bare Alef, leaving
// everything else untouched. Unlike Normalize it is length-preserving in
// bytes (all four letters encode to two bytes in UTF-8), so byte offsets
// found in the folded text are valid offsets into the original. The decision
// splitter depends on this when locating section markers.
func FoldAlef(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case alefHamzaAbove, alefHamzaBelow, alefMadda:
			b.WriteRune(bareAlef)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize strips Arabic diacritics and unifies letter variants that are
// used interchangeably in legal orthography: Alef-hamza forms collapse to
// bare Alef, Alef-maksura unifies with Ya, and Ta-marbuta with Ha.
// Normalize is idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isDiacritic(r) {
			continue
		}
		switch r {
		case alefHamzaAbove, alefHamzaBelow, alefMadda:
			b.WriteRune(bareAlef)
		case alefMaksura:
			b.WriteRune(ya)
		case taMarbuta:
			b.WriteRune(ha)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokenize normalizes text and splits it into tokens on whitespace and the
// fixed punctuation set. Tokens of length <= 1 rune (diacritic remnants,
// stray punctuation) are dropped.
func Tokenize(text string) []string {
	normalized := Normalize(text)
	fields := strings.FieldsFunc(normalized, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(tokenDelims, r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) > 1 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
