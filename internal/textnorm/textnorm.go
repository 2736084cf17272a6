// Package textnorm normalises free text coming from provider spreadsheets so
// entity names and header labels compare equal regardless of case, accents,
// compatibility characters and stray whitespace.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var spaceReplacer = strings.NewReplacer(
	"\u00a0", " ",
	"\u202f", " ",
	"\u2007", " ",
	"\t", " ",
)

// Clean trims the value, turns non-breaking spaces into spaces, applies NFKC
// and collapses runs of whitespace. Case and accents are preserved.
func Clean(value string) string {
	value = spaceReplacer.Replace(value)
	value = norm.NFKC.String(value)
	return strings.Join(strings.Fields(value), " ")
}

// Fold returns the comparison key of value: Clean, then accents stripped and
// Unicode case folding applied.
func Fold(value string) string {
	cleaned := Clean(value)
	if cleaned == "" {
		return ""
	}
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, cleaned)
	if err != nil {
		stripped = cleaned
	}
	return cases.Fold().String(stripped)
}

// Equal reports whether a and b share the same Fold key.
func Equal(a, b string) bool {
	return Fold(a) == Fold(b)
}
