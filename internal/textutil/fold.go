// Package textutil holds the text normalization shared by lookups and
// pattern matching over French speech transcripts.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// Fold lower-cases s, strips diacritics and normalizes apostrophes so that
// "À matin", "a matin" and "à Matin" compare equal.
func Fold(s string) string {
	// transform chains carry state; build one per call.
	chain := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(chain, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(apostrophes.Replace(out))
}

// CollapseSpaces trims s and reduces internal whitespace runs to one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TitleCase upper-cases the first letter of each word (space or hyphen
// separated) and lower-cases the rest.
func TitleCase(s string) string {
	s = CollapseSpaces(s)
	out := make([]rune, 0, len(s))
	upperNext := true
	for _, r := range s {
		switch {
		case r == ' ' || r == '-':
			out = append(out, r)
			upperNext = true
		case upperNext:
			out = append(out, unicode.ToUpper(r))
			upperNext = false
		default:
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}

// Lower lower-cases s and normalizes apostrophes, keeping diacritics.
func Lower(s string) string {
	return strings.ToLower(apostrophes.Replace(s))
}
