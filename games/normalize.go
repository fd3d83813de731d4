/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package games

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds free-text answers into a comparable form: lower-cased,
// accents stripped, punctuation removed and surrounding whitespace trimmed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}

	// transform.Chain keeps state, so each call needs its own.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	folded = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, folded)

	return strings.TrimSpace(folded)
}

// Matches reports whether guess counts as the canonical answer. Extra or
// missing words are tolerated: either normalized string may contain the other.
func Matches(canonical, guess string) bool {
	c := Normalize(canonical)
	g := Normalize(guess)

	if c == "" || g == "" {
		return false
	}

	return c == g || strings.Contains(g, c) || strings.Contains(c, g)
}
