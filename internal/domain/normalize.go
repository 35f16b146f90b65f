package domain

import (
	"strings"
	"unicode/utf8"
)

// NormalizeText is the single key function for words: it trims, lowercases
// and collapses inner whitespace runs to one space. Diacritics, hyphens and
// apostrophes are kept, so "Café" and "café" share a key but "cafe" does not.
func NormalizeText(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	return strings.Join(fields, " ")
}

// MaxDefinitionRunes bounds every tier text.
const MaxDefinitionRunes = 400

// ClampDefinition trims s and cuts it to MaxDefinitionRunes, backing off to
// the last space so words are not split.
func ClampDefinition(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxDefinitionRunes {
		return s
	}
	runes := []rune(s)[:MaxDefinitionRunes]
	cut := string(runes)
	if i := strings.LastIndexByte(cut, ' '); i > MaxDefinitionRunes/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "…"
}
