// Package lexicon is the built-in word table: the regular practice words
// used by the global quiz pool and the special-category words (sound,
// invented, foreign) that are never sent to a definition generator.
package lexicon

import (
	"slices"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// Lexicon is an immutable in-memory word table. Safe for concurrent use.
type Lexicon struct {
	entries     map[string]domain.WordEntry
	suggestions map[string]string
	pool        []string
}

// Default returns the lexicon with the built-in words.
func Default() *Lexicon {
	return New(append(slices.Clone(regularEntries), specialEntries...), spellSuggestions)
}

// New builds a lexicon from entries. Words are normalized; entries without a
// category are regular.
func New(entries []domain.WordEntry, suggestions map[string]string) *Lexicon {
	l := &Lexicon{
		entries:     make(map[string]domain.WordEntry, len(entries)),
		suggestions: make(map[string]string, len(suggestions)),
	}
	for _, e := range entries {
		e.Word = domain.NormalizeText(e.Word)
		if e.Category == "" {
			e.Category = domain.CategoryRegular
		}
		e.Source = domain.SourceLexicon
		l.entries[e.Word] = e
		if e.Category == domain.CategoryRegular {
			l.pool = append(l.pool, e.Word)
		}
	}
	slices.Sort(l.pool)
	for typo, word := range suggestions {
		l.suggestions[domain.NormalizeText(typo)] = domain.NormalizeText(word)
	}
	return l
}

// Lookup returns the entry for an exact normalized match.
func (l *Lexicon) Lookup(word string) (domain.WordEntry, bool) {
	e, ok := l.entries[domain.NormalizeText(word)]
	return e, ok
}

// LookupSpecial returns the entry only for sound, invented and foreign words.
func (l *Lexicon) LookupSpecial(word string) (domain.WordEntry, bool) {
	e, ok := l.Lookup(word)
	if !ok || !e.Category.IsSpecial() {
		return domain.WordEntry{}, false
	}
	return e, true
}

// Words returns the sorted regular-word pool for the global quiz.
func (l *Lexicon) Words() []string {
	return slices.Clone(l.pool)
}

// Suggest returns a spelling suggestion for a misspelled word.
func (l *Lexicon) Suggest(word string) (string, bool) {
	s, ok := l.suggestions[domain.NormalizeText(word)]
	return s, ok
}

// Examples lists the special-category words grouped by category, for the
// "try one of these" panel.
func (l *Lexicon) Examples() map[domain.Category][]string {
	out := make(map[domain.Category][]string)
	for w, e := range l.entries {
		if e.Category.IsSpecial() {
			out[e.Category] = append(out[e.Category], w)
		}
	}
	for c := range out {
		slices.Sort(out[c])
	}
	return out
}
