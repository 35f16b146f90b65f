package provider

import (
	"strings"
	"time"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// DefinitionResult is the structured result from a definition source
// (generator or dictionary API). A nil result means the source has no data
// for the word.
type DefinitionResult struct {
	Word         string
	PartOfSpeech string
	Phonetic     string
	Simple       string
	Medium       string
	Advanced     string
	Example      string
	Visual       *domain.Visual
}

// IsEmpty reports whether the result carries no usable definition text.
func (r *DefinitionResult) IsEmpty() bool {
	return r == nil || (strings.TrimSpace(r.Simple) == "" &&
		strings.TrimSpace(r.Medium) == "" &&
		strings.TrimSpace(r.Advanced) == "")
}

// ToEntry converts the result to a clamped WordEntry keyed by word.
// Missing tiers borrow from the nearest filled one.
func (r *DefinitionResult) ToEntry(word string, source domain.Source, now time.Time) domain.WordEntry {
	simple, medium, advanced := fillTiers(r.Simple, r.Medium, r.Advanced)

	set := domain.DefinitionSet{
		PartOfSpeech: r.PartOfSpeech,
		Simple:       simple,
		Medium:       medium,
		Advanced:     advanced,
		Example:      strings.TrimSpace(r.Example),
		Visual:       r.Visual,
	}.Clamped()

	return domain.WordEntry{
		Word:          word,
		Pronunciation: r.Phonetic,
		Category:      domain.CategoryRegular,
		Definitions:   []domain.DefinitionSet{set},
		Source:        source,
		CreatedAt:     now,
	}
}

func fillTiers(simple, medium, advanced string) (string, string, string) {
	simple, medium, advanced = strings.TrimSpace(simple), strings.TrimSpace(medium), strings.TrimSpace(advanced)
	if medium == "" {
		medium = firstNonEmpty(simple, advanced)
	}
	if simple == "" {
		simple = medium
	}
	if advanced == "" {
		advanced = medium
	}
	return simple, medium, advanced
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ImageHit is one stock illustration found by an image search.
type ImageHit struct {
	URL         string `json:"url"`
	Thumbnail   string `json:"thumbnail"`
	Attribution string `json:"attribution"`
}
