package domain

import "time"

// Category marks how a word is sourced. Non-regular words are answered from
// the built-in lexicon and never sent to a generator.
type Category string

const (
	CategoryRegular  Category = "regular"
	CategorySound    Category = "sound"
	CategoryInvented Category = "invented"
	CategoryForeign  Category = "foreign"
)

func (c Category) String() string { return string(c) }

// IsSpecial reports whether the category bypasses definition generation.
func (c Category) IsSpecial() bool {
	switch c {
	case CategorySound, CategoryInvented, CategoryForeign:
		return true
	}
	return false
}

// Source identifies where a WordEntry came from.
type Source string

const (
	SourceLexicon  Source = "lexicon"
	SourceCache    Source = "cache"
	SourceLLM      Source = "llm"
	SourceFreeDict Source = "freedict"
)

// VisualKind selects between one picture and a comic-strip of panels.
type VisualKind string

const (
	VisualSingle     VisualKind = "single"
	VisualMultiPanel VisualKind = "multi_panel"
	VisualNone       VisualKind = "none"
)

// Visual is optional illustration metadata for a definition.
type Visual struct {
	Kind   VisualKind `json:"kind"`
	Color  bool       `json:"color"`
	Panels []string   `json:"panels,omitempty"`
}

// PanelCount returns how many images the visual needs.
func (v Visual) PanelCount() int {
	switch v.Kind {
	case VisualNone:
		return 0
	case VisualMultiPanel:
		if len(v.Panels) == 0 {
			return 1
		}
		return len(v.Panels)
	default:
		return 1
	}
}

// DefinitionSet holds the three complexity tiers for one part of speech.
type DefinitionSet struct {
	PartOfSpeech string  `json:"part_of_speech"`
	Simple       string  `json:"simple"`
	Medium       string  `json:"medium"`
	Advanced     string  `json:"advanced"`
	Example      string  `json:"example,omitempty"`
	Visual       *Visual `json:"visual,omitempty"`
}

// Text returns the definition for the given tier.
func (d DefinitionSet) Text(t Tier) string {
	switch t {
	case TierMedium:
		return d.Medium
	case TierAdvanced:
		return d.Advanced
	default:
		return d.Simple
	}
}

// Clamped returns a copy with every tier bounded by MaxDefinitionRunes.
func (d DefinitionSet) Clamped() DefinitionSet {
	d.Simple = ClampDefinition(d.Simple)
	d.Medium = ClampDefinition(d.Medium)
	d.Advanced = ClampDefinition(d.Advanced)
	return d
}

// IsEmpty reports whether no tier carries text.
func (d DefinitionSet) IsEmpty() bool {
	return d.Simple == "" && d.Medium == "" && d.Advanced == ""
}

// WordEntry is an immutable dictionary entry, cached by its normalized word.
type WordEntry struct {
	Word          string          `json:"word"`
	Pronunciation string          `json:"pronunciation,omitempty"`
	Category      Category        `json:"category"`
	Definitions   []DefinitionSet `json:"definitions"`
	ImageURL      string          `json:"image_url,omitempty"`
	Source        Source          `json:"source"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Primary returns the first definition set, or the zero value.
func (e WordEntry) Primary() DefinitionSet {
	if len(e.Definitions) == 0 {
		return DefinitionSet{}
	}
	return e.Definitions[0]
}

// HasVisual reports whether the primary definition wants an illustration.
func (e WordEntry) HasVisual() bool {
	v := e.Primary().Visual
	return v == nil || v.Kind != VisualNone
}

// VisualOrDefault returns the primary visual, defaulting to a single color picture.
func (e WordEntry) VisualOrDefault() Visual {
	if v := e.Primary().Visual; v != nil {
		return *v
	}
	return Visual{Kind: VisualSingle, Color: true}
}
