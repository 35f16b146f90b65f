package dictionary

import "github.com/heartmarshall/kiddict-backend/internal/domain"

// ResolveInput is one lookup request.
type ResolveInput struct {
	Term  string
	Grade domain.GradeLabel
}

// DisplayWord is a resolved entry plus the presentation decisions that
// depend on moderation state and grade.
type DisplayWord struct {
	Entry       domain.WordEntry  `json:"entry"`
	Flagged     bool              `json:"flagged"`
	Flag        *domain.FlagState `json:"flag,omitempty"`
	InitialTier domain.Tier       `json:"initial_tier"`
	ShowVisual  bool              `json:"show_visual"`
	ShowSpeech  bool              `json:"show_speech"`
	Source      domain.Source     `json:"source"`
}

func newDisplayWord(entry domain.WordEntry, flag *domain.FlagState, grade domain.GradeLabel) *DisplayWord {
	flagged := flag != nil
	return &DisplayWord{
		Entry:       entry,
		Flagged:     flagged,
		Flag:        flag,
		InitialTier: domain.TierForGrade(grade),
		ShowVisual:  !flagged && entry.HasVisual(),
		ShowSpeech:  !flagged,
		Source:      entry.Source,
	}
}
