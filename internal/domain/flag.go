package domain

import (
	"time"

	"github.com/google/uuid"
)

// FlagState is a moderator annotation on a word. It suppresses pictures and
// speech for the word but never removes its definition.
type FlagState struct {
	Word           string    `json:"word"`
	Reason         string    `json:"reason"`
	HideFromSearch bool      `json:"hide_from_search"`
	FlaggedAt      time.Time `json:"flagged_at"`
}

// WordImage is one cached illustration panel for a word.
type WordImage struct {
	Word      string    `json:"word"`
	Panel     int       `json:"panel"`
	URL       string    `json:"url"`
	Prompt    string    `json:"prompt,omitempty"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// PictureFeedback is a learner's reaction to an illustration. A confused
// reaction invalidates the cached pictures for the word.
type PictureFeedback struct {
	ID        uuid.UUID  `json:"id"`
	Word      string     `json:"word"`
	Panel     int        `json:"panel"`
	ImageURL  string     `json:"image_url"`
	Helpful   bool       `json:"helpful"`
	StudentID *uuid.UUID `json:"student_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ImageFeedbackSummary counts picture ratings for one word.
type ImageFeedbackSummary struct {
	Word      string    `json:"word"`
	Helpful   int       `json:"helpful"`
	Confused  int       `json:"confused"`
	LastRated time.Time `json:"last_rated"`
}

// AuditAction names a moderation change.
type AuditAction string

const (
	AuditFlag         AuditAction = "FLAG"
	AuditUnflag       AuditAction = "UNFLAG"
	AuditReplaceImage AuditAction = "REPLACE_IMAGE"
)

// AuditRecord is one append-only entry in the moderation history of a word.
type AuditRecord struct {
	ID        uuid.UUID      `json:"id"`
	AdminID   *uuid.UUID     `json:"admin_id,omitempty"`
	Word      string         `json:"word"`
	Action    AuditAction    `json:"action"`
	Changes   map[string]any `json:"changes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
