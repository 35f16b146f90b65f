package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// ErrNoCurrentWord is returned by tier changes before any word is shown.
var ErrNoCurrentWord = fmt.Errorf("no word selected: %w", domain.ErrValidation)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = fmt.Errorf("session %w", domain.ErrNotFound)

// Presentation is the current word rendered at the active tier.
type Presentation struct {
	Word          string          `json:"word"`
	Category      domain.Category `json:"category"`
	Pronunciation string          `json:"pronunciation,omitempty"`
	PartOfSpeech  string          `json:"part_of_speech,omitempty"`
	Tier          domain.Tier     `json:"tier"`
	Text          string          `json:"text"`
	Example       string          `json:"example,omitempty"`
	CanSimplify   bool            `json:"can_simplify"`
	CanExpand     bool            `json:"can_expand"`
	Flagged       bool            `json:"flagged"`
	ShowVisual    bool            `json:"show_visual"`
	ShowSpeech    bool            `json:"show_speech"`
	Source        domain.Source   `json:"source"`
}

// NotFound is the state left by the last failed lookup.
type NotFound struct {
	Term       string `json:"term"`
	Suggestion string `json:"suggestion,omitempty"`
	Transient  bool   `json:"transient"`
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	ID          uuid.UUID         `json:"id"`
	Grade       domain.GradeLabel `json:"grade"`
	Current     *Presentation     `json:"current,omitempty"`
	NotFound    *NotFound         `json:"not_found,omitempty"`
	History     []string          `json:"history"`
	Favorites   []string          `json:"favorites"`
	PictureMode bool              `json:"picture_mode"`
	Student     *domain.Learner   `json:"student,omitempty"`
	LastSeen    time.Time         `json:"last_seen"`
}
