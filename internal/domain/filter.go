package domain

import (
	"time"

	"github.com/google/uuid"
)

// FlagFilter narrows moderator flag listings.
type FlagFilter struct {
	HiddenOnly bool
	Limit      int
	Offset     int
}

// WordListFilter narrows word list listings. Empty fields match everything.
type WordListFilter struct {
	TeacherEmail string
	TeacherID    *uuid.UUID
	StudentID    *uuid.UUID
	GradeBand    GradeBand
	Limit        int
	Offset       int
}

// ProgressFilter narrows progress listings.
type ProgressFilter struct {
	StudentID *uuid.UUID
	ListID    *uuid.UUID
	Since     *time.Time
}
