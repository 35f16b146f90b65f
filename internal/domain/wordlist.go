package domain

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GradeBand is the audience of a teacher word list.
type GradeBand string

const (
	GradeBandK2 GradeBand = "K-2"
	GradeBand35 GradeBand = "3-5"
	GradeBand68 GradeBand = "6-8"
)

func (b GradeBand) IsValid() bool {
	switch b {
	case GradeBandK2, GradeBand35, GradeBand68:
		return true
	}
	return false
}

// WordList is a teacher-owned ordered list of words.
type WordList struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	GradeBand    GradeBand  `json:"grade_band"`
	TeacherID    *uuid.UUID `json:"teacher_id,omitempty"`
	TeacherName  string     `json:"teacher_name"`
	TeacherEmail string     `json:"teacher_email"`
	ShareCode    string     `json:"share_code"`
	Words        []string   `json:"words"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ListMembership records a student joining a list by share code.
type ListMembership struct {
	ListID      uuid.UUID `json:"list_id"`
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	ParentEmail string    `json:"parent_email,omitempty"`
	JoinedAt    time.Time `json:"joined_at"`
}

const (
	ShareCodeLength   = 8
	shareCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewShareCode draws ShareCodeLength characters from A-Z0-9 using r
// (crypto/rand.Reader when nil).
func NewShareCode(r io.Reader) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	max := big.NewInt(int64(len(shareCodeAlphabet)))
	var b strings.Builder
	b.Grow(ShareCodeLength)
	for range ShareCodeLength {
		n, err := rand.Int(r, max)
		if err != nil {
			return "", fmt.Errorf("generate share code: %w", err)
		}
		b.WriteByte(shareCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeShareCode upper-cases and trims a code typed by a student.
func NormalizeShareCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidShareCode reports whether code has the right length and alphabet.
func ValidShareCode(code string) bool {
	if len(code) != ShareCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(shareCodeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

// CleanWords normalizes words and drops empties and duplicates, keeping order.
func CleanWords(words []string) []string {
	return MergeMastered(nil, words)
}
