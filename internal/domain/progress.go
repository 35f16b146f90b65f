package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuizScoreSnapshot is one append-only entry of a student's quiz history.
type QuizScoreSnapshot struct {
	Score int       `json:"score"`
	Total int       `json:"total"`
	Date  time.Time `json:"date"`
}

// StudentProgress is the per (student, word list) record. WordsMastered only
// grows; QuizScores is append-only.
type StudentProgress struct {
	ID            uuid.UUID           `json:"id"`
	StudentID     uuid.UUID           `json:"student_id"`
	StudentName   string              `json:"student_name"`
	ListID        uuid.UUID           `json:"list_id"`
	WordsMastered []string            `json:"words_mastered"`
	QuizScores    []QuizScoreSnapshot `json:"quiz_scores"`
	LastPracticed *time.Time          `json:"last_practiced,omitempty"`
}

// MergeMastered returns the set union of existing and added, keeping the
// order of first appearance. Merging the same set twice is a no-op.
func MergeMastered(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))
	for _, list := range [][]string{existing, added} {
		for _, w := range list {
			w = NormalizeText(w)
			if w == "" {
				continue
			}
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

// SearchEvent is one recorded lookup by a learner.
type SearchEvent struct {
	ID         uuid.UUID     `json:"id"`
	StudentID  uuid.UUID     `json:"student_id"`
	Word       string        `json:"word"`
	Elapsed    time.Duration `json:"elapsed"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// QuizAttempt is one recorded quiz by a learner.
type QuizAttempt struct {
	ID         uuid.UUID `json:"id"`
	StudentID  uuid.UUID `json:"student_id"`
	QuizType   string    `json:"quiz_type"`
	Total      int       `json:"total"`
	Correct    int       `json:"correct"`
	Difficulty Tier      `json:"difficulty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Learner is the identity attached to a session when a student is logged in.
type Learner struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// QuizOutcome is what a finished list quiz contributes to progress.
type QuizOutcome struct {
	StudentID   uuid.UUID
	StudentName string
	ListID      uuid.UUID
	Mastered    []string
	Snapshot    QuizScoreSnapshot
}

// ActivitySummary aggregates one learner's recorded activity.
type ActivitySummary struct {
	Searches       int        `json:"searches"`
	Quizzes        int        `json:"quizzes"`
	Questions      int        `json:"questions"`
	CorrectAnswers int        `json:"correct_answers"`
	LastActive     *time.Time `json:"last_active,omitempty"`
}

// Accuracy is the share of correct quiz answers as a whole percentage.
func (s ActivitySummary) Accuracy() int {
	return Percentage(s.CorrectAnswers, s.Questions)
}

// WordCount is a searched word with how often it was looked up.
type WordCount struct {
	Word     string    `json:"word"`
	Count    int       `json:"count"`
	LastSeen time.Time `json:"last_seen"`
}

// StudentDigest is one child's section of a parent digest.
type StudentDigest struct {
	Name          string
	Searches      int
	Quizzes       int
	Accuracy      int
	WordsMastered int
	RecentWords   []string
}

// ParentDigest is the periodic progress summary mailed to one parent.
type ParentDigest struct {
	To       string
	Since    time.Time
	Students []StudentDigest
}
