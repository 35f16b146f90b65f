package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// QuizStatus is the quiz state machine: LOADING -> IN_PROGRESS -> COMPLETE.
type QuizStatus string

const (
	QuizLoading    QuizStatus = "LOADING"
	QuizInProgress QuizStatus = "IN_PROGRESS"
	QuizComplete   QuizStatus = "COMPLETE"
)

// QuizOptionCount is the number of choices per question.
const QuizOptionCount = 4

// QuizQuestion is one multiple-choice question. Word is the correct option.
type QuizQuestion struct {
	Word       string   `json:"-"`
	Definition string   `json:"definition"`
	Options    []string `json:"options"`
}

// QuizAnswer is the binding answer recorded for a question.
type QuizAnswer struct {
	Selected string    `json:"selected"`
	Correct  bool      `json:"correct"`
	At       time.Time `json:"at"`
}

// QuizResult is the terminal summary of a quiz.
type QuizResult struct {
	ID         uuid.UUID     `json:"id"`
	StudentID  *uuid.UUID    `json:"student_id,omitempty"`
	ListID     *uuid.UUID    `json:"list_id,omitempty"`
	QuizType   string        `json:"quiz_type"`
	Difficulty Tier          `json:"difficulty"`
	Score      int           `json:"score"`
	Total      int           `json:"total"`
	Percentage int           `json:"percentage"`
	Duration   time.Duration `json:"duration"`
	Mastered   []string      `json:"mastered,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Percentage returns round(100*correct/total); zero for an empty quiz.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// ResultMessage is the headline shown on the results screen.
func ResultMessage(pct int) string {
	switch {
	case pct >= 100:
		return "Perfect Score!"
	case pct >= 80:
		return "Excellent Work!"
	case pct >= 60:
		return "Good Job!"
	default:
		return "Keep Practicing!"
	}
}

// ScoreLine formats "C/K".
func (r QuizResult) ScoreLine() string { return fmt.Sprintf("%d/%d", r.Score, r.Total) }

// PercentLine formats "P% Correct".
func (r QuizResult) PercentLine() string { return fmt.Sprintf("%d%% Correct", r.Percentage) }

// FormatClock renders a duration as m:ss.
func FormatClock(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
