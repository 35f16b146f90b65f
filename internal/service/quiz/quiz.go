package quiz

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// Quiz is one in-memory quiz. Fields are guarded by mu and only changed by
// the Service.
type Quiz struct {
	mu sync.Mutex

	id        uuid.UUID
	quizType  string
	tier      domain.Tier
	grade     domain.GradeLabel
	listID    *uuid.UUID
	words     []string
	size      int
	learner   *domain.Learner
	status    domain.QuizStatus
	questions []domain.QuizQuestion
	answers   []*domain.QuizAnswer
	index     int
	score     int

	showResult bool
	advanceAt  *time.Time

	startedAt   time.Time
	completedAt *time.Time
	result      *domain.QuizResult
	finalized   bool
	touchedAt   time.Time
}

func (q *Quiz) reset(questions []domain.QuizQuestion, now time.Time) {
	q.questions = questions
	q.answers = make([]*domain.QuizAnswer, len(questions))
	q.index = 0
	q.score = 0
	q.showResult = false
	q.advanceAt = nil
	q.startedAt = now
	q.completedAt = nil
	q.result = nil
	q.finalized = false
	q.status = domain.QuizInProgress
}

// advance moves past answered questions whose result delay has run out.
// It reports whether the quiz just became complete.
func (q *Quiz) advance(now time.Time) bool {
	if q.status != domain.QuizInProgress || !q.showResult || q.advanceAt == nil || now.Before(*q.advanceAt) {
		return false
	}
	at := *q.advanceAt
	q.showResult = false
	q.advanceAt = nil
	if q.index+1 < len(q.questions) {
		q.index++
		return false
	}
	q.status = domain.QuizComplete
	q.completedAt = &at
	return true
}

// elapsed is whole seconds since start, frozen at completion.
func (q *Quiz) elapsed(now time.Time) time.Duration {
	if q.startedAt.IsZero() {
		return 0
	}
	end := now
	if q.completedAt != nil {
		end = *q.completedAt
	}
	if end.Before(q.startedAt) {
		return 0
	}
	return end.Sub(q.startedAt).Truncate(time.Second)
}

// mastered lists the words answered correctly, in question order.
func (q *Quiz) mastered() []string {
	var out []string
	for i, a := range q.answers {
		if a != nil && a.Correct {
			out = append(out, q.questions[i].Word)
		}
	}
	return out
}
