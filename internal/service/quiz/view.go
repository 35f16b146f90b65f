package quiz

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// View is a read-only rendering of a quiz.
type View struct {
	ID         uuid.UUID         `json:"id"`
	Status     domain.QuizStatus `json:"status"`
	Type       string            `json:"type"`
	Tier       domain.Tier       `json:"tier"`
	Index      int               `json:"index"`
	Total      int               `json:"total"`
	Score      int               `json:"score"`
	Elapsed    int               `json:"elapsed_seconds"`
	Clock      string            `json:"clock"`
	Question   *QuestionView     `json:"question,omitempty"`
	ShowResult bool              `json:"show_result"`
	AdvanceAt  *time.Time        `json:"advance_at,omitempty"`
	Result     *ResultView       `json:"result,omitempty"`
}

// QuestionView is the current question. The answer is only revealed once
// the question has been answered.
type QuestionView struct {
	Index         int                `json:"index"`
	Definition    string             `json:"definition"`
	Options       []string           `json:"options"`
	Answer        *domain.QuizAnswer `json:"answer,omitempty"`
	CorrectAnswer string             `json:"correct_answer,omitempty"`
}

// ResultView is the results screen.
type ResultView struct {
	domain.QuizResult
	Message     string `json:"message"`
	ScoreLine   string `json:"score_line"`
	PercentLine string `json:"percent_line"`
	Clock       string `json:"clock"`
}

// AnswerResult is the outcome of one click.
type AnswerResult struct {
	QuestionIndex int    `json:"question_index"`
	Selected      string `json:"selected"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Duplicate     bool   `json:"duplicate"`
	Quiz          View   `json:"quiz"`
}

func (q *Quiz) view(now time.Time) View {
	elapsed := q.elapsed(now)
	v := View{
		ID:         q.id,
		Status:     q.status,
		Type:       q.quizType,
		Tier:       q.tier,
		Index:      q.index,
		Total:      len(q.questions),
		Score:      q.score,
		Elapsed:    int(elapsed / time.Second),
		Clock:      domain.FormatClock(elapsed),
		ShowResult: q.showResult,
		AdvanceAt:  q.advanceAt,
	}

	if q.status == domain.QuizInProgress && q.index < len(q.questions) {
		qq := q.questions[q.index]
		qv := &QuestionView{Index: q.index, Definition: qq.Definition, Options: qq.Options}
		if a := q.answers[q.index]; a != nil {
			qv.Answer = a
			qv.CorrectAnswer = qq.Word
		}
		v.Question = qv
	}

	if q.result != nil {
		v.Result = &ResultView{
			QuizResult:  *q.result,
			Message:     domain.ResultMessage(q.result.Percentage),
			ScoreLine:   q.result.ScoreLine(),
			PercentLine: q.result.PercentLine(),
			Clock:       domain.FormatClock(q.result.Duration),
		}
	}
	return v
}

func (q *Quiz) answerResult(index int, a domain.QuizAnswer, duplicate bool, now time.Time) *AnswerResult {
	return &AnswerResult{
		QuestionIndex: index,
		Selected:      a.Selected,
		Correct:       a.Correct,
		CorrectAnswer: q.questions[index].Word,
		Duplicate:     duplicate,
		Quiz:          q.view(now),
	}
}
