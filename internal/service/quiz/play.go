package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// ErrQuizNotFound is returned for unknown or expired quiz IDs.
var ErrQuizNotFound = fmt.Errorf("quiz %w", domain.ErrNotFound)

// ErrQuizNotActive is returned when answering a quiz that is not in progress.
var ErrQuizNotActive = fmt.Errorf("quiz is not in progress: %w", domain.ErrConflict)

// Start builds a new quiz. The quiz is visible as LOADING while questions
// are built and becomes IN_PROGRESS once they are ready.
func (s *Service) Start(ctx context.Context, in StartInput) (*View, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	size := in.Size
	if size == 0 {
		size = s.cfg.QuestionCount
	}

	now := s.now()
	q := &Quiz{
		id:        uuid.New(),
		quizType:  in.quizType(),
		tier:      in.tier(),
		grade:     in.Grade,
		listID:    in.ListID,
		words:     slices.Clone(in.Words),
		size:      size,
		learner:   in.Learner,
		status:    domain.QuizLoading,
		touchedAt: now,
	}
	s.store.put(q)

	questions, err := s.buildQuestions(ctx, q)
	if err != nil {
		s.store.delete(q.id)
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.reset(questions, s.now())
	q.touchedAt = q.startedAt

	s.log.InfoContext(ctx, "quiz started",
		slog.String("quiz_id", q.id.String()),
		slog.String("type", q.quizType),
		slog.Int("questions", len(questions)))

	v := q.view(s.now())
	return &v, nil
}

// Get returns the quiz state, applying any advance that is due.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	q, ok := s.store.get(id)
	if !ok {
		return nil, ErrQuizNotFound
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	now := s.now()
	q.touchedAt = now
	if q.advance(now) {
		s.finalize(ctx, q)
	}
	v := q.view(now)
	return &v, nil
}

// Answer records the option chosen for a question. Only the first answer
// to a question counts; repeats return the recorded answer.
func (s *Service) Answer(ctx context.Context, in AnswerInput) (*AnswerResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	q, ok := s.store.get(in.QuizID)
	if !ok {
		return nil, ErrQuizNotFound
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	now := s.now()
	q.touchedAt = now
	if q.advance(now) {
		s.finalize(ctx, q)
	}

	if in.QuestionIndex >= len(q.questions) {
		return nil, domain.NewValidationError("question_index", "out of range")
	}
	if prev := q.answers[in.QuestionIndex]; prev != nil {
		return q.answerResult(in.QuestionIndex, *prev, true, now), nil
	}
	if q.status != domain.QuizInProgress {
		return nil, ErrQuizNotActive
	}
	if in.QuestionIndex != q.index {
		return nil, domain.NewValidationError("question_index", "not the current question")
	}

	question := q.questions[in.QuestionIndex]
	if !slices.Contains(question.Options, in.Option) {
		return nil, domain.NewValidationError("option", "not one of the choices")
	}

	ans := domain.QuizAnswer{Selected: in.Option, Correct: in.Option == question.Word, At: now}
	q.answers[in.QuestionIndex] = &ans
	if ans.Correct {
		q.score++
	}
	q.showResult = true
	at := now.Add(s.cfg.AdvanceDelay)
	q.advanceAt = &at

	if s.cfg.AdvanceDelay <= 0 && q.advance(now) {
		s.finalize(ctx, q)
	}

	return q.answerResult(in.QuestionIndex, ans, false, now), nil
}

// Restart draws a fresh question set and resets score and clock. A result
// already saved for the previous run is kept.
func (s *Service) Restart(ctx context.Context, id uuid.UUID) (*View, error) {
	q, ok := s.store.get(id)
	if !ok {
		return nil, ErrQuizNotFound
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	prev := q.status
	q.status = domain.QuizLoading

	questions, err := s.buildQuestions(ctx, q)
	if err != nil {
		q.status = prev
		return nil, err
	}
	q.reset(questions, s.now())
	q.touchedAt = q.startedAt

	s.log.InfoContext(ctx, "quiz restarted", slog.String("quiz_id", q.id.String()))
	v := q.view(s.now())
	return &v, nil
}

// finalize runs the completion side effects once per run. Failures are
// logged; the learner still sees the result. Caller holds q.mu.
func (s *Service) finalize(ctx context.Context, q *Quiz) {
	if q.finalized {
		return
	}
	q.finalized = true

	now := s.now()
	total := len(q.questions)
	res := &domain.QuizResult{
		ID:         uuid.New(),
		ListID:     q.listID,
		QuizType:   q.quizType,
		Difficulty: q.tier,
		Score:      q.score,
		Total:      total,
		Percentage: domain.Percentage(q.score, total),
		Duration:   q.elapsed(now),
		Mastered:   q.mastered(),
		CreatedAt:  now,
	}
	if q.learner != nil {
		id := q.learner.ID
		res.StudentID = &id
	}
	q.result = res

	ctx = context.WithoutCancel(ctx)

	if err := s.results.CreateQuizResult(ctx, res); err != nil {
		s.log.ErrorContext(ctx, "save quiz result", slog.String("quiz_id", q.id.String()), slog.String("error", err.Error()))
	}

	if q.listID != nil && q.learner != nil {
		_, err := s.progress.RecordQuiz(ctx, domain.QuizOutcome{
			StudentID:   q.learner.ID,
			StudentName: q.learner.Name,
			ListID:      *q.listID,
			Mastered:    res.Mastered,
			Snapshot:    domain.QuizScoreSnapshot{Score: res.Score, Total: res.Total, Date: now},
		})
		if err != nil {
			s.log.ErrorContext(ctx, "record list progress", slog.String("quiz_id", q.id.String()), slog.String("error", err.Error()))
		}
	}

	s.tracker.RecordQuiz(ctx, q.learner, domain.QuizAttempt{
		QuizType:   q.quizType,
		Total:      total,
		Correct:    q.score,
		Difficulty: q.tier,
		OccurredAt: now,
	})

	s.log.InfoContext(ctx, "quiz complete",
		slog.String("quiz_id", q.id.String()),
		slog.Int("score", res.Score),
		slog.Int("total", res.Total))
}

// AdvanceDelay is how long an answered question stays on screen.
func (s *Service) AdvanceDelay() time.Duration { return s.cfg.AdvanceDelay }
