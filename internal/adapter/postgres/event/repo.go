// Package event stores learner analytics (searches, quiz attempts) and
// persisted quiz results using PostgreSQL.
package event

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// Repo provides analytics persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new event repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const (
	insertSearchSQL = `
INSERT INTO search_events (id, student_id, word, elapsed_ms, occurred_at)
VALUES ($1, $2, $3, $4, $5)`

	insertAttemptSQL = `
INSERT INTO quiz_attempts (id, student_id, quiz_type, total, correct, difficulty, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	insertResultSQL = `
INSERT INTO quiz_results (id, student_id, list_id, quiz_type, difficulty, score, total, percentage, duration_ms, mastered, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	resultColumns = `id, student_id, list_id, quiz_type, difficulty, score, total, percentage, duration_ms, mastered, created_at`

	searchSummarySQL = `SELECT count(*), max(occurred_at) FROM search_events WHERE student_id = $1 AND occurred_at >= $2`

	quizSummarySQL = `
SELECT count(*), COALESCE(sum(total), 0), COALESCE(sum(correct), 0), max(occurred_at)
FROM quiz_attempts
WHERE student_id = $1 AND occurred_at >= $2`
)

// InsertSearch stores one search event.
func (r *Repo) InsertSearch(ctx context.Context, e domain.SearchEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertSearchSQL, e.ID, e.StudentID, e.Word, e.Elapsed.Milliseconds(), e.OccurredAt)
	if err != nil {
		return postgres.MapError(err, "search_event", e.StudentID)
	}
	return nil
}

// InsertQuizAttempt stores one quiz attempt event.
func (r *Repo) InsertQuizAttempt(ctx context.Context, a domain.QuizAttempt) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertAttemptSQL, a.ID, a.StudentID, a.QuizType, a.Total, a.Correct, string(a.Difficulty), a.OccurredAt)
	if err != nil {
		return postgres.MapError(err, "quiz_attempt", a.StudentID)
	}
	return nil
}

// CreateQuizResult persists a finished quiz.
func (r *Repo) CreateQuizResult(ctx context.Context, res *domain.QuizResult) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	mastered := res.Mastered
	if mastered == nil {
		mastered = []string{}
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertResultSQL,
		res.ID, res.StudentID, res.ListID, res.QuizType, string(res.Difficulty),
		res.Score, res.Total, res.Percentage, res.Duration.Milliseconds(), mastered, res.CreatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "quiz_result", res.ID)
	}
	return nil
}

// ListQuizResults returns a student's results, newest first.
func (r *Repo) ListQuizResults(ctx context.Context, studentID uuid.UUID, listID *uuid.UUID, limit int) ([]domain.QuizResult, error) {
	lim, _ := postgres.Page(limit, 0, 20, 200)

	b := postgres.Builder().
		Select(resultColumns).
		From("quiz_results").
		Where(sq.Eq{"student_id": studentID}).
		OrderBy("created_at DESC").
		Limit(lim)
	if listID != nil {
		b = b.Where(sq.Eq{"list_id": *listID})
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build quiz results query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "quiz_result", studentID)
	}
	defer rows.Close()

	var out []domain.QuizResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz result: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Summarize aggregates a student's searches and quiz attempts since the given time.
func (r *Repo) Summarize(ctx context.Context, studentID uuid.UUID, since time.Time) (domain.ActivitySummary, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var (
		s                    domain.ActivitySummary
		lastSearch, lastQuiz *time.Time
	)
	if err := q.QueryRow(ctx, searchSummarySQL, studentID, since).Scan(&s.Searches, &lastSearch); err != nil {
		return domain.ActivitySummary{}, postgres.MapError(err, "search_event", studentID)
	}
	if err := q.QueryRow(ctx, quizSummarySQL, studentID, since).Scan(&s.Quizzes, &s.Questions, &s.CorrectAnswers, &lastQuiz); err != nil {
		return domain.ActivitySummary{}, postgres.MapError(err, "quiz_attempt", studentID)
	}

	s.LastActive = lastSearch
	if lastQuiz != nil && (s.LastActive == nil || lastQuiz.After(*s.LastActive)) {
		s.LastActive = lastQuiz
	}
	return s, nil
}

// TopSearches returns the student's most searched words since the given time,
// most frequent first, ties broken by recency.
func (r *Repo) TopSearches(ctx context.Context, studentID uuid.UUID, since time.Time, limit int) ([]domain.WordCount, error) {
	lim, _ := postgres.Page(limit, 0, 10, 100)

	sql, args, err := postgres.Builder().
		Select("word", "count(*)", "max(occurred_at)").
		From("search_events").
		Where(sq.Eq{"student_id": studentID}).
		Where(sq.GtOrEq{"occurred_at": since}).
		GroupBy("word").
		OrderBy("count(*) DESC", "max(occurred_at) DESC").
		Limit(lim).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top searches query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "search_event", studentID)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.WordCount, error) {
		var wc domain.WordCount
		err := row.Scan(&wc.Word, &wc.Count, &wc.LastSeen)
		return wc, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect top searches: %w", err)
	}
	return out, nil
}

func scanResult(row pgx.Row) (domain.QuizResult, error) {
	var (
		res        domain.QuizResult
		difficulty string
		durationMS int64
	)
	err := row.Scan(&res.ID, &res.StudentID, &res.ListID, &res.QuizType, &difficulty,
		&res.Score, &res.Total, &res.Percentage, &durationMS, &res.Mastered, &res.CreatedAt)
	res.Difficulty = domain.Tier(difficulty)
	res.Duration = time.Duration(durationMS) * time.Millisecond
	return res, err
}

// DeleteBefore removes search and quiz-attempt events older than threshold.
// Persisted quiz results are kept. Returns the number of rows removed.
func (r *Repo) DeleteBefore(ctx context.Context, threshold time.Time) (int64, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var total int64
	for _, table := range []string{"search_events", "quiz_attempts"} {
		tag, err := q.Exec(ctx, "DELETE FROM "+table+" WHERE occurred_at < $1", threshold)
		if err != nil {
			return total, fmt.Errorf("delete old %s: %w", table, err)
		}
		total += tag.RowsAffected()
	}
	return total, nil
}
