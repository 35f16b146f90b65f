// Package progress implements per (student, word list) progress records using PostgreSQL.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

const (
	columns = `id, student_id, student_name, list_id, words_mastered, quiz_scores, last_practiced`

	getSQL = `SELECT ` + columns + ` FROM student_progress WHERE student_id = $1 AND list_id = $2`

	// words_mastered is an order-stable union: existing words keep their
	// position, new ones are appended in the order given.
	recordQuizSQL = `
INSERT INTO student_progress (id, student_id, student_name, list_id, words_mastered, quiz_scores, last_practiced)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (student_id, list_id) DO UPDATE
SET words_mastered = ARRAY(
        SELECT w
        FROM unnest(student_progress.words_mastered || EXCLUDED.words_mastered) WITH ORDINALITY AS t(w, ord)
        GROUP BY w
        ORDER BY min(ord)
    ),
    quiz_scores    = student_progress.quiz_scores || EXCLUDED.quiz_scores,
    student_name   = CASE WHEN EXCLUDED.student_name = '' THEN student_progress.student_name ELSE EXCLUDED.student_name END,
    last_practiced = GREATEST(student_progress.last_practiced, EXCLUDED.last_practiced)
RETURNING ` + columns
)

// Repo provides student progress persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new progress repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get returns progress for one student on one list.
func (r *Repo) Get(ctx context.Context, studentID, listID uuid.UUID) (*domain.StudentProgress, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	p, err := scanProgress(q.QueryRow(ctx, getSQL, studentID, listID))
	if err != nil {
		return nil, postgres.MapError(err, "student_progress", studentID)
	}
	return &p, nil
}

// RecordQuiz merges the mastered words into the student's set and appends the
// score snapshot in a single statement. Applying the same mastered words twice
// leaves the set unchanged.
func (r *Repo) RecordQuiz(ctx context.Context, in domain.QuizOutcome) (*domain.StudentProgress, error) {
	snap := in.Snapshot
	if snap.Date.IsZero() {
		snap.Date = time.Now().UTC()
	}
	scores, err := json.Marshal([]domain.QuizScoreSnapshot{snap})
	if err != nil {
		return nil, fmt.Errorf("marshal score snapshot: %w", err)
	}
	mastered := domain.MergeMastered(nil, in.Mastered)

	q := postgres.QuerierFromCtx(ctx, r.pool)
	p, err := scanProgress(q.QueryRow(ctx, recordQuizSQL,
		uuid.New(), in.StudentID, in.StudentName, in.ListID, mastered, scores, snap.Date,
	))
	if err != nil {
		return nil, postgres.MapError(err, "student_progress", in.StudentID)
	}
	return &p, nil
}

// List returns progress rows matching f, most recently practiced first.
func (r *Repo) List(ctx context.Context, f domain.ProgressFilter) ([]domain.StudentProgress, error) {
	b := postgres.Builder().
		Select(columns).
		From("student_progress").
		OrderBy("last_practiced DESC NULLS LAST", "student_name")

	if f.StudentID != nil {
		b = b.Where(sq.Eq{"student_id": *f.StudentID})
	}
	if f.ListID != nil {
		b = b.Where(sq.Eq{"list_id": *f.ListID})
	}
	if f.Since != nil {
		b = b.Where(sq.GtOrEq{"last_practiced": *f.Since})
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build progress query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "student_progress", "list")
	}
	defer rows.Close()

	var out []domain.StudentProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProgress(row pgx.Row) (domain.StudentProgress, error) {
	var (
		p      domain.StudentProgress
		scores []byte
	)
	if err := row.Scan(&p.ID, &p.StudentID, &p.StudentName, &p.ListID, &p.WordsMastered, &scores, &p.LastPracticed); err != nil {
		return domain.StudentProgress{}, err
	}
	if err := json.Unmarshal(scores, &p.QuizScores); err != nil {
		return domain.StudentProgress{}, fmt.Errorf("decode quiz scores: %w", err)
	}
	if p.WordsMastered == nil {
		p.WordsMastered = []string{}
	}
	return p, nil
}
