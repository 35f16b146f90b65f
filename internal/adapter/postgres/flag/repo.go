// Package flag implements moderation flag persistence using PostgreSQL.
package flag

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

const (
	getSQL = `SELECT word, reason, hide_from_search, flagged_at FROM flagged_words WHERE word = $1`

	upsertSQL = `
INSERT INTO flagged_words (word, reason, hide_from_search, flagged_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (word) DO UPDATE
SET reason = EXCLUDED.reason, hide_from_search = EXCLUDED.hide_from_search
RETURNING word, reason, hide_from_search, flagged_at`

	deleteSQL = `DELETE FROM flagged_words WHERE word = $1`
)

// Repo stores moderator flags keyed by normalized word.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new flag repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Get returns the flag for word, or domain.ErrNotFound when the word is not flagged.
func (r *Repo) Get(ctx context.Context, word string) (*domain.FlagState, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	f, err := scanFlag(q.QueryRow(ctx, getSQL, word))
	if err != nil {
		return nil, postgres.MapError(err, "flag", word)
	}
	return &f, nil
}

// Upsert creates or replaces the flag for f.Word. The original flagged_at is kept.
func (r *Repo) Upsert(ctx context.Context, f domain.FlagState) (*domain.FlagState, error) {
	if f.FlaggedAt.IsZero() {
		f.FlaggedAt = time.Now().UTC()
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	stored, err := scanFlag(q.QueryRow(ctx, upsertSQL, f.Word, f.Reason, f.HideFromSearch, f.FlaggedAt))
	if err != nil {
		return nil, postgres.MapError(err, "flag", f.Word)
	}
	return &stored, nil
}

// Delete removes the flag for word. Returns domain.ErrNotFound if there was none.
func (r *Repo) Delete(ctx context.Context, word string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteSQL, word)
	if err != nil {
		return postgres.MapError(err, "flag", word)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("flag %s: %w", word, domain.ErrNotFound)
	}
	return nil
}

// List returns flags newest first.
func (r *Repo) List(ctx context.Context, f domain.FlagFilter) ([]domain.FlagState, error) {
	limit, offset := postgres.Page(f.Limit, f.Offset, 50, 500)

	b := postgres.Builder().
		Select("word", "reason", "hide_from_search", "flagged_at").
		From("flagged_words").
		OrderBy("flagged_at DESC", "word").
		Limit(limit).
		Offset(offset)
	if f.HiddenOnly {
		b = b.Where("hide_from_search")
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build flag list query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "flag", "list")
	}
	defer rows.Close()

	var out []domain.FlagState
	for rows.Next() {
		fl, err := scanFlag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan flag: %w", err)
		}
		out = append(out, fl)
	}
	return out, rows.Err()
}

func scanFlag(row pgx.Row) (domain.FlagState, error) {
	var f domain.FlagState
	err := row.Scan(&f.Word, &f.Reason, &f.HideFromSearch, &f.FlaggedAt)
	return f, err
}
