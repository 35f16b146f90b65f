// Package image implements word illustration persistence using PostgreSQL.
// It handles two tables: word_images (cache-aside store, one row per panel)
// and picture_feedback (append-only student ratings).
package image

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// Repo provides image persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new image repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// word_images
// ---------------------------------------------------------------------------

const (
	getByWordSQL = `
SELECT word, panel, url, prompt, source, created_at
FROM word_images
WHERE word = $1
ORDER BY panel`

	upsertImageSQL = `
INSERT INTO word_images (word, panel, url, prompt, source, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (word, panel) DO UPDATE
SET url = EXCLUDED.url, prompt = EXCLUDED.prompt, source = EXCLUDED.source, created_at = EXCLUDED.created_at`

	deleteByWordSQL = `DELETE FROM word_images WHERE word = $1`
)

// GetByWord returns the cached panels of word ordered by panel index.
// An empty slice means the word has no cached images.
func (r *Repo) GetByWord(ctx context.Context, word string) ([]domain.WordImage, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, getByWordSQL, word)
	if err != nil {
		return nil, postgres.MapError(err, "word_image", word)
	}
	defer rows.Close()

	var out []domain.WordImage
	for rows.Next() {
		var img domain.WordImage
		if err := rows.Scan(&img.Word, &img.Panel, &img.URL, &img.Prompt, &img.Source, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan word_image: %w", err)
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// SaveAll writes every panel in one batch. Callers that need all-or-nothing
// semantics across panels run it inside TxManager.RunInTx.
func (r *Repo) SaveAll(ctx context.Context, images []domain.WordImage) error {
	if len(images) == 0 {
		return nil
	}
	now := time.Now().UTC()

	batch := &pgx.Batch{}
	for _, img := range images {
		createdAt := img.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		batch.Queue(upsertImageSQL, img.Word, img.Panel, img.URL, img.Prompt, img.Source, createdAt)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	br := q.SendBatch(ctx, batch)
	defer br.Close()

	for _, img := range images {
		if _, err := br.Exec(); err != nil {
			return postgres.MapError(err, "word_image", fmt.Sprintf("%s/%d", img.Word, img.Panel))
		}
	}
	return nil
}

// DeleteByWord evicts every cached panel of word and returns how many were removed.
func (r *Repo) DeleteByWord(ctx context.Context, word string) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteByWordSQL, word)
	if err != nil {
		return 0, postgres.MapError(err, "word_image", word)
	}
	return int(tag.RowsAffected()), nil
}

// ---------------------------------------------------------------------------
// picture_feedback
// ---------------------------------------------------------------------------

const insertFeedbackSQL = `
INSERT INTO picture_feedback (id, word, panel, image_url, helpful, student_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// AddFeedback stores one rating.
func (r *Repo) AddFeedback(ctx context.Context, fb *domain.PictureFeedback) error {
	if fb.ID == uuid.Nil {
		fb.ID = uuid.New()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertFeedbackSQL, fb.ID, fb.Word, fb.Panel, fb.ImageURL, fb.Helpful, fb.StudentID, fb.CreatedAt)
	if err != nil {
		return postgres.MapError(err, "picture_feedback", fb.ID)
	}
	return nil
}

// ReviewQueue summarizes feedback per word, most confusing first.
// With minConfused > 0 only words with at least that many confused ratings are returned.
func (r *Repo) ReviewQueue(ctx context.Context, minConfused, limit, offset int) ([]domain.ImageFeedbackSummary, error) {
	lim, off := postgres.Page(limit, offset, 50, 500)

	b := postgres.Builder().
		Select(
			"word",
			"count(*) FILTER (WHERE helpful)",
			"count(*) FILTER (WHERE NOT helpful)",
			"max(created_at)",
		).
		From("picture_feedback").
		GroupBy("word").
		OrderBy("count(*) FILTER (WHERE NOT helpful) DESC", "max(created_at) DESC").
		Limit(lim).
		Offset(off)
	if minConfused > 0 {
		b = b.Having("count(*) FILTER (WHERE NOT helpful) >= ?", minConfused)
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build review queue query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "picture_feedback", "review")
	}
	defer rows.Close()

	var out []domain.ImageFeedbackSummary
	for rows.Next() {
		var s domain.ImageFeedbackSummary
		if err := rows.Scan(&s.Word, &s.Helpful, &s.Confused, &s.LastRated); err != nil {
			return nil, fmt.Errorf("scan feedback summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
