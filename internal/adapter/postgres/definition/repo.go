// Package definition implements the definition cache repository using PostgreSQL.
package definition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

const (
	selectColumns = `word, pronunciation, category, source, definitions, image_url, created_at`

	getByWordSQL = `SELECT ` + selectColumns + ` FROM definitions WHERE word = $1`

	getByWordsSQL = `SELECT ` + selectColumns + ` FROM definitions WHERE word = ANY($1::text[])`

	insertSQL = `
INSERT INTO definitions (word, pronunciation, category, source, definitions, image_url, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (word) DO NOTHING
RETURNING ` + selectColumns

	setImageSQL = `UPDATE definitions SET image_url = $2 WHERE word = $1`

	deleteSQL = `DELETE FROM definitions WHERE word = $1`
)

// Repo caches resolved word entries keyed by normalized word.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new definition repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByWord returns the cached entry for word.
// Returns domain.ErrNotFound when the word has never been cached.
func (r *Repo) GetByWord(ctx context.Context, word string) (*domain.WordEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	entry, err := scanEntry(q.QueryRow(ctx, getByWordSQL, word))
	if err != nil {
		return nil, postgres.MapError(err, "definition", word)
	}
	return &entry, nil
}

// GetByWords returns the cached entries among words. Missing words are
// simply absent from the result.
func (r *Repo) GetByWords(ctx context.Context, words []string) ([]domain.WordEntry, error) {
	if len(words) == 0 {
		return nil, nil
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, getByWordsSQL, words)
	if err != nil {
		return nil, postgres.MapError(err, "definition", fmt.Sprintf("%d words", len(words)))
	}
	defer rows.Close()

	var out []domain.WordEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan definition: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate definitions: %w", err)
	}
	return out, nil
}

// Create stores entry unless the word is already cached. Entries are immutable
// once written: on conflict the existing row is returned instead.
func (r *Repo) Create(ctx context.Context, entry *domain.WordEntry) (*domain.WordEntry, error) {
	if entry.Word == "" {
		return nil, domain.NewValidationError("word", "required")
	}
	defs, err := json.Marshal(entry.Definitions)
	if err != nil {
		return nil, fmt.Errorf("marshal definitions: %w", err)
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	category := entry.Category
	if category == "" {
		category = domain.CategoryRegular
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	stored, err := scanEntry(q.QueryRow(ctx, insertSQL,
		entry.Word, entry.Pronunciation, string(category), string(entry.Source), defs, entry.ImageURL, createdAt,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return r.GetByWord(ctx, entry.Word)
	}
	if err != nil {
		return nil, postgres.MapError(err, "definition", entry.Word)
	}
	return &stored, nil
}

// SetImageURL records the primary image URL for a cached word.
func (r *Repo) SetImageURL(ctx context.Context, word, url string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, setImageSQL, word, url)
	if err != nil {
		return postgres.MapError(err, "definition", word)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("definition %s: %w", word, domain.ErrNotFound)
	}
	return nil
}

// Delete evicts word from the cache. Deleting a missing word is not an error.
func (r *Repo) Delete(ctx context.Context, word string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := q.Exec(ctx, deleteSQL, word); err != nil {
		return postgres.MapError(err, "definition", word)
	}
	return nil
}

func scanEntry(row pgx.Row) (domain.WordEntry, error) {
	var (
		e        domain.WordEntry
		category string
		source   string
		defs     []byte
	)
	if err := row.Scan(&e.Word, &e.Pronunciation, &category, &source, &defs, &e.ImageURL, &e.CreatedAt); err != nil {
		return domain.WordEntry{}, err
	}
	e.Category = domain.Category(category)
	e.Source = domain.Source(source)
	if err := json.Unmarshal(defs, &e.Definitions); err != nil {
		return domain.WordEntry{}, fmt.Errorf("decode definitions for %q: %w", e.Word, err)
	}
	return e, nil
}
