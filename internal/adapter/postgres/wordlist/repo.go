// Package wordlist implements teacher word lists, their ordered items and
// student memberships using PostgreSQL.
package wordlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// Repo provides word list persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new word list repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const (
	listColumns = `wl.id, wl.title, wl.description, wl.grade_band, wl.teacher_id, wl.teacher_name, wl.teacher_email, wl.share_code, wl.created_at`

	insertListSQL = `
INSERT INTO word_lists (id, title, description, grade_band, teacher_id, teacher_name, teacher_email, share_code, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	getByIDSQL = `SELECT ` + listColumns + ` FROM word_lists wl WHERE wl.id = $1`

	getByCodeSQL = `SELECT ` + listColumns + ` FROM word_lists wl WHERE wl.share_code = $1`

	wordsSQL = `SELECT word FROM word_list_items WHERE list_id = $1 ORDER BY position`

	maxPositionSQL = `SELECT COALESCE(max(position), -1) FROM word_list_items WHERE list_id = $1`

	insertItemSQL = `
INSERT INTO word_list_items (list_id, position, word)
VALUES ($1, $2, $3)
ON CONFLICT (list_id, word) DO NOTHING`

	deleteListSQL = `DELETE FROM word_lists WHERE id = $1`

	upsertMemberSQL = `
INSERT INTO list_members (list_id, student_id, student_name, parent_email, joined_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (list_id, student_id) DO UPDATE
SET student_name = EXCLUDED.student_name,
    parent_email = CASE WHEN EXCLUDED.parent_email = '' THEN list_members.parent_email ELSE EXCLUDED.parent_email END
RETURNING list_id, student_id, student_name, parent_email, joined_at`

	membersSQL = `
SELECT list_id, student_id, student_name, parent_email, joined_at
FROM list_members
WHERE list_id = $1
ORDER BY joined_at, student_name`

	parentMembersSQL = `
SELECT list_id, student_id, student_name, parent_email, joined_at
FROM list_members
WHERE parent_email <> ''
ORDER BY lower(parent_email), student_id`
)

// Create inserts the list and its words in order. A share code collision is
// reported as domain.ErrAlreadyExists so the caller can regenerate.
func (r *Repo) Create(ctx context.Context, list *domain.WordList) error {
	if list.ID == uuid.Nil {
		list.ID = uuid.New()
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now().UTC()
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := q.Exec(ctx, insertListSQL,
		list.ID, list.Title, list.Description, string(list.GradeBand), list.TeacherID,
		list.TeacherName, list.TeacherEmail, list.ShareCode, list.CreatedAt,
	)
	if err != nil {
		return postgres.MapError(err, "word_list", list.ShareCode)
	}

	if _, err := r.appendWords(ctx, q, list.ID, 0, list.Words); err != nil {
		return err
	}
	return nil
}

// GetByID returns the list with its words.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.WordList, error) {
	return r.getOne(ctx, getByIDSQL, id, id)
}

// GetByShareCode returns the list with its words. code must already be normalized.
func (r *Repo) GetByShareCode(ctx context.Context, code string) (*domain.WordList, error) {
	return r.getOne(ctx, getByCodeSQL, code, code)
}

func (r *Repo) getOne(ctx context.Context, sql string, arg, key any) (*domain.WordList, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	list, err := scanList(q.QueryRow(ctx, sql, arg))
	if err != nil {
		return nil, postgres.MapError(err, "word_list", key)
	}

	words, err := r.Words(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	list.Words = words
	return &list, nil
}

// Words returns the words of a list in list order.
func (r *Repo) Words(ctx context.Context, listID uuid.UUID) ([]string, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, wordsSQL, listID)
	if err != nil {
		return nil, postgres.MapError(err, "word_list_items", listID)
	}
	words, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect words: %w", err)
	}
	return words, nil
}

// AddWords appends words not already on the list and returns how many were added.
func (r *Repo) AddWords(ctx context.Context, listID uuid.UUID, words []string) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	var last int
	if err := q.QueryRow(ctx, maxPositionSQL, listID).Scan(&last); err != nil {
		return 0, postgres.MapError(err, "word_list", listID)
	}
	return r.appendWords(ctx, q, listID, last+1, words)
}

func (r *Repo) appendWords(ctx context.Context, q postgres.Querier, listID uuid.UUID, start int, words []string) (int, error) {
	if len(words) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for i, w := range words {
		batch.Queue(insertItemSQL, listID, start+i, w)
	}
	br := q.SendBatch(ctx, batch)
	defer br.Close()

	added := 0
	for _, w := range words {
		tag, err := br.Exec()
		if err != nil {
			return added, postgres.MapError(err, "word_list_item", w)
		}
		added += int(tag.RowsAffected())
	}
	return added, nil
}

// Delete removes the list with its items and memberships.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := q.Exec(ctx, deleteListSQL, id)
	if err != nil {
		return postgres.MapError(err, "word_list", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("word_list %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// List returns lists matching f, newest first. Words are not loaded.
func (r *Repo) List(ctx context.Context, f domain.WordListFilter) ([]domain.WordList, error) {
	limit, offset := postgres.Page(f.Limit, f.Offset, 50, 200)

	b := postgres.Builder().
		Select(strings.Split(listColumns, ", ")...).
		From("word_lists wl").
		OrderBy("wl.created_at DESC", "wl.id").
		Limit(limit).
		Offset(offset)

	if f.TeacherEmail != "" {
		b = b.Where("lower(wl.teacher_email) = lower(?)", f.TeacherEmail)
	}
	if f.TeacherID != nil {
		b = b.Where(sq.Eq{"wl.teacher_id": *f.TeacherID})
	}
	if f.GradeBand != "" {
		b = b.Where(sq.Eq{"wl.grade_band": string(f.GradeBand)})
	}
	if f.StudentID != nil {
		b = b.Join("list_members lm ON lm.list_id = wl.id").Where(sq.Eq{"lm.student_id": *f.StudentID})
	}

	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build word list query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "word_list", "list")
	}
	defer rows.Close()

	var out []domain.WordList
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan word list: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// AddMember records that a student joined the list. Joining again refreshes the
// student's display name and keeps the original join time.
func (r *Repo) AddMember(ctx context.Context, m domain.ListMembership) (*domain.ListMembership, error) {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	q := postgres.QuerierFromCtx(ctx, r.pool)

	stored, err := scanMember(q.QueryRow(ctx, upsertMemberSQL, m.ListID, m.StudentID, m.StudentName, m.ParentEmail, m.JoinedAt))
	if err != nil {
		return nil, postgres.MapError(err, "list_member", m.StudentID)
	}
	return &stored, nil
}

// Members returns the students of a list in join order.
func (r *Repo) Members(ctx context.Context, listID uuid.UUID) ([]domain.ListMembership, error) {
	return r.queryMembers(ctx, membersSQL, listID)
}

// MembersWithParents returns every membership that has a parent e-mail,
// grouped by parent.
func (r *Repo) MembersWithParents(ctx context.Context) ([]domain.ListMembership, error) {
	return r.queryMembers(ctx, parentMembersSQL)
}

func (r *Repo) queryMembers(ctx context.Context, sql string, args ...any) ([]domain.ListMembership, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "list_member", "list")
	}
	defer rows.Close()

	var out []domain.ListMembership
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanList(row pgx.Row) (domain.WordList, error) {
	var (
		l    domain.WordList
		band string
	)
	err := row.Scan(&l.ID, &l.Title, &l.Description, &band, &l.TeacherID, &l.TeacherName, &l.TeacherEmail, &l.ShareCode, &l.CreatedAt)
	l.GradeBand = domain.GradeBand(band)
	return l, err
}

func scanMember(row pgx.Row) (domain.ListMembership, error) {
	var m domain.ListMembership
	err := row.Scan(&m.ListID, &m.StudentID, &m.StudentName, &m.ParentEmail, &m.JoinedAt)
	return m, err
}
