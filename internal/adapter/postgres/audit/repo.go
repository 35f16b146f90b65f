// Package audit implements the moderation audit log using PostgreSQL.
// It provides append-only operations for audit records.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

const insertSQL = `
INSERT INTO moderation_audit (id, admin_id, word, action, changes, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// Repo provides audit log persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new audit repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Log appends an audit record. ID and CreatedAt are filled in when zero.
func (r *Repo) Log(ctx context.Context, rec domain.AuditRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var changes []byte
	if len(rec.Changes) > 0 {
		var err error
		if changes, err = json.Marshal(rec.Changes); err != nil {
			return fmt.Errorf("audit_record marshal changes: %w", err)
		}
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	_, err := q.Exec(ctx, insertSQL, rec.ID, rec.AdminID, rec.Word, string(rec.Action), changes, rec.CreatedAt)
	if err != nil {
		return postgres.MapError(err, "audit_record", rec.ID)
	}
	return nil
}

// ListByWord returns the moderation history of word, newest first.
func (r *Repo) ListByWord(ctx context.Context, word string, limit int) ([]domain.AuditRecord, error) {
	lim, _ := postgres.Page(limit, 0, 20, 200)

	sql, args, err := postgres.Builder().
		Select("id", "admin_id", "word", "action", "changes", "created_at").
		From("moderation_audit").
		Where("word = ?", word).
		OrderBy("created_at DESC", "id").
		Limit(lim).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit query: %w", err)
	}

	q := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "audit_record", word)
	}
	defer rows.Close()

	var out []domain.AuditRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (domain.AuditRecord, error) {
	var (
		rec     domain.AuditRecord
		action  string
		changes []byte
	)
	if err := row.Scan(&rec.ID, &rec.AdminID, &rec.Word, &action, &changes, &rec.CreatedAt); err != nil {
		return domain.AuditRecord{}, fmt.Errorf("scan audit_record: %w", err)
	}
	rec.Action = domain.AuditAction(action)

	if len(changes) > 0 {
		if err := json.Unmarshal(changes, &rec.Changes); err != nil {
			return domain.AuditRecord{}, fmt.Errorf("audit_record %s unmarshal changes: %w", rec.ID, err)
		}
	}
	return rec, nil
}
