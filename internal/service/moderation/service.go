// Package moderation lets admins flag words whose pictures and audio must
// not be shown to children.
package moderation

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/pkg/ctxutil"
)

type flagRepo interface {
	Get(ctx context.Context, word string) (*domain.FlagState, error)
	Upsert(ctx context.Context, f domain.FlagState) (*domain.FlagState, error)
	Delete(ctx context.Context, word string) error
	List(ctx context.Context, f domain.FlagFilter) ([]domain.FlagState, error)
}

type auditRepo interface {
	Log(ctx context.Context, rec domain.AuditRecord) error
	ListByWord(ctx context.Context, word string, limit int) ([]domain.AuditRecord, error)
}

// Service manages flagged words.
type Service struct {
	log   *slog.Logger
	flags flagRepo
	audit auditRepo
}

// NewService creates a moderation service.
func NewService(logger *slog.Logger, flags flagRepo, audit auditRepo) *Service {
	return &Service{log: logger.With("service", "moderation"), flags: flags, audit: audit}
}

// FlagInput holds the parameters for flagging a word.
type FlagInput struct {
	Word           string
	Reason         string
	HideFromSearch bool
}

// Validate checks all fields and collects all errors.
func (i *FlagInput) Validate() error {
	var errs []domain.FieldError
	if domain.NormalizeText(i.Word) == "" {
		errs = append(errs, domain.FieldError{Field: "word", Message: "required"})
	}
	if len(i.Reason) > 500 {
		errs = append(errs, domain.FieldError{Field: "reason", Message: "too long (max 500)"})
	}
	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ListFlagsInput pages through flags.
type ListFlagsInput struct {
	HiddenOnly bool
	Limit      int
	Offset     int
}

// Flag creates or updates the flag for a word. Admin only.
func (s *Service) Flag(ctx context.Context, in FlagInput) (*domain.FlagState, error) {
	if !ctxutil.IsAdminCtx(ctx) {
		return nil, domain.ErrForbidden
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	f, err := s.flags.Upsert(ctx, domain.FlagState{
		Word:           domain.NormalizeText(in.Word),
		Reason:         in.Reason,
		HideFromSearch: in.HideFromSearch,
		FlaggedAt:      time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "word flagged", slog.String("word", f.Word), slog.Bool("hidden", f.HideFromSearch))
	s.record(ctx, f.Word, domain.AuditFlag, map[string]any{
		"reason":           f.Reason,
		"hide_from_search": f.HideFromSearch,
	})
	return f, nil
}

// Unflag removes the flag for a word. Admin only.
func (s *Service) Unflag(ctx context.Context, word string) error {
	if !ctxutil.IsAdminCtx(ctx) {
		return domain.ErrForbidden
	}
	word = domain.NormalizeText(word)
	if word == "" {
		return domain.NewValidationError("word", "required")
	}
	if err := s.flags.Delete(ctx, word); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "word unflagged", slog.String("word", word))
	s.record(ctx, word, domain.AuditUnflag, nil)
	return nil
}

// History returns the moderation history of a word, newest first. Admin only.
func (s *Service) History(ctx context.Context, word string, limit int) ([]domain.AuditRecord, error) {
	if !ctxutil.IsAdminCtx(ctx) {
		return nil, domain.ErrForbidden
	}
	word = domain.NormalizeText(word)
	if word == "" {
		return nil, domain.NewValidationError("word", "required")
	}
	return s.audit.ListByWord(ctx, word, clampLimit(limit, 1, 200, 20))
}

// record appends to the audit log. A failed write is logged and does not
// undo the change.
func (s *Service) record(ctx context.Context, word string, action domain.AuditAction, changes map[string]any) {
	rec := domain.AuditRecord{Word: word, Action: action, Changes: changes, CreatedAt: time.Now().UTC()}
	if id, ok := ctxutil.UserIDFromCtx(ctx); ok {
		rec.AdminID = &id
	}
	if err := s.audit.Log(ctx, rec); err != nil {
		s.log.WarnContext(ctx, "audit log write failed",
			slog.String("word", word),
			slog.String("action", string(action)),
			slog.String("error", err.Error()),
		)
	}
}

// Get returns the flag for a word.
func (s *Service) Get(ctx context.Context, word string) (*domain.FlagState, error) {
	return s.flags.Get(ctx, domain.NormalizeText(word))
}

// List returns flags, newest first. Admin only.
func (s *Service) List(ctx context.Context, in ListFlagsInput) ([]domain.FlagState, error) {
	if !ctxutil.IsAdminCtx(ctx) {
		return nil, domain.ErrForbidden
	}
	return s.flags.List(ctx, domain.FlagFilter{
		HiddenOnly: in.HiddenOnly,
		Limit:      clampLimit(in.Limit, 1, 200, 50),
		Offset:     max(in.Offset, 0),
	})
}

func clampLimit(limit, lo, hi, def int) int {
	if limit <= 0 {
		return def
	}
	return min(max(limit, lo), hi)
}
