// Package wordlist manages teacher word lists and the students who join
// them by share code.
package wordlist

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/config"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type listRepo interface {
	Create(ctx context.Context, list *domain.WordList) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.WordList, error)
	GetByShareCode(ctx context.Context, code string) (*domain.WordList, error)
	AddWords(ctx context.Context, listID uuid.UUID, words []string) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f domain.WordListFilter) ([]domain.WordList, error)
	AddMember(ctx context.Context, m domain.ListMembership) (*domain.ListMembership, error)
	Members(ctx context.Context, listID uuid.UUID) ([]domain.ListMembership, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// WordParser extracts words from an uploaded file.
type WordParser func(r io.Reader) ([]string, error)

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements word list business logic.
type Service struct {
	log     *slog.Logger
	lists   listRepo
	tx      txManager
	parse   WordParser
	cfg     config.WordListConfig
	codeSrc io.Reader
}

// NewService creates a word list service.
func NewService(logger *slog.Logger, lists listRepo, tx txManager, parse WordParser, cfg config.WordListConfig) *Service {
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = 200
	}
	if cfg.ShareCodeAttempts <= 0 {
		cfg.ShareCodeAttempts = 5
	}
	return &Service{
		log:   logger.With("service", "wordlist"),
		lists: lists,
		tx:    tx,
		parse: parse,
		cfg:   cfg,
	}
}
