// Package dictionary resolves a typed term into a displayable word entry.
package dictionary

import (
	"context"
	"log/slog"
	"time"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/provider"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type definitionRepo interface {
	GetByWord(ctx context.Context, word string) (*domain.WordEntry, error)
	GetByWords(ctx context.Context, words []string) ([]domain.WordEntry, error)
	Create(ctx context.Context, entry *domain.WordEntry) (*domain.WordEntry, error)
}

type flagRepo interface {
	Get(ctx context.Context, word string) (*domain.FlagState, error)
}

type wordSource interface {
	Lookup(word string) (domain.WordEntry, bool)
	LookupSpecial(word string) (domain.WordEntry, bool)
	Suggest(word string) (string, bool)
	Examples() map[domain.Category][]string
}

// Generator produces definitions for words missing from the cache.
type Generator interface {
	Name() domain.Source
	Generate(ctx context.Context, word string, grade domain.GradeLabel) (*provider.DefinitionResult, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service resolves terms through the lexicon, the definition cache and the
// generator chain, in that order.
type Service struct {
	log         *slog.Logger
	definitions definitionRepo
	flags       flagRepo
	lexicon     wordSource
	generators  []Generator
	now         func() time.Time
}

// NewService creates the resolver. Generators are tried in the given order.
func NewService(
	logger *slog.Logger,
	definitions definitionRepo,
	flags flagRepo,
	lex wordSource,
	generators ...Generator,
) *Service {
	return &Service{
		log:         logger.With("service", "dictionary"),
		definitions: definitions,
		flags:       flags,
		lexicon:     lex,
		generators:  generators,
		now:         time.Now,
	}
}

// Suggest returns a spelling suggestion for term.
func (s *Service) Suggest(term string) (string, bool) {
	return s.lexicon.Suggest(term)
}

// Examples returns the special words offered as "try one of these".
func (s *Service) Examples() map[domain.Category][]string {
	return s.lexicon.Examples()
}
