package dictionary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// Resolve looks up term for a learner in grade. An empty term returns
// (nil, nil) without touching any source. A word nobody can define returns a
// *domain.LookupError wrapping domain.ErrWordNotFound, or
// domain.ErrServiceUnavailable when a source failed in transit.
func (s *Service) Resolve(ctx context.Context, in ResolveInput) (*DisplayWord, error) {
	word := domain.NormalizeText(in.Term)
	if word == "" {
		return nil, nil
	}

	var (
		flag  *domain.FlagState
		entry domain.WordEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		flag = s.flagState(gctx, word)
		return nil
	})
	g.Go(func() error {
		e, err := s.definition(gctx, word, in.Grade)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrServiceUnavailable) {
			return nil, s.lookupError(in.Term, word, err)
		}
		return nil, err
	}

	return newDisplayWord(entry, flag, in.Grade), nil
}

// LookupCached returns entries for words already known to the lexicon or
// the definition cache. Missing words are absent from the map.
func (s *Service) LookupCached(ctx context.Context, words []string) (map[string]domain.WordEntry, error) {
	out := make(map[string]domain.WordEntry, len(words))
	var rest []string
	for _, w := range words {
		w = domain.NormalizeText(w)
		if e, ok := s.lexicon.Lookup(w); ok {
			out[w] = e
			continue
		}
		rest = append(rest, w)
	}
	if len(rest) == 0 {
		return out, nil
	}

	cached, err := s.definitions.GetByWords(ctx, rest)
	if err != nil {
		return nil, fmt.Errorf("load cached definitions: %w", err)
	}
	for _, e := range cached {
		out[e.Word] = e
	}
	return out, nil
}

func (s *Service) flagState(ctx context.Context, word string) *domain.FlagState {
	f, err := s.flags.Get(ctx, word)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "flag lookup failed, treating as unflagged",
				slog.String("word", word), slog.String("error", err.Error()))
		}
		return nil
	}
	return f
}

func (s *Service) definition(ctx context.Context, word string, grade domain.GradeLabel) (domain.WordEntry, error) {
	if e, ok := s.lexicon.LookupSpecial(word); ok {
		return e, nil
	}

	cached, err := s.definitions.GetByWord(ctx, word)
	switch {
	case err == nil:
		cached.Source = domain.SourceCache
		return *cached, nil
	case errors.Is(err, domain.ErrNotFound):
	default:
		s.log.WarnContext(ctx, "definition cache read failed",
			slog.String("word", word), slog.String("error", err.Error()))
	}

	if e, ok := s.lexicon.Lookup(word); ok {
		s.store(ctx, e)
		return e, nil
	}

	return s.generate(ctx, word, grade)
}

func (s *Service) generate(ctx context.Context, word string, grade domain.GradeLabel) (domain.WordEntry, error) {
	transient := false
	for _, gen := range s.generators {
		res, err := gen.Generate(ctx, word, grade)
		if err != nil {
			if ctx.Err() != nil {
				return domain.WordEntry{}, ctx.Err()
			}
			if errors.Is(err, domain.ErrServiceUnavailable) {
				transient = true
			}
			s.log.WarnContext(ctx, "definition source failed",
				slog.String("source", string(gen.Name())),
				slog.String("word", word),
				slog.String("error", err.Error()))
			continue
		}
		if res.IsEmpty() {
			s.log.DebugContext(ctx, "definition source has no data",
				slog.String("source", string(gen.Name())), slog.String("word", word))
			continue
		}

		entry := res.ToEntry(word, gen.Name(), s.now())
		if stored := s.store(ctx, entry); stored != nil {
			stored.Source = gen.Name()
			return *stored, nil
		}
		return entry, nil
	}

	if transient {
		return domain.WordEntry{}, domain.ErrServiceUnavailable
	}
	return domain.WordEntry{}, domain.ErrWordNotFound
}

// store writes entry to the cache. A concurrent writer wins; its row is
// returned. Failures are logged and yield nil.
func (s *Service) store(ctx context.Context, entry domain.WordEntry) *domain.WordEntry {
	stored, err := s.definitions.Create(ctx, &entry)
	if err != nil {
		s.log.WarnContext(ctx, "definition cache write failed",
			slog.String("word", entry.Word), slog.String("error", err.Error()))
		return nil
	}
	return stored
}

func (s *Service) lookupError(term, word string, err error) *domain.LookupError {
	le := &domain.LookupError{Term: term, Err: err}
	if sug, ok := s.lexicon.Suggest(word); ok {
		le.Suggestion = sug
	}
	return le
}
