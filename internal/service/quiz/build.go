package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/service/dictionary"
)

const (
	loaderMaxBatch = 100
	loaderWait     = 2 * time.Millisecond
)

// source returns the distractor pool and the question targets for q.
func (s *Service) source(ctx context.Context, q *Quiz) (pool, targets []string, err error) {
	switch {
	case q.listID != nil:
		words, err := s.lists.Words(ctx, *q.listID)
		if err != nil {
			return nil, nil, fmt.Errorf("load list words: %w", err)
		}
		pool = domain.CleanWords(words)
		if s.cfg.MaxListWords > 0 && len(pool) > s.cfg.MaxListWords {
			pool = pool[:s.cfg.MaxListWords]
		}
		targets = slices.Clone(pool)
		s.shuffle(targets)
	case len(q.words) > 0:
		pool = domain.CleanWords(q.words)
		targets = slices.Clone(pool)
		s.shuffle(targets)
	default:
		pool = s.pool.Words()
		targets = slices.Clone(pool)
		s.shuffle(targets)
		if len(targets) > q.size {
			targets = targets[:q.size]
		}
	}
	return pool, targets, nil
}

// buildQuestions creates one question per target that has a definition and
// at least three distinct distractors in pool.
func (s *Service) buildQuestions(ctx context.Context, q *Quiz) ([]domain.QuizQuestion, error) {
	pool, targets, err := s.source(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(pool) < domain.QuizOptionCount {
		return nil, domain.ErrQuizPoolTooSmall
	}

	defs := s.definitions(ctx, targets, q.grade)

	questions := make([]domain.QuizQuestion, 0, len(targets))
	for _, word := range targets {
		entry, ok := defs[word]
		if !ok {
			continue
		}
		text := entry.Primary().Text(q.tier)
		if text == "" {
			continue
		}
		options, ok := s.options(word, pool)
		if !ok {
			continue
		}
		questions = append(questions, domain.QuizQuestion{Word: word, Definition: text, Options: options})
	}

	if len(questions) == 0 {
		return nil, domain.ErrQuizPoolTooSmall
	}
	return questions, nil
}

// options samples three distractors without replacement and shuffles them
// with the answer.
func (s *Service) options(word string, pool []string) ([]string, bool) {
	others := make([]string, 0, len(pool))
	for _, w := range pool {
		if w != word {
			others = append(others, w)
		}
	}
	if len(others) < domain.QuizOptionCount-1 {
		return nil, false
	}
	s.shuffle(others)
	opts := append(others[:domain.QuizOptionCount-1:domain.QuizOptionCount-1], word)
	s.shuffle(opts)
	return opts, true
}

// definitions batch-loads cached entries for words through a dataloader
// and falls back to the resolver for misses. Words with no definition are
// absent from the result.
func (s *Service) definitions(ctx context.Context, words []string, grade domain.GradeLabel) map[string]domain.WordEntry {
	loader := dataloader.NewBatchedLoader(
		s.batchLookup,
		dataloader.WithWait[string, domain.WordEntry](loaderWait),
		dataloader.WithBatchCapacity[string, domain.WordEntry](loaderMaxBatch),
	)

	thunks := make([]dataloader.Thunk[domain.WordEntry], len(words))
	for i, w := range words {
		thunks[i] = loader.Load(ctx, w)
	}

	out := make(map[string]domain.WordEntry, len(words))
	for i, w := range words {
		entry, err := thunks[i]()
		if err == nil {
			out[w] = entry
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "cached definition lookup failed", slog.String("word", w), slog.String("error", err.Error()))
		}

		dw, err := s.lookup.Resolve(ctx, dictionary.ResolveInput{Term: w, Grade: grade})
		if err != nil || dw == nil {
			s.log.InfoContext(ctx, "skipping quiz word without definition", slog.String("word", w))
			continue
		}
		out[w] = dw.Entry
	}
	return out
}

func (s *Service) batchLookup(ctx context.Context, keys []string) []*dataloader.Result[domain.WordEntry] {
	found, err := s.lookup.LookupCached(ctx, keys)
	results := make([]*dataloader.Result[domain.WordEntry], len(keys))
	for i, k := range keys {
		switch entry, ok := found[domain.NormalizeText(k)]; {
		case err != nil:
			results[i] = &dataloader.Result[domain.WordEntry]{Error: err}
		case !ok:
			results[i] = &dataloader.Result[domain.WordEntry]{Error: domain.ErrNotFound}
		default:
			results[i] = &dataloader.Result[domain.WordEntry]{Data: entry}
		}
	}
	return results
}
