package dictionary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/lexicon"
	"github.com/heartmarshall/kiddict-backend/internal/provider"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockDefinitionRepo struct {
	GetByWordFunc  func(ctx context.Context, word string) (*domain.WordEntry, error)
	GetByWordsFunc func(ctx context.Context, words []string) ([]domain.WordEntry, error)
	CreateFunc     func(ctx context.Context, entry *domain.WordEntry) (*domain.WordEntry, error)
	creates        atomic.Int32
}

func (m *mockDefinitionRepo) GetByWord(ctx context.Context, word string) (*domain.WordEntry, error) {
	if m.GetByWordFunc != nil {
		return m.GetByWordFunc(ctx, word)
	}
	return nil, domain.ErrNotFound
}

func (m *mockDefinitionRepo) GetByWords(ctx context.Context, words []string) ([]domain.WordEntry, error) {
	if m.GetByWordsFunc != nil {
		return m.GetByWordsFunc(ctx, words)
	}
	return nil, nil
}

func (m *mockDefinitionRepo) Create(ctx context.Context, entry *domain.WordEntry) (*domain.WordEntry, error) {
	m.creates.Add(1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, entry)
	}
	e := *entry
	return &e, nil
}

type mockFlagRepo struct {
	GetFunc func(ctx context.Context, word string) (*domain.FlagState, error)
}

func (m *mockFlagRepo) Get(ctx context.Context, word string) (*domain.FlagState, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, word)
	}
	return nil, domain.ErrNotFound
}

type mockGenerator struct {
	name         domain.Source
	GenerateFunc func(ctx context.Context, word string, grade domain.GradeLabel) (*provider.DefinitionResult, error)
	calls        atomic.Int32
}

func (m *mockGenerator) Name() domain.Source { return m.name }

func (m *mockGenerator) Generate(ctx context.Context, word string, grade domain.GradeLabel) (*provider.DefinitionResult, error) {
	m.calls.Add(1)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, word, grade)
	}
	return nil, nil
}

// ===========================================================================
// Helpers
// ===========================================================================

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestService(defs *mockDefinitionRepo, flags *mockFlagRepo, gens ...Generator) *Service {
	return NewService(discardLogger(), defs, flags, lexicon.Default(), gens...)
}

func okResult(word string) *provider.DefinitionResult {
	return &provider.DefinitionResult{Word: word, Simple: "a simple one", Medium: "a medium one", Advanced: "an advanced one"}
}

// ===========================================================================
// Tests
// ===========================================================================

func TestResolve_EmptyTermMakesNoCalls(t *testing.T) {
	t.Parallel()

	defs := &mockDefinitionRepo{GetByWordFunc: func(context.Context, string) (*domain.WordEntry, error) {
		t.Fatal("cache must not be read")
		return nil, nil
	}}
	gen := &mockGenerator{name: domain.SourceLLM}
	svc := newTestService(defs, &mockFlagRepo{}, gen)

	got, err := svc.Resolve(context.Background(), ResolveInput{Term: "   "})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, gen.calls.Load())
}

func TestResolve_SpecialWordSkipsGeneration(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{name: domain.SourceLLM}
	svc := newTestService(&mockDefinitionRepo{}, &mockFlagRepo{}, gen)

	got, err := svc.Resolve(context.Background(), ResolveInput{Term: "BOOM", Grade: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.CategorySound, got.Entry.Category)
	assert.Equal(t, domain.SourceLexicon, got.Source)
	assert.Zero(t, gen.calls.Load())
}

func TestResolve_CacheHit(t *testing.T) {
	t.Parallel()

	defs := &mockDefinitionRepo{GetByWordFunc: func(_ context.Context, word string) (*domain.WordEntry, error) {
		return &domain.WordEntry{Word: word, Definitions: []domain.DefinitionSet{{Simple: "cached"}}}, nil
	}}
	gen := &mockGenerator{name: domain.SourceLLM}
	svc := newTestService(defs, &mockFlagRepo{}, gen)

	got, err := svc.Resolve(context.Background(), ResolveInput{Term: "  Volcano ", Grade: 3})
	require.NoError(t, err)
	assert.Equal(t, "volcano", got.Entry.Word)
	assert.Equal(t, domain.SourceCache, got.Source)
	assert.Equal(t, domain.TierMedium, got.InitialTier)
	assert.Zero(t, gen.calls.Load())
}

func TestResolve_RegularLexiconWordIsCached(t *testing.T) {
	t.Parallel()

	defs := &mockDefinitionRepo{}
	svc := newTestService(defs, &mockFlagRepo{})

	got, err := svc.Resolve(context.Background(), ResolveInput{Term: "apple"})
	require.NoError(t, err)
	assert.Equal(t, "apple", got.Entry.Word)
	assert.Equal(t, int32(1), defs.creates.Load())
}

func TestResolve_FallsBackToSecondGenerator(t *testing.T) {
	t.Parallel()

	primary := &mockGenerator{name: domain.SourceLLM}
	fallback := &mockGenerator{name: domain.SourceFreeDict, GenerateFunc: func(_ context.Context, word string, _ domain.GradeLabel) (*provider.DefinitionResult, error) {
		return okResult(word), nil
	}}
	defs := &mockDefinitionRepo{}
	svc := newTestService(defs, &mockFlagRepo{}, primary, fallback)

	got, err := svc.Resolve(context.Background(), ResolveInput{Term: "volcano", Grade: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFreeDict, got.Source)
	assert.Equal(t, "a simple one", got.Entry.Primary().Simple)
	assert.Equal(t, int32(1), primary.calls.Load())
	assert.Equal(t, int32(1), defs.creates.Load())
}

func TestResolve_CacheConflictReturnsStoredRow(t *testing.T) {
	t.Parallel()

	defs := &mockDefinitionRepo{CreateFunc: func(_ context.Context, e *domain.WordEntry) (*domain.WordEntry, error) {
		return &domain.WordEntry{Word: e.Word, Definitions: []domain.DefinitionSet{{Simple: "first writer"}}}, nil
	}}
	gen := &mockGenerator{name: domain.SourceLLM, GenerateFunc: func(_ context.Context, word string, _ domain.GradeLabel) (*provider.DefinitionResult, error) {
		return okResult(word), nil
	}}
	svc := newTestService(defs, &mockFlagRepo{}, gen)

	got, err := svc.Resolve(context.Background(), ResolveInput{Term: "volcano"})
	require.NoError(t, err)
	assert.Equal(t, "first writer", got.Entry.Primary().Simple)
}

func TestResolve_NotFoundCarriesSuggestion(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{name: domain.SourceLLM}
	svc := newTestService(&mockDefinitionRepo{}, &mockFlagRepo{}, gen)

	_, err := svc.Resolve(context.Background(), ResolveInput{Term: "Aple"})
	require.Error(t, err)

	var le *domain.LookupError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, domain.ErrWordNotFound)
	assert.False(t, le.Transient())
	assert.Equal(t, "Aple", le.Term)
	assert.Equal(t, "apple", le.Suggestion)
}

func TestResolve_TransientFailureIsDistinguished(t *testing.T) {
	t.Parallel()

	down := &mockGenerator{name: domain.SourceLLM, GenerateFunc: func(context.Context, string, domain.GradeLabel) (*provider.DefinitionResult, error) {
		return nil, errors.Join(domain.ErrServiceUnavailable, errors.New("503"))
	}}
	empty := &mockGenerator{name: domain.SourceFreeDict}
	svc := newTestService(&mockDefinitionRepo{}, &mockFlagRepo{}, down, empty)

	_, err := svc.Resolve(context.Background(), ResolveInput{Term: "volcano"})

	var le *domain.LookupError
	require.ErrorAs(t, err, &le)
	assert.True(t, le.Transient())
}

func TestResolve_FlaggedSuppressesVisualAndSpeech(t *testing.T) {
	t.Parallel()

	flags := &mockFlagRepo{GetFunc: func(_ context.Context, word string) (*domain.FlagState, error) {
		return &domain.FlagState{Word: word, Reason: "scary"}, nil
	}}
	svc := newTestService(&mockDefinitionRepo{}, flags)

	got, err := svc.Resolve(context.Background(), ResolveInput{Term: "dog"})
	require.NoError(t, err)
	assert.True(t, got.Flagged)
	assert.False(t, got.ShowVisual)
	assert.False(t, got.ShowSpeech)
	assert.NotEmpty(t, got.Entry.Primary().Simple, "definition stays visible")
}

func TestResolve_FlagLookupFailureTreatedAsUnflagged(t *testing.T) {
	t.Parallel()

	flags := &mockFlagRepo{GetFunc: func(context.Context, string) (*domain.FlagState, error) {
		return nil, errors.New("db down")
	}}
	svc := newTestService(&mockDefinitionRepo{}, flags)

	got, err := svc.Resolve(context.Background(), ResolveInput{Term: "dog"})
	require.NoError(t, err)
	assert.False(t, got.Flagged)
	assert.True(t, got.ShowSpeech)
}

func TestResolve_HiddenFlagKeepsDefinition(t *testing.T) {
	t.Parallel()

	flags := &mockFlagRepo{GetFunc: func(_ context.Context, word string) (*domain.FlagState, error) {
		return &domain.FlagState{Word: word, Reason: "scary picture", HideFromSearch: true}, nil
	}}
	svc := newTestService(&mockDefinitionRepo{}, flags)

	got, err := svc.Resolve(context.Background(), ResolveInput{Term: "apple", Grade: 1})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "apple", got.Entry.Word)
	assert.NotEmpty(t, got.Entry.Primary().Text(got.InitialTier))
	assert.True(t, got.Flagged)
	assert.True(t, got.Flag.HideFromSearch)
	assert.False(t, got.ShowVisual)
	assert.False(t, got.ShowSpeech)
}

func TestResolve_SoundWordHidesVisual(t *testing.T) {
	t.Parallel()

	svc := newTestService(&mockDefinitionRepo{}, &mockFlagRepo{})

	got, err := svc.Resolve(context.Background(), ResolveInput{Term: "boom"})
	require.NoError(t, err)
	assert.False(t, got.Flagged)
	assert.False(t, got.ShowVisual)
	assert.True(t, got.ShowSpeech)
}

func TestLookupCached(t *testing.T) {
	t.Parallel()

	var asked []string
	defs := &mockDefinitionRepo{GetByWordsFunc: func(_ context.Context, words []string) ([]domain.WordEntry, error) {
		asked = words
		return []domain.WordEntry{{Word: "volcano"}}, nil
	}}
	svc := newTestService(defs, &mockFlagRepo{})

	got, err := svc.LookupCached(context.Background(), []string{"Apple", "volcano", "zzz"})
	require.NoError(t, err)
	assert.Equal(t, []string{"volcano", "zzz"}, asked)
	assert.Contains(t, got, "apple")
	assert.Contains(t, got, "volcano")
	assert.NotContains(t, got, "zzz")
}
