package imagery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/provider"
	"github.com/heartmarshall/kiddict-backend/pkg/ctxutil"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockImageRepo struct {
	mu       sync.Mutex
	stored   map[string][]domain.WordImage
	feedback []domain.PictureFeedback
	saves    int

	ReviewQueueFunc func(ctx context.Context, minConfused, limit, offset int) ([]domain.ImageFeedbackSummary, error)
}

func newMockImageRepo() *mockImageRepo {
	return &mockImageRepo{stored: map[string][]domain.WordImage{}}
}

func (m *mockImageRepo) GetByWord(_ context.Context, word string) ([]domain.WordImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stored[word], nil
}

func (m *mockImageRepo) SaveAll(_ context.Context, images []domain.WordImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	for _, img := range images {
		m.stored[img.Word] = append(m.stored[img.Word], img)
	}
	return nil
}

func (m *mockImageRepo) DeleteByWord(_ context.Context, word string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.stored[word])
	delete(m.stored, word)
	return n, nil
}

func (m *mockImageRepo) AddFeedback(_ context.Context, fb *domain.PictureFeedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, *fb)
	return nil
}

func (m *mockImageRepo) ReviewQueue(ctx context.Context, minConfused, limit, offset int) ([]domain.ImageFeedbackSummary, error) {
	if m.ReviewQueueFunc != nil {
		return m.ReviewQueueFunc(ctx, minConfused, limit, offset)
	}
	return nil, nil
}

type mockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	calls        atomic.Int32
}

func (m *mockGenerator) Name() string { return "gen" }

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls.Add(1)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "https://img/" + strings.ReplaceAll(prompt, " ", "_"), nil
}

type mockSearcher struct {
	hits []provider.ImageHit
}

func (m *mockSearcher) Name() string  { return "stock" }
func (m *mockSearcher) Enabled() bool { return true }
func (m *mockSearcher) Search(context.Context, string, int) ([]provider.ImageHit, error) {
	return m.hits, nil
}

func newTestService(repo *mockImageRepo, gen *mockGenerator, search imageSearcher) *Service {
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, gen, search)
}

// ===========================================================================
// Tests
// ===========================================================================

func TestGetImages_CacheAside(t *testing.T) {
	t.Parallel()

	repo := newMockImageRepo()
	gen := &mockGenerator{}
	svc := newTestService(repo, gen, nil)
	visual := domain.Visual{Kind: domain.VisualSingle, Color: true}

	first, err := svc.GetImages(context.Background(), "Apple", visual)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "apple", first[0].Word)
	assert.Equal(t, "gen", first[0].Source)
	assert.Contains(t, first[0].Prompt, "colorful illustration of apple")

	second, err := svc.GetImages(context.Background(), "apple", visual)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), gen.calls.Load(), "second lookup is served from cache")
}

func TestGetImages_MultiPanelAllOrNothing(t *testing.T) {
	t.Parallel()

	repo := newMockImageRepo()
	gen := &mockGenerator{GenerateFunc: func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "panel 2") {
			return "", errors.New("boom")
		}
		return "https://img/ok", nil
	}}
	svc := newTestService(repo, gen, &mockSearcher{hits: []provider.ImageHit{{URL: "https://stock/1"}}})
	visual := domain.Visual{Kind: domain.VisualMultiPanel, Color: true, Panels: []string{"a", "b", "c"}}

	_, err := svc.GetImages(context.Background(), "jump", visual)
	require.Error(t, err)
	assert.Zero(t, repo.saves, "nothing stored on partial failure")
}

func TestGetImages_MultiPanelOrdered(t *testing.T) {
	t.Parallel()

	repo := newMockImageRepo()
	svc := newTestService(repo, &mockGenerator{}, nil)
	visual := domain.Visual{Kind: domain.VisualMultiPanel, Panels: []string{"start", "middle", "end"}}

	got, err := svc.GetImages(context.Background(), "run", visual)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, img := range got {
		assert.Equal(t, i, img.Panel)
		assert.Contains(t, img.Prompt, "line drawing")
	}
	assert.Contains(t, got[2].Prompt, "end")
}

func TestGetImages_SearchFallbackForSingle(t *testing.T) {
	t.Parallel()

	repo := newMockImageRepo()
	gen := &mockGenerator{GenerateFunc: func(context.Context, string) (string, error) {
		return "", domain.ErrServiceUnavailable
	}}
	svc := newTestService(repo, gen, &mockSearcher{hits: []provider.ImageHit{{URL: "https://stock/1", Attribution: "by x"}}})

	got, err := svc.GetImages(context.Background(), "dog", domain.Visual{Kind: domain.VisualSingle, Color: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://stock/1", got[0].URL)
	assert.Equal(t, "stock", got[0].Source)
}

func TestGetImages_NoVisual(t *testing.T) {
	t.Parallel()

	gen := &mockGenerator{}
	svc := newTestService(newMockImageRepo(), gen, nil)

	got, err := svc.GetImages(context.Background(), "boom", domain.Visual{Kind: domain.VisualNone})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, gen.calls.Load())
}

func TestFeedback_ConfusedInvalidatesCache(t *testing.T) {
	t.Parallel()

	repo := newMockImageRepo()
	gen := &mockGenerator{}
	svc := newTestService(repo, gen, nil)
	visual := domain.Visual{Kind: domain.VisualSingle, Color: true}
	ctx := context.Background()

	_, err := svc.GetImages(ctx, "kind", visual)
	require.NoError(t, err)

	require.NoError(t, svc.Feedback(ctx, domain.PictureFeedback{Word: "kind", Helpful: true}))
	_, _ = svc.GetImages(ctx, "kind", visual)
	assert.Equal(t, int32(1), gen.calls.Load())

	require.NoError(t, svc.Feedback(ctx, domain.PictureFeedback{Word: "Kind", Helpful: false}))
	_, _ = svc.GetImages(ctx, "kind", visual)
	assert.Equal(t, int32(2), gen.calls.Load())
	assert.Len(t, repo.feedback, 2)
}

func TestAdminOperations(t *testing.T) {
	t.Parallel()

	repo := newMockImageRepo()
	svc := newTestService(repo, &mockGenerator{}, nil)

	_, err := svc.Replace(context.Background(), "dog", 0, "https://x")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = svc.ListForReview(context.Background(), 1, 10, 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	admin := ctxutil.WithRole(context.Background(), string(domain.RoleAdmin))
	img, err := svc.Replace(admin, "Dog", 0, "https://x")
	require.NoError(t, err)
	assert.Equal(t, SourceManual, img.Source)
	assert.Equal(t, "dog", img.Word)

	_, err = svc.Replace(admin, "", -1, "")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 3)
}

type recordingAudit struct {
	records []domain.AuditRecord
}

func (a *recordingAudit) Log(_ context.Context, rec domain.AuditRecord) error {
	a.records = append(a.records, rec)
	return nil
}

func TestReplace_Audited(t *testing.T) {
	t.Parallel()

	audit := &recordingAudit{}
	svc := newTestService(newMockImageRepo(), &mockGenerator{}, nil)
	svc.SetAuditLog(audit)

	admin := uuid.New()
	ctx := ctxutil.WithUserID(ctxutil.WithRole(context.Background(), string(domain.RoleAdmin)), admin)
	_, err := svc.Replace(ctx, "Owl", 1, "https://owl")
	require.NoError(t, err)

	require.Len(t, audit.records, 1)
	rec := audit.records[0]
	assert.Equal(t, domain.AuditReplaceImage, rec.Action)
	assert.Equal(t, "owl", rec.Word)
	require.NotNil(t, rec.AdminID)
	assert.Equal(t, admin, *rec.AdminID)
	assert.Equal(t, "https://owl", rec.Changes["url"])
}

func TestPrompts(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]string{"simple black and white line drawing of cat, coloring book style, clean lines, no shading, educational illustration for children"},
		Prompts("cat", domain.Visual{Kind: domain.VisualSingle}))

	got := Prompts("run", domain.Visual{Kind: domain.VisualMultiPanel, Color: true, Panels: []string{"a", "b"}})
	assert.Equal(t, "colorful illustration: b, simple educational style for children, panel 2", got[1])
}
