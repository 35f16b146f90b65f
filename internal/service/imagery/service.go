// Package imagery serves illustrations for words: cached panels first,
// generated ones on a miss, stock search as a last resort.
package imagery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/provider"
	"github.com/heartmarshall/kiddict-backend/pkg/ctxutil"
)

// SourceManual marks images set by an admin.
const SourceManual = "manual"

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type imageRepo interface {
	GetByWord(ctx context.Context, word string) ([]domain.WordImage, error)
	SaveAll(ctx context.Context, images []domain.WordImage) error
	DeleteByWord(ctx context.Context, word string) (int, error)
	AddFeedback(ctx context.Context, fb *domain.PictureFeedback) error
	ReviewQueue(ctx context.Context, minConfused, limit, offset int) ([]domain.ImageFeedbackSummary, error)
}

type imageGenerator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

type auditLogger interface {
	Log(ctx context.Context, rec domain.AuditRecord) error
}

type imageSearcher interface {
	Name() string
	Enabled() bool
	Search(ctx context.Context, word string, count int) ([]provider.ImageHit, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements cache-aside illustration lookup.
type Service struct {
	log       *slog.Logger
	images    imageRepo
	generator imageGenerator
	search    imageSearcher
	audit     auditLogger
	now       func() time.Time
}

// NewService creates an imagery service. search may be nil.
func NewService(logger *slog.Logger, images imageRepo, generator imageGenerator, search imageSearcher) *Service {
	return &Service{
		log:       logger.With("service", "imagery"),
		images:    images,
		generator: generator,
		search:    search,
		now:       time.Now,
	}
}

// SetAuditLog records admin picture replacements in the moderation history.
func (s *Service) SetAuditLog(audit auditLogger) {
	s.audit = audit
}

// GetImages returns one image per panel of visual. Cached panels are
// returned as is; otherwise every panel is generated concurrently and
// stored only if all of them succeed.
func (s *Service) GetImages(ctx context.Context, word string, visual domain.Visual) ([]domain.WordImage, error) {
	word = domain.NormalizeText(word)
	if word == "" {
		return nil, domain.NewValidationError("word", "required")
	}
	n := visual.PanelCount()
	if n == 0 {
		return nil, nil
	}

	cached, err := s.images.GetByWord(ctx, word)
	if err != nil {
		s.log.WarnContext(ctx, "image cache read failed", slog.String("word", word), slog.String("error", err.Error()))
	} else if len(cached) >= n {
		return cached[:n], nil
	}

	images, err := s.generate(ctx, word, visual)
	if err != nil {
		images, err = s.fallback(ctx, word, n, err)
		if err != nil {
			return nil, err
		}
	}

	if err := s.images.SaveAll(ctx, images); err != nil {
		s.log.WarnContext(ctx, "image cache write failed", slog.String("word", word), slog.String("error", err.Error()))
	}
	return images, nil
}

func (s *Service) generate(ctx context.Context, word string, visual domain.Visual) ([]domain.WordImage, error) {
	prompts := Prompts(word, visual)
	images := make([]domain.WordImage, len(prompts))
	now := s.now()

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range prompts {
		g.Go(func() error {
			url, err := s.generator.Generate(gctx, p)
			if err != nil {
				return fmt.Errorf("panel %d: %w", i+1, err)
			}
			images[i] = domain.WordImage{
				Word:      word,
				Panel:     i,
				URL:       url,
				Prompt:    p,
				Source:    s.generator.Name(),
				CreatedAt: now,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// fallback tries stock search for single pictures after generation failed.
func (s *Service) fallback(ctx context.Context, word string, panels int, genErr error) ([]domain.WordImage, error) {
	s.log.WarnContext(ctx, "image generation failed", slog.String("word", word), slog.String("error", genErr.Error()))
	if panels != 1 || s.search == nil || !s.search.Enabled() {
		return nil, genErr
	}

	hits, err := s.search.Search(ctx, word, 3)
	if err != nil {
		return nil, errors.Join(genErr, err)
	}
	if len(hits) == 0 {
		return nil, genErr
	}
	return []domain.WordImage{{
		Word:      word,
		Panel:     0,
		URL:       hits[0].URL,
		Prompt:    hits[0].Attribution,
		Source:    s.search.Name(),
		CreatedAt: s.now(),
	}}, nil
}

// Feedback stores a learner's reaction. A confused reaction drops the
// cached images for the word so the next request regenerates them.
func (s *Service) Feedback(ctx context.Context, fb domain.PictureFeedback) error {
	fb.Word = domain.NormalizeText(fb.Word)
	if fb.Word == "" {
		return domain.NewValidationError("word", "required")
	}
	if fb.Panel < 0 {
		return domain.NewValidationError("panel", "must not be negative")
	}
	fb.ID = uuid.New()
	fb.CreatedAt = s.now()

	if err := s.images.AddFeedback(ctx, &fb); err != nil {
		return err
	}
	if fb.Helpful {
		return nil
	}

	n, err := s.images.DeleteByWord(ctx, fb.Word)
	if err != nil {
		return fmt.Errorf("invalidate images: %w", err)
	}
	s.log.InfoContext(ctx, "images invalidated by feedback", slog.String("word", fb.Word), slog.Int("removed", n))
	return nil
}

// ListForReview returns words with at least minConfused confused ratings.
// Admin only.
func (s *Service) ListForReview(ctx context.Context, minConfused, limit, offset int) ([]domain.ImageFeedbackSummary, error) {
	if !ctxutil.IsAdminCtx(ctx) {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.images.ReviewQueue(ctx, max(minConfused, 1), limit, max(offset, 0))
}

// Replace sets a panel to an admin-chosen URL. Admin only.
func (s *Service) Replace(ctx context.Context, word string, panel int, url string) (*domain.WordImage, error) {
	if !ctxutil.IsAdminCtx(ctx) {
		return nil, domain.ErrForbidden
	}
	word = domain.NormalizeText(word)
	var errs []domain.FieldError
	if word == "" {
		errs = append(errs, domain.FieldError{Field: "word", Message: "required"})
	}
	if panel < 0 {
		errs = append(errs, domain.FieldError{Field: "panel", Message: "must not be negative"})
	}
	if url == "" {
		errs = append(errs, domain.FieldError{Field: "url", Message: "required"})
	}
	if len(errs) > 0 {
		return nil, domain.NewValidationErrors(errs)
	}

	img := domain.WordImage{Word: word, Panel: panel, URL: url, Source: SourceManual, CreatedAt: s.now()}
	if err := s.images.SaveAll(ctx, []domain.WordImage{img}); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "image replaced", slog.String("word", word), slog.Int("panel", panel))

	if s.audit != nil {
		rec := domain.AuditRecord{
			Word:      word,
			Action:    domain.AuditReplaceImage,
			Changes:   map[string]any{"panel": panel, "url": url},
			CreatedAt: img.CreatedAt,
		}
		if id, ok := ctxutil.UserIDFromCtx(ctx); ok {
			rec.AdminID = &id
		}
		if err := s.audit.Log(ctx, rec); err != nil {
			s.log.WarnContext(ctx, "audit image replace", slog.String("word", word), slog.String("error", err.Error()))
		}
	}
	return &img, nil
}
