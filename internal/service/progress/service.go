// Package progress reports what students have learned: per-list mastery,
// activity dashboards, study recommendations and parent digests.
package progress

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

type progressRepo interface {
	Get(ctx context.Context, studentID, listID uuid.UUID) (*domain.StudentProgress, error)
	List(ctx context.Context, f domain.ProgressFilter) ([]domain.StudentProgress, error)
}

type activityRepo interface {
	Summarize(ctx context.Context, studentID uuid.UUID, since time.Time) (domain.ActivitySummary, error)
	TopSearches(ctx context.Context, studentID uuid.UUID, since time.Time, limit int) ([]domain.WordCount, error)
	ListQuizResults(ctx context.Context, studentID uuid.UUID, listID *uuid.UUID, limit int) ([]domain.QuizResult, error)
}

type listRepo interface {
	List(ctx context.Context, f domain.WordListFilter) ([]domain.WordList, error)
	Words(ctx context.Context, listID uuid.UUID) ([]string, error)
	MembersWithParents(ctx context.Context) ([]domain.ListMembership, error)
}

type digestSender interface {
	Enabled() bool
	SendDigest(ctx context.Context, d domain.ParentDigest) error
}

const (
	dashboardWindow    = 30 * 24 * time.Hour
	recentWordsLimit   = 10
	recentResultsLimit = 5
	digestWordsLimit   = 5
	maxRecommendations = 50
)

// Service aggregates progress and activity for students.
type Service struct {
	log      *slog.Logger
	progress progressRepo
	activity activityRepo
	lists    listRepo
	mailer   digestSender
	now      func() time.Time
}

// NewService creates a progress service. mailer may be nil, which disables digests.
func NewService(logger *slog.Logger, progress progressRepo, activity activityRepo, lists listRepo, mailer digestSender) *Service {
	return &Service{
		log:      logger.With("service", "progress"),
		progress: progress,
		activity: activity,
		lists:    lists,
		mailer:   mailer,
		now:      time.Now,
	}
}

// Get returns a student's progress on one list.
func (s *Service) Get(ctx context.Context, studentID, listID uuid.UUID) (*domain.StudentProgress, error) {
	return s.progress.Get(ctx, studentID, listID)
}

// ListForStudent returns every list progress record of a student.
func (s *Service) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]domain.StudentProgress, error) {
	return s.progress.List(ctx, domain.ProgressFilter{StudentID: &studentID})
}

// ListForList returns the progress of every student on a list, for teachers.
func (s *Service) ListForList(ctx context.Context, listID uuid.UUID) ([]domain.StudentProgress, error) {
	return s.progress.List(ctx, domain.ProgressFilter{ListID: &listID})
}

func masteredSet(records []domain.StudentProgress) map[string]struct{} {
	set := make(map[string]struct{})
	for _, p := range records {
		for _, w := range p.WordsMastered {
			set[w] = struct{}{}
		}
	}
	return set
}
