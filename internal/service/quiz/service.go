// Package quiz runs multiple-choice vocabulary quizzes held in memory.
package quiz

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/config"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/service/dictionary"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type definitionLookup interface {
	LookupCached(ctx context.Context, words []string) (map[string]domain.WordEntry, error)
	Resolve(ctx context.Context, in dictionary.ResolveInput) (*dictionary.DisplayWord, error)
}

type wordPool interface {
	Words() []string
}

type listRepo interface {
	Words(ctx context.Context, listID uuid.UUID) ([]string, error)
}

type resultRepo interface {
	CreateQuizResult(ctx context.Context, res *domain.QuizResult) error
}

type progressRepo interface {
	RecordQuiz(ctx context.Context, in domain.QuizOutcome) (*domain.StudentProgress, error)
}

type activityRecorder interface {
	RecordQuiz(ctx context.Context, learner *domain.Learner, a domain.QuizAttempt)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service builds quizzes and drives their state machine.
type Service struct {
	log      *slog.Logger
	cfg      config.QuizConfig
	lookup   definitionLookup
	pool     wordPool
	lists    listRepo
	results  resultRepo
	progress progressRepo
	tracker  activityRecorder
	store    *Store
	now      func() time.Time

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService creates a quiz service.
func NewService(
	logger *slog.Logger,
	cfg config.QuizConfig,
	lookup definitionLookup,
	pool wordPool,
	lists listRepo,
	results resultRepo,
	progress progressRepo,
	tracker activityRecorder,
) *Service {
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = 5
	}
	return &Service{
		log:      logger.With("service", "quiz"),
		cfg:      cfg,
		lookup:   lookup,
		pool:     pool,
		lists:    lists,
		results:  results,
		progress: progress,
		tracker:  tracker,
		store:    NewStore(cfg.TTL),
		now:      time.Now,
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Sweep drops quizzes untouched for longer than the configured TTL.
func (s *Service) Sweep() int {
	n := s.store.Sweep(s.now())
	if n > 0 {
		s.log.Info("swept expired quizzes", slog.Int("removed", n))
	}
	return n
}

func (s *Service) shuffle(words []string) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
}
