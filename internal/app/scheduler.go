package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/heartmarshall/kiddict-backend/internal/config"
)

type sweeper interface {
	Sweep() int
}

type digestJob interface {
	SendDigests(ctx context.Context, since time.Time) (int, error)
}

// scheduler runs the periodic maintenance jobs: idle session and quiz
// sweeps plus the parent digest.
type scheduler struct {
	log      *slog.Logger
	cfg      config.SchedulerConfig
	cron     *gocron.Scheduler
	sessions sweeper
	quizzes  sweeper
	digests  digestJob
	now      func() time.Time
}

func newScheduler(logger *slog.Logger, cfg config.SchedulerConfig, sessions, quizzes sweeper, digests digestJob) *scheduler {
	return &scheduler{
		log:      logger.With("component", "scheduler"),
		cfg:      cfg,
		cron:     gocron.NewScheduler(time.UTC),
		sessions: sessions,
		quizzes:  quizzes,
		digests:  digests,
		now:      time.Now,
	}
}

// Start registers the jobs and runs them asynchronously.
func (s *scheduler) Start() {
	if s.cfg.SweepInterval > 0 {
		if _, err := s.cron.Every(s.cfg.SweepInterval).SingletonMode().WaitForSchedule().Do(s.sweep); err != nil {
			s.log.Error("schedule sweep", slog.String("error", err.Error()))
		}
	}
	if s.cfg.DigestInterval > 0 {
		if _, err := s.cron.Every(s.cfg.DigestInterval).SingletonMode().WaitForSchedule().Do(s.sendDigests); err != nil {
			s.log.Error("schedule digest", slog.String("error", err.Error()))
		}
	}
	s.cron.StartAsync()
}

// Stop halts the scheduler. Running jobs are not interrupted.
func (s *scheduler) Stop() {
	s.cron.Stop()
}

func (s *scheduler) sweep() {
	sessions := s.sessions.Sweep()
	quizzes := s.quizzes.Sweep()
	if sessions > 0 || quizzes > 0 {
		s.log.Info("swept idle state", slog.Int("sessions", sessions), slog.Int("quizzes", quizzes))
	}
}

func (s *scheduler) sendDigests() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if _, err := s.digests.SendDigests(ctx, s.now().Add(-s.cfg.DigestInterval)); err != nil {
		s.log.Error("send digests", slog.String("error", err.Error()))
	}
}
