// Package tracker records learner activity in the background. Recording is
// best-effort: a full queue drops events and sink failures are only logged.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/config"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

type eventSink interface {
	InsertSearch(ctx context.Context, e domain.SearchEvent) error
	InsertQuizAttempt(ctx context.Context, a domain.QuizAttempt) error
}

// Stats are cumulative counters since start.
type Stats struct {
	Enqueued  int64 `json:"enqueued"`
	Delivered int64 `json:"delivered"`
	Dropped   int64 `json:"dropped"`
	Failed    int64 `json:"failed"`
	Queued    int   `json:"queued"`
}

type job struct {
	kind   string
	search domain.SearchEvent
	quiz   domain.QuizAttempt
}

// Tracker fans events out to a fixed set of workers.
type Tracker struct {
	log     *slog.Logger
	sink    eventSink
	workers int
	timeout time.Duration
	now     func() time.Time

	mu     sync.RWMutex
	queue  chan job
	closed bool
	wg     sync.WaitGroup

	enqueued  atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

// New creates a stopped tracker.
func New(logger *slog.Logger, sink eventSink, cfg config.TrackerConfig) *Tracker {
	size := cfg.QueueSize
	if size <= 0 {
		size = 1024
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	timeout := cfg.SinkTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Tracker{
		log:     logger.With("service", "tracker"),
		sink:    sink,
		workers: workers,
		timeout: timeout,
		now:     time.Now,
		queue:   make(chan job, size),
	}
}

// Start launches the workers. They exit once Stop has drained the queue.
func (t *Tracker) Start(ctx context.Context) {
	for i := range t.workers {
		t.wg.Add(1)
		go t.work(context.WithoutCancel(ctx), i)
	}
	t.log.Info("tracker started", slog.Int("workers", t.workers), slog.Int("queue", cap(t.queue)))
}

// Stop rejects new events and waits for queued ones to be written.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.queue)
	}
	t.mu.Unlock()
	t.wg.Wait()

	s := t.Stats()
	t.log.Info("tracker stopped",
		slog.Int64("delivered", s.Delivered),
		slog.Int64("dropped", s.Dropped),
		slog.Int64("failed", s.Failed))
}

// RecordSearch queues a lookup by learner. No learner means no event.
func (t *Tracker) RecordSearch(ctx context.Context, learner *domain.Learner, word string, elapsed time.Duration) {
	if learner == nil {
		return
	}
	t.enqueue(ctx, job{kind: "search", search: domain.SearchEvent{
		ID:         uuid.New(),
		StudentID:  learner.ID,
		Word:       domain.NormalizeText(word),
		Elapsed:    elapsed,
		OccurredAt: t.now(),
	}})
}

// RecordQuiz queues a finished quiz by learner. No learner means no event.
func (t *Tracker) RecordQuiz(ctx context.Context, learner *domain.Learner, a domain.QuizAttempt) {
	if learner == nil {
		return
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.StudentID = learner.ID
	if a.OccurredAt.IsZero() {
		a.OccurredAt = t.now()
	}
	t.enqueue(ctx, job{kind: "quiz", quiz: a})
}

// Stats returns a snapshot of the counters.
func (t *Tracker) Stats() Stats {
	return Stats{
		Enqueued:  t.enqueued.Load(),
		Delivered: t.delivered.Load(),
		Dropped:   t.dropped.Load(),
		Failed:    t.failed.Load(),
		Queued:    len(t.queue),
	}
}

func (t *Tracker) enqueue(ctx context.Context, j job) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		t.dropped.Add(1)
		return
	}
	select {
	case t.queue <- j:
		t.enqueued.Add(1)
	default:
		t.dropped.Add(1)
		t.log.WarnContext(ctx, "tracker queue full, dropping event", slog.String("kind", j.kind))
	}
}

func (t *Tracker) work(ctx context.Context, id int) {
	defer t.wg.Done()
	for j := range t.queue {
		t.deliver(ctx, id, j)
	}
}

func (t *Tracker) deliver(ctx context.Context, worker int, j job) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var err error
	switch j.kind {
	case "search":
		err = t.sink.InsertSearch(ctx, j.search)
	case "quiz":
		err = t.sink.InsertQuizAttempt(ctx, j.quiz)
	}
	if err != nil {
		t.failed.Add(1)
		t.log.Warn("tracker event not recorded",
			slog.Int("worker", worker),
			slog.String("kind", j.kind),
			slog.String("error", err.Error()))
		return
	}
	t.delivered.Add(1)
}
