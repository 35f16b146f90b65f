package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// Store keeps sessions in memory, keyed by ID.
type Store struct {
	log          *slog.Logger
	defaultGrade domain.GradeLabel
	historyLimit int
	idleTTL      time.Duration
	now          func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewStore creates an empty store. New sessions start at defaultGrade.
func NewStore(logger *slog.Logger, defaultGrade domain.GradeLabel, historyLimit int, idleTTL time.Duration) *Store {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &Store{
		log:          logger.With("service", "session"),
		defaultGrade: defaultGrade,
		historyLimit: historyLimit,
		idleTTL:      idleTTL,
		now:          time.Now,
		sessions:     make(map[uuid.UUID]*Session),
	}
}

// Get returns an existing session.
func (s *Store) Get(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// GetOrCreate returns the session for id, creating it when unknown. A nil
// id always creates a session with a fresh ID.
func (s *Store) GetOrCreate(id uuid.UUID) *Session {
	if id != uuid.Nil {
		if sess, err := s.Get(id); err == nil {
			return sess
		}
	} else {
		id = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	sess := newSession(id, s.defaultGrade, s.historyLimit, s.now)
	s.sessions[id] = sess
	return sess
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle longer than the configured TTL.
func (s *Store) Sweep() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.idleSince(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.log.Info("swept idle sessions", slog.Int("removed", removed), slog.Int("remaining", len(s.sessions)))
	}
	return removed
}
