package quiz

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps quizzes in memory until they expire.
type Store struct {
	ttl time.Duration

	mu      sync.RWMutex
	quizzes map[uuid.UUID]*Quiz
}

// NewStore creates an empty store. A zero ttl keeps quizzes for two hours.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &Store{ttl: ttl, quizzes: make(map[uuid.UUID]*Quiz)}
}

func (s *Store) put(q *Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[q.id] = q
}

func (s *Store) get(id uuid.UUID) (*Quiz, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[id]
	return q, ok
}

func (s *Store) delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.quizzes, id)
}

// Len returns the number of stored quizzes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.quizzes)
}

// Sweep removes quizzes not touched within the TTL.
func (s *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, q := range s.quizzes {
		q.mu.Lock()
		stale := q.touchedAt.Before(cutoff)
		q.mu.Unlock()
		if stale {
			delete(s.quizzes, id)
			removed++
		}
	}
	return removed
}
