// Package session holds per-visitor lookup state in memory: grade, current
// word and tier, history, favorites, picture mode and the logged-in student.
package session

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/service/dictionary"
)

// Session is one visitor's state. All fields are private; mutation goes
// through the transition methods, each of which holds the session lock.
type Session struct {
	mu sync.Mutex

	id           uuid.UUID
	historyLimit int
	now          func() time.Time

	grade       domain.GradeLabel
	current     *dictionary.DisplayWord
	activeTier  domain.Tier
	notFound    *domain.LookupError
	history     []string
	favorites   map[string]struct{}
	pictureMode bool
	student     *domain.Learner
	issuedSeq   uint64
	appliedSeq  uint64
	lastSeen    time.Time
}

func newSession(id uuid.UUID, grade domain.GradeLabel, historyLimit int, now func() time.Time) *Session {
	return &Session{
		id:           id,
		historyLimit: historyLimit,
		now:          now,
		grade:        grade,
		activeTier:   domain.TierForGrade(grade),
		favorites:    make(map[string]struct{}),
		lastSeen:     now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) touch() { s.lastSeen = s.now() }

// Grade returns the learner's grade.
func (s *Session) Grade() domain.GradeLabel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grade
}

// SetGrade changes the grade used for future lookups. The tier of the word
// on screen is left as is.
func (s *Session) SetGrade(g domain.GradeLabel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.grade = g
}

// BeginSearch issues the sequence number for a new lookup.
func (s *Session) BeginSearch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.issuedSeq++
	return s.issuedSeq
}

// CompleteSearch shows word if seq is the latest issued search. A stale
// response is discarded and false is returned.
func (s *Session) CompleteSearch(seq uint64, word *dictionary.DisplayWord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.issuedSeq || word == nil {
		return false
	}
	s.touch()
	s.appliedSeq = seq
	s.current = word
	s.notFound = nil
	s.activeTier = domain.TierForGrade(s.grade)
	s.pushHistory(word.Entry.Word)
	return true
}

// FailSearch records a not-found state for seq when it is still the latest
// search. History is not touched.
func (s *Session) FailSearch(seq uint64, lerr *domain.LookupError) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.issuedSeq {
		return false
	}
	s.touch()
	s.appliedSeq = seq
	s.current = nil
	s.notFound = lerr
	return true
}

func (s *Session) pushHistory(word string) {
	if i := slices.Index(s.history, word); i >= 0 {
		s.history = slices.Delete(s.history, i, i+1)
	}
	s.history = slices.Insert(s.history, 0, word)
	if len(s.history) > s.historyLimit {
		s.history = s.history[:s.historyLimit]
	}
}

// StepTier moves the current word one tier. Steps past either end leave
// the tier unchanged.
func (s *Session) StepTier(d domain.Direction) (Presentation, error) {
	if !d.IsValid() {
		return Presentation{}, domain.NewValidationError("direction", "must be simplify or expand")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Presentation{}, ErrNoCurrentWord
	}
	s.touch()
	s.activeTier = s.activeTier.Step(d)
	return s.presentation(), nil
}

// Presentation renders the current word at its active tier.
func (s *Session) Presentation() (Presentation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Presentation{}, false
	}
	return s.presentation(), true
}

func (s *Session) presentation() Presentation {
	w := s.current
	def := w.Entry.Primary()
	return Presentation{
		Word:          w.Entry.Word,
		Category:      w.Entry.Category,
		Pronunciation: w.Entry.Pronunciation,
		PartOfSpeech:  def.PartOfSpeech,
		Tier:          s.activeTier,
		Text:          def.Text(s.activeTier),
		Example:       def.Example,
		CanSimplify:   s.activeTier.CanSimplify(),
		CanExpand:     s.activeTier.CanExpand(),
		Flagged:       w.Flagged,
		ShowVisual:    w.ShowVisual && s.pictureMode,
		ShowSpeech:    w.ShowSpeech,
		Source:        w.Source,
	}
}

// AddFavorite stores word in the favorite set.
func (s *Session) AddFavorite(word string) error {
	word = domain.NormalizeText(word)
	if word == "" {
		return domain.NewValidationError("word", "required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.favorites[word] = struct{}{}
	return nil
}

// RemoveFavorite drops word from the favorite set.
func (s *Session) RemoveFavorite(word string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	delete(s.favorites, domain.NormalizeText(word))
}

// ClearHistory empties the search history.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.history = nil
}

// TogglePictureMode flips picture mode and returns the new value.
func (s *Session) TogglePictureMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.pictureMode = !s.pictureMode
	return s.pictureMode
}

// LoginStudent attaches a learner so searches and quizzes are tracked.
func (s *Session) LoginStudent(l domain.Learner) error {
	if l.ID == uuid.Nil {
		return domain.NewValidationError("student_id", "required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.student = &l
	return nil
}

// LogoutStudent detaches the learner.
func (s *Session) LogoutStudent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.student = nil
}

// Learner returns the logged-in student, or nil.
func (s *Session) Learner() *domain.Learner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.student == nil {
		return nil
	}
	l := *s.student
	return &l
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	favs := make([]string, 0, len(s.favorites))
	for w := range s.favorites {
		favs = append(favs, w)
	}
	slices.Sort(favs)

	snap := Snapshot{
		ID:          s.id,
		Grade:       s.grade,
		History:     slices.Clone(s.history),
		Favorites:   favs,
		PictureMode: s.pictureMode,
		LastSeen:    s.lastSeen,
	}
	if snap.History == nil {
		snap.History = []string{}
	}
	if s.student != nil {
		l := *s.student
		snap.Student = &l
	}
	if s.current != nil {
		p := s.presentation()
		snap.Current = &p
	}
	if s.notFound != nil {
		snap.NotFound = &NotFound{Term: s.notFound.Term, Suggestion: s.notFound.Suggestion, Transient: s.notFound.Transient()}
	}
	return snap
}

func (s *Session) idleSince(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(t)
}
