package session

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/service/dictionary"
)

func newTestStore() *Store {
	return NewStore(slog.New(slog.NewTextHandler(io.Discard, nil)), 1, 10, time.Hour)
}

func display(word string) *dictionary.DisplayWord {
	return &dictionary.DisplayWord{
		Entry: domain.WordEntry{Word: word, Definitions: []domain.DefinitionSet{{
			Simple: word + " simple", Medium: word + " medium", Advanced: word + " advanced",
		}}},
		ShowVisual: true,
		ShowSpeech: true,
	}
}

func search(s *Session, word string) bool {
	return s.CompleteSearch(s.BeginSearch(), display(word))
}

func TestHistory_BoundedAndDeduplicated(t *testing.T) {
	t.Parallel()

	s := newTestStore().GetOrCreate(uuid.Nil)
	for i := range 12 {
		require.True(t, search(s, fmt.Sprintf("w%d", i)))
	}
	snap := s.Snapshot()
	require.Len(t, snap.History, 10)
	assert.Equal(t, "w11", snap.History[0])

	search(s, "w5")
	snap = s.Snapshot()
	assert.Len(t, snap.History, 10)
	assert.Equal(t, []string{"w5", "w11", "w10"}, snap.History[:3])
}

func TestCompleteSearch_StaleResponseDiscarded(t *testing.T) {
	t.Parallel()

	s := newTestStore().GetOrCreate(uuid.Nil)
	first := s.BeginSearch()
	second := s.BeginSearch()

	assert.True(t, s.CompleteSearch(second, display("dog")))
	assert.False(t, s.CompleteSearch(first, display("cat")))

	p, ok := s.Presentation()
	require.True(t, ok)
	assert.Equal(t, "dog", p.Word)
	assert.Equal(t, []string{"dog"}, s.Snapshot().History)
}

func TestFailSearch_KeepsHistory(t *testing.T) {
	t.Parallel()

	s := newTestStore().GetOrCreate(uuid.Nil)
	search(s, "dog")

	seq := s.BeginSearch()
	assert.True(t, s.FailSearch(seq, &domain.LookupError{Term: "aple", Suggestion: "apple", Err: domain.ErrWordNotFound}))

	snap := s.Snapshot()
	assert.Nil(t, snap.Current)
	require.NotNil(t, snap.NotFound)
	assert.Equal(t, "apple", snap.NotFound.Suggestion)
	assert.False(t, snap.NotFound.Transient)
	assert.Equal(t, []string{"dog"}, snap.History)
}

func TestStepTier(t *testing.T) {
	t.Parallel()

	s := newTestStore().GetOrCreate(uuid.Nil)
	_, err := s.StepTier(domain.DirectionExpand)
	require.ErrorIs(t, err, ErrNoCurrentWord)

	search(s, "apple")
	p, _ := s.Presentation()
	assert.Equal(t, domain.TierSimple, p.Tier, "grade 1 starts simple")
	assert.False(t, p.CanSimplify)

	p, err = s.StepTier(domain.DirectionSimplify)
	require.NoError(t, err)
	assert.Equal(t, domain.TierSimple, p.Tier)

	s.StepTier(domain.DirectionExpand)
	p, _ = s.StepTier(domain.DirectionExpand)
	assert.Equal(t, domain.TierAdvanced, p.Tier)
	assert.Equal(t, "apple advanced", p.Text)
	assert.False(t, p.CanExpand)

	p, _ = s.StepTier(domain.DirectionExpand)
	assert.Equal(t, domain.TierAdvanced, p.Tier)

	_, err = s.StepTier("sideways")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSetGrade_KeepsCurrentTierUntilNextWord(t *testing.T) {
	t.Parallel()

	s := newTestStore().GetOrCreate(uuid.Nil)
	search(s, "apple")
	s.SetGrade(6)

	p, _ := s.Presentation()
	assert.Equal(t, domain.TierSimple, p.Tier)

	search(s, "dog")
	p, _ = s.Presentation()
	assert.Equal(t, domain.TierAdvanced, p.Tier)
}

func TestFavoritesAndPictureMode(t *testing.T) {
	t.Parallel()

	s := newTestStore().GetOrCreate(uuid.Nil)
	require.NoError(t, s.AddFavorite("Dog"))
	require.NoError(t, s.AddFavorite("dog "))
	require.NoError(t, s.AddFavorite("apple"))
	assert.Error(t, s.AddFavorite("  "))
	s.RemoveFavorite("APPLE")
	assert.Equal(t, []string{"dog"}, s.Snapshot().Favorites)

	search(s, "dog")
	p, _ := s.Presentation()
	assert.False(t, p.ShowVisual, "pictures are off until picture mode is on")
	assert.True(t, s.TogglePictureMode())
	p, _ = s.Presentation()
	assert.True(t, p.ShowVisual)
}

func TestStudentLogin(t *testing.T) {
	t.Parallel()

	s := newTestStore().GetOrCreate(uuid.Nil)
	assert.Nil(t, s.Learner())
	assert.Error(t, s.LoginStudent(domain.Learner{}))

	id := uuid.New()
	require.NoError(t, s.LoginStudent(domain.Learner{ID: id, Name: "Mia"}))
	assert.Equal(t, id, s.Learner().ID)

	s.LogoutStudent()
	assert.Nil(t, s.Learner())
}

func TestStore_GetOrCreateAndSweep(t *testing.T) {
	t.Parallel()

	st := newTestStore()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	a := st.GetOrCreate(uuid.Nil)
	assert.Same(t, a, st.GetOrCreate(a.ID()))

	_, err := st.Get(uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)

	now = now.Add(2 * time.Hour)
	b := st.GetOrCreate(uuid.Nil)
	assert.Equal(t, 1, st.Sweep())
	assert.Equal(t, 1, st.Len())

	_, err = st.Get(b.ID())
	assert.NoError(t, err)
}

func TestSession_ConcurrentSearches(t *testing.T) {
	t.Parallel()

	s := newTestStore().GetOrCreate(uuid.Nil)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			search(s, fmt.Sprintf("w%d", i%15))
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, len(s.Snapshot().History), 10)
}
