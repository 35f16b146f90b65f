package event_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/event"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

func newRepo(t *testing.T) *event.Repo {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	return event.New(testhelper.SetupTestDB(t))
}

func TestRepo_SummarizeAndTopSearches(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()
	student := uuid.New()
	now := time.Now().UTC().Truncate(time.Microsecond)

	for i, w := range []string{"apple", "dog", "apple"} {
		err := repo.InsertSearch(ctx, domain.SearchEvent{
			StudentID: student, Word: w, Elapsed: 120 * time.Millisecond, OccurredAt: now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("InsertSearch: %v", err)
		}
	}
	err := repo.InsertQuizAttempt(ctx, domain.QuizAttempt{
		StudentID: student, QuizType: "global", Total: 5, Correct: 4, Difficulty: domain.TierMedium, OccurredAt: now.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("InsertQuizAttempt: %v", err)
	}

	s, err := repo.Summarize(ctx, student, now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Searches != 3 || s.Quizzes != 1 || s.Questions != 5 || s.CorrectAnswers != 4 {
		t.Errorf("summary = %+v", s)
	}
	if s.Accuracy() != 80 {
		t.Errorf("accuracy = %d, want 80", s.Accuracy())
	}
	if s.LastActive == nil || !s.LastActive.Equal(now.Add(time.Minute)) {
		t.Errorf("last active = %v", s.LastActive)
	}

	top, err := repo.TopSearches(ctx, student, now.Add(-time.Hour), 5)
	if err != nil {
		t.Fatalf("TopSearches: %v", err)
	}
	if len(top) != 2 || top[0].Word != "apple" || top[0].Count != 2 {
		t.Errorf("top = %+v", top)
	}
}

func TestRepo_Summarize_NoActivity(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)

	s, err := repo.Summarize(context.Background(), uuid.New(), time.Time{})
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if s.Searches != 0 || s.LastActive != nil || s.Accuracy() != 0 {
		t.Errorf("summary = %+v", s)
	}
}

func TestRepo_QuizResults(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()
	student := uuid.New()

	res := &domain.QuizResult{
		StudentID: &student, QuizType: "global", Difficulty: domain.TierSimple,
		Score: 5, Total: 5, Percentage: 100, Duration: 42 * time.Second,
	}
	if err := repo.CreateQuizResult(ctx, res); err != nil {
		t.Fatalf("CreateQuizResult: %v", err)
	}

	got, err := repo.ListQuizResults(ctx, student, nil, 10)
	if err != nil {
		t.Fatalf("ListQuizResults: %v", err)
	}
	if len(got) != 1 || got[0].ID != res.ID || got[0].Duration != 42*time.Second {
		t.Errorf("results = %+v", got)
	}
	if got[0].ScoreLine() != "5/5" {
		t.Errorf("score line = %q", got[0].ScoreLine())
	}
}

func TestRepo_DeleteBefore(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()
	student := uuid.New()
	old := time.Now().UTC().AddDate(-3, 0, 0)

	if err := repo.InsertSearch(ctx, domain.SearchEvent{StudentID: student, Word: "kite", OccurredAt: old}); err != nil {
		t.Fatalf("InsertSearch: %v", err)
	}
	if err := repo.InsertSearch(ctx, domain.SearchEvent{StudentID: student, Word: "lamp", OccurredAt: time.Now().UTC()}); err != nil {
		t.Fatalf("InsertSearch: %v", err)
	}

	deleted, err := repo.DeleteBefore(ctx, old.Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if deleted < 1 {
		t.Fatalf("deleted = %d, want >= 1", deleted)
	}

	summary, err := repo.Summarize(ctx, student, old.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Searches != 1 {
		t.Errorf("Searches = %d, want 1", summary.Searches)
	}
}
