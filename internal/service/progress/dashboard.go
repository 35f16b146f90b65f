package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// Dashboard is a student's activity overview for teachers and parents.
type Dashboard struct {
	StudentID     uuid.UUID                `json:"student_id"`
	Since         time.Time                `json:"since"`
	Activity      domain.ActivitySummary   `json:"activity"`
	Accuracy      int                      `json:"accuracy"`
	WordsMastered int                      `json:"words_mastered"`
	Lists         []domain.StudentProgress `json:"lists"`
	RecentWords   []domain.WordCount       `json:"recent_words"`
	RecentResults []domain.QuizResult      `json:"recent_results"`
}

// Dashboard loads the student's last thirty days of activity.
func (s *Service) Dashboard(ctx context.Context, studentID uuid.UUID) (*Dashboard, error) {
	d := &Dashboard{StudentID: studentID, Since: s.now().Add(-dashboardWindow).UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sum, err := s.activity.Summarize(gctx, studentID, d.Since)
		if err != nil {
			return fmt.Errorf("summarize activity: %w", err)
		}
		d.Activity = sum
		return nil
	})
	g.Go(func() error {
		records, err := s.progress.List(gctx, domain.ProgressFilter{StudentID: &studentID})
		if err != nil {
			return fmt.Errorf("list progress: %w", err)
		}
		d.Lists = records
		return nil
	})
	g.Go(func() error {
		words, err := s.activity.TopSearches(gctx, studentID, d.Since, recentWordsLimit)
		if err != nil {
			return fmt.Errorf("top searches: %w", err)
		}
		d.RecentWords = words
		return nil
	})
	g.Go(func() error {
		results, err := s.activity.ListQuizResults(gctx, studentID, nil, recentResultsLimit)
		if err != nil {
			return fmt.Errorf("quiz results: %w", err)
		}
		d.RecentResults = results
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.Accuracy = d.Activity.Accuracy()
	d.WordsMastered = len(masteredSet(d.Lists))
	return d, nil
}

// Recommendation is a word the student should practice next.
type Recommendation struct {
	Word   string     `json:"word"`
	Reason string     `json:"reason"`
	ListID *uuid.UUID `json:"list_id,omitempty"`
}

const (
	ReasonListWord = "list_word"
	ReasonSearched = "recently_searched"
)

// Recommendations builds the student's learning path: words from joined
// lists not yet mastered, then recently searched words not yet mastered.
// Searched words are only suggested while quiz accuracy is below 80%.
func (s *Service) Recommendations(ctx context.Context, studentID uuid.UUID, limit int) ([]Recommendation, error) {
	if limit <= 0 || limit > maxRecommendations {
		limit = maxRecommendations
	}
	since := s.now().Add(-dashboardWindow).UTC()

	records, err := s.progress.List(ctx, domain.ProgressFilter{StudentID: &studentID})
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	mastered := masteredSet(records)

	lists, err := s.lists.List(ctx, domain.WordListFilter{StudentID: &studentID})
	if err != nil {
		return nil, fmt.Errorf("list joined lists: %w", err)
	}

	out := make([]Recommendation, 0, limit)
	seen := make(map[string]struct{})
	add := func(word, reason string, listID *uuid.UUID) bool {
		if _, ok := mastered[word]; ok {
			return false
		}
		if _, ok := seen[word]; ok {
			return false
		}
		seen[word] = struct{}{}
		out = append(out, Recommendation{Word: word, Reason: reason, ListID: listID})
		return len(out) >= limit
	}

	for _, l := range lists {
		words, err := s.lists.Words(ctx, l.ID)
		if err != nil {
			return nil, fmt.Errorf("list words: %w", err)
		}
		id := l.ID
		for _, w := range words {
			if add(w, ReasonListWord, &id) {
				return out, nil
			}
		}
	}

	sum, err := s.activity.Summarize(ctx, studentID, since)
	if err != nil {
		return nil, fmt.Errorf("summarize activity: %w", err)
	}
	if sum.Questions > 0 && sum.Accuracy() >= 80 {
		return out, nil
	}

	searched, err := s.activity.TopSearches(ctx, studentID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("top searches: %w", err)
	}
	for _, wc := range searched {
		if add(wc.Word, ReasonSearched, nil) {
			break
		}
	}
	return out, nil
}
