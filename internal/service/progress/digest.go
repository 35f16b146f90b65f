package progress

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// SendDigests mails every parent a summary of their children's activity since
// the given time. Failures for one parent are logged and do not stop the run.
// It returns the number of digests sent.
func (s *Service) SendDigests(ctx context.Context, since time.Time) (int, error) {
	if s.mailer == nil || !s.mailer.Enabled() {
		s.log.DebugContext(ctx, "parent digest skipped (mail disabled)")
		return 0, nil
	}

	members, err := s.lists.MembersWithParents(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, p := range groupByParent(members) {
		d := domain.ParentDigest{To: p.email, Since: since}
		for _, m := range p.students {
			sd, err := s.studentDigest(ctx, m, since)
			if err != nil {
				s.log.ErrorContext(ctx, "build digest",
					slog.String("student_id", m.StudentID.String()),
					slog.String("error", err.Error()))
				continue
			}
			d.Students = append(d.Students, sd)
		}
		if len(d.Students) == 0 {
			continue
		}
		if err := s.mailer.SendDigest(ctx, d); err != nil {
			s.log.ErrorContext(ctx, "send digest", slog.String("error", err.Error()))
			continue
		}
		sent++
	}

	s.log.InfoContext(ctx, "parent digests sent", slog.Int("sent", sent))
	return sent, nil
}

func (s *Service) studentDigest(ctx context.Context, m domain.ListMembership, since time.Time) (domain.StudentDigest, error) {
	sum, err := s.activity.Summarize(ctx, m.StudentID, since)
	if err != nil {
		return domain.StudentDigest{}, err
	}
	records, err := s.progress.List(ctx, domain.ProgressFilter{StudentID: &m.StudentID})
	if err != nil {
		return domain.StudentDigest{}, err
	}
	top, err := s.activity.TopSearches(ctx, m.StudentID, since, digestWordsLimit)
	if err != nil {
		return domain.StudentDigest{}, err
	}

	words := make([]string, 0, len(top))
	for _, wc := range top {
		words = append(words, wc.Word)
	}
	return domain.StudentDigest{
		Name:          m.StudentName,
		Searches:      sum.Searches,
		Quizzes:       sum.Quizzes,
		Accuracy:      sum.Accuracy(),
		WordsMastered: len(masteredSet(records)),
		RecentWords:   words,
	}, nil
}

type parentGroup struct {
	email    string
	students []domain.ListMembership
}

// groupByParent collects each parent's children once, even when a child
// joined several lists.
func groupByParent(members []domain.ListMembership) []parentGroup {
	idx := make(map[string]int)
	seen := make(map[string]map[uuid.UUID]struct{})
	var out []parentGroup
	for _, m := range members {
		key := strings.ToLower(strings.TrimSpace(m.ParentEmail))
		if key == "" {
			continue
		}
		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			seen[key] = make(map[uuid.UUID]struct{})
			out = append(out, parentGroup{email: strings.TrimSpace(m.ParentEmail)})
		}
		if _, dup := seen[key][m.StudentID]; dup {
			continue
		}
		seen[key][m.StudentID] = struct{}{}
		out[i].students = append(out[i].students, m)
	}
	for _, g := range out {
		sort.SliceStable(g.students, func(a, b int) bool { return g.students[a].StudentName < g.students[b].StudentName })
	}
	return out
}
