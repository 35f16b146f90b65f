package testhelper

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// UniqueWord returns a normalized word that no other test will use.
func UniqueWord(prefix string) string {
	return strings.ToLower(prefix) + uniqueSuffix()
}

// UniqueShareCode returns a valid share code derived from a fresh UUID.
func UniqueShareCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return raw[:domain.ShareCodeLength]
}

// SeedWordList inserts a word list with the given words and returns it.
func SeedWordList(t *testing.T, pool *pgxpool.Pool, words ...string) domain.WordList {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	teacherID := uuid.New()
	list := domain.WordList{
		ID:           uuid.New(),
		Title:        "List " + suffix,
		GradeBand:    domain.GradeBand35,
		TeacherID:    &teacherID,
		TeacherName:  "Teacher " + suffix,
		TeacherEmail: "teacher-" + suffix + "@example.com",
		ShareCode:    UniqueShareCode(),
		Words:        domain.CleanWords(words),
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO word_lists (id, title, description, grade_band, teacher_id, teacher_name, teacher_email, share_code, created_at)
		 VALUES ($1, $2, '', $3, $4, $5, $6, $7, $8)`,
		list.ID, list.Title, string(list.GradeBand), list.TeacherID, list.TeacherName, list.TeacherEmail, list.ShareCode, list.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedWordList: %v", err)
	}

	for i, w := range list.Words {
		if _, err := pool.Exec(ctx,
			`INSERT INTO word_list_items (list_id, position, word) VALUES ($1, $2, $3)`,
			list.ID, i, w,
		); err != nil {
			t.Fatalf("testhelper: SeedWordList item %q: %v", w, err)
		}
	}

	return list
}

// SeedMember joins a fresh student to the list and returns the membership.
func SeedMember(t *testing.T, pool *pgxpool.Pool, listID uuid.UUID, parentEmail string) domain.ListMembership {
	t.Helper()

	m := domain.ListMembership{
		ListID:      listID,
		StudentID:   uuid.New(),
		StudentName: "Student " + uniqueSuffix(),
		ParentEmail: parentEmail,
		JoinedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO list_members (list_id, student_id, student_name, parent_email, joined_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		m.ListID, m.StudentID, m.StudentName, m.ParentEmail, m.JoinedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedMember: %v", err)
	}
	return m
}

// SeedFlag marks word as flagged.
func SeedFlag(t *testing.T, pool *pgxpool.Pool, word string, hide bool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO flagged_words (word, reason, hide_from_search) VALUES ($1, 'seeded', $2)`,
		word, hide,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedFlag: %v", err)
	}
}
