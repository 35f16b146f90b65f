package definition_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/definition"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

func newRepo(t *testing.T) (*definition.Repo, *pgxpool.Pool) {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	pool := testhelper.SetupTestDB(t)
	return definition.New(pool), pool
}

func sampleEntry(word string) *domain.WordEntry {
	return &domain.WordEntry{
		Word:          word,
		Pronunciation: "/test/",
		Category:      domain.CategoryRegular,
		Source:        domain.SourceLLM,
		Definitions: []domain.DefinitionSet{{
			PartOfSpeech: "noun",
			Simple:       "a small thing",
			Medium:       "a small object used in tests",
			Advanced:     "an artifact constructed to exercise a code path",
			Example:      "The test used a thing.",
			Visual:       &domain.Visual{Kind: domain.VisualMultiPanel, Panels: []string{"one", "two"}},
		}},
	}
}

func TestRepo_CreateAndGet(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()
	word := testhelper.UniqueWord("def")

	created, err := repo.Create(ctx, sampleEntry(word))
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := repo.GetByWord(ctx, word)
	if err != nil {
		t.Fatalf("GetByWord: unexpected error: %v", err)
	}
	if got.Primary().Medium != "a small object used in tests" {
		t.Errorf("Medium = %q", got.Primary().Medium)
	}
	if got.Primary().Visual == nil || got.Primary().Visual.PanelCount() != 2 {
		t.Errorf("Visual = %+v, want 2 panels", got.Primary().Visual)
	}
	if got.Source != domain.SourceLLM {
		t.Errorf("Source = %q", got.Source)
	}
}

func TestRepo_Create_ConflictReturnsExisting(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()
	word := testhelper.UniqueWord("dup")

	if _, err := repo.Create(ctx, sampleEntry(word)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	second := sampleEntry(word)
	second.Definitions[0].Simple = "overwritten"
	second.Source = domain.SourceFreeDict

	got, err := repo.Create(ctx, second)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if got.Primary().Simple != "a small thing" || got.Source != domain.SourceLLM {
		t.Errorf("conflict should keep the first entry, got %+v", got)
	}
}

func TestRepo_GetByWord_NotFound(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)

	_, err := repo.GetByWord(context.Background(), testhelper.UniqueWord("missing"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRepo_GetByWords(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()
	a, b := testhelper.UniqueWord("a"), testhelper.UniqueWord("b")
	for _, w := range []string{a, b} {
		if _, err := repo.Create(ctx, sampleEntry(w)); err != nil {
			t.Fatalf("Create %s: %v", w, err)
		}
	}

	got, err := repo.GetByWords(ctx, []string{a, b, testhelper.UniqueWord("none")})
	if err != nil {
		t.Fatalf("GetByWords: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	empty, err := repo.GetByWords(ctx, nil)
	if err != nil || empty != nil {
		t.Errorf("empty input = %v, %v", empty, err)
	}
}

func TestRepo_SetImageURLAndDelete(t *testing.T) {
	t.Parallel()
	repo, _ := newRepo(t)
	ctx := context.Background()
	word := testhelper.UniqueWord("img")

	if err := repo.SetImageURL(ctx, word, "https://x/y.png"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("SetImageURL on missing word: err = %v", err)
	}
	if _, err := repo.Create(ctx, sampleEntry(word)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.SetImageURL(ctx, word, "https://x/y.png"); err != nil {
		t.Fatalf("SetImageURL: %v", err)
	}
	got, _ := repo.GetByWord(ctx, word)
	if got.ImageURL != "https://x/y.png" {
		t.Errorf("ImageURL = %q", got.ImageURL)
	}

	if err := repo.Delete(ctx, word); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByWord(ctx, word); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("after Delete err = %v", err)
	}
}
