package image_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/image"
	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

func newRepo(t *testing.T) *image.Repo {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	return image.New(testhelper.SetupTestDB(t))
}

func TestRepo_SaveAllGetDelete(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()
	word := testhelper.UniqueWord("run")

	got, err := repo.GetByWord(ctx, word)
	if err != nil || len(got) != 0 {
		t.Fatalf("GetByWord on empty = %v, %v", got, err)
	}

	images := []domain.WordImage{
		{Word: word, Panel: 1, URL: "https://img/1.png", Source: "pollinations"},
		{Word: word, Panel: 0, URL: "https://img/0.png", Source: "pollinations"},
	}
	if err := repo.SaveAll(ctx, images); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	got, err = repo.GetByWord(ctx, word)
	if err != nil {
		t.Fatalf("GetByWord: %v", err)
	}
	if len(got) != 2 || got[0].Panel != 0 || got[1].URL != "https://img/1.png" {
		t.Fatalf("GetByWord = %+v", got)
	}

	// Replacing a panel overwrites its URL.
	if err := repo.SaveAll(ctx, []domain.WordImage{{Word: word, Panel: 0, URL: "https://img/new.png", Source: "admin"}}); err != nil {
		t.Fatalf("SaveAll replace: %v", err)
	}
	got, _ = repo.GetByWord(ctx, word)
	if got[0].URL != "https://img/new.png" || got[0].Source != "admin" {
		t.Errorf("replaced panel = %+v", got[0])
	}

	n, err := repo.DeleteByWord(ctx, word)
	if err != nil || n != 2 {
		t.Fatalf("DeleteByWord = %d, %v", n, err)
	}
}

func TestRepo_FeedbackReviewQueue(t *testing.T) {
	t.Parallel()
	repo := newRepo(t)
	ctx := context.Background()
	word := testhelper.UniqueWord("fb")
	student := uuid.New()

	for _, helpful := range []bool{false, false, true} {
		fb := &domain.PictureFeedback{Word: word, ImageURL: "https://img/0.png", Helpful: helpful, StudentID: &student}
		if err := repo.AddFeedback(ctx, fb); err != nil {
			t.Fatalf("AddFeedback: %v", err)
		}
		if fb.ID == uuid.Nil {
			t.Error("AddFeedback should assign an ID")
		}
	}

	queue, err := repo.ReviewQueue(ctx, 2, 500, 0)
	if err != nil {
		t.Fatalf("ReviewQueue: %v", err)
	}
	var found bool
	for _, s := range queue {
		if s.Word == word {
			found = true
			if s.Confused != 2 || s.Helpful != 1 {
				t.Errorf("summary = %+v, want 2 confused 1 helpful", s)
			}
		}
	}
	if !found {
		t.Errorf("word %q missing from review queue", word)
	}
}
