package wordlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/pkg/ctxutil"
)

// ErrShareCodeExhausted is returned when every generated share code collided.
var ErrShareCodeExhausted = errors.New("could not allocate a unique share code")

// Create stores a new list with a fresh share code. Codes that collide with
// an existing list are regenerated up to the configured number of attempts.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.WordList, error) {
	if err := in.Validate(s.cfg.MaxWords); err != nil {
		return nil, err
	}

	list := &domain.WordList{
		ID:           uuid.New(),
		Title:        in.Title,
		Description:  in.Description,
		GradeBand:    in.GradeBand,
		TeacherName:  in.TeacherName,
		TeacherEmail: in.TeacherEmail,
		Words:        in.Words,
	}
	if uid, ok := ctxutil.UserIDFromCtx(ctx); ok {
		list.TeacherID = &uid
	}

	for attempt := 1; attempt <= s.cfg.ShareCodeAttempts; attempt++ {
		code, err := domain.NewShareCode(s.codeSrc)
		if err != nil {
			return nil, err
		}
		list.ShareCode = code

		err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
			return s.lists.Create(ctx, list)
		})
		if err == nil {
			s.log.InfoContext(ctx, "word list created",
				slog.String("list_id", list.ID.String()),
				slog.String("share_code", code),
				slog.Int("words", len(list.Words)))
			return list, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("create word list: %w", err)
		}
		s.log.WarnContext(ctx, "share code collision, regenerating", slog.Int("attempt", attempt))
	}
	return nil, ErrShareCodeExhausted
}

// ImportSpreadsheet creates a list from the words in an uploaded workbook.
func (s *Service) ImportSpreadsheet(ctx context.Context, in ImportInput) (*domain.WordList, error) {
	if in.File == nil {
		return nil, domain.NewValidationError("file", "required")
	}
	words, err := s.parse(in.File)
	if err != nil {
		return nil, domain.NewValidationError("file", err.Error())
	}
	in.CreateInput.Words = append(in.CreateInput.Words, words...)
	return s.Create(ctx, in.CreateInput)
}

// Get returns a list with its words.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.WordList, error) {
	return s.lists.GetByID(ctx, id)
}

// GetByShareCode looks a list up by code, ignoring case and padding.
func (s *Service) GetByShareCode(ctx context.Context, code string) (*domain.WordList, error) {
	code = domain.NormalizeShareCode(code)
	if !domain.ValidShareCode(code) {
		return nil, domain.NewValidationError("code", "invalid share code")
	}
	return s.lists.GetByShareCode(ctx, code)
}

// Join records the student as a member of the list behind code.
func (s *Service) Join(ctx context.Context, in JoinInput) (*domain.WordList, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	list, err := s.lists.GetByShareCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}

	if _, err := s.lists.AddMember(ctx, domain.ListMembership{
		ListID:      list.ID,
		StudentID:   in.StudentID,
		StudentName: in.StudentName,
		ParentEmail: in.ParentEmail,
	}); err != nil {
		return nil, fmt.Errorf("join word list: %w", err)
	}

	s.log.InfoContext(ctx, "student joined list",
		slog.String("list_id", list.ID.String()),
		slog.String("student_id", in.StudentID.String()))
	return list, nil
}

// ListForTeacher returns the lists created under email.
func (s *Service) ListForTeacher(ctx context.Context, email string, limit, offset int) ([]domain.WordList, error) {
	if email == "" {
		return nil, domain.NewValidationError("teacher_email", "required")
	}
	return s.lists.List(ctx, domain.WordListFilter{TeacherEmail: email, Limit: limit, Offset: offset})
}

// ListForStudent returns the lists a student has joined.
func (s *Service) ListForStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]domain.WordList, error) {
	return s.lists.List(ctx, domain.WordListFilter{StudentID: &studentID, Limit: limit, Offset: offset})
}

// Members returns the students on a list. Owner or admin only.
func (s *Service) Members(ctx context.Context, listID uuid.UUID) ([]domain.ListMembership, error) {
	if _, err := s.owned(ctx, listID); err != nil {
		return nil, err
	}
	return s.lists.Members(ctx, listID)
}

// AddWords appends words to a list, keeping the list under the word limit.
// Owner or admin only.
func (s *Service) AddWords(ctx context.Context, listID uuid.UUID, words []string) (int, error) {
	words = domain.CleanWords(words)
	if len(words) == 0 {
		return 0, domain.NewValidationError("words", "at least one word required")
	}
	list, err := s.owned(ctx, listID)
	if err != nil {
		return 0, err
	}
	if len(list.Words)+len(words) > s.cfg.MaxWords {
		return 0, domain.NewValidationError("words", fmt.Sprintf("list would exceed %d words", s.cfg.MaxWords))
	}

	n, err := s.lists.AddWords(ctx, listID, words)
	if err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "words added to list", slog.String("list_id", listID.String()), slog.Int("added", n))
	return n, nil
}

// Delete removes a list. Owner or admin only.
func (s *Service) Delete(ctx context.Context, listID uuid.UUID) error {
	if _, err := s.owned(ctx, listID); err != nil {
		return err
	}
	if err := s.lists.Delete(ctx, listID); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "word list deleted", slog.String("list_id", listID.String()))
	return nil
}

func (s *Service) owned(ctx context.Context, listID uuid.UUID) (*domain.WordList, error) {
	list, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if ctxutil.IsAdminCtx(ctx) {
		return list, nil
	}
	uid, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if list.TeacherID == nil || *list.TeacherID != uid {
		return nil, domain.ErrForbidden
	}
	return list, nil
}
