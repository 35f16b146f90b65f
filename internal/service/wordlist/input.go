package wordlist

import (
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// CreateInput holds the parameters for a new list.
type CreateInput struct {
	Title        string
	Description  string
	GradeBand    domain.GradeBand
	TeacherName  string
	TeacherEmail string
	Words        []string
}

// Validate checks all fields and collects all errors. maxWords bounds the
// cleaned word count.
func (i *CreateInput) Validate(maxWords int) error {
	var errs []domain.FieldError

	i.Title = strings.TrimSpace(i.Title)
	i.TeacherName = strings.TrimSpace(i.TeacherName)
	i.TeacherEmail = strings.TrimSpace(i.TeacherEmail)
	i.Words = domain.CleanWords(i.Words)

	if i.Title == "" {
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	}
	if len(i.Title) > 200 {
		errs = append(errs, domain.FieldError{Field: "title", Message: "too long (max 200)"})
	}
	if len(i.Description) > 2000 {
		errs = append(errs, domain.FieldError{Field: "description", Message: "too long (max 2000)"})
	}
	if i.GradeBand == "" {
		i.GradeBand = domain.GradeBandK2
	}
	if !i.GradeBand.IsValid() {
		errs = append(errs, domain.FieldError{Field: "grade_band", Message: "must be K-2, 3-5 or 6-8"})
	}
	if i.TeacherName == "" {
		errs = append(errs, domain.FieldError{Field: "teacher_name", Message: "required"})
	}
	if _, err := mail.ParseAddress(i.TeacherEmail); err != nil {
		errs = append(errs, domain.FieldError{Field: "teacher_email", Message: "invalid email"})
	}
	if len(i.Words) == 0 {
		errs = append(errs, domain.FieldError{Field: "words", Message: "at least one word required"})
	}
	if len(i.Words) > maxWords {
		errs = append(errs, domain.FieldError{Field: "words", Message: fmt.Sprintf("too many (max %d)", maxWords)})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// ImportInput creates a list from a spreadsheet upload.
type ImportInput struct {
	CreateInput
	File io.Reader
}

// JoinInput attaches a student to a list.
type JoinInput struct {
	Code        string
	StudentID   uuid.UUID
	StudentName string
	ParentEmail string
}

// Validate checks all fields and collects all errors.
func (i *JoinInput) Validate() error {
	var errs []domain.FieldError

	i.Code = domain.NormalizeShareCode(i.Code)
	i.StudentName = strings.TrimSpace(i.StudentName)
	i.ParentEmail = strings.TrimSpace(i.ParentEmail)

	if !domain.ValidShareCode(i.Code) {
		errs = append(errs, domain.FieldError{Field: "code", Message: fmt.Sprintf("must be %d letters or digits", domain.ShareCodeLength)})
	}
	if i.StudentID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "student_id", Message: "required"})
	}
	if i.ParentEmail != "" {
		if _, err := mail.ParseAddress(i.ParentEmail); err != nil {
			errs = append(errs, domain.FieldError{Field: "parent_email", Message: "invalid email"})
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
