package quiz

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

const maxCustomWords = 200

// Quiz types recorded with results and attempts.
const (
	TypeGlobal = "vocabulary"
	TypeList   = "word_list"
	TypeCustom = "custom"
)

// StartInput holds the parameters for a new quiz. The pool is the teacher
// list when ListID is set, else Words when given, else the built-in words.
type StartInput struct {
	Grade   domain.GradeLabel
	Tier    domain.Tier
	ListID  *uuid.UUID
	Words   []string
	Size    int
	Learner *domain.Learner
}

// Validate checks all fields and collects all errors.
func (i *StartInput) Validate() error {
	var errs []domain.FieldError

	if i.Tier != "" && !i.Tier.IsValid() {
		errs = append(errs, domain.FieldError{Field: "tier", Message: "must be simple, medium or advanced"})
	}
	if i.Size < 0 || i.Size > 50 {
		errs = append(errs, domain.FieldError{Field: "size", Message: "must be between 1 and 50"})
	}
	if i.ListID != nil && len(i.Words) > 0 {
		errs = append(errs, domain.FieldError{Field: "words", Message: "cannot be combined with list_id"})
	}
	if len(i.Words) > maxCustomWords {
		errs = append(errs, domain.FieldError{Field: "words", Message: fmt.Sprintf("too many (max %d)", maxCustomWords)})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func (i *StartInput) quizType() string {
	switch {
	case i.ListID != nil:
		return TypeList
	case len(i.Words) > 0:
		return TypeCustom
	default:
		return TypeGlobal
	}
}

func (i *StartInput) tier() domain.Tier {
	if i.Tier != "" {
		return i.Tier
	}
	return domain.TierForGrade(i.Grade)
}

// AnswerInput is one click on an option.
type AnswerInput struct {
	QuizID        uuid.UUID
	QuestionIndex int
	Option        string
}

func (i *AnswerInput) Validate() error {
	if i.QuestionIndex < 0 {
		return domain.NewValidationError("question_index", "must not be negative")
	}
	if i.Option == "" {
		return domain.NewValidationError("option", "required")
	}
	return nil
}
