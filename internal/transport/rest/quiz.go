package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/service/quiz"
)

type quizService interface {
	Start(ctx context.Context, in quiz.StartInput) (*quiz.View, error)
	Get(ctx context.Context, id uuid.UUID) (*quiz.View, error)
	Answer(ctx context.Context, in quiz.AnswerInput) (*quiz.AnswerResult, error)
	Restart(ctx context.Context, id uuid.UUID) (*quiz.View, error)
}

// QuizHandler serves vocabulary quizzes.
type QuizHandler struct {
	quizzes  quizService
	sessions sessionStore
	log      *slog.Logger
}

// NewQuizHandler creates a QuizHandler.
func NewQuizHandler(quizzes quizService, sessions sessionStore, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{quizzes: quizzes, sessions: sessions, log: logger.With("handler", "quiz")}
}

type startQuizRequest struct {
	Grade  *domain.GradeLabel `json:"grade"`
	Tier   domain.Tier        `json:"tier"`
	ListID *uuid.UUID         `json:"list_id"`
	Words  []string           `json:"words"`
	Size   int                `json:"size"`
}

// Start builds a new quiz. Grade defaults to the session grade and the
// session's student, if any, is credited with the result.
// POST /api/v1/quizzes
func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := currentSession(h.sessions, r)

	in := quiz.StartInput{
		Grade:   sess.Grade(),
		Tier:    req.Tier,
		ListID:  req.ListID,
		Words:   req.Words,
		Size:    req.Size,
		Learner: sess.Learner(),
	}
	if req.Grade != nil {
		in.Grade = *req.Grade
	}

	v, err := h.quizzes.Start(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// Get returns the quiz, applying any due advance.
// GET /api/v1/quizzes/{id}
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	v, err := h.quizzes.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type answerRequest struct {
	QuestionIndex int    `json:"question_index"`
	Option        string `json:"option"`
}

// Answer records a click on an option. Only the first answer counts.
// POST /api/v1/quizzes/{id}/answers
func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.quizzes.Answer(r.Context(), quiz.AnswerInput{QuizID: id, QuestionIndex: req.QuestionIndex, Option: req.Option})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Restart draws a fresh question set for the same quiz.
// POST /api/v1/quizzes/{id}/restart
func (h *QuizHandler) Restart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	v, err := h.quizzes.Restart(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
