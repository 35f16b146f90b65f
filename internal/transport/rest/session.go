package rest

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/service/session"
	"github.com/heartmarshall/kiddict-backend/pkg/ctxutil"
)

type sessionStore interface {
	GetOrCreate(id uuid.UUID) *session.Session
}

// currentSession returns the session named by the request, creating it on
// first use. The session middleware guarantees an ID in the context.
func currentSession(store sessionStore, r *http.Request) *session.Session {
	id, _ := ctxutil.SessionIDFromCtx(r.Context())
	return store.GetOrCreate(id)
}

// SessionHandler serves the per-session dictionary state.
type SessionHandler struct {
	sessions sessionStore
	log      *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions sessionStore, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, log: logger.With("handler", "session")}
}

// Snapshot returns the whole session.
// GET /api/v1/session
func (h *SessionHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentSession(h.sessions, r).Snapshot())
}

type gradeRequest struct {
	Grade string `json:"grade"`
}

// SetGrade changes the grade used for future lookups.
// POST /api/v1/session/grade
func (h *SessionHandler) SetGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := domain.ParseGrade(req.Grade)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	sess := currentSession(h.sessions, r)
	sess.SetGrade(g)
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

type tierRequest struct {
	Direction domain.Direction `json:"direction"`
}

// StepTier simplifies or expands the current definition.
// POST /api/v1/session/tier
func (h *SessionHandler) StepTier(w http.ResponseWriter, r *http.Request) {
	var req tierRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := currentSession(h.sessions, r).StepTier(req.Direction)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// TogglePictureMode flips picture mode.
// POST /api/v1/session/picture-mode
func (h *SessionHandler) TogglePictureMode(w http.ResponseWriter, r *http.Request) {
	on := currentSession(h.sessions, r).TogglePictureMode()
	writeJSON(w, http.StatusOK, map[string]bool{"picture_mode": on})
}

type studentRequest struct {
	StudentID uuid.UUID `json:"student_id"`
	Name      string    `json:"name"`
}

// LoginStudent attaches a learner so activity is tracked.
// POST /api/v1/session/student
func (h *SessionHandler) LoginStudent(w http.ResponseWriter, r *http.Request) {
	var req studentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := currentSession(h.sessions, r)
	if err := sess.LoginStudent(domain.Learner{ID: req.StudentID, Name: req.Name}); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// LogoutStudent detaches the learner.
// POST /api/v1/session/logout
func (h *SessionHandler) LogoutStudent(w http.ResponseWriter, r *http.Request) {
	currentSession(h.sessions, r).LogoutStudent()
	w.WriteHeader(http.StatusNoContent)
}

type favoriteRequest struct {
	Word string `json:"word"`
}

// AddFavorite stars a word.
// POST /api/v1/session/favorites
func (h *SessionHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	var req favoriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess := currentSession(h.sessions, r)
	if err := sess.AddFavorite(req.Word); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// RemoveFavorite unstars a word.
// DELETE /api/v1/session/favorites/{word}
func (h *SessionHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	currentSession(h.sessions, r).RemoveFavorite(mux.Vars(r)["word"])
	w.WriteHeader(http.StatusNoContent)
}

// ClearHistory forgets the recent searches.
// DELETE /api/v1/session/history
func (h *SessionHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	currentSession(h.sessions, r).ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}
