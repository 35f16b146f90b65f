package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/service/progress"
)

type progressService interface {
	Get(ctx context.Context, studentID, listID uuid.UUID) (*domain.StudentProgress, error)
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]domain.StudentProgress, error)
	ListForList(ctx context.Context, listID uuid.UUID) ([]domain.StudentProgress, error)
	Dashboard(ctx context.Context, studentID uuid.UUID) (*progress.Dashboard, error)
	Recommendations(ctx context.Context, studentID uuid.UUID, limit int) ([]progress.Recommendation, error)
	SendDigests(ctx context.Context, since time.Time) (int, error)
}

// ProgressHandler serves the teacher dashboard and parent portal.
type ProgressHandler struct {
	progress progressService
	log      *slog.Logger
}

// NewProgressHandler creates a ProgressHandler.
func NewProgressHandler(progress progressService, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{progress: progress, log: logger.With("handler", "progress")}
}

// ForStudent returns a student's progress, on one list when list_id is given.
// GET /api/v1/students/{id}/progress?list_id=...
func (h *ProgressHandler) ForStudent(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if v := r.URL.Query().Get("list_id"); v != "" {
		listID, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid list_id")
			return
		}
		p, err := h.progress.Get(r.Context(), studentID, listID)
		if err != nil {
			writeDomainError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
		return
	}

	records, err := h.progress.ListForStudent(r.Context(), studentID)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// ForList returns every student's progress on a list.
// GET /api/v1/lists/{id}/progress
func (h *ProgressHandler) ForList(w http.ResponseWriter, r *http.Request) {
	listID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	records, err := h.progress.ListForList(r.Context(), listID)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Dashboard returns a student's activity overview.
// GET /api/v1/students/{id}/dashboard
func (h *ProgressHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	d, err := h.progress.Dashboard(r.Context(), studentID)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Recommendations returns the words a student should practice next.
// GET /api/v1/students/{id}/recommendations?limit=20
func (h *ProgressHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	studentID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	recs, err := h.progress.Recommendations(r.Context(), studentID, queryInt(r, "limit", 20))
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
