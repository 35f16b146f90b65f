package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/service/moderation"
	"github.com/heartmarshall/kiddict-backend/internal/service/tracker"
)

type moderationService interface {
	Flag(ctx context.Context, in moderation.FlagInput) (*domain.FlagState, error)
	Unflag(ctx context.Context, word string) error
	Get(ctx context.Context, word string) (*domain.FlagState, error)
	List(ctx context.Context, in moderation.ListFlagsInput) ([]domain.FlagState, error)
	History(ctx context.Context, word string, limit int) ([]domain.AuditRecord, error)
}

type imageReviewService interface {
	ListForReview(ctx context.Context, minConfused, limit, offset int) ([]domain.ImageFeedbackSummary, error)
	Replace(ctx context.Context, word string, panel int, url string) (*domain.WordImage, error)
}

type trackerStats interface {
	Stats() tracker.Stats
}

type digestSender interface {
	SendDigests(ctx context.Context, since time.Time) (int, error)
}

// AdminHandler serves moderation and operations endpoints. Routes are
// mounted behind middleware.RequireAdmin.
type AdminHandler struct {
	moderation moderationService
	images     imageReviewService
	tracker    trackerStats
	digests    digestSender
	log        *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(moderation moderationService, images imageReviewService, tracker trackerStats, digests digestSender, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		moderation: moderation,
		images:     images,
		tracker:    tracker,
		digests:    digests,
		log:        logger.With("handler", "admin"),
	}
}

// ListFlags returns flagged words.
// GET /api/v1/admin/flags?hidden_only=true&limit=50&offset=0
func (h *AdminHandler) ListFlags(w http.ResponseWriter, r *http.Request) {
	hidden, _ := strconv.ParseBool(r.URL.Query().Get("hidden_only"))
	flags, err := h.moderation.List(r.Context(), moderation.ListFlagsInput{
		HiddenOnly: hidden,
		Limit:      queryInt(r, "limit", 50),
		Offset:     queryInt(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, flags)
}

type flagRequest struct {
	Word           string `json:"word"`
	Reason         string `json:"reason"`
	HideFromSearch bool   `json:"hide_from_search"`
}

// Flag marks a word inappropriate for pictures and audio.
// POST /api/v1/admin/flags
func (h *AdminHandler) Flag(w http.ResponseWriter, r *http.Request) {
	var req flagRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	f, err := h.moderation.Flag(r.Context(), moderation.FlagInput(req))
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// GetFlag returns the flag on a word.
// GET /api/v1/admin/flags/{word}
func (h *AdminHandler) GetFlag(w http.ResponseWriter, r *http.Request) {
	f, err := h.moderation.Get(r.Context(), mux.Vars(r)["word"])
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// Unflag clears the flag on a word.
// DELETE /api/v1/admin/flags/{word}
func (h *AdminHandler) Unflag(w http.ResponseWriter, r *http.Request) {
	if err := h.moderation.Unflag(r.Context(), mux.Vars(r)["word"]); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FlagHistory lists moderation changes to a word, newest first.
// GET /api/v1/admin/flags/{word}/history?limit=20
func (h *AdminHandler) FlagHistory(w http.ResponseWriter, r *http.Request) {
	recs, err := h.moderation.History(r.Context(), mux.Vars(r)["word"], queryInt(r, "limit", 20))
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// TrackerStats reports activity queue counters.
// GET /api/v1/admin/tracker
func (h *AdminHandler) TrackerStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Stats())
}

// ImageReview lists words whose pictures confused learners.
// GET /api/v1/admin/images?min_confused=1&limit=50&offset=0
func (h *AdminHandler) ImageReview(w http.ResponseWriter, r *http.Request) {
	items, err := h.images.ListForReview(r.Context(), queryInt(r, "min_confused", 1), queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type replaceImageRequest struct {
	URL string `json:"url"`
}

// ReplaceImage sets one panel of a word to a chosen picture.
// PUT /api/v1/admin/images/{word}/{panel}
func (h *AdminHandler) ReplaceImage(w http.ResponseWriter, r *http.Request) {
	panel, err := strconv.Atoi(mux.Vars(r)["panel"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid panel")
		return
	}
	var req replaceImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	img, err := h.images.Replace(r.Context(), mux.Vars(r)["word"], panel, req.URL)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, img)
}

// SendDigests mails parent digests now, covering the last `days` days.
// POST /api/v1/admin/digests?days=7
func (h *AdminHandler) SendDigests(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)
	if days <= 0 || days > 90 {
		writeError(w, http.StatusBadRequest, "days must be between 1 and 90")
		return
	}
	n, err := h.digests.SendDigests(r.Context(), time.Now().AddDate(0, 0, -days))
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": n})
}
