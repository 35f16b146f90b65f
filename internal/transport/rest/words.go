package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/service/dictionary"
	"github.com/heartmarshall/kiddict-backend/internal/service/session"
	"github.com/heartmarshall/kiddict-backend/internal/service/speech"
)

type dictionaryService interface {
	Resolve(ctx context.Context, in dictionary.ResolveInput) (*dictionary.DisplayWord, error)
	Suggest(term string) (string, bool)
	Examples() map[domain.Category][]string
}

type searchRecorder interface {
	RecordSearch(ctx context.Context, learner *domain.Learner, word string, elapsed time.Duration)
}

type imageService interface {
	GetImages(ctx context.Context, word string, visual domain.Visual) ([]domain.WordImage, error)
	Feedback(ctx context.Context, fb domain.PictureFeedback) error
}

type speechService interface {
	Speak(ctx context.Context, sessionID uuid.UUID, word string) (*speech.Audio, error)
	Stop(sessionID uuid.UUID)
}

// WordHandler serves dictionary lookups and the media attached to words.
type WordHandler struct {
	dict     dictionaryService
	sessions sessionStore
	tracker  searchRecorder
	images   imageService
	speech   speechService
	log      *slog.Logger
}

// NewWordHandler creates a WordHandler.
func NewWordHandler(dict dictionaryService, sessions sessionStore, tracker searchRecorder, images imageService, speech speechService, logger *slog.Logger) *WordHandler {
	return &WordHandler{
		dict:     dict,
		sessions: sessions,
		tracker:  tracker,
		images:   images,
		speech:   speech,
		log:      logger.With("handler", "words"),
	}
}

type lookupResponse struct {
	Word  *session.Presentation `json:"word"`
	Stale bool                  `json:"stale"`
}

// Lookup resolves a term and makes it the session's current word.
// GET /api/v1/words/{term}?grade=3
func (h *WordHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(h.sessions, r)
	if g := r.URL.Query().Get("grade"); g != "" {
		grade, err := domain.ParseGrade(g)
		if err != nil {
			writeDomainError(w, r, h.log, err)
			return
		}
		sess.SetGrade(grade)
	}

	term := mux.Vars(r)["term"]
	if domain.NormalizeText(term) == "" {
		writeError(w, http.StatusBadRequest, "term is required")
		return
	}
	seq := sess.BeginSearch()
	start := time.Now()

	dw, err := h.dict.Resolve(r.Context(), dictionary.ResolveInput{Term: term, Grade: sess.Grade()})
	if err != nil {
		var lerr *domain.LookupError
		if errors.As(err, &lerr) {
			sess.FailSearch(seq, lerr)
		}
		writeDomainError(w, r, h.log, err)
		return
	}
	applied := sess.CompleteSearch(seq, dw)
	if applied {
		h.speech.Stop(sess.ID())
		h.tracker.RecordSearch(r.Context(), sess.Learner(), dw.Entry.Word, time.Since(start))
	}

	resp := lookupResponse{Stale: !applied}
	if p, ok := sess.Presentation(); ok {
		resp.Word = &p
	}
	writeJSON(w, http.StatusOK, resp)
}

// Suggest returns the closest known spelling for a term.
// GET /api/v1/words/{term}/suggest
func (h *WordHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	s, ok := h.dict.Suggest(mux.Vars(r)["term"])
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"suggestion": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"suggestion": s})
}

// Examples lists example words per category for the home screen.
// GET /api/v1/examples
func (h *WordHandler) Examples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dict.Examples())
}

type imagesResponse struct {
	Word   string             `json:"word"`
	Images []domain.WordImage `json:"images"`
}

// Images returns the illustrations for a word, generating them on first use.
// Flagged words get a placeholder instead.
// GET /api/v1/words/{term}/images
func (h *WordHandler) Images(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(h.sessions, r)

	dw, err := h.dict.Resolve(r.Context(), dictionary.ResolveInput{Term: mux.Vars(r)["term"], Grade: sess.Grade()})
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	if dw == nil {
		writeError(w, http.StatusBadRequest, "term is required")
		return
	}
	if !dw.ShowVisual {
		writeJSON(w, http.StatusNotFound, map[string]string{"placeholder": "pictures not available"})
		return
	}

	images, err := h.images.GetImages(r.Context(), dw.Entry.Word, dw.Entry.VisualOrDefault())
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, imagesResponse{Word: dw.Entry.Word, Images: images})
}

type feedbackRequest struct {
	Panel    int    `json:"panel"`
	ImageURL string `json:"image_url"`
	Helpful  bool   `json:"helpful"`
}

// ImageFeedback records whether a picture helped.
// POST /api/v1/words/{term}/images/feedback
func (h *WordHandler) ImageFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fb := domain.PictureFeedback{
		Word:     mux.Vars(r)["term"],
		Panel:    req.Panel,
		ImageURL: req.ImageURL,
		Helpful:  req.Helpful,
	}
	if l := currentSession(h.sessions, r).Learner(); l != nil {
		fb.StudentID = &l.ID
	}
	if err := h.images.Feedback(r.Context(), fb); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Speech reads a word aloud. A newer request in the same session cancels
// this one.
// GET /api/v1/words/{term}/speech
func (h *WordHandler) Speech(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(h.sessions, r)

	audio, err := h.speech.Speak(r.Context(), sess.ID(), mux.Vars(r)["term"])
	if err != nil {
		if errors.Is(err, speech.ErrSuperseded) {
			writeError(w, http.StatusConflict, "superseded by a newer request")
			return
		}
		writeDomainError(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Type", audio.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio.Data)))
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)
	w.Write(audio.Data) //nolint:errcheck
}
