package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/service/wordlist"
)

const maxUploadBytes = 5 << 20

type wordListService interface {
	Create(ctx context.Context, in wordlist.CreateInput) (*domain.WordList, error)
	ImportSpreadsheet(ctx context.Context, in wordlist.ImportInput) (*domain.WordList, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.WordList, error)
	GetByShareCode(ctx context.Context, code string) (*domain.WordList, error)
	Join(ctx context.Context, in wordlist.JoinInput) (*domain.WordList, error)
	ListForTeacher(ctx context.Context, email string, limit, offset int) ([]domain.WordList, error)
	ListForStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]domain.WordList, error)
	Members(ctx context.Context, listID uuid.UUID) ([]domain.ListMembership, error)
	AddWords(ctx context.Context, listID uuid.UUID, words []string) (int, error)
	Delete(ctx context.Context, listID uuid.UUID) error
}

// ListHandler serves teacher word lists.
type ListHandler struct {
	lists wordListService
	log   *slog.Logger
}

// NewListHandler creates a ListHandler.
func NewListHandler(lists wordListService, logger *slog.Logger) *ListHandler {
	return &ListHandler{lists: lists, log: logger.With("handler", "lists")}
}

type createListRequest struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	GradeBand    domain.GradeBand `json:"grade_band"`
	TeacherName  string           `json:"teacher_name"`
	TeacherEmail string           `json:"teacher_email"`
	Words        []string         `json:"words"`
}

func (req createListRequest) input() wordlist.CreateInput {
	return wordlist.CreateInput(req)
}

// Create stores a new list and returns it with its share code.
// POST /api/v1/lists
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	list, err := h.lists.Create(r.Context(), req.input())
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

// Import creates a list from an uploaded workbook. The list fields come as
// form values; extra words may be given one per line in "words".
// POST /api/v1/lists/import (multipart/form-data)
func (h *ListHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	in := wordlist.ImportInput{
		CreateInput: wordlist.CreateInput{
			Title:        r.FormValue("title"),
			Description:  r.FormValue("description"),
			GradeBand:    domain.GradeBand(r.FormValue("grade_band")),
			TeacherName:  r.FormValue("teacher_name"),
			TeacherEmail: r.FormValue("teacher_email"),
			Words:        splitWords(r.FormValue("words")),
		},
		File: file,
	}

	list, err := h.lists.ImportSpreadsheet(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == ',' })
}

// Get returns a list with its words.
// GET /api/v1/lists/{id}
func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.lists.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetByCode looks a list up by share code.
// GET /api/v1/lists/code/{code}
func (h *ListHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	list, err := h.lists.GetByShareCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type joinRequest struct {
	Code        string    `json:"code"`
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	ParentEmail string    `json:"parent_email"`
}

// Join adds a student to the list behind a share code.
// POST /api/v1/lists/join
func (h *ListHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	list, err := h.lists.Join(r.Context(), wordlist.JoinInput(req))
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ForTeacher lists the lists created under an e-mail address.
// GET /api/v1/teachers/lists?email=...&limit=50&offset=0
func (h *ListHandler) ForTeacher(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.ListForTeacher(r.Context(), r.URL.Query().Get("email"), queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

// ForStudent lists the lists a student joined.
// GET /api/v1/students/{id}/lists
func (h *ListHandler) ForStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	lists, err := h.lists.ListForStudent(r.Context(), id, queryInt(r, "limit", 50), queryInt(r, "offset", 0))
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

// Members lists the students on a list.
// GET /api/v1/lists/{id}/members
func (h *ListHandler) Members(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	members, err := h.lists.Members(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

type addWordsRequest struct {
	Words []string `json:"words"`
}

// AddWords appends words to a list.
// POST /api/v1/lists/{id}/words
func (h *ListHandler) AddWords(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req addWordsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.lists.AddWords(r.Context(), id, req.Words)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": n})
}

// Delete removes a list.
// DELETE /api/v1/lists/{id}
func (h *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.lists.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
