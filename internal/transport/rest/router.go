package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/heartmarshall/kiddict-backend/internal/transport/middleware"
)

const uuidPattern = "[0-9a-fA-F-]{36}"

// Handlers groups every handler mounted by NewRouter.
type Handlers struct {
	Health   *HealthHandler
	Words    *WordHandler
	Session  *SessionHandler
	Quiz     *QuizHandler
	Lists    *ListHandler
	Progress *ProgressHandler
	Billing  *BillingHandler
	Admin    *AdminHandler
}

// NewRouter mounts the API under /api/v1. searchLimit wraps the lookup
// route; pass nil to leave it unlimited.
func NewRouter(h Handlers, searchLimit middleware.Middleware) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	r.HandleFunc("/live", h.Health.Live).Methods(http.MethodGet)
	r.HandleFunc("/ready", h.Health.Ready).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	lookup := http.Handler(http.HandlerFunc(h.Words.Lookup))
	if searchLimit != nil {
		lookup = searchLimit(lookup)
	}
	api.HandleFunc("/examples", h.Words.Examples).Methods(http.MethodGet)
	api.HandleFunc("/words/{term}/suggest", h.Words.Suggest).Methods(http.MethodGet)
	api.HandleFunc("/words/{term}/images", h.Words.Images).Methods(http.MethodGet)
	api.HandleFunc("/words/{term}/images/feedback", h.Words.ImageFeedback).Methods(http.MethodPost)
	api.HandleFunc("/words/{term}/speech", h.Words.Speech).Methods(http.MethodGet)
	api.Handle("/words/{term}", lookup).Methods(http.MethodGet)

	api.HandleFunc("/session", h.Session.Snapshot).Methods(http.MethodGet)
	api.HandleFunc("/session/grade", h.Session.SetGrade).Methods(http.MethodPost)
	api.HandleFunc("/session/tier", h.Session.StepTier).Methods(http.MethodPost)
	api.HandleFunc("/session/picture-mode", h.Session.TogglePictureMode).Methods(http.MethodPost)
	api.HandleFunc("/session/student", h.Session.LoginStudent).Methods(http.MethodPost)
	api.HandleFunc("/session/logout", h.Session.LogoutStudent).Methods(http.MethodPost)
	api.HandleFunc("/session/favorites", h.Session.AddFavorite).Methods(http.MethodPost)
	api.HandleFunc("/session/favorites/{word}", h.Session.RemoveFavorite).Methods(http.MethodDelete)
	api.HandleFunc("/session/history", h.Session.ClearHistory).Methods(http.MethodDelete)

	api.HandleFunc("/quizzes", h.Quiz.Start).Methods(http.MethodPost)
	api.HandleFunc("/quizzes/{id:"+uuidPattern+"}", h.Quiz.Get).Methods(http.MethodGet)
	api.HandleFunc("/quizzes/{id:"+uuidPattern+"}/answers", h.Quiz.Answer).Methods(http.MethodPost)
	api.HandleFunc("/quizzes/{id:"+uuidPattern+"}/restart", h.Quiz.Restart).Methods(http.MethodPost)

	api.HandleFunc("/lists", h.Lists.Create).Methods(http.MethodPost)
	api.HandleFunc("/lists/import", h.Lists.Import).Methods(http.MethodPost)
	api.HandleFunc("/lists/join", h.Lists.Join).Methods(http.MethodPost)
	api.HandleFunc("/lists/code/{code}", h.Lists.GetByCode).Methods(http.MethodGet)
	api.HandleFunc("/lists/{id:"+uuidPattern+"}", h.Lists.Get).Methods(http.MethodGet)
	api.HandleFunc("/lists/{id:"+uuidPattern+"}", h.Lists.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/lists/{id:"+uuidPattern+"}/members", h.Lists.Members).Methods(http.MethodGet)
	api.HandleFunc("/lists/{id:"+uuidPattern+"}/words", h.Lists.AddWords).Methods(http.MethodPost)
	api.HandleFunc("/lists/{id:"+uuidPattern+"}/progress", h.Progress.ForList).Methods(http.MethodGet)
	api.HandleFunc("/teachers/lists", h.Lists.ForTeacher).Methods(http.MethodGet)

	api.HandleFunc("/students/{id:"+uuidPattern+"}/lists", h.Lists.ForStudent).Methods(http.MethodGet)
	api.HandleFunc("/students/{id:"+uuidPattern+"}/progress", h.Progress.ForStudent).Methods(http.MethodGet)
	api.HandleFunc("/students/{id:"+uuidPattern+"}/dashboard", h.Progress.Dashboard).Methods(http.MethodGet)
	api.HandleFunc("/students/{id:"+uuidPattern+"}/recommendations", h.Progress.Recommendations).Methods(http.MethodGet)

	api.HandleFunc("/plans", h.Billing.Plans).Methods(http.MethodGet)
	api.HandleFunc("/subscriptions", h.Billing.Subscribe).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(mux.MiddlewareFunc(middleware.RequireAdmin))
	admin.HandleFunc("/flags", h.Admin.ListFlags).Methods(http.MethodGet)
	admin.HandleFunc("/flags", h.Admin.Flag).Methods(http.MethodPost)
	admin.HandleFunc("/flags/{word}", h.Admin.GetFlag).Methods(http.MethodGet)
	admin.HandleFunc("/flags/{word}", h.Admin.Unflag).Methods(http.MethodDelete)
	admin.HandleFunc("/flags/{word}/history", h.Admin.FlagHistory).Methods(http.MethodGet)
	admin.HandleFunc("/tracker", h.Admin.TrackerStats).Methods(http.MethodGet)
	admin.HandleFunc("/images", h.Admin.ImageReview).Methods(http.MethodGet)
	admin.HandleFunc("/images/{word}/{panel:[0-9]+}", h.Admin.ReplaceImage).Methods(http.MethodPut)
	admin.HandleFunc("/digests", h.Admin.SendDigests).Methods(http.MethodPost)

	return r
}
