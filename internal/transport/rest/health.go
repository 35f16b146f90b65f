package rest

import (
	"context"
	"net/http"
	"time"
)

const (
	statusOK       = "ok"
	statusDown     = "down"
	statusDegraded = "degraded"

	probeTimeout = 3 * time.Second
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves /live, /ready and /health.
type HealthHandler struct {
	db      dbPinger
	tracker trackerStats
	version string
}

// NewHealthHandler creates a HealthHandler. tracker may be nil.
func NewHealthHandler(db dbPinger, tracker trackerStats, version string) *HealthHandler {
	return &HealthHandler{db: db, tracker: tracker, version: version}
}

type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Queued  *int   `json:"queued,omitempty"`
	Dropped int64  `json:"dropped,omitempty"`
	Failed  int64  `json:"failed,omitempty"`
}

// Live answers 200 while the process is serving.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: statusOK, Timestamp: time.Now()})
}

// Ready answers 503 until the database is reachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	db := h.probeDB(r.Context())
	writeJSON(w, httpStatus(db.Status), HealthResponse{
		Status:    db.Status,
		Version:   h.version,
		Timestamp: time.Now(),
	})
}

// Health reports every component. Only the database decides the status code;
// a lagging activity queue shows as degraded since lookups keep working.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	db := h.probeDB(r.Context())
	components := map[string]CompStatus{"database": db}
	if h.tracker != nil {
		components["activity"] = activityStatus(h.tracker)
	}

	writeJSON(w, httpStatus(db.Status), HealthResponse{
		Status:     db.Status,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

func (h *HealthHandler) probeDB(ctx context.Context) CompStatus {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		return CompStatus{Status: statusDown}
	}
	return CompStatus{Status: statusOK, Latency: time.Since(start).String()}
}

func activityStatus(t trackerStats) CompStatus {
	st := t.Stats()
	comp := CompStatus{Status: statusOK, Queued: &st.Queued, Dropped: st.Dropped, Failed: st.Failed}
	if st.Dropped > 0 || st.Failed > 0 {
		comp.Status = statusDegraded
	}
	return comp
}

func httpStatus(status string) int {
	if status == statusDown {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
