package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kiddict-backend/internal/service/tracker"
)

type dbPingerMock struct {
	err error
}

func (m *dbPingerMock) Ping(_ context.Context) error { return m.err }

type trackerStatsMock struct {
	stats tracker.Stats
}

func (m *trackerStatsMock) Stats() tracker.Stats { return m.stats }

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthHandler_Probes(t *testing.T) {
	t.Parallel()

	down := errors.New("connection refused")
	tests := []struct {
		name       string
		path       string
		dbErr      error
		wantCode   int
		wantStatus string
	}{
		{"live ignores db", "/live", down, http.StatusOK, "ok"},
		{"ready db up", "/ready", nil, http.StatusOK, "ok"},
		{"ready db down", "/ready", down, http.StatusServiceUnavailable, "down"},
		{"health db up", "/health", nil, http.StatusOK, "ok"},
		{"health db down", "/health", down, http.StatusServiceUnavailable, "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthHandler(&dbPingerMock{err: tt.dbErr}, nil, "v1.0.0")
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)

			switch tt.path {
			case "/live":
				h.Live(rec, req)
			case "/ready":
				h.Ready(rec, req)
			default:
				h.Health(rec, req)
			}

			assert.Equal(t, tt.wantCode, rec.Code)
			resp := decodeHealth(t, rec)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.False(t, resp.Timestamp.IsZero())
		})
	}
}

func TestHealthHandler_DatabaseComponent(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&dbPingerMock{}, nil, "v1.0.0")
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	resp := decodeHealth(t, rec)
	assert.Equal(t, "v1.0.0", resp.Version)
	require.Contains(t, resp.Components, "database")
	assert.Equal(t, "ok", resp.Components["database"].Status)
	assert.NotEmpty(t, resp.Components["database"].Latency)
	assert.NotContains(t, resp.Components, "activity")
}

func TestHealthHandler_ActivityQueue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stats tracker.Stats
		want  string
	}{
		{"healthy", tracker.Stats{Queued: 2}, "ok"},
		{"dropped", tracker.Stats{Queued: 3, Dropped: 1}, "degraded"},
		{"failed writes", tracker.Stats{Failed: 4}, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthHandler(&dbPingerMock{}, &trackerStatsMock{stats: tt.stats}, "v1.0.0")
			rec := httptest.NewRecorder()
			h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			// A lagging queue never fails the probe.
			assert.Equal(t, http.StatusOK, rec.Code)
			comp := decodeHealth(t, rec).Components["activity"]
			assert.Equal(t, tt.want, comp.Status)
			require.NotNil(t, comp.Queued)
			assert.Equal(t, tt.stats.Queued, *comp.Queued)
		})
	}
}
