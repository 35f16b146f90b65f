package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kiddict-backend/pkg/ctxutil"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func searchRequest(remote string, session *uuid.UUID) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/words/cat", nil)
	req.RemoteAddr = remote
	if session != nil {
		req = req.WithContext(ctxutil.WithSessionID(req.Context(), *session))
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_Burst(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		perMinute int
		retry     string
	}{
		{"small burst", 5, "12"},
		{"one per second", 60, "1"},
		{"slow", 2, "30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rl := NewRateLimiter(time.Minute)
			defer rl.Stop()
			h := rl.Limit(tt.perMinute)(okHandler)

			for i := range tt.perMinute {
				rec := serve(h, searchRequest("1.2.3.4:1234", nil))
				require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
			}

			rec := serve(h, searchRequest("1.2.3.4:1234", nil))
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
			assert.Equal(t, tt.retry, rec.Header().Get("Retry-After"))
			assert.JSONEq(t, `{"error":"too many searches, slow down"}`, rec.Body.String())
		})
	}
}

func TestRateLimiter_Refill(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	h := rl.Limit(60)(okHandler)

	for range 60 {
		serve(h, searchRequest("3.3.3.3:1234", nil))
	}
	require.Equal(t, http.StatusTooManyRequests, serve(h, searchRequest("3.3.3.3:1234", nil)).Code)

	time.Sleep(1100 * time.Millisecond)
	assert.Equal(t, http.StatusOK, serve(h, searchRequest("3.3.3.3:1234", nil)).Code)
}

func TestRateLimiter_Keys(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(time.Minute)
	defer rl.Stop()
	h := rl.Limit(1)(okHandler)

	first, second := uuid.New(), uuid.New()

	// Sessions behind one address are limited separately.
	assert.Equal(t, http.StatusOK, serve(h, searchRequest("4.4.4.4:1234", &first)).Code)
	assert.Equal(t, http.StatusOK, serve(h, searchRequest("4.4.4.4:1234", &second)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, searchRequest("4.4.4.4:1234", &first)).Code)

	// Anonymous clients are keyed by host, not port.
	assert.Equal(t, http.StatusOK, serve(h, searchRequest("5.5.5.5:1000", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, searchRequest("5.5.5.5:2000", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(h, searchRequest("6.6.6.6:1000", nil)).Code)
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(time.Hour)
	defer rl.Stop()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.limiter("ip:1.1.1.1", time.Second, 5)
	now = now.Add(5 * time.Minute)
	rl.limiter("ip:2.2.2.2", time.Second, 5)
	now = now.Add(6 * time.Minute)

	assert.Equal(t, 1, rl.evict())
	assert.Len(t, rl.clients, 1)
	assert.Contains(t, rl.clients, "ip:2.2.2.2")
}
