//go:build e2e

package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kiddict-backend/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/kiddict-backend/internal/auth"
	"github.com/heartmarshall/kiddict-backend/internal/config"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/transport/middleware"
)

const (
	testJWTSecret = "test-secret-at-least-32-chars-long!!"
	testJWTIssuer = "kiddict-test"
)

// testServer wraps the full HTTP stack backed by a real PostgreSQL container.
type testServer struct {
	URL    string
	Client *http.Client
	jwt    *auth.JWTManager
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// freeDictStub answers "apple" and 404s everything else.
func freeDictStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/apple" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"word":"apple","phonetics":[{"text":"/ˈæp.əl/"}],"meanings":[{"partOfSpeech":"noun","definitions":[{"definition":"A round fruit that grows on trees.","example":"I ate a red apple."}]}]}]`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(freeDictURL string) *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{JWTSecret: testJWTSecret, JWTIssuer: testJWTIssuer, AccessTokenTTL: 15 * time.Minute},
		Dictionary: config.DictionaryConfig{
			FreeDictURL:   freeDictURL,
			LookupTimeout: 2 * time.Second,
			DefaultGrade:  "3",
			HistoryLimit:  10,
		},
		Images:   config.ImagesConfig{Timeout: time.Second, SkipVerify: true},
		Quiz:     config.QuizConfig{QuestionCount: 4, TTL: time.Hour, MaxListWords: 50},
		Session:  config.SessionConfig{IdleTTL: time.Hour},
		Tracker:  config.TrackerConfig{QueueSize: 16, Workers: 1, SinkTimeout: 2 * time.Second, RetentionDays: 30},
		WordList: config.WordListConfig{MaxWords: 50, ShareCodeAttempts: 5},
		CORS: config.CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET,POST,DELETE,OPTIONS",
			AllowedHeaders: "Authorization,Content-Type,X-Session-Id",
			MaxAge:         86400,
		},
	}
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	if testing.Short() {
		t.Skip("e2e test")
	}

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	cfg := testConfig(freeDictStub(t).URL)

	application, err := newApplication(t.Context(), cfg, pool, logger)
	require.NoError(t, err)
	t.Cleanup(application.Close)

	srv := httptest.NewServer(application.handler)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		jwt:    auth.NewJWTManager(testJWTSecret, testJWTIssuer, 15*time.Minute),
	}
}

func (ts *testServer) token(t *testing.T, role domain.Role) string {
	t.Helper()
	tok, err := ts.jwt.GenerateAccessToken(uuid.New(), role)
	require.NoError(t, err)
	return tok
}

// do sends a request with an optional JSON body, session and bearer token,
// and decodes a JSON response into out when out is non-nil.
func (ts *testServer) do(t *testing.T, method, path, sessionID, token string, body, out any) int {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestE2E_Health(t *testing.T) {
	ts := setupTestServer(t)

	var body map[string]any
	status := ts.do(t, http.MethodGet, "/health", "", "", nil, &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestE2E_LookupAndHistory(t *testing.T) {
	ts := setupTestServer(t)
	sessionID := uuid.NewString()

	var found struct {
		Word struct {
			Word string `json:"word"`
			Text string `json:"text"`
		} `json:"word"`
	}
	status := ts.do(t, http.MethodGet, "/api/v1/words/Apple", sessionID, "", nil, &found)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "apple", found.Word.Word)
	assert.NotEmpty(t, found.Word.Text)

	// Second lookup is served from the definition cache.
	status = ts.do(t, http.MethodGet, "/api/v1/words/apple", sessionID, "", nil, nil)
	assert.Equal(t, http.StatusOK, status)

	var missing map[string]any
	status = ts.do(t, http.MethodGet, "/api/v1/words/zzqxv", sessionID, "", nil, &missing)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, false, missing["transient"])

	var snap struct {
		History []string `json:"history"`
	}
	status = ts.do(t, http.MethodGet, "/api/v1/session", sessionID, "", nil, &snap)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, snap.History, "apple")
}

func TestE2E_WordListJoin(t *testing.T) {
	ts := setupTestServer(t)
	teacher := ts.token(t, domain.RoleTeacher)

	var created domain.WordList
	status := ts.do(t, http.MethodPost, "/api/v1/lists", "", teacher, map[string]any{
		"title":         "Fruit",
		"teacher_name":  "Ms. Rivera",
		"teacher_email": "rivera@school.test",
		"words":         []string{"apple", "pear", "plum", "apple"},
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, []string{"apple", "pear", "plum"}, created.Words)
	require.NotEmpty(t, created.ShareCode)

	student := uuid.New()
	var joined domain.WordList
	status = ts.do(t, http.MethodPost, "/api/v1/lists/join", "", "", map[string]any{
		"code":         created.ShareCode,
		"student_id":   student,
		"student_name": "Sam",
		"parent_email": "parent@home.test",
	}, &joined)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, created.ID, joined.ID)

	var lists []domain.WordList
	status = ts.do(t, http.MethodGet, "/api/v1/students/"+student.String()+"/lists", "", "", nil, &lists)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, lists, 1)
	assert.Equal(t, created.ID, lists[0].ID)
}

func TestE2E_ModerationAudit(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.token(t, domain.RoleAdmin)
	word := testhelper.UniqueWord("spooky")

	status := ts.do(t, http.MethodPost, "/api/v1/admin/flags", "", ts.token(t, domain.RoleTeacher),
		map[string]any{"word": word}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status = ts.do(t, http.MethodPost, "/api/v1/admin/flags", "", admin,
		map[string]any{"word": word, "reason": "too scary", "hide_from_search": false}, nil)
	require.Equal(t, http.StatusOK, status)

	status = ts.do(t, http.MethodDelete, "/api/v1/admin/flags/"+word, "", admin, nil, nil)
	require.Equal(t, http.StatusNoContent, status)

	var history []domain.AuditRecord
	status = ts.do(t, http.MethodGet, "/api/v1/admin/flags/"+word+"/history", "", admin, nil, &history)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, history, 2)
	assert.Equal(t, domain.AuditUnflag, history[0].Action)
	assert.Equal(t, domain.AuditFlag, history[1].Action)
	assert.NotNil(t, history[1].AdminID)
}
