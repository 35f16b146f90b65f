package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kiddict-backend/pkg/ctxutil"
)

func TestSession_ReusesValidHeader(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	var got uuid.UUID
	h := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ctxutil.SessionIDFromCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, id.String())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, id, got)
	assert.Equal(t, id.String(), rec.Header().Get(SessionHeader))
}

func TestSession_MintsWhenMissingOrMalformed(t *testing.T) {
	t.Parallel()

	for _, header := range []string{"", "not-a-uuid", uuid.Nil.String()} {
		var got uuid.UUID
		h := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = ctxutil.SessionIDFromCtx(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(SessionHeader, header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.NotEqual(t, uuid.Nil, got, header)
		assert.Equal(t, got.String(), rec.Header().Get(SessionHeader))
	}
}

func TestAuth_SetsRole(t *testing.T) {
	t.Parallel()

	validator := &tokenValidatorMock{
		ValidateTokenFunc: func(context.Context, string) (uuid.UUID, string, error) {
			return uuid.New(), "admin", nil
		},
	}

	var admin bool
	h := Auth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin = ctxutil.IsAdminCtx(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer t")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, admin)
	require.Len(t, validator.ValidateTokenCalls(), 1)
	assert.Equal(t, "t", validator.ValidateTokenCalls()[0].Token)
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	h := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ctxutil.WithRole(req.Context(), "admin"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
