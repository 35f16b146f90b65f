package billing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kiddict-backend/internal/config"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.BillingConfig{
		BaseURL:      baseURL,
		ClientID:     "id",
		ClientSecret: "secret",
		ReturnURL:    "https://app/ok",
		CancelURL:    "https://app/cancel",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_CreateSubscription(t *testing.T) {
	t.Parallel()

	var tokenCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			tokenCalls.Add(1)
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "id", user)
			assert.Equal(t, "secret", pass)
			w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
		case "/v1/billing/subscriptions":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			var req subscriptionRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "P-FAMILY", req.PlanID)
			assert.Equal(t, "https://app/ok", req.ApplicationContext.ReturnURL)
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"I-1","status":"APPROVAL_PENDING","links":[
				{"rel":"self","href":"https://pay/self"},
				{"rel":"approve","href":"https://pay/approve"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	for range 2 {
		sub, err := c.CreateSubscription(context.Background(), "P-FAMILY")
		require.NoError(t, err)
		assert.Equal(t, "I-1", sub.ID)
		assert.Equal(t, "https://pay/approve", sub.ApprovalURL)
	}
	assert.EqualValues(t, 1, tokenCalls.Load(), "token should be cached")
}

func TestClient_CreateSubscription_Failures(t *testing.T) {
	t.Parallel()

	t.Run("disabled", func(t *testing.T) {
		c := NewClient(config.BillingConfig{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
		_, err := c.CreateSubscription(context.Background(), "P")
		assert.True(t, errors.Is(err, domain.ErrServiceUnavailable))
	})

	t.Run("processor down", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).CreateSubscription(context.Background(), "P")
		assert.True(t, errors.Is(err, domain.ErrServiceUnavailable))
	})

	t.Run("no approval link", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/v1/oauth2/token" {
				w.Write([]byte(`{"access_token":"tok","expires_in":3600}`))
				return
			}
			w.Write([]byte(`{"id":"I-2","links":[]}`))
		}))
		defer srv.Close()

		_, err := newTestClient(srv.URL).CreateSubscription(context.Background(), "P")
		require.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrServiceUnavailable))
	})
}
