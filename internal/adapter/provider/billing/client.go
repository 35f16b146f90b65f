// Package billing starts redirect-based subscriptions with a PayPal-compatible
// REST API: client-credentials OAuth, then subscription creation returning an
// approval link.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/heartmarshall/kiddict-backend/internal/config"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// tokenSkew renews the access token this long before it expires.
const tokenSkew = time.Minute

// Client talks to the payment processor. Without credentials it is disabled.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	returnURL    string
	cancelURL    string
	httpClient   *http.Client
	log          *slog.Logger
	now          func() time.Time

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewClient creates a billing client from BillingConfig.
func NewClient(cfg config.BillingConfig, logger *slog.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		returnURL:    cfg.ReturnURL,
		cancelURL:    cfg.CancelURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		log:          logger.With("adapter", "billing"),
		now:          time.Now,
	}
}

// Enabled reports whether credentials are configured.
func (c *Client) Enabled() bool { return c.clientID != "" && c.clientSecret != "" }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type subscriptionRequest struct {
	PlanID             string             `json:"plan_id"`
	ApplicationContext applicationContext `json:"application_context"`
}

type applicationContext struct {
	BrandName  string `json:"brand_name"`
	UserAction string `json:"user_action"`
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
}

type subscriptionResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

// CreateSubscription creates a pending subscription for the processor plan
// planID and returns it with the URL the customer must visit to approve.
func (c *Client) CreateSubscription(ctx context.Context, planID string) (*domain.Subscription, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("billing: not configured: %w", domain.ErrServiceUnavailable)
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(subscriptionRequest{
		PlanID: planID,
		ApplicationContext: applicationContext{
			BrandName:  "Kids Dictionary",
			UserAction: "SUBSCRIBE_NOW",
			ReturnURL:  c.returnURL,
			CancelURL:  c.cancelURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("billing: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/billing/subscriptions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("billing: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	var sub subscriptionResponse
	if err := c.do(req, &sub); err != nil {
		return nil, err
	}

	out := &domain.Subscription{ID: sub.ID, Status: sub.Status}
	for _, l := range sub.Links {
		if l.Rel == "approve" {
			out.ApprovalURL = l.Href
			break
		}
	}
	if out.ApprovalURL == "" {
		return nil, fmt.Errorf("billing: subscription %s has no approval link", sub.ID)
	}

	c.log.InfoContext(ctx, "subscription created", slog.String("subscription_id", sub.ID), slog.String("plan_id", planID))
	return out, nil
}

// token returns a cached access token, fetching a new one when it is about to expire.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.expiresAt.Add(-tokenSkew)) {
		return c.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("billing: create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tr tokenResponse
	if err := c.do(req, &tr); err != nil {
		return "", err
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("billing: empty access token")
	}

	c.accessToken = tr.AccessToken
	c.expiresAt = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("billing: %s: %w: %w", req.URL.Path, domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("billing: read body: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("billing: %s status %d: %w", req.URL.Path, resp.StatusCode, domain.ErrServiceUnavailable)
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("billing: %s rejected credentials: %w", req.URL.Path, domain.ErrServiceUnavailable)
	case resp.StatusCode >= 300:
		c.log.Warn("billing request rejected", slog.String("path", req.URL.Path), slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return fmt.Errorf("billing: %s status %d", req.URL.Path, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("billing: decode %s: %w", req.URL.Path, err)
	}
	return nil
}
