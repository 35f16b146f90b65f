// Package pixabay searches Pixabay for child-safe educational illustrations.
package pixabay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/provider"
)

// Source is recorded on images found by this adapter.
const Source = "pixabay"

type searchResponse struct {
	Hits []struct {
		LargeImageURL string `json:"largeImageURL"`
		WebformatURL  string `json:"webformatURL"`
		PreviewURL    string `json:"previewURL"`
		User          string `json:"user"`
	} `json:"hits"`
}

// Client queries the Pixabay search API. A client without a key is disabled.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a Pixabay client.
func NewClient(baseURL, key string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		key:        key,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "pixabay"),
	}
}

// Name identifies the search on stored images.
func (c *Client) Name() string { return Source }

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.key != "" }

// Search returns up to count illustrations for word, best first.
// A disabled client returns nil, nil.
func (c *Client) Search(ctx context.Context, word string, count int) ([]provider.ImageHit, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if count < 3 {
		// The API rejects per_page below 3.
		count = 3
	}

	q := url.Values{}
	q.Set("key", c.key)
	q.Set("q", word)
	q.Set("image_type", "illustration")
	q.Set("safesearch", "true")
	q.Set("category", "education")
	q.Set("per_page", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("pixabay: create request: %w", err)
	}

	resp, err := provider.DoWithRetry(ctx, c.httpClient, req, c.log)
	if err != nil {
		return nil, fmt.Errorf("pixabay: request failed: %w: %w", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("pixabay: status %d: %w", resp.StatusCode, domain.ErrServiceUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pixabay: unexpected status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("pixabay: decode json: %w", err)
	}

	out := make([]provider.ImageHit, 0, len(body.Hits))
	for _, h := range body.Hits {
		u := h.LargeImageURL
		if u == "" {
			u = h.WebformatURL
		}
		if u == "" {
			continue
		}
		out = append(out, provider.ImageHit{
			URL:         u,
			Thumbnail:   h.PreviewURL,
			Attribution: "Image by " + h.User + " from Pixabay",
		})
	}
	return out, nil
}
