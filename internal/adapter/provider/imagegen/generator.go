// Package imagegen builds illustration URLs on a prompt-to-image service
// (pollinations-style: GET {base}/{prompt}?width=&height=).
package imagegen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/heartmarshall/kiddict-backend/internal/config"
	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/provider"
)

// Source is recorded on images produced by this adapter.
const Source = "pollinations"

// Generator turns prompts into image URLs.
type Generator struct {
	baseURL    string
	width      int
	height     int
	verify     bool
	httpClient *http.Client
	log        *slog.Logger
}

// NewGenerator creates a Generator from ImagesConfig.
func NewGenerator(cfg config.ImagesConfig, logger *slog.Logger) *Generator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Generator{
		baseURL:    strings.TrimRight(cfg.GeneratorURL, "/"),
		width:      cfg.Width,
		height:     cfg.Height,
		verify:     !cfg.SkipVerify,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "imagegen"),
	}
}

// Name identifies the generator on stored images.
func (g *Generator) Name() string { return Source }

// URLFor returns the deterministic image URL for prompt.
func (g *Generator) URLFor(prompt string) string {
	q := url.Values{}
	q.Set("width", strconv.Itoa(g.width))
	q.Set("height", strconv.Itoa(g.height))
	q.Set("nologo", "true")
	return g.baseURL + "/" + url.PathEscape(prompt) + "?" + q.Encode()
}

// Generate returns an image URL for prompt. With verification enabled the
// image is requested once so rendering failures surface here rather than in
// the browser; the final URL after redirects is returned.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	imgURL := g.URLFor(prompt)
	if !g.verify {
		return imgURL, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imgURL, nil)
	if err != nil {
		return "", fmt.Errorf("imagegen: create request: %w", err)
	}

	start := time.Now()
	resp, err := provider.DoWithRetry(ctx, g.httpClient, req, g.log)
	if err != nil {
		return "", fmt.Errorf("imagegen: request failed: %w: %w", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("imagegen: status %d: %w", resp.StatusCode, domain.ErrServiceUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("imagegen: unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("imagegen: unexpected content type %q", ct)
	}

	g.log.DebugContext(ctx, "image generated",
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("prompt_len", len(prompt)),
	)
	return resp.Request.URL.String(), nil
}
