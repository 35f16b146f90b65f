package freedict

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/provider"
)

const (
	defaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

	// tierCandidates is how many senses of the first meaning compete for a tier.
	tierCandidates = 3
)

// Provider fetches dictionary data from the FreeDictionary API and maps it
// onto the three definition tiers.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider. An empty baseURL selects the public API.
func NewProvider(baseURL string, timeout time.Duration, logger *slog.Logger) *Provider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Provider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "freedict"),
	}
}

// Name identifies the source in logs and stored entries.
func (p *Provider) Name() domain.Source { return domain.SourceFreeDict }

// Generate fetches a definition for word. The grade is ignored: the API has a
// single register, so tiers are picked from its senses by length.
// Returns nil, nil if the word is not found (HTTP 404).
func (p *Provider) Generate(ctx context.Context, word string, _ domain.GradeLabel) (*provider.DefinitionResult, error) {
	reqURL := p.baseURL + "/" + url.PathEscape(word)

	p.log.DebugContext(ctx, "freedict request", slog.String("word", word))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("freedict: create request: %w", err)
	}

	resp, err := provider.DoWithRetry(ctx, p.httpClient, req, p.log)
	if err != nil {
		p.log.ErrorContext(ctx, "freedict request failed", slog.String("word", word), slog.String("error", err.Error()))
		return nil, fmt.Errorf("freedict: request failed: %w: %w", domain.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("freedict: status %d: %w", resp.StatusCode, domain.ErrServiceUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("freedict: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("freedict: read body: %w", err)
	}

	var entries []apiEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("freedict: decode json: %w", err)
	}

	result := mapAPIResponse(entries)

	p.log.DebugContext(ctx, "freedict response",
		slog.String("word", word),
		slog.Int("status", resp.StatusCode),
		slog.Bool("empty", result.IsEmpty()),
	)

	if result.IsEmpty() {
		return nil, nil
	}
	return result, nil
}

// mapAPIResponse converts the API entries into a tiered result. Among the
// first senses of the first meaning the shortest becomes the simple tier,
// the first the medium tier and the longest the advanced tier.
func mapAPIResponse(entries []apiEntry) *provider.DefinitionResult {
	result := &provider.DefinitionResult{}
	if len(entries) == 0 {
		return result
	}
	result.Word = entries[0].Word

	for _, entry := range entries {
		if result.Phonetic == "" {
			result.Phonetic = firstPhonetic(entry)
		}
		for _, meaning := range entry.Meanings {
			defs := candidates(meaning.Definitions)
			if len(defs) == 0 {
				continue
			}
			if result.Medium == "" {
				result.PartOfSpeech = meaning.PartOfSpeech
				result.Medium = defs[0]
				result.Simple = shortest(defs)
				result.Advanced = longest(defs)
			}
			if result.Example == "" {
				result.Example = firstExample(meaning.Definitions)
			}
		}
	}
	return result
}

func candidates(defs []apiDefinition) []string {
	out := make([]string, 0, tierCandidates)
	for _, d := range defs {
		if s := strings.TrimSpace(d.Definition); s != "" {
			out = append(out, s)
		}
		if len(out) == tierCandidates {
			break
		}
	}
	return out
}

func shortest(defs []string) string {
	best := defs[0]
	for _, d := range defs[1:] {
		if len(d) < len(best) {
			best = d
		}
	}
	return best
}

func longest(defs []string) string {
	best := defs[0]
	for _, d := range defs[1:] {
		if len(d) > len(best) {
			best = d
		}
	}
	return best
}

func firstExample(defs []apiDefinition) string {
	for _, d := range defs {
		if s := strings.TrimSpace(d.Example); s != "" {
			return s
		}
	}
	return ""
}

func firstPhonetic(e apiEntry) string {
	if e.Phonetic != "" {
		return e.Phonetic
	}
	for _, ph := range e.Phonetics {
		if ph.Text != "" {
			return ph.Text
		}
	}
	return ""
}
