// Package llm generates grade-aware tiered definitions with Anthropic models.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
	"github.com/heartmarshall/kiddict-backend/internal/provider"
)

// messenger is the part of the Anthropic client the generator needs.
type messenger interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Generator asks the model for a JSON definition of a word pitched at a grade.
type Generator struct {
	messages  messenger
	model     string
	maxTokens int64
	log       *slog.Logger
}

// NewGenerator builds a Generator backed by the Anthropic API. The SDK is
// limited to one retry so transient failures are retried once.
func NewGenerator(apiKey, model string, maxTokens int64, logger *slog.Logger) *Generator {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(1),
	)
	return newGenerator(&client.Messages, model, maxTokens, logger)
}

func newGenerator(m messenger, model string, maxTokens int64, logger *slog.Logger) *Generator {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Generator{
		messages:  m,
		model:     model,
		maxTokens: maxTokens,
		log:       logger.With("adapter", "llm"),
	}
}

// Name identifies the source in logs and stored entries.
func (g *Generator) Name() domain.Source { return domain.SourceLLM }

// Generate returns nil, nil when the model reports the word is not real.
func (g *Generator) Generate(ctx context.Context, word string, grade domain.GradeLabel) (*provider.DefinitionResult, error) {
	msg, err := g.messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(word, grade))),
		},
	})
	if err != nil {
		if isTransient(err) {
			return nil, fmt.Errorf("llm: generate %q: %w: %w", word, domain.ErrServiceUnavailable, err)
		}
		return nil, fmt.Errorf("llm: generate %q: %w", word, err)
	}

	if len(msg.Content) == 0 {
		return nil, fmt.Errorf("llm: empty response for %q", word)
	}

	jsonStr, err := extractJSON(msg.Content[0].Text)
	if err != nil {
		return nil, fmt.Errorf("llm: extract json for %q: %w", word, err)
	}

	var out llmOutput
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		return nil, fmt.Errorf("llm: decode json for %q: %w", word, err)
	}

	if out.NotAWord {
		g.log.DebugContext(ctx, "llm reports unknown word", slog.String("word", word))
		return nil, nil
	}

	result := out.toResult()
	if result.IsEmpty() {
		return nil, nil
	}
	return result, nil
}

// llmOutput mirrors the JSON schema requested in the prompt.
type llmOutput struct {
	Word         string `json:"word"`
	NotAWord     bool   `json:"not_a_word"`
	PartOfSpeech string `json:"part_of_speech"`
	Phonetic     string `json:"phonetic"`
	Definitions  struct {
		Simple   string `json:"simple"`
		Medium   string `json:"medium"`
		Advanced string `json:"advanced"`
	} `json:"definitions"`
	Example string `json:"example"`
	Visual  *struct {
		Type       string   `json:"type"`
		NeedsColor bool     `json:"needs_color"`
		Panels     []string `json:"panels"`
	} `json:"visual"`
}

func (o llmOutput) toResult() *provider.DefinitionResult {
	r := &provider.DefinitionResult{
		Word:         o.Word,
		PartOfSpeech: o.PartOfSpeech,
		Phonetic:     o.Phonetic,
		Simple:       o.Definitions.Simple,
		Medium:       o.Definitions.Medium,
		Advanced:     o.Definitions.Advanced,
		Example:      o.Example,
	}
	if o.Visual != nil {
		v := &domain.Visual{Kind: domain.VisualSingle, Color: o.Visual.NeedsColor}
		switch domain.VisualKind(o.Visual.Type) {
		case domain.VisualMultiPanel:
			if len(o.Visual.Panels) > 1 {
				v.Kind = domain.VisualMultiPanel
				v.Panels = o.Visual.Panels
			}
		case domain.VisualNone:
			v.Kind = domain.VisualNone
		}
		r.Visual = v
	}
	return r
}

func buildPrompt(word string, grade domain.GradeLabel) string {
	return fmt.Sprintf(`You write entries for a children's dictionary.

Define the word "%s" for a student in grade %s.

Output ONLY a valid JSON object matching this exact schema:
{
  "word": "<word>",
  "not_a_word": false,
  "part_of_speech": "<noun|verb|adjective|adverb|...>",
  "phonetic": "<IPA pronunciation>",
  "definitions": {
    "simple": "<one short sentence a kindergartner understands>",
    "medium": "<one or two sentences for grades 3-4>",
    "advanced": "<a precise definition for grades 5 and up>"
  },
  "example": "<a short kid-friendly example sentence>",
  "visual": {
    "type": "<single|multi_panel|none>",
    "needs_color": true,
    "panels": ["<panel description>", "..."]
  }
}

Rules:
- Each definition is at most %d characters
- Use "multi_panel" with 2-4 panels only for actions best shown as a short comic
- Use "none" for sounds and abstract words that cannot be drawn
- Set "needs_color" when color matters to the meaning (fruit, animals, weather)
- If "%s" is not a real word, set "not_a_word" to true and leave the rest empty
- Keep everything safe and appropriate for children
- Output ONLY the JSON, no markdown, no explanations`, word, grade, domain.MaxDefinitionRunes, word)
}

// extractJSON finds the first complete JSON object in a string.
func extractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return s[start : end+1], nil
}

// isTransient reports rate limits, server errors and network failures.
func isTransient(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
