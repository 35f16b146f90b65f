package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

type messengerMock struct {
	NewFunc func(ctx context.Context, body anthropic.MessageNewParams) (*anthropic.Message, error)
	calls   []anthropic.MessageNewParams
}

func (m *messengerMock) New(ctx context.Context, body anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	m.calls = append(m.calls, body)
	return m.NewFunc(ctx, body)
}

func textMessage(text string) *anthropic.Message {
	return &anthropic.Message{Content: []anthropic.ContentBlockUnion{{Type: "text", Text: text}}}
}

func newTestGenerator(m *messengerMock) *Generator {
	return newGenerator(m, "test-model", 512, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGenerator_Generate_Success(t *testing.T) {
	t.Parallel()

	mock := &messengerMock{NewFunc: func(_ context.Context, _ anthropic.MessageNewParams) (*anthropic.Message, error) {
		return textMessage("Here you go:\n" + `{
			"word": "jump",
			"part_of_speech": "verb",
			"phonetic": "/dʒʌmp/",
			"definitions": {"simple": "To push off the ground.", "medium": "To spring into the air.", "advanced": "To propel oneself upward."},
			"example": "Frogs jump high.",
			"visual": {"type": "multi_panel", "needs_color": true, "panels": ["crouch", "leap", "land"]}
		}`), nil
	}}

	res, err := newTestGenerator(mock).Generate(context.Background(), "jump", 2)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "verb", res.PartOfSpeech)
	assert.Equal(t, "To spring into the air.", res.Medium)
	require.NotNil(t, res.Visual)
	assert.Equal(t, domain.VisualMultiPanel, res.Visual.Kind)
	assert.Equal(t, 3, res.Visual.PanelCount())

	require.Len(t, mock.calls, 1)
	assert.Equal(t, anthropic.Model("test-model"), mock.calls[0].Model)
	assert.EqualValues(t, 512, mock.calls[0].MaxTokens)
}

func TestGenerator_Generate_NotAWord(t *testing.T) {
	t.Parallel()

	mock := &messengerMock{NewFunc: func(context.Context, anthropic.MessageNewParams) (*anthropic.Message, error) {
		return textMessage(`{"word": "blorft", "not_a_word": true}`), nil
	}}

	res, err := newTestGenerator(mock).Generate(context.Background(), "blorft", 3)
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestGenerator_Generate_SinglePanelDowngrade(t *testing.T) {
	t.Parallel()

	mock := &messengerMock{NewFunc: func(context.Context, anthropic.MessageNewParams) (*anthropic.Message, error) {
		return textMessage(`{"definitions": {"simple": "x"}, "visual": {"type": "multi_panel", "panels": ["only one"]}}`), nil
	}}

	res, err := newTestGenerator(mock).Generate(context.Background(), "x", 3)
	require.NoError(t, err)
	assert.Equal(t, domain.VisualSingle, res.Visual.Kind)
}

func TestGenerator_Generate_Errors(t *testing.T) {
	t.Parallel()

	t.Run("transport error is transient", func(t *testing.T) {
		mock := &messengerMock{NewFunc: func(context.Context, anthropic.MessageNewParams) (*anthropic.Message, error) {
			return nil, context.DeadlineExceeded
		}}
		_, err := newTestGenerator(mock).Generate(context.Background(), "dog", 1)
		assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	})

	t.Run("garbage response is not transient", func(t *testing.T) {
		mock := &messengerMock{NewFunc: func(context.Context, anthropic.MessageNewParams) (*anthropic.Message, error) {
			return textMessage("I cannot help with that."), nil
		}}
		_, err := newTestGenerator(mock).Generate(context.Background(), "dog", 1)
		require.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrServiceUnavailable))
	})

	t.Run("empty content", func(t *testing.T) {
		mock := &messengerMock{NewFunc: func(context.Context, anthropic.MessageNewParams) (*anthropic.Message, error) {
			return &anthropic.Message{}, nil
		}}
		_, err := newTestGenerator(mock).Generate(context.Background(), "dog", 1)
		assert.Error(t, err)
	})
}

func TestBuildPrompt_MentionsGrade(t *testing.T) {
	t.Parallel()

	p := buildPrompt("apple", domain.GradeK)
	assert.True(t, strings.Contains(p, `"apple"`))
	assert.True(t, strings.Contains(p, "grade K"))
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	got, err := extractJSON("```json\n{\"a\": {\"b\": 1}}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, got)

	_, err = extractJSON("no braces")
	assert.Error(t, err)
}
