package domain

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeMastered_UnionAndIdempotent(t *testing.T) {
	t.Parallel()

	existing := []string{"apple", "dog"}
	added := []string{"Dog", "happy", " run "}

	once := MergeMastered(existing, added)
	twice := MergeMastered(once, added)

	assert.Equal(t, []string{"apple", "dog", "happy", "run"}, once)
	assert.Equal(t, once, twice)
}

func TestMergeMastered_NeverShrinks(t *testing.T) {
	t.Parallel()

	existing := []string{"apple", "dog", "kind"}
	got := MergeMastered(existing, nil)
	assert.Equal(t, existing, got)
}

func TestPercentage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		correct, total, want int
	}{
		{5, 5, 100},
		{0, 5, 0},
		{2, 3, 67},
		{1, 3, 33},
		{0, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.correct, tt.total), "%d/%d", tt.correct, tt.total)
	}
}

func TestResultMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Perfect Score!", ResultMessage(100))
	assert.Equal(t, "Excellent Work!", ResultMessage(80))
	assert.Equal(t, "Good Job!", ResultMessage(60))
	assert.Equal(t, "Keep Practicing!", ResultMessage(59))
}

func TestQuizResult_Lines(t *testing.T) {
	t.Parallel()

	r := QuizResult{Score: 5, Total: 5, Percentage: 100}
	assert.Equal(t, "5/5", r.ScoreLine())
	assert.Equal(t, "100% Correct", r.PercentLine())
	assert.Equal(t, "1:05", FormatClock(65*time.Second))
	assert.Equal(t, "0:09", FormatClock(9500*time.Millisecond))
}

func TestNewShareCode(t *testing.T) {
	t.Parallel()

	code, err := NewShareCode(nil)
	require.NoError(t, err)
	assert.Len(t, code, ShareCodeLength)
	assert.True(t, ValidShareCode(code), "code %q", code)

	// deterministic reader yields a deterministic code
	a, err := NewShareCode(bytes.NewReader(bytes.Repeat([]byte{7}, 64)))
	require.NoError(t, err)
	b, err := NewShareCode(bytes.NewReader(bytes.Repeat([]byte{7}, 64)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestShareCodeNormalization(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "AB12CD34", NormalizeShareCode(" ab12cd34 "))
	assert.False(t, ValidShareCode("ab12cd34"))
	assert.False(t, ValidShareCode("AB12"))
}

func TestWordEntry_Visual(t *testing.T) {
	t.Parallel()

	plain := WordEntry{Definitions: []DefinitionSet{{Simple: "x"}}}
	assert.True(t, plain.HasVisual())
	assert.Equal(t, VisualSingle, plain.VisualOrDefault().Kind)

	sound := WordEntry{Definitions: []DefinitionSet{{Simple: "x", Visual: &Visual{Kind: VisualNone}}}}
	assert.False(t, sound.HasVisual())

	comic := Visual{Kind: VisualMultiPanel, Panels: []string{"a", "b", "c"}}
	assert.Equal(t, 3, comic.PanelCount())
}

func TestDefinitionSet_Text(t *testing.T) {
	t.Parallel()

	d := DefinitionSet{Simple: "s", Medium: "m", Advanced: "a"}
	assert.Equal(t, "s", d.Text(TierSimple))
	assert.Equal(t, "m", d.Text(TierMedium))
	assert.Equal(t, "a", d.Text(TierAdvanced))
	assert.False(t, d.IsEmpty())
	assert.True(t, DefinitionSet{}.IsEmpty())
}
