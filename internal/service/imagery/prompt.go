package imagery

import (
	"fmt"

	"github.com/heartmarshall/kiddict-backend/internal/domain"
)

// Prompts returns one generation prompt per panel. Color visuals get an
// illustration style; the rest are coloring-book line art.
func Prompts(word string, v domain.Visual) []string {
	if v.Kind == domain.VisualMultiPanel && len(v.Panels) > 0 {
		out := make([]string, len(v.Panels))
		for i, desc := range v.Panels {
			if v.Color {
				out[i] = fmt.Sprintf("colorful illustration: %s, simple educational style for children, panel %d", desc, i+1)
			} else {
				out[i] = fmt.Sprintf("simple black and white line drawing: %s, coloring book style, clean lines, no shading, educational illustration", desc)
			}
		}
		return out
	}

	if v.Color {
		return []string{fmt.Sprintf("colorful illustration of %s, simple and clear, educational style for children", word)}
	}
	return []string{fmt.Sprintf("simple black and white line drawing of %s, coloring book style, clean lines, no shading, educational illustration for children", word)}
}
