package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderSteps renders sequence levels as a row of pads. The pad at current
// is drawn in the active colour; -1 marks none.
func RenderSteps(levels []float64, current int, on, off, active lipgloss.Color) string {
	var out strings.Builder
	for i, v := range levels {
		if i > 0 {
			out.WriteString(" ")
		}
		c := off
		if v > 0 {
			c = on
		}
		if i == current {
			c = active
		}
		out.WriteString(lipgloss.NewStyle().Foreground(c).Render(pad(v)))
	}
	return out.String()
}

// pad picks a glyph by level: empty, quarter steps, full
func pad(v float64) string {
	glyphs := []string{"·", "▂", "▄", "▆", "█"}
	i := int(v*4 + 0.5)
	i = max(0, min(i, len(glyphs)-1))
	return glyphs[i]
}
