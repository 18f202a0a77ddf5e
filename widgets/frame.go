package widgets

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// upper half block: foreground paints the top pixel, background the bottom
const halfBlock = "▀"

type cellColors struct {
	top, bottom color.RGBA
}

// FrameRenderer draws images into terminal cells, two pixels per cell
// stacked vertically. Styles are cached per colour pair.
type FrameRenderer struct {
	styles map[cellColors]lipgloss.Style
}

func NewFrameRenderer() *FrameRenderer {
	return &FrameRenderer{styles: make(map[cellColors]lipgloss.Style)}
}

// Render draws the top-left cols×(rows*2) pixels of img. Pixels outside the
// image are left blank.
func (r *FrameRenderer) Render(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	b := img.Bounds()

	lines := make([]string, rows)
	for row := range rows {
		var line strings.Builder
		run := 0
		var runColors cellColors
		flush := func() {
			if run > 0 {
				line.WriteString(r.style(runColors).Render(strings.Repeat(halfBlock, run)))
			}
		}

		for col := range cols {
			x, y := b.Min.X+col, b.Min.Y+row*2
			if !image.Pt(x, y).In(b) {
				flush()
				run = 0
				line.WriteString(strings.Repeat(" ", cols-col))
				break
			}
			c := cellColors{top: rgba(img.At(x, y)), bottom: rgba(img.At(x, y+1))}
			if run > 0 && c == runColors {
				run++
				continue
			}
			flush()
			runColors, run = c, 1
		}
		flush()
		lines[row] = line.String()
	}
	return strings.Join(lines, "\n")
}

func (r *FrameRenderer) style(c cellColors) lipgloss.Style {
	if s, ok := r.styles[c]; ok {
		return s
	}
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(hex(c.top))).
		Background(lipgloss.Color(hex(c.bottom)))
	r.styles[c] = s
	return s
}

func rgba(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
