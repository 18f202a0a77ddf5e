package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/gogpu/gg"
)

type Theme struct {
	Palette *Palette
}

func New(palette *Palette) *Theme {
	return &Theme{Palette: palette}
}

// Colour roles, as palette positions (0-1). The built-in palette has one
// entry per role in this order.
const (
	RoleBG        = 0.0  // light backdrop
	RolePrimary   = 0.25 // grid frame fill
	RoleSecondary = 0.5  // frame stroke, bar gradient bottom
	RoleTertiary  = 0.75 // bar top edge, gradient top
	RoleHighlight = 1.0  // edited or hovered bar
)

// Surface colours

func (t *Theme) BG() gg.RGBA        { return t.Palette.Lookup(RoleBG).Color() }
func (t *Theme) Primary() gg.RGBA   { return t.Palette.Lookup(RolePrimary).Color() }
func (t *Theme) Secondary() gg.RGBA { return t.Palette.Lookup(RoleSecondary).Color() }
func (t *Theme) Tertiary() gg.RGBA  { return t.Palette.Lookup(RoleTertiary).Color() }
func (t *Theme) Highlight() gg.RGBA { return t.Palette.Lookup(RoleHighlight).Color() }

// Terminal colours

func (t *Theme) FG() lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(RoleHighlight).Hex())
}

func (t *Theme) Accent() lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(RoleTertiary).Hex())
}

func (t *Theme) Muted() lipgloss.Color {
	return lipgloss.Color(t.Palette.Lookup(RoleSecondary).Hex())
}
