package engine

import (
	"go-wavedraw/debug"
	"go-wavedraw/geom"
	"go-wavedraw/grid"
)

// U is the standard line width unit, in pixels.
const U = 2.0

// Cell is the computed geometry of one step for the current frame.
type Cell struct {
	Hit       geom.BoundingBox // editable slice: cell width, full grid height
	Bar       geom.BoundingBox // height proportional to the stored value
	Edited    bool             // written this frame
	Highlight bool             // edited, or hovered by the pointer
}

// Frame runs one iteration of the interaction and render loop: hit-test and
// edit every grid in registration order, notify each grid at most once, then
// repaint and present. It is a no-op unless the engine is running.
func (e *Engine) Frame() {
	if e.state != Running {
		return
	}

	w, h := float64(e.surface.Width()), float64(e.surface.Height())
	for _, g := range e.grids {
		cells, changed := e.editGrid(g, w, h)
		e.layouts[g.Name] = cells
		if changed {
			debug.Log("frame", "%s changed", g.Name)
			g.Notify()
		}
	}

	e.paint()
	if err := e.surface.Present(); err != nil {
		debug.LogEvery(60, "frame", "present: %v", err)
	}
	debug.LogEvery(600, "frame", "frames drawn")
}

// editGrid applies the pointer to g and returns the cell layout for this
// frame, and whether any stored value changed. Cells split the grid's full
// pixel region; the border inset is a drawing concern only.
func (e *Engine) editGrid(g *grid.Grid, surfaceW, surfaceH float64) ([]Cell, bool) {
	box := g.Region.ToPixels(surfaceW, surfaceH)
	n := float64(g.Len())
	p := e.pointer

	cells := make([]Cell, g.Len())
	changed := false

	for k := range cells {
		c := &cells[k]
		x0 := geom.Lerp(box.X, box.Right(), float64(k)/n)
		x1 := geom.Lerp(box.X, box.Right(), float64(k+1)/n)
		c.Hit = geom.Box(x0, box.Y, x1-x0, box.H)

		if p.Seen && p.Down() && c.Hit.Contains(p.X, p.Y) {
			v := geom.Normalize(p.Y, box.Bottom(), box.Y, true)
			if g.Set(k, v) {
				changed = true
			}
			c.Edited = true
		}

		v := g.Value(k)
		c.Bar = geom.Box(c.Hit.X, box.Y+(1-v)*box.H, c.Hit.W, v*box.H)
		c.Highlight = c.Edited || (p.Seen && c.Bar.Contains(p.X, p.Y))
	}

	return cells, changed
}
