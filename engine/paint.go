package engine

import (
	"github.com/gogpu/gg"

	"go-wavedraw/debug"
	"go-wavedraw/geom"
	"go-wavedraw/grid"
)

// paint redraws the whole surface from the layouts of the current frame.
// It reads model state only.
func (e *Engine) paint() {
	dc := e.surface.Canvas()
	dc.ClearWithColor(e.theme.BG())

	w, h := float64(e.surface.Width()), float64(e.surface.Height())
	for _, g := range e.grids {
		if err := e.paintGrid(dc, g, w, h); err != nil {
			debug.LogEvery(60, "paint", "%s: %v", g.Name, err)
		}
	}
}

func (e *Engine) paintGrid(dc *gg.Context, g *grid.Grid, w, h float64) error {
	frame := g.Region.ToPixels(w, h)
	inner := frame.Inset(2 * U)

	dc.DrawRoundedRectangle(frame.X, frame.Y, frame.W, frame.H, U*4)
	dc.SetFillBrush(gg.Solid(e.theme.Primary()))
	if err := dc.FillPreserve(); err != nil {
		dc.ClearPath()
		return err
	}
	dc.SetStrokeBrush(gg.Solid(e.theme.Secondary()))
	dc.SetLineWidth(U * 2)
	if err := dc.Stroke(); err != nil {
		return err
	}

	var barBrush gg.Brush = gg.Solid(e.theme.Secondary())
	if ps := g.PaintState(); ps != nil {
		barBrush = ps
	}
	highlight := gg.Solid(e.theme.Highlight())
	edge := gg.Solid(e.theme.Tertiary())

	for _, c := range e.layouts[g.Name] {
		if c.Bar.H <= 0 || inner.H <= 0 {
			continue
		}
		b := fit(c.Bar, frame, inner)

		dc.DrawRectangle(b.X, b.Y, b.W, b.H)
		if c.Highlight {
			dc.SetFillBrush(highlight)
		} else {
			dc.SetFillBrush(barBrush)
		}
		if err := dc.Fill(); err != nil {
			return err
		}

		dc.MoveTo(b.X, b.Y)
		dc.LineTo(b.X+b.W, b.Y)
		dc.SetStrokeBrush(edge)
		dc.SetLineWidth(U)
		if err := dc.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

// fit maps b from the from box into the to box, keeping its proportions.
func fit(b, from, to geom.BoundingBox) geom.BoundingBox {
	x0 := geom.Lerp(to.X, to.Right(), geom.Normalize(b.X, from.X, from.Right(), false))
	x1 := geom.Lerp(to.X, to.Right(), geom.Normalize(b.Right(), from.X, from.Right(), false))
	y0 := geom.Lerp(to.Y, to.Bottom(), geom.Normalize(b.Y, from.Y, from.Bottom(), false))
	y1 := geom.Lerp(to.Y, to.Bottom(), geom.Normalize(b.Bottom(), from.Y, from.Bottom(), false))
	return geom.Box(x0, y0, x1-x0, y1-y0)
}
