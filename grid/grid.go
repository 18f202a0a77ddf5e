package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gg"

	"go-wavedraw/geom"
)

var (
	ErrNoSteps      = errors.New("grid: step count must be positive")
	ErrEmptyRegion  = errors.New("grid: region must have positive extent")
	ErrQuantization = errors.New("grid: quantization must be positive")
)

// Listener is told when a grid's values changed during an edit.
type Listener interface {
	Changed(g *Grid)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(g *Grid)

func (f ListenerFunc) Changed(g *Grid) { f(g) }

// Grid is a fixed-length row of editable values in [0,1], drawn as vertical
// bars inside Region. Only the render loop writes to it, through Set.
type Grid struct {
	Name   string
	Region geom.BoundingBox // normalized placement on the surface

	values    []float64
	quantize  int // 0 = continuous
	quantized bool
	listener  Listener

	paint *gg.LinearGradientBrush
}

// Option configures a Grid at construction.
type Option func(*Grid)

// WithQuantization snaps every write to the nearest multiple of 1/q.
func WithQuantization(q int) Option {
	return func(g *Grid) { g.quantize, g.quantized = q, true }
}

// WithListener sets the change listener.
func WithListener(l Listener) Option {
	return func(g *Grid) { g.listener = l }
}

// WithValues seeds the first values. Extra values are ignored.
func WithValues(vs ...float64) Option {
	return func(g *Grid) {
		for i, v := range vs {
			if i >= len(g.values) {
				break
			}
			g.values[i] = g.snap(v)
		}
	}
}

// New creates a grid of n steps placed at region.
func New(name string, region geom.BoundingBox, n int, opts ...Option) (*Grid, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%s: %w (got %d)", name, ErrNoSteps, n)
	}
	if !region.Valid() {
		return nil, fmt.Errorf("%s: %w (got %+v)", name, ErrEmptyRegion, region)
	}

	g := &Grid{
		Name:   name,
		Region: region,
		values: make([]float64, n),
	}
	for _, opt := range opts {
		opt(g)
		if g.quantized && g.quantize <= 0 {
			return nil, fmt.Errorf("%s: %w (got %d)", name, ErrQuantization, g.quantize)
		}
	}
	// seeded values may precede WithQuantization in opts
	if g.quantize > 0 {
		for i, v := range g.values {
			g.values[i] = g.snap(v)
		}
	}
	return g, nil
}

// MustNew is like New but panics on invalid parameters.
func MustNew(name string, region geom.BoundingBox, n int, opts ...Option) *Grid {
	g, err := New(name, region, n, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create grid: %v", err))
	}
	return g
}

// Len returns the number of steps.
func (g *Grid) Len() int {
	return len(g.values)
}

// Quantization returns Q, or 0 for a continuous grid.
func (g *Grid) Quantization() int {
	return g.quantize
}

// Value returns the stored value at index.
func (g *Grid) Value(index int) float64 {
	return g.values[index]
}

// Set stores raw at index, snapped when the grid is quantized, and reports
// whether the stored value changed. It never notifies the listener; the
// render loop decides when an edit is committed.
func (g *Grid) Set(index int, raw float64) bool {
	v := g.snap(raw)
	if g.values[index] == v {
		return false
	}
	g.values[index] = v
	return true
}

func (g *Grid) snap(raw float64) float64 {
	if g.quantize <= 0 {
		return raw
	}
	q := float64(g.quantize)
	return math.Round(raw*q) / q
}

// Values returns a copy of the stored values.
func (g *Grid) Values() []float64 {
	out := make([]float64, len(g.values))
	copy(out, g.values)
	return out
}

// Signed returns the values remapped from [0,1] to [-1,1].
func (g *Grid) Signed() []float64 {
	out := make([]float64, len(g.values))
	for i, v := range g.values {
		out[i] = 2*v - 1
	}
	return out
}

// Notify tells the listener, if any, that the values changed.
func (g *Grid) Notify() {
	if g.listener != nil {
		g.listener.Changed(g)
	}
}

// CreatePaintState rebuilds the bar gradient for a surface of the given
// height. It runs on resize, never during steady-state editing.
func (g *Grid) CreatePaintState(surfaceHeight float64, bottom, top gg.RGBA) {
	g.paint = gg.NewLinearGradientBrush(
		0, g.Region.Bottom()*surfaceHeight,
		0, g.Region.Y*surfaceHeight,
	).
		AddColorStop(0, bottom).
		AddColorStop(1, top)
}

// PaintState returns the brush built by the last CreatePaintState, or nil.
func (g *Grid) PaintState() *gg.LinearGradientBrush {
	return g.paint
}
