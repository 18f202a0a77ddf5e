// Package surface models the drawing surface the host hands to the render
// engine. A Handle is created on the host side and can be transferred exactly
// once; after that only the engine holds the Surface and the host keeps no
// way to draw on it.
package surface

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gg"
)

var (
	ErrTransferred = errors.New("surface: handle already transferred")
	ErrNilHandle   = errors.New("surface: nil handle")
)

// Presenter receives a copy of each finished frame.
type Presenter func(frame image.Image)

// Surface is an owned drawing target backed by a gg context.
type Surface struct {
	canvas  *gg.Context
	present Presenter
	flush   func() error
}

// Option configures a Surface before handoff.
type Option func(*Surface)

// WithPresenter registers where finished frames go (the host's display).
func WithPresenter(p Presenter) Option {
	return func(s *Surface) { s.present = p }
}

// Handle is the transferable reference to a Surface.
type Handle struct {
	mu      sync.Mutex
	surface *Surface
}

// New creates a surface of the given size and returns its handle.
func New(width, height int, opts ...Option) *Handle {
	s := &Surface{canvas: gg.NewContext(width, height)}
	s.flush = s.canvas.FlushGPU
	for _, opt := range opts {
		opt(s)
	}
	return &Handle{surface: s}
}

// Transfer moves the surface out of the handle. It succeeds once.
func (h *Handle) Transfer() (*Surface, error) {
	if h == nil {
		return nil, ErrNilHandle
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.surface == nil {
		return nil, ErrTransferred
	}
	s := h.surface
	h.surface = nil
	return s, nil
}

// Transferred reports whether the surface has been moved out.
func (h *Handle) Transferred() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.surface == nil
}

// Canvas returns the drawing context.
func (s *Surface) Canvas() *gg.Context {
	return s.canvas
}

func (s *Surface) Width() int  { return s.canvas.Width() }
func (s *Surface) Height() int { return s.canvas.Height() }

// Resize reallocates the backing pixmap. Contents are lost.
func (s *Surface) Resize(width, height int) error {
	return s.canvas.Resize(width, height)
}

// Present flushes pending GPU work and hands the frame to the presenter, if
// one is set. A frame whose flush fails is not presented.
func (s *Surface) Present() error {
	if s.present == nil {
		return nil
	}
	if err := s.flush(); err != nil {
		return fmt.Errorf("surface: flush: %w", err)
	}
	s.present(s.canvas.Image())
	return nil
}

// Close releases the drawing context.
func (s *Surface) Close() error {
	return s.canvas.Close()
}
