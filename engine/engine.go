// Package engine is the render/edit side of the host boundary. It owns the
// drawing surface and the step grids, runs the per-frame interaction loop and
// reports edits back to the host as protocol messages.
//
// Everything except Post and Outbox runs on a single goroutine: either the
// one inside Run, or the caller of Handle/Frame/Drain when driving the engine
// by hand. Pointer state and grid values need no locking for that reason.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-wavedraw/debug"
	"go-wavedraw/grid"
	"go-wavedraw/protocol"
	"go-wavedraw/surface"
	"go-wavedraw/theme"
)

// State of the handoff state machine.
type State int

const (
	Idle    State = iota // no surface yet
	Armed                // surface received, not yet acknowledged
	Running              // ready sent, frames scheduled
)

func (s State) String() string {
	switch s {
	case Armed:
		return "armed"
	case Running:
		return "running"
	}
	return "idle"
}

const DefaultFPS = 60

// Options configures an Engine.
type Options struct {
	FPS   int          // frame rate while running (default 60)
	Theme *theme.Theme // colours (default palette if nil)
}

// Engine owns the surface, the registered grids and the pointer state.
type Engine struct {
	state   State
	surface *surface.Surface
	grids   []*grid.Grid
	layouts map[string][]Cell
	pointer Pointer
	theme   *theme.Theme
	fps     int

	// size requested by a resize that arrived before start
	pendingW, pendingH int

	// outbound messages produced by the current handler or frame
	pending []protocol.Message

	// inbound queue: unbounded FIFO, Post never blocks
	queueMu sync.Mutex
	queue   []protocol.Message
	wake    chan struct{}

	out chan protocol.Message
}

// New creates an idle engine.
func New(opts Options) *Engine {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Theme == nil {
		opts.Theme = theme.New(theme.DefaultPalette())
	}
	return &Engine{
		layouts: make(map[string][]Cell),
		theme:   opts.Theme,
		fps:     opts.FPS,
		wake:    make(chan struct{}, 1),
		out:     make(chan protocol.Message, 16),
	}
}

// ErrDuplicateGrid is returned by AddGrid for a name already registered.
var ErrDuplicateGrid = errors.New("engine: duplicate grid name")

// AddGrid registers a grid. Grids are processed and drawn in registration
// order and are looked up by name, so names must be unique. Call before Run.
func (e *Engine) AddGrid(g *grid.Grid) error {
	for _, have := range e.grids {
		if have.Name == g.Name {
			return fmt.Errorf("%w: %q", ErrDuplicateGrid, g.Name)
		}
	}
	e.grids = append(e.grids, g)
	if e.surface != nil {
		e.rebuildPaintState()
	}
	return nil
}

// Grids returns the registered grids.
func (e *Engine) Grids() []*grid.Grid {
	return e.grids
}

// State returns the handoff state.
func (e *Engine) State() State {
	return e.state
}

// Pointer returns the current pointer state.
func (e *Engine) Pointer() Pointer {
	return e.pointer
}

// Layout returns the cells computed for the named grid in the last frame.
func (e *Engine) Layout(name string) []Cell {
	return e.layouts[name]
}

// Post queues an inbound message. Safe from any goroutine; never blocks.
func (e *Engine) Post(msg protocol.Message) {
	e.queueMu.Lock()
	e.queue = append(e.queue, msg)
	e.queueMu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Outbox delivers outbound messages while Run is active.
func (e *Engine) Outbox() <-chan protocol.Message {
	return e.out
}

func (e *Engine) takeQueue() []protocol.Message {
	e.queueMu.Lock()
	defer e.queueMu.Unlock()
	q := e.queue
	e.queue = nil
	return q
}

// Run is the render/edit loop. It handles posted messages in order and,
// once running, draws a frame per tick. Outbound messages from each step are
// delivered before the next step starts. Run returns when ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	var ticker *time.Ticker
	var tick <-chan time.Time
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
		e.teardown()
	}()

	for {
		if e.state == Running && ticker == nil {
			ticker = time.NewTicker(time.Second / time.Duration(e.fps))
			tick = ticker.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-e.wake:
			for _, msg := range e.takeQueue() {
				e.Handle(msg)
				if err := e.flush(ctx); err != nil {
					return err
				}
			}

		case <-tick:
			e.Frame()
			if err := e.flush(ctx); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) flush(ctx context.Context) error {
	for _, msg := range e.Drain() {
		select {
		case e.out <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Drain returns and clears the outbound messages produced so far.
func (e *Engine) Drain() []protocol.Message {
	out := e.pending
	e.pending = nil
	return out
}

func (e *Engine) emit(msg protocol.Message) {
	e.pending = append(e.pending, msg)
}

func (e *Engine) teardown() {
	if e.surface != nil {
		e.surface.Close()
		e.surface = nil
	}
	e.state = Idle
}

// Handle applies one inbound message. Malformed or out-of-state messages are
// dropped; nothing here can fail the loop.
func (e *Engine) Handle(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.Start:
		e.start(m)

	case protocol.Resize:
		e.resize(m.Width, m.Height)

	case protocol.PointerMove, protocol.PointerDown, protocol.PointerUp, protocol.SurfaceClick:
		if e.state != Running {
			debug.Log("engine", "drop %T in state %s", msg, e.state)
			return
		}
		e.handlePointer(m)

	default:
		debug.Log("engine", "drop %T in state %s", msg, e.state)
	}
}

func (e *Engine) handlePointer(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.PointerMove:
		e.pointer.X, e.pointer.Y = m.X, m.Y
		e.pointer.Seen = true
	case protocol.PointerDown:
		e.pointer.Pressed = PressDown
	case protocol.PointerUp:
		e.pointer.Pressed = PressUp
	case protocol.SurfaceClick:
		e.click(m.X, m.Y)
	}
}

func (e *Engine) start(m protocol.Start) {
	if e.state != Idle {
		debug.Log("engine", "drop start: already %s", e.state)
		return
	}

	s, err := m.Surface.Transfer()
	if err != nil {
		debug.Log("engine", "drop start: %v", err)
		return
	}
	e.surface = s
	e.state = Armed

	w, h := m.Width, m.Height
	if w <= 0 || h <= 0 {
		w, h = e.pendingW, e.pendingH
	}
	if w > 0 && h > 0 {
		if err := e.surface.Resize(w, h); err != nil {
			debug.Log("engine", "initial resize %dx%d: %v", w, h, err)
		}
	}
	e.rebuildPaintState()

	e.state = Running
	e.emit(protocol.Ready{})
	debug.Log("engine", "running %dx%d, %d grids", e.surface.Width(), e.surface.Height(), len(e.grids))
}

func (e *Engine) resize(w, h int) {
	if w <= 0 || h <= 0 {
		debug.Log("engine", "drop resize %dx%d", w, h)
		return
	}
	if e.surface == nil {
		e.pendingW, e.pendingH = w, h
		return
	}
	if err := e.surface.Resize(w, h); err != nil {
		debug.Log("engine", "resize %dx%d: %v", w, h, err)
		return
	}
	e.rebuildPaintState()
}

// click is reserved for non-drag interactions.
func (e *Engine) click(x, y float64) {
	debug.Log("engine", "click at %.0f,%.0f", x, y)
}

func (e *Engine) rebuildPaintState() {
	h := float64(e.surface.Height())
	for _, g := range e.grids {
		g.CreatePaintState(h, e.theme.Secondary(), e.theme.Tertiary())
	}
}
