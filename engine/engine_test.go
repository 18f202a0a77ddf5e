package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"go-wavedraw/geom"
	"go-wavedraw/grid"
	"go-wavedraw/protocol"
	"go-wavedraw/surface"
)

// waveform pixel box at 800x600 is (0,0,400,120): cells are 100px wide and
// y=60 is the value 0.5.
const (
	cellW = 100.0
	midY  = 60.0
)

type counter struct{ calls int }

func (c *counter) Changed(*grid.Grid) { c.calls++ }

type fixture struct {
	e        *Engine
	wave     *grid.Grid
	seq      *grid.Grid
	frames   []image.Image
	waveHits *counter
}

func newFixture(t *testing.T, waveValues ...float64) *fixture {
	t.Helper()
	f := &fixture{e: New(Options{}), waveHits: &counter{}}

	publish := f.e.WaveformPublisher()
	f.wave = grid.MustNew("waveform", geom.Box(0, 0, 0.5, 0.2), 4,
		grid.WithValues(waveValues...),
		grid.WithListener(grid.ListenerFunc(func(g *grid.Grid) {
			f.waveHits.Changed(g)
			publish.Changed(g)
		})))
	f.seq = grid.MustNew("sequence", geom.Box(0.5, 0, 0.5, 0.2), 5,
		grid.WithQuantization(4),
		grid.WithListener(f.e.SequencePublisher()))

	for _, g := range []*grid.Grid{f.wave, f.seq} {
		if err := f.e.AddGrid(g); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func (f *fixture) start(t *testing.T, w, h int) {
	t.Helper()
	handle := surface.New(w, h, surface.WithPresenter(func(img image.Image) {
		f.frames = append(f.frames, img)
	}))
	f.e.Handle(protocol.Start{Surface: handle})
	msgs := f.e.Drain()
	if len(msgs) != 1 || msgs[0].Type() != protocol.TypeReady {
		t.Fatalf("start produced %v, want a single ready", msgs)
	}
	t.Cleanup(f.e.teardown)
}

func TestIdleIgnoresInputAndFrames(t *testing.T) {
	f := newFixture(t)

	f.e.Handle(protocol.PointerMove{X: 10, Y: 10})
	f.e.Handle(protocol.PointerDown{})
	f.e.Frame()

	if f.e.State() != Idle {
		t.Errorf("state = %s, want idle", f.e.State())
	}
	if p := f.e.Pointer(); p.Seen || p.Pressed != PressUnknown {
		t.Errorf("pointer changed while idle: %+v", p)
	}
	if msgs := f.e.Drain(); len(msgs) != 0 {
		t.Errorf("idle engine emitted %v", msgs)
	}
}

func TestStartTransitionsToRunning(t *testing.T) {
	f := newFixture(t)
	f.start(t, 800, 600)

	if f.e.State() != Running {
		t.Fatalf("state = %s, want running", f.e.State())
	}
	for _, g := range f.e.Grids() {
		if g.PaintState() == nil {
			t.Errorf("%s has no paint state after start", g.Name)
		}
	}
}

func TestSecondStartDropped(t *testing.T) {
	f := newFixture(t)
	f.start(t, 800, 600)

	f.e.Handle(protocol.Start{Surface: surface.New(10, 10)})
	if msgs := f.e.Drain(); len(msgs) != 0 {
		t.Errorf("second start emitted %v", msgs)
	}
	if f.e.surface.Width() != 800 {
		t.Errorf("second start replaced the surface")
	}
}

func TestStartWithUnusableHandleDropped(t *testing.T) {
	tests := []struct {
		name   string
		handle func() *surface.Handle
	}{
		{"nil handle", func() *surface.Handle { return nil }},
		{"already transferred", func() *surface.Handle {
			h := surface.New(10, 10)
			if _, err := h.Transfer(); err != nil {
				t.Fatal(err)
			}
			return h
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(Options{})
			e.Handle(protocol.Start{Surface: tt.handle()})
			if e.State() != Idle {
				t.Errorf("state = %s, want idle", e.State())
			}
			if msgs := e.Drain(); len(msgs) != 0 {
				t.Errorf("emitted %v", msgs)
			}
		})
	}
}

func TestResizeBeforeStartSizesSurface(t *testing.T) {
	f := newFixture(t)
	f.e.Handle(protocol.Resize{Width: 320, Height: 200})
	f.start(t, 16, 16)

	if w, h := f.e.surface.Width(), f.e.surface.Height(); w != 320 || h != 200 {
		t.Errorf("surface = %dx%d, want 320x200", w, h)
	}
}

func TestStartSizeWins(t *testing.T) {
	e := New(Options{})
	e.Handle(protocol.Resize{Width: 320, Height: 200})
	e.Handle(protocol.Start{Surface: surface.New(16, 16), Width: 640, Height: 480})
	defer e.teardown()

	if w, h := e.surface.Width(), e.surface.Height(); w != 640 || h != 480 {
		t.Errorf("surface = %dx%d, want 640x480", w, h)
	}
}

func TestMalformedMessagesIgnored(t *testing.T) {
	f := newFixture(t)
	f.start(t, 800, 600)

	f.e.Handle(nil)
	f.e.Handle(protocol.Ready{})
	f.e.Handle(protocol.Resize{Width: 0, Height: 600})
	f.e.Handle(protocol.Resize{Width: 800, Height: -1})
	f.e.Frame()

	if f.e.surface.Width() != 800 || f.e.surface.Height() != 600 {
		t.Errorf("invalid resize applied: %dx%d", f.e.surface.Width(), f.e.surface.Height())
	}
	if f.e.State() != Running {
		t.Errorf("state = %s after bad input", f.e.State())
	}
}

func TestPointerUpWithoutDown(t *testing.T) {
	f := newFixture(t)
	f.start(t, 800, 600)

	f.e.Handle(protocol.PointerUp{})
	if got := f.e.Pointer().Pressed; got != PressUp {
		t.Errorf("pressed = %s, want up", got)
	}

	f.e.Handle(protocol.PointerDown{})
	f.e.Handle(protocol.PointerUp{})
	if got := f.e.Pointer().Pressed; got != PressUp {
		t.Errorf("pressed = %s, want up", got)
	}
}

func TestDragEditsCellAndNotifiesOncePerFrame(t *testing.T) {
	f := newFixture(t)
	f.start(t, 800, 600)

	x := cellW*1 + 10
	f.e.Handle(protocol.PointerMove{X: x, Y: midY})
	f.e.Handle(protocol.PointerDown{})
	f.e.Frame()

	if got := f.wave.Value(1); got != 0.5 {
		t.Errorf("value[1] = %v, want 0.5", got)
	}
	if f.waveHits.calls != 1 {
		t.Errorf("listener called %d times, want 1", f.waveHits.calls)
	}

	msgs := f.e.Drain()
	if len(msgs) != 1 {
		t.Fatalf("frame emitted %d messages, want 1", len(msgs))
	}
	res, ok := msgs[0].(protocol.WaveformResult)
	if !ok {
		t.Fatalf("emitted %T, want WaveformResult", msgs[0])
	}
	if len(res.Real) != 4 || len(res.Imag) != 4 {
		t.Errorf("result lengths %d/%d, want 4", len(res.Real), len(res.Imag))
	}

	cells := f.e.Layout("waveform")
	if !cells[1].Edited || !cells[1].Highlight {
		t.Errorf("cell 1 = %+v, want edited and highlighted", cells[1])
	}
	if cells[0].Edited || cells[2].Edited {
		t.Error("neighbouring cells marked edited")
	}

	// pressed and stationary over the value it already holds
	f.e.Frame()
	if f.waveHits.calls != 1 {
		t.Errorf("stationary frame notified again (calls=%d)", f.waveHits.calls)
	}
	if msgs := f.e.Drain(); len(msgs) != 0 {
		t.Errorf("stationary frame emitted %v", msgs)
	}

	// moving to another cell is a new change
	f.e.Handle(protocol.PointerMove{X: cellW*3 + 1, Y: 0})
	f.e.Frame()
	if f.wave.Value(3) != 1 || f.waveHits.calls != 2 {
		t.Errorf("value[3] = %v calls = %d, want 1 and 2", f.wave.Value(3), f.waveHits.calls)
	}
}

func TestHoverHighlightsWithoutEditing(t *testing.T) {
	f := newFixture(t, 0, 1, 0, 0)
	f.start(t, 800, 600)

	f.e.Handle(protocol.PointerMove{X: cellW + 5, Y: midY})
	f.e.Frame()

	cells := f.e.Layout("waveform")
	if !cells[1].Highlight || cells[1].Edited {
		t.Errorf("hovered cell = %+v, want highlight without edit", cells[1])
	}
	if f.waveHits.calls != 0 || f.wave.Value(1) != 1 {
		t.Error("hover changed the grid")
	}

	// cell 2 holds 0: its bar is empty, so hovering its slice highlights nothing
	f.e.Handle(protocol.PointerMove{X: 2*cellW + 5, Y: midY})
	f.e.Frame()
	if f.e.Layout("waveform")[2].Highlight {
		t.Error("empty bar highlighted")
	}
}

func TestPointerOutsideGridsDoesNotWrite(t *testing.T) {
	f := newFixture(t)
	f.start(t, 800, 600)

	for _, pos := range [][2]float64{{100, 300}, {100, 120}, {-5, 60}, {-5, -5}} {
		f.e.Handle(protocol.PointerMove{X: pos[0], Y: pos[1]})
		f.e.Handle(protocol.PointerDown{})
		f.e.Frame()
	}

	if msgs := f.e.Drain(); len(msgs) != 0 {
		t.Errorf("edits outside grids emitted %v", msgs)
	}
}

func TestSequenceGridPublishesQuantizedSnapshot(t *testing.T) {
	f := newFixture(t)
	f.start(t, 800, 600)

	// sequence box (400,0,400,120); 5 cells of 80px
	f.e.Handle(protocol.PointerMove{X: 400 + 80*2 + 3, Y: 120 - 0.6*120})
	f.e.Handle(protocol.PointerDown{})
	f.e.Frame()

	msgs := f.e.Drain()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	res, ok := msgs[0].(protocol.SequenceResult)
	if !ok {
		t.Fatalf("emitted %T, want SequenceResult", msgs[0])
	}
	want := []float64{0, 0, 0.5, 0, 0}
	for i := range want {
		if res.Values[i] != want[i] {
			t.Errorf("values = %v, want %v", res.Values, want)
			break
		}
	}
}

func TestResizeScalesBarsWithoutTouchingValues(t *testing.T) {
	f := newFixture(t, 0.25, 0.5, 0.75, 1)
	f.start(t, 800, 600)
	before := f.wave.Values()

	f.e.Frame()
	big := f.e.Layout("waveform")

	f.e.Handle(protocol.Resize{Width: 400, Height: 300})
	f.e.Frame()
	small := f.e.Layout("waveform")

	for k, v := range before {
		if f.wave.Value(k) != v {
			t.Errorf("value[%d] changed from %v to %v", k, v, f.wave.Value(k))
		}
		b, s := big[k].Bar, small[k].Bar
		want := geom.Box(b.X/2, b.Y/2, b.W/2, b.H/2)
		if s != want {
			t.Errorf("cell %d bar = %+v at half size, want %+v", k, s, want)
		}
		if ratio := b.H / big[k].Hit.H; math.Abs(ratio-v) > 1e-9 {
			t.Errorf("cell %d bar/height ratio = %v, want %v", k, ratio, v)
		}
	}
	if got := f.wave.PaintState().Start.Y; got != 0.2*300 {
		t.Errorf("gradient not rebuilt for new height: start y = %v", got)
	}
}

func TestSmallSurfaceEditsEveryRow(t *testing.T) {
	f := newFixture(t)
	// an 80x24 terminal less its status lines: one pixel per column, two per row
	f.start(t, 80, 44)

	// waveform box (0,0,40,8.8); cell 1 spans x in [10,20)
	levels := map[float64]bool{}
	for _, y := range []float64{0, 2, 4, 6, 8} {
		f.e.Handle(protocol.PointerMove{X: 15, Y: y})
		f.e.Handle(protocol.PointerDown{})
		f.e.Frame()

		want := 1 - y/8.8
		if got := f.wave.Value(1); math.Abs(got-want) > 1e-9 {
			t.Errorf("y=%v wrote %v, want %v", y, got, want)
		}
		levels[f.wave.Value(1)] = true
	}
	if len(levels) != 5 {
		t.Errorf("wrote %d distinct levels, want 5", len(levels))
	}
}

func TestAddGridRejectsDuplicateName(t *testing.T) {
	f := newFixture(t)
	dup := grid.MustNew("waveform", geom.Box(0, 0.5, 1, 0.2), 3)

	if err := f.e.AddGrid(dup); !errors.Is(err, ErrDuplicateGrid) {
		t.Errorf("AddGrid() error = %v, want %v", err, ErrDuplicateGrid)
	}
	if n := len(f.e.Grids()); n != 2 {
		t.Errorf("registered %d grids, want 2", n)
	}
}

func TestFitMapsBarIntoInnerBox(t *testing.T) {
	frame := geom.Box(0, 0, 100, 50)
	inner := frame.Inset(5)
	got := fit(geom.Box(50, 25, 50, 25), frame, inner)
	want := geom.Box(50, 25, 45, 20)
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 ||
		math.Abs(got.W-want.W) > 1e-9 || math.Abs(got.H-want.H) > 1e-9 {
		t.Errorf("fit() = %+v, want %+v", got, want)
	}
}

func TestWaveformPublisherNyquistFixture(t *testing.T) {
	f := newFixture(t, 0, 1, 0, 1)
	f.e.WaveformPublisher().Changed(f.wave)

	msgs := f.e.Drain()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages", len(msgs))
	}
	res := msgs[0].(protocol.WaveformResult)
	wantRe := []float64{0, 0, -1, 0}
	for k := range wantRe {
		if math.Abs(res.Real[k]-wantRe[k]) > 1e-9 || math.Abs(res.Imag[k]) > 1e-9 {
			t.Errorf("bin %d = (%v, %v), want (%v, 0)", k, res.Real[k], res.Imag[k], wantRe[k])
		}
	}
}

func TestFramePaintsAndPresents(t *testing.T) {
	f := newFixture(t)
	f.start(t, 800, 600)
	f.e.Frame()

	if len(f.frames) != 1 {
		t.Fatalf("presented %d frames, want 1", len(f.frames))
	}
	img := f.frames[0]

	bg := color.RGBAModel.Convert(img.At(790, 590)).(color.RGBA)
	if !near(bg, color.RGBA{244, 239, 250, 255}) {
		t.Errorf("background pixel = %v", bg)
	}
	inside := color.RGBAModel.Convert(img.At(150, 60)).(color.RGBA)
	if near(inside, bg) {
		t.Error("grid frame was not painted")
	}
}

// near compares colours allowing for float to byte truncation.
func near(a, b color.RGBA) bool {
	d := func(x, y uint8) bool { return x-y <= 1 || y-x <= 1 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestRunDeliversReadyAndResults(t *testing.T) {
	f := newFixture(t)
	e := f.e

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	e.Post(protocol.Start{Surface: surface.New(800, 600)})
	e.Post(protocol.PointerMove{X: cellW*2 + 1, Y: midY})
	e.Post(protocol.PointerDown{})

	want := []protocol.Type{protocol.TypeReady, protocol.TypeWaveformResult}
	for _, typ := range want {
		select {
		case msg := <-e.Outbox():
			if msg.Type() != typ {
				t.Fatalf("got %s, want %s", msg.Type(), typ)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", typ)
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
