// Package protocol defines the messages exchanged between the host (input
// capture, audio output) and the render engine (surface, frame loop).
package protocol

import "go-wavedraw/surface"

// Type tags a message on the wire.
type Type string

const (
	// host -> engine
	TypeStart        Type = "start"
	TypeResize       Type = "resize"
	TypePointerMove  Type = "pointerMove"
	TypePointerDown  Type = "pointerDown"
	TypePointerUp    Type = "pointerUp"
	TypeSurfaceClick Type = "surfaceClick"

	// engine -> host
	TypeReady          Type = "ready"
	TypeWaveformResult Type = "waveformResult"
	TypeSequenceResult Type = "sequenceResult"
)

// Message is anything that crosses the host/engine boundary.
type Message interface {
	Type() Type
}

// Start hands the surface to the engine. Width and Height are optional (0
// means "use the surface's own size").
type Start struct {
	Surface       *surface.Handle
	Width, Height int
}

// Resize changes the surface size. Both dimensions must be positive.
type Resize struct {
	Width, Height int
}

// PointerMove reports the pointer position in surface pixels.
type PointerMove struct {
	X, Y float64
}

type PointerDown struct{}

type PointerUp struct{}

// SurfaceClick reports a completed click at a surface position.
type SurfaceClick struct {
	X, Y float64
}

// Ready acknowledges the handoff; the frame loop is running.
type Ready struct{}

// WaveformResult carries the spectrum of the waveform grid.
type WaveformResult struct {
	Real []float64
	Imag []float64
}

// SequenceResult carries a snapshot of the sequence grid's values.
type SequenceResult struct {
	Values []float64
}

func (Start) Type() Type          { return TypeStart }
func (Resize) Type() Type         { return TypeResize }
func (PointerMove) Type() Type    { return TypePointerMove }
func (PointerDown) Type() Type    { return TypePointerDown }
func (PointerUp) Type() Type      { return TypePointerUp }
func (SurfaceClick) Type() Type   { return TypeSurfaceClick }
func (Ready) Type() Type          { return TypeReady }
func (WaveformResult) Type() Type { return TypeWaveformResult }
func (SequenceResult) Type() Type { return TypeSequenceResult }
