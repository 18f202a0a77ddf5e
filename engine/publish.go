package engine

import (
	"go-wavedraw/grid"
	"go-wavedraw/protocol"
	"go-wavedraw/spectral"
)

// WaveformPublisher returns a listener that transforms the grid's signed
// values and reports the spectrum to the host.
func (e *Engine) WaveformPublisher() grid.Listener {
	return grid.ListenerFunc(func(g *grid.Grid) {
		re, im := spectral.Transform(g.Signed())
		e.emit(protocol.WaveformResult{Real: re, Imag: im})
	})
}

// SequencePublisher returns a listener that reports a snapshot of the grid's
// values to the host.
func (e *Engine) SequencePublisher() grid.Listener {
	return grid.ListenerFunc(func(g *grid.Grid) {
		e.emit(protocol.SequenceResult{Values: g.Values()})
	})
}
