// Package headless drives the engine from a stream of JSON-lines messages
// instead of a terminal, one frame per inbound message.
package headless

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"go-wavedraw/debug"
	"go-wavedraw/engine"
	"go-wavedraw/protocol"
	"go-wavedraw/surface"
)

// Driver plays the host role for an engine it drives synchronously.
type Driver struct {
	eng    *engine.Engine
	width  int
	height int
	out    io.Writer
	errOut io.Writer

	last   image.Image
	Frames int

	// Sink, if set, also receives every outbound message.
	Sink func(protocol.Message)
}

// New creates a driver. Surfaces it attaches to start messages are
// width×height unless the message sizes them.
func New(eng *engine.Engine, width, height int, out, errOut io.Writer) *Driver {
	return &Driver{eng: eng, width: width, height: height, out: out, errOut: errOut}
}

// Run feeds every line of r to the engine until EOF.
func (d *Driver) Run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		if err := d.Line(sc.Bytes()); err != nil {
			return err
		}
	}
	return sc.Err()
}

// Line handles one inbound message, runs a frame and writes every outbound
// message as a JSON line. Messages that fail to decode are reported on the
// error writer and skipped.
func (d *Driver) Line(data []byte) error {
	msg, err := protocol.Decode(data)
	if err != nil {
		fmt.Fprintf(d.errOut, "skip: %v\n", err)
		debug.Log("headless", "skip %q: %v", data, err)
		return nil
	}

	if start, ok := msg.(protocol.Start); ok && start.Surface == nil {
		start.Surface = surface.New(d.width, d.height, surface.WithPresenter(d.present))
		msg = start
	}

	d.eng.Handle(msg)
	d.eng.Frame()

	for _, out := range d.eng.Drain() {
		if d.Sink != nil {
			d.Sink(out)
		}
		line, err := protocol.Encode(out)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(d.out, "%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) present(img image.Image) {
	d.last = img
	d.Frames++
}

// Last returns the last presented frame, or nil.
func (d *Driver) Last() image.Image {
	return d.last
}

// SavePNG writes the last presented frame.
func (d *Driver) SavePNG(path string) error {
	if d.last == nil {
		return fmt.Errorf("no frame drawn")
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, d.last); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
