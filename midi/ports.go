package midi

import (
	"errors"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrPortsTimeout means the driver did not answer in time (CoreMIDI can
// hang; `sudo killall coreaudiod midiserver` usually fixes it).
var ErrPortsTimeout = errors.New("midi: timed out listing ports")

const portTimeout = 3 * time.Second

// Ports lists input and output port names.
type Ports struct {
	In  []string
	Out []string
}

// ListPorts returns all port names, or ErrPortsTimeout if the driver hangs.
func ListPorts(timeout time.Duration) (Ports, error) {
	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		var p Ports
		for _, in := range r.ins {
			p.In = append(p.In, in.String())
		}
		for _, out := range r.outs {
			p.Out = append(p.Out, out.String())
		}
		return p, nil
	case <-time.After(timeout):
		return Ports{}, ErrPortsTimeout
	}
}

// OutPorts returns the output ports, or ErrPortsTimeout.
func OutPorts(timeout time.Duration) ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() { ch <- gomidi.GetOutPorts() }()

	select {
	case outs := <-ch:
		return outs, nil
	case <-time.After(timeout):
		return nil, ErrPortsTimeout
	}
}
