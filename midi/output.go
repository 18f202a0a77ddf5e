// Package midi mirrors the step sequence to a MIDI output port.
package midi

import (
	"errors"
	"fmt"
	"math"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-wavedraw/debug"
)

var ErrPortNotFound = errors.New("midi: output port not found")

// Output plays one note per sequence step with velocity taken from the step
// level. The previous note is released before the next one starts.
type Output struct {
	mu       sync.Mutex
	send     func(gomidi.Message) error
	channel  uint8
	note     uint8
	sounding bool
}

// Open connects to the named output port. channel is 1-based as shown to
// users.
func Open(port string, channel, note uint8) (*Output, error) {
	outs, err := OutPorts(portTimeout)
	if err != nil {
		return nil, err
	}
	for _, p := range outs {
		if p.String() != port {
			continue
		}
		send, err := gomidi.SendTo(p)
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", port, err)
		}
		debug.Log("midi", "opened %s ch=%d note=%d", port, channel, note)
		return NewOutput(send, channel, note), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrPortNotFound, port)
}

// NewOutput wraps an already opened sender.
func NewOutput(send func(gomidi.Message) error, channel, note uint8) *Output {
	if channel > 0 {
		channel--
	}
	return &Output{send: send, channel: channel & 0x0F, note: note & 0x7F}
}

// Velocity maps a step level in [0,1] to a MIDI velocity.
func Velocity(level float64) uint8 {
	if level <= 0 || math.IsNaN(level) {
		return 0
	}
	if level >= 1 {
		return 127
	}
	return uint8(math.Round(level * 127))
}

// Step releases the sounding note, if any, and starts a new one when level
// maps to a non-zero velocity.
func (o *Output) Step(level float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	for _, e := range o.stepEvents(level) {
		if err := o.send(encode(e)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (o *Output) stepEvents(level float64) []Event {
	var events []Event
	if o.sounding {
		events = append(events, Event{Type: NoteOff, Channel: o.channel, Note: o.note})
		o.sounding = false
	}
	if v := Velocity(level); v > 0 {
		events = append(events, Event{Type: NoteOn, Channel: o.channel, Note: o.note, Velocity: v})
		o.sounding = true
	}
	return events
}

// Close releases any sounding note.
func (o *Output) Close() error {
	return o.Step(0)
}

func encode(e Event) gomidi.Message {
	if e.Type == NoteOn {
		return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
	}
	return gomidi.NoteOff(e.Channel, e.Note)
}
