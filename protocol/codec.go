package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownType  = errors.New("protocol: unknown message type")
	ErrMissingField = errors.New("protocol: missing field")
	ErrMalformed    = errors.New("protocol: malformed message")
)

// wire is the JSON shape of every message. Pointer fields distinguish a
// missing field from a zero value.
type wire struct {
	Type   Type       `json:"type"`
	W      *int       `json:"w,omitempty"`
	H      *int       `json:"h,omitempty"`
	X      *float64   `json:"x,omitempty"`
	Y      *float64   `json:"y,omitempty"`
	Real   *[]float64 `json:"real,omitempty"`
	Imag   *[]float64 `json:"imag,omitempty"`
	Values *[]float64 `json:"values,omitempty"`
}

// Encode renders a message as one line of JSON (no trailing newline).
// Start is encoded without its surface handle.
func Encode(msg Message) ([]byte, error) {
	w := wire{Type: msg.Type()}

	switch m := msg.(type) {
	case Start:
		if m.Width > 0 && m.Height > 0 {
			w.W, w.H = &m.Width, &m.Height
		}
	case Resize:
		w.W, w.H = &m.Width, &m.Height
	case PointerMove:
		w.X, w.Y = &m.X, &m.Y
	case SurfaceClick:
		w.X, w.Y = &m.X, &m.Y
	case WaveformResult:
		re, im := nonNil(m.Real), nonNil(m.Imag)
		w.Real, w.Imag = &re, &im
	case SequenceResult:
		vs := nonNil(m.Values)
		w.Values = &vs
	case PointerDown, PointerUp, Ready:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, msg)
	}

	return json.Marshal(w)
}

// Decode parses one JSON message. Callers drop messages that fail to decode.
func Decode(data []byte) (Message, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch w.Type {
	case TypeStart:
		m := Start{}
		if w.W != nil && w.H != nil {
			if *w.W <= 0 || *w.H <= 0 {
				return nil, fmt.Errorf("%w: start size %dx%d", ErrMalformed, *w.W, *w.H)
			}
			m.Width, m.Height = *w.W, *w.H
		}
		return m, nil

	case TypeResize:
		if w.W == nil || w.H == nil {
			return nil, fmt.Errorf("%w: resize needs w and h", ErrMissingField)
		}
		if *w.W <= 0 || *w.H <= 0 {
			return nil, fmt.Errorf("%w: resize %dx%d", ErrMalformed, *w.W, *w.H)
		}
		return Resize{Width: *w.W, Height: *w.H}, nil

	case TypePointerMove, TypeSurfaceClick:
		if w.X == nil || w.Y == nil {
			return nil, fmt.Errorf("%w: %s needs x and y", ErrMissingField, w.Type)
		}
		if w.Type == TypePointerMove {
			return PointerMove{X: *w.X, Y: *w.Y}, nil
		}
		return SurfaceClick{X: *w.X, Y: *w.Y}, nil

	case TypePointerDown:
		return PointerDown{}, nil
	case TypePointerUp:
		return PointerUp{}, nil
	case TypeReady:
		return Ready{}, nil

	case TypeWaveformResult:
		if w.Real == nil || w.Imag == nil {
			return nil, fmt.Errorf("%w: waveformResult needs real and imag", ErrMissingField)
		}
		if len(*w.Real) != len(*w.Imag) {
			return nil, fmt.Errorf("%w: real/imag length %d != %d", ErrMalformed, len(*w.Real), len(*w.Imag))
		}
		return WaveformResult{Real: *w.Real, Imag: *w.Imag}, nil

	case TypeSequenceResult:
		if w.Values == nil {
			return nil, fmt.Errorf("%w: sequenceResult needs values", ErrMissingField)
		}
		return SequenceResult{Values: *w.Values}, nil

	case "":
		return nil, fmt.Errorf("%w: type", ErrMissingField)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}
