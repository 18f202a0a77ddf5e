package engine

// Press is the pointer button state. It starts out unknown until the first
// pointerDown or pointerUp arrives.
type Press int8

const (
	PressUnknown Press = iota
	PressDown
	PressUp
)

func (p Press) String() string {
	switch p {
	case PressDown:
		return "down"
	case PressUp:
		return "up"
	}
	return "unknown"
}

// Pointer is the latest pointer state reported by the host. Messages write
// it, frames read it, both on the engine goroutine.
type Pointer struct {
	X, Y    float64
	Seen    bool // a position has been reported
	Pressed Press
}

// Down reports whether the button is known to be held.
func (p Pointer) Down() bool {
	return p.Pressed == PressDown
}
