package midi

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// Event is a note message before it is encoded for a port.
type Event struct {
	Type     uint8 // NoteOn, NoteOff
	Channel  uint8 // 0-based
	Note     uint8
	Velocity uint8
}
