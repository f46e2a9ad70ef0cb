package fmtwo

import "fmt"

// EventKind says what an Event does.
type EventKind byte

const (
	NoteOn EventKind = iota
	NoteOff
)

func (k EventKind) String() string {
	switch k {
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	}
	return fmt.Sprintf("EventKind(%d)", byte(k))
}

// Event is a note starting or stopping. Timing is the offset in samples from
// the start of the block the event belongs to.
type Event struct {
	Kind     EventKind
	Note     uint8
	Velocity float32 // 0 to 1, ignored for NoteOff.
	Timing   int
}

func (e Event) String() string {
	return fmt.Sprintf("%v(%d,%.2f)@%d", e.Kind, e.Note, e.Velocity, e.Timing)
}

// EventSource provides the events for consecutive blocks of samples.
type EventSource interface {
	// Events appends the events falling in the next n samples to dst and
	// returns it. Timings are relative to the start of those n samples and
	// are in non-decreasing order.
	Events(n int, dst []Event) []Event
}

// Bounded is implemented by EventSources that never hand out more than
// MaxEvents events for one block. Player uses it to make room up front.
type Bounded interface {
	MaxEvents() int
}
