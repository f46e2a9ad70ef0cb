package fmtwo

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Note is a single note in a score.
type Note struct {
	Note     uint8
	Velocity float32
	Start    time.Duration
	Length   time.Duration
}

func (n Note) String() string {
	return fmt.Sprintf("%d@%v+%v:%g", n.Note, n.Start, n.Length, n.Velocity)
}

// Sequence is an EventSource that plays a fixed list of notes, starting from
// the first block it is asked for.
type Sequence struct {
	events []Event // Timing is absolute, in samples.
	pos    int
}

var _ EventSource = (*Sequence)(nil)

// NewSequence converts the notes into note on and off events at the given
// sample rate.
func NewSequence(samplerate float32, notes []Note) *Sequence {
	toSamples := func(d time.Duration) int {
		return int(math.Round(d.Seconds() * float64(samplerate)))
	}
	evs := make([]Event, 0, 2*len(notes))
	for _, n := range notes {
		start := toSamples(n.Start)
		evs = append(evs,
			Event{Kind: NoteOn, Note: n.Note, Velocity: n.Velocity, Timing: start},
			Event{Kind: NoteOff, Note: n.Note, Timing: start + toSamples(n.Length)},
		)
	}
	// Stable, so a note that ends exactly when the next one starts keeps
	// its order from the score.
	slices.SortStableFunc(evs, func(a, b Event) int { return cmp.Compare(a.Timing, b.Timing) })
	return &Sequence{events: evs}
}

func (s *Sequence) String() string { return fmt.Sprintf("Sequence(%d/%d)", s.pos, s.End()) }

// End returns the sample offset of the last event.
func (s *Sequence) End() int {
	if len(s.events) == 0 {
		return 0
	}
	return s.events[len(s.events)-1].Timing
}

// Done reports whether every event has been handed out.
func (s *Sequence) Done() bool { return s.first() >= len(s.events) }

// first returns the index of the first event not handed out yet.
func (s *Sequence) first() int {
	i, _ := slices.BinarySearchFunc(s.events, s.pos, func(e Event, t int) int {
		return cmp.Compare(e.Timing, t)
	})
	return i
}

// Rewind starts the sequence again from the beginning.
func (s *Sequence) Rewind() { s.pos = 0 }

func (s *Sequence) Events(n int, dst []Event) []Event {
	end := s.pos + n
	for i := s.first(); i < len(s.events) && s.events[i].Timing < end; i++ {
		e := s.events[i]
		e.Timing -= s.pos
		dst = append(dst, e)
	}
	s.pos = end
	return dst
}

// ParseScore parses a list of notes separated by commas or whitespace. Each
// note looks like
//
//	note@start+length[:velocity]
//
// where note is a MIDI note number or a name like C4, F#3 or Bb2 (with A4 =
// 69), start and length are durations as understood by time.ParseDuration,
// and velocity defaults to 1.
func ParseScore(s string) ([]Note, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	notes := make([]Note, 0, len(fields))
	for _, f := range fields {
		n, err := parseNote(f)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", f, err)
		}
		notes = append(notes, n)
	}
	return notes, nil
}

func parseNote(s string) (Note, error) {
	n := Note{Velocity: 1}
	name, rest, ok := strings.Cut(s, "@")
	if !ok {
		return n, fmt.Errorf("missing @start")
	}
	num, err := parseNoteName(name)
	if err != nil {
		return n, err
	}
	n.Note = num
	rest, vel, hasVel := strings.Cut(rest, ":")
	if hasVel {
		v, err := strconv.ParseFloat(vel, 32)
		if err != nil {
			return n, fmt.Errorf("velocity: %w", err)
		}
		if v < 0 || v > 1 {
			return n, fmt.Errorf("velocity %v out of range [0, 1]", v)
		}
		n.Velocity = float32(v)
	}
	start, length, ok := strings.Cut(rest, "+")
	if !ok {
		return n, fmt.Errorf("missing +length")
	}
	if n.Start, err = time.ParseDuration(start); err != nil {
		return n, fmt.Errorf("start: %w", err)
	}
	if n.Length, err = time.ParseDuration(length); err != nil {
		return n, fmt.Errorf("length: %w", err)
	}
	if n.Start < 0 || n.Length < 0 {
		return n, fmt.Errorf("negative time")
	}
	return n, nil
}

var pitchClasses = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

func parseNoteName(s string) (uint8, error) {
	if s == "" {
		return 0, fmt.Errorf("empty note")
	}
	if i, err := strconv.Atoi(s); err == nil {
		if i < 0 || i > 127 {
			return 0, fmt.Errorf("note %d out of range [0, 127]", i)
		}
		return uint8(i), nil
	}
	pc, ok := pitchClasses[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("bad note name %q", s)
	}
	s = s[1:]
	for len(s) > 0 && (s[0] == '#' || s[0] == 'b') {
		if s[0] == '#' {
			pc++
		} else {
			pc--
		}
		s = s[1:]
	}
	oct, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad octave in note name: %w", err)
	}
	n := (oct+1)*12 + pc
	if n < 0 || n > 127 {
		return 0, fmt.Errorf("note %d out of range [0, 127]", n)
	}
	return uint8(n), nil
}
