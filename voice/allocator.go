package voice

import (
	"fmt"
	"strings"

	"github.com/pfcm/fmtwo/env"
)

// DefaultVoices is the size of the pool if nothing else is asked for.
const DefaultVoices = 2

// MaxNote is the highest valid MIDI note.
const MaxNote = 127

// Allocator maps notes onto a fixed pool of voices. Voices are considered in
// order: the first voice that is idle or already playing the same note gets
// it, and if there isn't one the first voice is stolen. The pool is the only
// state, every decision is made fresh from it.
type Allocator struct {
	voices []Voice
}

// NewAllocator makes a pool of n idle voices. n < 1 is treated as 1.
func NewAllocator(n int, samplerate float32) *Allocator {
	a := &Allocator{voices: make([]Voice, max(n, 1))}
	a.SetSampleRate(samplerate)
	return a
}

func (a *Allocator) String() string {
	s := make([]string, len(a.voices))
	for i := range a.voices {
		s[i] = a.voices[i].String()
	}
	return fmt.Sprintf("Allocator[%s]", strings.Join(s, ","))
}

// Len returns the size of the pool.
func (a *Allocator) Len() int { return len(a.voices) }

// Voice returns the i'th voice in priority order.
func (a *Allocator) Voice(i int) *Voice { return &a.voices[i] }

func (a *Allocator) SetSampleRate(samplerate float32) {
	for i := range a.voices {
		a.voices[i].SetSampleRate(samplerate)
	}
}

// Reset silences every voice.
func (a *Allocator) Reset() {
	for i := range a.voices {
		a.voices[i].Reset()
	}
}

// NoteOn gives the note to a voice and returns its index, or -1 if the note
// isn't a valid MIDI note.
func (a *Allocator) NoteOn(note uint8, velocity float32) int {
	if note > MaxNote {
		return -1
	}
	i := a.pick(note)
	a.voices[i].NoteOn(note, velocity)
	return i
}

func (a *Allocator) pick(note uint8) int {
	for i := range a.voices {
		v := &a.voices[i]
		if v.Idle() {
			return i
		}
		if n, ok := v.Note(); ok && n == note {
			return i
		}
	}
	// Nothing free: take the first one, whatever it was doing.
	return 0
}

// NoteOff releases every voice playing the note and returns how many there
// were.
func (a *Allocator) NoteOff(note uint8) int {
	released := 0
	for i := range a.voices {
		v := &a.voices[i]
		if n, ok := v.Note(); ok && n == note {
			v.NoteOff()
			released++
		}
	}
	return released
}

// Next renders a sample from every voice and returns the sum.
func (a *Allocator) Next(ratio, depth float32, p env.Params) float32 {
	var sum float32
	for i := range a.voices {
		sum += a.voices[i].Next(ratio, depth, p)
	}
	return sum
}
