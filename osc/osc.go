// package osc provides oscillators.
package osc

import (
	"fmt"

	"maze.io/x/math32"
)

// Sine is a phase accumulating sine oscillator. The phase is normalised to
// [0, 1) and advanced by frequency/samplerate every sample.
type Sine struct {
	phase      float32
	samplerate float32
}

// NewSine returns a Sine at phase zero. The sample rate must be positive.
func NewSine(samplerate float32) *Sine {
	return &Sine{samplerate: samplerate}
}

func (s *Sine) String() string { return fmt.Sprintf("osc.Sine(%.4f)", s.phase) }

// Phase returns the current normalised phase.
func (s *Sine) Phase() float32 { return s.phase }

// SetSampleRate changes the sample rate without touching the phase.
func (s *Sine) SetSampleRate(samplerate float32) { s.samplerate = samplerate }

// Reset puts the phase back to zero, so the next Advance returns 0.
func (s *Sine) Reset() { s.phase = 0 }

// Advance returns the sine at the current phase and then moves the phase on
// by one sample at the provided frequency. Negative frequencies run the
// phase backwards.
func (s *Sine) Advance(freq float32) float32 {
	out := math32.Sin(2 * math32.Pi * s.phase)

	s.phase += freq / s.samplerate
	switch {
	case s.phase >= 1:
		s.phase -= 1
	case s.phase < 0:
		s.phase += 1
	}
	// Only reachable if the step was at least a whole cycle (the frequency
	// was at or above the sample rate) or the frequency wasn't finite.
	if !(s.phase >= 0 && s.phase < 1) {
		s.phase -= math32.Floor(s.phase)
		if !(s.phase >= 0 && s.phase < 1) {
			s.phase = 0
		}
	}
	return out
}

// noteFreqs maps every MIDI note to its frequency in Hz, A4 (69) = 440Hz.
var noteFreqs = func() [128]float32 {
	var t [128]float32
	for n := range t {
		t[n] = 440 * math32.Pow(2, float32(n-69)/12)
	}
	return t
}()

// NoteFreq returns the frequency of a MIDI note. Notes above 127 are
// clamped to 127.
func NoteFreq(note uint8) float32 {
	return noteFreqs[min(note, 127)]
}
