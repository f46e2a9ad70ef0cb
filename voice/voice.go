// package voice provides two-operator FM voices and a fixed-size pool to play
// them from note events.
package voice

import (
	"fmt"

	"github.com/pfcm/fmtwo/env"
	"github.com/pfcm/fmtwo/osc"
)

// Voice is a carrier oscillator frequency modulated by a second oscillator,
// shaped by an ADSR envelope. A voice is free whenever its envelope is idle.
type Voice struct {
	carrier   osc.Sine
	modulator osc.Sine
	env       env.ADSR

	bound    bool
	note     uint8
	freq     float32
	velocity float32
}

// New returns an idle voice.
func New(samplerate float32) *Voice {
	v := &Voice{}
	v.SetSampleRate(samplerate)
	return v
}

func (v *Voice) String() string {
	if !v.bound {
		return fmt.Sprintf("Voice(-,%v)", &v.env)
	}
	return fmt.Sprintf("Voice(%d,%v)", v.note, &v.env)
}

// SetSampleRate updates both operators and the envelope.
func (v *Voice) SetSampleRate(samplerate float32) {
	v.carrier.SetSampleRate(samplerate)
	v.modulator.SetSampleRate(samplerate)
	v.env.SetSampleRate(samplerate)
}

// Note returns the note the voice was last given and whether it still has
// one. Idle voices have no note.
func (v *Voice) Note() (uint8, bool) { return v.note, v.bound && !v.Idle() }

func (v *Voice) Freq() float32     { return v.freq }
func (v *Voice) Velocity() float32 { return v.velocity }
func (v *Voice) Stage() env.Stage  { return v.env.Stage() }
func (v *Voice) Level() float32    { return v.env.Level() }
func (v *Voice) Idle() bool        { return v.env.Stage() == env.Idle }

// NoteOn binds the voice to a note and (re)starts its attack. An idle voice
// starts both oscillators from phase zero, so its first sample is 0. A
// sounding voice carries on from its current level and phase.
func (v *Voice) NoteOn(note uint8, velocity float32) {
	if v.Idle() {
		v.carrier.Reset()
		v.modulator.Reset()
	}
	v.bound = true
	v.note = note
	v.freq = osc.NoteFreq(note)
	v.velocity = velocity
	v.env.Trigger()
}

// NoteOff starts the release.
func (v *Voice) NoteOff() { v.env.Release() }

// Reset silences the voice and puts both oscillators back to phase zero.
func (v *Voice) Reset() {
	v.carrier.Reset()
	v.modulator.Reset()
	v.env.Reset()
	v.bound = false
	v.velocity = 0
}

// Next advances the envelope by a sample and then renders one sample of the
// FM pair. The modulator runs at freq*ratio and its output, scaled by
// depth*freq, is added to the carrier frequency. Idle voices return 0 and
// leave their oscillators where they are.
func (v *Voice) Next(ratio, depth float32, p env.Params) float32 {
	level := v.env.Advance(p)
	if v.Idle() {
		return 0
	}
	m := v.modulator.Advance(v.freq * ratio)
	c := v.carrier.Advance(v.freq + m*depth*v.freq)
	return c * level
}
