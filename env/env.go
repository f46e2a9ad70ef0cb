// package env provides envelope generators.
package env

import (
	"fmt"
)

// Stage is the part of its cycle an envelope is in.
type Stage byte

const (
	// Idle is both where an envelope starts and where it ends up after
	// the release has finished.
	Idle Stage = iota
	Attack
	Decay
	Sustain
	Release
)

func (s Stage) String() string {
	if int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", byte(s))
	}
	return stageNames[s]
}

var stageNames = []string{
	Idle:    "x",
	Attack:  "A",
	Decay:   "D",
	Sustain: "S",
	Release: "R",
}

// MinTime is the shortest attack, decay or release time in seconds. Shorter
// (or negative, or NaN) times are raised to it.
const MinTime float32 = 1e-4

// Params are the envelope settings for a single sample. Times are in
// seconds, Sustain is a level between 0 and 1.
type Params struct {
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32
}

func (p Params) String() string {
	return fmt.Sprintf("ADSR(%gs,%gs,%g,%gs)", p.Attack, p.Decay, p.Sustain, p.Release)
}

// ADSR is an attack-decay-sustain-release envelope. Trigger starts the
// attack, which ramps up to 1 then decays down to the sustain level. Release
// ramps back down to zero, after which the envelope is idle.
//
// Ramps are linear and their slopes are full scale per stage time, so a
// release from the sustain level takes Sustain*Release seconds.
type ADSR struct {
	level      float32
	stage      Stage
	samplerate float32
}

// NewADSR returns an idle envelope at level zero.
func NewADSR(samplerate float32) *ADSR {
	return &ADSR{samplerate: samplerate}
}

func (a *ADSR) String() string { return fmt.Sprintf("ADSR(%v,%.4f)", a.stage, a.level) }

func (a *ADSR) Level() float32 { return a.level }
func (a *ADSR) Stage() Stage   { return a.stage }

// SetSampleRate changes the sample rate used to turn times into slopes.
func (a *ADSR) SetSampleRate(samplerate float32) { a.samplerate = samplerate }

// Trigger (re)starts the attack from wherever the level currently is.
func (a *ADSR) Trigger() { a.stage = Attack }

// Release starts the release from the current level. It does nothing if the
// envelope is idle.
func (a *ADSR) Release() {
	if a.stage != Idle {
		a.stage = Release
	}
}

// Reset silences the envelope immediately.
func (a *ADSR) Reset() {
	a.stage = Idle
	a.level = 0
}

// Advance moves the envelope on by one sample and returns the new level.
func (a *ADSR) Advance(p Params) float32 {
	switch a.stage {
	case Attack:
		a.level += a.step(p.Attack)
		if a.level >= 1 {
			a.level = 1
			a.stage = Decay
		}
	case Decay:
		sus := sustainLevel(p.Sustain)
		a.level -= a.step(p.Decay)
		if a.level <= sus {
			a.level = sus
			a.stage = Sustain
		}
	case Sustain:
		a.level = sustainLevel(p.Sustain)
	case Release:
		a.level -= a.step(p.Release)
		if a.level <= 0 {
			a.level = 0
			a.stage = Idle
		}
	}
	return a.level
}

// step is the per-sample change for a stage lasting t seconds.
func (a *ADSR) step(t float32) float32 {
	// Written this way round so NaN ends up at the minimum too.
	if !(t > MinTime) {
		t = MinTime
	}
	return 1 / (t * a.samplerate)
}

func sustainLevel(s float32) float32 {
	switch {
	case s > 1:
		return 1
	case s > 0:
		return s
	}
	return 0
}
