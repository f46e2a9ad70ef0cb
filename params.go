package fmtwo

import (
	"fmt"
	"math"

	"github.com/pfcm/fmtwo/env"
)

// Params is a snapshot of every setting of the synth for a single sample.
type Params struct {
	// Gain is the linear gain applied to the sum of the voices.
	Gain float32
	// Ratio is the modulator frequency as a multiple of the note frequency.
	Ratio float32
	// Depth scales the modulator output into a frequency deviation, as a
	// multiple of the note frequency.
	Depth float32

	// Envelope times are in seconds, Sustain is a level in [0, 1].
	Attack, Decay, Sustain, Release float32
}

func (p Params) String() string {
	return fmt.Sprintf("Params(gain=%g,ratio=%g,depth=%g,%v)", p.Gain, p.Ratio, p.Depth, p.envelope())
}

func (p Params) envelope() env.Params {
	return env.Params{
		Attack:  p.Attack,
		Decay:   p.Decay,
		Sustain: p.Sustain,
		Release: p.Release,
	}
}

// ParamSource supplies a fresh snapshot for every sample.
type ParamSource interface {
	Next() Params
}

// Fixed is a ParamSource that never changes.
type Fixed Params

func (f Fixed) Next() Params { return Params(f) }

// finite returns f, or 0 if it is NaN or infinite.
func finite(f float32) float32 {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return 0
	}
	return f
}
