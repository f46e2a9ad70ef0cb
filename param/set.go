package param

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pfcm/fmtwo"
)

// ID names one of the synth's parameters.
type ID int

const (
	Gain ID = iota
	Ratio
	Depth
	Attack
	Decay
	Sustain
	Release
	numParams
)

// Spec describes the range and behaviour of a parameter.
type Spec struct {
	Name        string
	Default     float32
	Min, Max    float32
	Smoothing   time.Duration
	Logarithmic bool // smoothed and mapped from MIDI logarithmically
	Unit        string
}

func (s Spec) String() string {
	return fmt.Sprintf("%s=%g%s [%g, %g]", s.Name, s.Default, s.Unit, s.Min, s.Max)
}

// Clamp limits v to the parameter's range.
func (s Spec) Clamp(v float32) float32 { return clamp(v, s.Min, s.Max) }

// FromMIDI maps a 7 bit controller value onto the parameter's range.
func (s Spec) FromMIDI(v byte) float32 {
	c := float64(min(v, 127)) / 127
	if s.Logarithmic && s.Min > 0 {
		lo, hi := math.Log(float64(s.Min)), math.Log(float64(s.Max))
		return s.Clamp(float32(math.Exp(lo + c*(hi-lo))))
	}
	return s.Clamp(s.Min + float32(c)*(s.Max-s.Min))
}

const (
	defaultSmoothing = 10 * time.Millisecond
	gainSmoothing    = 50 * time.Millisecond
)

// Specs holds the spec of every parameter, indexed by ID.
var Specs = [numParams]Spec{
	Gain: {
		Name:        "gain",
		Default:     DBToGain[float32](-20),
		Min:         DBToGain[float32](-30),
		Max:         DBToGain[float32](30),
		Smoothing:   gainSmoothing,
		Logarithmic: true,
	},
	Ratio:   {Name: "ratio", Default: 1, Min: 0.3, Max: 1, Smoothing: defaultSmoothing},
	Depth:   {Name: "depth", Default: 0.3, Min: 0, Max: 12, Smoothing: defaultSmoothing},
	Attack:  {Name: "attack", Default: 0.3, Min: 0, Max: 1, Smoothing: defaultSmoothing, Unit: "s"},
	Decay:   {Name: "decay", Default: 0.3, Min: 0, Max: 1, Smoothing: defaultSmoothing, Unit: "s"},
	Sustain: {Name: "sustain", Default: 0.5, Min: 0, Max: 1, Smoothing: defaultSmoothing},
	Release: {Name: "release", Default: 0.5, Min: 0, Max: 1, Smoothing: defaultSmoothing, Unit: "s"},
}

func (id ID) String() string {
	if id < 0 || id >= numParams {
		return fmt.Sprintf("ID(%d)", int(id))
	}
	return Specs[id].Name
}

// Lookup finds a parameter by name, ignoring case.
func Lookup(name string) (ID, bool) {
	for id, s := range Specs {
		if strings.EqualFold(s.Name, name) {
			return ID(id), true
		}
	}
	return 0, false
}

// Defaults returns a snapshot with every parameter at its default.
func Defaults() fmtwo.Params {
	return snapshot(func(id ID) float32 { return Specs[id].Default })
}

func snapshot(get func(ID) float32) fmtwo.Params {
	return fmtwo.Params{
		Gain:    get(Gain),
		Ratio:   get(Ratio),
		Depth:   get(Depth),
		Attack:  get(Attack),
		Decay:   get(Decay),
		Sustain: get(Sustain),
		Release: get(Release),
	}
}

// Set is the live value of every parameter. Set and Get may be called from
// any goroutine; Next must only be called from the audio thread. Neither
// side ever blocks the other.
type Set struct {
	targets   [numParams]atomic.Uint32 // float32 bits
	seen      [numParams]uint32
	smoothers [numParams]Smoother[float32]
}

var _ fmtwo.ParamSource = (*Set)(nil)

// NewSet returns a Set with every parameter at its default value.
func NewSet(samplerate float32) *Set {
	s := &Set{}
	for id, spec := range Specs {
		if spec.Logarithmic {
			s.smoothers[id] = NewLogarithmic(samplerate, spec.Smoothing, spec.Default)
		} else {
			s.smoothers[id] = NewLinear(samplerate, spec.Smoothing, spec.Default)
		}
		bits := math.Float32bits(spec.Default)
		s.targets[id].Store(bits)
		s.seen[id] = bits
	}
	return s
}

// Set changes the target of a parameter, clamped to its range.
func (s *Set) Set(id ID, v float32) {
	s.targets[id].Store(math.Float32bits(Specs[id].Clamp(v)))
}

// Get returns the current target of a parameter.
func (s *Set) Get(id ID) float32 {
	return math.Float32frombits(s.targets[id].Load())
}

// Next picks up any new targets and returns the smoothed values for the next
// sample.
func (s *Set) Next() fmtwo.Params {
	for id := range s.smoothers {
		if bits := s.targets[id].Load(); bits != s.seen[id] {
			s.seen[id] = bits
			s.smoothers[id].SetTarget(math.Float32frombits(bits))
		}
	}
	return snapshot(func(id ID) float32 { return s.smoothers[id].Next() })
}

func (s *Set) String() string {
	var b strings.Builder
	b.WriteString("Set(")
	for id := range s.targets {
		if id > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%v=%g", ID(id), s.Get(ID(id)))
	}
	b.WriteByte(')')
	return b.String()
}
