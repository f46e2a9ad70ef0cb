package fmtwo

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/pfcm/fmtwo/voice"
)

// ErrSampleRate is returned for sample rates that aren't finite and positive.
var ErrSampleRate = errors.New("sample rate must be finite and positive")

// Engine is the synth: a pool of FM voices, played by note events and summed
// into a single mono signal.
//
// Nothing in Apply, Next or Process allocates, blocks or takes longer than a
// fixed amount of work per sample. An Engine must only be used from one
// goroutine at a time.
type Engine struct {
	samplerate float32
	voices     *voice.Allocator
}

// Option configures an Engine.
type Option func(*Engine)

// WithVoices sets the size of the voice pool. The default is
// voice.DefaultVoices.
func WithVoices(n int) Option {
	return func(e *Engine) {
		e.voices = voice.NewAllocator(n, e.samplerate)
	}
}

// New makes an Engine for the given sample rate.
func New(samplerate float32, opts ...Option) (*Engine, error) {
	if err := checkRate(samplerate); err != nil {
		return nil, err
	}
	e := &Engine{samplerate: samplerate}
	for _, o := range opts {
		o(e)
	}
	if e.voices == nil {
		e.voices = voice.NewAllocator(voice.DefaultVoices, samplerate)
	}
	return e, nil
}

func checkRate(r float32) error {
	if !(r > 0) || math.IsInf(float64(r), 0) {
		return fmt.Errorf("%v: %w", r, ErrSampleRate)
	}
	return nil
}

func (e *Engine) String() string { return fmt.Sprintf("Engine(%g,%v)", e.samplerate, e.voices) }

func (e *Engine) SampleRate() float32 { return e.samplerate }

// Voices exposes the voice pool, mostly for inspection.
func (e *Engine) Voices() *voice.Allocator { return e.voices }

// SetSampleRate changes the sample rate. Voices keep their state.
func (e *Engine) SetSampleRate(samplerate float32) error {
	if err := checkRate(samplerate); err != nil {
		return err
	}
	e.samplerate = samplerate
	e.voices.SetSampleRate(samplerate)
	return nil
}

// Reset silences every voice and puts every oscillator back to phase zero.
func (e *Engine) Reset() { e.voices.Reset() }

// Apply handles a single event immediately, ignoring its Timing. Events for
// notes outside 0-127 are ignored.
func (e *Engine) Apply(ev Event) {
	if ev.Note > voice.MaxNote {
		return
	}
	switch ev.Kind {
	case NoteOn:
		e.voices.NoteOn(ev.Note, ev.Velocity)
	case NoteOff:
		e.voices.NoteOff(ev.Note)
	}
}

// Next renders a single sample. Non-finite gain, ratio or depth count as
// zero.
func (e *Engine) Next(p Params) float32 {
	sum := e.voices.Next(finite(p.Ratio), finite(p.Depth), p.envelope())
	return sum * finite(p.Gain)
}

// Process renders one block of audio into every channel of out, applying
// events at the sample given by their Timing: every event due at or before a
// sample is applied before that sample is rendered. Events that are due
// after the end of the block are applied before its last sample.
//
// events should already be sorted by Timing; if it isn't it is sorted in
// place. An empty block renders nothing but still applies every event.
func (e *Engine) Process(events []Event, params ParamSource, out [][]float32) {
	if !slices.IsSortedFunc(events, byTiming) {
		slices.SortStableFunc(events, byTiming)
	}
	if len(out) == 0 || len(out[0]) == 0 {
		for _, ev := range events {
			e.Apply(ev)
		}
		return
	}
	n := len(out[0])
	for i := 0; i < n; i++ {
		for len(events) > 0 && (events[0].Timing <= i || i == n-1) {
			e.Apply(events[0])
			events = events[1:]
		}
		s := e.Next(params.Next())
		for _, ch := range out {
			ch[i] = s
		}
	}
}

func byTiming(a, b Event) int { return cmp.Compare(a.Timing, b.Timing) }

// Player is a Ticker that plays an Engine with events and parameters pulled
// from the provided sources. It has no inputs and writes the same signal to
// every one of its outputs.
type Player struct {
	e        *Engine
	events   EventSource
	params   ParamSource
	channels int
	scratch  []Event
}

var _ Ticker = (*Player)(nil)

// maxEventsPerBlock is how many events Player makes room for up front,
// unless the source is Bounded by more.
const maxEventsPerBlock = 256

// NewPlayer returns a Player with the given number of output channels. A nil
// EventSource plays no events.
func NewPlayer(e *Engine, events EventSource, params ParamSource, channels int) *Player {
	size := maxEventsPerBlock
	if b, ok := events.(Bounded); ok {
		size = max(size, b.MaxEvents())
	}
	return &Player{
		e:        e,
		events:   events,
		params:   params,
		channels: channels,
		scratch:  make([]Event, 0, size),
	}
}

func (*Player) Inputs() int      { return 0 }
func (p *Player) Outputs() int   { return p.channels }
func (p *Player) String() string { return fmt.Sprintf("Player(%d)", p.channels) }

func (p *Player) Tick(_, output [][]float32) {
	n := 0
	if len(output) > 0 {
		n = len(output[0])
	}
	evs := p.scratch[:0]
	if p.events != nil {
		evs = p.events.Events(n, evs)
	}
	p.e.Process(evs, p.params, output)
	// Hang on to anything the source had to grow so the next block
	// doesn't need to.
	p.scratch = evs[:0]
}
