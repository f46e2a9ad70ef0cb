// package hid handles human interface devices. Or IO that uses the same protocols,
// like MIDI.
package hid

import (
	"fmt"
	"sync/atomic"

	"github.com/pfcm/fmtwo"
	"github.com/pfcm/fmtwo/internal/buffer"
	"github.com/pfcm/fmtwo/midi"
	"github.com/pfcm/fmtwo/param"
)

const defaultQueue = 256

// DefaultControls maps General MIDI controller numbers onto parameters.
var DefaultControls = map[byte]param.ID{
	1:  param.Depth, // mod wheel
	7:  param.Gain,  // channel volume
	71: param.Ratio,
	72: param.Release,
	73: param.Attack,
	75: param.Decay,
	79: param.Sustain,
}

// Keyboard turns MIDI note messages into events for the audio thread, and
// optionally control changes into parameter changes. Messages are handled on
// their own goroutine; Events is called from the audio thread and never
// blocks.
type Keyboard struct {
	queue    *buffer.Ring[fmtwo.Event]
	params   *param.Set
	controls map[byte]param.ID
	channels midi.ChannelMask

	dropped atomic.Uint64
	done    chan struct{}
}

var (
	_ fmtwo.EventSource = (*Keyboard)(nil)
	_ fmtwo.Bounded     = (*Keyboard)(nil)
)

type Option func(*Keyboard)

// WithParams sends control changes to s, using the mapping in controls.
func WithParams(s *param.Set, controls map[byte]param.ID) Option {
	return func(k *Keyboard) {
		k.params = s
		k.controls = controls
	}
}

// WithChannels only listens to some MIDI channels.
func WithChannels(cm midi.ChannelMask) Option {
	return func(k *Keyboard) { k.channels = cm }
}

// WithQueue sets how many events can be waiting for the audio thread before
// new ones are dropped.
func WithQueue(n int) Option {
	return func(k *Keyboard) { k.queue = buffer.NewRing[fmtwo.Event](n) }
}

// NewKeyboard subscribes to d and starts handling messages.
func NewKeyboard(d *midi.Dispatcher, opts ...Option) *Keyboard {
	k := &Keyboard{
		queue:    buffer.NewRing[fmtwo.Event](defaultQueue),
		channels: midi.AllChannels,
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(k)
	}

	filters := []midi.SubscriptionFilter{
		midi.WithChannelMask(k.channels),
		midi.WithoutCV1Type(midi.CV1PolyPressure),
		midi.WithoutCV1Type(midi.CV1ProgramChange),
		midi.WithoutCV1Type(midi.CV1ChannelPressure),
		midi.WithoutCV1Type(midi.CV1PitchBend),
	}
	if k.params == nil {
		filters = append(filters, midi.WithoutCV1Type(midi.CV1ControlChange))
	}
	c := d.Subscribe(filters...)
	go func() {
		defer close(k.done)
		for msg := range c {
			k.handle(msg)
		}
	}()

	return k
}

func (k *Keyboard) handle(msg midi.Message) {
	if ev, ok := msg.Event(); ok {
		if !k.queue.Push(ev) {
			k.dropped.Add(1)
		}
		return
	}
	if msg.CV1Type != midi.CV1ControlChange || k.params == nil {
		return
	}
	if id, ok := k.controls[msg.Note]; ok {
		k.params.Set(id, param.Specs[id].FromMIDI(msg.Velocity))
	}
}

func (k *Keyboard) String() string {
	return fmt.Sprintf("Keyboard(%v, %d dropped)", k.queue, k.Dropped())
}

// Dropped counts the events lost because the queue was full.
func (k *Keyboard) Dropped() uint64 { return k.dropped.Load() }

// Done is closed once the subscription has ended and every message has been
// handled.
func (k *Keyboard) Done() <-chan struct{} { return k.done }

// MaxEvents is the size of the queue, the most Events will ever return.
func (k *Keyboard) MaxEvents() int { return k.queue.Cap() }

// Events hands over everything that has arrived since the last call, all at
// the start of the block.
func (k *Keyboard) Events(_ int, dst []fmtwo.Event) []fmtwo.Event {
	return k.queue.Drain(dst, k.queue.Cap())
}
