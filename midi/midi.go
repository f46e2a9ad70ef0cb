// package midi turns raw UMP words from a MIDI input into Messages and fans
// them out to subscribers.
package midi

import (
	"context"
	"log"
	"sync"
)

// ChannelMask has bit n set for each MIDI channel n to receive.
type ChannelMask uint16

const AllChannels ChannelMask = 0xFFFF

// Channel returns a mask for a single channel.
func Channel(ch byte) ChannelMask { return 1 << (ch & 0xF) }

// Listener is function that blocks until its context is done, calling a
// provided callback with UMP midi messages.
type Listener func(context.Context, func([]uint32)) error

type sub struct {
	f filter
	c chan Message
}

// Dispatcher routes MIDI messages to a set of channels.
type Dispatcher struct {
	mu     sync.Mutex
	subs   []sub
	closed bool

	done chan struct{}
	err  error
}

// Listen starts listening for MIDI messages in the background with the provided
// Listener. It returns a Dispatcher whose Subscribe message can be used to get
// a channel on which to receive Messages. When the Listener returns every
// subscription is closed.
func Listen(ctx context.Context, l Listener) *Dispatcher {
	d := &Dispatcher{done: make(chan struct{})}

	go func() {
		err := l(ctx, d.Dispatch)
		if err != nil && ctx.Err() == nil {
			log.Printf("midi listener: %v", err)
		}
		d.close(err)
	}()

	return d
}

// Dispatch parses raw UMP words and sends the resulting messages to every
// matching subscriber. A message that doesn't parse is logged and dropped
// along with the rest of raw.
func (d *Dispatcher) Dispatch(raw []uint32) {
	msgs, err := ParseMessages(raw)
	if err != nil {
		log.Printf("midi: parsing %#x: %v", raw, err)
	}
	for _, m := range msgs {
		d.dispatch(m)
	}
}

func (d *Dispatcher) dispatch(msg Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.subs {
		if !s.f.match(msg) {
			continue
		}
		s.c <- msg
	}
}

func (d *Dispatcher) close(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, s := range d.subs {
		close(s.c)
	}
	d.subs = d.subs[:0]
	d.closed = true
	d.err = err
	close(d.done)
}

// Done is closed once the Listener has returned.
func (d *Dispatcher) Done() <-chan struct{} { return d.done }

// Err returns the Listener's error, once Done is closed.
func (d *Dispatcher) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Subscribe returns a channel that receives every message that passes all of
// the filters. Subscribers must keep up: a full channel holds up every other
// subscriber.
func (d *Dispatcher) Subscribe(opts ...SubscriptionFilter) <-chan Message {
	f := defaultFilter()
	for _, o := range opts {
		o(&f)
	}

	c := make(chan Message, 100)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		close(c)
		return c
	}
	d.subs = append(d.subs, sub{f: f, c: c})
	return c
}

type filter struct {
	channels ChannelMask
	cv1Types [7]bool
	// TODO: filter control changes by index so hid.Keyboard can skip
	// controllers it has no mapping for.
}

func defaultFilter() filter {
	f := filter{
		channels: AllChannels,
	}
	for i := range f.cv1Types {
		f.cv1Types[i] = true
	}
	return f
}

// match only passes MIDI 1.0 channel voice messages.
func (f *filter) match(msg Message) bool {
	if msg.Type != MTChannelVoice1 {
		return false
	}
	if f.channels&Channel(msg.Channel) == 0 {
		return false
	}
	return f.cv1Types[int(msg.CV1Type&0x7)]
}

type SubscriptionFilter func(f *filter)

func WithChannelMask(cm ChannelMask) SubscriptionFilter {
	return func(f *filter) { f.channels = cm }
}

func WithoutCV1Type(t CV1MessageType) SubscriptionFilter {
	return func(f *filter) {
		f.cv1Types[int(t&0x7)] = false
	}
}

// OnlyNotes drops everything but note on and note off.
func OnlyNotes() SubscriptionFilter {
	return func(f *filter) {
		for i := range f.cv1Types {
			f.cv1Types[i] = false
		}
		f.cv1Types[int(CV1NoteOn&0x7)] = true
		f.cv1Types[int(CV1NoteOff&0x7)] = true
	}
}
