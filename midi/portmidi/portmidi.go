// package portmidi reads MIDI input through PortMidi, which works on every
// platform PortMidi supports.
package portmidi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pfcm/fmtwo/midi"
	"github.com/rakyll/portmidi"
)

const (
	bufferSize   = 1024
	pollInterval = time.Millisecond
)

// ErrNoDevice is returned when there is no MIDI input to listen to.
var ErrNoDevice = errors.New("no MIDI input device")

// ReceiveDefault is a midi.Listener for the default input device. Channel
// messages arrive as MIDI 1.0 channel voice UMP words; system messages are
// dropped.
func ReceiveDefault(ctx context.Context, f func([]uint32)) error {
	if err := portmidi.Initialize(); err != nil {
		return fmt.Errorf("initializing portmidi: %w", err)
	}
	defer portmidi.Terminate()
	id := portmidi.DefaultInputDeviceID()
	if id < 0 {
		return ErrNoDevice
	}
	return receive(ctx, id, f)
}

// Receive returns a midi.Listener for the input device with the given name.
func Receive(name string) midi.Listener {
	return func(ctx context.Context, f func([]uint32)) error {
		if err := portmidi.Initialize(); err != nil {
			return fmt.Errorf("initializing portmidi: %w", err)
		}
		defer portmidi.Terminate()
		for i := 0; i < portmidi.CountDevices(); i++ {
			id := portmidi.DeviceID(i)
			if info := portmidi.Info(id); info != nil && info.IsInputAvailable && info.Name == name {
				return receive(ctx, id, f)
			}
		}
		return fmt.Errorf("%q: %w", name, ErrNoDevice)
	}
}

// Inputs lists the names of the available input devices.
func Inputs() ([]string, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portmidi: %w", err)
	}
	defer portmidi.Terminate()
	var names []string
	for i := 0; i < portmidi.CountDevices(); i++ {
		if info := portmidi.Info(portmidi.DeviceID(i)); info != nil && info.IsInputAvailable {
			names = append(names, info.Name)
		}
	}
	return names, nil
}

func receive(ctx context.Context, id portmidi.DeviceID, f func([]uint32)) error {
	in, err := portmidi.NewInputStream(id, bufferSize)
	if err != nil {
		return fmt.Errorf("opening input %d: %w", id, err)
	}
	defer in.Close()
	if info := portmidi.Info(id); info != nil {
		log.Printf("listening to %q", info.Name)
	}

	t := time.NewTicker(pollInterval)
	defer t.Stop()
	var words []uint32
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		ok, err := in.Poll()
		if err != nil {
			return fmt.Errorf("polling: %w", err)
		}
		if !ok {
			continue
		}
		events, err := in.Read(bufferSize)
		if err != nil {
			return fmt.Errorf("reading: %w", err)
		}
		words = words[:0]
		for _, e := range events {
			if w, ok := toUMP(e.Status, e.Data1, e.Data2); ok {
				words = append(words, w)
			}
		}
		if len(words) > 0 {
			f(words)
		}
	}
}

// toUMP packs a channel message. Anything from 0xF0 up is a system message.
func toUMP(status, d1, d2 int64) (uint32, bool) {
	if status < 0x80 || status >= 0xF0 {
		return 0, false
	}
	return midi.Pack(byte(status), byte(d1), byte(d2)), true
}
