package portmidi

import (
	"testing"

	"github.com/pfcm/fmtwo/midi"
)

func TestToUMP(t *testing.T) {
	for _, c := range []struct {
		status, d1, d2 int64
		want           midi.Message
		ok             bool
	}{{
		status: 0x90, d1: 60, d2: 100,
		want: midi.Message{Type: midi.MTChannelVoice1, CV1Type: midi.CV1NoteOn, Note: 60, Velocity: 100},
		ok:   true,
	}, {
		status: 0x83, d1: 61, d2: 0,
		want: midi.Message{Type: midi.MTChannelVoice1, CV1Type: midi.CV1NoteOff, Channel: 3, Note: 61},
		ok:   true,
	}, {
		status: 0xB0, d1: 1, d2: 127,
		want: midi.Message{Type: midi.MTChannelVoice1, CV1Type: midi.CV1ControlChange, Note: 1, Velocity: 127},
		ok:   true,
	}, {
		status: 0xF8, // clock
	}, {
		status: 0x40, // running status data byte
	}} {
		w, ok := toUMP(c.status, c.d1, c.d2)
		if ok != c.ok {
			t.Errorf("toUMP(%#x, %d, %d) ok = %v, want: %v", c.status, c.d1, c.d2, ok, c.ok)
			continue
		}
		if !ok {
			continue
		}
		got, rest, err := midi.ParseMessage([]uint32{w})
		if err != nil {
			t.Errorf("ParseMessage(%#x): %v", w, err)
			continue
		}
		if len(rest) != 0 {
			t.Errorf("ParseMessage(%#x) left %v", w, rest)
		}
		if got != c.want {
			t.Errorf("toUMP(%#x, %d, %d) parsed = %v, want: %v", c.status, c.d1, c.d2, got, c.want)
		}
	}
}
