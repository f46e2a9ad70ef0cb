package voice

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pfcm/fmtwo/env"
)

var slow = env.Params{Attack: 0.1, Decay: 0.1, Sustain: 0.5, Release: 0.2}

func notes(a *Allocator) []int {
	out := make([]int, a.Len())
	for i := range out {
		n, ok := a.Voice(i).Note()
		if !ok {
			out[i] = -1
			continue
		}
		out[i] = int(n)
	}
	return out
}

func TestAllocation(t *testing.T) {
	for _, c := range []struct {
		name   string
		voices int
		ons    []uint8
		idx    []int
		want   []int
	}{{
		name:   "two notes fit",
		voices: 2,
		ons:    []uint8{60, 64},
		idx:    []int{0, 1},
		want:   []int{60, 64},
	}, {
		name:   "third note steals the first voice",
		voices: 2,
		ons:    []uint8{60, 64, 67},
		idx:    []int{0, 1, 0},
		want:   []int{67, 64},
	}, {
		name:   "same note reuses its voice",
		voices: 2,
		ons:    []uint8{60, 64, 64},
		idx:    []int{0, 1, 1},
		want:   []int{60, 64},
	}, {
		name:   "stealing keeps stealing the first voice",
		voices: 2,
		ons:    []uint8{60, 64, 67, 69, 71},
		idx:    []int{0, 1, 0, 0, 0},
		want:   []int{71, 64},
	}, {
		name:   "bigger pool",
		voices: 4,
		ons:    []uint8{60, 62, 64, 65, 67},
		idx:    []int{0, 1, 2, 3, 0},
		want:   []int{67, 62, 64, 65},
	}, {
		name:   "single voice",
		voices: 1,
		ons:    []uint8{60, 62},
		idx:    []int{0, 0},
		want:   []int{62},
	}, {
		name:   "out of range note is ignored",
		voices: 2,
		ons:    []uint8{60, 128, 255},
		idx:    []int{0, -1, -1},
		want:   []int{60, -1},
	}} {
		// Run each twice to check the result doesn't depend on anything
		// but the events.
		for run := 0; run < 2; run++ {
			a := NewAllocator(c.voices, 48000)
			for i, n := range c.ons {
				if got := a.NoteOn(n, 1); got != c.idx[i] {
					t.Errorf("%s: NoteOn(%d) = %d, want: %d", c.name, n, got, c.idx[i])
				}
				a.Next(1, 0.5, slow)
			}
			if diff := cmp.Diff(notes(a), c.want); diff != "" {
				t.Errorf("%s: notes: unexpected diff (-got,+want):\n%v", c.name, diff)
			}
		}
	}
}

func TestIdleVoiceIsReused(t *testing.T) {
	a := NewAllocator(2, 1000)
	p := env.Params{Attack: 0.01, Decay: 0.01, Sustain: 0.5, Release: 0.01}
	a.NoteOn(60, 1)
	a.NoteOn(64, 1)
	a.NoteOff(60)
	for !a.Voice(0).Idle() {
		a.Next(1, 0, p)
	}
	if got := a.NoteOn(67, 1); got != 0 {
		t.Errorf("NoteOn with voice 0 idle = %d, want: 0", got)
	}
	if diff := cmp.Diff(notes(a), []int{67, 64}); diff != "" {
		t.Errorf("notes: unexpected diff (-got,+want):\n%v", diff)
	}
}

func TestNoteOff(t *testing.T) {
	a := NewAllocator(2, 1000)
	if got := a.NoteOff(60); got != 0 {
		t.Errorf("NoteOff on an empty pool released %d voices", got)
	}
	a.NoteOn(60, 1)
	a.NoteOn(64, 1)
	if got := a.NoteOff(62); got != 0 {
		t.Errorf("NoteOff(62) released %d voices, want: 0", got)
	}
	for i := 0; i < a.Len(); i++ {
		if s := a.Voice(i).Stage(); s != env.Attack {
			t.Errorf("voice %d stage = %v after unrelated NoteOff, want: %v", i, s, env.Attack)
		}
	}
	if got := a.NoteOff(64); got != 1 {
		t.Errorf("NoteOff(64) released %d voices, want: 1", got)
	}
	if s := a.Voice(1).Stage(); s != env.Release {
		t.Errorf("voice 1 stage = %v, want: %v", s, env.Release)
	}
	if s := a.Voice(0).Stage(); s != env.Attack {
		t.Errorf("voice 0 stage = %v, want: %v", s, env.Attack)
	}
}

func TestNoteOffReleasesEveryMatch(t *testing.T) {
	a := NewAllocator(2, 1000)
	a.NoteOn(60, 1)
	a.NoteOn(64, 1)
	a.NoteOff(60)
	// Voice 0 is releasing 60 so it isn't idle; 60 again goes to voice 0
	// because it is still bound to it.
	if got := a.NoteOn(60, 1); got != 0 {
		t.Fatalf("NoteOn(60) = %d, want: 0", got)
	}
	// Force both voices onto the same note.
	a.Voice(1).NoteOn(60, 1)
	if got := a.NoteOff(60); got != 2 {
		t.Errorf("NoteOff(60) released %d voices, want: 2", got)
	}
}

func TestAllocatorReset(t *testing.T) {
	a := NewAllocator(3, 1000)
	for _, n := range []uint8{60, 61, 62} {
		a.NoteOn(n, 1)
	}
	for i := 0; i < 50; i++ {
		a.Next(1, 1, slow)
	}
	a.Reset()
	for i := 0; i < a.Len(); i++ {
		if v := a.Voice(i); !v.Idle() || v.Level() != 0 {
			t.Errorf("voice %d after Reset: %v", i, v)
		}
	}
	if got := a.Next(1, 1, slow); got != 0 {
		t.Errorf("Next after Reset = %v, want: 0", got)
	}
}

func TestNewAllocatorMinimum(t *testing.T) {
	if got := NewAllocator(0, 1000).Len(); got != 1 {
		t.Errorf("NewAllocator(0).Len() = %d, want: 1", got)
	}
}
