package fmtwo

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseScore(t *testing.T) {
	for _, c := range []struct {
		in   string
		want []Note
	}{{
		in: "69@0s+500ms",
		want: []Note{
			{Note: 69, Velocity: 1, Start: 0, Length: 500 * time.Millisecond},
		},
	}, {
		in: "C4@0s+1s:0.5, E4@250ms+1s G4@0.5s+1s:0",
		want: []Note{
			{Note: 60, Velocity: 0.5, Start: 0, Length: time.Second},
			{Note: 64, Velocity: 1, Start: 250 * time.Millisecond, Length: time.Second},
			{Note: 67, Velocity: 0, Start: 500 * time.Millisecond, Length: time.Second},
		},
	}, {
		in: "F#3@1s+1s\nBb2@1s+1s\ta4@0s+0s",
		want: []Note{
			{Note: 54, Velocity: 1, Start: time.Second, Length: time.Second},
			{Note: 46, Velocity: 1, Start: time.Second, Length: time.Second},
			{Note: 69, Velocity: 1},
		},
	}, {
		in:   "",
		want: []Note{},
	}} {
		got, err := ParseScore(c.in)
		if err != nil {
			t.Errorf("ParseScore(%q): %v", c.in, err)
			continue
		}
		if diff := cmp.Diff(got, c.want); diff != "" {
			t.Errorf("ParseScore(%q): unexpected diff (-got,+want):\n%v", c.in, diff)
		}
	}
}

func TestParseScoreErrors(t *testing.T) {
	for _, in := range []string{
		"69",
		"69@0s",
		"128@0s+1s",
		"-1@0s+1s",
		"H4@0s+1s",
		"C@0s+1s",
		"C4@1+1s",
		"C4@0s+1",
		"C4@-1s+1s",
		"C4@0s+1s:2",
		"C4@0s+1s:loud",
		"A9@0s+1s",
	} {
		if got, err := ParseScore(in); err == nil {
			t.Errorf("ParseScore(%q) = %v, want an error", in, got)
		}
	}
}

func TestSequence(t *testing.T) {
	s := NewSequence(1000, []Note{
		{Note: 60, Velocity: 1, Start: 0, Length: 10 * time.Millisecond},
		{Note: 64, Velocity: 0.5, Start: 5 * time.Millisecond, Length: 20 * time.Millisecond},
	})
	if got := s.End(); got != 25 {
		t.Errorf("End() = %d, want: 25", got)
	}
	for _, c := range []struct {
		n    int
		want []Event
	}{{
		n: 8,
		want: []Event{
			{Kind: NoteOn, Note: 60, Velocity: 1, Timing: 0},
			{Kind: NoteOn, Note: 64, Velocity: 0.5, Timing: 5},
		},
	}, {
		n: 8,
		want: []Event{
			{Kind: NoteOff, Note: 60, Timing: 2},
		},
	}, {
		n:    8,
		want: nil,
	}, {
		n: 8,
		want: []Event{
			{Kind: NoteOff, Note: 64, Timing: 1},
		},
	}} {
		if s.Done() {
			t.Fatalf("%v: done too early", s)
		}
		if diff := cmp.Diff(s.Events(c.n, nil), c.want); diff != "" {
			t.Errorf("%v: Events(%d): unexpected diff (-got,+want):\n%v", s, c.n, diff)
		}
	}
	if !s.Done() {
		t.Errorf("%v: not done after every event", s)
	}
	s.Rewind()
	if got := s.Events(1, nil); len(got) != 1 || got[0].Note != 60 {
		t.Errorf("after Rewind: Events(1) = %v", got)
	}
}
