package fmtwo

import (
	"math"
	"testing"
)

// ramp is a Ticker with no inputs that writes 0, 1, 2... to every output.
type ramp struct{ outs int }

func (ramp) Inputs() int    { return 0 }
func (r ramp) Outputs() int { return r.outs }
func (ramp) String() string { return "ramp" }
func (r ramp) Tick(_, out [][]float32) {
	for _, o := range out {
		for i := range o {
			o[i] = float32(i)
		}
	}
}

func TestSeriallyClips(t *testing.T) {
	c := Serially(ramp{2}, Clip{N: 2, Limit: 3})
	if c.Inputs() != 0 || c.Outputs() != 2 {
		t.Fatalf("%v: %d inputs, %d outputs, want: 0, 2", c, c.Inputs(), c.Outputs())
	}
	out := [][]float32{make([]float32, 6), make([]float32, 6)}
	c.Tick(nil, out)
	want := []float32{0, 1, 2, 3, 3, 3}
	for ch := range out {
		for i := range want {
			if out[ch][i] != want[i] {
				t.Errorf("channel %d sample %d = %v, want: %v", ch, i, out[ch][i], want[i])
			}
		}
	}
}

func TestSeriallyPanicsOnMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Serially with mismatched channels didn't panic")
		}
	}()
	Serially(ramp{2}, Clip{N: 1, Limit: 1})
}

func TestClip(t *testing.T) {
	in := [][]float32{{-2, -1, 0, 0.5, 1, 2, float32(math.NaN()), float32(math.Inf(-1))}}
	out := [][]float32{make([]float32, len(in[0]))}
	Clip{N: 1, Limit: 1}.Tick(in, out)
	want := []float32{-1, -1, 0, 0.5, 1, 1, 0, -1}
	for i := range want {
		if out[0][i] != want[i] {
			t.Errorf("Clip(%v) = %v, want: %v", in[0][i], out[0][i], want[i])
		}
	}
}
