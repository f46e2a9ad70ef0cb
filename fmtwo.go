// package fmtwo is a small two-operator FM synthesizer.
//
// The Engine turns timed note events and per-sample parameter snapshots into
// audio. Everything else in this package is plumbing to run it: Tickers that
// process blocks of samples, and sources of events and parameters.
package fmtwo

import (
	"fmt"
)

// MaxBlock is the largest number of samples a Chain will process in one
// Tick. Callers with bigger buffers should split them up.
const MaxBlock = 4096

// Ticker is something that processes audio.
type Ticker interface {
	// Inputs returns the number of expected input channels.
	Inputs() int
	// Outputs returns the number of expected output channels.
	Outputs() int
	// Tick processes a chunk of audio. The first dimension of the input
	// slice is always Inputs, and the first dimension of the output
	// slice is always Outputs. Each individual element of both slices
	// is always the same length. Tickers may overwrite the input buffer.
	Tick(input, output [][]float32)

	fmt.Stringer
}

// Chain is a ticker that applies a sequence of Tickers. The inputs and outputs all
// need to line up.
type Chain struct {
	ts              []Ticker
	inputs, outputs int
	b1, b2          [][]float32
}

var _ Ticker = Chain{}

// Serially chains the tickers together. It panics if there are no tickers or
// if one's outputs don't match the next one's inputs.
func Serially(ts ...Ticker) Chain {
	if len(ts) == 0 {
		panic(fmt.Errorf("empty chain"))
	}
	maxChans := ts[0].Inputs()
	for i := 1; i < len(ts); i++ {
		if ts[i-1].Outputs() != ts[i].Inputs() {
			panic(fmt.Errorf(
				"outputs/inputs mismatch:\n%v (%d outputs)\n->\n%v (%d inputs)",
				ts[i-1], ts[i-1].Outputs(), ts[i], ts[i].Inputs()))
		}
		maxChans = max(ts[i-1].Outputs(), maxChans)
	}
	maxChans = max(ts[len(ts)-1].Outputs(), maxChans)
	return Chain{
		ts:      ts,
		inputs:  ts[0].Inputs(),
		outputs: ts[len(ts)-1].Outputs(),
		b1:      makeBuffers(maxChans),
		b2:      makeBuffers(maxChans),
	}
}

func makeBuffers(chans int) [][]float32 {
	b := make([][]float32, chans)
	for i := range b {
		b[i] = make([]float32, MaxBlock)
	}
	return b
}

func (c Chain) Inputs() int    { return c.inputs }
func (c Chain) Outputs() int   { return c.outputs }
func (c Chain) String() string { return fmt.Sprintf("Chain(%v)", c.ts) }

func (c Chain) Tick(input, output [][]float32) {
	n := blockLen(input, output)
	// TODO: the first and last copies could be skipped by ticking
	// straight from input and into output.
	in, out := c.b1[:len(input)], c.b2
	for i := range input {
		in[i] = in[i][:n]
		copy(in[i], input[i])
	}
	for _, t := range c.ts {
		out = out[:t.Outputs()]
		for i := range out {
			out[i] = out[i][:n]
			clear(out[i])
		}
		t.Tick(in, out)
		in, out = out, in[:cap(in)]
	}
	for i := range output {
		copy(output[i], in[i])
	}
}

func blockLen(input, output [][]float32) int {
	switch {
	case len(output) > 0:
		return len(output[0])
	case len(input) > 0:
		return len(input[0])
	}
	return 0
}

// Clip is a hard limiter: it copies each input channel to the matching
// output, clamping samples to [-Limit, Limit].
type Clip struct {
	N     int
	Limit float32
}

var _ Ticker = Clip{}

func (c Clip) Inputs() int    { return c.N }
func (c Clip) Outputs() int   { return c.N }
func (c Clip) String() string { return fmt.Sprintf("Clip(%d,%g)", c.N, c.Limit) }

func (c Clip) Tick(input, output [][]float32) {
	for i, in := range input {
		for j, s := range in {
			switch {
			case s > c.Limit:
				s = c.Limit
			case s < -c.Limit:
				s = -c.Limit
			case s != s:
				s = 0
			}
			output[i][j] = s
		}
	}
}
