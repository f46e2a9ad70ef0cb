package io

import (
	"encoding/binary"
	"log"
	"math"

	"github.com/pfcm/fmtwo"
)

// renderer runs a Ticker a block at a time and converts between its planar
// float32 buffers and interleaved little endian bytes.
type renderer struct {
	t       fmtwo.Ticker
	in, out [][]float32
	tap     *wavWriter
}

func newRenderer(t fmtwo.Ticker, tap *wavWriter) *renderer {
	r := &renderer{
		t:   t,
		in:  make([][]float32, t.Inputs()),
		out: make([][]float32, t.Outputs()),
		tap: tap,
	}
	for i := range r.in {
		r.in[i] = make([]float32, fmtwo.MaxBlock)
	}
	for i := range r.out {
		r.out[i] = make([]float32, fmtwo.MaxBlock)
	}
	return r
}

func (r *renderer) frameSize() int { return 4 * len(r.out) }

// tick runs n <= fmtwo.MaxBlock frames and returns the outputs.
func (r *renderer) tick(n int) [][]float32 {
	for i, inp := range r.in {
		r.in[i] = inp[:n]
	}
	for i, outp := range r.out {
		r.out[i] = outp[:n]
	}
	r.t.Tick(r.in, r.out)
	if r.tap != nil {
		if err := r.tap.write(r.out); err != nil {
			log.Printf("writing wav, giving up: %v", err)
			r.tap = nil
		}
	}
	return r.out
}

// deinterleave fills the first n frames of the inputs from interleaved
// float32 samples. Frames missing from in are silent.
func (r *renderer) deinterleave(in []byte, n int) {
	frameSize := 4 * len(r.in)
	for c := range r.in {
		r.in[c] = r.in[c][:n]
		for i := range r.in[c] {
			j := i*frameSize + c*4
			if j+4 > len(in) {
				r.in[c][i] = 0
				continue
			}
			r.in[c][i] = math.Float32frombits(binary.LittleEndian.Uint32(in[j:]))
		}
	}
}

// render fills out with interleaved float32 frames, as many blocks as it
// takes. Returns the number of bytes written, which is a whole number of
// frames.
func (r *renderer) render(out, in []byte) int {
	fs := r.frameSize()
	if fs == 0 {
		return 0
	}
	frames := len(out) / fs
	o := out[:0]
	for done := 0; done < frames; {
		n := min(frames-done, fmtwo.MaxBlock)
		if len(r.in) > 0 {
			r.deinterleave(in[min(done*4*len(r.in), len(in)):], n)
		}
		outs := r.tick(n)
		for i := 0; i < n; i++ {
			for c := range outs {
				o = binary.LittleEndian.AppendUint32(o, math.Float32bits(outs[c][i]))
			}
		}
		done += n
	}
	return len(o)
}
