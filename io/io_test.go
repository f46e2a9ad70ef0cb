package io

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/pfcm/fmtwo"
)

// counter outputs 0, 1, 2... on every channel, scaled by step, and records
// the block sizes it was asked for.
type counter struct {
	channels int
	step     float32
	n        int
	blocks   []int
}

func (c *counter) Inputs() int    { return 0 }
func (c *counter) Outputs() int   { return c.channels }
func (c *counter) String() string { return "counter" }

func (c *counter) Tick(_, out [][]float32) {
	c.blocks = append(c.blocks, len(out[0]))
	for i := range out[0] {
		for _, o := range out {
			o[i] = float32(c.n) * c.step
		}
		c.n++
	}
}

func TestReader(t *testing.T) {
	c := &counter{channels: 2, step: 1}
	r := NewReader(c)
	// 3 whole frames and a bit.
	b := make([]byte, 3*8+5)
	n, err := r.Read(b)
	if err != nil {
		t.Fatal(err)
	}
	if n != 24 {
		t.Fatalf("Read() = %d bytes, want: 24", n)
	}
	for i := 0; i < 6; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		if want := float32(i / 2); got != want {
			t.Errorf("sample %d = %v, want: %v", i, got, want)
		}
	}
}

func TestReaderSplitsBlocks(t *testing.T) {
	c := &counter{channels: 1, step: 1}
	r := NewReader(c)
	b := make([]byte, 4*(fmtwo.MaxBlock+10))
	if _, err := r.Read(b); err != nil {
		t.Fatal(err)
	}
	if len(c.blocks) != 2 || c.blocks[0] != fmtwo.MaxBlock || c.blocks[1] != 10 {
		t.Errorf("blocks = %v, want: [%d 10]", c.blocks, fmtwo.MaxBlock)
	}
	last := math.Float32frombits(binary.LittleEndian.Uint32(b[len(b)-4:]))
	if want := float32(fmtwo.MaxBlock + 9); last != want {
		t.Errorf("last sample = %v, want: %v", last, want)
	}
}

func TestToPCM(t *testing.T) {
	for _, c := range []struct {
		in   float32
		want int
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{2, 32767},
		{-2, -32767},
		{0.5, 16384},
		{float32(math.NaN()), 0},
	} {
		if got := toPCM(c.in); got != c.want {
			t.Errorf("toPCM(%v) = %d, want: %d", c.in, got, c.want)
		}
	}
}

func TestWriteWAV(t *testing.T) {
	const (
		rate   = 8000
		// Less than 8192 so every sample is exact.
		frames = fmtwo.MaxBlock + 100
	)
	path := filepath.Join(t.TempDir(), "out.wav")
	c := &counter{channels: 2, step: 1.0 / 8192}
	if err := WriteWAV(path, c, frames, rate); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	d := wav.NewDecoder(f)
	buf, err := d.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if d.SampleRate != rate || d.NumChans != 2 || d.BitDepth != 16 {
		t.Errorf("header = %d Hz, %d channels, %d bits, want: %d, 2, 16", d.SampleRate, d.NumChans, d.BitDepth, rate)
	}
	if got := len(buf.Data); got != 2*frames {
		t.Fatalf("got %d samples, want: %d", got, 2*frames)
	}
	for i := 0; i < frames; i += 997 {
		want := toPCM(float32(i) / 8192)
		if buf.Data[2*i] != want || buf.Data[2*i+1] != want {
			t.Errorf("frame %d = %d, %d, want: %d", i, buf.Data[2*i], buf.Data[2*i+1], want)
		}
	}
}

func TestWriteWAVSequence(t *testing.T) {
	const rate = 8000
	notes, err := fmtwo.ParseScore("A4@0s+100ms, E5@50ms+100ms")
	if err != nil {
		t.Fatal(err)
	}
	e, err := fmtwo.New(rate)
	if err != nil {
		t.Fatal(err)
	}
	p := fmtwo.NewPlayer(e, fmtwo.NewSequence(rate, notes), fmtwo.Fixed{
		Gain: 0.5, Ratio: 1, Depth: 1, Attack: 0.01, Decay: 0.01, Sustain: 0.5, Release: 0.05,
	}, 1)
	path := filepath.Join(t.TempDir(), "seq.wav")
	if err := WriteWAV(path, p, rate/2, rate); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}
	var loud bool
	for _, s := range buf.Data[:rate/10] {
		if s > 1000 || s < -1000 {
			loud = true
			break
		}
	}
	if !loud {
		t.Error("the notes were silent")
	}
	// Everything has finished releasing well before the end.
	for i, s := range buf.Data[rate/3:] {
		if s != 0 {
			t.Fatalf("sample %d = %d after the notes ended", rate/3+i, s)
		}
	}
}

func TestWriteWAVRejectsInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := WriteWAV(path, fmtwo.Clip{N: 1, Limit: 1}, 10, 8000); err == nil {
		t.Error("WriteWAV with an input succeeded")
	}
}
