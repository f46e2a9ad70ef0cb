package io

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/pfcm/fmtwo"
)

const (
	bitDepth  = 16
	pcmFormat = 1
)

type wavWriter struct {
	f   *os.File
	enc *wav.Encoder
	buf *audio.IntBuffer
}

func createWAV(path string, samplerate, channels int) (*wavWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &wavWriter{
		f:   f,
		enc: wav.NewEncoder(f, samplerate, bitDepth, channels, pcmFormat),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: channels,
				SampleRate:  samplerate,
			},
			Data:           make([]int, 0, fmtwo.MaxBlock*channels),
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// write interleaves the planar samples, clipping anything outside [-1, 1].
func (w *wavWriter) write(chans [][]float32) error {
	if len(chans) == 0 {
		return nil
	}
	w.buf.Data = w.buf.Data[:0]
	for i := range chans[0] {
		for _, c := range chans {
			w.buf.Data = append(w.buf.Data, toPCM(c[i]))
		}
	}
	return w.enc.Write(w.buf)
}

func toPCM(s float32) int {
	const full = 1<<(bitDepth-1) - 1
	switch {
	case s > 1:
		s = 1
	case s < -1:
		s = -1
	case s != s:
		s = 0
	}
	return int(math.Round(float64(s) * full))
}

// Close finishes the header and closes the file.
func (w *wavWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return fmt.Errorf("finishing wav: %w", err)
	}
	return w.f.Close()
}

// WriteWAV runs t, which must have no inputs, for the given number of frames
// and writes the result to a 16 bit wav file.
func WriteWAV(path string, t fmtwo.Ticker, frames, samplerate int) error {
	if t.Inputs() != 0 {
		return fmt.Errorf("%v: can't render a ticker with %d inputs to a file", t, t.Inputs())
	}
	w, err := createWAV(path, samplerate, t.Outputs())
	if err != nil {
		return err
	}
	r := newRenderer(t, nil)
	for done := 0; done < frames; {
		n := min(frames-done, fmtwo.MaxBlock)
		if err := w.write(r.tick(n)); err != nil {
			w.Close()
			return fmt.Errorf("writing %q: %w", path, err)
		}
		done += n
	}
	return w.Close()
}
