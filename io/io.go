// package io does audio in and out.
package io

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gen2brain/malgo"

	"github.com/pfcm/fmtwo"
)

const DefaultSampleRate = 44100

// Config is shared by the playback backends.
type Config struct {
	SampleRate int
	// If Filename is not "", the output is also written as a wav file with
	// that name.
	Filename string
	// Latency is a hint for the size of the device buffer. Zero leaves it
	// to the backend.
	Latency time.Duration
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = DefaultSampleRate
	}
	return c
}

func (c Config) tap(channels int) (*wavWriter, error) {
	if c.Filename == "" {
		return nil, nil
	}
	return createWAV(c.Filename, c.SampleRate, channels)
}

func (c Config) latencyFrames() int {
	return int(c.Latency.Seconds() * float64(c.SampleRate))
}

// PlayWithDefaults uses the default input and outputs to run the provided
// Ticker. Tickers with no inputs only open a playback device. It blocks until
// the provided context is cancelled.
func PlayWithDefaults(ctx context.Context, t fmtwo.Ticker, cfg Config) error {
	cfg = cfg.withDefaults()
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		fmt.Fprint(os.Stderr, msg)
	})
	if err != nil {
		return err
	}
	defer func() {
		mctx.Uninit()
		mctx.Free()
	}()

	dcfg := malgo.DefaultDeviceConfig(malgo.Playback)
	if t.Inputs() > 0 {
		dcfg = malgo.DefaultDeviceConfig(malgo.Duplex)
		dcfg.Capture.Format = malgo.FormatF32
		dcfg.Capture.Channels = uint32(t.Inputs())
	}
	dcfg.Playback.Format = malgo.FormatF32
	dcfg.Playback.Channels = uint32(t.Outputs())
	dcfg.SampleRate = uint32(cfg.SampleRate)
	if n := cfg.latencyFrames(); n > 0 {
		dcfg.PeriodSizeInFrames = uint32(n)
	}

	tap, err := cfg.tap(t.Outputs())
	if err != nil {
		return err
	}
	r := newRenderer(t, tap)

	recv := func(out, in []byte, framecount uint32) {
		if framecount == 0 {
			return
		}
		r.render(out[:int(framecount)*r.frameSize()], in)
	}

	device, err := malgo.InitDevice(mctx.Context, dcfg, malgo.DeviceCallbacks{
		Data: recv,
	})
	if err != nil {
		return err
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return err
	}

	<-ctx.Done()

	device.Uninit()

	if tap != nil {
		return tap.Close()
	}
	return nil
}
