package io

import (
	"context"
	"fmt"

	"github.com/ebitengine/oto/v3"

	"github.com/pfcm/fmtwo"
)

// Reader renders a Ticker with no inputs as interleaved little endian float32
// frames. It never runs out.
type Reader struct {
	r *renderer
}

// NewReader returns a Reader over t.
func NewReader(t fmtwo.Ticker) *Reader {
	return &Reader{r: newRenderer(t, nil)}
}

func (r *Reader) String() string { return fmt.Sprintf("Reader(%v)", r.r.t) }

// Read fills as many whole frames of b as fit.
func (r *Reader) Read(b []byte) (int, error) {
	return r.r.render(b, nil), nil
}

// PlayOto plays t, which must have no inputs, through oto. It blocks until
// the provided context is cancelled.
func PlayOto(ctx context.Context, t fmtwo.Ticker, cfg Config) error {
	if t.Inputs() != 0 {
		return fmt.Errorf("%v: oto can't record, the ticker has %d inputs", t, t.Inputs())
	}
	cfg = cfg.withDefaults()
	octx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: t.Outputs(),
		Format:       oto.FormatFloat32LE,
		BufferSize:   cfg.Latency,
	})
	if err != nil {
		return err
	}
	<-ready

	tap, err := cfg.tap(t.Outputs())
	if err != nil {
		return err
	}
	p := octx.NewPlayer(&Reader{r: newRenderer(t, tap)})
	p.Play()

	<-ctx.Done()

	perr := p.Close()
	if tap != nil {
		if err := tap.Close(); err != nil {
			return err
		}
	}
	return perr
}
