package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pfcm/fmtwo"
	"github.com/pfcm/fmtwo/hid"
	"github.com/pfcm/fmtwo/io"
	"github.com/pfcm/fmtwo/midi"
	"github.com/pfcm/fmtwo/midi/portmidi"
	"github.com/pfcm/fmtwo/param"
)

var (
	profileFlag  = flag.Bool("profile", false, "whether to write pprof profiles to the current working directory")
	writeFlag    = flag.Bool("write", false, "if true, writes the output to a wav file in the current directory")
	voicesFlag   = flag.Int("voices", 2, "number of voices")
	channelsFlag = flag.Int("channels", 2, "number of output channels, all get the same signal")
	rateFlag     = flag.Int("rate", io.DefaultSampleRate, "sample rate in Hz")
	backendFlag  = flag.String("backend", "malgo", "audio backend, malgo or oto")
	latencyFlag  = flag.Duration("latency", 0, "device buffer size, zero for the backend's default")
	deviceFlag   = flag.String("device", "", "MIDI input to listen to, the default input if empty")
	scoreFlag    = flag.String("score", "", "play these notes instead of listening to MIDI, e.g. \"C4@0s+1s, E4@500ms+1s:0.5\"")

	settings []setting
)

type setting struct {
	id param.ID
	v  float32
}

func init() {
	var names []string
	for _, s := range param.Specs {
		names = append(names, s.Name)
	}
	flag.Func("set", fmt.Sprintf("name=value, sets a parameter. May be repeated. Parameters: %s", strings.Join(names, ", ")), func(s string) error {
		name, v, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("want name=value, got %q", s)
		}
		id, ok := param.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown parameter %q", name)
		}
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return err
		}
		settings = append(settings, setting{id, float32(f)})
		return nil
	})
}

func main() {
	flag.Parse()
	log.SetPrefix("play: ")

	if *profileFlag {
		finish, err := startProfiles()
		if err != nil {
			log.Fatalf("Starting profiling: %v", err)
		}
		defer func() {
			if err := finish(); err != nil {
				log.Fatalf("Finishing profiles: %v", err)
			}
		}()
	}
	cfg := io.Config{
		SampleRate: *rateFlag,
		Latency:    *latencyFlag,
	}
	if *writeFlag {
		cfg.Filename = fmt.Sprintf("out-%d.wav", time.Now().Unix())
		fmt.Fprintf(os.Stderr, "Writing output to %q\n", cfg.Filename)
	}
	play := io.PlayWithDefaults
	switch *backendFlag {
	case "malgo":
	case "oto":
		play = io.PlayOto
	default:
		log.Fatalf("Unknown backend %q", *backendFlag)
	}

	rate := float32(*rateFlag)
	e, err := fmtwo.New(rate, fmtwo.WithVoices(*voicesFlag))
	if err != nil {
		log.Fatal(err)
	}
	params := param.NewSet(rate)
	for _, s := range settings {
		params.Set(s.id, s.v)
	}

	ctx, cancel := context.WithCancel(interruptContext())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	var (
		events fmtwo.EventSource
		kb     *hid.Keyboard
	)
	if *scoreFlag != "" {
		notes, err := fmtwo.ParseScore(*scoreFlag)
		if err != nil {
			log.Fatalf("Bad score: %v", err)
		}
		seq := fmtwo.NewSequence(rate, notes)
		events = seq
		// Stop once the last note has had time to release.
		length := time.Duration(float64(seq.End())/float64(rate)*float64(time.Second)) +
			time.Duration(float64(param.Specs[param.Release].Max)*float64(time.Second))
		g.Go(func() error {
			select {
			case <-ctx.Done():
			case <-time.After(length):
				cancel()
			}
			return nil
		})
	} else {
		l := midi.Listener(portmidi.ReceiveDefault)
		if *deviceFlag != "" {
			l = portmidi.Receive(*deviceFlag)
		}
		d := midi.Listen(ctx, l)
		kb = hid.NewKeyboard(d, hid.WithParams(params, hid.DefaultControls))
		events = kb
		g.Go(func() error {
			<-d.Done()
			if ctx.Err() != nil {
				return nil
			}
			if err := d.Err(); err != nil {
				return fmt.Errorf("midi: %w", err)
			}
			return errors.New("midi input closed")
		})
	}

	chans := *channelsFlag
	c := newCopier(chans)
	ch := fmtwo.Serially(
		fmtwo.NewPlayer(e, events, params, chans),
		fmtwo.Clip{N: chans, Limit: 1},
		c,
	)

	g.Go(func() error {
		return play(ctx, ch, cfg)
	})
	g.Go(func() error {
		t0 := time.Now()
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				fmt.Println()
				return nil
			case <-t.C:
				var s []string
				for _, f := range c.getRMS() {
					s = append(s, fmt.Sprintf("%.2f", f))
				}
				fmt.Printf("\r%.4f: %v", time.Since(t0).Seconds(), s)
				if kb != nil {
					if n := kb.Dropped(); n > 0 {
						fmt.Printf(" (%d dropped)", n)
					}
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
}

type copier struct {
	channels int

	mu  sync.Mutex
	rms []float32
}

func newCopier(channels int) *copier {
	return &copier{
		channels: channels,
		rms:      make([]float32, channels),
	}
}

func (c *copier) Inputs() int    { return c.channels }
func (c *copier) Outputs() int   { return c.channels }
func (c *copier) String() string { return fmt.Sprintf("copier(%d)", c.channels) }

func (c *copier) Tick(in, out [][]float32) {
	for i, inp := range in {
		copy(out[i], inp)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, channel := range in {
		if len(channel) == 0 {
			continue
		}
		rms := float64(0)
		for _, s := range channel {
			rms += float64(s) * float64(s)
		}
		rms /= float64(len(channel))
		c.rms[i] = 0.01*c.rms[i] + 0.99*float32(math.Sqrt(rms))
	}
}

func (c *copier) getRMS() []float32 {
	results := make([]float32, c.channels)
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(results, c.rms)
	return results
}

func interruptContext() context.Context {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}

func startProfiles() (func() error, error) {
	cpu, err := os.Create("cpu.pprof")
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(cpu); err != nil {
		return nil, fmt.Errorf("starting cpu profile: %w", err)
	}

	mem, err := os.Create("mem.pprof")
	if err != nil {
		return nil, err
	}
	return func() error {
		pprof.StopCPUProfile()
		if err := cpu.Close(); err != nil {
			return err
		}
		runtime.GC()
		if err := pprof.WriteHeapProfile(mem); err != nil {
			return err
		}
		return mem.Close()
	}, nil
}
