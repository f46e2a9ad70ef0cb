// command render plays a score offline into a wav file.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pfcm/fmtwo"
	"github.com/pfcm/fmtwo/io"
	"github.com/pfcm/fmtwo/param"
)

var (
	scoreFlag    = flag.String("score", "", "notes to play, e.g. \"C4@0s+1s, E4@500ms+1s:0.5\". Read from standard input if empty")
	outFlag      = flag.String("o", "out.wav", "file to write")
	voicesFlag   = flag.Int("voices", 2, "number of voices")
	channelsFlag = flag.Int("channels", 1, "number of output channels, all get the same signal")
	rateFlag     = flag.Int("rate", io.DefaultSampleRate, "sample rate in Hz")
	tailFlag     = flag.Duration("tail", time.Second, "how long to keep going after the last note ends")
	setFlag      = flag.String("set", "", "comma separated name=value parameter settings")
)

func main() {
	flag.Parse()
	log.SetPrefix("render: ")

	score := *scoreFlag
	if score == "" {
		b, err := os.ReadFile("/dev/stdin")
		if err != nil {
			log.Fatalf("Reading score: %v", err)
		}
		score = string(b)
	}
	notes, err := fmtwo.ParseScore(score)
	if err != nil {
		log.Fatalf("Bad score: %v", err)
	}

	rate := float32(*rateFlag)
	e, err := fmtwo.New(rate, fmtwo.WithVoices(*voicesFlag))
	if err != nil {
		log.Fatal(err)
	}
	params := param.Defaults()
	if err := parseSettings(&params, *setFlag); err != nil {
		log.Fatal(err)
	}

	seq := fmtwo.NewSequence(rate, notes)
	frames := seq.End() + int(tailFlag.Seconds()*float64(rate))
	p := fmtwo.NewPlayer(e, seq, fmtwo.Fixed(params), *channelsFlag)
	t := fmtwo.Serially(p, fmtwo.Clip{N: *channelsFlag, Limit: 1})
	if err := io.WriteWAV(*outFlag, t, frames, *rateFlag); err != nil {
		log.Fatal(err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d notes, %v to %q\n", len(notes),
		time.Duration(float64(frames)/float64(rate)*float64(time.Second)).Round(time.Millisecond), *outFlag)
}

// parseSettings applies settings like "depth=2,attack=0.01" to p, clamping
// each to its range.
func parseSettings(p *fmtwo.Params, s string) error {
	vals := map[param.ID]*float32{
		param.Gain:    &p.Gain,
		param.Ratio:   &p.Ratio,
		param.Depth:   &p.Depth,
		param.Attack:  &p.Attack,
		param.Decay:   &p.Decay,
		param.Sustain: &p.Sustain,
		param.Release: &p.Release,
	}
	for _, kv := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' }) {
		name, v, ok := strings.Cut(strings.TrimSpace(kv), "=")
		if !ok {
			return fmt.Errorf("want name=value, got %q", kv)
		}
		id, ok := param.Lookup(name)
		if !ok {
			return fmt.Errorf("unknown parameter %q", name)
		}
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*vals[id] = param.Specs[id].Clamp(float32(f))
	}
	return nil
}
