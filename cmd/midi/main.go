// command midi checks that midi is working.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/pfcm/fmtwo/midi"
	"github.com/pfcm/fmtwo/midi/portmidi"
)

var (
	deviceFlag = flag.String("device", "", "name of the MIDI input to listen to, the default input if empty")
	listFlag   = flag.Bool("list", false, "list the MIDI inputs and exit")
)

func main() {
	flag.Parse()
	log.SetPrefix("midi: ")

	if *listFlag {
		names, err := portmidi.Inputs()
		if err != nil {
			log.Fatal(err)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	ctx := interruptContext()

	l := midi.Listener(portmidi.ReceiveDefault)
	if *deviceFlag != "" {
		l = portmidi.Receive(*deviceFlag)
	}
	d := midi.Listen(ctx, l)
	c := d.Subscribe()
	for m := range c {
		if ev, ok := m.Event(); ok {
			fmt.Printf("%v\t%v\n", m, ev)
			continue
		}
		fmt.Println(m)
	}
	if err := d.Err(); err != nil && ctx.Err() == nil {
		log.Fatal(err)
	}

	log.Println("all done")
}

func interruptContext() context.Context {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}
