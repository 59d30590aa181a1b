// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Command qwave captures waveforms from probe devices and inspects VCD files.
//
// Usage:
//
//	qwave capture [-profile file.json] [-o out.vcd] [-continuous] [-runs n] [-decimation n]
//	qwave info file.vcd
//	qwave convert in.vcd out.vcd
//	qwave version
//
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/josko7452/qwave-project"
	"github.com/josko7452/qwave-project/capture"
	"github.com/josko7452/qwave-project/internal/config"
	"github.com/josko7452/qwave-project/internal/monitor"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

const version = "0.1.0"

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "capture":
		err = cmdCapture(os.Args[2:])
	case "info":
		err = cmdInfo(os.Stdout, os.Args[2:])
	case "convert":
		err = cmdConvert(os.Args[2:])
	case "version":
		fmt.Println(version)
	case "help", "-h", "--help":
		usage(os.Stdout)
	default:
		log.Print("unknown command: ", os.Args[1])
		usage(os.Stderr)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("error: ", err)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "qwave - waveform capture and VCD tool")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  qwave capture [-profile file.json] [-o out.vcd] [-continuous] [-runs n] [-decimation n]")
	fmt.Fprintln(w, "  qwave info <file.vcd>")
	fmt.Fprintln(w, "  qwave convert <in.vcd> <out.vcd>")
	fmt.Fprintln(w, "  qwave version")
}

func cmdCapture(args []string) error {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	profile := fs.String("profile", "", "capture profile (JSON)")
	out := fs.String("o", "", "output VCD file")
	continuous := fs.Bool("continuous", false, "re-arm after each run")
	runs := fs.Int("runs", 0, "maximum number of runs in continuous mode")
	decimation := fs.Int("decimation", -1, "sample rate decimation (0 to 8)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p := config.Default()
	if *profile != "" {
		var err error
		if p, err = config.LoadFile(*profile); err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			p.Output = *out
		case "continuous":
			p.Continuous = *continuous
		case "runs":
			p.MaxRuns = *runs
		case "decimation":
			p.Decimation = *decimation
		}
	})
	if p.Decimation < 0 || p.Decimation > 8 {
		return errors.Errorf("decimation %d out of range", p.Decimation)
	}
	if p.Output == "" {
		p.Output = "capture.vcd"
	}

	tty := term.IsTerminal(int(os.Stdout.Fd()))
	var logger *log.Logger
	if !tty {
		logger = log.New(os.Stderr, "", log.Ltime)
	}
	ctrl := capture.NewController(logger)
	doc, err := build(p, ctrl)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go func() {
		// the first interrupt stops after the current run, the second aborts.
		<-sigs
		ctrl.Stop()
		<-sigs
		cancel()
	}()

	if tty {
		err = runMonitor(ctx, ctrl, p)
	} else {
		err = ctrl.Run(ctx, p.Continuous)
	}
	if err != nil && errors.Cause(err) != context.Canceled {
		return err
	}
	log.Printf("%d runs, saving to %s", ctrl.Runs(), p.Output)
	return doc.SaveFile(p.Output)
}

func runMonitor(ctx context.Context, ctrl *capture.Controller, p *config.Profile) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "create screen")
	}
	if err = screen.Init(); err != nil {
		return errors.Wrap(err, "init screen")
	}
	defer screen.Fini()

	m := monitor.New(screen, ctrl, p.Divisor())
	errc := make(chan error, 1)
	go func() {
		errc <- ctrl.Run(ctx, p.Continuous)
		m.Done()
	}()
	m.Loop(ctx, ctrl.Stop)
	ctrl.Stop()
	return <-errc
}

// build creates a document with one scope per device and registers the
// signals of every probe with ctrl.
//
func build(p *config.Profile, ctrl *capture.Controller) (*qwave.Document, error) {
	doc := qwave.New()
	doc.Date = time.Now().Format(time.RFC1123)
	doc.Version = "qwave " + version
	doc.Timescale = p.Divisor()
	if p.MaxRuns > 0 {
		ctrl.MaxRuns = p.MaxRuns
	}
	top := doc.Top()
	for _, d := range p.Devices {
		var dev capture.Device
		switch d.Kind {
		case "sim":
			n := d.Samples
			if n == 0 {
				n = capture.DefaultSimLength
			}
			dev = capture.NewSimDevice(d.Name, n, time.Duration(d.DelayMs)*time.Millisecond)
		default:
			return nil, errors.Errorf("%s: unsupported device kind %q", d.Name, d.Kind)
		}
		probe := ctrl.AddDevice(dev)
		doc.SetCurrentScope(top.AddScope(d.Name))
		for i, pr := range d.Probes {
			g, err := capture.ParseGroup(pr.Group)
			if err != nil {
				return nil, errors.Wrapf(err, "%s.%s", d.Name, pr.Name)
			}
			typ := qwave.Logic
			if g.Analog() {
				typ = qwave.Linear
			}
			alias, err := doc.NextAlias()
			if err != nil {
				return nil, err
			}
			sig := qwave.NewSignal(typ, pr.Name, pr.Width, alias, p.Divisor())
			if err = doc.Register(sig); err != nil {
				return nil, err
			}
			wire := pr.Wire
			if !g.Analog() && wire == 0 && i > 0 {
				wire = probe.NextWire()
			}
			if err = probe.Assign(sig, g, wire); err != nil {
				return nil, errors.Wrap(err, d.Name)
			}
		}
	}
	doc.SetCurrentScope(top)
	return doc, nil
}

func cmdInfo(w io.Writer, args []string) error {
	if len(args) != 1 {
		return errors.New("info requires a single VCD file")
	}
	doc, err := qwave.LoadFile(args[0])
	if err != nil {
		return err
	}
	return info(w, doc)
}

func info(w io.Writer, doc *qwave.Document) error {
	if doc.Date != "" {
		fmt.Fprintf(w, "date:      %s\n", doc.Date)
	}
	if doc.Version != "" {
		fmt.Fprintf(w, "version:   %s\n", doc.Version)
	}
	ts := doc.SampleTimescale()
	fmt.Fprintf(w, "timescale: %s\n", qwave.FormatTimescale(ts))
	fmt.Fprintf(w, "samples:   %d (%s)\n", doc.Len(), qwave.FormatTimescale(uint64(doc.Len())*ts))
	doc.Root().Walk(func(sc *qwave.Scope, depth int) {
		if depth == 0 {
			return
		}
		indent := strings.Repeat("  ", depth-1)
		fmt.Fprintf(w, "%s%s\n", indent, sc.Name())
		for _, s := range sc.Signals() {
			kind := s.Type().String()
			if s.Shadow() {
				kind += ", shadow"
			}
			fmt.Fprintf(w, "%s  %c %s [%d] (%s)\n", indent, s.Alias(), s.Name(), s.Width(), kind)
		}
	})
	_, err := fmt.Fprintf(w, "%d signals\n", len(doc.Signals()))
	return err
}

func cmdConvert(args []string) error {
	if len(args) != 2 {
		return errors.New("convert requires an input and an output file")
	}
	doc, err := qwave.LoadFile(args[0])
	if err != nil {
		return err
	}
	return doc.SaveFile(args[1])
}
