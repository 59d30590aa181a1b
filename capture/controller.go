// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package capture

import (
	"context"
	"io"
	"log"
	"math"
	"sync"
	"sync/atomic"

	"github.com/josko7452/qwave-project"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxRuns is the default run limit of continuous captures.
//
const DefaultMaxRuns = math.MaxInt32

type assignment struct {
	sig *qwave.Signal
	bit int // first wire for logic signals
}

// A Probe binds a Device to the signals assigned to its channel groups.
//
type Probe struct {
	ctrl     *Controller
	dev      Device
	mu       [NumGroups]sync.Mutex
	assigned [NumGroups][]assignment
	nextWire int
}

// Device returns the probe device.
//
func (p *Probe) Device() Device { return p.dev }

// NextWire returns the first digital wire after the ones already assigned.
//
func (p *Probe) NextWire() int {
	p.mu[Digital].Lock()
	defer p.mu[Digital].Unlock()
	return p.nextWire
}

// Assign maps sig to group g. Logic signals go to the Digital group and use
// Width() wires starting at wire bit. Linear signals go to an analog group,
// one signal per group, and bit is ignored.
//
// A signal, or any signal sharing its buffer, can only be assigned once
// across all the probes of a controller.
//
// Signals must not be assigned while a capture is running.
//
func (p *Probe) Assign(sig *qwave.Signal, g Group, bit int) error {
	if g < 0 || g >= NumGroups {
		return errors.Errorf("invalid channel group %d", g)
	}
	if sig.Shadow() {
		return errors.Errorf("%s: cannot assign a shadow signal", sig.Name())
	}
	p.mu[g].Lock()
	defer p.mu[g].Unlock()
	switch sig.Type() {
	case qwave.Logic:
		if g != Digital {
			return errors.Errorf("%s: logic signal assigned to %s group", sig.Name(), g)
		}
		if bit < 0 || bit+sig.Width() > DigitalWires {
			return errors.Errorf("%s: wires %d to %d out of range", sig.Name(), bit, bit+sig.Width()-1)
		}
		if end := bit + sig.Width(); end > p.nextWire {
			p.nextWire = end
		}
	case qwave.Linear:
		if !g.Analog() {
			return errors.Errorf("%s: linear signal assigned to %s group", sig.Name(), g)
		}
		if len(p.assigned[g]) > 0 {
			return errors.Errorf("%s: %s group already in use", sig.Name(), g)
		}
		bit = 0
	}
	if err := p.ctrl.claim(sig); err != nil {
		return err
	}
	p.assigned[g] = append(p.assigned[g], assignment{sig, bit})
	return nil
}

// Armed returns the groups with at least one assigned signal.
//
func (p *Probe) Armed() GroupSet {
	var s GroupSet
	for g := Group(0); g < NumGroups; g++ {
		p.mu[g].Lock()
		if len(p.assigned[g]) > 0 {
			s = s.With(g)
		}
		p.mu[g].Unlock()
	}
	return s
}

// AppendRawSample appends one raw sample of group g to the assigned signals.
//
// Wire bit+i of a logic signal of width w goes to signal bit w-1-i, so that
// bit 0 is the most significant. Linear signals get the low byte of pattern.
//
func (p *Probe) AppendRawSample(g Group, pattern uint16) {
	p.mu[g].Lock()
	for _, a := range p.assigned[g] {
		if a.sig.Type() == qwave.Linear {
			a.sig.Append(0, byte(pattern))
			continue
		}
		w := a.sig.Width()
		for i := 0; i < w; i++ {
			v := qwave.Low
			if (pattern>>uint(a.bit+i))&1 != 0 {
				v = qwave.High
			}
			a.sig.Append(w-1-i, v)
		}
	}
	p.mu[g].Unlock()
}

func (p *Probe) ingest(b *Batch, armed GroupSet) int {
	n := 0
	for g := Group(0); g < NumGroups; g++ {
		if !armed.Has(g) {
			continue
		}
		for _, v := range b.Data[g] {
			p.AppendRawSample(g, v)
		}
		if l := len(b.Data[g]); l > n {
			n = l
		}
	}
	return n
}

// Controller runs captures on a set of probes.
//
type Controller struct {
	// MaxRuns limits the number of runs of a continuous capture.
	MaxRuns int

	log    *log.Logger
	probes []*Probe

	mu      sync.Mutex
	buffers map[*qwave.Buffer]*qwave.Signal // assigned buffers
	stop   atomic.Bool
	runs   atomic.Int64
}

// NewController returns a new Controller. If logger is nil, nothing is logged.
//
func NewController(logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Controller{
		MaxRuns: DefaultMaxRuns,
		log:     logger,
		buffers: make(map[*qwave.Buffer]*qwave.Signal),
	}
}

// claim reserves the buffer of sig for a single assignment.
//
func (c *Controller) claim(sig *qwave.Signal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.buffers[sig.Buffer()]; ok {
		if s == sig {
			return errors.Errorf("%s: signal already assigned", sig.Name())
		}
		return errors.Errorf("%s: buffer already assigned to %s", sig.Name(), s.Name())
	}
	c.buffers[sig.Buffer()] = sig
	return nil
}

// AddDevice adds a device to the controller and returns its probe.
//
func (c *Controller) AddDevice(d Device) *Probe {
	p := &Probe{ctrl: c, dev: d}
	c.probes = append(c.probes, p)
	return p
}

// Probes returns the probes of c in the order their devices were added.
//
func (c *Controller) Probes() []*Probe { return c.probes }

// Runs returns the number of completed runs.
//
func (c *Controller) Runs() int { return int(c.runs.Load()) }

// Stop requests a continuous capture to stop once the current run completes.
//
func (c *Controller) Stop() { c.stop.Store(true) }

// Run captures one batch on every probe with assigned signals. If continuous is
// true, it re-arms after each run until Stop is called, MaxRuns runs have
// completed or ctx is done.
//
// Devices are armed concurrently. If a device fails, Run returns its error;
// samples already appended are kept.
//
func (c *Controller) Run(ctx context.Context, continuous bool) error {
	c.stop.Store(false)
	for {
		if err := c.runOnce(ctx); err != nil {
			return err
		}
		run := c.runs.Add(1)
		if !continuous || c.stop.Load() || (c.MaxRuns > 0 && run >= int64(c.MaxRuns)) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (c *Controller) runOnce(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	armed := 0
	for _, p := range c.probes {
		set := p.Armed()
		if set == 0 {
			continue
		}
		armed++
		g.Go(func() error {
			c.log.Printf("arming %s: %s", p.dev.Name(), set)
			b, err := p.dev.Capture(gctx, set)
			if err != nil {
				return errors.Wrapf(err, "capture on %s", p.dev.Name())
			}
			n := p.ingest(b, set)
			c.log.Printf("%s: %d samples", p.dev.Name(), n)
			return nil
		})
	}
	if armed == 0 {
		return errors.New("no signal assigned")
	}
	return g.Wait()
}

// Stat is the sample count of an assigned signal.
//
type Stat struct {
	Device  string
	Group   Group
	Signal  *qwave.Signal
	Samples int
}

// Stats returns the sample counts of all assigned signals. It can be called
// while a capture is running.
//
func (c *Controller) Stats() []Stat {
	var ss []Stat
	for _, p := range c.probes {
		for g := Group(0); g < NumGroups; g++ {
			p.mu[g].Lock()
			for _, a := range p.assigned[g] {
				ss = append(ss, Stat{p.dev.Name(), g, a.sig, a.sig.MaxLen()})
			}
			p.mu[g].Unlock()
		}
	}
	return ss
}
