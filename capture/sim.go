// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package capture

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
)

// DefaultSimLength is the number of samples per batch of a SimDevice.
//
const DefaultSimLength = 10000

// SimDevice is a simulated probe. It outputs a sine wave on Analog1, a cosine
// on Analog2 and a 16 bits counter on the digital wires. Waveforms continue
// from one batch to the next.
//
type SimDevice struct {
	name   string
	length int
	delay  time.Duration
	n      int // samples produced so far
}

// NewSimDevice returns a new simulated device producing length samples per
// batch. If length is 0, DefaultSimLength is used. Each capture takes at least
// delay.
//
func NewSimDevice(name string, length int, delay time.Duration) *SimDevice {
	if length <= 0 {
		length = DefaultSimLength
	}
	return &SimDevice{name: name, length: length, delay: delay}
}

// Name implements Device.
//
func (d *SimDevice) Name() string { return d.name }

// Capture implements Device.
//
func (d *SimDevice) Capture(ctx context.Context, armed GroupSet) (*Batch, error) {
	if armed == 0 {
		return nil, errors.New("no channel group armed")
	}
	if d.delay > 0 {
		t := time.NewTimer(d.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := new(Batch)
	for g := Group(0); g < NumGroups; g++ {
		if armed.Has(g) {
			b.Data[g] = make([]uint16, d.length)
		}
	}
	for i := 0; i < d.length; i++ {
		x := float64(d.n+i) / 3.14
		if s := b.Data[Analog1]; s != nil {
			s[i] = uint16(127 * (1 + math.Sin(x)))
		}
		if s := b.Data[Analog2]; s != nil {
			s[i] = uint16(127 * (1 + math.Cos(x)))
		}
		if s := b.Data[Digital]; s != nil {
			s[i] = uint16(d.n + i)
		}
	}
	d.n += d.length
	return b, nil
}
