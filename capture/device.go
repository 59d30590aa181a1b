// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package capture feeds samples from probe devices into waveform signals.
//
// A probe device delivers raw data in three channel groups: two analog groups
// with one byte per sample and a digital group with 16 wires per sample. A
// Controller maps the wires of each group to signals and appends every raw
// sample to the assigned signals.
//
package capture

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Group identifies a channel group of a probe device.
//
type Group int

// Channel groups.
//
const (
	Analog1 Group = iota
	Analog2
	Digital
	NumGroups
)

// DigitalWires is the number of wires in the Digital group.
//
const DigitalWires = 16

var groupNames = [...]string{"analog1", "analog2", "digital"}

func (g Group) String() string {
	if g < 0 || g >= NumGroups {
		return "invalid"
	}
	return groupNames[g]
}

// ParseGroup returns the group with the given name.
//
func ParseGroup(name string) (Group, error) {
	for g, n := range groupNames {
		if n == name {
			return Group(g), nil
		}
	}
	return 0, errors.Errorf("unknown channel group %q", name)
}

// Analog returns true if g is an analog group.
//
func (g Group) Analog() bool { return g == Analog1 || g == Analog2 }

// GroupSet is a set of channel groups to arm.
//
type GroupSet uint8

// Has returns true if g is in s.
//
func (s GroupSet) Has(g Group) bool { return s&(1<<uint(g)) != 0 }

// With returns s with g added.
//
func (s GroupSet) With(g Group) GroupSet { return s | 1<<uint(g) }

// String returns the capture mode name, like "analog1+digital".
//
func (s GroupSet) String() string {
	var b strings.Builder
	for g := Group(0); g < NumGroups; g++ {
		if !s.Has(g) {
			continue
		}
		if b.Len() > 0 {
			b.WriteRune('+')
		}
		b.WriteString(g.String())
	}
	if b.Len() == 0 {
		return "none"
	}
	return b.String()
}

// A Batch is the raw data of one capture run. Data[g] holds the samples of
// group g; analog samples use the low byte only. Groups that were not armed
// are nil.
//
type Batch struct {
	Data [NumGroups][]uint16
}

// Device is a probe device.
//
// Capture arms the device for the given groups and blocks until a full batch
// has been captured or ctx is done.
//
type Device interface {
	Name() string
	Capture(ctx context.Context, armed GroupSet) (*Batch, error)
}
