// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package wavetest provides utility functions for testing waveform documents.
//
package wavetest

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/josko7452/qwave-project"
)

// held returns sample i of bit, or the last sample if past the end, or
// Unknown for an empty bit.
//
func held(s *qwave.Signal, bit, i int) byte {
	n := s.Len(bit)
	switch {
	case n == 0:
		return qwave.Unknown
	case i >= n:
		return s.ValueAt(bit, n-1)
	}
	return s.ValueAt(bit, i)
}

func path(stack []string, name string) string {
	return strings.Join(append(stack, name), ".")
}

// TB is the part of testing.TB used to report mismatches.
//
type TB interface {
	Helper()
	Errorf(format string, args ...interface{})
}

// CompareDocuments checks that got has the same scopes and signals as want and
// that every signal holds the same values for each sample up to want.Len().
// Values past the end of a bit are taken to hold its last sample.
//
func CompareDocuments(t TB, want, got *qwave.Document) {
	t.Helper()

	if got.Len() != want.Len() {
		t.Errorf("Len() = %d, expected %d", got.Len(), want.Len())
	}
	compareScopes(t, nil, want.Root(), got.Root(), want.Len())
}

func compareScopes(t TB, stack []string, want, got *qwave.Scope, n int) {
	t.Helper()

	if len(stack) > 0 && got.Name() != want.Name() {
		t.Errorf("%s: scope name %q, expected %q", path(stack[:len(stack)-1], want.Name()), got.Name(), want.Name())
		return
	}
	ws, gs := want.Signals(), got.Signals()
	if len(gs) != len(ws) {
		t.Errorf("%s: %d signals, expected %d", path(stack, ""), len(gs), len(ws))
		return
	}
	for i, w := range ws {
		compareSignals(t, path(stack, w.Name()), w, gs[i], n)
	}
	wc, gc := want.Scopes(), got.Scopes()
	if len(gc) != len(wc) {
		t.Errorf("%s: %d scopes, expected %d", path(stack, ""), len(gc), len(wc))
		return
	}
	for i, w := range wc {
		compareScopes(t, append(stack, w.Name()), w, gc[i], n)
	}
}

func compareSignals(t TB, name string, want, got *qwave.Signal, n int) {
	t.Helper()

	if got.Name() != want.Name() || got.Type() != want.Type() || got.Width() != want.Width() || got.Alias() != want.Alias() {
		t.Errorf("%s: got %s %d %q %s, expected %s %d %q %s", name,
			got.Type(), got.Width(), got.Alias(), got.Name(),
			want.Type(), want.Width(), want.Alias(), want.Name())
		return
	}
	if got.Shadow() != want.Shadow() {
		t.Errorf("%s: Shadow() = %v, expected %v", name, got.Shadow(), want.Shadow())
	}
	wb, gb := want.Buffer().Width(), got.Buffer().Width()
	if gb != wb {
		t.Errorf("%s: buffer width %d, expected %d", name, gb, wb)
		return
	}
	for bit := 0; bit < wb; bit++ {
		for i := 0; i < n; i++ {
			if w, g := held(want, bit, i), held(got, bit, i); g != w {
				t.Errorf("%s: bit %d, sample %d: got %d, expected %d", name, bit, i, g, w)
				return
			}
		}
	}
}

var levels = [...]byte{qwave.Low, qwave.High, qwave.HighZ, qwave.Unknown}

// fillRuns appends n samples to bit, changing value at random intervals.
//
func fillRuns(r *rand.Rand, s *qwave.Signal, bit, n int, value func() byte) {
	v := value()
	for i := 0; i < n; i++ {
		if r.Intn(8) == 0 {
			v = value()
		}
		s.Append(bit, v)
	}
}

// RandomDocument returns a document with n samples for every signal. It holds
// a clock, a register, a linear signal and a nested scope where a wire
// shadows the register.
//
func RandomDocument(r *rand.Rand, n int) *qwave.Document {
	d := qwave.New()
	d.Date = "Sat Oct 17 12:00:00 2026"
	d.Version = "wavetest"
	d.Timescale = 8000

	logic := func() byte { return levels[r.Intn(len(levels))] }
	linear := func() byte { return byte(r.Intn(256)) }

	clk := qwave.NewSignal(qwave.Logic, "clk", 1, '!', d.Timescale)
	for i := 0; i < n; i++ {
		clk.Append(0, levels[i&1])
	}
	width := 2 + r.Intn(7)
	reg := qwave.NewSignal(qwave.Logic, "data", width, '"', d.Timescale)
	for bit := 0; bit < width; bit++ {
		fillRuns(r, reg, bit, n, logic)
	}
	sine := qwave.NewSignal(qwave.Linear, "ch0", 8, '#', d.Timescale)
	fillRuns(r, sine, 0, n, linear)
	for _, s := range []*qwave.Signal{clk, reg, sine} {
		if err := d.Register(s); err != nil {
			panic(err)
		}
	}

	sub := d.Top().AddScope("bus")
	sub.AddSignal(qwave.NewShadow(reg, qwave.Logic, fmt.Sprintf("data_lo%d", width/2), width/2, d.Timescale))
	return d
}
