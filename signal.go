// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package qwave

// Logic levels stored in the samples of Logic signals.
//
const (
	Low     byte = 0
	High    byte = 255
	HighZ   byte = 100
	Unknown byte = 150
)

// Type is the kind of values held by a Signal.
//
type Type int

// Signal types.
//
const (
	Logic  Type = iota // 4-valued logic levels, one buffer bit per signal bit
	Linear             // raw 0..255 magnitudes on a single buffer bit
)

func (t Type) String() string {
	switch t {
	case Logic:
		return "logic"
	case Linear:
		return "linear"
	}
	return "unknown"
}

// A Signal is a declared signal: a name, a type and a bit width bound to the
// Buffer holding its samples. Signals declared with the same alias share the
// same Buffer; all but the first one are shadows.
//
type Signal struct {
	typ     Type
	name    string
	width   int
	alias   byte
	divisor uint64 // picoseconds per sample
	buf     *Buffer
	shadow  bool
}

// NewSignal returns a new Signal with its own Buffer.
//
// Linear signals always get a single bit buffer whatever their declared width.
//
func NewSignal(typ Type, name string, width int, alias byte, divisor uint64) *Signal {
	bw := width
	if typ == Linear {
		bw = 1
	}
	return &Signal{
		typ:     typ,
		name:    name,
		width:   width,
		alias:   alias,
		divisor: divisor,
		buf:     NewBuffer(bw),
	}
}

// NewShadow returns a new Signal sharing the buffer of src. Appends through
// either signal are visible through both.
//
func NewShadow(src *Signal, typ Type, name string, width int, divisor uint64) *Signal {
	return &Signal{
		typ:     typ,
		name:    name,
		width:   width,
		alias:   src.alias,
		divisor: divisor,
		buf:     src.buf,
		shadow:  true,
	}
}

// Type returns the signal type.
//
func (s *Signal) Type() Type { return s.typ }

// Name returns the declared name.
//
func (s *Signal) Name() string { return s.name }

// Width returns the declared bit width.
//
func (s *Signal) Width() int { return s.width }

// Alias returns the single character identifier used in dumps.
//
func (s *Signal) Alias() byte { return s.alias }

// Divisor returns the duration of a sample in picoseconds.
//
func (s *Signal) Divisor() uint64 { return s.divisor }

// SetDivisor sets the duration of a sample in picoseconds.
//
func (s *Signal) SetDivisor(ps uint64) { s.divisor = ps }

// Shadow returns true if the signal shares the buffer of a previously declared
// signal.
//
func (s *Signal) Shadow() bool { return s.shadow }

// Buffer returns the sample buffer of s.
//
func (s *Signal) Buffer() *Buffer { return s.buf }

// bits returns the number of buffer bits visible through s.
//
func (s *Signal) bits() int {
	n := s.buf.Width()
	if s.typ == Logic && s.width < n {
		n = s.width
	}
	return n
}

// Append appends v to the given bit.
//
func (s *Signal) Append(bit int, v byte) { s.buf.Append(bit, v) }

// ValueAt returns sample i of bit. It panics if i is out of range.
//
func (s *Signal) ValueAt(bit, i int) byte { return s.buf.At(bit, i) }

// Value returns sample i of bit and true, or 0 and false if there is no such
// sample.
//
func (s *Signal) Value(bit, i int) (byte, bool) {
	if bit < 0 || bit >= s.buf.Width() || i < 0 || i >= s.buf.Len(bit) {
		return 0, false
	}
	return s.buf.At(bit, i), true
}

// held returns sample i of bit, or the last sample if i is past the end of
// the written data, or Unknown if nothing has been written.
//
func (s *Signal) held(bit, i int) byte {
	n := s.buf.Len(bit)
	switch {
	case n == 0:
		return Unknown
	case i >= n:
		return s.buf.At(bit, n-1)
	}
	return s.buf.At(bit, i)
}

// Len returns the number of samples written to bit.
//
func (s *Signal) Len(bit int) int { return s.buf.Len(bit) }

// MaxLen returns the number of samples of the longest bit.
//
func (s *Signal) MaxLen() int {
	n := 0
	for bit := 0; bit < s.bits(); bit++ {
		if l := s.buf.Len(bit); l > n {
			n = l
		}
	}
	return n
}

// NearestTransition returns the index of the first sample after from where
// any bit of s changes value, or NoTransition.
//
func (s *Signal) NearestTransition(from int) int {
	t := NoTransition
	for bit := 0; bit < s.bits(); bit++ {
		if n := s.buf.nearestTransitionOnBit(from, bit); n < t {
			t = n
		}
	}
	return t
}

// DiffersFromPrevious reports whether any bit of s at sample i differs from
// sample i-1. Sample 0 always differs. Bits with no sample at i are ignored.
//
func (s *Signal) DiffersFromPrevious(i int) bool {
	if i <= 0 {
		return true
	}
	for bit := 0; bit < s.bits(); bit++ {
		if i < s.buf.Len(bit) && s.buf.At(bit, i) != s.buf.At(bit, i-1) {
			return true
		}
	}
	return false
}
