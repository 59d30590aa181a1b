// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package qwave

import "math"

// InitialCapacity is the number of samples preallocated for each bit of a new
// Buffer. Buffers double their capacity when full.
//
var InitialCapacity = 100

// NoTransition is returned by the NearestTransition functions when no further
// transition exists.
//
const NoTransition = math.MaxInt

// Buffer holds the samples of one value stream: one growable byte slice per
// bit. A Buffer may be shared by several Signal declarations using the same
// alias.
//
// Buffer is not safe for concurrent use. Writers sharing a buffer with
// concurrent readers must synchronize externally (see package capture).
//
type Buffer struct {
	bits [][]byte
}

// NewBuffer returns a new Buffer for the given number of bits.
//
func NewBuffer(width int) *Buffer {
	b := &Buffer{bits: make([][]byte, width)}
	for i := range b.bits {
		b.bits[i] = make([]byte, 0, InitialCapacity)
	}
	return b
}

// Width returns the number of bits in the buffer.
//
func (b *Buffer) Width() int { return len(b.bits) }

// Append appends value v to bit.
//
func (b *Buffer) Append(bit int, v byte) {
	s := b.bits[bit]
	if len(s) == cap(s) {
		c := cap(s) * 2
		if c == 0 {
			c = InitialCapacity
		}
		ns := make([]byte, len(s), c)
		copy(ns, s)
		s = ns
	}
	b.bits[bit] = append(s, v)
}

// set overwrites sample i of bit. i must be lower than Len(bit).
//
func (b *Buffer) set(bit, i int, v byte) {
	b.bits[bit][i] = v
}

// At returns sample i of bit. It panics if i is out of range.
//
func (b *Buffer) At(bit, i int) byte {
	return b.bits[bit][i]
}

// Len returns the number of samples written to bit.
//
func (b *Buffer) Len(bit int) int {
	return len(b.bits[bit])
}

// Cap returns the number of samples allocated for bit.
//
func (b *Buffer) Cap(bit int) int {
	return cap(b.bits[bit])
}

// MaxLen returns the sample count of the longest bit.
//
func (b *Buffer) MaxLen() int {
	n := 0
	for _, s := range b.bits {
		if len(s) > n {
			n = len(s)
		}
	}
	return n
}

func (b *Buffer) nearestTransitionOnBit(from, bit int) int {
	s := b.bits[bit]
	if from < 0 || from >= len(s) {
		return NoTransition
	}
	v := s[from]
	for i := from + 1; i < len(s); i++ {
		if s[i] != v {
			return i
		}
	}
	return NoTransition
}
