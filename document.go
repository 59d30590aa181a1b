// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package qwave

import (
	"github.com/pkg/errors"
)

// TopScope is the name of the scope created by New.
//
const TopScope = "top"

// Document is a waveform document: header fields and a tree of scopes holding
// signals.
//
type Document struct {
	Date    string
	Version string
	Comment string
	// Timescale is the duration of one sample in picoseconds, as read from the
	// $timescale header.
	Timescale uint64

	root    *Scope
	cur     *Scope
	aliases map[byte]*Signal // first declaration of each alias
}

func newDocument() *Document {
	return &Document{
		root:    NewScope(""),
		aliases: make(map[byte]*Signal),
	}
}

// New returns an empty document with a single "top" scope, ready for live
// registration of signals.
//
func New() *Document {
	d := newDocument()
	d.cur = d.root.AddScope(TopScope)
	return d
}

// Root returns the invisible root scope. Its children are the top level
// scopes of the document.
//
func (d *Document) Root() *Scope { return d.root }

// Top returns the first top level scope, or nil.
//
func (d *Document) Top() *Scope {
	if len(d.root.children) == 0 {
		return nil
	}
	return d.root.children[0]
}

// SetCurrentScope sets the scope where Register adds new signals.
//
func (d *Document) SetCurrentScope(s *Scope) { d.cur = s }

// Register adds sig to the current scope and makes it the source of its
// alias. It fails if the alias is already in use.
//
func (d *Document) Register(sig *Signal) error {
	if _, ok := d.aliases[sig.alias]; ok {
		return errors.Errorf("alias %q already in use", sig.alias)
	}
	if d.cur == nil {
		d.cur = d.Top()
		if d.cur == nil {
			d.cur = d.root.AddScope(TopScope)
		}
	}
	d.aliases[sig.alias] = sig
	d.cur.AddSignal(sig)
	return nil
}

// Lookup returns the signal owning the buffer of the given alias.
//
func (d *Document) Lookup(alias byte) (*Signal, bool) {
	s, ok := d.aliases[alias]
	return s, ok
}

// NextAlias returns the first printable alias not yet in use.
//
func (d *Document) NextAlias() (byte, error) {
	for a := byte('!'); a <= '~'; a++ {
		if _, ok := d.aliases[a]; !ok {
			return a, nil
		}
	}
	return 0, errors.New("no free alias")
}

// Signals returns all declared signals, shadows included, in tree order.
//
func (d *Document) Signals() []*Signal {
	var ss []*Signal
	d.root.Walk(func(sc *Scope, _ int) {
		ss = append(ss, sc.signals...)
	})
	return ss
}

// source returns the signal owning the buffer of alias a.
//
func (d *Document) source(a byte) *Signal {
	if s, ok := d.aliases[a]; ok {
		return s
	}
	for _, s := range d.Signals() {
		if s.alias == a {
			return s
		}
	}
	return nil
}

// NearestTransition returns the nearest transition after sample from across
// the whole document, or NoTransition.
//
func (d *Document) NearestTransition(from int) int {
	t := NoTransition
	d.root.Walk(func(sc *Scope, _ int) {
		if n := sc.NearestTransition(from); n < t {
			t = n
		}
	})
	return t
}

// ChangedAliasesAt returns the aliases to dump at sample i, without
// duplicates, in tree order.
//
func (d *Document) ChangedAliasesAt(i int) []byte {
	var seen [256]bool
	var as []byte
	d.root.Walk(func(sc *Scope, _ int) {
		for _, a := range sc.changedAliasesAt(i) {
			if !seen[a] {
				seen[a] = true
				as = append(as, a)
			}
		}
	})
	return as
}

// Len returns the sample count of the longest signal.
//
func (d *Document) Len() int {
	n := 0
	for _, s := range d.Signals() {
		if l := s.MaxLen(); l > n {
			n = l
		}
	}
	return n
}

// SampleTimescale returns the duration of a sample in picoseconds used when
// saving: the divisor of the first signal, or Timescale if there are no
// signals or the divisor is unset.
//
func (d *Document) SampleTimescale() uint64 {
	if ss := d.Signals(); len(ss) > 0 && ss[0].divisor != 0 {
		return ss[0].divisor
	}
	if d.Timescale != 0 {
		return d.Timescale
	}
	return 1
}
