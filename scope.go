// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package qwave

import (
	"bufio"
	"strconv"

	"github.com/josko7452/qwave-project/internal/vcd"
)

// A Scope is a node in the signal hierarchy. It owns its signals and its
// child scopes.
//
type Scope struct {
	name     string
	signals  []*Signal
	children []*Scope
}

// NewScope returns a new empty scope.
//
func NewScope(name string) *Scope {
	return &Scope{name: name}
}

// Name returns the scope name.
//
func (s *Scope) Name() string { return s.name }

// Signals returns the signals declared in s, in declaration order.
//
func (s *Scope) Signals() []*Signal { return s.signals }

// Scopes returns the child scopes of s, in declaration order.
//
func (s *Scope) Scopes() []*Scope { return s.children }

// AddSignal appends sig to the signals of s.
//
func (s *Scope) AddSignal(sig *Signal) {
	s.signals = append(s.signals, sig)
}

// AddScope creates a new child scope and returns it.
//
func (s *Scope) AddScope(name string) *Scope {
	c := NewScope(name)
	s.children = append(s.children, c)
	return c
}

// Walk calls fn for s and all its descendants, depth first. depth is 0 for s.
//
func (s *Scope) Walk(fn func(sc *Scope, depth int)) {
	s.walk(fn, 0)
}

func (s *Scope) walk(fn func(sc *Scope, depth int), depth int) {
	fn(s, depth)
	for _, c := range s.children {
		c.walk(fn, depth+1)
	}
}

// NearestTransition returns the nearest transition after from across the
// signals of s (not including child scopes).
//
func (s *Scope) NearestTransition(from int) int {
	t := NoTransition
	for _, sig := range s.signals {
		if n := sig.NearestTransition(from); n < t {
			t = n
		}
	}
	return t
}

// changedAliasesAt returns the aliases of the signals of s that must be dumped
// at sample i: all of them at sample 0, the ones that changed otherwise.
//
func (s *Scope) changedAliasesAt(i int) []byte {
	var as []byte
	for _, sig := range s.signals {
		if i == 0 || sig.DiffersFromPrevious(i) {
			as = append(as, sig.alias)
		}
	}
	return as
}

// loadDeclarations reads $var declarations up to the next $scope or $upscope
// token, which is left in p.tok.
//
func (s *Scope) loadDeclarations(p *parser) error {
	for {
		switch p.next() {
		case vcd.KwScope, vcd.KwUpscope:
			return nil
		case vcd.KwVar:
		case vcd.KwComment:
			if _, err := p.text(); err != nil {
				return err
			}
			continue
		case vcd.EOFToken:
			return p.errorf("unexpected end of input in scope %q", s.name)
		default:
			return p.errorf("expected $var, got %q", p.tok)
		}
		if err := s.loadVar(p); err != nil {
			return err
		}
	}
}

// loadVar parses the fields of a $var declaration following the $var keyword.
//
func (s *Scope) loadVar(p *parser) error {
	var typ Type
	switch p.next() {
	case vcd.KwWire, vcd.KwReg:
		typ = Logic
	case vcd.KwReal:
		typ = Linear
	default:
		return p.errorf("invalid variable type %q", p.tok)
	}
	width, err := strconv.Atoi(p.next())
	if err != nil || width < 1 {
		return p.errorf("invalid bit width %q", p.tok)
	}
	if len(p.next()) != 1 || p.tok == vcd.KwEnd {
		return p.errorf("invalid alias %q", p.tok)
	}
	alias := p.tok[0]
	name := p.next()
	if name == vcd.KwEnd || name == vcd.EOFToken {
		return p.errorf("missing variable name")
	}
	if p.next() != vcd.KwEnd {
		return p.errorf("expected $end after variable %q, got %q", name, p.tok)
	}

	var sig *Signal
	if src, ok := p.doc.aliases[alias]; ok {
		if typ == Logic && src.typ == Logic && width > src.buf.Width() {
			return p.errorf("variable %q is wider than variable %q sharing alias %q", name, src.name, alias)
		}
		if typ != src.typ {
			return p.errorf("variable %q and variable %q share alias %q with different types", name, src.name, alias)
		}
		sig = NewShadow(src, typ, name, width, p.doc.Timescale)
	} else {
		sig = NewSignal(typ, name, width, alias, p.doc.Timescale)
		p.doc.aliases[alias] = sig
	}
	s.AddSignal(sig)
	return nil
}

func varType(sig *Signal) string {
	switch {
	case sig.typ == Linear:
		return vcd.KwReal
	case sig.width > 1:
		return vcd.KwReg
	}
	return vcd.KwWire
}

// writeDeclarations writes the $var declarations of the signals of s.
//
func (s *Scope) writeDeclarations(w *bufio.Writer) {
	for _, sig := range s.signals {
		w.WriteString(vcd.KwVar)
		w.WriteByte(' ')
		w.WriteString(varType(sig))
		w.WriteByte(' ')
		w.WriteString(strconv.Itoa(sig.width))
		w.WriteByte(' ')
		w.WriteByte(sig.alias)
		w.WriteByte(' ')
		w.WriteString(sig.name)
		w.WriteByte(' ')
		w.WriteString(vcd.KwEnd)
		w.WriteByte('\n')
	}
}
