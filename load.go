// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package qwave

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/josko7452/qwave-project/internal/vcd"
	"github.com/pkg/errors"
)

type state int

// parser states
const (
	stateHeader    state = iota // declarations, up to $enddefinitions $end
	stateDumpStart              // expecting $dumpvars
	stateDumpVars               // initial values, up to $end
	stateDump                   // value changes, up to end of input
	stateDone
)

type parser struct {
	tk     *vcd.Tokenizer
	file   string
	tok    string // current token
	doc    *Document
	scopes []*Scope // scopes[0] is the document root
	time   int      // current sample index
}

func (p *parser) next() string {
	p.tok = p.tk.Next()
	return p.tok
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return parseError(p.file, p.tk.Line(), fmt.Sprintf(format, args...))
}

func (p *parser) scope() *Scope {
	return p.scopes[len(p.scopes)-1]
}

// text reads the words following a header keyword up to $end and returns them
// joined by a single space.
//
func (p *parser) text() (string, error) {
	kw := p.tok
	var words []string
	for {
		switch p.next() {
		case vcd.KwEnd:
			return strings.Join(words, " "), nil
		case vcd.EOFToken:
			return "", p.errorf("unterminated %s", kw)
		}
		words = append(words, p.tok)
	}
}

// Load reads a waveform document from r. name is used in error messages
// and may be empty.
//
// The returned document is nil if an error occurs. Syntax errors have a
// *ParseError as their cause.
//
func Load(r io.Reader, name string) (*Document, error) {
	p := &parser{
		tk:   vcd.NewTokenizer(r),
		file: name,
		doc:  newDocument(),
	}
	p.scopes = []*Scope{p.doc.root}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.doc, nil
}

// LoadFile loads the document in the named file.
//
func LoadFile(name string) (*Document, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "load")
	}
	defer f.Close()
	return Load(f, name)
}

func (p *parser) run() error {
	var err error
	st := stateHeader
	p.next()
	for st != stateDone {
		switch st {
		case stateHeader:
			st, err = p.header()
		case stateDumpStart:
			st, err = p.dumpStart()
		case stateDumpVars:
			st, err = p.dumpVars()
		case stateDump:
			st, err = p.dump()
		}
		if err != nil {
			return err
		}
	}
	if err = p.tk.Err(); err != nil {
		return errors.Wrap(err, "read")
	}
	p.finalize()
	p.doc.cur = p.doc.Top()
	return nil
}

func (p *parser) header() (state, error) {
	switch p.tok {
	case vcd.KwDate, vcd.KwVersion, vcd.KwComment:
		kw := p.tok
		text, err := p.text()
		if err != nil {
			return stateDone, err
		}
		switch kw {
		case vcd.KwDate:
			p.doc.Date = text
		case vcd.KwVersion:
			p.doc.Version = text
		default:
			p.doc.Comment = text
		}
	case vcd.KwTimescale:
		text, err := p.text()
		if err != nil {
			return stateDone, err
		}
		ts, err := ParseTimescale(text)
		if err != nil {
			return stateDone, p.errorf("invalid timescale %q", text)
		}
		p.doc.Timescale = ts
	case vcd.KwScope:
		if p.next() == vcd.KwEnd || p.tok == vcd.EOFToken {
			return stateDone, p.errorf("missing scope type")
		}
		name := p.next()
		if name == vcd.KwEnd || name == vcd.EOFToken {
			return stateDone, p.errorf("missing scope name")
		}
		if p.next() != vcd.KwEnd {
			return stateDone, p.errorf("expected $end after scope %q, got %q", name, p.tok)
		}
		sc := p.scope().AddScope(name)
		p.scopes = append(p.scopes, sc)
		// leaves the next $scope or $upscope in p.tok
		return stateHeader, sc.loadDeclarations(p)
	case vcd.KwUpscope:
		if len(p.scopes) == 1 {
			return stateDone, p.errorf("$upscope without matching $scope")
		}
		if p.next() != vcd.KwEnd {
			return stateDone, p.errorf("expected $end after $upscope, got %q", p.tok)
		}
		p.scopes = p.scopes[:len(p.scopes)-1]
		if len(p.scopes) > 1 {
			// more variables may follow in the parent scope
			return stateHeader, p.scope().loadDeclarations(p)
		}
	case vcd.KwEndDefinitions:
		if p.next() != vcd.KwEnd {
			return stateDone, p.errorf("expected $end after $enddefinitions, got %q", p.tok)
		}
		if len(p.scopes) != 1 {
			return stateDone, p.errorf("missing $upscope for scope %q", p.scope().name)
		}
		p.next()
		return stateDumpStart, nil
	case vcd.EOFToken:
		return stateDone, p.errorf("unexpected end of input in header")
	default:
		return stateDone, p.errorf("expected vcd directive, got %q", p.tok)
	}
	p.next()
	return stateHeader, nil
}

func (p *parser) dumpStart() (state, error) {
	switch {
	case p.tok == vcd.KwDumpVars:
		p.next()
		return stateDumpVars, nil
	case p.tok == vcd.KwComment:
		if _, err := p.text(); err != nil {
			return stateDone, err
		}
	case isTime(p.tok):
		if err := p.setTime(); err != nil {
			return stateDone, err
		}
	case p.tok == vcd.EOFToken:
		return stateDone, p.errorf("missing $dumpvars")
	default:
		return stateDone, p.errorf("expected $dumpvars, got %q", p.tok)
	}
	p.next()
	return stateDumpStart, nil
}

func (p *parser) dumpVars() (state, error) {
	switch {
	case p.tok == vcd.KwEnd:
		p.next()
		return stateDump, nil
	case p.tok == vcd.EOFToken:
		return stateDone, p.errorf("unterminated $dumpvars")
	case p.tok == vcd.KwComment:
		if _, err := p.text(); err != nil {
			return stateDone, err
		}
	case isTime(p.tok):
		if err := p.setTime(); err != nil {
			return stateDone, err
		}
	default:
		if err := p.value(); err != nil {
			return stateDone, err
		}
	}
	p.next()
	return stateDumpVars, nil
}

func (p *parser) dump() (state, error) {
	switch {
	case p.tok == vcd.EOFToken:
		return stateDone, nil
	case p.tok == vcd.KwDumpVars, p.tok == vcd.KwDumpAll, p.tok == vcd.KwDumpOn, p.tok == vcd.KwDumpOff:
		p.next()
		return stateDumpVars, nil
	case p.tok == vcd.KwComment:
		if _, err := p.text(); err != nil {
			return stateDone, err
		}
	case isTime(p.tok):
		if err := p.setTime(); err != nil {
			return stateDone, err
		}
	default:
		if err := p.value(); err != nil {
			return stateDone, err
		}
	}
	p.next()
	return stateDump, nil
}

func isTime(tok string) bool {
	return len(tok) > 0 && tok[0] == '#'
}

func (p *parser) setTime() error {
	t, err := strconv.Atoi(p.tok[1:])
	if err != nil || t < 0 {
		return p.errorf("invalid time marker %q", p.tok)
	}
	if t < p.time {
		return p.errorf("time marker %q goes backwards from #%d", p.tok, p.time)
	}
	p.time = t
	return nil
}

// level converts a value character to a logic level.
//
func level(c byte) (byte, bool) {
	switch c {
	case '0':
		return Low, true
	case '1':
		return High, true
	case 'u', 'U', 'z', 'Z':
		return HighZ, true
	case 'x', 'X':
		return Unknown, true
	}
	return 0, false
}

// lookup reads the alias token following a vector or real value and returns
// the signal it refers to.
//
func (p *parser) lookup(alias string) (*Signal, error) {
	if len(alias) != 1 || alias == vcd.EOFToken {
		return nil, p.errorf("invalid alias %q", alias)
	}
	sig, ok := p.doc.aliases[alias[0]]
	if !ok {
		return nil, p.errorf("dump data alias %q not in declarations", alias)
	}
	return sig, nil
}

// value parses a value token. The token and its alias are fully validated
// before any store is modified.
//
func (p *parser) value() error {
	tok := p.tok
	switch tok[0] {
	case 'b', 'B':
		sig, err := p.lookup(p.next())
		if err != nil {
			return err
		}
		bits := tok[1:]
		if len(bits) == 0 {
			return p.errorf("empty vector value for alias %q", p.tok)
		}
		if sig.typ != Logic {
			return p.errorf("vector value %q for real variable %q", tok, sig.name)
		}
		if len(bits) > sig.buf.Width() {
			return p.errorf("value %q is wider than variable %q", tok, sig.name)
		}
		vs := make([]byte, len(bits))
		for i := range vs {
			v, ok := level(bits[i])
			if !ok {
				return p.errorf("invalid value %q", tok)
			}
			vs[i] = v
		}
		for i, v := range vs {
			p.insert(sig, i, v)
		}
	case 'r', 'R':
		sig, err := p.lookup(p.next())
		if err != nil {
			return err
		}
		if sig.typ != Linear {
			return p.errorf("real value %q for variable %q", tok, sig.name)
		}
		v, err := strconv.ParseUint(tok[1:], 10, 8)
		if err != nil {
			return p.errorf("invalid real value %q", tok)
		}
		p.insert(sig, 0, byte(v))
	default:
		if len(tok) != 2 {
			return p.errorf("expected value and alias, got %q", tok)
		}
		v, ok := level(tok[0])
		if !ok {
			return p.errorf("invalid value %q", tok)
		}
		sig, err := p.lookup(tok[1:])
		if err != nil {
			return err
		}
		if sig.typ != Logic {
			return p.errorf("scalar value %q for real variable %q", tok, sig.name)
		}
		p.insert(sig, 0, v)
	}
	return nil
}

// insert writes v to bit at the current time. Samples skipped since the last
// write hold the last written value, or Unknown if there is none. A second
// write at the same time replaces the first.
//
func (p *parser) insert(sig *Signal, bit int, v byte) {
	b := sig.buf
	n := b.Len(bit)
	if p.time < n {
		b.set(bit, p.time, v)
		return
	}
	fill(b, bit, p.time, Unknown)
	b.Append(bit, v)
}

// fill extends bit up to (not including) sample end, repeating its last
// sample or def if it has none.
//
func fill(b *Buffer, bit, end int, def byte) {
	n := b.Len(bit)
	v := def
	if n > 0 {
		v = b.At(bit, n-1)
	}
	for i := n; i < end; i++ {
		b.Append(bit, v)
	}
}

// finalize extends every bit of every buffer up to and including the last
// time marker.
//
func (p *parser) finalize() {
	for _, sig := range p.doc.aliases {
		for bit := 0; bit < sig.buf.Width(); bit++ {
			fill(sig.buf, bit, p.time+1, Unknown)
		}
	}
}
