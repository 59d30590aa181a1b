// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lex provides a small state-function based lexer framework.
//
// A concrete lexer is built by writing an initial StateFn. The Lexer calls it
// each time a new token is needed; state functions consume runes with Next,
// Backup and AcceptWhile and produce tokens with Emit. A state function
// returning nil hands control back to the initial state.
//
package lex

import (
	"bufio"
	"io"
	"strconv"
)

// EOF is both the rune returned by Lexer.Next at end of input and the Type of
// the end of input token.
//
const EOF = -1

// Type is a token type.
//
type Type int

// Pos is a byte offset in the input stream.
//
type Pos int

// Item is a token as returned by Lex.
//
type Item struct {
	Type  Type
	Pos   Pos // byte offset of the first rune of the token
	Line  int // 1-based line of the first rune of the token
	Value interface{}
}

func (i Item) String() string {
	switch v := i.Value.(type) {
	case string:
		return strconv.Quote(v)
	case rune:
		return strconv.QuoteRune(v)
	case int:
		return strconv.Itoa(v)
	}
	if i.Type == EOF {
		return "end of input"
	}
	return "token " + strconv.Itoa(int(i.Type))
}

// StateFn is a lexer state function.
//
type StateFn func(l *Lexer) StateFn

// Interface is implemented by lexers.
//
type Interface interface {
	// Lex returns the next token in the input stream.
	Lex() Item
}

// Lexer reads runes from an io.Reader and drives state functions.
//
type Lexer struct {
	r     *bufio.Reader
	bytes bool // one rune per input byte
	init  StateFn
	state StateFn
	items []Item
	err   error

	cur    rune
	pos    Pos // offset of cur
	next   Pos // offset of the rune following cur
	line   int // line of cur
	backed bool

	start     Pos
	startLine int
	mark      bool // start of token not yet recorded
}

// New returns a new Lexer reading from r, starting in the init state.
//
func New(r io.Reader, init StateFn) *Lexer {
	return &Lexer{
		r:    bufio.NewReader(r),
		init: init,
		line: 1,
		cur:  '\n', // so that the first rune is seen on line 1
		pos:  -1,
	}
}

// NewBytes returns a new Lexer that reads r one byte at a time: each rune
// returned by Next is a single input byte in the range 0..255, whatever its
// encoding.
//
func NewBytes(r io.Reader, init StateFn) *Lexer {
	l := New(r, init)
	l.bytes = true
	return l
}

func (l *Lexer) read() (rune, int, error) {
	if l.bytes {
		b, err := l.r.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		return rune(b), 1, nil
	}
	return l.r.ReadRune()
}

// Lex returns the next token.
//
func (l *Lexer) Lex() Item {
	for len(l.items) == 0 {
		if l.state == nil {
			l.state = l.init
			l.mark = true
		}
		l.state = l.state(l)
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

// Next reads and returns the next rune from the input stream. It returns EOF
// once the input is exhausted or on read error.
//
func (l *Lexer) Next() rune {
	if l.backed {
		l.backed = false
	} else if l.cur != EOF {
		r, sz, err := l.read()
		if l.cur == '\n' && l.pos >= 0 {
			l.line++
		}
		l.pos = l.next
		if err != nil {
			if err != io.EOF {
				l.err = err
			}
			r = EOF
		}
		l.next += Pos(sz)
		l.cur = r
	}
	if l.mark {
		l.start, l.startLine = l.pos, l.line
		l.mark = false
	}
	return l.cur
}

// Current returns the last rune returned by Next.
//
func (l *Lexer) Current() rune {
	return l.cur
}

// Backup pushes back the current rune. Only one rune of backup is supported.
// If the rune being pushed back starts a new token, its position will be
// recorded again on the following call to Next.
//
func (l *Lexer) Backup() {
	l.backed = true
}

// AcceptWhile consumes runes as long as f returns true. The first rune for
// which f returns false is pushed back.
//
func (l *Lexer) AcceptWhile(f func(r rune) bool) {
	for r := l.Next(); r != EOF && f(r); r = l.Next() {
	}
	l.Backup()
}

// Emit emits a token of type t with value v. The token position is the
// position of the first rune read since the previous token.
//
func (l *Lexer) Emit(t Type, v interface{}) {
	l.items = append(l.items, Item{Type: t, Pos: l.start, Line: l.startLine, Value: v})
	l.mark = true
}

// Line returns the line number of the current rune.
//
func (l *Lexer) Line() int {
	return l.line
}

// Err returns the first non-EOF read error encountered, if any.
//
func (l *Lexer) Err() error {
	return l.err
}
