// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package vcd implements the tokenizer for value change dump files.
//
package vcd

import (
	"io"
	"strings"

	"github.com/josko7452/qwave-project/internal/lex"
)

// Tokens
const (
	EOF  lex.Type = lex.EOF
	Word lex.Type = iota
)

// EOFToken is the text returned by Tokenizer.Next once the input is exhausted.
//
const EOFToken = "!$EOF$!"

// Keywords
const (
	KwComment        = "$comment"
	KwDate           = "$date"
	KwVersion        = "$version"
	KwTimescale      = "$timescale"
	KwScope          = "$scope"
	KwUpscope        = "$upscope"
	KwVar            = "$var"
	KwEnd            = "$end"
	KwEndDefinitions = "$enddefinitions"
	KwDumpVars       = "$dumpvars"
	KwDumpAll        = "$dumpall"
	KwDumpOn         = "$dumpon"
	KwDumpOff        = "$dumpoff"
	KwModule         = "module"
	KwWire           = "wire"
	KwReg            = "reg"
	KwReal           = "real"
)

// Lexer returns a new lexer splitting r into whitespace separated words.
// Words are raw bytes: any byte other than ASCII white space is kept as is.
//
func Lexer(r io.Reader) *lex.Lexer {
	return lex.NewBytes(r, lexInit)
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func lexInit(l *lex.Lexer) lex.StateFn {
	r := l.Next()
	switch {
	case r == lex.EOF:
		return lexEOF
	case isSpace(r):
		l.AcceptWhile(isSpace)
		return nil
	}
	return lexWord
}

func lexWord(l *lex.Lexer) lex.StateFn {
	var buf strings.Builder
	buf.Grow(8)
	buf.WriteByte(byte(l.Current()))
	r := l.Next()
	for r != lex.EOF && !isSpace(r) {
		buf.WriteByte(byte(r))
		r = l.Next()
	}
	l.Backup()
	l.Emit(Word, buf.String())
	return nil
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
//
func lexEOF(l *lex.Lexer) lex.StateFn {
	l.Emit(EOF, EOFToken)
	return lexEOF
}

// Tokenizer returns the words of a VCD stream one at a time and keeps track of
// line numbers for diagnostics.
//
type Tokenizer struct {
	l    *lex.Lexer
	line int
}

// NewTokenizer returns a Tokenizer reading from r.
//
func NewTokenizer(r io.Reader) *Tokenizer {
	return &Tokenizer{l: Lexer(r), line: 1}
}

// Next returns the next token. After the end of input, it returns EOFToken
// on every call.
//
func (t *Tokenizer) Next() string {
	i := t.l.Lex()
	t.line = i.Line
	return i.Value.(string)
}

// Line returns the line number of the last token returned by Next.
//
func (t *Tokenizer) Line() int {
	return t.line
}

// Err returns the read error that ended the input early, if any.
//
func (t *Tokenizer) Err() error {
	return t.l.Err()
}
