// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package qwave

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseError reports a malformed input file. Errors returned by Load carry a
// stack trace; use AsParseError to get to the ParseError.
//
type ParseError struct {
	File string // may be empty
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// AsParseError returns the ParseError at the root of err, if any.
//
func AsParseError(err error) (*ParseError, bool) {
	pe, ok := errors.Cause(err).(*ParseError)
	return pe, ok
}

func parseError(file string, line int, msg string) error {
	return errors.WithStack(&ParseError{File: file, Line: line, Msg: msg})
}
