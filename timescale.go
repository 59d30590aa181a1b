// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package qwave

import (
	"math"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
)

var timescaleRe = regexp.MustCompile(`^\s*(\d+)\s*(ps|ns|us|ms|s)\s*$`)

// time units, largest first.
var units = []struct {
	name string
	ps   uint64
}{
	{"s", 1e12},
	{"ms", 1e9},
	{"us", 1e6},
	{"ns", 1e3},
	{"ps", 1},
}

func unitScale(u string) uint64 {
	for _, unit := range units {
		if unit.name == u {
			return unit.ps
		}
	}
	return 0
}

// ParseTimescale parses a timescale like "10ns" or "1 us" and returns its
// value in picoseconds.
//
func ParseTimescale(s string) (uint64, error) {
	m := timescaleRe.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.Errorf("invalid timescale %q", s)
	}
	n, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid timescale %q", s)
	}
	scale := unitScale(m[2])
	if n > math.MaxUint64/scale {
		return 0, errors.Errorf("timescale %q overflows", s)
	}
	return n * scale, nil
}

// FormatTimescale formats a duration in picoseconds using the largest unit
// that divides it exactly.
//
func FormatTimescale(ps uint64) string {
	for _, u := range units {
		if ps != 0 && ps%u.ps == 0 {
			return strconv.FormatUint(ps/u.ps, 10) + u.name
		}
	}
	return strconv.FormatUint(ps, 10) + "ps"
}
