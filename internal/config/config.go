// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config loads capture profiles.
//
// A profile is a JSON file listing the probe devices to capture from and the
// signals assigned to their channel groups:
//
//	{
//		"decimation": 0,
//		"continuous": true,
//		"maxRuns": 10,
//		"devices": [{
//			"name": "sim0",
//			"kind": "sim",
//			"probes": [
//				{"name": "sine", "group": "analog1"},
//				{"name": "count", "group": "digital", "wire": 0, "width": 8}
//			]
//		}]
//	}
//
package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// BaseDivisor is the sample period in picoseconds without decimation.
//
const BaseDivisor = 8000

// Profile is a capture profile.
//
type Profile struct {
	// Decimation divides the sample rate by 1<<Decimation.
	Decimation int  `json:"decimation,omitempty"`
	Continuous bool `json:"continuous,omitempty"`
	// MaxRuns limits continuous captures (0 = no limit).
	MaxRuns int `json:"maxRuns,omitempty"`
	// Output is the file where the captured document is saved.
	Output  string   `json:"output,omitempty"`
	Devices []Device `json:"devices"`
}

// Device describes a probe device.
//
type Device struct {
	Name    string  `json:"name"`
	Kind    string  `json:"kind"`
	Samples int     `json:"samples,omitempty"`
	DelayMs int     `json:"delayMs,omitempty"`
	Probes  []Probe `json:"probes"`
}

// Probe assigns a signal to a channel group of a device. Digital probes use
// Width wires starting at Wire. A digital probe with Wire 0 that is not the
// first one on its device is placed after the previous probes.
//
type Probe struct {
	Name  string `json:"name"`
	Group string `json:"group"`
	Wire  int    `json:"wire,omitempty"`
	Width int    `json:"width,omitempty"`
}

// Analog returns true if the probe is on an analog group.
//
func (p *Probe) Analog() bool { return p.Group != "digital" }

// Divisor returns the sample period in picoseconds.
//
func (p *Profile) Divisor() uint64 {
	return BaseDivisor << uint(p.Decimation)
}

// Default returns a profile with a single simulated device and one signal on
// each channel group.
//
func Default() *Profile {
	p := &Profile{
		Devices: []Device{{
			Name: "sim0",
			Kind: "sim",
			Probes: []Probe{
				{Name: "sine", Group: "analog1"},
				{Name: "cosine", Group: "analog2"},
				{Name: "count", Group: "digital", Width: 8},
			},
		}},
	}
	p.applyDefaults()
	return p
}

func (p *Profile) applyDefaults() {
	for i := range p.Devices {
		for j := range p.Devices[i].Probes {
			pr := &p.Devices[i].Probes[j]
			if pr.Width == 0 {
				pr.Width = 1
				if pr.Analog() {
					pr.Width = 8
				}
			}
		}
	}
}

// Parse validates and decodes a JSON profile.
//
func Parse(b []byte) (*Profile, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	if err = v.ValidateJSON(b); err != nil {
		return nil, err
	}
	var p Profile
	if err = json.Unmarshal(b, &p); err != nil {
		return nil, errors.Wrap(err, "decode profile")
	}
	p.applyDefaults()
	for _, d := range p.Devices {
		for _, pr := range d.Probes {
			if !pr.Analog() && pr.Wire+pr.Width > 16 {
				return nil, errors.Errorf("%s.%s: wires %d to %d out of range", d.Name, pr.Name, pr.Wire, pr.Wire+pr.Width-1)
			}
		}
	}
	return &p, nil
}

// LoadFile loads the profile in the named file.
//
func LoadFile(name string) (*Profile, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read profile")
	}
	p, err := Parse(b)
	return p, errors.Wrap(err, name)
}
