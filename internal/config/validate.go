// Copyright 2026 The qwave-project Authors
// Licensed under the MIT license. See license text in the LICENSE file.

package config

import (
	"embed"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/pkg/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

// Validator checks capture profiles against the embedded CUE schema.
//
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator compiles the embedded schema.
//
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	b, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, errors.Wrap(err, "load schema")
	}
	schema := ctx.CompileBytes(b, cue.Filename("schema.cue"))
	if err = schema.Err(); err != nil {
		return nil, errors.Wrap(err, "compile schema")
	}
	return &Validator{ctx: ctx, schema: schema}, nil
}

// ValidateJSON validates a JSON encoded profile. All fields must be known and
// required fields must be present.
//
func (v *Validator) ValidateJSON(b []byte) error {
	data := v.ctx.CompileBytes(b, cue.Filename("profile.json"))
	if err := data.Err(); err != nil {
		return errors.Errorf("invalid profile: %s", cueerrors.Details(err, nil))
	}
	def := v.schema.LookupPath(cue.ParsePath("#Input"))
	if err := def.Err(); err != nil {
		return errors.Wrap(err, "lookup #Input")
	}
	if err := def.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return errors.Errorf("invalid profile: %s", cueerrors.Details(err, nil))
	}
	return nil
}
