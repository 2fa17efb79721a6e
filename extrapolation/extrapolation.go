// Copyright 2025 PhiFlow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package extrapolation provides the standard boundary policies for tensor.Pad and
// tensor.GridSample.
//
// Example:
//
//	p, err := tensor.Pad(x, tensor.Widths{"x": {1, 1}}, extrapolation.Periodic)
//	mixed := extrapolation.Mixed(map[string]tensor.Extrapolation{"y": extrapolation.Zero}, extrapolation.Boundary)
package extrapolation

import (
	"github.com/ajrox090/PhiFlow/internal/extrapolation"
)

// Extrapolation is the policy interface.
type Extrapolation = extrapolation.Extrapolation

// ConstantExtrapolation pads with a fixed value.
type ConstantExtrapolation = extrapolation.ConstantExtrapolation

// MixedExtrapolation applies a separate policy per dimension, optionally one per side.
type MixedExtrapolation = extrapolation.MixedExtrapolation

// Standard policies.
var (
	Zero      = extrapolation.Zero
	One       = extrapolation.One
	Boundary  = extrapolation.Boundary
	Periodic  = extrapolation.Periodic
	Symmetric = extrapolation.Symmetric
)

// Constant returns a policy padding with value.
func Constant(value float64) ConstantExtrapolation { return extrapolation.Constant(value) }

// Mixed uses dims[name] for the named dimensions and def for all others.
func Mixed(dims map[string]Extrapolation, def Extrapolation) *MixedExtrapolation {
	return extrapolation.Mixed(dims, def)
}

// MixedSides uses sides[name][0] below and sides[name][1] above the named dimensions and
// def for all others.
func MixedSides(sides map[string][2]Extrapolation, def Extrapolation) *MixedExtrapolation {
	return extrapolation.MixedSides(sides, def)
}
