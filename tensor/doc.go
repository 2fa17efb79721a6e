// Copyright 2025 PhiFlow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides named-dimension tensors over pluggable numeric backends.
//
// # Overview
//
// Every dimension of a tensor has a name, a size and a kind (batch, spatial or channel).
// Operations match dimensions by name rather than by position, so
//
//	x := must.M1(tensor.Wrap([]float64{1, 2, 3}, tensor.NewShape(tensor.S("x", 3))))
//	y := must.M1(tensor.Wrap([]float64{10, 20}, tensor.NewShape(tensor.S("y", 2))))
//	z := must.M1(tensor.Add(x, y)) // (x=3, y=2)
//
// broadcasts x along y and y along x. The declared order of dimensions only affects
// storage; readback functions take the order to read in.
//
// # Variants
//
// A Tensor is one of three variants:
//   - *Native wraps a backend buffer.
//   - *Collapsed broadcasts an inner tensor to a larger shape without copying.
//     Factories such as Zeros return collapsed scalars.
//   - *Stack holds one tensor per index of a stacked dimension. Children may differ in
//     size, which yields a non-uniform shape.
//
// Operations keep the cheapest variant they can: adding two collapsed tensors stays
// collapsed, and summing a collapsed tensor multiplies instead of adding.
//
// # Backends
//
// Numeric work is delegated to a Backend chosen from the buffers involved. Import
// backend/cpu (or any other backend package) to register it:
//
//	import _ "github.com/ajrox090/PhiFlow/backend/cpu"
//
// Configure selects the default backend and the float precision used by factories:
//
//	defer tensor.Configure(tensor.Config{Precision: 64})()
//
// # Errors
//
// Functions return errors wrapping the sentinels of this package; test them with errors.Is.
package tensor
