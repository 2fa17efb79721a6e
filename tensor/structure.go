// Copyright 2025 PhiFlow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/tensor"
)

// Extrapolation pads tensors and maps out-of-range grid indices back onto a grid.
// Standard policies live in package extrapolation.
type Extrapolation = tensor.Extrapolation

// Widths holds the lower and upper pad widths per dimension name.
type Widths = tensor.Widths

// ScatterOptions configures Scatter.
type ScatterOptions = tensor.ScatterOptions

// Scatter modes.
const (
	DuplicatesAdd       = backend.DuplicatesAdd
	DuplicatesMean      = backend.DuplicatesMean
	DuplicatesAny       = backend.DuplicatesAny
	DuplicatesUndefined = backend.DuplicatesUndefined

	OutsideDiscard   = backend.OutsideDiscard
	OutsideClamp     = backend.OutsideClamp
	OutsideUndefined = backend.OutsideUndefined
)

// Concat joins values along dim. All other dimensions must agree.
func Concat(values []Tensor, dim string) (Tensor, error) { return tensor.Concat(values, dim) }

// Unstack slices value along dim.
func Unstack(value Tensor, dim string) ([]Tensor, error) { return tensor.Unstack(value, dim) }

// Expand adds the dimensions of dims that value lacks, without copying.
func Expand(value Tensor, dims Shape) (Tensor, error) { return tensor.Expand(value, dims) }

// ExpandChannel adds a channel dimension.
func ExpandChannel(value Tensor, name string, size int) (Tensor, error) {
	return tensor.ExpandChannel(value, name, size)
}

// JoinDimensions merges dims into a single dimension joined.
func JoinDimensions(value Tensor, dims []string, joined string) (Tensor, error) {
	return tensor.JoinDimensions(value, dims, joined)
}

// Transpose changes the declared order of the dimensions.
func Transpose(value Tensor, order ...string) (Tensor, error) { return tensor.Transpose(value, order...) }

// RenameDims renames dimensions according to m.
func RenameDims(value Tensor, m map[string]string) (Tensor, error) { return tensor.RenameDims(value, m) }

// Slice keeps [start, stop) along dim.
func Slice(value Tensor, dim string, start, stop int) (Tensor, error) {
	return tensor.Slice(value, dim, start, stop)
}

// Flip reverses value along dims.
func Flip(value Tensor, dims ...string) (Tensor, error) { return tensor.Flip(value, dims...) }

// Pad extends value by widths using mode.
//
// Example:
//
//	p, err := tensor.Pad(x, tensor.Widths{"x": {1, 1}}, extrapolation.Periodic)
func Pad(value Tensor, widths Widths, mode Extrapolation) (Tensor, error) {
	return tensor.Pad(value, widths, mode)
}

// SpatialPad pads every spatial dimension by lower and upper cells.
func SpatialPad(value Tensor, lower, upper int, mode Extrapolation) (Tensor, error) {
	return tensor.SpatialPad(value, lower, upper, mode)
}

// ClosestGridValues returns the 2^d grid values surrounding each coordinate, stacked
// along spatial dimensions prefix+name.
func ClosestGridValues(grid, coords Tensor, extrap Extrapolation, prefix string) (Tensor, error) {
	return tensor.ClosestGridValues(grid, coords, extrap, prefix)
}

// GridSample interpolates grid multilinearly at coords given in cell indices along "vector".
func GridSample(grid, coords Tensor, extrap Extrapolation) (Tensor, error) {
	return tensor.GridSample(grid, coords, extrap)
}

// Gather looks up values at integer cell indices along "vector".
func Gather(values, indices Tensor) (Tensor, error) { return tensor.Gather(values, indices) }

// Scatter writes values at integer cell indices into a zero grid of spatial shape size.
func Scatter(indices, values Tensor, size Shape, opts ScatterOptions) (Tensor, error) {
	return tensor.Scatter(indices, values, size, opts)
}

// Nonzero lists the positions of the non-zero values along "nonzero" and "vector".
func Nonzero(value Tensor) (Tensor, error) { return tensor.Nonzero(value) }

// FFT transforms over all spatial dimensions.
func FFT(x Tensor) (Tensor, error) { return tensor.FFT(x) }

// IFFT inverts FFT.
func IFFT(k Tensor) (Tensor, error) { return tensor.IFFT(k) }
