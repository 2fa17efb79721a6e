package tensor

import (
	"github.com/pkg/errors"
)

// The operations below are reserved. Each returns an error wrapping ErrNotImplemented.

// ReshapePattern rearranges dimensions according to a pattern such as "(x y) c -> x y c".
func ReshapePattern(value Tensor, pattern string) (Tensor, error) {
	return nil, errors.Wrapf(ErrNotImplemented, "reshape with pattern %q", pattern)
}

// Einsum evaluates an Einstein summation over named dimensions.
func Einsum(equation string, values ...Tensor) (Tensor, error) {
	return nil, errors.Wrapf(ErrNotImplemented, "einsum %q", equation)
}

// Dot contracts aDims of a with bDims of b.
func Dot(a Tensor, aDims []string, b Tensor, bDims []string) (Tensor, error) {
	return nil, errors.Wrap(ErrNotImplemented, "dot")
}

// MatMul multiplies a matrix with a vector or matrix.
func MatMul(a, b Tensor) (Tensor, error) {
	return nil, errors.Wrap(ErrNotImplemented, "matmul")
}

// Conv convolves value with kernel over the spatial dimensions.
func Conv(value, kernel Tensor, mode Extrapolation) (Tensor, error) {
	return nil, errors.Wrap(ErrNotImplemented, "conv")
}

// Tile repeats value multiples[name] times along each named dimension.
func Tile(value Tensor, multiples map[string]int) (Tensor, error) {
	return nil, errors.Wrap(ErrNotImplemented, "tile")
}

// BooleanMask keeps the slices along dim where mask is true.
func BooleanMask(value Tensor, dim string, mask Tensor) (Tensor, error) {
	return nil, errors.Wrapf(ErrNotImplemented, "boolean mask along %q", dim)
}

// SparseTensor builds a sparse tensor from indices and values.
func SparseTensor(indices, values Tensor, dense Tensor) (Tensor, error) {
	return nil, errors.Wrap(ErrNotImplemented, "sparse tensor")
}

// WithCustomGradient wraps f so that its gradient is computed by gradient.
func WithCustomGradient(f, gradient func(...Tensor) (Tensor, error)) (func(...Tensor) (Tensor, error), error) {
	return nil, errors.Wrap(ErrNotImplemented, "custom gradient")
}
