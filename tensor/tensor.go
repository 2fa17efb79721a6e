// Copyright 2025 PhiFlow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/ajrox090/PhiFlow/internal/tensor"
)

// Tensor is a named-dimension tensor: a *Native, *Collapsed or *Stack.
type Tensor = tensor.Tensor

// Native wraps a backend buffer.
type Native = tensor.Native

// Collapsed broadcasts an inner tensor to a larger shape without copying.
type Collapsed = tensor.Collapsed

// Stack holds one tensor per index of a stacked dimension.
type Stack = tensor.Stack

// Shape is an ordered list of named dimensions.
type Shape = shape.Shape

// Dim is a single named dimension.
type Dim = shape.Dim

// Kind classifies a dimension.
type Kind = shape.Kind

// Dimension kinds, in canonical order.
const (
	Batch   = shape.Batch
	Spatial = shape.Spatial
	Channel = shape.Channel
)

// DataType is the element type of a tensor.
type DataType = backend.DataType

// Data types.
const (
	Float16    = backend.Float16
	Float32    = backend.Float32
	Float64    = backend.Float64
	Int32      = backend.Int32
	Int64      = backend.Int64
	Bool       = backend.Bool
	Complex64  = backend.Complex64
	Complex128 = backend.Complex128
)

// Reserved dimension names.
const (
	VectorDim  = tensor.VectorDim
	NonzeroDim = tensor.NonzeroDim
)

// Errors. Test with errors.Is.
var (
	ErrShapeMismatch      = shape.ErrShapeMismatch
	ErrNameNotFound       = shape.ErrNameNotFound
	ErrInvalidReorder     = shape.ErrInvalidReorder
	ErrUnsupportedBackend = backend.ErrUnsupportedBackend
	ErrUnsupportedVariant = tensor.ErrUnsupportedVariant
	ErrUnsupportedSolver  = tensor.ErrUnsupportedSolver
	ErrNotImplemented     = tensor.ErrNotImplemented
	ErrNotClose           = tensor.ErrNotClose
	ErrNotConverged       = tensor.ErrNotConverged
)

// B returns a batch dimension.
func B(name string, size int) Dim { return shape.B(name, size) }

// S returns a spatial dimension.
func S(name string, size int) Dim { return shape.S(name, size) }

// C returns a channel dimension.
func C(name string, size int) Dim { return shape.C(name, size) }

// NewShape builds a shape from dims and panics on duplicate or empty names.
//
// Example:
//
//	s := tensor.NewShape(tensor.B("batch", 4), tensor.S("x", 64), tensor.S("y", 64))
func NewShape(dims ...Dim) Shape { return shape.Make(dims...) }

// Option configures a factory.
type Option = tensor.Option

// WithBackend creates the tensor on b instead of the default backend.
func WithBackend(b Backend) Option { return tensor.WithBackend(b) }

// WithDType sets the element type instead of the configured float type.
func WithDType(dt DataType) Option { return tensor.WithDType(dt) }

// Creation functions

// Full returns a tensor of shape s holding value everywhere. It stores a single value.
func Full(s Shape, value float64, opts ...Option) (Tensor, error) {
	return tensor.Full(s, value, opts...)
}

// Zeros returns zeros of shape s.
//
// Example:
//
//	z, err := tensor.Zeros(tensor.NewShape(tensor.S("x", 4), tensor.S("y", 4)))
func Zeros(s Shape, opts ...Option) (Tensor, error) { return tensor.Zeros(s, opts...) }

// Ones returns ones of shape s.
func Ones(s Shape, opts ...Option) (Tensor, error) { return tensor.Ones(s, opts...) }

// ZerosLike returns zeros with the shape, type and backend of t.
func ZerosLike(t Tensor) (Tensor, error) { return tensor.ZerosLike(t) }

// OnesLike returns ones with the shape, type and backend of t.
func OnesLike(t Tensor) (Tensor, error) { return tensor.OnesLike(t) }

// RandomNormal samples from the standard normal distribution.
func RandomNormal(s Shape, opts ...Option) (Tensor, error) { return tensor.RandomNormal(s, opts...) }

// RandomUniform samples uniformly from [0, 1).
func RandomUniform(s Shape, opts ...Option) (Tensor, error) { return tensor.RandomUniform(s, opts...) }

// Wrap copies row-major values of shape s into a native tensor.
//
// Example:
//
//	x, err := tensor.Wrap([]float64{1, 2, 3, 4}, tensor.NewShape(tensor.S("x", 2), tensor.C("vector", 2)))
func Wrap(values []float64, s Shape, opts ...Option) (*Native, error) {
	return tensor.Wrap(values, s, opts...)
}

// WrapComplex is Wrap for complex values.
func WrapComplex(values []complex128, s Shape, opts ...Option) (*Native, error) {
	return tensor.WrapComplex(values, s, opts...)
}

// Const returns a scalar.
func Const(value float64, opts ...Option) (*Native, error) { return tensor.Const(value, opts...) }

// Vector returns values along a channel dimension "vector".
func Vector(values []float64, opts ...Option) (*Native, error) { return tensor.Vector(values, opts...) }

// Meshgrid returns the integer cell indices of the spatial shape s along "vector".
func Meshgrid(s Shape, opts ...Option) (Tensor, error) { return tensor.Meshgrid(s, opts...) }

// FFTFreq returns the sample frequencies of the spatial shape s along "vector".
func FFTFreq(s Shape, opts ...Option) (Tensor, error) { return tensor.FFTFreq(s, opts...) }

// Linspace returns n evenly spaced values from start to stop along spatial dimension name.
func Linspace(start, stop float64, n int, name string, opts ...Option) (*Native, error) {
	return tensor.Linspace(start, stop, n, name, opts...)
}

// Arange returns the integers in [start, stop) along spatial dimension name.
func Arange(start, stop int, name string, opts ...Option) (*Native, error) {
	return tensor.Arange(start, stop, name, opts...)
}

// NewStack stacks values along a new dimension of the given kind.
func NewStack(values []Tensor, name string, kind Kind) (*Stack, error) {
	return tensor.NewStack(values, name, kind)
}

// BatchStack stacks values along a new batch dimension.
func BatchStack(values []Tensor, name string) (Tensor, error) { return tensor.BatchStack(values, name) }

// SpatialStack stacks values along a new spatial dimension.
func SpatialStack(values []Tensor, name string) (Tensor, error) {
	return tensor.SpatialStack(values, name)
}

// ChannelStack stacks values along a new channel dimension.
func ChannelStack(values []Tensor, name string) (Tensor, error) {
	return tensor.ChannelStack(values, name)
}

// Readback

// Float64s reads the values of t row-major in the given dimension order.
func Float64s(t Tensor, order ...string) ([]float64, error) { return tensor.Float64s(t, order...) }

// Complex128s is Float64s for complex values.
func Complex128s(t Tensor, order ...string) ([]complex128, error) {
	return tensor.Complex128s(t, order...)
}

// Item returns the value of a tensor holding exactly one value.
func Item(t Tensor) (float64, error) { return tensor.Item(t) }

// AllAvailable reports whether the values of all ts can be read without waiting.
func AllAvailable(ts ...Tensor) bool { return tensor.AllAvailable(ts...) }

// Close reports whether a and b agree within relTol and absTol after broadcasting.
// Tensors whose shapes cannot be broadcast are not close.
func Close(a, b Tensor, relTol, absTol float64) (bool, error) { return tensor.Close(a, b, relTol, absTol) }

// AssertClose returns an error wrapping ErrNotClose describing the mismatch, or nil.
func AssertClose(actual, expected Tensor, relTol, absTol float64) error {
	return tensor.AssertClose(actual, expected, relTol, absTol)
}
