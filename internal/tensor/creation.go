package tensor

import (
	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/pkg/errors"
)

// VectorDim is the channel dimension holding vector components, ordered like the spatial
// dimensions they refer to.
const VectorDim = "vector"

// Option configures tensor factories.
type Option func(*options)

type options struct {
	backend backend.Backend
	dtype   backend.DataType
	dtypeOK bool
}

// WithBackend allocates on b instead of the configured default backend.
func WithBackend(b backend.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithDType sets the element type instead of the configured float precision.
func WithDType(dt backend.DataType) Option {
	return func(o *options) { o.dtype, o.dtypeOK = dt, true }
}

func resolve(opts []Option) (backend.Backend, backend.DataType, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if !o.dtypeOK {
		o.dtype = backend.CurrentConfig().FloatType()
	}
	if o.backend != nil {
		return o.backend, o.dtype, nil
	}
	b, err := backend.Default()
	return b, o.dtype, err
}

// initialize builds a tensor of shape s. Non-uniform shapes are built slice by slice and
// stacked along the dimension their sizes vary along.
func initialize(s shape.Shape, f func(s shape.Shape) (Tensor, error)) (Tensor, error) {
	if !s.IsNonUniform() {
		return f(s)
	}
	var along string
	for _, d := range s.Dims() {
		if d.Along != "" {
			along = d.Along
			break
		}
	}
	kind, err := s.KindOf(along)
	if err != nil {
		return nil, err
	}
	subs, err := s.Unstack(along)
	if err != nil {
		return nil, err
	}
	children := make([]Tensor, len(subs))
	for i, sub := range subs {
		if children[i], err = initialize(sub, f); err != nil {
			return nil, err
		}
	}
	return NewStack(children, along, kind)
}

// Full returns a tensor of shape s filled with value. Only a scalar is allocated.
func Full(s shape.Shape, value float64, opts ...Option) (Tensor, error) {
	b, dt, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	scalar := newNative(b, b.FromFloat64s([]float64{value}, nil, dt), shape.Empty)
	return initialize(s, func(s shape.Shape) (Tensor, error) {
		return NewCollapsed(scalar, s)
	})
}

// Zeros returns a tensor of shape s filled with zeros.
func Zeros(s shape.Shape, opts ...Option) (Tensor, error) { return Full(s, 0, opts...) }

// Ones returns a tensor of shape s filled with ones.
func Ones(s shape.Shape, opts ...Option) (Tensor, error) { return Full(s, 1, opts...) }

// ZerosLike returns zeros with the shape, type and backend of t.
func ZerosLike(t Tensor) (Tensor, error) { return fullLike(t, 0) }

// OnesLike returns ones with the shape, type and backend of t.
func OnesLike(t Tensor) (Tensor, error) { return fullLike(t, 1) }

func fullLike(t Tensor, value float64) (Tensor, error) {
	b, err := backendFor(t)
	if err != nil {
		return nil, err
	}
	return Full(t.Shape(), value, WithBackend(b), WithDType(t.DType()))
}

// RandomNormal samples every element from the standard normal distribution.
func RandomNormal(s shape.Shape, opts ...Option) (Tensor, error) {
	b, dt, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	return initialize(s, func(s shape.Shape) (Tensor, error) {
		return newNative(b, b.RandomNormal(s.Sizes(), dt), s), nil
	})
}

// RandomUniform samples every element uniformly from [0, 1).
func RandomUniform(s shape.Shape, opts ...Option) (Tensor, error) {
	b, dt, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	return initialize(s, func(s shape.Shape) (Tensor, error) {
		return newNative(b, b.RandomUniform(s.Sizes(), dt), s), nil
	})
}

// Wrap creates a native tensor from row-major values laid out in the order of s.
func Wrap(values []float64, s shape.Shape, opts ...Option) (*Native, error) {
	b, dt, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	if s.IsNonUniform() || len(values) != s.Volume() {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "%d values for %s", len(values), s)
	}
	return newNative(b, b.FromFloat64s(values, s.Sizes(), dt), s), nil
}

// WrapComplex creates a complex native tensor from row-major values laid out in the order of s.
func WrapComplex(values []complex128, s shape.Shape, opts ...Option) (*Native, error) {
	b, dt, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	if s.IsNonUniform() || len(values) != s.Volume() {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "%d values for %s", len(values), s)
	}
	return newNative(b, b.FromComplex128s(values, s.Sizes(), backend.ComplexType(dt)), s), nil
}

// Const returns a scalar tensor.
func Const(value float64, opts ...Option) (*Native, error) {
	return Wrap([]float64{value}, shape.Empty, opts...)
}

// Vector returns a tensor with the given components along the "vector" channel dimension.
func Vector(values []float64, opts ...Option) (*Native, error) {
	return Wrap(values, shape.Make(shape.C(VectorDim, len(values))), opts...)
}

// Meshgrid returns the integer index grid of the spatial shape s, with components along
// "vector" in the order of s.
func Meshgrid(s shape.Shape, opts ...Option) (Tensor, error) {
	axes := make([][]float64, s.Rank())
	for i, size := range s.Sizes() {
		axes[i] = make([]float64, size)
		for j := range axes[i] {
			axes[i][j] = float64(j)
		}
	}
	opts = append([]Option{WithDType(backend.Int32)}, opts...)
	return grid(s, axes, opts)
}

// FFTFreq returns the sample frequencies of a discrete Fourier transform over the spatial
// shape s, in cycles per unit of sample spacing, with components along "vector".
func FFTFreq(s shape.Shape, opts ...Option) (Tensor, error) {
	axes := make([][]float64, s.Rank())
	for i, n := range s.Sizes() {
		axes[i] = make([]float64, n)
		for j := range axes[i] {
			k := j
			if j >= (n+1)/2 {
				k = j - n
			}
			axes[i][j] = float64(k) / float64(n)
		}
	}
	return grid(s, axes, opts)
}

func grid(s shape.Shape, axes [][]float64, opts []Option) (Tensor, error) {
	b, dt, err := resolve(opts)
	if err != nil {
		return nil, err
	}
	if s.Rank() == 0 {
		return nil, errors.Wrap(shape.ErrShapeMismatch, "grid requires at least one dimension")
	}
	components := make([]Tensor, len(axes))
	for i, x := range b.Meshgrid(axes...) {
		components[i] = newNative(b, b.Cast(x, dt), s)
	}
	return NewStack(components, VectorDim, shape.Channel)
}

// BatchStack stacks values along a new batch dimension.
func BatchStack(values []Tensor, name string) (Tensor, error) {
	return NewStack(values, name, shape.Batch)
}

// SpatialStack stacks values along a new spatial dimension.
func SpatialStack(values []Tensor, name string) (Tensor, error) {
	return NewStack(values, name, shape.Spatial)
}

// ChannelStack stacks values along a new channel dimension.
func ChannelStack(values []Tensor, name string) (Tensor, error) {
	return NewStack(values, name, shape.Channel)
}

// Linspace returns n evenly spaced values from start to stop along a spatial dimension.
func Linspace(start, stop float64, n int, name string, opts ...Option) (*Native, error) {
	values := make([]float64, n)
	for i := range values {
		if n == 1 {
			values[i] = start
			continue
		}
		values[i] = start + (stop-start)*float64(i)/float64(n-1)
	}
	return Wrap(values, shape.Make(shape.S(name, n)), opts...)
}

// Arange returns the integers [start, stop) along a spatial dimension.
func Arange(start, stop int, name string, opts ...Option) (*Native, error) {
	n := max(stop-start, 0)
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(start + i)
	}
	opts = append([]Option{WithDType(backend.Int32)}, opts...)
	return Wrap(values, shape.Make(shape.S(name, n)), opts...)
}
