package tensor

import (
	"fmt"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/pkg/errors"
)

// Collapsed is an inner tensor logically repeated over the dimensions of shape it lacks.
// Values are only replicated when a buffer is requested.
type Collapsed struct {
	inner Tensor
	shape shape.Shape
}

// NewCollapsed broadcasts inner to s. Every dimension of inner must appear in s unchanged.
// If s adds no dimension, inner is returned as is.
func NewCollapsed(inner Tensor, s shape.Shape) (Tensor, error) {
	if c, ok := inner.(*Collapsed); ok {
		inner = c.inner
	}
	for _, d := range inner.Shape().Dims() {
		o, err := s.Dim(d.Name)
		if err != nil {
			return nil, errors.Wrapf(shape.ErrShapeMismatch, "cannot collapse %s to %s: missing %q", inner.Shape(), s, d.Name)
		}
		if !sameDim(d, o) {
			return nil, errors.Wrapf(shape.ErrShapeMismatch, "cannot collapse %s to %s: %q differs", inner.Shape(), s, d.Name)
		}
	}
	if s.Rank() == inner.Shape().Rank() {
		return inner, nil
	}
	return &Collapsed{inner: inner, shape: s}, nil
}

// Shape returns the broadcast shape.
func (c *Collapsed) Shape() shape.Shape { return c.shape }

// DType returns the element type of the inner tensor.
func (c *Collapsed) DType() backend.DataType { return c.inner.DType() }

// Inner returns the wrapped tensor.
func (c *Collapsed) Inner() Tensor { return c.inner }

// Native tiles the inner buffer along the collapsed dimensions.
func (c *Collapsed) Native(order ...string) (backend.Native, error) {
	if len(order) == 0 {
		order = c.shape.Names()
	}
	if err := checkOrder(c.shape, order); err != nil {
		return nil, err
	}
	if c.shape.IsNonUniform() {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "cannot materialize non-uniform shape %s", c.shape)
	}
	x, err := c.inner.Native(order...)
	if err != nil {
		return nil, err
	}
	inner := c.inner.Shape()
	multiples := make([]int, len(order))
	tile := false
	for i, name := range order {
		multiples[i] = 1
		if !inner.Contains(name) && c.shape.Contains(name) {
			multiples[i], _ = c.shape.SizeOf(name)
			tile = true
		}
	}
	if !tile {
		return x, nil
	}
	b, err := backendFor(c)
	if err != nil {
		return nil, err
	}
	return b.Tile(x, multiples), nil
}

// Unstack slices along name. Slicing a collapsed dimension repeats the inner tensor.
func (c *Collapsed) Unstack(name string) ([]Tensor, error) {
	shapes, err := c.shape.Unstack(name)
	if err != nil {
		return nil, err
	}
	parts := make([]Tensor, len(shapes))
	if c.inner.Shape().Contains(name) {
		inner, err := c.inner.Unstack(name)
		if err != nil {
			return nil, err
		}
		copy(parts, inner)
	} else {
		for i := range parts {
			parts[i] = c.inner
		}
	}
	out := make([]Tensor, len(shapes))
	for i, s := range shapes {
		if out[i], err = NewCollapsed(parts[i], s); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (c *Collapsed) String() string {
	return fmt.Sprintf("Collapsed%s of %s", c.shape, c.inner)
}

func (c *Collapsed) op1(f func(*Native) (*Native, error)) (Tensor, error) {
	inner, err := c.inner.op1(f)
	if err != nil {
		return nil, err
	}
	return &Collapsed{inner: inner, shape: c.shape}, nil
}

func (c *Collapsed) natives() []backend.Native {
	return c.inner.natives()
}

func (c *Collapsed) rename(m map[string]string) (Tensor, error) {
	inner, err := c.inner.rename(m)
	if err != nil {
		return nil, err
	}
	s, err := c.shape.Rename(m)
	if err != nil {
		return nil, err
	}
	return &Collapsed{inner: inner, shape: s}, nil
}
