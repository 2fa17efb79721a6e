// Package tensor implements tensors with named dimensions on top of pluggable numeric
// backends.
//
// A Tensor is one of three variants:
//   - *Native wraps a single backend buffer whose axes follow the Shape order.
//   - *Collapsed broadcasts an inner tensor over extra dimensions without copying.
//   - *Stack holds same-named children glued along a new dimension.
//
// Operations never mutate their operands. Each one resolves the operand shapes by name,
// picks a backend for the buffers involved and, when stacks with differing children take
// part, applies itself slice by slice through BroadcastOp.
package tensor

import (
	"fmt"
	"slices"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/pkg/errors"
)

// Tensor is the sealed interface implemented by *Native, *Collapsed and *Stack.
type Tensor interface {
	// Shape returns the named dimensions.
	Shape() shape.Shape
	// DType returns the element type.
	DType() backend.DataType
	// Native materializes the tensor as one buffer whose axes follow order. Names in order
	// that the tensor lacks become size-1 axes. Without order, the declared order is used.
	Native(order ...string) (backend.Native, error)
	// Unstack slices the tensor along name.
	Unstack(name string) ([]Tensor, error)

	String() string

	op1(f func(*Native) (*Native, error)) (Tensor, error)
	natives() []backend.Native
	rename(m map[string]string) (Tensor, error)
}

// Native is a tensor backed by a single backend buffer.
type Native struct {
	b      backend.Backend
	native backend.Native
	shape  shape.Shape
}

var (
	_ Tensor = (*Native)(nil)
	_ Tensor = (*Collapsed)(nil)
	_ Tensor = (*Stack)(nil)
)

// NewNative wraps a backend buffer. The buffer's static shape must match the sizes of s.
func NewNative(n backend.Native, s shape.Shape) (*Native, error) {
	b, err := backend.Choose(n)
	if err != nil {
		return nil, err
	}
	if s.IsNonUniform() {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "native tensor cannot have non-uniform shape %s", s)
	}
	if static := b.StaticShape(n); !slices.Equal(static, s.Sizes()) {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "buffer of shape %v does not match %s", static, s)
	}
	return newNative(b, n, s), nil
}

func newNative(b backend.Backend, n backend.Native, s shape.Shape) *Native {
	return &Native{b: b, native: n, shape: s}
}

// Shape returns the named dimensions.
func (t *Native) Shape() shape.Shape { return t.shape }

// DType returns the element type of the buffer.
func (t *Native) DType() backend.DataType { return t.native.DType() }

// Backend returns the backend owning the buffer.
func (t *Native) Backend() backend.Backend { return t.b }

// Buffer returns the underlying buffer in declared order.
func (t *Native) Buffer() backend.Native { return t.native }

// Native transposes and reshapes the buffer to order.
func (t *Native) Native(order ...string) (backend.Native, error) {
	if len(order) == 0 {
		return t.native, nil
	}
	if err := checkOrder(t.shape, order); err != nil {
		return nil, err
	}
	perm := make([]int, 0, t.shape.Rank())
	sizes := make([]int, len(order))
	for i, name := range order {
		j, err := t.shape.IndexOf(name)
		if err != nil {
			sizes[i] = 1
			continue
		}
		perm = append(perm, j)
		sizes[i] = t.shape.Sizes()[j]
	}
	x := t.b.Transpose(t.native, perm)
	if len(order) == t.shape.Rank() {
		return x, nil
	}
	return t.b.Reshape(x, sizes), nil
}

// Unstack slices the buffer along name.
func (t *Native) Unstack(name string) ([]Tensor, error) {
	axis, err := t.shape.IndexOf(name)
	if err != nil {
		return nil, err
	}
	rest := t.shape.Without(name)
	size := t.shape.Sizes()[axis]
	out := make([]Tensor, size)
	for i := range out {
		part := t.b.Slice(t.native, axis, i, i+1)
		out[i] = newNative(t.b, t.b.Reshape(part, rest.Sizes()), rest)
	}
	return out, nil
}

func (t *Native) String() string {
	return fmt.Sprintf("Native%s %s", t.shape, t.DType())
}

func (t *Native) op1(f func(*Native) (*Native, error)) (Tensor, error) {
	return f(t)
}

func (t *Native) natives() []backend.Native {
	return []backend.Native{t.native}
}

func (t *Native) rename(m map[string]string) (Tensor, error) {
	s, err := t.shape.Rename(m)
	if err != nil {
		return nil, err
	}
	return newNative(t.b, t.native, s), nil
}

// checkOrder verifies that order names every dimension of s exactly once.
func checkOrder(s shape.Shape, order []string) error {
	for i, name := range order {
		if slices.Index(order, name) != i {
			return errors.Wrapf(shape.ErrInvalidReorder, "order %v repeats %q", order, name)
		}
	}
	for _, name := range s.Names() {
		if !slices.Contains(order, name) {
			return errors.Wrapf(shape.ErrInvalidReorder, "order %v omits %q of %s", order, name, s)
		}
	}
	return nil
}

// BackendOf returns the backend able to handle every buffer of the given tensors.
func BackendOf(ts ...Tensor) (backend.Backend, error) { return backendFor(ts...) }

func backendFor(ts ...Tensor) (backend.Backend, error) {
	var natives []backend.Native
	for _, t := range ts {
		natives = append(natives, t.natives()...)
	}
	return backend.Choose(natives...)
}

// materialize returns t as a *Native in declared order.
func materialize(t Tensor) (*Native, error) {
	if n, ok := t.(*Native); ok {
		return n, nil
	}
	b, err := backendFor(t)
	if err != nil {
		return nil, err
	}
	n, err := t.Native(t.Shape().Names()...)
	if err != nil {
		return nil, err
	}
	return newNative(b, n, t.Shape()), nil
}

// reshaped wraps buffer x, reshaped to the sizes of s.
func reshaped(b backend.Backend, x backend.Native, s shape.Shape) *Native {
	return newNative(b, b.Reshape(x, s.Sizes()), s)
}

func sameDim(a, b shape.Dim) bool {
	return a.Name == b.Name && a.Size == b.Size && a.Kind == b.Kind && a.Along == b.Along && slices.Equal(a.Sizes, b.Sizes)
}
