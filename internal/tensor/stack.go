package tensor

import (
	"fmt"
	"slices"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/pkg/errors"
)

// Stack is an ordered sequence of tensors glued along a new dimension.
//
// Children share names and kinds. Their sizes may differ, in which case the stack has a
// non-uniform shape and cannot be materialized as a single buffer.
type Stack struct {
	children []Tensor
	dim      shape.Dim
	shape    shape.Shape
	varying  bool
}

// NewStack stacks children along a new dimension called name.
func NewStack(children []Tensor, name string, kind shape.Kind) (*Stack, error) {
	if len(children) == 0 {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "cannot stack zero tensors along %q", name)
	}
	first := children[0].Shape()
	if first.Contains(name) {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "cannot stack %s along existing dimension %q", first, name)
	}
	varying := false
	sizes := make(map[string][]int, first.Rank())
	for _, d := range first.Dims() {
		sizes[d.Name] = []int{d.Size}
	}
	for _, c := range children[1:] {
		cs := c.Shape()
		if cs.Rank() != first.Rank() {
			return nil, errors.Wrapf(shape.ErrShapeMismatch, "cannot stack %s with %s", first, cs)
		}
		for _, d := range first.Dims() {
			o, err := cs.Dim(d.Name)
			if err != nil || o.Kind != d.Kind {
				return nil, errors.Wrapf(shape.ErrShapeMismatch, "cannot stack %s with %s", first, cs)
			}
			if !sameDim(d, o) {
				if first.IsNonUniform() || cs.IsNonUniform() {
					return nil, errors.Wrapf(shape.ErrShapeMismatch, "cannot stack non-uniform shapes %s and %s", first, cs)
				}
				varying = true
			}
			sizes[d.Name] = append(sizes[d.Name], o.Size)
		}
	}

	s, err := first.Expand(len(children), name, kind, -1)
	if err != nil {
		return nil, err
	}
	if varying {
		for _, d := range first.Dims() {
			if !allEqual(sizes[d.Name]) {
				if s, err = s.WithNonUniform(d.Name, name, sizes[d.Name]); err != nil {
					return nil, err
				}
			}
		}
	}
	dim, _ := s.Dim(name)
	return &Stack{children: slices.Clone(children), dim: dim, shape: s, varying: varying}, nil
}

func allEqual(values []int) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// Shape returns the stack shape, including the stack dimension.
func (s *Stack) Shape() shape.Shape { return s.shape }

// DType returns the promoted type of all children.
func (s *Stack) DType() backend.DataType {
	dt := s.children[0].DType()
	for _, c := range s.children[1:] {
		dt = backend.Promote(dt, c.DType())
	}
	return dt
}

// Dim returns the stack dimension.
func (s *Stack) Dim() shape.Dim { return s.dim }

// Children returns the stacked tensors.
func (s *Stack) Children() []Tensor { return slices.Clone(s.children) }

// RequiresBroadcast reports whether operations must be applied child by child: the
// children differ in size, or at least one is not a plain native tensor.
func (s *Stack) RequiresBroadcast() bool {
	if s.varying {
		return true
	}
	for _, c := range s.children {
		if _, ok := c.(*Native); !ok {
			return true
		}
	}
	return false
}

// Native concatenates the children along the stack axis.
func (s *Stack) Native(order ...string) (backend.Native, error) {
	if len(order) == 0 {
		order = s.shape.Names()
	}
	if err := checkOrder(s.shape, order); err != nil {
		return nil, err
	}
	if s.shape.IsNonUniform() {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "cannot materialize non-uniform shape %s", s.shape)
	}
	axis := slices.Index(order, s.dim.Name)
	parts := make([]backend.Native, len(s.children))
	for i, c := range s.children {
		var err error
		if parts[i], err = c.Native(order...); err != nil {
			return nil, err
		}
	}
	b, err := backend.Choose(parts...)
	if err != nil {
		return nil, err
	}
	return b.Concat(parts, axis), nil
}

// Unstack returns the children when name is the stack dimension, otherwise it unstacks
// every child and restacks the slices.
func (s *Stack) Unstack(name string) ([]Tensor, error) {
	if name == s.dim.Name {
		return s.Children(), nil
	}
	if !s.shape.Contains(name) {
		return nil, errors.Wrapf(shape.ErrNameNotFound, "%q not in %s", name, s.shape)
	}
	var parts [][]Tensor
	for _, c := range s.children {
		p, err := c.Unstack(name)
		if err != nil {
			return nil, err
		}
		if parts != nil && len(p) != len(parts[0]) {
			return nil, errors.Wrapf(shape.ErrShapeMismatch, "cannot unstack non-uniform %q of %s", name, s.shape)
		}
		parts = append(parts, p)
	}
	out := make([]Tensor, len(parts[0]))
	for i := range out {
		slice := make([]Tensor, len(parts))
		for j := range parts {
			slice[j] = parts[j][i]
		}
		st, err := NewStack(slice, s.dim.Name, s.dim.Kind)
		if err != nil {
			return nil, err
		}
		out[i] = st
	}
	return out, nil
}

func (s *Stack) String() string {
	return fmt.Sprintf("Stack%s along %q", s.shape, s.dim.Name)
}

// mapChildren applies f to every child and restacks the results.
func (s *Stack) mapChildren(f func(i int, c Tensor) (Tensor, error)) (Tensor, error) {
	out := make([]Tensor, len(s.children))
	for i, c := range s.children {
		var err error
		if out[i], err = f(i, c); err != nil {
			return nil, err
		}
	}
	return NewStack(out, s.dim.Name, s.dim.Kind)
}

func (s *Stack) op1(f func(*Native) (*Native, error)) (Tensor, error) {
	return s.mapChildren(func(_ int, c Tensor) (Tensor, error) { return c.op1(f) })
}

func (s *Stack) natives() []backend.Native {
	var out []backend.Native
	for _, c := range s.children {
		out = append(out, c.natives()...)
	}
	return out
}

func (s *Stack) rename(m map[string]string) (Tensor, error) {
	children := make([]Tensor, len(s.children))
	for i, c := range s.children {
		var err error
		if children[i], err = c.rename(m); err != nil {
			return nil, err
		}
	}
	name := s.dim.Name
	if n, ok := m[name]; ok {
		name = n
	}
	return NewStack(children, name, s.dim.Kind)
}
