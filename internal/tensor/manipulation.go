package tensor

import (
	"slices"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/pkg/errors"
)

// Concat joins values along the existing dimension dim. All other dimensions must agree.
func Concat(values []Tensor, dim string) (Tensor, error) {
	if len(values) == 0 {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "cannot concatenate zero tensors along %q", dim)
	}
	first := values[0].Shape()
	if !first.Contains(dim) {
		return nil, errors.Wrapf(shape.ErrNameNotFound, "%q not in %s", dim, first)
	}
	if len(values) == 1 {
		return values[0], nil
	}
	rest := first.Without(dim)
	order := first.Names()
	axis := slices.Index(order, dim)
	xs := make([]backend.Native, len(values))
	for i, v := range values {
		s := v.Shape()
		if !s.Contains(dim) || !s.Without(dim).SameDims(rest) {
			return nil, errors.Wrapf(shape.ErrShapeMismatch, "cannot concatenate %s and %s along %q", first, s, dim)
		}
		var err error
		if xs[i], err = v.Native(order...); err != nil {
			return nil, err
		}
	}
	b, err := backend.Choose(xs...)
	if err != nil {
		return nil, err
	}
	out := b.Concat(xs, axis)
	s, err := first.WithSize(dim, b.StaticShape(out)[axis])
	if err != nil {
		return nil, err
	}
	return newNative(b, out, s), nil
}

// Unstack slices value along dim.
func Unstack(value Tensor, dim string) ([]Tensor, error) {
	return value.Unstack(dim)
}

// Expand broadcasts value to the union of its shape and dims, without copying.
func Expand(value Tensor, dims shape.Shape) (Tensor, error) {
	s, err := value.Shape().Union(dims)
	if err != nil {
		return nil, err
	}
	return NewCollapsed(value, s)
}

// ExpandChannel adds a channel dimension of the given size.
func ExpandChannel(value Tensor, name string, size int) (Tensor, error) {
	return Expand(value, shape.Make(shape.C(name, size)))
}

// expandTo broadcasts value over the dimensions of s it lacks.
func expandTo(value Tensor, s shape.Shape) (Tensor, error) {
	missing := s.Without(value.Shape().Names()...)
	if missing.Rank() == 0 {
		return value, nil
	}
	return Expand(value, missing)
}

// JoinDimensions merges dims into a single dimension called joined. The merged dimensions
// are laid out contiguously in the order given; the new dimension takes their common kind,
// or batch if they differ.
func JoinDimensions(value Tensor, dims []string, joined string) (Tensor, error) {
	s := value.Shape()
	if len(dims) == 0 {
		return Expand(value, shape.Make(shape.B(joined, 1)))
	}
	if len(dims) == 1 {
		return RenameDims(value, map[string]string{dims[0]: joined})
	}
	order, err := s.OrderGroup(dims)
	if err != nil {
		return nil, err
	}
	kinds, err := s.KindsOf(dims...)
	if err != nil {
		return nil, err
	}
	kind := kinds[0]
	for _, k := range kinds[1:] {
		if k != kind {
			kind = shape.Batch
		}
	}
	n, err := materialize(value)
	if err != nil {
		return nil, err
	}
	x, err := n.Native(order...)
	if err != nil {
		return nil, err
	}
	var out []shape.Dim
	for _, name := range order {
		switch {
		case name == dims[0]:
			out = append(out, shape.Dim{Name: joined, Size: s.Only(dims...).Volume(), Kind: kind})
		case slices.Contains(dims, name):
		default:
			d, _ := s.Dim(name)
			out = append(out, d)
		}
	}
	js, err := shape.New(out...)
	if err != nil {
		return nil, err
	}
	return reshaped(n.b, x, js), nil
}

// Transpose reorders the physical layout of value. The logical shape is unchanged.
func Transpose(value Tensor, order ...string) (Tensor, error) {
	s, err := value.Shape().Reorder(order)
	if err != nil {
		return nil, err
	}
	b, err := backendFor(value)
	if err != nil {
		return nil, err
	}
	x, err := value.Native(order...)
	if err != nil {
		return nil, err
	}
	return newNative(b, x, s), nil
}

// RenameDims renames dimensions according to m.
func RenameDims(value Tensor, m map[string]string) (Tensor, error) {
	for old := range m {
		if !value.Shape().Contains(old) {
			return nil, errors.Wrapf(shape.ErrNameNotFound, "%q not in %s", old, value.Shape())
		}
	}
	return value.rename(m)
}

// Slice keeps the indices [start, stop) of dim.
func Slice(value Tensor, dim string, start, stop int) (Tensor, error) {
	size, err := value.Shape().SizeOf(dim)
	if err != nil {
		return nil, err
	}
	if start < 0 || stop > size || start > stop {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "slice [%d, %d) out of range for %q of size %d", start, stop, dim, size)
	}
	if start == 0 && stop == size {
		return value, nil
	}
	return slice(value, dim, start, stop)
}

func slice(value Tensor, dim string, start, stop int) (Tensor, error) {
	switch t := value.(type) {
	case *Native:
		axis, _ := t.shape.IndexOf(dim)
		s, err := t.shape.WithSize(dim, stop-start)
		if err != nil {
			return nil, err
		}
		return newNative(t.b, t.b.Slice(t.native, axis, start, stop), s), nil
	case *Collapsed:
		s, err := t.shape.WithSize(dim, stop-start)
		if err != nil {
			return nil, err
		}
		inner := t.inner
		if inner.Shape().Contains(dim) {
			if inner, err = slice(inner, dim, start, stop); err != nil {
				return nil, err
			}
		}
		return NewCollapsed(inner, s)
	case *Stack:
		if dim == t.dim.Name {
			return NewStack(t.children[start:stop], t.dim.Name, t.dim.Kind)
		}
		return t.mapChildren(func(_ int, c Tensor) (Tensor, error) {
			return slice(c, dim, start, stop)
		})
	default:
		return nil, errors.Wrapf(ErrUnsupportedVariant, "slice of %T", value)
	}
}

// Flip reverses value along each of dims.
func Flip(value Tensor, dims ...string) (Tensor, error) {
	for _, d := range dims {
		if !value.Shape().Contains(d) {
			return nil, errors.Wrapf(shape.ErrNameNotFound, "%q not in %s", d, value.Shape())
		}
	}
	return flip(value, dims)
}

func flip(value Tensor, dims []string) (Tensor, error) {
	switch t := value.(type) {
	case *Native:
		x := t.native
		for _, d := range dims {
			axis, _ := t.shape.IndexOf(d)
			x = t.b.Flip(x, axis)
		}
		return newNative(t.b, x, t.shape), nil
	case *Collapsed:
		var own []string
		for _, d := range dims {
			if t.inner.Shape().Contains(d) {
				own = append(own, d)
			}
		}
		inner, err := flip(t.inner, own)
		if err != nil {
			return nil, err
		}
		return NewCollapsed(inner, t.shape)
	case *Stack:
		children := t.Children()
		if slices.Contains(dims, t.dim.Name) {
			slices.Reverse(children)
		}
		rest := slices.DeleteFunc(slices.Clone(dims), func(d string) bool { return d == t.dim.Name })
		for i, c := range children {
			var err error
			if children[i], err = flip(c, rest); err != nil {
				return nil, err
			}
		}
		return NewStack(children, t.dim.Name, t.dim.Kind)
	default:
		return nil, errors.Wrapf(ErrUnsupportedVariant, "flip of %T", value)
	}
}

// Widths holds the number of cells to add below and above, per dimension name.
type Widths map[string][2]int

// Pad extends value at its boundaries according to mode.
func Pad(value Tensor, widths Widths, mode Extrapolation) (Tensor, error) {
	for name := range widths {
		if !value.Shape().Contains(name) {
			return nil, errors.Wrapf(shape.ErrNameNotFound, "cannot pad %q of %s", name, value.Shape())
		}
	}
	return mode.Pad(value, widths)
}

// SpatialPad pads every spatial dimension of value by lower and upper cells.
func SpatialPad(value Tensor, lower, upper int, mode Extrapolation) (Tensor, error) {
	widths := Widths{}
	for _, name := range value.Shape().Spatial().Names() {
		widths[name] = [2]int{lower, upper}
	}
	return Pad(value, widths, mode)
}
