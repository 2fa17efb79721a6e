// Package extrapolation provides the boundary policies used to pad tensors and to map
// out-of-range grid indices back onto a grid.
package extrapolation

import (
	"fmt"
	"maps"
	"slices"

	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/ajrox090/PhiFlow/internal/tensor"
	"github.com/pkg/errors"
)

// Extrapolation is the policy interface consumed by tensor.Pad and tensor.GridSample.
type Extrapolation = tensor.Extrapolation

var (
	_ Extrapolation = ConstantExtrapolation{}
	_ Extrapolation = boundary{}
	_ Extrapolation = periodic{}
	_ Extrapolation = symmetric{}
	_ Extrapolation = (*MixedExtrapolation)(nil)
)

// Standard policies.
var (
	// Zero pads with zeros.
	Zero = Constant(0)
	// One pads with ones.
	One = Constant(1)
	// Boundary repeats the outermost values.
	Boundary Extrapolation = boundary{}
	// Periodic wraps around to the opposite side.
	Periodic Extrapolation = periodic{}
	// Symmetric mirrors the grid at its faces, repeating the outermost values once.
	Symmetric Extrapolation = symmetric{}
)

// ConstantExtrapolation pads with a fixed value.
type ConstantExtrapolation struct {
	Value float64
}

// Constant returns a policy padding with value.
func Constant(value float64) ConstantExtrapolation {
	return ConstantExtrapolation{Value: value}
}

// Pad surrounds value with cells holding the constant.
func (c ConstantExtrapolation) Pad(value tensor.Tensor, widths tensor.Widths) (tensor.Tensor, error) {
	b, err := tensor.BackendOf(value)
	if err != nil {
		return nil, err
	}
	return padEach(value, widths, func(t tensor.Tensor, dim string, lo, hi int) ([]tensor.Tensor, error) {
		fill := func(n int) (tensor.Tensor, error) {
			s, err := t.Shape().WithSize(dim, n)
			if err != nil {
				return nil, err
			}
			return tensor.Full(s, c.Value, tensor.WithBackend(b), tensor.WithDType(t.DType()))
		}
		var parts []tensor.Tensor
		if lo > 0 {
			low, err := fill(lo)
			if err != nil {
				return nil, err
			}
			parts = append(parts, low)
		}
		parts = append(parts, t)
		if hi > 0 {
			high, err := fill(hi)
			if err != nil {
				return nil, err
			}
			parts = append(parts, high)
		}
		return parts, nil
	})
}

// TransformCoordinates clamps coords to the grid.
func (ConstantExtrapolation) TransformCoordinates(coords tensor.Tensor, grid shape.Shape) (tensor.Tensor, error) {
	return clamp(coords, grid)
}

// IsCopyPad is false: constant cells do not exist in the grid.
func (ConstantExtrapolation) IsCopyPad(string, bool) bool { return false }

func (c ConstantExtrapolation) String() string { return fmt.Sprintf("%g", c.Value) }

type boundary struct{}

func (boundary) Pad(value tensor.Tensor, widths tensor.Widths) (tensor.Tensor, error) {
	return padEach(value, widths, func(t tensor.Tensor, dim string, lo, hi int) ([]tensor.Tensor, error) {
		n, err := t.Shape().SizeOf(dim)
		if err != nil {
			return nil, err
		}
		first, err := tensor.Slice(t, dim, 0, 1)
		if err != nil {
			return nil, err
		}
		last, err := tensor.Slice(t, dim, n-1, n)
		if err != nil {
			return nil, err
		}
		parts := make([]tensor.Tensor, 0, lo+hi+1)
		for range lo {
			parts = append(parts, first)
		}
		parts = append(parts, t)
		for range hi {
			parts = append(parts, last)
		}
		return parts, nil
	})
}

func (boundary) TransformCoordinates(coords tensor.Tensor, grid shape.Shape) (tensor.Tensor, error) {
	return clamp(coords, grid)
}

func (boundary) IsCopyPad(string, bool) bool { return true }

func (boundary) String() string { return "boundary" }

type periodic struct{}

func (periodic) Pad(value tensor.Tensor, widths tensor.Widths) (tensor.Tensor, error) {
	return padEach(value, widths, func(t tensor.Tensor, dim string, lo, hi int) ([]tensor.Tensor, error) {
		n, err := t.Shape().SizeOf(dim)
		if err != nil {
			return nil, err
		}
		if lo > n || hi > n {
			return nil, errors.Wrapf(shape.ErrShapeMismatch, "periodic padding of %d/%d cells exceeds %q of size %d", lo, hi, dim, n)
		}
		var parts []tensor.Tensor
		if lo > 0 {
			low, err := tensor.Slice(t, dim, n-lo, n)
			if err != nil {
				return nil, err
			}
			parts = append(parts, low)
		}
		parts = append(parts, t)
		if hi > 0 {
			high, err := tensor.Slice(t, dim, 0, hi)
			if err != nil {
				return nil, err
			}
			parts = append(parts, high)
		}
		return parts, nil
	})
}

// TransformCoordinates wraps coords into [0, size).
func (periodic) TransformCoordinates(coords tensor.Tensor, grid shape.Shape) (tensor.Tensor, error) {
	sizes, err := gridVector(coords, grid, 0)
	if err != nil {
		return nil, err
	}
	return tensor.Mod(coords, sizes)
}

func (periodic) IsCopyPad(string, bool) bool { return true }

func (periodic) String() string { return "periodic" }

type symmetric struct{}

func (symmetric) Pad(value tensor.Tensor, widths tensor.Widths) (tensor.Tensor, error) {
	return padEach(value, widths, func(t tensor.Tensor, dim string, lo, hi int) ([]tensor.Tensor, error) {
		n, err := t.Shape().SizeOf(dim)
		if err != nil {
			return nil, err
		}
		if lo > n || hi > n {
			return nil, errors.Wrapf(shape.ErrShapeMismatch, "symmetric padding of %d/%d cells exceeds %q of size %d", lo, hi, dim, n)
		}
		var parts []tensor.Tensor
		if lo > 0 {
			low, err := tensor.Slice(t, dim, 0, lo)
			if err != nil {
				return nil, err
			}
			if low, err = tensor.Flip(low, dim); err != nil {
				return nil, err
			}
			parts = append(parts, low)
		}
		parts = append(parts, t)
		if hi > 0 {
			high, err := tensor.Slice(t, dim, n-hi, n)
			if err != nil {
				return nil, err
			}
			if high, err = tensor.Flip(high, dim); err != nil {
				return nil, err
			}
			parts = append(parts, high)
		}
		return parts, nil
	})
}

// TransformCoordinates reflects coords at the grid faces: with period 2n, index i maps to
// i mod 2n, or 2n-1-(i mod 2n) on the mirrored half.
func (symmetric) TransformCoordinates(coords tensor.Tensor, grid shape.Shape) (tensor.Tensor, error) {
	n, err := gridVector(coords, grid, 0)
	if err != nil {
		return nil, err
	}
	period, err := tensor.Add(n, n)
	if err != nil {
		return nil, err
	}
	m, err := tensor.Mod(coords, period)
	if err != nil {
		return nil, err
	}
	mirrored, err := gridVector(coords, grid, -1)
	if err != nil {
		return nil, err
	}
	// 2n-1-m
	if mirrored, err = tensor.Add(mirrored, n); err != nil {
		return nil, err
	}
	if mirrored, err = tensor.Sub(mirrored, m); err != nil {
		return nil, err
	}
	upper, err := tensor.GreaterEqual(m, n)
	if err != nil {
		return nil, err
	}
	return tensor.Where(upper, mirrored, m)
}

func (symmetric) IsCopyPad(string, bool) bool { return true }

func (symmetric) String() string { return "symmetric" }

// MixedExtrapolation applies a separate policy per dimension, optionally one per side.
// Sides takes precedence over Dims.
type MixedExtrapolation struct {
	Dims    map[string]Extrapolation
	Sides   map[string][2]Extrapolation
	Default Extrapolation
}

// Mixed returns a policy using dims[name] for the named dimensions and def for all others.
func Mixed(dims map[string]Extrapolation, def Extrapolation) *MixedExtrapolation {
	return &MixedExtrapolation{Dims: maps.Clone(dims), Default: def}
}

// MixedSides returns a policy using sides[name][0] below and sides[name][1] above the named
// dimensions, and def for all others.
func MixedSides(sides map[string][2]Extrapolation, def Extrapolation) *MixedExtrapolation {
	return &MixedExtrapolation{Sides: maps.Clone(sides), Default: def}
}

func (m *MixedExtrapolation) policy(dim string, upper bool) Extrapolation {
	if s, ok := m.Sides[dim]; ok {
		if upper {
			return s[1]
		}
		return s[0]
	}
	if e, ok := m.Dims[dim]; ok {
		return e
	}
	return m.Default
}

// Pad pads each side of each dimension with its own policy.
func (m *MixedExtrapolation) Pad(value tensor.Tensor, widths tensor.Widths) (tensor.Tensor, error) {
	var err error
	for _, dim := range slices.Sorted(maps.Keys(widths)) {
		w := widths[dim]
		lower, upper := m.policy(dim, false), m.policy(dim, true)
		if lower == upper {
			if value, err = lower.Pad(value, tensor.Widths{dim: w}); err != nil {
				return nil, err
			}
			continue
		}
		if value, err = padSides(value, dim, w, lower, upper); err != nil {
			return nil, err
		}
	}
	return value, nil
}

// padSides pads both sides of dim from the unpadded value, each with its own policy.
func padSides(value tensor.Tensor, dim string, w [2]int, lower, upper Extrapolation) (tensor.Tensor, error) {
	if w[0] < 0 || w[1] < 0 {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "negative pad width %v for %q", w, dim)
	}
	n, err := value.Shape().SizeOf(dim)
	if err != nil {
		return nil, err
	}
	pieces := []tensor.Tensor{value}
	if w[0] > 0 {
		lo, err := lower.Pad(value, tensor.Widths{dim: {w[0], 0}})
		if err != nil {
			return nil, err
		}
		if lo, err = tensor.Slice(lo, dim, 0, w[0]); err != nil {
			return nil, err
		}
		pieces = append([]tensor.Tensor{lo}, pieces...)
	}
	if w[1] > 0 {
		hi, err := upper.Pad(value, tensor.Widths{dim: {0, w[1]}})
		if err != nil {
			return nil, err
		}
		if hi, err = tensor.Slice(hi, dim, n, n+w[1]); err != nil {
			return nil, err
		}
		pieces = append(pieces, hi)
	}
	if len(pieces) == 1 {
		return value, nil
	}
	return tensor.Concat(pieces, dim)
}

// TransformCoordinates transforms each vector component with the policy of its dimension.
// Components below zero use the lower policy, all others the upper one.
func (m *MixedExtrapolation) TransformCoordinates(coords tensor.Tensor, grid shape.Shape) (tensor.Tensor, error) {
	names := grid.Names()
	original, err := coords.Unstack(tensor.VectorDim)
	if err != nil {
		return nil, err
	}
	components := make([]tensor.Tensor, len(names))
	for i, name := range names {
		lower, upper := m.policy(name, false), m.policy(name, true)
		hi, err := component(upper, coords, grid, i)
		if err != nil {
			return nil, err
		}
		if lower == upper {
			components[i] = hi
			continue
		}
		lo, err := component(lower, coords, grid, i)
		if err != nil {
			return nil, err
		}
		b, err := tensor.BackendOf(coords)
		if err != nil {
			return nil, err
		}
		zero, err := tensor.Const(0, tensor.WithBackend(b), tensor.WithDType(coords.DType()))
		if err != nil {
			return nil, err
		}
		below, err := tensor.Less(original[i], zero)
		if err != nil {
			return nil, err
		}
		if components[i], err = tensor.Where(below, lo, hi); err != nil {
			return nil, err
		}
	}
	return tensor.ChannelStack(components, tensor.VectorDim)
}

// component returns vector component i of coords transformed by e.
func component(e Extrapolation, coords tensor.Tensor, grid shape.Shape, i int) (tensor.Tensor, error) {
	t, err := e.TransformCoordinates(coords, grid)
	if err != nil {
		return nil, err
	}
	parts, err := t.Unstack(tensor.VectorDim)
	if err != nil {
		return nil, err
	}
	return parts[i], nil
}

// IsCopyPad asks the policy of the given side of dim.
func (m *MixedExtrapolation) IsCopyPad(dim string, upper bool) bool {
	return m.policy(dim, upper).IsCopyPad(dim, upper)
}

func (m *MixedExtrapolation) String() string {
	return fmt.Sprintf("mixed%v sides%v default %v", m.Dims, m.Sides, m.Default)
}

// padEach pads the dimensions of widths one after another, in name order. parts returns
// the pieces to concatenate along dim.
func padEach(value tensor.Tensor, widths tensor.Widths, parts func(t tensor.Tensor, dim string, lo, hi int) ([]tensor.Tensor, error)) (tensor.Tensor, error) {
	for _, dim := range slices.Sorted(maps.Keys(widths)) {
		w := widths[dim]
		if w[0] < 0 || w[1] < 0 {
			return nil, errors.Wrapf(shape.ErrShapeMismatch, "negative pad width %v for %q", w, dim)
		}
		if w[0] == 0 && w[1] == 0 {
			continue
		}
		pieces, err := parts(value, dim, w[0], w[1])
		if err != nil {
			return nil, err
		}
		if value, err = tensor.Concat(pieces, dim); err != nil {
			return nil, err
		}
	}
	return value, nil
}

// gridVector returns the grid sizes plus offset along "vector", in the dtype of coords.
func gridVector(coords tensor.Tensor, grid shape.Shape, offset int) (tensor.Tensor, error) {
	b, err := tensor.BackendOf(coords)
	if err != nil {
		return nil, err
	}
	values := make([]float64, grid.Rank())
	for i, n := range grid.Sizes() {
		values[i] = float64(n + offset)
	}
	return tensor.Vector(values, tensor.WithBackend(b), tensor.WithDType(coords.DType()))
}

// clamp limits coords to [0, size-1] per component.
func clamp(coords tensor.Tensor, grid shape.Shape) (tensor.Tensor, error) {
	b, err := tensor.BackendOf(coords)
	if err != nil {
		return nil, err
	}
	hi, err := gridVector(coords, grid, -1)
	if err != nil {
		return nil, err
	}
	lo, err := tensor.Const(0, tensor.WithBackend(b), tensor.WithDType(coords.DType()))
	if err != nil {
		return nil, err
	}
	return tensor.Clip(coords, lo, hi)
}
