package tensor

import (
	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/pkg/errors"
)

// Extrapolation fills values beyond the boundaries of a grid.
type Extrapolation interface {
	// Pad extends value by the given number of cells per dimension.
	Pad(value Tensor, widths Widths) (Tensor, error)
	// TransformCoordinates maps integer cell indices, some of which may lie outside grid,
	// to indices inside grid. Components run along "vector" in the order of grid's spatial
	// dimensions.
	TransformCoordinates(coords Tensor, grid shape.Shape) (Tensor, error)
	// IsCopyPad reports whether padding the lower or upper side of dim only repeats values
	// that already exist in the grid.
	IsCopyPad(dim string, upper bool) bool
}

const closestPrefix = "_closest_"

// ClosestGridValues returns the 2^d grid values surrounding each coordinate, stacked along
// one spatial dimension "<prefix><name>" of size 2 per spatial dimension of grid.
//
// coords holds cell indices along "vector", ordered like the spatial dimensions of grid.
func ClosestGridValues(grid, coords Tensor, extrap Extrapolation, prefix string) (Tensor, error) {
	return BroadcastOp(func(ts ...Tensor) (Tensor, error) {
		return closestGridValues(ts[0], ts[1], extrap, prefix)
	}, []Tensor{grid, coords}, nil)
}

func closestGridValues(grid, coords Tensor, extrap Extrapolation, prefix string) (Tensor, error) {
	spatial := grid.Shape().Spatial()
	if err := checkCoordinates(spatial, coords); err != nil {
		return nil, err
	}
	b, err := backendFor(grid)
	if err != nil {
		return nil, err
	}

	widths := Widths{}
	shift := make([]float64, spatial.Rank())
	for i, name := range spatial.Names() {
		lo, hi := 0, 0
		if !extrap.IsCopyPad(name, false) {
			lo, shift[i] = 1, 1
		}
		if !extrap.IsCopyPad(name, true) {
			hi = 1
		}
		if lo+hi > 0 {
			widths[name] = [2]int{lo, hi}
		}
	}
	if len(widths) > 0 {
		if grid, err = extrap.Pad(grid, widths); err != nil {
			return nil, err
		}
		offset, err := Vector(shift, WithBackend(b), WithDType(coords.DType()))
		if err != nil {
			return nil, err
		}
		if coords, err = Add(coords, offset); err != nil {
			return nil, err
		}
	}

	floor, err := Floor(coords)
	if err != nil {
		return nil, err
	}
	lower, err := ToInt(floor, false)
	if err != nil {
		return nil, err
	}
	one, err := scalarLike(lower, 1, backend.Int32)
	if err != nil {
		return nil, err
	}
	upper, err := Add(lower, one)
	if err != nil {
		return nil, err
	}
	padded := grid.Shape().Spatial()
	if upper, err = extrap.TransformCoordinates(upper, padded); err != nil {
		return nil, err
	}
	if lower, err = extrap.TransformCoordinates(lower, padded); err != nil {
		return nil, err
	}

	names := padded.Names()
	var corner func(high []bool, axis int) (Tensor, error)
	corner = func(high []bool, axis int) (Tensor, error) {
		sides := make([]Tensor, 2)
		for side := range sides {
			h := append([]bool(nil), high...)
			h[axis] = side == 1
			if axis < len(names)-1 {
				if sides[side], err = corner(h, axis+1); err != nil {
					return nil, err
				}
				continue
			}
			mask := make([]float64, len(h))
			for i, v := range h {
				if v {
					mask[i] = 1
				}
			}
			m, err := Vector(mask, WithBackend(b), WithDType(backend.Bool))
			if err != nil {
				return nil, err
			}
			idx, err := Where(m, upper, lower)
			if err != nil {
				return nil, err
			}
			if sides[side], err = Gather(grid, idx); err != nil {
				return nil, err
			}
		}
		return SpatialStack(sides, prefix+names[axis])
	}
	return corner(make([]bool, len(names)), 0)
}

// GridSample linearly interpolates grid at coords, given in cell indices along "vector".
// Values outside the grid are obtained from extrap.
func GridSample(grid, coords Tensor, extrap Extrapolation) (Tensor, error) {
	return BroadcastOp(func(ts ...Tensor) (Tensor, error) {
		return gridSample(ts[0], ts[1], extrap)
	}, []Tensor{grid, coords}, nil)
}

func gridSample(grid, coords Tensor, extrap Extrapolation) (Tensor, error) {
	neighbors, err := closestGridValues(grid, coords, extrap, closestPrefix)
	if err != nil {
		return nil, err
	}
	floor, err := Floor(coords)
	if err != nil {
		return nil, err
	}
	frac, err := Sub(coords, floor)
	if err != nil {
		return nil, err
	}
	components, err := frac.Unstack(VectorDim)
	if err != nil {
		return nil, err
	}
	one, err := scalarLike(frac, 1, frac.DType())
	if err != nil {
		return nil, err
	}
	names := grid.Shape().Spatial().Names()
	stacked := make([]string, len(names))
	var weights Tensor = one
	for i, name := range names {
		low, err := Sub(one, components[i])
		if err != nil {
			return nil, err
		}
		stacked[i] = closestPrefix + name
		w, err := SpatialStack([]Tensor{low, components[i]}, stacked[i])
		if err != nil {
			return nil, err
		}
		if weights, err = Mul(weights, w); err != nil {
			return nil, err
		}
	}
	weighted, err := Mul(neighbors, weights)
	if err != nil {
		return nil, err
	}
	return Sum(weighted, On(stacked...))
}

// checkCoordinates verifies that coords address every spatial dimension of grid.
func checkCoordinates(spatial shape.Shape, coords Tensor) error {
	if spatial.Rank() == 0 {
		return errors.Wrapf(shape.ErrShapeMismatch, "cannot sample a grid without spatial dimensions")
	}
	n, err := coords.Shape().SizeOf(VectorDim)
	if err != nil {
		return errors.Wrapf(shape.ErrNameNotFound, "coordinates %s lack a %q dimension", coords.Shape(), VectorDim)
	}
	if n != spatial.Rank() {
		return errors.Wrapf(shape.ErrShapeMismatch, "coordinates with %d components for grid %s", n, spatial)
	}
	return nil
}
