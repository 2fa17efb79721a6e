package tensor

import (
	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/pkg/errors"
)

// NonzeroDim is the batch dimension listing the entries found by Nonzero.
const NonzeroDim = "nonzero"

// standardForm materializes t with its dimensions arranged group by group and flattens
// every group into a single axis. A group t lacks entirely becomes a size-1 axis; a group
// t only partly has is broadcast first.
func standardForm(t Tensor, groups ...shape.Shape) (backend.Backend, backend.Native, error) {
	var order []string
	sizes := make([]int, len(groups))
	for i, g := range groups {
		present := t.Shape().Only(g.Names()...)
		if present.Rank() > 0 && present.Rank() < g.Rank() {
			var err error
			if t, err = expandTo(t, g); err != nil {
				return nil, nil, err
			}
		}
		sizes[i] = 1
		if present.Rank() > 0 {
			sizes[i] = g.Volume()
		}
		order = append(order, g.Names()...)
	}
	b, err := backendFor(t)
	if err != nil {
		return nil, nil, err
	}
	x, err := t.Native(order...)
	if err != nil {
		return nil, nil, err
	}
	return b, b.Reshape(x, sizes), nil
}

// Gather looks up values at the integer cell indices held along the "vector" dimension of
// indices. The result has the batch dimensions of both operands, the remaining dimensions
// of indices and the channel dimensions of values.
func Gather(values, indices Tensor) (Tensor, error) {
	vs, is := values.Shape(), indices.Shape()
	spatial := vs.Spatial()
	if err := checkCoordinates(spatial, indices); err != nil {
		return nil, err
	}
	if extra := is.Channel().Without(VectorDim); extra.Rank() > 0 {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "indices have channel dimensions %s besides %q", extra, VectorDim)
	}
	batch, err := vs.Batch().Union(is.Batch())
	if err != nil {
		return nil, err
	}
	points := is.NonBatch().NonChannel()
	channel := vs.Channel()
	vector := is.Only(VectorDim)

	b, v, err := standardForm(values, batch, spatial, channel)
	if err != nil {
		return nil, err
	}
	v = b.Reshape(v, append(append([]int{b.StaticShape(v)[0]}, spatial.Sizes()...), channel.Volume()))
	_, idx, err := standardForm(indices, batch, points, vector)
	if err != nil {
		return nil, err
	}
	if err := checkIndexRange(b, idx, spatial); err != nil {
		return nil, err
	}
	out := b.GatherND(v, idx)

	s, err := batch.Union(points)
	if err != nil {
		return nil, err
	}
	if s, err = s.Union(channel); err != nil {
		return nil, err
	}
	return reshaped(b, out, s), nil
}

// checkIndexRange verifies that every index vector of idx, shaped (B, P, d), lies inside
// grid.
func checkIndexRange(b backend.Backend, idx backend.Native, grid shape.Shape) error {
	sizes := grid.Sizes()
	d := len(sizes)
	for i, c := range b.Float64s(idx) {
		if k := i % d; c < 0 || int(c) >= sizes[k] {
			return errors.Wrapf(shape.ErrShapeMismatch, "index %d out of range [0, %d) for %q", int(c), sizes[k], grid.Names()[k])
		}
	}
	return nil
}

// ScatterOptions configures Scatter.
type ScatterOptions struct {
	// Duplicates combines values written to the same cell. Defaults to add.
	Duplicates backend.Duplicates
	// Outside handles indices beyond the grid. Defaults to discard.
	Outside backend.Outside
	// Dims lists the dimensions of indices that enumerate points. They are removed from the
	// result. Defaults to the non-batch, non-channel dimensions of indices together with
	// NonzeroDim when present.
	Dims []string
}

func (o ScatterOptions) pointDims(indices shape.Shape) (shape.Shape, error) {
	if o.Dims == nil {
		points := indices.NonBatch().NonChannel()
		if indices.Contains(NonzeroDim) && !points.Contains(NonzeroDim) {
			return indices.Only(append(points.Names(), NonzeroDim)...), nil
		}
		return points, nil
	}
	for _, name := range o.Dims {
		if name == VectorDim {
			return shape.Empty, errors.Wrapf(shape.ErrShapeMismatch, "%q cannot be a point dimension", VectorDim)
		}
		if !indices.Contains(name) {
			return shape.Empty, errors.Wrapf(shape.ErrNameNotFound, "point dimension %q not in indices %s", name, indices)
		}
	}
	return indices.Only(o.Dims...), nil
}

// Scatter writes values at the integer cell indices held along the "vector" dimension of
// indices into a zero grid of spatial shape size. Cells nothing is written to stay zero.
// Batch dimensions of either operand that are not point dimensions are kept.
func Scatter(indices, values Tensor, size shape.Shape, opts ScatterOptions) (Tensor, error) {
	if opts.Duplicates == "" {
		opts.Duplicates = backend.DuplicatesAdd
	}
	if opts.Outside == "" {
		opts.Outside = backend.OutsideDiscard
	}
	is, vs := indices.Shape(), values.Shape()
	if err := checkCoordinates(size, indices); err != nil {
		return nil, err
	}
	points, err := opts.pointDims(is)
	if err != nil {
		return nil, err
	}
	batch, err := is.Batch().Without(points.Names()...).Union(vs.Batch().Without(points.Names()...))
	if err != nil {
		return nil, err
	}
	if extra := vs.NonBatch().NonChannel().Without(points.Names()...); extra.Rank() > 0 {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "values have dimensions %s not addressed by indices %s", extra, is)
	}
	channel := vs.Channel()

	b, idx, err := standardForm(indices, batch, points, is.Only(VectorDim))
	if err != nil {
		return nil, err
	}
	_, v, err := standardForm(values, batch, points, channel)
	if err != nil {
		return nil, err
	}
	mode := backend.ScatterMode{Duplicates: opts.Duplicates, Outside: opts.Outside}
	out := b.Scatter(idx, v, size.Sizes(), mode)

	s, err := batch.Union(size)
	if err != nil {
		return nil, err
	}
	if s, err = s.Union(channel); err != nil {
		return nil, err
	}
	return reshaped(b, out, s), nil
}

// Nonzero lists the positions where value is non-zero in any channel. The result has a
// batch dimension "nonzero" and the positions along "vector" in the order of the spatial
// dimensions. Batch dimensions of value are kept; their slices may hold different counts.
func Nonzero(value Tensor) (Tensor, error) {
	if channel := value.Shape().Channel(); channel.Rank() > 0 {
		abs, err := Abs(value)
		if err != nil {
			return nil, err
		}
		if value, err = Sum(abs, OnShape(channel)); err != nil {
			return nil, err
		}
	}
	s := value.Shape()
	if batch := s.Batch(); batch.Rank() > 0 {
		name := batch.Names()[0]
		parts, err := value.Unstack(name)
		if err != nil {
			return nil, err
		}
		for i, p := range parts {
			if parts[i], err = Nonzero(p); err != nil {
				return nil, err
			}
		}
		return BatchStack(parts, name)
	}
	n, err := materialize(value)
	if err != nil {
		return nil, err
	}
	out := n.b.Nonzero(n.native)
	count := n.b.StaticShape(out)[0]
	return newNative(n.b, out, shape.Make(shape.B(NonzeroDim, count), shape.C(VectorDim, s.Rank()))), nil
}
