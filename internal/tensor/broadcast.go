package tensor

import (
	"slices"

	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/pkg/errors"
)

// BroadcastOp applies op to tensors, iterating over the dimensions in iterDims.
//
// With iterDims == nil the iteration dimensions are inferred: every dimension along which
// some operand is a Stack that RequiresBroadcast. When there is nothing to iterate, op is
// called once with the tensors as given. Otherwise the lexicographically first name is
// unstacked on every operand declaring it, op is applied per slice and the results are
// restacked along that name.
func BroadcastOp(op func(ts ...Tensor) (Tensor, error), tensors []Tensor, iterDims []string) (Tensor, error) {
	infer := iterDims == nil
	if infer {
		iterDims = broadcastDims(tensors)
	}
	if len(iterDims) == 0 {
		return op(tensors...)
	}
	name := slices.Min(iterDims)
	var rest []string
	if !infer {
		rest = make([]string, 0, len(iterDims)-1)
		for _, n := range iterDims {
			if n != name {
				rest = append(rest, n)
			}
		}
	}

	size := -1
	var kind shape.Kind
	parts := make([][]Tensor, len(tensors))
	for i, t := range tensors {
		d, err := t.Shape().Dim(name)
		if err != nil {
			continue
		}
		switch {
		case size < 0:
			size, kind = d.Size, d.Kind
		case d.Size != size || d.Kind != kind:
			return nil, errors.Wrapf(shape.ErrShapeMismatch, "cannot broadcast %q: size %d (%s) vs %d (%s)", name, d.Size, d.Kind, size, kind)
		}
		if parts[i], err = t.Unstack(name); err != nil {
			return nil, err
		}
	}
	if size < 0 {
		return BroadcastOp(op, tensors, rest)
	}

	results := make([]Tensor, size)
	for j := range results {
		args := make([]Tensor, len(tensors))
		for i, t := range tensors {
			if parts[i] != nil {
				args[i] = parts[i][j]
			} else {
				args[i] = t
			}
		}
		var err error
		if results[j], err = BroadcastOp(op, args, rest); err != nil {
			return nil, err
		}
	}
	return NewStack(results, name, kind)
}

// BroadcastDo is BroadcastOp for operations without a result.
func BroadcastDo(op func(ts ...Tensor) error, tensors []Tensor) error {
	_, err := BroadcastOp(func(ts ...Tensor) (Tensor, error) {
		if err := op(ts...); err != nil {
			return nil, err
		}
		return ts[0], nil
	}, tensors, nil)
	return err
}

// broadcastDims returns the sorted names along which some tensor is a stack that needs
// per-slice application.
func broadcastDims(tensors []Tensor) []string {
	var names []string
	var visit func(t Tensor)
	visit = func(t Tensor) {
		switch t := t.(type) {
		case *Stack:
			if t.RequiresBroadcast() && !slices.Contains(names, t.dim.Name) {
				names = append(names, t.dim.Name)
			}
		case *Collapsed:
			visit(t.inner)
		}
	}
	for _, t := range tensors {
		visit(t)
	}
	slices.Sort(names)
	return names
}
