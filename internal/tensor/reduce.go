package tensor

import (
	"slices"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/pkg/errors"
)

// seqDim is the synthetic dimension that sequences are stacked along before reduction.
const seqDim = "_reduce"

// Dims selects the dimensions a reduction acts on. The zero value selects nothing, which
// makes every reduction an identity.
type Dims struct {
	all   bool
	names []string
}

// AllDims selects every dimension.
func AllDims() Dims { return Dims{all: true} }

// On selects the named dimensions.
func On(names ...string) Dims { return Dims{names: slices.Clone(names)} }

// OnShape selects the dimensions of s.
func OnShape(s shape.Shape) Dims { return Dims{names: s.Names()} }

// SeqDim selects the dimension a sequence passed to ApplySeq is stacked along.
func SeqDim() Dims { return Dims{names: []string{seqDim}} }

// IsEmpty reports whether no dimension is selected.
func (d Dims) IsEmpty() bool { return !d.all && len(d.names) == 0 }

// resolve returns the selected names present in s, in the order of s.
func (d Dims) resolve(s shape.Shape) []string {
	if d.all {
		return s.Names()
	}
	var out []string
	for _, name := range s.Names() {
		if slices.Contains(d.names, name) {
			out = append(out, name)
		}
	}
	return out
}

// Reduction describes how a reduction treats each tensor variant.
type Reduction struct {
	Name string
	// native reduces a buffer over axis positions.
	native func(b backend.Backend, x backend.Native, axes []int) backend.Native
	// collapsed accounts for dims that only exist in a collapsed envelope.
	collapsed func(inner Tensor, dims shape.Shape) (Tensor, error)
	// unaffected is applied when none of the selected dims exist.
	unaffected func(t Tensor) (Tensor, error)
	// decomposable reductions may reduce stack children first and then across them.
	decomposable bool
}

func identity(t Tensor) (Tensor, error) { return t, nil }

func identityCollapsed(inner Tensor, _ shape.Shape) (Tensor, error) { return inner, nil }

// The standard reductions.
var (
	SumReduction = Reduction{
		Name:   "sum",
		native: backend.Backend.Sum,
		collapsed: func(inner Tensor, dims shape.Shape) (Tensor, error) {
			dt := inner.DType()
			if dt == backend.Bool {
				dt = backend.Int64
			}
			n, err := scalarLike(inner, float64(dims.Volume()), dt)
			if err != nil {
				return nil, err
			}
			return Mul(inner, n)
		},
		unaffected:   identity,
		decomposable: true,
	}
	ProdReduction = Reduction{
		Name:   "prod",
		native: backend.Backend.Prod,
		collapsed: func(inner Tensor, dims shape.Shape) (Tensor, error) {
			n, err := scalarLike(inner, float64(dims.Volume()), inner.DType())
			if err != nil {
				return nil, err
			}
			return Pow(inner, n)
		},
		unaffected:   identity,
		decomposable: true,
	}
	MeanReduction = Reduction{
		Name:         "mean",
		native:       backend.Backend.Mean,
		collapsed:    identityCollapsed,
		unaffected:   identity,
		decomposable: true,
	}
	StdReduction = Reduction{
		Name:      "std",
		native:    backend.Backend.Std,
		collapsed: identityCollapsed,
		unaffected: func(t Tensor) (Tensor, error) {
			zero, err := scalarLike(t, 0, t.DType())
			if err != nil {
				return nil, err
			}
			return Mul(t, zero)
		},
	}
	AnyReduction = Reduction{
		Name: "any", native: backend.Backend.Any, collapsed: identityCollapsed, unaffected: identity, decomposable: true,
	}
	AllReduction = Reduction{
		Name: "all", native: backend.Backend.All, collapsed: identityCollapsed, unaffected: identity, decomposable: true,
	}
	MinReduction = Reduction{
		Name: "min", native: backend.Backend.Min, collapsed: identityCollapsed, unaffected: identity, decomposable: true,
	}
	MaxReduction = Reduction{
		Name: "max", native: backend.Backend.Max, collapsed: identityCollapsed, unaffected: identity, decomposable: true,
	}
)

// Apply reduces value over the selected dimensions.
func (r Reduction) Apply(value Tensor, dims Dims) (Tensor, error) {
	if dims.IsEmpty() {
		return value, nil
	}
	names := dims.resolve(value.Shape())
	if len(names) == 0 {
		return r.unaffected(value)
	}
	return r.reduce(value, names)
}

// ApplySeq stacks values along a synthetic batch dimension and reduces the stack.
// Use SeqDim to reduce across the sequence only.
func (r Reduction) ApplySeq(values []Tensor, dims Dims) (Tensor, error) {
	if dims.IsEmpty() {
		return nil, errors.Wrap(shape.ErrShapeMismatch, "reducing a sequence requires a selection")
	}
	s, err := NewStack(values, seqDim, shape.Batch)
	if err != nil {
		return nil, err
	}
	return r.Apply(s, dims)
}

func (r Reduction) reduce(value Tensor, names []string) (Tensor, error) {
	switch t := value.(type) {
	case *Native:
		axes, err := t.shape.Index(names...)
		if err != nil {
			return nil, err
		}
		slices.Sort(axes)
		return newNative(t.b, r.native(t.b, t.native, axes), t.shape.Without(names...)), nil

	case *Collapsed:
		innerShape := t.inner.Shape()
		var innerNames []string
		for _, n := range names {
			if innerShape.Contains(n) {
				innerNames = append(innerNames, n)
			}
		}
		var inner Tensor
		var err error
		if len(innerNames) == 0 {
			inner, err = r.unaffected(t.inner)
		} else {
			inner, err = r.reduce(t.inner, innerNames)
		}
		if err != nil {
			return nil, err
		}
		if envelope := t.shape.Only(names...).Without(innerNames...); envelope.Rank() > 0 {
			if inner, err = r.collapsed(inner, envelope); err != nil {
				return nil, err
			}
		}
		return NewCollapsed(inner, t.shape.Without(names...))

	case *Stack:
		stackName := t.dim.Name
		acrossStack := slices.Contains(names, stackName)
		if acrossStack && t.varying && r.Name == MeanReduction.Name {
			return weightedMean(t, names)
		}
		if acrossStack && !r.decomposable {
			n, err := materialize(t)
			if err != nil {
				return nil, err
			}
			return r.reduce(n, names)
		}
		rest := slices.DeleteFunc(slices.Clone(names), func(n string) bool { return n == stackName })
		children := make([]Tensor, len(t.children))
		for i, c := range t.children {
			children[i] = c
			if len(rest) > 0 {
				var err error
				if children[i], err = r.reduce(c, rest); err != nil {
					return nil, err
				}
			}
		}
		reduced, err := NewStack(children, stackName, t.dim.Kind)
		if err != nil {
			return nil, err
		}
		if !acrossStack {
			return reduced, nil
		}
		n, err := materialize(reduced)
		if err != nil {
			return nil, err
		}
		return r.reduce(n, []string{stackName})

	default:
		return nil, errors.Wrapf(ErrUnsupportedVariant, "%s of %T", r.Name, value)
	}
}

// weightedMean averages a stack whose children differ in size, so that every element
// counts once regardless of the child it belongs to.
func weightedMean(t *Stack, names []string) (Tensor, error) {
	sum, err := SumReduction.reduce(t, names)
	if err != nil {
		return nil, err
	}
	ones, err := unary(t, func(b backend.Backend, x backend.Native) backend.Native {
		return b.Ones(x.Shape(), backend.Float64)
	})
	if err != nil {
		return nil, err
	}
	count, err := SumReduction.reduce(ones, names)
	if err != nil {
		return nil, err
	}
	return Div(sum, count)
}

// Sum adds the values over dims.
func Sum(value Tensor, dims Dims) (Tensor, error) { return SumReduction.Apply(value, dims) }

// Prod multiplies the values over dims.
func Prod(value Tensor, dims Dims) (Tensor, error) { return ProdReduction.Apply(value, dims) }

// Mean averages the values over dims.
func Mean(value Tensor, dims Dims) (Tensor, error) { return MeanReduction.Apply(value, dims) }

// Std computes the population standard deviation over dims.
func Std(value Tensor, dims Dims) (Tensor, error) { return StdReduction.Apply(value, dims) }

// Any reports whether any value over dims is non-zero.
func Any(value Tensor, dims Dims) (Tensor, error) { return AnyReduction.Apply(value, dims) }

// All reports whether all values over dims are non-zero.
func All(value Tensor, dims Dims) (Tensor, error) { return AllReduction.Apply(value, dims) }

// Min returns the minimum over dims.
func Min(value Tensor, dims Dims) (Tensor, error) { return MinReduction.Apply(value, dims) }

// Max returns the maximum over dims.
func Max(value Tensor, dims Dims) (Tensor, error) { return MaxReduction.Apply(value, dims) }
