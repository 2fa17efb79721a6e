package tensor

import (
	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/pkg/errors"
)

type kernel1 func(b backend.Backend, x backend.Native) backend.Native

type kernel2 func(b backend.Backend, x, y backend.Native) backend.Native

// unary applies f to every buffer of t, keeping the variant structure.
func unary(t Tensor, f kernel1) (Tensor, error) {
	return t.op1(func(n *Native) (*Native, error) {
		return newNative(n.b, f(n.b, n.native), n.shape), nil
	})
}

// Abs returns |x|; complex values yield their magnitude.
func Abs(x Tensor) (Tensor, error) { return unary(x, backend.Backend.Abs) }

// Sign returns -1, 0 or 1.
func Sign(x Tensor) (Tensor, error) { return unary(x, backend.Backend.Sign) }

// Round rounds to the nearest integer, half to even.
func Round(x Tensor) (Tensor, error) { return unary(x, backend.Backend.Round) }

// Ceil rounds up.
func Ceil(x Tensor) (Tensor, error) { return unary(x, backend.Backend.Ceil) }

// Floor rounds down.
func Floor(x Tensor) (Tensor, error) { return unary(x, backend.Backend.Floor) }

// Sqrt returns the square root.
func Sqrt(x Tensor) (Tensor, error) { return unary(x, backend.Backend.Sqrt) }

// Exp returns e**x.
func Exp(x Tensor) (Tensor, error) { return unary(x, backend.Backend.Exp) }

// Log returns the natural logarithm.
func Log(x Tensor) (Tensor, error) { return unary(x, backend.Backend.Log) }

// Sin returns the sine.
func Sin(x Tensor) (Tensor, error) { return unary(x, backend.Backend.Sin) }

// Cos returns the cosine.
func Cos(x Tensor) (Tensor, error) { return unary(x, backend.Backend.Cos) }

// Neg returns -x.
func Neg(x Tensor) (Tensor, error) { return unary(x, backend.Backend.Neg) }

// Not returns the logical negation.
func Not(x Tensor) (Tensor, error) { return unary(x, backend.Backend.Not) }

// IsFinite reports which values are neither infinite nor NaN.
func IsFinite(x Tensor) (Tensor, error) { return unary(x, backend.Backend.IsFinite) }

// Real returns the real part.
func Real(x Tensor) (Tensor, error) { return unary(x, backend.Backend.Real) }

// Imag returns the imaginary part.
func Imag(x Tensor) (Tensor, error) { return unary(x, backend.Backend.Imag) }

// ToFloat converts x to floats of the configured precision.
func ToFloat(x Tensor) (Tensor, error) {
	bits := backend.CurrentConfig().Precision
	return unary(x, func(b backend.Backend, n backend.Native) backend.Native { return b.ToFloat(n, bits) })
}

// ToInt truncates x to Int32, or Int64 if int64 is set.
func ToInt(x Tensor, int64 bool) (Tensor, error) {
	return unary(x, func(b backend.Backend, n backend.Native) backend.Native { return b.ToInt(n, int64) })
}

// ToComplex converts x to complex values.
func ToComplex(x Tensor) (Tensor, error) { return unary(x, backend.Backend.ToComplex) }

// Cast converts x to dtype.
func Cast(x Tensor, dtype backend.DataType) (Tensor, error) {
	return unary(x, func(b backend.Backend, n backend.Native) backend.Native { return b.Cast(n, dtype) })
}

// binary broadcasts a and b against each other and applies f.
func binary(a, b Tensor, f kernel2) (Tensor, error) {
	return BroadcastOp(func(ts ...Tensor) (Tensor, error) {
		return binaryDirect(ts[0], ts[1], f)
	}, []Tensor{a, b}, nil)
}

// binaryDirect applies f to two operands without per-slice iteration. Stacks are mapped
// over when the other operand allows it, collapsed operands are handled on their inner
// tensors, and everything else is aligned by name and passed to the backend.
func binaryDirect(a, b Tensor, f kernel2) (Tensor, error) {
	if s, ok := a.(*Stack); ok && stackMappable(s, b) {
		return s.zip(b, func(c, o Tensor) (Tensor, error) { return binaryDirect(c, o, f) })
	}
	if s, ok := b.(*Stack); ok && stackMappable(s, a) {
		return s.zip(a, func(c, o Tensor) (Tensor, error) { return binaryDirect(o, c, f) })
	}
	ca, aok := a.(*Collapsed)
	cb, bok := b.(*Collapsed)
	if aok || bok {
		union, err := a.Shape().Union(b.Shape())
		if err != nil {
			return nil, err
		}
		ia, ib := a, b
		if aok {
			ia = ca.inner
		}
		if bok {
			ib = cb.inner
		}
		res, err := binaryDirect(ia, ib, f)
		if err != nil {
			return nil, err
		}
		return NewCollapsed(res, union)
	}
	return nativeOp(pair(f), a, b)
}

// stackMappable reports whether an operation can be applied child by child on s:
// other either lacks the stack dimension or is a stack along it.
func stackMappable(s *Stack, other Tensor) bool {
	if !other.Shape().Contains(s.dim.Name) {
		return true
	}
	o, ok := other.(*Stack)
	return ok && o.dim.Name == s.dim.Name
}

// zip applies f to each child paired with the matching slice of other.
func (s *Stack) zip(other Tensor, f func(child, o Tensor) (Tensor, error)) (Tensor, error) {
	var others []Tensor
	if other.Shape().Contains(s.dim.Name) {
		var err error
		if others, err = other.Unstack(s.dim.Name); err != nil {
			return nil, err
		}
		if len(others) != len(s.children) {
			return nil, errors.Wrapf(shape.ErrShapeMismatch, "stack %q has %d entries, other has %d", s.dim.Name, len(s.children), len(others))
		}
	}
	return s.mapChildren(func(i int, c Tensor) (Tensor, error) {
		if others == nil {
			return f(c, other)
		}
		return f(c, others[i])
	})
}

func pair(f kernel2) func(b backend.Backend, xs []backend.Native) backend.Native {
	return func(b backend.Backend, xs []backend.Native) backend.Native { return f(b, xs[0], xs[1]) }
}

// nativeOp aligns all operands to their union shape and applies f to the buffers.
func nativeOp(f func(b backend.Backend, xs []backend.Native) backend.Native, ts ...Tensor) (*Native, error) {
	union := shape.Empty
	for _, t := range ts {
		var err error
		if union, err = union.Union(t.Shape()); err != nil {
			return nil, err
		}
	}
	order := union.Names()
	xs := make([]backend.Native, len(ts))
	for i, t := range ts {
		var err error
		if xs[i], err = t.Native(order...); err != nil {
			return nil, err
		}
	}
	b, err := backend.Choose(xs...)
	if err != nil {
		return nil, err
	}
	return newNative(b, f(b, xs), union), nil
}

// Add returns a + b.
func Add(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.Add) }

// Sub returns a - b.
func Sub(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.Sub) }

// Mul returns a * b.
func Mul(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.Mul) }

// Div returns a / b.
func Div(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.Div) }

// Pow returns a ** b.
func Pow(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.Pow) }

// Mod returns a modulo b with the sign of b.
func Mod(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.Mod) }

// Maximum returns the element-wise maximum.
func Maximum(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.Maximum) }

// Minimum returns the element-wise minimum.
func Minimum(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.Minimum) }

// DivideNoNaN returns a / b, or zero where b is zero.
func DivideNoNaN(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.DivideNoNaN) }

// Greater returns a > b.
func Greater(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.Greater) }

// GreaterEqual returns a >= b.
func GreaterEqual(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.GreaterEqual) }

// Less returns a < b.
func Less(a, b Tensor) (Tensor, error) { return Greater(b, a) }

// LessEqual returns a <= b.
func LessEqual(a, b Tensor) (Tensor, error) { return GreaterEqual(b, a) }

// Equal returns a == b.
func Equal(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.Equal) }

// NotEqual returns a != b.
func NotEqual(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.NotEqual) }

// And returns the logical and.
func And(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.And) }

// Or returns the logical or.
func Or(a, b Tensor) (Tensor, error) { return binary(a, b, backend.Backend.Or) }

// Where picks a where condition holds and b elsewhere.
func Where(condition, a, b Tensor) (Tensor, error) {
	return BroadcastOp(func(ts ...Tensor) (Tensor, error) {
		return nativeOp(func(bk backend.Backend, xs []backend.Native) backend.Native {
			return bk.Where(xs[0], xs[1], xs[2])
		}, ts...)
	}, []Tensor{condition, a, b}, nil)
}

// Clip limits x to the range [lo, hi].
func Clip(x, lo, hi Tensor) (Tensor, error) {
	return BroadcastOp(func(ts ...Tensor) (Tensor, error) {
		return nativeOp(func(bk backend.Backend, xs []backend.Native) backend.Native {
			return bk.Clip(xs[0], xs[1], xs[2])
		}, ts...)
	}, []Tensor{x, lo, hi}, nil)
}

// scalarLike creates a scalar on the backend of t.
func scalarLike(t Tensor, value float64, dtype backend.DataType) (Tensor, error) {
	b, err := backendFor(t)
	if err != nil {
		return nil, err
	}
	return newNative(b, b.FromFloat64s([]float64{value}, nil, dtype), shape.Empty), nil
}
