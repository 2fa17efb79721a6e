package tensor

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/pkg/errors"
)

// Float64s reads back the values of t, row-major in the given order, or in declared order
// if none is given.
func Float64s(t Tensor, order ...string) ([]float64, error) {
	b, x, err := readback(t, order)
	if err != nil {
		return nil, err
	}
	return b.Float64s(x), nil
}

// Complex128s is Float64s for complex values.
func Complex128s(t Tensor, order ...string) ([]complex128, error) {
	b, x, err := readback(t, order)
	if err != nil {
		return nil, err
	}
	return b.Complex128s(x), nil
}

func readback(t Tensor, order []string) (backend.Backend, backend.Native, error) {
	if len(order) == 0 {
		order = t.Shape().Names()
	}
	b, err := backendFor(t)
	if err != nil {
		return nil, nil, err
	}
	x, err := t.Native(order...)
	return b, x, err
}

// Item returns the single value of a tensor with volume 1.
func Item(t Tensor) (float64, error) {
	if v := t.Shape().Volume(); v != 1 {
		return 0, errors.Wrapf(shape.ErrShapeMismatch, "item of %s with %d values", t.Shape(), v)
	}
	values, err := Float64s(t)
	if err != nil {
		return 0, err
	}
	return values[0], nil
}

// AllAvailable reports whether the values of every tensor can be read without waiting.
func AllAvailable(ts ...Tensor) bool {
	for _, t := range ts {
		b, err := backendFor(t)
		if err != nil {
			return false
		}
		for _, n := range t.natives() {
			if !b.IsAvailable(n) {
				return false
			}
		}
	}
	return true
}

// Close reports whether |a - b| <= absTol + relTol * |b| everywhere. Equal values, including
// infinities and NaN pairs, count as close. Tensors whose shapes cannot be broadcast are not
// close.
func Close(a, b Tensor, relTol, absTol float64) (bool, error) {
	if _, err := a.Shape().Union(b.Shape()); err != nil {
		return false, nil
	}
	ok, err := closeMask(a, b, relTol, absTol)
	if err != nil {
		return false, err
	}
	all, err := All(ok, AllDims())
	if err != nil {
		return false, err
	}
	v, err := Item(all)
	return v != 0, err
}

// closeMask returns a bool tensor marking the entries where a and b are close.
func closeMask(a, b Tensor, relTol, absTol float64) (Tensor, error) {
	diff, err := Sub(a, b)
	if err != nil {
		return nil, err
	}
	if diff, err = Abs(diff); err != nil {
		return nil, err
	}
	scale, err := Abs(b)
	if err != nil {
		return nil, err
	}
	rel, err := scalarLike(scale, relTol, backend.Float64)
	if err != nil {
		return nil, err
	}
	abs, err := scalarLike(scale, absTol, backend.Float64)
	if err != nil {
		return nil, err
	}
	if scale, err = Mul(scale, rel); err != nil {
		return nil, err
	}
	tol, err := Add(scale, abs)
	if err != nil {
		return nil, err
	}
	within, err := LessEqual(diff, tol)
	if err != nil {
		return nil, err
	}
	equal, err := Equal(a, b)
	if err != nil {
		return nil, err
	}
	aNaN, err := NotEqual(a, a)
	if err != nil {
		return nil, err
	}
	bNaN, err := NotEqual(b, b)
	if err != nil {
		return nil, err
	}
	bothNaN, err := And(aNaN, bNaN)
	if err != nil {
		return nil, err
	}
	if within, err = Or(within, equal); err != nil {
		return nil, err
	}
	return Or(within, bothNaN)
}

// maxShown limits the values printed by AssertClose.
const maxShown = 8

// AssertClose returns an error wrapping ErrNotClose that lists expected and actual values
// if Close(actual, expected) is false for any slice.
func AssertClose(actual, expected Tensor, relTol, absTol float64) error {
	if _, err := actual.Shape().Union(expected.Shape()); err != nil {
		return errors.Wrapf(ErrNotClose, "shapes %s and %s are incompatible", actual.Shape(), expected.Shape())
	}
	return BroadcastDo(func(ts ...Tensor) error {
		a, e := ts[0], ts[1]
		ok, err := Close(a, e, relTol, absTol)
		if err != nil || ok {
			return err
		}
		union, err := a.Shape().Union(e.Shape())
		if err != nil {
			return err
		}
		order := union.Names()
		// Broadcast both sides so values line up entry by entry.
		ae, err := expandTo(a, union)
		if err != nil {
			return err
		}
		ee, err := expandTo(e, union)
		if err != nil {
			return err
		}
		av, err := Complex128s(ae, order...)
		if err != nil {
			return err
		}
		ev, err := Complex128s(ee, order...)
		if err != nil {
			return err
		}
		worst := 0.0
		for i := range av {
			if d := cmplx.Abs(av[i] - ev[i]); d > worst || math.IsNaN(d) {
				worst = d
			}
		}
		return errors.Wrapf(ErrNotClose, "%s: expected %s, got %s (max difference %g, rtol %g, atol %g)",
			union, formatValues(ev), formatValues(av), worst, relTol, absTol)
	}, []Tensor{actual, expected})
}

func formatValues(values []complex128) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range values {
		if i == maxShown {
			fmt.Fprintf(&sb, " ... (%d more)", len(values)-maxShown)
			break
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		if imag(v) == 0 {
			fmt.Fprintf(&sb, "%g", real(v))
		} else {
			fmt.Fprintf(&sb, "%g", v)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}
