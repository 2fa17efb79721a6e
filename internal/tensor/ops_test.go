package tensor_test

import (
	"math"
	"testing"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/ajrox090/PhiFlow/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinary_ByName(t *testing.T) {
	x := must.M1(tensor.Wrap([]float64{1, 2, 3}, shape.Make(shape.S("x", 3))))
	y := must.M1(tensor.Wrap([]float64{10, 20}, shape.Make(shape.S("y", 2))))

	sum := must.M1(tensor.Add(x, y))
	assert.Equal(t, []string{"x", "y"}, sum.Shape().Names())
	assert.Equal(t, []float64{11, 21, 12, 22, 13, 23}, values(t, sum, "x", "y"))

	// Operand order does not matter for the values, only for the declared order.
	rev := must.M1(tensor.Add(y, x))
	assert.Equal(t, []string{"y", "x"}, rev.Shape().Names())
	assert.Equal(t, values(t, sum, "x", "y"), values(t, rev, "x", "y"))

	other := must.M1(tensor.Wrap([]float64{1, 2}, shape.Make(shape.S("x", 2))))
	_, err := tensor.Add(x, other)
	require.ErrorIs(t, err, shape.ErrShapeMismatch)
}

func TestBinary_Table(t *testing.T) {
	a := must.M1(tensor.Wrap([]float64{-3, 0, 5}, shape.Make(shape.S("x", 3)), tensor.WithDType(backend.Float64)))
	b := must.M1(tensor.Wrap([]float64{2, 2, 2}, shape.Make(shape.S("x", 3)), tensor.WithDType(backend.Float64)))

	tests := []struct {
		name string
		op   func(a, b tensor.Tensor) (tensor.Tensor, error)
		want []float64
	}{
		{"Sub", tensor.Sub, []float64{-5, -2, 3}},
		{"Mul", tensor.Mul, []float64{-6, 0, 10}},
		{"Div", tensor.Div, []float64{-1.5, 0, 2.5}},
		{"Pow", tensor.Pow, []float64{9, 0, 25}},
		{"Mod", tensor.Mod, []float64{1, 0, 1}},
		{"Maximum", tensor.Maximum, []float64{2, 2, 5}},
		{"Minimum", tensor.Minimum, []float64{-3, 0, 2}},
		{"Greater", tensor.Greater, []float64{0, 0, 1}},
		{"Less", tensor.Less, []float64{1, 1, 0}},
		{"LessEqual", tensor.LessEqual, []float64{1, 1, 0}},
		{"Equal", tensor.Equal, []float64{0, 0, 0}},
		{"NotEqual", tensor.NotEqual, []float64{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := must.M1(tt.op(a, b))
			assert.Equal(t, tt.want, values(t, got))
		})
	}

	zero := must.M1(tensor.Zeros(shape.Make(shape.S("x", 3)), tensor.WithDType(backend.Float64)))
	safe := must.M1(tensor.DivideNoNaN(a, zero))
	assert.Equal(t, []float64{0, 0, 0}, values(t, safe))
}

func TestUnary(t *testing.T) {
	x := must.M1(tensor.Wrap([]float64{-1.5, 0.5, 4}, shape.Make(shape.S("x", 3)), tensor.WithDType(backend.Float64)))

	assert.Equal(t, []float64{1.5, 0.5, 4}, values(t, must.M1(tensor.Abs(x))))
	assert.Equal(t, []float64{-1, 1, 1}, values(t, must.M1(tensor.Sign(x))))
	assert.Equal(t, []float64{-2, 0, 4}, values(t, must.M1(tensor.Floor(x))))
	assert.Equal(t, []float64{-1, 1, 4}, values(t, must.M1(tensor.Ceil(x))))
	assert.Equal(t, []float64{-2, 0, 4}, values(t, must.M1(tensor.Round(x))))
	assert.Equal(t, []float64{1.5, -0.5, -4}, values(t, must.M1(tensor.Neg(x))))

	sq := values(t, must.M1(tensor.Sqrt(x)))
	assert.True(t, math.IsNaN(sq[0]))
	assert.Equal(t, 2.0, sq[2])

	fin := must.M1(tensor.IsFinite(must.M1(tensor.Sqrt(x))))
	assert.Equal(t, backend.Bool, fin.DType())
	assert.Equal(t, []float64{0, 1, 1}, values(t, fin))

	i := must.M1(tensor.ToInt(x, false))
	assert.Equal(t, backend.Int32, i.DType())
	assert.Equal(t, []float64{-1, 0, 4}, values(t, i))

	f := must.M1(tensor.ToFloat(i))
	assert.Equal(t, backend.Float32, f.DType())

	c := must.M1(tensor.ToComplex(x))
	assert.True(t, c.DType().IsComplex())
	re := must.M1(tensor.Real(c))
	assert.Equal(t, values(t, x), values(t, re))
}

func TestUnary_KeepsVariant(t *testing.T) {
	x := must.M1(tensor.Wrap([]float64{-1, 2}, shape.Make(shape.S("x", 2))))
	c := must.M1(tensor.Expand(x, shape.Make(shape.B("b", 3))))

	abs := must.M1(tensor.Abs(c))
	require.IsType(t, &tensor.Collapsed{}, abs)
	assert.True(t, abs.Shape().Equal(c.Shape()))
	assert.Equal(t, []float64{1, 2, 1, 2, 1, 2}, values(t, abs, "b", "x"))

	s := must.M1(tensor.ChannelStack([]tensor.Tensor{x, x}, "vector"))
	neg := must.M1(tensor.Neg(s))
	require.IsType(t, &tensor.Stack{}, neg)
	assert.Equal(t, []float64{1, 1, -2, -2}, values(t, neg, "x", "vector"))
}

// f(stack[c0, c1], u) == stack[f(c0, u), f(c1, u)]
func TestBinary_StackEquivalence(t *testing.T) {
	c0 := must.M1(tensor.Wrap([]float64{1, 2}, shape.Make(shape.S("x", 2))))
	c1 := must.M1(tensor.Expand(must.M1(tensor.Const(5)), shape.Make(shape.S("x", 2))))
	u := must.M1(tensor.Wrap([]float64{10, 20, 30}, shape.Make(shape.C("c", 3))))

	s := must.M1(tensor.BatchStack([]tensor.Tensor{c0, c1}, "k"))
	require.True(t, s.(*tensor.Stack).RequiresBroadcast())

	for _, op := range []func(a, b tensor.Tensor) (tensor.Tensor, error){tensor.Add, tensor.Mul, tensor.Maximum} {
		got := must.M1(op(s, u))
		want := must.M1(tensor.BatchStack([]tensor.Tensor{must.M1(op(c0, u)), must.M1(op(c1, u))}, "k"))
		assert.True(t, got.Shape().SameDims(want.Shape()))
		assert.Equal(t, values(t, want, "k", "x", "c"), values(t, got, "k", "x", "c"))
	}
}

func TestBinary_Collapsed(t *testing.T) {
	x := must.M1(tensor.Wrap([]float64{1, 2}, shape.Make(shape.S("x", 2))))
	a := must.M1(tensor.Expand(x, shape.Make(shape.B("b", 100))))
	b := must.M1(tensor.Expand(must.M1(tensor.Const(1)), shape.Make(shape.B("b", 100))))

	sum := must.M1(tensor.Add(a, b))
	c, ok := sum.(*tensor.Collapsed)
	require.True(t, ok, "adding collapsed tensors stays collapsed")
	assert.Equal(t, 2, c.Inner().Shape().Volume())
	assert.Equal(t, []float64{2, 3}, values(t, c.Inner()))
}

func TestBroadcastOp_KindMismatch(t *testing.T) {
	a := must.M1(tensor.Wrap([]float64{1, 2}, shape.Make(shape.S("x", 2))))
	b := must.M1(tensor.Wrap([]float64{1, 2, 3}, shape.Make(shape.S("x", 3))))
	batch := must.M1(tensor.BatchStack([]tensor.Tensor{a, b}, "k"))
	spatial := must.M1(tensor.SpatialStack([]tensor.Tensor{a, b}, "k"))

	_, err := tensor.Add(batch, spatial)
	require.ErrorIs(t, err, shape.ErrShapeMismatch)
}

func TestBroadcastOp_Explicit(t *testing.T) {
	x := must.M1(tensor.Wrap([]float64{1, 2, 3, 4}, shape.Make(shape.B("b", 2), shape.S("x", 2))))
	calls := 0
	out, err := tensor.BroadcastOp(func(ts ...tensor.Tensor) (tensor.Tensor, error) {
		calls++
		assert.False(t, ts[0].Shape().Contains("b"))
		return tensor.Sum(ts[0], tensor.AllDims())
	}, []tensor.Tensor{x}, []string{"b"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []float64{3, 7}, values(t, out))

	seen := 0
	require.NoError(t, tensor.BroadcastDo(func(ts ...tensor.Tensor) error {
		seen++
		return nil
	}, []tensor.Tensor{x}))
	assert.Equal(t, 1, seen)
}

func TestWhereClip(t *testing.T) {
	x := must.M1(tensor.Wrap([]float64{-2, 0.5, 3}, shape.Make(shape.S("x", 3)), tensor.WithDType(backend.Float64)))
	zero := must.M1(tensor.Const(0, tensor.WithDType(backend.Float64)))
	one := must.M1(tensor.Const(1, tensor.WithDType(backend.Float64)))

	pos := must.M1(tensor.Greater(x, zero))
	w := must.M1(tensor.Where(pos, x, zero))
	assert.Equal(t, []float64{0, 0.5, 3}, values(t, w))

	c := must.M1(tensor.Clip(x, zero, one))
	assert.Equal(t, []float64{0, 0.5, 1}, values(t, c))

	both := must.M1(tensor.And(pos, must.M1(tensor.Less(x, one))))
	assert.Equal(t, []float64{0, 1, 0}, values(t, both))
	either := must.M1(tensor.Or(pos, must.M1(tensor.Not(pos))))
	assert.Equal(t, []float64{1, 1, 1}, values(t, either))
}
