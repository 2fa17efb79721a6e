package tensor_test

import (
	"testing"

	"github.com/ajrox090/PhiFlow/internal/extrapolation"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/ajrox090/PhiFlow/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcat_UnstackRoundTrip(t *testing.T) {
	a := must.M1(tensor.Wrap(seq(4, 0), shape.Make(shape.S("x", 2), shape.S("y", 2))))
	b := must.M1(tensor.Wrap(seq(6, 10), shape.Make(shape.S("y", 2), shape.S("x", 3))))

	joined := must.M1(tensor.Concat([]tensor.Tensor{a, b}, "x"))
	assert.Equal(t, 5, must.M1(joined.Shape().SizeOf("x")))

	back := must.M1(tensor.Slice(joined, "x", 0, 2))
	assert.Equal(t, values(t, a, "x", "y"), values(t, back, "x", "y"))
	back = must.M1(tensor.Slice(joined, "x", 2, 5))
	assert.Equal(t, values(t, b, "x", "y"), values(t, back, "x", "y"))

	rows := must.M1(tensor.Unstack(joined, "x"))
	require.Len(t, rows, 5)
	assert.Equal(t, []float64{10, 13}, values(t, rows[2]))

	_, err := tensor.Concat([]tensor.Tensor{a, must.M1(tensor.Wrap(seq(3, 0), shape.Make(shape.S("x", 1), shape.S("y", 3))))}, "x")
	require.ErrorIs(t, err, shape.ErrShapeMismatch)
	_, err = tensor.Concat([]tensor.Tensor{a, b}, "z")
	require.ErrorIs(t, err, shape.ErrNameNotFound)
}

func TestJoinDimensions(t *testing.T) {
	x := must.M1(tensor.Wrap(seq(12, 0), shape.Make(shape.B("b", 2), shape.S("x", 2), shape.S("y", 3))))

	j := must.M1(tensor.JoinDimensions(x, []string{"x", "y"}, "points"))
	assert.Equal(t, []string{"b", "points"}, j.Shape().Names())
	assert.Equal(t, shape.Spatial, must.M1(j.Shape().KindOf("points")))
	assert.Equal(t, values(t, x), values(t, j))

	mixed := must.M1(tensor.JoinDimensions(x, []string{"y", "b"}, "flat"))
	assert.Equal(t, shape.Batch, must.M1(mixed.Shape().KindOf("flat")))
	assert.Equal(t, 6, must.M1(mixed.Shape().SizeOf("flat")))

	renamed := must.M1(tensor.JoinDimensions(x, []string{"y"}, "z"))
	assert.True(t, renamed.Shape().Contains("z"))

	added := must.M1(tensor.JoinDimensions(x, nil, "one"))
	assert.Equal(t, 1, must.M1(added.Shape().SizeOf("one")))
}

func TestRenameDims(t *testing.T) {
	x := must.M1(tensor.Wrap(seq(2, 0), shape.Make(shape.S("x", 2))))
	s := must.M1(tensor.BatchStack([]tensor.Tensor{x, x}, "k"))

	r := must.M1(tensor.RenameDims(s, map[string]string{"x": "y", "k": "batch"}))
	assert.ElementsMatch(t, []string{"batch", "y"}, r.Shape().Names())

	_, err := tensor.RenameDims(x, map[string]string{"z": "y"})
	require.ErrorIs(t, err, shape.ErrNameNotFound)
}

func TestSliceFlip_Variants(t *testing.T) {
	x := must.M1(tensor.Wrap(seq(3, 1), shape.Make(shape.S("x", 3))))
	c := must.M1(tensor.Expand(x, shape.Make(shape.B("b", 2))))
	s := must.M1(tensor.BatchStack([]tensor.Tensor{x, must.M1(tensor.Neg(x))}, "k"))

	sc := must.M1(tensor.Slice(c, "x", 1, 3))
	assert.Equal(t, []float64{2, 3, 2, 3}, values(t, sc, "b", "x"))
	sb := must.M1(tensor.Slice(c, "b", 0, 1))
	assert.Equal(t, 1, must.M1(sb.Shape().SizeOf("b")))

	ss := must.M1(tensor.Slice(s, "k", 1, 2))
	assert.Equal(t, []float64{-1, -2, -3}, values(t, ss, "k", "x"))

	fc := must.M1(tensor.Flip(c, "x", "b"))
	assert.Equal(t, []float64{3, 2, 1, 3, 2, 1}, values(t, fc, "b", "x"))
	fs := must.M1(tensor.Flip(s, "k", "x"))
	assert.Equal(t, []float64{-3, -2, -1, 3, 2, 1}, values(t, fs, "k", "x"))

	_, err := tensor.Slice(x, "x", 2, 4)
	require.ErrorIs(t, err, shape.ErrShapeMismatch)
	_, err = tensor.Flip(x, "y")
	require.ErrorIs(t, err, shape.ErrNameNotFound)
}

func TestPad(t *testing.T) {
	x := must.M1(tensor.Wrap([]float64{1, 2, 3}, shape.Make(shape.S("x", 3))))

	tests := []struct {
		name string
		mode tensor.Extrapolation
		want []float64
	}{
		{"zero", extrapolation.Zero, []float64{0, 0, 1, 2, 3, 0}},
		{"boundary", extrapolation.Boundary, []float64{1, 1, 1, 2, 3, 3}},
		{"periodic", extrapolation.Periodic, []float64{2, 3, 1, 2, 3, 1}},
		{"symmetric", extrapolation.Symmetric, []float64{2, 1, 1, 2, 3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := must.M1(tensor.Pad(x, tensor.Widths{"x": {2, 1}}, tt.mode))
			assert.Equal(t, tt.want, values(t, p))
		})
	}

	_, err := tensor.Pad(x, tensor.Widths{"y": {1, 1}}, extrapolation.Zero)
	require.ErrorIs(t, err, shape.ErrNameNotFound)

	grid := must.M1(tensor.Ones(shape.Make(shape.S("x", 2), shape.S("y", 2), shape.C("vector", 2))))
	sp := must.M1(tensor.SpatialPad(grid, 1, 1, extrapolation.Zero))
	assert.Equal(t, 4, must.M1(sp.Shape().SizeOf("x")))
	assert.Equal(t, 4, must.M1(sp.Shape().SizeOf("y")))
	assert.Equal(t, 2, must.M1(sp.Shape().SizeOf("vector")))
	assert.Equal(t, 8.0, item(t, must.M1(tensor.Sum(sp, tensor.AllDims()))))
}
