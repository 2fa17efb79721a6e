package extrapolation_test

import (
	"testing"

	_ "github.com/ajrox090/PhiFlow/internal/backend/cpu"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/extrapolation"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/ajrox090/PhiFlow/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ints(t *testing.T, values []float64, s shape.Shape) tensor.Tensor {
	t.Helper()
	x, err := tensor.Wrap(values, s, tensor.WithDType(backend.Int32))
	require.NoError(t, err)
	return x
}

func TestTransformCoordinates(t *testing.T) {
	grid := shape.Make(shape.S("x", 4))
	coords := ints(t, []float64{-2, -1, 0, 3, 4, 6}, shape.Make(shape.B("p", 6), shape.C(tensor.VectorDim, 1)))

	tests := []struct {
		name   string
		extrap extrapolation.Extrapolation
		want   []float64
	}{
		{"zero", extrapolation.Zero, []float64{0, 0, 0, 3, 3, 3}},
		{"boundary", extrapolation.Boundary, []float64{0, 0, 0, 3, 3, 3}},
		{"periodic", extrapolation.Periodic, []float64{2, 3, 0, 3, 0, 2}},
		{"symmetric", extrapolation.Symmetric, []float64{1, 0, 0, 3, 3, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := must.M1(tt.extrap.TransformCoordinates(coords, grid))
			assert.Equal(t, tt.want, must.M1(tensor.Float64s(got, "p", tensor.VectorDim)))
		})
	}
}

func TestPad_2D(t *testing.T) {
	x := ints(t, []float64{1, 2, 3, 4}, shape.Make(shape.S("x", 2), shape.S("y", 2)))

	p := must.M1(extrapolation.Boundary.Pad(x, tensor.Widths{"x": {1, 0}, "y": {0, 1}}))
	assert.Equal(t, []float64{1, 2, 2, 1, 2, 2, 3, 4, 4}, must.M1(tensor.Float64s(p, "x", "y")))

	c := must.M1(extrapolation.Constant(7).Pad(x, tensor.Widths{"y": {1, 0}}))
	assert.Equal(t, []float64{7, 1, 2, 7, 3, 4}, must.M1(tensor.Float64s(c, "x", "y")))
	assert.Equal(t, backend.Int32, c.DType())

	same := must.M1(extrapolation.Periodic.Pad(x, tensor.Widths{"x": {0, 0}}))
	assert.Same(t, x, same)
}

func TestPad_Errors(t *testing.T) {
	x := ints(t, []float64{1, 2}, shape.Make(shape.S("x", 2)))

	_, err := extrapolation.Periodic.Pad(x, tensor.Widths{"x": {3, 0}})
	require.ErrorIs(t, err, shape.ErrShapeMismatch)
	_, err = extrapolation.Symmetric.Pad(x, tensor.Widths{"x": {0, 3}})
	require.ErrorIs(t, err, shape.ErrShapeMismatch)
	_, err = extrapolation.Zero.Pad(x, tensor.Widths{"x": {-1, 0}})
	require.ErrorIs(t, err, shape.ErrShapeMismatch)
}

func TestMixed(t *testing.T) {
	mixed := extrapolation.Mixed(map[string]extrapolation.Extrapolation{"x": extrapolation.Periodic}, extrapolation.Zero)
	assert.True(t, mixed.IsCopyPad("x", true))
	assert.False(t, mixed.IsCopyPad("y", false))

	x := ints(t, []float64{1, 2, 3, 4}, shape.Make(shape.S("x", 2), shape.S("y", 2)))
	p := must.M1(mixed.Pad(x, tensor.Widths{"x": {1, 0}, "y": {0, 1}}))
	assert.Equal(t, []float64{3, 4, 0, 1, 2, 0, 3, 4, 0}, must.M1(tensor.Float64s(p, "x", "y")))

	grid := shape.Make(shape.S("x", 2), shape.S("y", 2))
	coords := ints(t, []float64{-1, -1, 2, 5}, shape.Make(shape.B("p", 2), shape.C(tensor.VectorDim, 2)))
	tc := must.M1(mixed.TransformCoordinates(coords, grid))
	assert.Equal(t, []float64{1, 0, 0, 1}, must.M1(tensor.Float64s(tc, "p", tensor.VectorDim)))
}

func TestMixedSides(t *testing.T) {
	mixed := extrapolation.MixedSides(map[string][2]extrapolation.Extrapolation{
		"x": {extrapolation.Zero, extrapolation.Periodic},
	}, extrapolation.Boundary)
	assert.False(t, mixed.IsCopyPad("x", false))
	assert.True(t, mixed.IsCopyPad("x", true))
	assert.True(t, mixed.IsCopyPad("y", false))

	x := ints(t, []float64{1, 2, 3}, shape.Make(shape.S("x", 3)))
	p := must.M1(mixed.Pad(x, tensor.Widths{"x": {1, 2}}))
	assert.Equal(t, []float64{0, 1, 2, 3, 1, 2}, must.M1(tensor.Float64s(p)))

	upperOnly := must.M1(mixed.Pad(x, tensor.Widths{"x": {0, 1}}))
	assert.Equal(t, []float64{1, 2, 3, 1}, must.M1(tensor.Float64s(upperOnly)))

	_, err := mixed.Pad(x, tensor.Widths{"x": {-1, 1}})
	require.ErrorIs(t, err, shape.ErrShapeMismatch)

	grid := shape.Make(shape.S("x", 3))
	coords := ints(t, []float64{-1, 1, 4}, shape.Make(shape.B("p", 3), shape.C(tensor.VectorDim, 1)))
	tc := must.M1(mixed.TransformCoordinates(coords, grid))
	assert.Equal(t, []float64{0, 1, 1}, must.M1(tensor.Float64s(tc, "p", tensor.VectorDim)))
}
