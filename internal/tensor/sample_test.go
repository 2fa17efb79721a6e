package tensor_test

import (
	"testing"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/extrapolation"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/ajrox090/PhiFlow/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridSample_1D(t *testing.T) {
	grid := must.M1(tensor.Wrap([]float64{0, 1, 2, 3}, shape.Make(shape.S("x", 4)), tensor.WithDType(backend.Float64)))
	at := must.M1(tensor.Vector([]float64{1.5}, tensor.WithDType(backend.Float64)))

	v := must.M1(tensor.GridSample(grid, at, extrapolation.Boundary))
	assert.Equal(t, 0, v.Shape().Rank())
	assert.InDelta(t, 1.5, item(t, v), 1e-12)

	tests := []struct {
		name   string
		extrap tensor.Extrapolation
		coord  float64
		want   float64
	}{
		{"boundary below", extrapolation.Boundary, -1, 0},
		{"boundary above", extrapolation.Boundary, 3.5, 3},
		{"zero above", extrapolation.Zero, 3.5, 1.5},
		{"zero below", extrapolation.Zero, -0.5, 0},
		{"periodic wrap", extrapolation.Periodic, 3.5, 1.5},
		{"symmetric above", extrapolation.Symmetric, 3.5, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := must.M1(tensor.Vector([]float64{tt.coord}, tensor.WithDType(backend.Float64)))
			v := must.M1(tensor.GridSample(grid, at, tt.extrap))
			assert.InDelta(t, tt.want, item(t, v), 1e-12)
		})
	}
}

func TestGridSample_2D(t *testing.T) {
	// grid[x, y] = 10x + y
	grid := must.M1(tensor.Wrap([]float64{0, 1, 2, 10, 11, 12}, shape.Make(shape.S("x", 2), shape.S("y", 3)), tensor.WithDType(backend.Float64)))
	points := must.M1(tensor.Wrap([]float64{0.5, 0.5, 0, 2, 1, 1.25}, shape.Make(shape.B("p", 3), shape.C("vector", 2)), tensor.WithDType(backend.Float64)))

	v := must.M1(tensor.GridSample(grid, points, extrapolation.Boundary))
	assert.Equal(t, []string{"p"}, v.Shape().Names())
	got := values(t, v)
	want := []float64{5.5, 2, 11.25}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
}

func TestClosestGridValues(t *testing.T) {
	grid := must.M1(tensor.Wrap([]float64{0, 1, 2, 10, 11, 12}, shape.Make(shape.S("x", 2), shape.S("y", 3)), tensor.WithDType(backend.Float64)))
	at := must.M1(tensor.Vector([]float64{0.5, 1.5}, tensor.WithDType(backend.Float64)))

	n := must.M1(tensor.ClosestGridValues(grid, at, extrapolation.Boundary, "n_"))
	assert.ElementsMatch(t, []string{"n_x", "n_y"}, n.Shape().Names())
	assert.Equal(t, []float64{1, 2, 11, 12}, values(t, n, "n_x", "n_y"))

	_, err := tensor.ClosestGridValues(grid, must.M1(tensor.Vector([]float64{1})), extrapolation.Boundary, "n_")
	require.ErrorIs(t, err, shape.ErrShapeMismatch)
}

func TestGridSample_BatchedGrid(t *testing.T) {
	a := must.M1(tensor.Wrap([]float64{0, 1, 2, 3}, shape.Make(shape.S("x", 4)), tensor.WithDType(backend.Float64)))
	b := must.M1(tensor.Wrap([]float64{0, 10}, shape.Make(shape.S("x", 2)), tensor.WithDType(backend.Float64)))
	grids := must.M1(tensor.BatchStack([]tensor.Tensor{a, b}, "g"))
	at := must.M1(tensor.Vector([]float64{0.5}, tensor.WithDType(backend.Float64)))

	v := must.M1(tensor.GridSample(grids, at, extrapolation.Boundary))
	assert.Equal(t, []string{"g"}, v.Shape().Names())
	assert.InDeltaSlice(t, []float64{0.5, 5}, values(t, v), 1e-12)
}
