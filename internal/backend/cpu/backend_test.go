package cpu

import (
	"math"
	"testing"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create test backend.
func newTestBackend() *CPUBackend {
	return NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 2})
}

func f64(cpu *CPUBackend, shape []int, values ...float64) backend.Native {
	return cpu.FromFloat64s(values, shape, backend.Float64)
}

func TestCPUBackend_New(t *testing.T) {
	b := New()
	require.NotNil(t, b)
	assert.Equal(t, "CPU", b.Name())

	found := false
	for _, r := range backend.Registered() {
		found = found || r.Name() == "CPU"
	}
	assert.True(t, found, "CPU backend registers itself")
}

func TestCPUBackend_Accepts(t *testing.T) {
	cpu := newTestBackend()
	assert.True(t, cpu.Accepts(cpu.Zeros([]int{2}, backend.Float32)))
	assert.False(t, cpu.Accepts(nil))
	assert.True(t, cpu.IsAvailable(nil))
}

func TestCPUBackend_Quantization(t *testing.T) {
	cpu := newTestBackend()
	x := cpu.FromFloat64s([]float64{1.7, -1.7, 0.1}, []int{3}, backend.Int32)
	assert.Equal(t, []float64{1, -1, 0}, cpu.Float64s(x))

	b := cpu.FromFloat64s([]float64{0, 2, -0.5}, []int{3}, backend.Bool)
	assert.Equal(t, []float64{0, 1, 1}, cpu.Float64s(b))

	h := cpu.FromFloat64s([]float64{1.0 / 3}, []int{1}, backend.Float16)
	assert.InDelta(t, 1.0/3, cpu.Float64s(h)[0], 1e-3)
	assert.NotEqual(t, 1.0/3, cpu.Float64s(h)[0])

	assert.Panics(t, func() { cpu.FromFloat64s([]float64{1, 2}, []int{3}, backend.Float64) })
}

func TestCPUBackend_Add(t *testing.T) {
	cpu := newTestBackend()

	t.Run("SameShape", func(t *testing.T) {
		a := f64(cpu, []int{2, 3}, 1, 2, 3, 4, 5, 6)
		b := f64(cpu, []int{2, 3}, 10, 11, 12, 13, 14, 15)
		assert.Equal(t, []float64{11, 13, 15, 17, 19, 21}, cpu.Float64s(cpu.Add(a, b)))
	})

	t.Run("Broadcast", func(t *testing.T) {
		a := f64(cpu, []int{2, 1}, 1, 2)
		b := f64(cpu, []int{1, 3}, 10, 20, 30)
		out := cpu.Add(a, b)
		assert.Equal(t, []int{2, 3}, out.Shape())
		assert.Equal(t, []float64{11, 21, 31, 12, 22, 32}, cpu.Float64s(out))
	})

	t.Run("Promotion", func(t *testing.T) {
		a := cpu.FromFloat64s([]float64{1, 2}, []int{2}, backend.Int32)
		b := cpu.FromFloat64s([]float64{0.5, 0.5}, []int{2}, backend.Float32)
		out := cpu.Add(a, b)
		assert.Equal(t, backend.Float32, out.DType())
		assert.Equal(t, []float64{1.5, 2.5}, cpu.Float64s(out))
	})

	t.Run("Incompatible", func(t *testing.T) {
		assert.Panics(t, func() { cpu.Add(f64(cpu, []int{2}, 1, 2), f64(cpu, []int{3}, 1, 2, 3)) })
	})
}

func TestCPUBackend_BinaryOps(t *testing.T) {
	cpu := newTestBackend()
	a := f64(cpu, []int{4}, -3, 1, 4, 0)
	b := f64(cpu, []int{4}, 2, 2, 2, 0)

	assert.Equal(t, []float64{1, 1, 0}, cpu.Float64s(cpu.Mod(a, b))[:3])
	assert.Equal(t, []float64{-1.5, 0.5, 2, 0}, cpu.Float64s(cpu.DivideNoNaN(a, b)))
	assert.Equal(t, []float64{2, 2, 4, 0}, cpu.Float64s(cpu.Maximum(a, b)))
	assert.Equal(t, []float64{-3, 1, 2, 0}, cpu.Float64s(cpu.Minimum(a, b)))
	assert.Equal(t, []float64{9, 1, 16, 1}, cpu.Float64s(cpu.Pow(a, b)))

	gt := cpu.Greater(a, b)
	assert.Equal(t, backend.Bool, gt.DType())
	assert.Equal(t, []float64{0, 0, 1, 0}, cpu.Float64s(gt))
	assert.Equal(t, []float64{0, 0, 1, 1}, cpu.Float64s(cpu.GreaterEqual(a, b)))
	assert.Equal(t, []float64{0, 0, 0, 1}, cpu.Float64s(cpu.Equal(a, b)))
	assert.Equal(t, []float64{1, 1, 1, 0}, cpu.Float64s(cpu.NotEqual(a, b)))
	assert.Equal(t, []float64{1, 1, 1, 0}, cpu.Float64s(cpu.And(a, b)))
	assert.Equal(t, []float64{1, 1, 1, 0}, cpu.Float64s(cpu.Or(a, b)))

	ints := cpu.FromFloat64s([]float64{1, 3}, []int{2}, backend.Int64)
	div := cpu.Div(ints, cpu.FromFloat64s([]float64{2, 2}, []int{2}, backend.Int64))
	assert.True(t, div.DType().IsFloat())
	assert.Equal(t, []float64{0.5, 1.5}, cpu.Float64s(div))
}

func TestCPUBackend_WhereClip(t *testing.T) {
	cpu := newTestBackend()
	cond := cpu.FromFloat64s([]float64{1, 0, 1}, []int{3}, backend.Bool)
	out := cpu.Where(cond, f64(cpu, []int{3}, 1, 2, 3), f64(cpu, []int{1}, -1))
	assert.Equal(t, []float64{1, -1, 3}, cpu.Float64s(out))

	clipped := cpu.Clip(f64(cpu, []int{4}, -2, 0.5, 3, 1), f64(cpu, nil, 0), f64(cpu, nil, 1))
	assert.Equal(t, []float64{0, 0.5, 1, 1}, cpu.Float64s(clipped))
}

func TestCPUBackend_Unary(t *testing.T) {
	cpu := newTestBackend()
	x := f64(cpu, []int{4}, -2.5, -0.5, 0, 1.5)
	assert.Equal(t, []float64{2.5, 0.5, 0, 1.5}, cpu.Float64s(cpu.Abs(x)))
	assert.Equal(t, []float64{-1, -1, 0, 1}, cpu.Float64s(cpu.Sign(x)))
	assert.Equal(t, []float64{-2, -0, 0, 2}, cpu.Float64s(cpu.Round(x)))
	assert.Equal(t, []float64{-3, -1, 0, 1}, cpu.Float64s(cpu.Floor(x)))
	assert.Equal(t, []float64{-2, -0, 0, 2}, cpu.Float64s(cpu.Ceil(x)))
	assert.Equal(t, []float64{2.5, 0.5, -0, -1.5}, cpu.Float64s(cpu.Neg(x)))
	assert.Equal(t, []float64{0, 0, 1, 0}, cpu.Float64s(cpu.Not(x)))

	inf := f64(cpu, []int{3}, math.Inf(1), math.NaN(), 1)
	assert.Equal(t, []float64{0, 0, 1}, cpu.Float64s(cpu.IsFinite(inf)))

	sq := cpu.Sqrt(cpu.FromFloat64s([]float64{4, 9}, []int{2}, backend.Int32))
	assert.Equal(t, []float64{2, 3}, cpu.Float64s(sq))
}

func TestCPUBackend_Complex(t *testing.T) {
	cpu := newTestBackend()
	z := cpu.FromComplex128s([]complex128{3 + 4i, -1i}, []int{2}, backend.Complex128)
	abs := cpu.Abs(z)
	assert.Equal(t, backend.Float64, abs.DType())
	assert.Equal(t, []float64{5, 1}, cpu.Float64s(abs))
	assert.Equal(t, []float64{3, 0}, cpu.Float64s(cpu.Real(z)))
	assert.Equal(t, []float64{4, -1}, cpu.Float64s(cpu.Imag(z)))

	sum := cpu.Add(z, f64(cpu, []int{1}, 1))
	assert.Equal(t, []complex128{4 + 4i, 1 - 1i}, cpu.Complex128s(sum))
	assert.Panics(t, func() { cpu.Greater(z, z) })
}

func TestCPUBackend_Reductions(t *testing.T) {
	cpu := newTestBackend()
	x := f64(cpu, []int{2, 3}, 1, 2, 3, 4, 5, 6)

	sum := cpu.Sum(x, []int{1})
	assert.Equal(t, []int{2}, sum.Shape())
	assert.Equal(t, []float64{6, 15}, cpu.Float64s(sum))
	assert.Equal(t, []float64{5, 7, 9}, cpu.Float64s(cpu.Sum(x, []int{0})))

	all := cpu.Sum(x, []int{0, 1})
	assert.Equal(t, []int{}, all.Shape())
	assert.Equal(t, []float64{21}, cpu.Float64s(all))

	assert.Equal(t, []float64{6, 120}, cpu.Float64s(cpu.Prod(x, []int{1})))
	assert.Equal(t, []float64{2, 5}, cpu.Float64s(cpu.Mean(x, []int{1})))
	assert.Equal(t, []float64{1, 4}, cpu.Float64s(cpu.Min(x, []int{1})))
	assert.Equal(t, []float64{3, 6}, cpu.Float64s(cpu.Max(x, []int{1})))

	std := cpu.Float64s(cpu.Std(x, []int{1}))
	assert.InDeltaSlice(t, []float64{math.Sqrt(2.0 / 3), math.Sqrt(2.0 / 3)}, std, 1e-12)

	flags := cpu.FromFloat64s([]float64{0, 1, 0, 0}, []int{2, 2}, backend.Bool)
	assert.Equal(t, []float64{1, 0}, cpu.Float64s(cpu.Any(flags, []int{1})))
	assert.Equal(t, []float64{0, 0}, cpu.Float64s(cpu.All(flags, []int{1})))
	assert.Equal(t, backend.Int64, cpu.Sum(flags, []int{0, 1}).DType())

	assert.Panics(t, func() { cpu.Sum(x, []int{2}) })
}

func TestCPUBackend_Manipulation(t *testing.T) {
	cpu := newTestBackend()
	x := f64(cpu, []int{2, 3}, 1, 2, 3, 4, 5, 6)

	tr := cpu.Transpose(x, []int{1, 0})
	assert.Equal(t, []int{3, 2}, tr.Shape())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, cpu.Float64s(tr))

	assert.Equal(t, []int{2, 1, 3}, cpu.ExpandDims(x, 1).Shape())
	assert.Equal(t, []int{6}, cpu.Reshape(x, []int{6}).Shape())

	cat := cpu.Concat([]backend.Native{x, f64(cpu, []int{2, 1}, 7, 8)}, 1)
	assert.Equal(t, []int{2, 4}, cat.Shape())
	assert.Equal(t, []float64{1, 2, 3, 7, 4, 5, 6, 8}, cpu.Float64s(cat))

	tile := cpu.Tile(f64(cpu, []int{1, 2}, 1, 2), []int{2, 2})
	assert.Equal(t, []float64{1, 2, 1, 2, 1, 2, 1, 2}, cpu.Float64s(tile))

	sl := cpu.Slice(x, 1, 1, 3)
	assert.Equal(t, []float64{2, 3, 5, 6}, cpu.Float64s(sl))
	assert.Equal(t, []float64{3, 2, 1, 6, 5, 4}, cpu.Float64s(cpu.Flip(x, 1)))
	assert.Equal(t, []float64{4, 5, 6, 1, 2, 3}, cpu.Float64s(cpu.Flip(x, 0)))
}

func TestCPUBackend_GatherScatter(t *testing.T) {
	cpu := newTestBackend()
	// values (1, 2, 3, 1)
	values := f64(cpu, []int{1, 2, 3, 1}, 0, 1, 2, 10, 11, 12)
	indices := f64(cpu, []int{1, 2, 2}, 1, 2, 0, 1)
	out := cpu.GatherND(values, indices)
	assert.Equal(t, []int{1, 2, 1}, out.Shape())
	assert.Equal(t, []float64{12, 1}, cpu.Float64s(out))
	assert.Panics(t, func() { cpu.GatherND(values, f64(cpu, []int{1, 1, 2}, 2, 0)) })

	idx := f64(cpu, []int{1, 3, 1}, 1, 1, 5)
	vals := f64(cpu, []int{1, 3, 1}, 2, 4, 8)
	add := cpu.Scatter(idx, vals, []int{3}, backend.ScatterMode{Duplicates: backend.DuplicatesAdd, Outside: backend.OutsideDiscard})
	assert.Equal(t, []int{1, 3, 1}, add.Shape())
	assert.Equal(t, []float64{0, 6, 0}, cpu.Float64s(add))

	mean := cpu.Scatter(idx, vals, []int{3}, backend.ScatterMode{Duplicates: backend.DuplicatesMean, Outside: backend.OutsideClamp})
	assert.Equal(t, []float64{0, 3, 8}, cpu.Float64s(mean))
}

func TestCPUBackend_Nonzero(t *testing.T) {
	cpu := newTestBackend()
	nz := cpu.Nonzero(f64(cpu, []int{2, 2}, 0, 1, 1, 0))
	assert.Equal(t, []int{2, 2}, nz.Shape())
	assert.Equal(t, backend.Int64, nz.DType())
	assert.Equal(t, []float64{0, 1, 1, 0}, cpu.Float64s(nz))
}

func TestCPUBackend_Meshgrid(t *testing.T) {
	cpu := newTestBackend()
	grids := cpu.Meshgrid([]float64{0, 1}, []float64{5, 6, 7})
	require.Len(t, grids, 2)
	assert.Equal(t, []int{2, 3}, grids[0].Shape())
	assert.Equal(t, []float64{0, 0, 0, 1, 1, 1}, cpu.Float64s(grids[0]))
	assert.Equal(t, []float64{5, 6, 7, 5, 6, 7}, cpu.Float64s(grids[1]))
}

func TestCPUBackend_FFT(t *testing.T) {
	cpu := newTestBackend()
	x := f64(cpu, []int{1, 4, 1}, 1, 0, 0, 0)
	k := cpu.FFT(x)
	assert.True(t, k.DType().IsComplex())
	for _, v := range cpu.Complex128s(k) {
		assert.InDelta(t, 1, real(v), 1e-12)
		assert.InDelta(t, 0, imag(v), 1e-12)
	}

	y := f64(cpu, []int{1, 2, 3, 1}, 1, 2, 3, 4, 5, 6)
	back := cpu.Float64s(cpu.Real(cpu.IFFT(cpu.FFT(y))))
	assert.InDeltaSlice(t, []float64{1, 2, 3, 4, 5, 6}, back, 1e-12)

	dc := cpu.Complex128s(cpu.FFT(y))[0]
	assert.InDelta(t, 21, real(dc), 1e-12)
}

func TestCPUBackend_ConjugateGradient(t *testing.T) {
	cpu := newTestBackend()
	params := backend.CGParams{RelTol: 1e-10, AbsTol: 1e-10, MaxIterations: 100}

	t.Run("Identity", func(t *testing.T) {
		eye := backend.DenseMatrix{Matrix: f64(cpu, []int{3, 3}, 1, 0, 0, 0, 1, 0, 0, 0, 1)}
		y := f64(cpu, []int{1, 3}, 1, 2, 3)
		res := cpu.ConjugateGradient(eye, y, cpu.Zeros([]int{1, 3}, backend.Float64), params)
		assert.Equal(t, []float64{1, 2, 3}, cpu.Float64s(res.X))
		assert.Equal(t, []float64{1}, cpu.Float64s(res.Converged))
		assert.Equal(t, []float64{1}, cpu.Float64s(res.Iterations))
	})

	t.Run("Sparse", func(t *testing.T) {
		// [[2, 1], [1, 3]]
		m := &backend.SparseMatrix{RowCount: 2, ColCount: 2, Rows: []int{0, 0, 1, 1}, Cols: []int{0, 1, 0, 1}, Values: []float64{2, 1, 1, 3}}
		y := f64(cpu, []int{2, 2}, 3, 4, 1, 2)
		res := cpu.ConjugateGradient(m, y, f64(cpu, []int{2}, 0, 0), params)
		assert.InDeltaSlice(t, []float64{1, 1, 0.2, 0.6}, cpu.Float64s(res.X), 1e-9)
		assert.Equal(t, []float64{1, 1}, cpu.Float64s(res.Converged))
	})

	t.Run("Function", func(t *testing.T) {
		double := backend.OperatorFunc{N: 2, Apply: func(x backend.Native) backend.Native {
			return cpu.Mul(x, f64(cpu, nil, 2))
		}}
		res := cpu.ConjugateGradient(double, f64(cpu, []int{1, 2}, 2, 4), cpu.Zeros([]int{1, 2}, backend.Float64), params)
		assert.InDeltaSlice(t, []float64{1, 2}, cpu.Float64s(res.X), 1e-9)
	})

	t.Run("NotConverged", func(t *testing.T) {
		m := &backend.SparseMatrix{RowCount: 2, ColCount: 2, Rows: []int{0, 0, 1, 1}, Cols: []int{0, 1, 0, 1}, Values: []float64{2, 1, 1, 3}}
		res := cpu.ConjugateGradient(m, f64(cpu, []int{1, 2}, 3, 4), f64(cpu, []int{2}, 0, 0),
			backend.CGParams{RelTol: 1e-10, AbsTol: 1e-10, MaxIterations: 1})
		assert.Equal(t, []float64{0}, cpu.Float64s(res.Converged))
		assert.Equal(t, []float64{1}, cpu.Float64s(res.Iterations))
	})
}
