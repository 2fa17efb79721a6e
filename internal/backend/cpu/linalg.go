package cpu

import (
	"fmt"
	"math"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/parallel"
	"gonum.org/v1/gonum/mat"
)

// ConjugateGradient solves op(x) = y for every row of y independently.
//
// Each row stops once its residual norm drops to max(RelTol*|y|, AbsTol) or after
// MaxIterations. Rows are solved concurrently.
func (cpu *CPUBackend) ConjugateGradient(op backend.LinearOperator, y, x0 backend.Native, params backend.CGParams) backend.CGResult {
	ya, xa := cpu.array(y, "cg"), cpu.array(x0, "cg")
	if len(ya.shape) != 2 {
		panic(fmt.Sprintf("cg: expected y of shape (B, N), got %v", ya.shape))
	}
	batch, n := ya.shape[0], ya.shape[1]
	if rows, cols := op.Dims(); rows != n || cols != n {
		panic(fmt.Sprintf("cg: operator of size %dx%d does not match vectors of length %d", rows, cols, n))
	}
	if xa.NumElements() != batch*n && xa.NumElements() != n {
		panic(fmt.Sprintf("cg: initial guess %v does not match y %v", xa.shape, ya.shape))
	}
	apply := cpu.operator(op)

	dtype := backend.Promote(ya.dtype, xa.dtype)
	if !dtype.IsFloat() {
		dtype = backend.Float64
	}
	xOut := newArray([]int{batch, n}, dtype)
	converged := newArray([]int{batch}, backend.Bool)
	iterations := newArray([]int{batch}, backend.Int32)

	yData, xData := ya.reals(), xa.reals()
	_ = parallel.ForEach(batch, func(b int) error {
		yv := mat.NewVecDense(n, append([]float64(nil), yData[b*n:(b+1)*n]...))
		off := 0
		if len(xData) == batch*n {
			off = b * n
		}
		x := mat.NewVecDense(n, append([]float64(nil), xData[off:off+n]...))
		ok, it := conjugateGradient(apply, yv, x, params)
		copy(xOut.data[b*n:(b+1)*n], x.RawVector().Data)
		converged.data[b] = fromBool(ok)
		iterations.data[b] = float64(it)
		return nil
	}, cpu.parallel)

	return backend.CGResult{Converged: converged, X: xOut.quantize(), Iterations: iterations}
}

// conjugateGradient runs the classic CG iteration in place on x.
func conjugateGradient(apply func(dst, x *mat.VecDense), y, x *mat.VecDense, params backend.CGParams) (bool, int) {
	n := y.Len()
	threshold := math.Max(params.RelTol*mat.Norm(y, 2), params.AbsTol)

	ax := mat.NewVecDense(n, nil)
	apply(ax, x)
	r := mat.NewVecDense(n, nil)
	r.SubVec(y, ax)
	p := mat.NewVecDense(n, nil)
	p.CopyVec(r)
	ap := mat.NewVecDense(n, nil)
	rr := mat.Dot(r, r)

	it := 0
	for math.Sqrt(rr) > threshold && it < params.MaxIterations {
		apply(ap, p)
		pap := mat.Dot(p, ap)
		if pap == 0 {
			break
		}
		alpha := rr / pap
		x.AddScaledVec(x, alpha, p)
		r.AddScaledVec(r, -alpha, ap)
		rrNew := mat.Dot(r, r)
		p.AddScaledVec(r, rrNew/rr, p)
		rr = rrNew
		it++
	}
	return math.Sqrt(rr) <= threshold, it
}

// operator adapts a backend.LinearOperator to a gonum matrix-vector product.
func (cpu *CPUBackend) operator(op backend.LinearOperator) func(dst, x *mat.VecDense) {
	switch op := op.(type) {
	case backend.DenseMatrix:
		m := cpu.array(op.Matrix, "cg")
		rows, cols := op.Dims()
		dense := mat.NewDense(rows, cols, append([]float64(nil), m.reals()...))
		return func(dst, x *mat.VecDense) { dst.MulVec(dense, x) }
	case *backend.SparseMatrix:
		return func(dst, x *mat.VecDense) { op.MulVec(dst.RawVector().Data, x.RawVector().Data) }
	case backend.OperatorFunc:
		return func(dst, x *mat.VecDense) {
			in := cpu.FromFloat64s(x.RawVector().Data, []int{op.N}, backend.Float64)
			res := cpu.array(op.Apply(in), "cg").reals()
			if len(res) != op.N {
				panic(fmt.Sprintf("cg: linear function returned %d values, expected %d", len(res), op.N))
			}
			copy(dst.RawVector().Data, res)
		}
	default:
		panic(fmt.Sprintf("cg: unsupported operator %T", op))
	}
}
