package tensor

import (
	"sync"
	"time"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Operator is the left-hand side of a linear system: a LinearFunction or a Matrix.
type Operator interface {
	operator()
}

// LinearFunction computes A(x). It receives x with the non-batch dimensions of the
// initial guess and must return a tensor of the same shape.
type LinearFunction func(x Tensor) (Tensor, error)

func (LinearFunction) operator() {}

// Matrix is an explicit system matrix. Values has exactly two dimensions: rows, then
// columns, each as large as the flattened non-batch dimensions of x.
type Matrix struct {
	Values Tensor
}

func (Matrix) operator() {}

// SolveSpec describes how to solve a system. LinearSolve is the only supported kind.
type SolveSpec interface {
	solveSpec()
}

// Solver names.
const (
	SolverCG = "CG"
)

// Bake modes for linear functions.
const (
	// BakeNone calls the function on every iteration.
	BakeNone = ""
	// BakeSparse probes the function once and solves with the extracted sparse matrix.
	BakeSparse = "sparse"
)

// LinearSolve configures a linear solve. Zero fields take their defaults.
type LinearSolve struct {
	Solver        string // "" or "CG"
	RelTol        float64
	AbsTol        float64
	MaxIterations int
	Bake          string
}

func (LinearSolve) solveSpec() {}

// Minimize describes an optimization problem. Solve rejects it.
type Minimize struct {
	Solver string
	AbsTol float64
}

func (Minimize) solveSpec() {}

// Solve defaults.
const (
	DefaultRelTol        = 1e-5
	DefaultAbsTol        = 1e-5
	DefaultMaxIterations = 1000
)

// SolveResult holds the solution and per-batch convergence information.
type SolveResult struct {
	X          Tensor
	Converged  Tensor // bool, batch dimensions only
	Iterations Tensor // int32, batch dimensions only
}

// Solve finds x with op(x) = y by conjugate gradient, starting at x0. Batch dimensions of y
// and x0 are solved independently.
//
// If some batch entry does not converge, the result is returned together with an error
// wrapping ErrNotConverged.
func Solve(op Operator, y, x0 Tensor, spec SolveSpec) (*SolveResult, error) {
	ls, ok := spec.(LinearSolve)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedSolver, "%T", spec)
	}
	if ls.Solver != "" && ls.Solver != SolverCG {
		return nil, errors.Wrapf(ErrUnsupportedSolver, "solver %q", ls.Solver)
	}
	if ls.Bake != BakeNone && ls.Bake != BakeSparse {
		return nil, errors.Wrapf(ErrUnsupportedSolver, "bake mode %q", ls.Bake)
	}
	params := backend.CGParams{RelTol: ls.RelTol, AbsTol: ls.AbsTol, MaxIterations: ls.MaxIterations}
	if params.RelTol == 0 {
		params.RelTol = DefaultRelTol
	}
	if params.AbsTol == 0 {
		params.AbsTol = DefaultAbsTol
	}
	if params.MaxIterations == 0 {
		params.MaxIterations = DefaultMaxIterations
	}

	vec := x0.Shape().NonBatch()
	if !y.Shape().NonBatch().SameDims(vec) {
		return nil, errors.Wrapf(shape.ErrShapeMismatch, "y %s and x0 %s differ in non-batch dimensions", y.Shape(), x0.Shape())
	}
	batch, err := y.Shape().Batch().Union(x0.Shape().Batch())
	if err != nil {
		return nil, err
	}
	yb, err := expandTo(y, batch)
	if err != nil {
		return nil, err
	}
	b, yn, err := standardForm(yb, batch, vec)
	if err != nil {
		return nil, err
	}
	_, xn, err := standardForm(x0, batch, vec)
	if err != nil {
		return nil, err
	}

	var applyErr error
	lin, err := linearOperator(b, op, vec, ls.Bake, func(err error) { applyErr = err })
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res := b.ConjugateGradient(lin, yn, xn, params)
	if applyErr != nil {
		return nil, applyErr
	}
	rows := b.StaticShape(yn)[0]
	klog.V(2).Infof("solve: %d system(s) of size %d, bake=%q, took %s", rows, vec.Volume(), ls.Bake, time.Since(start))

	xs, err := batch.Union(vec)
	if err != nil {
		return nil, err
	}
	result := &SolveResult{
		X:          reshaped(b, res.X, xs),
		Converged:  reshaped(b, res.Converged, batch),
		Iterations: reshaped(b, res.Iterations, batch),
	}
	all, err := All(result.Converged, AllDims())
	if err != nil {
		return nil, err
	}
	converged, err := Item(all)
	if err != nil {
		return nil, err
	}
	if converged == 0 {
		return result, errors.Wrapf(ErrNotConverged, "after %d iterations", params.MaxIterations)
	}
	return result, nil
}

// linearOperator converts op into a backend operator acting on flat vectors of the
// non-batch shape vec. The first error raised by a LinearFunction while solving is passed
// to fail; rows may be solved concurrently.
func linearOperator(b backend.Backend, op Operator, vec shape.Shape, bake string, fail func(error)) (backend.LinearOperator, error) {
	n := vec.Volume()
	switch op := op.(type) {
	case Matrix:
		m, err := materialize(op.Values)
		if err != nil {
			return nil, err
		}
		if sizes := m.shape.Sizes(); len(sizes) != 2 || sizes[0] != n || sizes[1] != n {
			return nil, errors.Wrapf(shape.ErrShapeMismatch, "matrix %s for vectors of size %d", m.shape, n)
		}
		return backend.DenseMatrix{Matrix: m.native}, nil

	case LinearFunction:
		apply := func(x backend.Native) (backend.Native, error) {
			out, err := op(reshaped(b, x, vec))
			if err != nil {
				return nil, err
			}
			if !out.Shape().SameDims(vec) {
				return nil, errors.Wrapf(shape.ErrShapeMismatch, "linear function mapped %s to %s", vec, out.Shape())
			}
			flat, err := out.Native(vec.Names()...)
			if err != nil {
				return nil, err
			}
			return b.Reshape(flat, []int{n}), nil
		}
		if bake == BakeSparse {
			return bakeSparse(b, n, apply)
		}
		var once sync.Once
		return backend.OperatorFunc{N: n, Apply: func(x backend.Native) backend.Native {
			out, err := apply(x)
			if err != nil {
				once.Do(func() { fail(err) })
				return b.Zeros([]int{n}, backend.Float64)
			}
			return out
		}}, nil

	default:
		return nil, errors.Wrapf(ErrUnsupportedSolver, "operator %T", op)
	}
}

// bakeSparse extracts the coordinate matrix of a linear function by applying it to every
// unit vector.
func bakeSparse(b backend.Backend, n int, apply func(backend.Native) (backend.Native, error)) (*backend.SparseMatrix, error) {
	start := time.Now()
	m := &backend.SparseMatrix{RowCount: n, ColCount: n}
	unit := make([]float64, n)
	for col := range n {
		unit[col] = 1
		out, err := apply(b.FromFloat64s(unit, []int{n}, backend.Float64))
		unit[col] = 0
		if err != nil {
			return nil, err
		}
		for row, v := range b.Float64s(out) {
			if v != 0 {
				m.Rows = append(m.Rows, row)
				m.Cols = append(m.Cols, col)
				m.Values = append(m.Values, v)
			}
		}
	}
	klog.V(2).Infof("baked %dx%d sparse matrix with %d entries in %s", n, n, len(m.Values), time.Since(start))
	return m, nil
}
