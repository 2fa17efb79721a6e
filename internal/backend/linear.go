package backend

// LinearOperator is the system operator of a linear solve, acting on one vector at a time.
// Implementations: DenseMatrix, SparseMatrix, OperatorFunc.
type LinearOperator interface {
	// Dims returns the number of rows and columns.
	Dims() (rows, cols int)
}

// DenseMatrix is an explicit (rows, cols) matrix buffer.
type DenseMatrix struct {
	Matrix Native
}

// Dims implements LinearOperator.
func (m DenseMatrix) Dims() (int, int) {
	s := m.Matrix.Shape()
	return s[0], s[1]
}

// SparseMatrix is a matrix in coordinate format.
type SparseMatrix struct {
	RowCount, ColCount int
	Rows, Cols         []int
	Values             []float64
}

// Dims implements LinearOperator.
func (m *SparseMatrix) Dims() (int, int) { return m.RowCount, m.ColCount }

// MulVec computes dst = m * x.
func (m *SparseMatrix) MulVec(dst, x []float64) {
	clear(dst)
	for i, v := range m.Values {
		dst[m.Rows[i]] += v * x[m.Cols[i]]
	}
}

// OperatorFunc applies an arbitrary linear function to a flat vector buffer of length N.
type OperatorFunc struct {
	N     int
	Apply func(x Native) Native
}

// Dims implements LinearOperator.
func (f OperatorFunc) Dims() (int, int) { return f.N, f.N }

// CGParams configures a conjugate gradient solve. The solve stops once the residual norm
// drops to max(RelTol * |y|, AbsTol) or after MaxIterations.
type CGParams struct {
	RelTol, AbsTol float64
	MaxIterations  int
}

// CGResult holds per-row outcomes of a batched conjugate gradient solve.
type CGResult struct {
	Converged  Native // (B,) bool
	X          Native // (B, N)
	Iterations Native // (B,) int32
}

// Duplicates selects how Scatter combines values written to the same index.
type Duplicates string

// Duplicate handling modes.
const (
	DuplicatesUndefined Duplicates = "undefined" // Any one of the values wins.
	DuplicatesAdd       Duplicates = "add"
	DuplicatesMean      Duplicates = "mean"
	DuplicatesAny       Duplicates = "any" // Logical or.
)

// Outside selects how Scatter treats indices outside the target buffer.
type Outside string

// Out-of-range handling modes.
const (
	OutsideDiscard   Outside = "discard"
	OutsideClamp     Outside = "clamp"
	OutsideUndefined Outside = "undefined"
)

// ScatterMode combines duplicate and out-of-range handling.
type ScatterMode struct {
	Duplicates Duplicates
	Outside    Outside
}
