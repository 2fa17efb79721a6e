// Package backend defines the contract between the named-dimension tensor layer and the
// numeric backends that execute kernels on flat native buffers.
//
// The tensor layer never touches buffer contents directly. It decides which buffers to feed
// a Backend, in which axis order, and how to reassemble the results.
//
// Backends panic on misuse ("op: reason"): the tensor layer validates names and sizes before
// a kernel is reached, so a panic here is a programming error.
package backend

// Native is a backend-owned buffer with a positional shape.
type Native interface {
	// Shape returns the positional sizes of the buffer.
	Shape() []int
	// DType returns the element type.
	DType() DataType
}

// Backend defines the interface that all numeric backends must implement.
type Backend interface {
	// Metadata.
	Name() string                      // Backend name (e.g., "CPU").
	Accepts(x Native) bool             // Whether x is a buffer this backend can operate on.
	IsAvailable(x Native) bool         // Whether the values of x can be read right now.
	StaticShape(x Native) []int        // Positional sizes of x.
	Float64s(x Native) []float64       // Dense row-major readback of real values.
	Complex128s(x Native) []complex128 // Dense row-major readback, complex.

	// Creation.
	Zeros(shape []int, dtype DataType) Native
	Ones(shape []int, dtype DataType) Native
	RandomNormal(shape []int, dtype DataType) Native
	RandomUniform(shape []int, dtype DataType) Native
	FromFloat64s(values []float64, shape []int, dtype DataType) Native
	FromComplex128s(values []complex128, shape []int, dtype DataType) Native
	Meshgrid(axes ...[]float64) []Native // One buffer per axis, each of shape len(axes[0]) x ...

	// Element-wise unary operations.
	Abs(x Native) Native
	Sign(x Native) Native
	Round(x Native) Native
	Ceil(x Native) Native
	Floor(x Native) Native
	Sqrt(x Native) Native
	Exp(x Native) Native
	Log(x Native) Native
	Sin(x Native) Native
	Cos(x Native) Native
	Neg(x Native) Native
	Not(x Native) Native
	IsFinite(x Native) Native
	Real(x Native) Native
	Imag(x Native) Native
	ToFloat(x Native, bits int) Native
	ToInt(x Native, int64 bool) Native
	ToComplex(x Native) Native
	Cast(x Native, dtype DataType) Native

	// Element-wise binary operations with NumPy broadcasting of size-1 axes.
	Add(a, b Native) Native
	Sub(a, b Native) Native
	Mul(a, b Native) Native
	Div(a, b Native) Native
	Pow(a, b Native) Native
	Mod(a, b Native) Native
	Maximum(a, b Native) Native
	Minimum(a, b Native) Native
	DivideNoNaN(a, b Native) Native // a / b, zero where b == 0.
	Greater(a, b Native) Native
	GreaterEqual(a, b Native) Native
	Equal(a, b Native) Native
	NotEqual(a, b Native) Native
	And(a, b Native) Native
	Or(a, b Native) Native
	Where(condition, a, b Native) Native
	Clip(x, lo, hi Native) Native

	// Reductions over explicit axis positions. The reduced axes are removed.
	Sum(x Native, axes []int) Native
	Prod(x Native, axes []int) Native
	Mean(x Native, axes []int) Native
	Std(x Native, axes []int) Native
	Any(x Native, axes []int) Native
	All(x Native, axes []int) Native
	Min(x Native, axes []int) Native
	Max(x Native, axes []int) Native

	// Structural operations.
	Transpose(x Native, perm []int) Native
	Reshape(x Native, shape []int) Native
	Concat(xs []Native, axis int) Native
	ExpandDims(x Native, axis int) Native
	Tile(x Native, multiples []int) Native
	Slice(x Native, axis, start, stop int) Native
	Flip(x Native, axis int) Native
	Nonzero(x Native) Native // Indices of non-zero values, shape (count, rank).

	// GatherND looks up values of shape (B, s1..sd, C) at indices of shape (B, P, d) and
	// returns shape (B, P, C). A batch size of 1 broadcasts.
	GatherND(values, indices Native) Native
	// Scatter writes values of shape (B, P, C) at indices of shape (B, P, d) into a zero
	// buffer of shape (B, size..., C).
	Scatter(indices, values Native, size []int, mode ScatterMode) Native

	// FFT and IFFT transform the spatial axes 1..rank-2 of a (B, s..., C) buffer.
	FFT(x Native) Native
	IFFT(x Native) Native

	// ConjugateGradient solves op(x) = y for each row of y (shape (B, N)) starting at x0.
	ConjugateGradient(op LinearOperator, y, x0 Native, params CGParams) CGResult
}
