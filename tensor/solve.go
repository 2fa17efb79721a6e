// Copyright 2025 PhiFlow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/ajrox090/PhiFlow/internal/tensor"
)

type (
	// Operator is a LinearFunction or a Matrix.
	Operator = tensor.Operator
	// LinearFunction computes A(x).
	LinearFunction = tensor.LinearFunction
	// Matrix is an explicit (rows, columns) system matrix.
	Matrix = tensor.Matrix
	// SolveSpec is LinearSolve or Minimize.
	SolveSpec = tensor.SolveSpec
	// LinearSolve configures a conjugate gradient solve.
	LinearSolve = tensor.LinearSolve
	// Minimize describes an optimization. Solve rejects it.
	Minimize = tensor.Minimize
	// SolveResult holds the solution and per-batch convergence.
	SolveResult = tensor.SolveResult
)

// Solver and bake names.
const (
	SolverCG   = tensor.SolverCG
	BakeNone   = tensor.BakeNone
	BakeSparse = tensor.BakeSparse
)

// Solve finds x with op(x) = y, starting at x0.
//
// Example:
//
//	res, err := tensor.Solve(tensor.LinearFunction(laplace), y, x0, tensor.LinearSolve{RelTol: 1e-6})
//	if errors.Is(err, tensor.ErrNotConverged) {
//	    // res.X holds the last iterate.
//	}
func Solve(op Operator, y, x0 Tensor, spec SolveSpec) (*SolveResult, error) {
	return tensor.Solve(op, y, x0, spec)
}

// The following operations are reserved and return an error wrapping ErrNotImplemented.

func ReshapePattern(value Tensor, pattern string) (Tensor, error) {
	return tensor.ReshapePattern(value, pattern)
}
func Einsum(equation string, values ...Tensor) (Tensor, error) {
	return tensor.Einsum(equation, values...)
}
func Dot(a Tensor, aDims []string, b Tensor, bDims []string) (Tensor, error) {
	return tensor.Dot(a, aDims, b, bDims)
}
func MatMul(a, b Tensor) (Tensor, error) { return tensor.MatMul(a, b) }
func Conv(value, kernel Tensor, mode Extrapolation) (Tensor, error) {
	return tensor.Conv(value, kernel, mode)
}
func Tile(value Tensor, multiples map[string]int) (Tensor, error) {
	return tensor.Tile(value, multiples)
}
func BooleanMask(value Tensor, dim string, mask Tensor) (Tensor, error) {
	return tensor.BooleanMask(value, dim, mask)
}
func SparseTensor(indices, values, dense Tensor) (Tensor, error) {
	return tensor.SparseTensor(indices, values, dense)
}
func WithCustomGradient(f, gradient func(...Tensor) (Tensor, error)) (func(...Tensor) (Tensor, error), error) {
	return tensor.WithCustomGradient(f, gradient)
}
