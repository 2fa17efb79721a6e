// Copyright 2025 PhiFlow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/ajrox090/PhiFlow/internal/tensor"
)

// BroadcastOp calls op once per slice of the iteration dimensions and stacks the results.
// With iterDims nil, every dimension along which an operand is a non-uniform stack is
// iterated.
func BroadcastOp(op func(ts ...Tensor) (Tensor, error), tensors []Tensor, iterDims []string) (Tensor, error) {
	return tensor.BroadcastOp(op, tensors, iterDims)
}

// Elementwise operations. Operands are broadcast by dimension name.

// Add returns a + b.
//
// Example:
//
//	x, _ := tensor.Wrap([]float64{1, 2, 3}, tensor.NewShape(tensor.S("x", 3)))
//	y, _ := tensor.Wrap([]float64{10, 20}, tensor.NewShape(tensor.S("y", 2)))
//	z, _ := tensor.Add(x, y) // (x=3, y=2)
func Add(a, b Tensor) (Tensor, error) { return tensor.Add(a, b) }

// Sub returns a - b.
func Sub(a, b Tensor) (Tensor, error) { return tensor.Sub(a, b) }

// Mul returns a * b.
func Mul(a, b Tensor) (Tensor, error) { return tensor.Mul(a, b) }

// Div returns a / b.
func Div(a, b Tensor) (Tensor, error) { return tensor.Div(a, b) }

// Pow returns a ** b.
func Pow(a, b Tensor) (Tensor, error) { return tensor.Pow(a, b) }

// Mod returns the floored remainder of a / b.
func Mod(a, b Tensor) (Tensor, error) { return tensor.Mod(a, b) }

// Maximum returns the elementwise maximum.
func Maximum(a, b Tensor) (Tensor, error) { return tensor.Maximum(a, b) }

// Minimum returns the elementwise minimum.
func Minimum(a, b Tensor) (Tensor, error) { return tensor.Minimum(a, b) }

// DivideNoNaN returns a / b, or 0 where b is 0.
func DivideNoNaN(a, b Tensor) (Tensor, error) { return tensor.DivideNoNaN(a, b) }

// Greater returns a > b.
func Greater(a, b Tensor) (Tensor, error) { return tensor.Greater(a, b) }

// GreaterEqual returns a >= b.
func GreaterEqual(a, b Tensor) (Tensor, error) { return tensor.GreaterEqual(a, b) }

// Less returns a < b.
func Less(a, b Tensor) (Tensor, error) { return tensor.Less(a, b) }

// LessEqual returns a <= b.
func LessEqual(a, b Tensor) (Tensor, error) { return tensor.LessEqual(a, b) }

// Equal returns a == b.
func Equal(a, b Tensor) (Tensor, error) { return tensor.Equal(a, b) }

// NotEqual returns a != b.
func NotEqual(a, b Tensor) (Tensor, error) { return tensor.NotEqual(a, b) }

// And returns the logical and.
func And(a, b Tensor) (Tensor, error) { return tensor.And(a, b) }

// Or returns the logical or.
func Or(a, b Tensor) (Tensor, error) { return tensor.Or(a, b) }

// Where picks a where condition holds and b elsewhere.
func Where(condition, a, b Tensor) (Tensor, error) { return tensor.Where(condition, a, b) }

// Clip limits x to [lo, hi].
func Clip(x, lo, hi Tensor) (Tensor, error) { return tensor.Clip(x, lo, hi) }

func Abs(x Tensor) (Tensor, error)      { return tensor.Abs(x) }
func Sign(x Tensor) (Tensor, error)     { return tensor.Sign(x) }
func Round(x Tensor) (Tensor, error)    { return tensor.Round(x) }
func Ceil(x Tensor) (Tensor, error)     { return tensor.Ceil(x) }
func Floor(x Tensor) (Tensor, error)    { return tensor.Floor(x) }
func Sqrt(x Tensor) (Tensor, error)     { return tensor.Sqrt(x) }
func Exp(x Tensor) (Tensor, error)      { return tensor.Exp(x) }
func Log(x Tensor) (Tensor, error)      { return tensor.Log(x) }
func Sin(x Tensor) (Tensor, error)      { return tensor.Sin(x) }
func Cos(x Tensor) (Tensor, error)      { return tensor.Cos(x) }
func Neg(x Tensor) (Tensor, error)      { return tensor.Neg(x) }
func Not(x Tensor) (Tensor, error)      { return tensor.Not(x) }
func IsFinite(x Tensor) (Tensor, error) { return tensor.IsFinite(x) }
func Real(x Tensor) (Tensor, error)     { return tensor.Real(x) }
func Imag(x Tensor) (Tensor, error)     { return tensor.Imag(x) }

// ToFloat converts x to the configured float type.
func ToFloat(x Tensor) (Tensor, error) { return tensor.ToFloat(x) }

// ToInt converts x to Int32, or Int64 if int64 is set, truncating toward zero.
func ToInt(x Tensor, int64 bool) (Tensor, error) { return tensor.ToInt(x, int64) }

// ToComplex converts x to the complex type matching its precision.
func ToComplex(x Tensor) (Tensor, error) { return tensor.ToComplex(x) }

// Cast converts x to dtype.
func Cast(x Tensor, dtype DataType) (Tensor, error) { return tensor.Cast(x, dtype) }

// Reductions

// Dims selects the dimensions a reduction removes. The zero value selects none.
type Dims = tensor.Dims

// Reduction is a reduction over the variants of Tensor.
type Reduction = tensor.Reduction

// AllDims selects every dimension.
func AllDims() Dims { return tensor.AllDims() }

// On selects the named dimensions. Names not present are ignored.
func On(names ...string) Dims { return tensor.On(names...) }

// OnShape selects the dimensions of s.
func OnShape(s Shape) Dims { return tensor.OnShape(s) }

// SeqDim selects the sequence dimension of Reduction.ApplySeq.
func SeqDim() Dims { return tensor.SeqDim() }

// Sum adds the values along dims.
//
// Example:
//
//	total, err := tensor.Sum(x, tensor.AllDims())
func Sum(value Tensor, dims Dims) (Tensor, error)  { return tensor.Sum(value, dims) }
func Prod(value Tensor, dims Dims) (Tensor, error) { return tensor.Prod(value, dims) }
func Mean(value Tensor, dims Dims) (Tensor, error) { return tensor.Mean(value, dims) }
func Std(value Tensor, dims Dims) (Tensor, error)  { return tensor.Std(value, dims) }
func Any(value Tensor, dims Dims) (Tensor, error)  { return tensor.Any(value, dims) }
func All(value Tensor, dims Dims) (Tensor, error)  { return tensor.All(value, dims) }
func Min(value Tensor, dims Dims) (Tensor, error)  { return tensor.Min(value, dims) }
func Max(value Tensor, dims Dims) (Tensor, error)  { return tensor.Max(value, dims) }
