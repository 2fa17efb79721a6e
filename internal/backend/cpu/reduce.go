package cpu

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/ajrox090/PhiFlow/internal/backend"
)

// reductionLayout maps input flat indices to output flat indices for a reduction over axes.
type reductionLayout struct {
	outShape   []int
	inStrides  []int
	outStrides []int // per input axis, zero for reduced axes
	count      int   // number of input elements per output element
}

func newReductionLayout(op string, shape, axes []int) reductionLayout {
	reduced := make([]bool, len(shape))
	for _, ax := range axes {
		if ax < 0 || ax >= len(shape) {
			panic(fmt.Sprintf("%s: axis %d out of range for %dD array", op, ax, len(shape)))
		}
		reduced[ax] = true
	}
	l := reductionLayout{inStrides: computeStrides(shape), count: 1}
	for i, d := range shape {
		if reduced[i] {
			l.count *= d
		} else {
			l.outShape = append(l.outShape, d)
		}
	}
	compact := computeStrides(l.outShape)
	l.outStrides = make([]int, len(shape))
	j := 0
	for i := range shape {
		if !reduced[i] {
			l.outStrides[i] = compact[j]
			j++
		}
	}
	if l.outShape == nil {
		l.outShape = []int{}
	}
	return l
}

func (l reductionLayout) outIndex(i int) int {
	return computeFlatIndex(i, l.inStrides, l.outStrides)
}

// reduceAxes folds the values of data along the reduced axes of the layout.
func reduceAxes[T float64 | complex128](l reductionLayout, data []T, init T, step func(acc, v T) T) []T {
	out := make([]T, numElements(l.outShape))
	for i := range out {
		out[i] = init
	}
	for i, v := range data {
		o := l.outIndex(i)
		out[o] = step(out[o], v)
	}
	return out
}

func sumResultType(dt backend.DataType) backend.DataType {
	if dt == backend.Bool {
		return backend.Int64
	}
	return dt
}

func meanResultType(dt backend.DataType) backend.DataType {
	if dt == backend.Bool || dt.IsInt() {
		return backend.Float64
	}
	return dt
}

func (cpu *CPUBackend) foldReal(op string, x backend.Native, axes []int, outDt backend.DataType,
	init float64, step func(acc, v float64) float64,
) (*Array, reductionLayout) {
	a := cpu.array(x, op)
	l := newReductionLayout(op, a.shape, axes)
	out := &Array{shape: l.outShape, dtype: outDt, data: reduceAxes(l, a.reals(), init, step)}
	return out, l
}

func (cpu *CPUBackend) foldComplex(op string, x backend.Native, axes []int,
	init complex128, step func(acc, v complex128) complex128,
) (*Array, reductionLayout) {
	a := cpu.array(x, op)
	l := newReductionLayout(op, a.shape, axes)
	out := &Array{shape: l.outShape, dtype: a.dtype, cplx: reduceAxes(l, a.cplx, init, step)}
	return out, l
}

// Sum adds the values along axes.
func (cpu *CPUBackend) Sum(x backend.Native, axes []int) backend.Native {
	if cpu.array(x, "sum").dtype.IsComplex() {
		out, _ := cpu.foldComplex("sum", x, axes, 0, func(acc, v complex128) complex128 { return acc + v })
		return out.quantize()
	}
	out, _ := cpu.foldReal("sum", x, axes, sumResultType(x.DType()), 0, func(acc, v float64) float64 { return acc + v })
	return out.quantize()
}

// Prod multiplies the values along axes.
func (cpu *CPUBackend) Prod(x backend.Native, axes []int) backend.Native {
	if cpu.array(x, "prod").dtype.IsComplex() {
		out, _ := cpu.foldComplex("prod", x, axes, 1, func(acc, v complex128) complex128 { return acc * v })
		return out.quantize()
	}
	out, _ := cpu.foldReal("prod", x, axes, sumResultType(x.DType()), 1, func(acc, v float64) float64 { return acc * v })
	return out.quantize()
}

// Mean averages the values along axes. Integer inputs produce Float64.
func (cpu *CPUBackend) Mean(x backend.Native, axes []int) backend.Native {
	if cpu.array(x, "mean").dtype.IsComplex() {
		out, l := cpu.foldComplex("mean", x, axes, 0, func(acc, v complex128) complex128 { return acc + v })
		for i := range out.cplx {
			out.cplx[i] /= complex(float64(l.count), 0)
		}
		return out.quantize()
	}
	out, l := cpu.foldReal("mean", x, axes, meanResultType(x.DType()), 0, func(acc, v float64) float64 { return acc + v })
	for i := range out.data {
		out.data[i] /= float64(l.count)
	}
	return out.quantize()
}

// Std computes the population standard deviation along axes.
func (cpu *CPUBackend) Std(x backend.Native, axes []int) backend.Native {
	a := cpu.array(x, "std")
	mean := cpu.array(cpu.Mean(x, axes), "std")
	l := newReductionLayout("std", a.shape, axes)
	var sq []float64
	if a.dtype.IsComplex() {
		mc := mean.cplx
		sq = make([]float64, len(a.cplx))
		for i, v := range a.cplx {
			d := cmplx.Abs(v - mc[l.outIndex(i)])
			sq[i] = d * d
		}
	} else {
		sq = make([]float64, len(a.data))
		for i, v := range a.data {
			d := v - mean.data[l.outIndex(i)]
			sq[i] = d * d
		}
	}
	variance := reduceAxes(l, sq, 0, func(acc, v float64) float64 { return acc + v })
	for i, v := range variance {
		variance[i] = math.Sqrt(v / float64(l.count))
	}
	out := &Array{shape: l.outShape, dtype: realResult(meanResultType(a.dtype)), data: variance}
	return out.quantize()
}

// Any reports whether any value along axes is non-zero.
func (cpu *CPUBackend) Any(x backend.Native, axes []int) backend.Native {
	out, _ := cpu.foldReal("any", cpu.Cast(x, backend.Bool), axes, backend.Bool, 0, math.Max)
	return out
}

// All reports whether all values along axes are non-zero.
func (cpu *CPUBackend) All(x backend.Native, axes []int) backend.Native {
	out, _ := cpu.foldReal("all", cpu.Cast(x, backend.Bool), axes, backend.Bool, 1, math.Min)
	return out
}

// Min returns the minimum along axes. Empty reductions yield +Inf.
func (cpu *CPUBackend) Min(x backend.Native, axes []int) backend.Native {
	if x.DType().IsComplex() {
		panic("min: unsupported dtype " + x.DType().String())
	}
	out, _ := cpu.foldReal("min", x, axes, x.DType(), math.Inf(1), math.Min)
	return out.quantize()
}

// Max returns the maximum along axes. Empty reductions yield -Inf.
func (cpu *CPUBackend) Max(x backend.Native, axes []int) backend.Native {
	if x.DType().IsComplex() {
		panic("max: unsupported dtype " + x.DType().String())
	}
	out, _ := cpu.foldReal("max", x, axes, x.DType(), math.Inf(-1), math.Max)
	return out.quantize()
}
