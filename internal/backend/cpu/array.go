package cpu

import (
	"fmt"
	"math"
	"slices"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/x448/float16"
)

// Array is the native buffer of the CPU backend.
//
// Real types (floats, integers, bools) are stored as float64 values quantized to the dtype;
// complex types are stored as complex128. Data is dense and row-major.
type Array struct {
	shape []int
	dtype backend.DataType
	data  []float64
	cplx  []complex128
}

var _ backend.Native = (*Array)(nil)

// newArray allocates a zero-filled array.
func newArray(shape []int, dtype backend.DataType) *Array {
	for i, d := range shape {
		if d < 0 {
			panic(fmt.Sprintf("new array: invalid dimension at index %d: %d", i, d))
		}
	}
	a := &Array{shape: slices.Clone(shape), dtype: dtype}
	n := numElements(shape)
	if dtype.IsComplex() {
		a.cplx = make([]complex128, n)
	} else {
		a.data = make([]float64, n)
	}
	return a
}

// Shape returns the array's sizes.
func (a *Array) Shape() []int { return slices.Clone(a.shape) }

// DType returns the element type.
func (a *Array) DType() backend.DataType { return a.dtype }

// NumElements returns the total number of elements.
func (a *Array) NumElements() int { return numElements(a.shape) }

// String returns a short description of the array.
func (a *Array) String() string {
	return fmt.Sprintf("Array[%s]%v", a.dtype, a.shape)
}

// reals returns the values as float64, dropping imaginary parts.
func (a *Array) reals() []float64 {
	if !a.dtype.IsComplex() {
		return a.data
	}
	out := make([]float64, len(a.cplx))
	for i, v := range a.cplx {
		out[i] = real(v)
	}
	return out
}

// complexes returns the values as complex128.
func (a *Array) complexes() []complex128 {
	if a.dtype.IsComplex() {
		return a.cplx
	}
	out := make([]complex128, len(a.data))
	for i, v := range a.data {
		out[i] = complex(v, 0)
	}
	return out
}

// quantize rounds every value to the precision of the dtype.
func (a *Array) quantize() *Array {
	switch a.dtype {
	case backend.Float64, backend.Complex128:
		return a
	case backend.Complex64:
		for i, v := range a.cplx {
			a.cplx[i] = complex(float64(float32(real(v))), float64(float32(imag(v))))
		}
		return a
	}
	for i, v := range a.data {
		a.data[i] = quantize(v, a.dtype)
	}
	return a
}

func quantize(v float64, dtype backend.DataType) float64 {
	switch dtype {
	case backend.Float16:
		return float64(float16.Fromfloat32(float32(v)).Float32())
	case backend.Float32:
		return float64(float32(v))
	case backend.Int32:
		if math.IsNaN(v) {
			return 0
		}
		return float64(int32(math.Trunc(v)))
	case backend.Int64:
		if math.IsNaN(v) {
			return 0
		}
		return math.Trunc(v)
	case backend.Bool:
		if v != 0 {
			return 1
		}
		return 0
	default:
		return v
	}
}

func numElements(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// computeStrides calculates row-major strides for the shape.
func computeStrides(shape []int) []int {
	strides := make([]int, len(shape))
	if len(shape) == 0 {
		return strides
	}
	strides[len(shape)-1] = 1
	for i := len(shape) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * shape[i+1]
	}
	return strides
}

// unravel writes the multi-dimensional coordinate of flat index i into coord.
func unravel(i int, strides, coord []int) {
	for d, s := range strides {
		if s == 0 {
			coord[d] = 0
			continue
		}
		coord[d] = i / s
		i %= s
	}
}

func ravel(coord, strides []int) int {
	idx := 0
	for d, c := range coord {
		idx += c * strides[d]
	}
	return idx
}
