// Package cpu implements the reference numeric backend in pure Go.
package cpu

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/parallel"
)

// CPUBackend implements backend.Backend on *Array buffers.
type CPUBackend struct {
	parallel parallel.Config
}

var _ backend.Backend = (*CPUBackend)(nil)

func init() {
	backend.Register(New())
}

// New creates a new CPU backend using all cores for large kernels.
func New() *CPUBackend {
	return &CPUBackend{parallel: parallel.DefaultConfig()}
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{parallel: cfg}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Accepts reports whether x is a CPU array.
func (cpu *CPUBackend) Accepts(x backend.Native) bool {
	_, ok := x.(*Array)
	return ok
}

// IsAvailable always returns true: the CPU backend is eager.
func (cpu *CPUBackend) IsAvailable(backend.Native) bool {
	return true
}

// StaticShape returns the array sizes.
func (cpu *CPUBackend) StaticShape(x backend.Native) []int {
	return cpu.array(x, "staticshape").Shape()
}

// Float64s returns a copy of the real values in row-major order.
func (cpu *CPUBackend) Float64s(x backend.Native) []float64 {
	return slices.Clone(cpu.array(x, "float64s").reals())
}

// Complex128s returns a copy of the values as complex numbers in row-major order.
func (cpu *CPUBackend) Complex128s(x backend.Native) []complex128 {
	return slices.Clone(cpu.array(x, "complex128s").complexes())
}

func (cpu *CPUBackend) array(x backend.Native, op string) *Array {
	a, ok := x.(*Array)
	if !ok {
		panic(fmt.Sprintf("%s: expected *cpu.Array, got %T", op, x))
	}
	return a
}

// Zeros creates a zero-filled array.
func (cpu *CPUBackend) Zeros(shape []int, dtype backend.DataType) backend.Native {
	return newArray(shape, dtype)
}

// Ones creates an array filled with ones.
func (cpu *CPUBackend) Ones(shape []int, dtype backend.DataType) backend.Native {
	a := newArray(shape, dtype)
	for i := range a.data {
		a.data[i] = 1
	}
	for i := range a.cplx {
		a.cplx[i] = 1
	}
	return a
}

// RandomNormal samples from the standard normal distribution.
func (cpu *CPUBackend) RandomNormal(shape []int, dtype backend.DataType) backend.Native {
	a := newArray(shape, dtype)
	for i := range a.data {
		a.data[i] = rand.NormFloat64()
	}
	for i := range a.cplx {
		a.cplx[i] = complex(rand.NormFloat64(), 0)
	}
	return a.quantize()
}

// RandomUniform samples uniformly from [0, 1).
func (cpu *CPUBackend) RandomUniform(shape []int, dtype backend.DataType) backend.Native {
	a := newArray(shape, dtype)
	for i := range a.data {
		a.data[i] = rand.Float64()
	}
	for i := range a.cplx {
		a.cplx[i] = complex(rand.Float64(), 0)
	}
	return a.quantize()
}

// FromFloat64s creates an array holding a copy of values.
func (cpu *CPUBackend) FromFloat64s(values []float64, shape []int, dtype backend.DataType) backend.Native {
	a := newArray(shape, dtype)
	if len(values) != a.NumElements() {
		panic(fmt.Sprintf("fromfloat64s: shape %v requires %d elements, but got %d", shape, a.NumElements(), len(values)))
	}
	if dtype.IsComplex() {
		for i, v := range values {
			a.cplx[i] = complex(v, 0)
		}
	} else {
		copy(a.data, values)
	}
	return a.quantize()
}

// FromComplex128s creates an array holding a copy of values. A real dtype keeps the real parts.
func (cpu *CPUBackend) FromComplex128s(values []complex128, shape []int, dtype backend.DataType) backend.Native {
	a := newArray(shape, dtype)
	if len(values) != a.NumElements() {
		panic(fmt.Sprintf("fromcomplex128s: shape %v requires %d elements, but got %d", shape, a.NumElements(), len(values)))
	}
	if dtype.IsComplex() {
		copy(a.cplx, values)
	} else {
		for i, v := range values {
			a.data[i] = real(v)
		}
	}
	return a.quantize()
}

// Meshgrid returns one Float64 array per axis; array k holds axes[k][i_k] at index (i_0, ..., i_n).
func (cpu *CPUBackend) Meshgrid(axes ...[]float64) []backend.Native {
	shape := make([]int, len(axes))
	for i, ax := range axes {
		shape[i] = len(ax)
	}
	strides := computeStrides(shape)
	out := make([]backend.Native, len(axes))
	for k, ax := range axes {
		a := newArray(shape, backend.Float64)
		coord := make([]int, len(shape))
		for i := range a.data {
			unravel(i, strides, coord)
			a.data[i] = ax[coord[k]]
		}
		out[k] = a
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
