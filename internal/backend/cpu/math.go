package cpu

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/parallel"
)

// unaryKernel describes an element-wise unary operation.
type unaryKernel struct {
	name   string
	real   func(float64) float64
	cplx   func(complex128) complex128 // nil if undefined on complex values
	result func(dt backend.DataType) backend.DataType
}

func (cpu *CPUBackend) unary(k unaryKernel, x backend.Native) backend.Native {
	a := cpu.array(x, k.name)
	outDt := a.dtype
	if k.result != nil {
		outDt = k.result(a.dtype)
	}
	out := newArray(a.shape, outDt)
	n := out.NumElements()
	if a.dtype.IsComplex() {
		if k.cplx == nil {
			panic(fmt.Sprintf("%s: unsupported dtype %s", k.name, a.dtype))
		}
		parallel.Chunks(n, func(start, end int) {
			for i := start; i < end; i++ {
				v := k.cplx(a.cplx[i])
				if outDt.IsComplex() {
					out.cplx[i] = v
				} else {
					out.data[i] = real(v)
				}
			}
		}, cpu.parallel)
		return out.quantize()
	}
	parallel.Chunks(n, func(start, end int) {
		for i := start; i < end; i++ {
			v := k.real(a.data[i])
			if outDt.IsComplex() {
				out.cplx[i] = complex(v, 0)
			} else {
				out.data[i] = v
			}
		}
	}, cpu.parallel)
	return out.quantize()
}

func realResult(dt backend.DataType) backend.DataType {
	switch dt {
	case backend.Complex64:
		return backend.Float32
	case backend.Complex128:
		return backend.Float64
	default:
		return dt
	}
}

// Abs computes |x|. Complex inputs yield their real magnitude.
func (cpu *CPUBackend) Abs(x backend.Native) backend.Native {
	return cpu.unary(unaryKernel{
		name:   "abs",
		real:   math.Abs,
		cplx:   func(v complex128) complex128 { return complex(cmplx.Abs(v), 0) },
		result: realResult,
	}, x)
}

// Sign returns -1, 0 or 1 depending on the sign of x.
func (cpu *CPUBackend) Sign(x backend.Native) backend.Native {
	return cpu.unary(unaryKernel{
		name: "sign",
		real: func(v float64) float64 {
			switch {
			case v > 0:
				return 1
			case v < 0:
				return -1
			default:
				return v
			}
		},
	}, x)
}

// Round rounds half to even.
func (cpu *CPUBackend) Round(x backend.Native) backend.Native {
	return cpu.unary(unaryKernel{name: "round", real: math.RoundToEven}, x)
}

// Ceil computes the ceiling of x.
func (cpu *CPUBackend) Ceil(x backend.Native) backend.Native {
	return cpu.unary(unaryKernel{name: "ceil", real: math.Ceil}, x)
}

// Floor computes the floor of x.
func (cpu *CPUBackend) Floor(x backend.Native) backend.Native {
	return cpu.unary(unaryKernel{name: "floor", real: math.Floor}, x)
}

// Sqrt computes the square root. Integer inputs produce floats.
func (cpu *CPUBackend) Sqrt(x backend.Native) backend.Native {
	return cpu.unary(unaryKernel{name: "sqrt", real: math.Sqrt, cplx: cmplx.Sqrt, result: floatResult}, x)
}

// Exp computes e**x.
func (cpu *CPUBackend) Exp(x backend.Native) backend.Native {
	return cpu.unary(unaryKernel{name: "exp", real: math.Exp, cplx: cmplx.Exp, result: floatResult}, x)
}

// Log computes the natural logarithm.
func (cpu *CPUBackend) Log(x backend.Native) backend.Native {
	return cpu.unary(unaryKernel{name: "log", real: math.Log, cplx: cmplx.Log, result: floatResult}, x)
}

// Sin computes the sine.
func (cpu *CPUBackend) Sin(x backend.Native) backend.Native {
	return cpu.unary(unaryKernel{name: "sin", real: math.Sin, cplx: cmplx.Sin, result: floatResult}, x)
}

// Cos computes the cosine.
func (cpu *CPUBackend) Cos(x backend.Native) backend.Native {
	return cpu.unary(unaryKernel{name: "cos", real: math.Cos, cplx: cmplx.Cos, result: floatResult}, x)
}

// Neg computes -x.
func (cpu *CPUBackend) Neg(x backend.Native) backend.Native {
	return cpu.unary(unaryKernel{
		name: "neg",
		real: func(v float64) float64 { return -v },
		cplx: func(v complex128) complex128 { return -v },
	}, x)
}

// Not computes the logical negation; the result is boolean.
func (cpu *CPUBackend) Not(x backend.Native) backend.Native {
	return cpu.unary(unaryKernel{
		name:   "not",
		real:   func(v float64) float64 { return fromBool(v == 0) },
		cplx:   func(v complex128) complex128 { return fromBoolC(v == 0) },
		result: boolResult,
	}, x)
}

// IsFinite reports which values are neither infinite nor NaN.
func (cpu *CPUBackend) IsFinite(x backend.Native) backend.Native {
	return cpu.unary(unaryKernel{
		name:   "isfinite",
		real:   func(v float64) float64 { return fromBool(isFinite(v)) },
		cplx:   func(v complex128) complex128 { return fromBoolC(isFinite(real(v)) && isFinite(imag(v))) },
		result: boolResult,
	}, x)
}

// Real returns the real part. Real inputs are returned unchanged.
func (cpu *CPUBackend) Real(x backend.Native) backend.Native {
	if !cpu.array(x, "real").dtype.IsComplex() {
		return x
	}
	return cpu.unary(unaryKernel{
		name:   "real",
		cplx:   func(v complex128) complex128 { return complex(real(v), 0) },
		result: realResult,
	}, x)
}

// Imag returns the imaginary part. Real inputs yield zeros.
func (cpu *CPUBackend) Imag(x backend.Native) backend.Native {
	a := cpu.array(x, "imag")
	if !a.dtype.IsComplex() {
		return newArray(a.shape, a.dtype)
	}
	return cpu.unary(unaryKernel{
		name:   "imag",
		cplx:   func(v complex128) complex128 { return complex(imag(v), 0) },
		result: realResult,
	}, x)
}
