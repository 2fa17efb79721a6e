package cpu

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/parallel"
)

// binaryKernel describes an element-wise binary operation.
type binaryKernel struct {
	name   string
	real   func(a, b float64) float64
	cplx   func(a, b complex128) complex128 // nil if undefined on complex values
	result func(dt backend.DataType) backend.DataType
}

func (cpu *CPUBackend) binary(k binaryKernel, x, y backend.Native) backend.Native {
	a, b := cpu.array(x, k.name), cpu.array(y, k.name)
	shape := broadcastShapes(k.name, a.shape, b.shape)
	dt := backend.Promote(a.dtype, b.dtype)
	outDt := dt
	if k.result != nil {
		outDt = k.result(dt)
	}
	out := newArray(shape, outDt)
	idx := newBroadcastIndexer(shape, a.shape, b.shape)
	n := out.NumElements()

	if dt.IsComplex() {
		if k.cplx == nil {
			panic(fmt.Sprintf("%s: unsupported dtype %s", k.name, dt))
		}
		ca, cb := a.complexes(), b.complexes()
		parallel.Chunks(n, func(start, end int) {
			for i := start; i < end; i++ {
				v := k.cplx(ca[idx.index(0, i)], cb[idx.index(1, i)])
				if outDt.IsComplex() {
					out.cplx[i] = v
				} else {
					out.data[i] = real(v)
				}
			}
		}, cpu.parallel)
		return out.quantize()
	}

	ra, rb := a.data, b.data
	parallel.Chunks(n, func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = k.real(ra[idx.index(0, i)], rb[idx.index(1, i)])
		}
	}, cpu.parallel)
	return out.quantize()
}

func boolResult(backend.DataType) backend.DataType { return backend.Bool }

func floatResult(dt backend.DataType) backend.DataType {
	if dt.IsInt() || dt == backend.Bool {
		return backend.CurrentConfig().FloatType()
	}
	return dt
}

func fromBool(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func fromBoolC(b bool) complex128 {
	if b {
		return 1
	}
	return 0
}

// Add computes element-wise addition.
func (cpu *CPUBackend) Add(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{
		name: "add",
		real: func(x, y float64) float64 { return x + y },
		cplx: func(x, y complex128) complex128 { return x + y },
	}, a, b)
}

// Sub computes element-wise subtraction.
func (cpu *CPUBackend) Sub(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{
		name: "sub",
		real: func(x, y float64) float64 { return x - y },
		cplx: func(x, y complex128) complex128 { return x - y },
	}, a, b)
}

// Mul computes element-wise multiplication.
func (cpu *CPUBackend) Mul(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{
		name: "mul",
		real: func(x, y float64) float64 { return x * y },
		cplx: func(x, y complex128) complex128 { return x * y },
	}, a, b)
}

// Div computes element-wise true division. Integer inputs produce floats.
func (cpu *CPUBackend) Div(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{
		name:   "div",
		real:   func(x, y float64) float64 { return x / y },
		cplx:   func(x, y complex128) complex128 { return x / y },
		result: floatResult,
	}, a, b)
}

// Pow computes a ** b element-wise.
func (cpu *CPUBackend) Pow(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{
		name: "pow",
		real: math.Pow,
		cplx: cmplx.Pow,
	}, a, b)
}

// Mod computes the floored modulo; the result has the sign of the divisor.
func (cpu *CPUBackend) Mod(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{
		name: "mod",
		real: func(x, y float64) float64 {
			m := math.Mod(x, y)
			if m != 0 && (m < 0) != (y < 0) {
				m += y
			}
			return m
		},
	}, a, b)
}

// Maximum returns the element-wise maximum.
func (cpu *CPUBackend) Maximum(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{name: "maximum", real: math.Max}, a, b)
}

// Minimum returns the element-wise minimum.
func (cpu *CPUBackend) Minimum(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{name: "minimum", real: math.Min}, a, b)
}

// DivideNoNaN computes a / b, returning zero where b == 0.
func (cpu *CPUBackend) DivideNoNaN(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{
		name: "divide_no_nan",
		real: func(x, y float64) float64 {
			if y == 0 {
				return 0
			}
			return x / y
		},
		cplx: func(x, y complex128) complex128 {
			if y == 0 {
				return 0
			}
			return x / y
		},
		result: floatResult,
	}, a, b)
}

// Greater computes a > b.
func (cpu *CPUBackend) Greater(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{
		name:   "greater",
		real:   func(x, y float64) float64 { return fromBool(x > y) },
		result: boolResult,
	}, a, b)
}

// GreaterEqual computes a >= b.
func (cpu *CPUBackend) GreaterEqual(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{
		name:   "greater_equal",
		real:   func(x, y float64) float64 { return fromBool(x >= y) },
		result: boolResult,
	}, a, b)
}

// Equal computes a == b.
func (cpu *CPUBackend) Equal(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{
		name:   "equal",
		real:   func(x, y float64) float64 { return fromBool(x == y) },
		cplx:   func(x, y complex128) complex128 { return fromBoolC(x == y) },
		result: boolResult,
	}, a, b)
}

// NotEqual computes a != b.
func (cpu *CPUBackend) NotEqual(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{
		name:   "not_equal",
		real:   func(x, y float64) float64 { return fromBool(x != y) },
		cplx:   func(x, y complex128) complex128 { return fromBoolC(x != y) },
		result: boolResult,
	}, a, b)
}

// And computes the logical and of a and b.
func (cpu *CPUBackend) And(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{
		name:   "and",
		real:   func(x, y float64) float64 { return fromBool(x != 0 && y != 0) },
		result: boolResult,
	}, a, b)
}

// Or computes the logical or of a and b.
func (cpu *CPUBackend) Or(a, b backend.Native) backend.Native {
	return cpu.binary(binaryKernel{
		name:   "or",
		real:   func(x, y float64) float64 { return fromBool(x != 0 || y != 0) },
		result: boolResult,
	}, a, b)
}

// Where selects a where condition is non-zero and b elsewhere, broadcasting all three.
func (cpu *CPUBackend) Where(condition, a, b backend.Native) backend.Native {
	c, x, y := cpu.array(condition, "where"), cpu.array(a, "where"), cpu.array(b, "where")
	shape := broadcastShapes("where", c.shape, x.shape, y.shape)
	dt := backend.Promote(x.dtype, y.dtype)
	out := newArray(shape, dt)
	idx := newBroadcastIndexer(shape, c.shape, x.shape, y.shape)
	cond := c.reals()
	if dt.IsComplex() {
		cx, cy := x.complexes(), y.complexes()
		for i := range out.cplx {
			if cond[idx.index(0, i)] != 0 {
				out.cplx[i] = cx[idx.index(1, i)]
			} else {
				out.cplx[i] = cy[idx.index(2, i)]
			}
		}
		return out.quantize()
	}
	parallel.Chunks(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			if cond[idx.index(0, i)] != 0 {
				out.data[i] = x.data[idx.index(1, i)]
			} else {
				out.data[i] = y.data[idx.index(2, i)]
			}
		}
	}, cpu.parallel)
	return out.quantize()
}

// Clip limits x to [lo, hi] element-wise.
func (cpu *CPUBackend) Clip(x, lo, hi backend.Native) backend.Native {
	v, l, h := cpu.array(x, "clip"), cpu.array(lo, "clip"), cpu.array(hi, "clip")
	dt := backend.Promote(v.dtype, backend.Promote(l.dtype, h.dtype))
	if dt.IsComplex() {
		panic(fmt.Sprintf("clip: unsupported dtype %s", dt))
	}
	shape := broadcastShapes("clip", v.shape, l.shape, h.shape)
	out := newArray(shape, dt)
	idx := newBroadcastIndexer(shape, v.shape, l.shape, h.shape)
	parallel.Chunks(len(out.data), func(start, end int) {
		for i := start; i < end; i++ {
			out.data[i] = math.Min(math.Max(v.data[idx.index(0, i)], l.data[idx.index(1, i)]), h.data[idx.index(2, i)])
		}
	}, cpu.parallel)
	return out.quantize()
}
