package cpu

import (
	"github.com/ajrox090/PhiFlow/internal/backend"
)

// Cast converts x to dtype. Complex to real keeps the real part.
func (cpu *CPUBackend) Cast(x backend.Native, dtype backend.DataType) backend.Native {
	a := cpu.array(x, "cast")
	if a.dtype == dtype {
		return x
	}
	out := newArray(a.shape, dtype)
	switch {
	case dtype.IsComplex():
		copy(out.cplx, a.complexes())
	default:
		copy(out.data, a.reals())
	}
	return out.quantize()
}

// ToFloat converts x to a float type of the given precision. Complex inputs keep their
// family and adopt the precision.
func (cpu *CPUBackend) ToFloat(x backend.Native, bits int) backend.Native {
	a := cpu.array(x, "tofloat")
	if a.dtype.IsComplex() {
		return cpu.Cast(x, backend.WithBits(a.dtype, bits))
	}
	return cpu.Cast(x, backend.FloatType(bits))
}

// ToInt truncates x towards zero.
func (cpu *CPUBackend) ToInt(x backend.Native, int64 bool) backend.Native {
	if int64 {
		return cpu.Cast(x, backend.Int64)
	}
	return cpu.Cast(x, backend.Int32)
}

// ToComplex converts x to the complex type matching its precision.
func (cpu *CPUBackend) ToComplex(x backend.Native) backend.Native {
	a := cpu.array(x, "tocomplex")
	return cpu.Cast(x, backend.ComplexType(a.dtype))
}
