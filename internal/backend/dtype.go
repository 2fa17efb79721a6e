package backend

// DataType represents runtime type information for native buffers.
type DataType int

// Supported data types.
const (
	Float32 DataType = iota
	Float64
	Float16
	Int32
	Int64
	Bool
	Complex64
	Complex128
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float16:
		return 2
	case Float32, Int32:
		return 4
	case Float64, Int64, Complex64:
		return 8
	case Complex128:
		return 16
	case Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float16:
		return "float16"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Bool:
		return "bool"
	case Complex64:
		return "complex64"
	case Complex128:
		return "complex128"
	default:
		return "unknown"
	}
}

// IsFloat reports whether dt is a real floating point type.
func (dt DataType) IsFloat() bool {
	return dt == Float16 || dt == Float32 || dt == Float64
}

// IsInt reports whether dt is an integer type.
func (dt DataType) IsInt() bool {
	return dt == Int32 || dt == Int64
}

// IsComplex reports whether dt is a complex type.
func (dt DataType) IsComplex() bool {
	return dt == Complex64 || dt == Complex128
}

// Bits returns the precision in bits of the real component.
func (dt DataType) Bits() int {
	switch dt {
	case Float16:
		return 16
	case Float32, Int32, Complex64:
		return 32
	case Float64, Int64, Complex128:
		return 64
	default:
		return 1
	}
}

// rank orders type families for promotion: bool < int < float < complex.
func (dt DataType) rank() int {
	switch {
	case dt == Bool:
		return 0
	case dt.IsInt():
		return 1
	case dt.IsFloat():
		return 2
	default:
		return 3
	}
}

// Promote returns the result type of a binary operation on a and b: the wider family wins,
// and within a family the wider precision.
func Promote(a, b DataType) DataType {
	if a.rank() != b.rank() {
		if a.rank() < b.rank() {
			a, b = b, a
		}
		// a belongs to the wider family; keep at least b's precision when both are numeric.
		if b.rank() == 0 || b.Bits() <= a.Bits() {
			return a
		}
		return WithBits(a, b.Bits())
	}
	if a.Bits() >= b.Bits() {
		return a
	}
	return b
}

// WithBits returns the type of the same family as dt with the given precision.
func WithBits(dt DataType, bits int) DataType {
	switch {
	case dt.IsFloat():
		return FloatType(bits)
	case dt.IsInt():
		if bits > 32 {
			return Int64
		}
		return Int32
	case dt.IsComplex():
		if bits > 32 {
			return Complex128
		}
		return Complex64
	default:
		return dt
	}
}

// FloatType maps a precision in bits (16, 32, 64) to a float type.
func FloatType(bits int) DataType {
	switch {
	case bits <= 16:
		return Float16
	case bits <= 32:
		return Float32
	default:
		return Float64
	}
}

// ComplexType returns the complex type that holds values of dt without loss.
func ComplexType(dt DataType) DataType {
	if dt == Float64 || dt == Int64 || dt == Complex128 {
		return Complex128
	}
	return Complex64
}
