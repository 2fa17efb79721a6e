package tensor_test

import (
	"testing"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/shape"
	"github.com/ajrox090/PhiFlow/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFFT_Impulse(t *testing.T) {
	x := must.M1(tensor.Wrap([]float64{1, 0, 0, 0}, shape.Make(shape.S("x", 4)), tensor.WithDType(backend.Float64)))

	k := must.M1(tensor.FFT(x))
	assert.True(t, k.DType().IsComplex())
	assert.Equal(t, []complex128{1, 1, 1, 1}, must.M1(tensor.Complex128s(k)))
}

func TestFFT_RoundTrip(t *testing.T) {
	x := must.M1(tensor.Wrap(seq(24, 1), shape.Make(shape.B("b", 2), shape.S("x", 3), shape.S("y", 2), shape.C("c", 2)), tensor.WithDType(backend.Float64)))

	k := must.M1(tensor.FFT(x))
	assert.True(t, k.Shape().SameDims(x.Shape()))
	back := must.M1(tensor.IFFT(k))
	require.NoError(t, tensor.AssertClose(must.M1(tensor.Real(back)), x, 1e-9, 1e-9))

	// The zero frequency holds the sum over the spatial dimensions.
	dc := must.M1(tensor.Slice(must.M1(tensor.Slice(must.M1(tensor.Real(k)), "x", 0, 1)), "y", 0, 1))
	sum := must.M1(tensor.Sum(x, tensor.On("x", "y")))
	require.NoError(t, tensor.AssertClose(must.M1(tensor.Sum(dc, tensor.On("x", "y"))), sum, 1e-9, 1e-9))
}

func TestFFT_NoSpatial(t *testing.T) {
	x := must.M1(tensor.Wrap([]float64{1, 2}, shape.Make(shape.B("b", 2))))
	k := must.M1(tensor.FFT(x))
	assert.True(t, k.DType().IsComplex())
	assert.Equal(t, []complex128{1, 2}, must.M1(tensor.Complex128s(k)))
}

func TestFFT_VaryingStack(t *testing.T) {
	a := must.M1(tensor.Wrap([]float64{1, 0}, shape.Make(shape.S("x", 2)), tensor.WithDType(backend.Float64)))
	b := must.M1(tensor.Wrap([]float64{1, 0, 0}, shape.Make(shape.S("x", 3)), tensor.WithDType(backend.Float64)))
	s := must.M1(tensor.BatchStack([]tensor.Tensor{a, b}, "k"))

	k := must.M1(tensor.FFT(s))
	parts := must.M1(k.Unstack("k"))
	require.Len(t, parts, 2)
	assert.Equal(t, []complex128{1, 1, 1}, must.M1(tensor.Complex128s(parts[1])))
}
