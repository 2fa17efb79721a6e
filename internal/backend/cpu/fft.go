package cpu

import (
	"fmt"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/parallel"
	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT computes the unnormalized discrete Fourier transform over the spatial axes of a
// (B, s..., C) array. The result is complex.
func (cpu *CPUBackend) FFT(x backend.Native) backend.Native {
	return cpu.fourier("fft", x, false)
}

// IFFT computes the inverse of FFT, normalized by 1/n per axis.
func (cpu *CPUBackend) IFFT(x backend.Native) backend.Native {
	return cpu.fourier("ifft", x, true)
}

func (cpu *CPUBackend) fourier(op string, x backend.Native, inverse bool) backend.Native {
	a := cpu.array(x, op)
	if len(a.shape) < 3 {
		panic(fmt.Sprintf("%s: expected (B, s..., C) array, got %v", op, a.shape))
	}
	dtype := backend.ComplexType(a.dtype)
	out := newArray(a.shape, dtype)
	copy(out.cplx, a.complexes())
	strides := computeStrides(a.shape)

	for axis := 1; axis < len(a.shape)-1; axis++ {
		n := a.shape[axis]
		if n <= 1 {
			continue
		}
		// Enumerate every line along axis by its starting offset.
		lineShape := append([]int(nil), a.shape...)
		lineShape[axis] = 1
		lineStrides := computeStrides(lineShape)
		lines := numElements(lineShape)
		stride := strides[axis]

		parallel.Chunks(lines, func(start, end int) {
			t := fourier.NewCmplxFFT(n)
			buf := make([]complex128, n)
			res := make([]complex128, n)
			coord := make([]int, len(lineShape))
			for l := start; l < end; l++ {
				unravel(l, lineStrides, coord)
				base := ravel(coord, strides)
				for k := 0; k < n; k++ {
					buf[k] = out.cplx[base+k*stride]
				}
				if inverse {
					t.Sequence(res, buf)
					for k := range res {
						res[k] /= complex(float64(n), 0)
					}
				} else {
					t.Coefficients(res, buf)
				}
				for k := 0; k < n; k++ {
					out.cplx[base+k*stride] = res[k]
				}
			}
		}, parallel.Config{Enabled: cpu.parallel.Enabled, NumWorkers: cpu.parallel.NumWorkers, MinChunkSize: 16})
	}
	return out.quantize()
}
