package tensor

import (
	"github.com/ajrox090/PhiFlow/internal/backend"
)

// FFT computes the discrete Fourier transform over all spatial dimensions of x. The result
// is complex. Without spatial dimensions, x is only converted to complex.
func FFT(x Tensor) (Tensor, error) {
	return fourier(x, backend.Backend.FFT)
}

// IFFT computes the inverse of FFT.
func IFFT(k Tensor) (Tensor, error) {
	return fourier(k, backend.Backend.IFFT)
}

func fourier(x Tensor, f kernel1) (Tensor, error) {
	if x.Shape().Spatial().Rank() == 0 {
		return ToComplex(x)
	}
	return BroadcastOp(func(ts ...Tensor) (Tensor, error) {
		t := ts[0]
		s := t.Shape()
		batch, spatial, channel := s.Batch(), s.Spatial(), s.Channel()
		order := append(append(batch.Names(), spatial.Names()...), channel.Names()...)
		b, err := backendFor(t)
		if err != nil {
			return nil, err
		}
		buf, err := t.Native(order...)
		if err != nil {
			return nil, err
		}
		standard := append(append([]int{batch.Volume()}, spatial.Sizes()...), channel.Volume())
		out := f(b, b.Reshape(buf, standard))
		rs, err := s.Reorder(order)
		if err != nil {
			return nil, err
		}
		return reshaped(b, out, rs), nil
	}, []Tensor{x}, nil)
}
