package cpu

import (
	"fmt"

	"github.com/ajrox090/PhiFlow/internal/backend"
)

// GatherND looks up values (B, s1..sd, C) at integer indices (B, P, d), yielding (B, P, C).
// A batch size of 1 on either input broadcasts against the other.
func (cpu *CPUBackend) GatherND(values, indices backend.Native) backend.Native {
	v, idx := cpu.array(values, "gathernd"), cpu.array(indices, "gathernd")
	if len(v.shape) < 2 || len(idx.shape) != 3 {
		panic(fmt.Sprintf("gathernd: expected values (B, s..., C) and indices (B, P, d), got %v and %v", v.shape, idx.shape))
	}
	spatial := v.shape[1 : len(v.shape)-1]
	d := idx.shape[2]
	if d != len(spatial) {
		panic(fmt.Sprintf("gathernd: indices address %d axes but values have %d spatial axes", d, len(spatial)))
	}
	batch := broadcastShapes("gathernd", v.shape[:1], idx.shape[:1])[0]
	points, channels := idx.shape[1], v.shape[len(v.shape)-1]
	out := newArray([]int{batch, points, channels}, v.dtype)

	vStrides := computeStrides(v.shape)
	coords := idx.reals()
	for b := 0; b < batch; b++ {
		vb, ib := b%v.shape[0], b%idx.shape[0]
		for p := 0; p < points; p++ {
			base := vb * vStrides[0]
			for k := 0; k < d; k++ {
				c := int(coords[(ib*points+p)*d+k])
				if c < 0 || c >= spatial[k] {
					panic(fmt.Sprintf("gathernd: index %d out of range [0, %d) on axis %d", c, spatial[k], k))
				}
				base += c * vStrides[k+1]
			}
			dst := (b*points + p) * channels
			if v.dtype.IsComplex() {
				copy(out.cplx[dst:dst+channels], v.cplx[base:base+channels])
			} else {
				copy(out.data[dst:dst+channels], v.data[base:base+channels])
			}
		}
	}
	return out
}

// Scatter writes values (B, P, C) at indices (B, P, d) into a zero buffer (B, size..., C).
// Batch and point axes of size 1 broadcast.
func (cpu *CPUBackend) Scatter(indices, values backend.Native, size []int, mode backend.ScatterMode) backend.Native {
	idx, v := cpu.array(indices, "scatter"), cpu.array(values, "scatter")
	if len(idx.shape) != 3 || len(v.shape) != 3 {
		panic(fmt.Sprintf("scatter: expected indices (B, P, d) and values (B, P, C), got %v and %v", idx.shape, v.shape))
	}
	d := idx.shape[2]
	if d != len(size) {
		panic(fmt.Sprintf("scatter: indices address %d axes but size has %d", d, len(size)))
	}
	bp := broadcastShapes("scatter", idx.shape[:2], v.shape[:2])
	batch, points, channels := bp[0], bp[1], v.shape[2]

	outShape := append(append([]int{batch}, size...), channels)
	dtype := v.dtype
	if mode.Duplicates == backend.DuplicatesAny {
		dtype = backend.Bool
	}
	if dtype.IsComplex() {
		panic(fmt.Sprintf("scatter: unsupported dtype %s", dtype))
	}
	out := newArray(outShape, dtype)
	counts := make([]int, len(out.data))
	outStrides := computeStrides(outShape)
	coords := idx.reals()
	vals := v.reals()
	coord := make([]int, d)

	for b := 0; b < batch; b++ {
		ib, vb := b%idx.shape[0], b%v.shape[0]
		for p := 0; p < points; p++ {
			ip, vp := p%idx.shape[1], p%v.shape[1]
			inside := true
			for k := 0; k < d; k++ {
				c := int(coords[(ib*idx.shape[1]+ip)*d+k])
				if c < 0 || c >= size[k] {
					if mode.Outside != backend.OutsideClamp {
						inside = false
						break
					}
					c = min(max(c, 0), size[k]-1)
				}
				coord[k] = c
			}
			if !inside {
				continue
			}
			base := b * outStrides[0]
			for k, c := range coord {
				base += c * outStrides[k+1]
			}
			src := (vb*v.shape[1] + vp) * channels
			for c := 0; c < channels; c++ {
				val := vals[src+c]
				o := base + c
				switch mode.Duplicates {
				case backend.DuplicatesAdd, backend.DuplicatesMean:
					out.data[o] += val
				case backend.DuplicatesAny:
					out.data[o] = fromBool(out.data[o] != 0 || val != 0)
				default:
					out.data[o] = val
				}
				counts[o]++
			}
		}
	}
	if mode.Duplicates == backend.DuplicatesMean {
		for i, n := range counts {
			if n > 0 {
				out.data[i] /= float64(n)
			}
		}
	}
	return out.quantize()
}

// Nonzero returns the row-major coordinates of all non-zero elements as Int64 (count, rank).
func (cpu *CPUBackend) Nonzero(x backend.Native) backend.Native {
	a := cpu.array(x, "nonzero")
	rank := len(a.shape)
	strides := computeStrides(a.shape)
	var found []float64
	coord := make([]int, rank)
	count := 0
	for i := 0; i < a.NumElements(); i++ {
		var nz bool
		if a.dtype.IsComplex() {
			nz = a.cplx[i] != 0
		} else {
			nz = a.data[i] != 0
		}
		if !nz {
			continue
		}
		unravel(i, strides, coord)
		for _, c := range coord {
			found = append(found, float64(c))
		}
		count++
	}
	out := newArray([]int{count, rank}, backend.Int64)
	copy(out.data, found)
	return out
}
