package cpu

import (
	"fmt"
	"slices"

	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/parallel"
)

// remap builds an array of outShape whose element at coord is read from a at src(coord).
func (cpu *CPUBackend) remap(a *Array, outShape []int, src func(coord []int) int) *Array {
	out := newArray(outShape, a.dtype)
	outStrides := computeStrides(outShape)
	n := out.NumElements()
	parallel.Chunks(n, func(start, end int) {
		coord := make([]int, len(outShape))
		for i := start; i < end; i++ {
			unravel(i, outStrides, coord)
			j := src(coord)
			if a.dtype.IsComplex() {
				out.cplx[i] = a.cplx[j]
			} else {
				out.data[i] = a.data[j]
			}
		}
	}, cpu.parallel)
	return out
}

// Transpose permutes the axes: output axis i is input axis perm[i].
func (cpu *CPUBackend) Transpose(x backend.Native, perm []int) backend.Native {
	a := cpu.array(x, "transpose")
	if len(perm) != len(a.shape) {
		panic(fmt.Sprintf("transpose: permutation %v does not match rank %d", perm, len(a.shape)))
	}
	identity := true
	outShape := make([]int, len(perm))
	for i, p := range perm {
		outShape[i] = a.shape[p]
		identity = identity && p == i
	}
	if identity {
		return x
	}
	inStrides := computeStrides(a.shape)
	return cpu.remap(a, outShape, func(coord []int) int {
		idx := 0
		for i, p := range perm {
			idx += coord[i] * inStrides[p]
		}
		return idx
	})
}

// Reshape returns x with a new shape of the same volume.
func (cpu *CPUBackend) Reshape(x backend.Native, shape []int) backend.Native {
	a := cpu.array(x, "reshape")
	if numElements(shape) != a.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v into %v", a.shape, shape))
	}
	return &Array{shape: slices.Clone(shape), dtype: a.dtype, data: a.data, cplx: a.cplx}
}

// ExpandDims inserts a size-1 axis at position axis.
func (cpu *CPUBackend) ExpandDims(x backend.Native, axis int) backend.Native {
	a := cpu.array(x, "expanddims")
	if axis < 0 || axis > len(a.shape) {
		panic(fmt.Sprintf("expanddims: axis %d out of range for %dD array", axis, len(a.shape)))
	}
	return cpu.Reshape(x, slices.Insert(slices.Clone(a.shape), axis, 1))
}

// Concat joins arrays along an existing axis. All other sizes must match.
func (cpu *CPUBackend) Concat(xs []backend.Native, axis int) backend.Native {
	if len(xs) == 0 {
		panic("concat: no arrays")
	}
	arrays := make([]*Array, len(xs))
	dtype := cpu.array(xs[0], "concat").dtype
	for i, x := range xs {
		arrays[i] = cpu.array(x, "concat")
		dtype = backend.Promote(dtype, arrays[i].dtype)
	}
	first := arrays[0].shape
	if axis < 0 || axis >= len(first) {
		panic(fmt.Sprintf("concat: axis %d out of range for %dD array", axis, len(first)))
	}
	outShape := slices.Clone(first)
	outShape[axis] = 0
	offsets := make([]int, len(arrays))
	for i, a := range arrays {
		if len(a.shape) != len(first) {
			panic(fmt.Sprintf("concat: rank mismatch %v vs %v", a.shape, first))
		}
		for d := range first {
			if d != axis && a.shape[d] != first[d] {
				panic(fmt.Sprintf("concat: shape mismatch %v vs %v at axis %d", a.shape, first, d))
			}
		}
		offsets[i] = outShape[axis]
		outShape[axis] += a.shape[axis]
	}

	out := newArray(outShape, dtype)
	outStrides := computeStrides(outShape)
	for i, a := range arrays {
		src := a
		if a.dtype != dtype {
			src = cpu.array(cpu.Cast(a, dtype), "concat")
		}
		inStrides := computeStrides(a.shape)
		coord := make([]int, len(a.shape))
		for j := 0; j < a.NumElements(); j++ {
			unravel(j, inStrides, coord)
			coord[axis] += offsets[i]
			k := ravel(coord, outStrides)
			if dtype.IsComplex() {
				out.cplx[k] = src.cplx[j]
			} else {
				out.data[k] = src.data[j]
			}
		}
	}
	return out
}

// Tile repeats x multiples[i] times along axis i.
func (cpu *CPUBackend) Tile(x backend.Native, multiples []int) backend.Native {
	a := cpu.array(x, "tile")
	if len(multiples) != len(a.shape) {
		panic(fmt.Sprintf("tile: multiples %v do not match rank %d", multiples, len(a.shape)))
	}
	outShape := make([]int, len(a.shape))
	for i, m := range multiples {
		if m < 0 {
			panic(fmt.Sprintf("tile: negative multiple %d", m))
		}
		outShape[i] = a.shape[i] * m
	}
	inStrides := computeStrides(a.shape)
	return cpu.remap(a, outShape, func(coord []int) int {
		idx := 0
		for i, c := range coord {
			idx += (c % a.shape[i]) * inStrides[i]
		}
		return idx
	})
}

// Slice keeps indices [start, stop) along axis.
func (cpu *CPUBackend) Slice(x backend.Native, axis, start, stop int) backend.Native {
	a := cpu.array(x, "slice")
	if axis < 0 || axis >= len(a.shape) || start < 0 || stop > a.shape[axis] || start > stop {
		panic(fmt.Sprintf("slice: invalid range [%d, %d) on axis %d of %v", start, stop, axis, a.shape))
	}
	outShape := slices.Clone(a.shape)
	outShape[axis] = stop - start
	inStrides := computeStrides(a.shape)
	return cpu.remap(a, outShape, func(coord []int) int {
		return ravel(coord, inStrides) + start*inStrides[axis]
	})
}

// Flip reverses the order of elements along axis.
func (cpu *CPUBackend) Flip(x backend.Native, axis int) backend.Native {
	a := cpu.array(x, "flip")
	if axis < 0 || axis >= len(a.shape) {
		panic(fmt.Sprintf("flip: axis %d out of range for %dD array", axis, len(a.shape)))
	}
	inStrides := computeStrides(a.shape)
	n := a.shape[axis]
	return cpu.remap(a, a.shape, func(coord []int) int {
		return ravel(coord, inStrides) + (n-1-2*coord[axis])*inStrides[axis]
	})
}
