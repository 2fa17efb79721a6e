package cpu

import (
	"fmt"
	"slices"
)

// broadcastShapes returns the NumPy-style broadcast of the given shapes.
// Shapes are right-aligned; each pair of sizes must match or one must be 1.
func broadcastShapes(op string, shapes ...[]int) []int {
	rank := 0
	for _, s := range shapes {
		rank = max(rank, len(s))
	}
	out := make([]int, rank)
	for i := range out {
		out[i] = 1
	}
	for _, s := range shapes {
		offset := rank - len(s)
		for i, d := range s {
			switch {
			case d == out[offset+i] || d == 1:
			case out[offset+i] == 1:
				out[offset+i] = d
			default:
				panic(fmt.Sprintf("%s: shapes %v not broadcastable", op, shapes))
			}
		}
	}
	return out
}

// computeBroadcastStridesForShape computes strides for broadcasting inShape to outShape.
// Dimensions of size 1 and padded dimensions get stride 0.
func computeBroadcastStridesForShape(inShape, outShape []int) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)
	offset := outDim - len(inShape)
	origStrides := computeStrides(inShape)
	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		switch {
		case inIdx < 0:
			strides[i] = 0
		case inShape[inIdx] == 1:
			strides[i] = 0
		default:
			strides[i] = origStrides[inIdx]
		}
	}
	return strides
}

// computeFlatIndex computes the flat index in the source array for a given output index.
// outStrides are the strides of the output shape; inStrides are broadcast-adjusted.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i, s := range outStrides {
		if s == 0 {
			continue
		}
		coord := outIdx / s
		outIdx %= s
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}

// broadcastIndexer maps output flat indices to input flat indices.
type broadcastIndexer struct {
	outStrides []int
	inStrides  [][]int
	direct     []bool
}

func newBroadcastIndexer(outShape []int, inShapes ...[]int) broadcastIndexer {
	b := broadcastIndexer{
		outStrides: computeStrides(outShape),
		inStrides:  make([][]int, len(inShapes)),
		direct:     make([]bool, len(inShapes)),
	}
	for i, s := range inShapes {
		b.direct[i] = slices.Equal(s, outShape)
		b.inStrides[i] = computeBroadcastStridesForShape(s, outShape)
	}
	return b
}

func (b broadcastIndexer) index(operand, outIdx int) int {
	if b.direct[operand] {
		return outIdx
	}
	return computeFlatIndex(outIdx, b.outStrides, b.inStrides[operand])
}
