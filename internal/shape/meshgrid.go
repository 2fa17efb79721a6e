package shape

import (
	"iter"
	"maps"
)

// Meshgrid iterates over every element index of s in row-major order, yielding a map from
// dimension name to index. The sequence is recomputed each time it is ranged over.
//
// For a non-uniform shape the varying dimensions only run up to their size for the current
// index of the dimension they vary along.
func (s Shape) Meshgrid() iter.Seq[map[string]int] {
	return func(yield func(map[string]int) bool) {
		meshgridNonUniform(s, map[string]int{}, yield)
	}
}

// meshgridNonUniform unstacks one varying dimension at a time until the remaining shape is
// uniform.
func meshgridNonUniform(s Shape, prefix map[string]int, yield func(map[string]int) bool) bool {
	var along string
	for _, d := range s.dims {
		if !d.uniform() {
			along = d.Along
			break
		}
	}
	if along == "" {
		return meshgrid(s, prefix, yield)
	}
	subs, err := s.Unstack(along)
	if err != nil {
		return true
	}
	for i, sub := range subs {
		p := maps.Clone(prefix)
		p[along] = i
		if !meshgridNonUniform(sub, p, yield) {
			return false
		}
	}
	return true
}

// meshgrid yields all index maps of s, each extended by prefix. Returns false once yield
// asks to stop.
func meshgrid(s Shape, prefix map[string]int, yield func(map[string]int) bool) bool {
	if s.Volume() == 0 {
		return true
	}
	idx := make([]int, len(s.dims))
	for {
		m := maps.Clone(prefix)
		for i, d := range s.dims {
			m[d.Name] = idx[i]
		}
		if !yield(m) {
			return false
		}
		i := len(idx) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < s.dims[i].Size {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return true
		}
	}
}
