// Package shape describes tensor dimensions addressed by name and kind rather than position.
//
// A Shape is an ordered list of named dimensions. The order only matters for the physical
// layout of native buffers; every public operation looks dimensions up by name.
package shape

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies a dimension.
type Kind int

// Dimension kinds, in normal order.
const (
	Batch Kind = iota
	Spatial
	Channel
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case Batch:
		return "batch"
	case Spatial:
		return "spatial"
	case Channel:
		return "channel"
	default:
		return "unknown"
	}
}

// Dim is a single named dimension.
//
// A non-uniform dim has per-index sizes in Sizes that vary along the dimension named Along.
// Size then holds the largest of them.
type Dim struct {
	Name  string
	Size  int
	Kind  Kind
	Sizes []int
	Along string
}

// B returns a batch dimension.
func B(name string, size int) Dim { return Dim{Name: name, Size: size, Kind: Batch} }

// S returns a spatial dimension.
func S(name string, size int) Dim { return Dim{Name: name, Size: size, Kind: Spatial} }

// C returns a channel dimension.
func C(name string, size int) Dim { return Dim{Name: name, Size: size, Kind: Channel} }

// Infer returns a dimension whose kind is derived from its name:
// "vector" is a channel, names starting with "batch" are batch dims, everything else is spatial.
func Infer(name string, size int) Dim {
	switch {
	case name == "vector":
		return C(name, size)
	case strings.HasPrefix(name, "batch"):
		return B(name, size)
	default:
		return S(name, size)
	}
}

func (d Dim) uniform() bool { return d.Along == "" }

func (d Dim) clone() Dim {
	if d.Sizes != nil {
		d.Sizes = slices.Clone(d.Sizes)
	}
	return d
}

func (d Dim) sameAs(o Dim) bool {
	return d.Name == o.Name && d.Size == o.Size && d.Kind == o.Kind && d.Along == o.Along && slices.Equal(d.Sizes, o.Sizes)
}

// Shape is an immutable, ordered set of named dimensions.
type Shape struct {
	dims []Dim
}

// Empty is the shape of a scalar.
var Empty = Shape{}

// New creates a Shape. Names must be unique and sizes non-negative.
func New(dims ...Dim) (Shape, error) {
	for i, d := range dims {
		if d.Name == "" {
			return Empty, errors.Wrapf(ErrShapeMismatch, "dimension #%d has no name", i)
		}
		if d.Size < 0 {
			return Empty, errors.Wrapf(ErrShapeMismatch, "dimension %q has negative size %d", d.Name, d.Size)
		}
		for _, o := range dims[:i] {
			if o.Name == d.Name {
				return Empty, errors.Wrapf(ErrShapeMismatch, "duplicate dimension %q", d.Name)
			}
		}
	}
	s := Shape{dims: make([]Dim, len(dims))}
	for i, d := range dims {
		s.dims[i] = d.clone()
	}
	return s, nil
}

// Make is like New but panics on invalid input. Meant for literals in code and tests.
func Make(dims ...Dim) Shape {
	s, err := New(dims...)
	if err != nil {
		panic(err)
	}
	return s
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int { return len(s.dims) }

// Dims returns a copy of the dimensions.
func (s Shape) Dims() []Dim {
	out := make([]Dim, len(s.dims))
	for i, d := range s.dims {
		out[i] = d.clone()
	}
	return out
}

// Names returns the dimension names in order.
func (s Shape) Names() []string {
	names := make([]string, len(s.dims))
	for i, d := range s.dims {
		names[i] = d.Name
	}
	return names
}

// Sizes returns the dimension sizes in order.
func (s Shape) Sizes() []int {
	sizes := make([]int, len(s.dims))
	for i, d := range s.dims {
		sizes[i] = d.Size
	}
	return sizes
}

// Kinds returns the dimension kinds in order.
func (s Shape) Kinds() []Kind {
	kinds := make([]Kind, len(s.dims))
	for i, d := range s.dims {
		kinds[i] = d.Kind
	}
	return kinds
}

// Contains reports whether a dimension with the given name exists.
func (s Shape) Contains(name string) bool {
	return s.find(name) >= 0
}

func (s Shape) find(name string) int {
	for i, d := range s.dims {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// Dim returns the dimension with the given name.
func (s Shape) Dim(name string) (Dim, error) {
	i, err := s.IndexOf(name)
	if err != nil {
		return Dim{}, err
	}
	return s.dims[i].clone(), nil
}

// IndexOf returns the position of a dimension.
func (s Shape) IndexOf(name string) (int, error) {
	if i := s.find(name); i >= 0 {
		return i, nil
	}
	return -1, errors.Wrapf(ErrNameNotFound, "%q not in %s", name, s)
}

// Index returns the positions of the named dimensions.
func (s Shape) Index(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		pos, err := s.IndexOf(name)
		if err != nil {
			return nil, err
		}
		idx[i] = pos
	}
	return idx, nil
}

// IndexMap maps each dimension name to its position.
func (s Shape) IndexMap() map[string]int {
	m := make(map[string]int, len(s.dims))
	for i, d := range s.dims {
		m[d.Name] = i
	}
	return m
}

// SizeOf returns the size of a dimension.
func (s Shape) SizeOf(name string) (int, error) {
	i, err := s.IndexOf(name)
	if err != nil {
		return 0, err
	}
	return s.dims[i].Size, nil
}

// KindOf returns the kind of a dimension.
func (s Shape) KindOf(name string) (Kind, error) {
	i, err := s.IndexOf(name)
	if err != nil {
		return 0, err
	}
	return s.dims[i].Kind, nil
}

// KindsOf returns the kinds of the named dimensions.
func (s Shape) KindsOf(names ...string) ([]Kind, error) {
	kinds := make([]Kind, len(names))
	for i, name := range names {
		k, err := s.KindOf(name)
		if err != nil {
			return nil, err
		}
		kinds[i] = k
	}
	return kinds, nil
}

// Volume returns the product of all sizes. A scalar has volume 1.
// Non-uniform dimensions contribute their largest size.
func (s Shape) Volume() int {
	v := 1
	for _, d := range s.dims {
		v *= d.Size
	}
	return v
}

// IsNonUniform reports whether any dimension varies in size along another dimension.
func (s Shape) IsNonUniform() bool {
	for _, d := range s.dims {
		if !d.uniform() {
			return true
		}
	}
	return false
}

// Union returns s followed by the dimensions of other that s lacks.
// Dimensions present in both must agree in size and kind.
func (s Shape) Union(other Shape) (Shape, error) {
	dims := s.Dims()
	for _, d := range other.dims {
		i := s.find(d.Name)
		if i < 0 {
			dims = append(dims, d.clone())
			continue
		}
		if !s.dims[i].sameAs(d) {
			return Empty, errors.Wrapf(ErrShapeMismatch, "dimension %q differs: %s vs %s", d.Name, s, other)
		}
	}
	return Shape{dims: dims}, nil
}

// Without returns s minus the named dimensions. Unknown names are ignored.
func (s Shape) Without(names ...string) Shape {
	dims := make([]Dim, 0, len(s.dims))
	for _, d := range s.dims {
		if !slices.Contains(names, d.Name) {
			dims = append(dims, d.clone())
		}
	}
	return Shape{dims: dims}
}

// Only returns the named dimensions in the order of s. Unknown names are ignored.
func (s Shape) Only(names ...string) Shape {
	dims := make([]Dim, 0, len(names))
	for _, d := range s.dims {
		if slices.Contains(names, d.Name) {
			dims = append(dims, d.clone())
		}
	}
	return Shape{dims: dims}
}

// OnlyKinds returns the dimensions of the given kinds in the order of s.
func (s Shape) OnlyKinds(kinds ...Kind) Shape {
	dims := make([]Dim, 0, len(s.dims))
	for _, d := range s.dims {
		if slices.Contains(kinds, d.Kind) {
			dims = append(dims, d.clone())
		}
	}
	return Shape{dims: dims}
}

// Batch returns the batch dimensions.
func (s Shape) Batch() Shape { return s.OnlyKinds(Batch) }

// Spatial returns the spatial dimensions.
func (s Shape) Spatial() Shape { return s.OnlyKinds(Spatial) }

// Channel returns the channel dimensions.
func (s Shape) Channel() Shape { return s.OnlyKinds(Channel) }

// NonBatch returns all but the batch dimensions.
func (s Shape) NonBatch() Shape { return s.OnlyKinds(Spatial, Channel) }

// NonSpatial returns all but the spatial dimensions.
func (s Shape) NonSpatial() Shape { return s.OnlyKinds(Batch, Channel) }

// NonChannel returns all but the channel dimensions.
func (s Shape) NonChannel() Shape { return s.OnlyKinds(Batch, Spatial) }

// Expand inserts a new dimension at pos. A negative pos picks the default slot for the
// kind: after the last dimension whose kind sorts at or before it in normal order.
func (s Shape) Expand(size int, name string, kind Kind, pos int) (Shape, error) {
	if s.Contains(name) {
		return Empty, errors.Wrapf(ErrShapeMismatch, "cannot expand %s by existing dimension %q", s, name)
	}
	if pos < 0 {
		pos = 0
		for i, d := range s.dims {
			if d.Kind <= kind {
				pos = i + 1
			}
		}
	}
	if pos > len(s.dims) {
		return Empty, errors.Wrapf(ErrShapeMismatch, "position %d out of range for %s", pos, s)
	}
	dims := s.Dims()
	dims = slices.Insert(dims, pos, Dim{Name: name, Size: size, Kind: kind})
	return New(dims...)
}

// WithSizes replaces all sizes. Non-uniform information is dropped.
func (s Shape) WithSizes(sizes []int) (Shape, error) {
	if len(sizes) != len(s.dims) {
		return Empty, errors.Wrapf(ErrShapeMismatch, "%d sizes for %s", len(sizes), s)
	}
	dims := make([]Dim, len(s.dims))
	for i, d := range s.dims {
		dims[i] = Dim{Name: d.Name, Size: sizes[i], Kind: d.Kind}
	}
	return New(dims...)
}

// WithSize replaces the size of a single dimension.
func (s Shape) WithSize(name string, size int) (Shape, error) {
	i, err := s.IndexOf(name)
	if err != nil {
		return Empty, err
	}
	dims := s.Dims()
	dims[i] = Dim{Name: name, Size: size, Kind: dims[i].Kind}
	return Shape{dims: dims}, nil
}

// WithNames replaces all names.
func (s Shape) WithNames(names []string) (Shape, error) {
	if len(names) != len(s.dims) {
		return Empty, errors.Wrapf(ErrShapeMismatch, "%d names for %s", len(names), s)
	}
	dims := s.Dims()
	for i := range dims {
		dims[i].Name = names[i]
	}
	return New(dims...)
}

// Rename renames dimensions according to m. Names absent from s are ignored.
func (s Shape) Rename(m map[string]string) (Shape, error) {
	dims := s.Dims()
	for i, d := range dims {
		if n, ok := m[d.Name]; ok {
			dims[i].Name = n
		}
		if n, ok := m[d.Along]; ok && d.Along != "" {
			dims[i].Along = n
		}
	}
	return New(dims...)
}

// WithKind changes the kind of a dimension.
func (s Shape) WithKind(name string, kind Kind) (Shape, error) {
	i, err := s.IndexOf(name)
	if err != nil {
		return Empty, err
	}
	dims := s.Dims()
	dims[i].Kind = kind
	return Shape{dims: dims}, nil
}

// WithNonUniform marks dimension name as varying along the batch dimension along,
// with one size per index of along.
func (s Shape) WithNonUniform(name, along string, sizes []int) (Shape, error) {
	i, err := s.IndexOf(name)
	if err != nil {
		return Empty, err
	}
	a, err := s.Dim(along)
	if err != nil {
		return Empty, err
	}
	if a.Size != len(sizes) {
		return Empty, errors.Wrapf(ErrShapeMismatch, "%d sizes for %q of size %d", len(sizes), along, a.Size)
	}
	dims := s.Dims()
	dims[i].Sizes = slices.Clone(sizes)
	dims[i].Along = along
	dims[i].Size = slices.Max(sizes)
	return Shape{dims: dims}, nil
}

// Reorder returns s with its dimensions in the given order. The order must name every
// dimension of s exactly once.
func (s Shape) Reorder(names []string) (Shape, error) {
	if len(names) != len(s.dims) {
		return Empty, errors.Wrapf(ErrInvalidReorder, "order %v does not match %s", names, s)
	}
	dims := make([]Dim, len(names))
	for i, name := range names {
		j := s.find(name)
		if j < 0 {
			return Empty, errors.Wrapf(ErrInvalidReorder, "order %v names %q which is not in %s", names, name, s)
		}
		if slices.Index(names, name) != i {
			return Empty, errors.Wrapf(ErrInvalidReorder, "order %v repeats %q", names, name)
		}
		dims[i] = s.dims[j].clone()
	}
	return Shape{dims: dims}, nil
}

// OrderGroup returns the names of s in order, except that the given names are emitted
// together, in the given order, at the position of the first of them.
func (s Shape) OrderGroup(names []string) ([]string, error) {
	if _, err := s.Index(names...); err != nil {
		return nil, err
	}
	order := make([]string, 0, len(s.dims))
	for _, d := range s.dims {
		if slices.Contains(order, d.Name) {
			continue
		}
		if slices.Contains(names, d.Name) {
			order = append(order, names...)
		} else {
			order = append(order, d.Name)
		}
	}
	return order, nil
}

// NormalOrder returns s sorted into batch, spatial, channel groups, stable within a group.
func (s Shape) NormalOrder() Shape {
	dims := s.Dims()
	slices.SortStableFunc(dims, func(a, b Dim) int { return int(a.Kind) - int(b.Kind) })
	return Shape{dims: dims}
}

// Unstack removes dimension name and returns one shape per index along it.
// Dimensions that vary along name take their size for that index.
func (s Shape) Unstack(name string) ([]Shape, error) {
	d, err := s.Dim(name)
	if err != nil {
		return nil, err
	}
	rest := s.Without(name)
	out := make([]Shape, d.Size)
	for i := range out {
		dims := rest.Dims()
		for j, rd := range dims {
			if rd.Along == name {
				dims[j] = Dim{Name: rd.Name, Size: rd.Sizes[i], Kind: rd.Kind}
			}
		}
		out[i] = Shape{dims: dims}
	}
	return out, nil
}

// Equal reports structural equality: same names, sizes and kinds in the same order.
func (s Shape) Equal(other Shape) bool {
	return slices.EqualFunc(s.dims, other.dims, Dim.sameAs)
}

// SameDims reports whether both shapes hold the same dimensions, ignoring order.
func (s Shape) SameDims(other Shape) bool {
	if len(s.dims) != len(other.dims) {
		return false
	}
	for _, d := range s.dims {
		i := other.find(d.Name)
		if i < 0 || !other.dims[i].sameAs(d) {
			return false
		}
	}
	return true
}

// String returns a compact representation, e.g. "(batch=2, x=4, y=4, vector=2)".
func (s Shape) String() string {
	parts := make([]string, len(s.dims))
	for i, d := range s.dims {
		if d.uniform() {
			parts[i] = fmt.Sprintf("%s=%d", d.Name, d.Size)
		} else {
			parts[i] = fmt.Sprintf("%s=%v/%s", d.Name, d.Sizes, d.Along)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
