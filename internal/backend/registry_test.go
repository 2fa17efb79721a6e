package backend

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNative struct{ owner string }

func (stubNative) Shape() []int    { return nil }
func (stubNative) DType() DataType { return Float32 }

// stubBackend implements only the metadata the registry needs.
type stubBackend struct {
	Backend
	name string
}

func (s stubBackend) Name() string { return s.name }

func (s stubBackend) Accepts(x Native) bool {
	n, ok := x.(stubNative)
	return ok && n.owner == s.name
}

func withRegistry(t *testing.T, backends ...Backend) {
	t.Helper()
	registry.mu.Lock()
	saved := registry.backends
	registry.backends = nil
	registry.mu.Unlock()
	for _, b := range backends {
		Register(b)
	}
	t.Cleanup(func() {
		registry.mu.Lock()
		registry.backends = saved
		registry.mu.Unlock()
	})
}

func TestRegister(t *testing.T) {
	a, b := stubBackend{name: "a"}, stubBackend{name: "b"}
	withRegistry(t, a, b)
	require.Len(t, Registered(), 2)

	Register(stubBackend{name: "a"})
	names := []string{}
	for _, r := range Registered() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestChoose(t *testing.T) {
	a, b := stubBackend{name: "a"}, stubBackend{name: "b"}
	withRegistry(t, a, b)

	got, err := Choose(stubNative{owner: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name())

	got, err = Choose()
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name())

	_, err = Choose(stubNative{owner: "a"}, stubNative{owner: "b"})
	assert.True(t, errors.Is(err, ErrUnsupportedBackend))
	assert.Contains(t, err.Error(), "backend.stubNative")
}

func TestDefault_Empty(t *testing.T) {
	withRegistry(t)
	_, err := Default()
	assert.True(t, errors.Is(err, ErrUnsupportedBackend))
}

func TestConfigure(t *testing.T) {
	a, b := stubBackend{name: "a"}, stubBackend{name: "b"}
	withRegistry(t, a, b)
	require.Equal(t, 32, CurrentConfig().Precision)

	restore := Configure(Config{Default: b, Precision: 64})
	assert.Equal(t, Float64, CurrentConfig().FloatType())
	got, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "b", got.Name())

	inner := Configure(Config{Precision: 16})
	assert.Equal(t, Float16, CurrentConfig().FloatType())
	inner()
	assert.Equal(t, 64, CurrentConfig().Precision)

	restore()
	assert.Equal(t, Float32, CurrentConfig().FloatType())
	assert.Nil(t, CurrentConfig().Default)
}

func TestPromote(t *testing.T) {
	tests := []struct {
		a, b, want DataType
	}{
		{Float32, Float64, Float64},
		{Int32, Float32, Float32},
		{Int64, Float32, Float64},
		{Bool, Int32, Int32},
		{Bool, Float16, Float16},
		{Float64, Complex64, Complex128},
		{Complex64, Float32, Complex64},
		{Bool, Bool, Bool},
	}
	for _, tt := range tests {
		t.Run(tt.a.String()+"+"+tt.b.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Promote(tt.a, tt.b))
			assert.Equal(t, tt.want, Promote(tt.b, tt.a))
		})
	}
}
