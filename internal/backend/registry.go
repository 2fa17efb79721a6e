package backend

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrUnsupportedBackend is returned when no registered backend accepts a buffer.
var ErrUnsupportedBackend = errors.New("unsupported backend")

var registry struct {
	mu       sync.RWMutex
	backends []Backend
}

// Register adds b to the process-wide registry. Backends registered first are preferred.
// Registering a backend with a name already present replaces it.
func Register(b Backend) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	for i, r := range registry.backends {
		if r.Name() == b.Name() {
			registry.backends[i] = b
			return
		}
	}
	registry.backends = append(registry.backends, b)
	klog.V(2).Infof("registered backend %q", b.Name())
}

// Registered returns the registered backends in preference order.
func Registered() []Backend {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return append([]Backend(nil), registry.backends...)
}

// Config is the process-wide tensor configuration.
type Config struct {
	// Default is used when no buffer dictates a backend. Nil selects the first registered one.
	Default Backend
	// Precision is the float precision in bits (16, 32 or 64) used by factories and ToFloat.
	Precision int
}

// FloatType returns the float type of the configured precision.
func (c Config) FloatType() DataType {
	return FloatType(c.Precision)
}

var config atomic.Pointer[Config]

func init() {
	config.Store(&Config{Precision: 32})
}

// CurrentConfig returns a copy of the active configuration.
func CurrentConfig() Config {
	return *config.Load()
}

// Configure installs cfg and returns a function restoring the previous configuration,
// so that a scope can be written as `defer backend.Configure(cfg)()`.
func Configure(cfg Config) (restore func()) {
	if cfg.Precision == 0 {
		cfg.Precision = 32
	}
	prev := config.Swap(&cfg)
	return func() { config.Store(prev) }
}

// Default returns the configured default backend, or the first registered one.
func Default() (Backend, error) {
	if b := config.Load().Default; b != nil {
		return b, nil
	}
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	if len(registry.backends) == 0 {
		return nil, errors.Wrap(ErrUnsupportedBackend, "no backend registered")
	}
	return registry.backends[0], nil
}

// Choose returns the first backend that accepts all given buffers.
// Without buffers it returns the default backend.
func Choose(natives ...Native) (Backend, error) {
	if len(natives) == 0 {
		return Default()
	}
	candidates := Registered()
	if d := config.Load().Default; d != nil {
		candidates = append([]Backend{d}, candidates...)
	}
	for _, b := range candidates {
		if acceptsAll(b, natives) {
			klog.V(4).Infof("chose backend %q for %d buffers", b.Name(), len(natives))
			return b, nil
		}
	}
	types := make([]string, len(natives))
	for i, n := range natives {
		types[i] = typeName(n)
	}
	return nil, errors.Wrapf(ErrUnsupportedBackend, "no backend accepts [%s]", strings.Join(types, ", "))
}

func acceptsAll(b Backend, natives []Native) bool {
	for _, n := range natives {
		if !b.Accepts(n) {
			return false
		}
	}
	return true
}

func typeName(n Native) string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", n)
}
