// Copyright 2025 PhiFlow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/ajrox090/PhiFlow/internal/backend"
	"github.com/ajrox090/PhiFlow/internal/tensor"
)

// Backend performs the numeric work behind tensors.
//
// Implementations:
//   - backend/cpu: pure Go reference implementation
type Backend = backend.Backend

// Config is the process-wide default backend and float precision.
type Config = backend.Config

// Configure installs cfg and returns a function restoring the previous configuration.
//
// Example:
//
//	defer tensor.Configure(tensor.Config{Precision: 64})()
func Configure(cfg Config) (restore func()) { return backend.Configure(cfg) }

// CurrentConfig returns the active configuration.
func CurrentConfig() Config { return backend.CurrentConfig() }

// Registered lists the registered backends in preference order.
func Registered() []Backend { return backend.Registered() }

// BackendOf returns the backend that holds all of ts.
func BackendOf(ts ...Tensor) (Backend, error) { return tensor.BackendOf(ts...) }
