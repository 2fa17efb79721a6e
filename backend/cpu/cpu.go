// Copyright 2025 PhiFlow Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// Importing the package registers the backend, so a blank import is enough to make
// tensors work:
//
//	import _ "github.com/ajrox090/PhiFlow/backend/cpu"
//
// # Data types
//
// Float16, Float32, Float64, Int32, Int64, Bool, Complex64 and Complex128. Values are
// computed in float64 or complex128 and rounded to the element type after every kernel.
//
// # Parallelism
//
// Large elementwise kernels and batched solves are split across all cores. Use
// NewWithConfig to limit them.
package cpu

import (
	internalcpu "github.com/ajrox090/PhiFlow/internal/backend/cpu"
	"github.com/ajrox090/PhiFlow/internal/parallel"
	"github.com/ajrox090/PhiFlow/tensor"
)

// Backend is the CPU backend.
type Backend = internalcpu.CPUBackend

// Array is the native buffer of the CPU backend.
type Array = internalcpu.Array

// ParallelConfig limits the parallelism of kernels.
type ParallelConfig = parallel.Config

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend using all cores.
//
// Example:
//
//	defer tensor.Configure(tensor.Config{Default: cpu.New(), Precision: 64})()
func New() *Backend {
	return internalcpu.New()
}

// NewWithConfig creates a CPU backend with explicit parallelism settings.
func NewWithConfig(cfg ParallelConfig) *Backend {
	return internalcpu.NewWithConfig(cfg)
}
