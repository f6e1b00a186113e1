// Copyright 2026 The Collo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu is the public facade over the CPU compute backend.
package cpu

import (
	"github.com/collo-ml/collo/internal/backend/cpu"
	"github.com/collo-ml/collo/internal/parallel"
)

// Backend is the pure-Go CPU backend.
type Backend = cpu.Backend

// New creates a CPU backend with the default parallel configuration.
func New() *Backend {
	return cpu.New()
}

// NewWithConfig creates a CPU backend with an explicit parallel
// configuration.
func NewWithConfig(cfg parallel.Config) *Backend {
	return cpu.NewWithConfig(cfg)
}
