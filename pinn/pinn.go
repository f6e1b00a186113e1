// Copyright 2026 The Collo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package pinn is the public facade over the heat-equation solver: the
// approximation network, the PDE residual and the composite loss.
package pinn

import (
	"github.com/collo-ml/collo/internal/autodiff"
	"github.com/collo-ml/collo/internal/pinn"
	"github.com/collo-ml/collo/internal/tensor"
)

// Config describes the approximation network.
type Config = pinn.Config

// Data holds the training point sets as flat coordinate slices.
type Data = pinn.Data

// Parts breaks the composite loss into its terms.
type Parts = pinn.Parts

// Model maps coordinate batches to a solution batch.
type Model[B tensor.Backend] = pinn.Model[B]

// Network approximates the solution u(x,t).
type Network[B tensor.Backend] = pinn.Network[B]

// Residual evaluates the heat equation residual u_t - u_xx.
type Residual[B autodiff.BackwardCapable] = pinn.Residual[B]

// LossAssembler evaluates the composite training loss.
type LossAssembler[B autodiff.BackwardCapable] = pinn.LossAssembler[B]

// DefaultConfig returns the standard solver architecture.
func DefaultConfig() Config {
	return pinn.DefaultConfig()
}

// NewNetwork builds the approximation network.
func NewNetwork[B tensor.Backend](cfg Config, backend B) *Network[B] {
	return pinn.NewNetwork(cfg, backend)
}

// NewResidual creates a residual evaluator over the given model.
func NewResidual[B autodiff.BackwardCapable](model Model[B]) *Residual[B] {
	return pinn.NewResidual(model)
}

// NewLossAssembler builds the batch tensors from data and returns an
// assembler over model.
func NewLossAssembler[B autodiff.BackwardCapable](model Model[B], data Data, backend B) (*LossAssembler[B], error) {
	return pinn.NewLossAssembler(model, data, backend)
}
