// Copyright 2026 The Collo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train is the public facade over the optimization driver.
package train

import (
	"github.com/collo-ml/collo/internal/autodiff"
	"github.com/collo-ml/collo/internal/nn"
	"github.com/collo-ml/collo/internal/pinn"
	"github.com/collo-ml/collo/internal/train"
)

// State tracks the driver through its lifecycle.
type State = train.State

// Lifecycle states.
const (
	StateIdle            = train.StateIdle
	StateEvaluating      = train.StateEvaluating
	StateConverged       = train.StateConverged
	StateBudgetExhausted = train.StateBudgetExhausted
	StateFailed          = train.StateFailed
)

// Config controls the optimization run.
type Config = train.Config

// Record is one logged evaluation.
type Record = train.Record

// Result summarizes a finished run.
type Result = train.Result

// Evaluator adapts the composite loss to gonum's closure protocol.
type Evaluator[B autodiff.BackwardCapable] = train.Evaluator[B]

// Driver owns one optimization run.
type Driver[B autodiff.BackwardCapable] = train.Driver[B]

// Sentinel errors.
var (
	ErrNonFinite         = train.ErrNonFinite
	ErrCorruptCheckpoint = train.ErrCorruptCheckpoint
)

// DefaultConfig returns the standard run settings.
func DefaultConfig() Config {
	return train.DefaultConfig()
}

// NewEvaluator creates an evaluator over the model parameters.
func NewEvaluator[B autodiff.BackwardCapable](assembler *pinn.LossAssembler[B], params []*nn.Parameter[B], backend B, logEvery int) *Evaluator[B] {
	return train.NewEvaluator(assembler, params, backend, logEvery)
}

// NewDriver creates a driver over the evaluator.
func NewDriver[B autodiff.BackwardCapable](eval *Evaluator[B], cfg Config) *Driver[B] {
	return train.NewDriver(eval, cfg)
}

// WriteCheckpoint atomically writes a parameter vector to path.
func WriteCheckpoint(path string, params []float64) error {
	return train.WriteCheckpoint(path, params)
}

// ReadCheckpoint loads a parameter vector written by WriteCheckpoint.
func ReadCheckpoint(path string) ([]float64, error) {
	return train.ReadCheckpoint(path)
}
