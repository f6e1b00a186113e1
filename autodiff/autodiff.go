// Copyright 2026 The Collo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff is the public facade over the reverse-mode
// automatic differentiation engine.
package autodiff

import (
	"github.com/collo-ml/collo/internal/autodiff"
	"github.com/collo-ml/collo/internal/tensor"
)

// Backend decorates an inner backend with gradient tape recording.
type Backend[B tensor.Backend] = autodiff.Backend[B]

// BackwardCapable is a backend that carries a gradient tape.
type BackwardCapable = autodiff.BackwardCapable

// Tape records operations for later backpropagation.
type Tape = autodiff.Tape

// Sentinel errors for derivative requests.
var (
	ErrNotLeaf    = autodiff.ErrNotLeaf
	ErrNotInGraph = autodiff.ErrNotInGraph
)

// New wraps inner with a fresh, recording-disabled tape.
func New[B tensor.Backend](inner B) *Backend[B] {
	return autodiff.New(inner)
}

// Backward computes first-order gradients of a loss with respect to
// every tensor in the recorded graph.
func Backward[T tensor.DType, B autodiff.BackwardCapable](loss *tensor.Tensor[T, B]) map[*tensor.RawTensor]*tensor.RawTensor {
	return autodiff.Backward(loss)
}

// Derivative computes the order-th partial derivative of y with
// respect to the leaf x.
func Derivative[T tensor.DType, B autodiff.BackwardCapable](y, x *tensor.Tensor[T, B], order int) (*tensor.Tensor[T, B], error) {
	return autodiff.Derivative(y, x, order)
}
