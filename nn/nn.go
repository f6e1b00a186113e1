// Copyright 2026 The Collo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn is the public facade over the neural network modules.
package nn

import (
	"golang.org/x/exp/rand"

	"github.com/collo-ml/collo/internal/nn"
	"github.com/collo-ml/collo/internal/tensor"
)

// Module is the base interface for all neural network components.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// Linear is a fully connected layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// Tanh is the hyperbolic tangent activation.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// Sequential chains modules.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float64, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// NewLinear creates a new linear layer with Glorot normal weights and
// constant 0.01 biases.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, rng *rand.Rand, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, rng, backend)
}

// NewTanh creates a Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// NewSequential creates a sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// GlorotNormal initializes a tensor with Glorot normal initialization.
func GlorotNormal[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float64, B] {
	return nn.GlorotNormal(fanIn, fanOut, shape, rng, backend)
}

// Constant creates a tensor filled with a single value.
func Constant[B tensor.Backend](value float64, shape tensor.Shape, backend B) *tensor.Tensor[float64, B] {
	return nn.Constant(value, shape, backend)
}
