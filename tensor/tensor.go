// Copyright 2026 The Collo Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public facade over the internal tensor
// implementation.
package tensor

import (
	"github.com/collo-ml/collo/internal/tensor"
)

// Shape describes tensor dimensions.
type Shape = tensor.Shape

// DataType identifies the element type of a RawTensor.
type DataType = tensor.DataType

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
)

// DType is the type constraint for tensor elements.
type DType = tensor.DType

// RawTensor is the untyped tensor representation backends operate on.
type RawTensor = tensor.RawTensor

// Backend is the compute interface the solver runs on.
type Backend = tensor.Backend

// Tensor is a typed tensor bound to a backend.
type Tensor[T tensor.DType, B tensor.Backend] = tensor.Tensor[T, B]

// ErrShapeMismatch reports incompatible shapes.
var ErrShapeMismatch = tensor.ErrShapeMismatch

// New creates a Tensor from a RawTensor and backend.
func New[T tensor.DType, B tensor.Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T, B](raw, b)
}

// FromSlice creates a tensor from a Go slice. The slice is copied.
func FromSlice[T tensor.DType, B tensor.Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice(data, shape, b)
}

// Column creates an [n, 1] tensor from a flat coordinate slice.
func Column[T tensor.DType, B tensor.Backend](values []T, b B) (*Tensor[T, B], error) {
	return tensor.Column(values, b)
}

// Zeros creates a zero-filled tensor.
func Zeros[T tensor.DType, B tensor.Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T, B](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T tensor.DType, B tensor.Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T, B](shape, b)
}

// Full creates a tensor filled with the given value.
func Full[T tensor.DType, B tensor.Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full[T, B](shape, value, b)
}

// Cat concatenates tensors along dim.
func Cat[T tensor.DType, B tensor.Backend](tensors []*Tensor[T, B], dim int) *Tensor[T, B] {
	return tensor.Cat(tensors, dim)
}
