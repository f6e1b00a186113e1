// Package cpu implements the tensor.Backend interface in pure Go.
//
// Every operation allocates a fresh output tensor and never writes
// through its inputs; the autodiff decorator relies on this to keep
// recorded tensors immutable.
package cpu

import (
	"fmt"

	"github.com/collo-ml/collo/internal/parallel"
	"github.com/collo-ml/collo/internal/tensor"
)

// Backend is the CPU compute backend.
type Backend struct {
	pool parallel.Config
}

// New creates a CPU backend with default parallelism.
func New() *Backend {
	return &Backend{pool: parallel.DefaultConfig()}
}

// NewWithConfig creates a CPU backend with an explicit parallel
// configuration.
func NewWithConfig(cfg parallel.Config) *Backend {
	return &Backend{pool: cfg}
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.CPU
}

// data returns the typed slice view of a raw tensor.
func data[T tensor.DType](r *tensor.RawTensor) []T {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return any(r.AsFloat32()).([]T)
	default:
		return any(r.AsFloat64()).([]T)
	}
}

// newRaw allocates an output tensor, panicking on invalid shapes.
// Shape validity is the caller's contract; a failure here is a bug.
func newRaw(shape tensor.Shape, dtype tensor.DataType, device tensor.Device) *tensor.RawTensor {
	out, err := tensor.NewRaw(shape, dtype, device)
	if err != nil {
		panic(fmt.Sprintf("cpu: %v", err))
	}
	return out
}

// broadcastStrides maps an input's strides onto an output shape,
// substituting stride 0 for broadcast (size-1 or missing) dimensions.
func broadcastStrides(in tensor.Shape, inStrides []int, out tensor.Shape) []int {
	strides := make([]int, len(out))
	offset := len(out) - len(in)
	for i := range out {
		j := i - offset
		if j >= 0 && in[j] == out[i] {
			strides[i] = inStrides[j]
		}
		// Otherwise the dimension is broadcast: stride stays 0.
	}
	return strides
}

// offsetFor converts a linear index over outShape into an element
// offset for a tensor with the given (possibly zeroed) strides.
func offsetFor(linear int, outStrides, strides []int) int {
	offset := 0
	for i, os := range outStrides {
		coord := linear / os
		linear %= os
		offset += coord * strides[i]
	}
	return offset
}
