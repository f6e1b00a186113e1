// Package ops defines the differentiable operations recorded on the
// gradient tape.
//
// Each operation stores its input and output tensors during the
// forward pass and computes input gradients during the backward pass.
//
// Invariant: Backward produces gradients exclusively through Backend
// calls (or returns an existing tensor unchanged). When the backward
// pass runs with graph construction enabled, every one of those calls
// is recorded too, which is what makes second- and higher-order
// derivatives valid. A backward pass that touched raw buffers directly
// would silently produce underivable gradients.
package ops

import "github.com/collo-ml/collo/internal/tensor"

// Operation represents a differentiable operation in the computation
// graph.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// The returned slice corresponds to Inputs() order; a nil entry
	// means no gradient flows to that input.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}
