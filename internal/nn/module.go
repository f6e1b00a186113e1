// Package nn implements the neural network modules of the solver.
//
// This package provides the building blocks for the approximation
// network:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters with gradient tracking
//   - Linear: Fully connected layer
//   - Tanh: Hyperbolic tangent activation
//   - Sequential: Container for stacking layers
//
// All modules compute in float64: the training loop feeds parameter
// vectors to a quasi-Newton optimizer that works in double precision,
// and second-order derivatives amplify rounding error in single
// precision.
package nn

import (
	"github.com/collo-ml/collo/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//
// Modules can be composed to build deeper architectures:
//
//	model := nn.NewSequential[B](
//	    nn.NewLinear(2, 100, rng, backend),
//	    nn.NewTanh[B](),
//	    nn.NewLinear(100, 1, rng, backend),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor should have the appropriate shape for this
	// module. For example, Linear expects [batch_size, in_features].
	Forward(input *tensor.Tensor[float64, B]) *tensor.Tensor[float64, B]

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter[B]
}
