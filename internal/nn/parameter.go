package nn

import (
	"github.com/collo-ml/collo/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters are leaves of the differentiation graph: their tensors
// are marked with RequireGrad at construction, and the backward pass
// resolves gradients against them by pointer identity.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float64, B]
	grad   *tensor.Tensor[float64, B]
}

// NewParameter creates a new trainable parameter and marks its tensor
// as a differentiation variable.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float64, B]) *Parameter[B] {
	t.RequireGrad()
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float64, B] {
	return p.tensor
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been computed yet.
func (p *Parameter[B]) Grad() *tensor.Tensor[float64, B] {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float64, B]) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
//
// Call before each evaluation to avoid accumulating gradients from
// previous closure invocations.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}
