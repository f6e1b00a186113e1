package nn

import (
	"github.com/collo-ml/collo/internal/tensor"
)

// Tanh applies the element-wise hyperbolic tangent activation.
//
// tanh saturates smoothly and is infinitely differentiable, which the
// residual computation relies on: second derivatives of the network
// must exist everywhere.
type Tanh[B tensor.Backend] struct{}

// NewTanh creates a Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return &Tanh[B]{}
}

// Forward applies tanh element-wise.
func (t *Tanh[B]) Forward(input *tensor.Tensor[float64, B]) *tensor.Tensor[float64, B] {
	return input.Tanh()
}

// Parameters returns an empty slice; activations have no parameters.
func (t *Tanh[B]) Parameters() []*Parameter[B] {
	return nil
}
