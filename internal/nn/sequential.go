package nn

import (
	"github.com/collo-ml/collo/internal/tensor"
)

// Sequential chains modules so that each module's output feeds the
// next module's input.
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

// NewSequential creates a sequential container from the given modules.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{modules: modules}
}

// Forward runs the input through every module in order.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float64, B]) *tensor.Tensor[float64, B] {
	out := input
	for _, m := range s.modules {
		out = m.Forward(out)
	}
	return out
}

// Parameters collects the parameters of all contained modules in order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

// Modules returns the contained modules.
func (s *Sequential[B]) Modules() []Module[B] {
	return s.modules
}
