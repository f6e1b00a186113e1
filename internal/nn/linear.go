package nn

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/collo-ml/collo/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weights are initialized with Glorot normal initialization.
// Biases are initialized to the constant 0.01.
type Linear[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [out_features, in_features]
	bias        *Parameter[B] // [out_features]
	backend     B
}

// NewLinear creates a new Linear layer.
//
// Parameters:
//   - inFeatures: Number of input features
//   - outFeatures: Number of output features
//   - rng: Seeded random source for weight initialization
//   - backend: Backend to use for tensor operations
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, rng *rand.Rand, backend B) *Linear[B] {
	weightShape := tensor.Shape{outFeatures, inFeatures}
	weight := NewParameter("weight", GlorotNormal(inFeatures, outFeatures, weightShape, rng, backend))

	biasShape := tensor.Shape{outFeatures}
	bias := NewParameter("bias", Constant(0.01, biasShape, backend))

	return &Linear[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
		backend:     backend,
	}
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear[B]) Forward(input *tensor.Tensor[float64, B]) *tensor.Tensor[float64, B] {
	inputShape := input.Shape()
	if len(inputShape) != 2 || inputShape[1] != l.inFeatures {
		panic(fmt.Sprintf("nn: Linear expects input shape [batch, %d], got %v", l.inFeatures, inputShape))
	}

	weightT := l.weight.Tensor().Transpose()
	out := input.MatMul(weightT)

	// Bias broadcasts [out_features] across the batch dimension.
	return out.Add(l.bias.Tensor())
}

// Parameters returns the weight and bias parameters.
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

// InFeatures returns the number of input features.
func (l *Linear[B]) InFeatures() int { return l.inFeatures }

// OutFeatures returns the number of output features.
func (l *Linear[B]) OutFeatures() int { return l.outFeatures }
