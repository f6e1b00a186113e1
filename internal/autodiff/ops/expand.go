package ops

import "github.com/collo-ml/collo/internal/tensor"

// ExpandOp represents a broadcast of the input to a larger shape.
type ExpandOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewExpandOp creates a new ExpandOp.
func NewExpandOp(input, output *tensor.RawTensor) *ExpandOp {
	return &ExpandOp{input: input, output: output}
}

// Backward sums the gradient along the broadcast dimensions.
func (op *ExpandOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{reduceBroadcast(outputGrad, op.input.Shape(), backend)}
}

// Inputs returns the input tensor.
func (op *ExpandOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the expanded tensor.
func (op *ExpandOp) Output() *tensor.RawTensor { return op.output }
