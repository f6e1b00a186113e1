package ops

import "github.com/collo-ml/collo/internal/tensor"

// SinOp represents the element-wise sine.
type SinOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewSinOp creates a new SinOp.
func NewSinOp(input, output *tensor.RawTensor) *SinOp {
	return &SinOp{input: input, output: output}
}

// Backward computes grad * cos(x).
func (op *SinOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Cos(op.input))}
}

// Inputs returns the input tensor.
func (op *SinOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns sin(x).
func (op *SinOp) Output() *tensor.RawTensor { return op.output }
