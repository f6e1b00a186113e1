package ops

import "github.com/collo-ml/collo/internal/tensor"

// TanhOp represents the element-wise hyperbolic tangent.
type TanhOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewTanhOp creates a new TanhOp.
func NewTanhOp(input, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{input: input, output: output}
}

// Backward computes grad * (1 - tanh(x)^2), reusing the forward output.
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	squared := backend.Mul(op.output, op.output)
	ones := constLike(op.output, 1)
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Sub(ones, squared))}
}

// Inputs returns the input tensor.
func (op *TanhOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns tanh(x).
func (op *TanhOp) Output() *tensor.RawTensor { return op.output }
