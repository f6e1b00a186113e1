package ops

import "github.com/collo-ml/collo/internal/tensor"

// CosOp represents the element-wise cosine.
type CosOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// NewCosOp creates a new CosOp.
func NewCosOp(input, output *tensor.RawTensor) *CosOp {
	return &CosOp{input: input, output: output}
}

// Backward computes grad * -sin(x).
func (op *CosOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	negSin := backend.MulScalar(backend.Sin(op.input), -1)
	return []*tensor.RawTensor{backend.Mul(outputGrad, negSin)}
}

// Inputs returns the input tensor.
func (op *CosOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns cos(x).
func (op *CosOp) Output() *tensor.RawTensor { return op.output }
