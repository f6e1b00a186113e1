package ops

import "github.com/collo-ml/collo/internal/tensor"

// CatOp represents a concatenation of tensors along one dimension.
type CatOp struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
	dim    int
}

// NewCatOp creates a new CatOp.
func NewCatOp(inputs []*tensor.RawTensor, output *tensor.RawTensor, dim int) *CatOp {
	return &CatOp{inputs: inputs, output: output, dim: dim}
}

// Backward slices the gradient back into one piece per input.
func (op *CatOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	grads := make([]*tensor.RawTensor, len(op.inputs))
	offset := 0
	for i, in := range op.inputs {
		length := in.Shape()[op.dim]
		grads[i] = backend.Narrow(outputGrad, op.dim, offset, length)
		offset += length
	}
	return grads
}

// Inputs returns the concatenated tensors.
func (op *CatOp) Inputs() []*tensor.RawTensor { return op.inputs }

// Output returns the concatenation.
func (op *CatOp) Output() *tensor.RawTensor { return op.output }
