package ops

import "github.com/collo-ml/collo/internal/tensor"

// NarrowOp represents a contiguous slice along one dimension.
type NarrowOp struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
	dim    int
	start  int
	length int
}

// NewNarrowOp creates a new NarrowOp.
func NewNarrowOp(input, output *tensor.RawTensor, dim, start, length int) *NarrowOp {
	return &NarrowOp{input: input, output: output, dim: dim, start: start, length: length}
}

// Backward pads the gradient with zeros back to the input's extent.
func (op *NarrowOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inShape := op.input.Shape()
	pieces := make([]*tensor.RawTensor, 0, 3)
	if op.start > 0 {
		before := inShape.Clone()
		before[op.dim] = op.start
		pieces = append(pieces, zeros(before, op.input))
	}
	pieces = append(pieces, outputGrad)
	if after := inShape[op.dim] - op.start - op.length; after > 0 {
		shape := inShape.Clone()
		shape[op.dim] = after
		pieces = append(pieces, zeros(shape, op.input))
	}
	if len(pieces) == 1 {
		return []*tensor.RawTensor{outputGrad}
	}
	return []*tensor.RawTensor{backend.Cat(pieces, op.dim)}
}

// Inputs returns the input tensor.
func (op *NarrowOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

// Output returns the slice.
func (op *NarrowOp) Output() *tensor.RawTensor { return op.output }

func zeros(shape tensor.Shape, like *tensor.RawTensor) *tensor.RawTensor {
	out, err := tensor.NewRaw(shape, like.DType(), like.Device())
	if err != nil {
		panic("ops: " + err.Error())
	}
	return out
}
