package ops

import (
	"fmt"

	"github.com/collo-ml/collo/internal/tensor"
)

// constLike allocates an untracked constant tensor with the shape and
// dtype of t. Constants are graph leaves with no gradient of their
// own, so they are created outside the backend on purpose.
func constLike(t *tensor.RawTensor, value float64) *tensor.RawTensor {
	out, err := tensor.NewRaw(t.Shape(), t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("ops: %v", err))
	}
	switch out.DType() {
	case tensor.Float32:
		data := out.AsFloat32()
		for i := range data {
			data[i] = float32(value)
		}
	default:
		data := out.AsFloat64()
		for i := range data {
			data[i] = value
		}
	}
	return out
}

// OnesLike returns an untracked all-ones tensor shaped like t. The
// tape uses it to seed backward passes (the sum-of-outputs surrogate
// for batched outputs).
func OnesLike(t *tensor.RawTensor) *tensor.RawTensor {
	return constLike(t, 1)
}

// reduceBroadcast reduces a gradient to the target shape after a
// broadcast forward op, summing along the broadcast dimensions. The
// reduction goes through the backend so it stays differentiable. When
// the shapes already match the gradient is returned as-is: pointer
// identity, not a copy, is what links it into the graph.
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(targetShape) {
		return grad
	}

	// Align from the right: sum away extra leading dimensions first.
	result := grad
	for len(result.Shape()) > len(targetShape) {
		result = backend.SumDim(result, 0, false)
	}

	// Then sum the dimensions where the target is 1.
	for d := 0; d < len(targetShape); d++ {
		if targetShape[d] == 1 && result.Shape()[d] > 1 {
			result = backend.SumDim(result, d, true)
		}
	}

	if !result.Shape().Equal(targetShape) {
		result = backend.Reshape(result, targetShape)
	}
	return result
}
