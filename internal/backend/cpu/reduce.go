package cpu

import (
	"fmt"

	"github.com/collo-ml/collo/internal/tensor"
)

func sumKernel[T tensor.DType](x *tensor.RawTensor) *tensor.RawTensor {
	out := newRaw(tensor.Shape{1}, x.DType(), x.Device())
	var acc T
	for _, v := range data[T](x) {
		acc += v
	}
	data[T](out)[0] = acc
	return out
}

// Sum reduces all elements to a shape {1} tensor.
func (b *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	switch x.DType() {
	case tensor.Float32:
		return sumKernel[float32](x)
	default:
		return sumKernel[float64](x)
	}
}

func sumDimKernel[T tensor.DType](x *tensor.RawTensor, dim int, outShape tensor.Shape) *tensor.RawTensor {
	out := newRaw(outShape, x.DType(), x.Device())
	xData, outData := data[T](x), data[T](out)

	shape := x.Shape()
	strides := shape.ComputeStrides()
	// Strides of the kept-dimension result, with the reduced dim pinned.
	outStrides := outShape.ComputeStrides()

	for i := range xData {
		linear, outIdx := i, 0
		for d := range shape {
			coord := linear / strides[d]
			linear %= strides[d]
			if d != dim {
				outIdx += coord * outStrides[d]
			}
		}
		outData[outIdx] += xData[i]
	}
	return out
}

// SumDim sums along a dimension. With keepDim the reduced dimension
// stays with size 1, otherwise it is dropped.
func (b *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("cpu: sumdim: invalid dimension %d for shape %v", dim, shape))
	}

	kept := shape.Clone()
	kept[dim] = 1

	var out *tensor.RawTensor
	switch x.DType() {
	case tensor.Float32:
		out = sumDimKernel[float32](x, dim, kept)
	default:
		out = sumDimKernel[float64](x, dim, kept)
	}

	if !keepDim {
		squeezed := append(tensor.Shape{}, kept[:dim]...)
		squeezed = append(squeezed, kept[dim+1:]...)
		if len(squeezed) == 0 {
			squeezed = tensor.Shape{1}
		}
		out = b.Reshape(out, squeezed)
	}
	return out
}
