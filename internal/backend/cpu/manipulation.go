package cpu

import (
	"fmt"

	"github.com/collo-ml/collo/internal/tensor"
)

// Reshape returns a tensor with the same elements and a new shape.
func (b *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if newShape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("cpu: %v: reshape %v to %v", tensor.ErrShapeMismatch, t.Shape(), newShape))
	}
	out := newRaw(newShape, t.DType(), t.Device())
	copyElements(t, out)
	return out
}

func copyElements(src, dst *tensor.RawTensor) {
	switch src.DType() {
	case tensor.Float32:
		copy(dst.AsFloat32(), src.AsFloat32())
	default:
		copy(dst.AsFloat64(), src.AsFloat64())
	}
}

func transposeKernel[T tensor.DType](t *tensor.RawTensor, axes []int) *tensor.RawTensor {
	shape := t.Shape()
	outShape := make(tensor.Shape, len(shape))
	for i, ax := range axes {
		outShape[i] = shape[ax]
	}

	out := newRaw(outShape, t.DType(), t.Device())
	in, outData := data[T](t), data[T](out)
	inStrides := shape.ComputeStrides()
	outStrides := outShape.ComputeStrides()

	for i := range outData {
		linear, inIdx := i, 0
		for d := range outShape {
			coord := linear / outStrides[d]
			linear %= outStrides[d]
			inIdx += coord * inStrides[axes[d]]
		}
		outData[i] = in[inIdx]
	}
	return out
}

// Transpose permutes the tensor's axes. With no axes given the order
// of all dimensions is reversed.
func (b *Backend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	ndim := len(t.Shape())
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("cpu: transpose: %d axes for %d dimensions", len(axes), ndim))
	}

	switch t.DType() {
	case tensor.Float32:
		return transposeKernel[float32](t, axes)
	default:
		return transposeKernel[float64](t, axes)
	}
}

func expandKernel[T tensor.DType](t *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out := newRaw(shape, t.DType(), t.Device())
	in, outData := data[T](t), data[T](out)
	outStrides := shape.ComputeStrides()
	inStrides := broadcastStrides(t.Shape(), t.Strides(), shape)

	for i := range outData {
		outData[i] = in[offsetFor(i, outStrides, inStrides)]
	}
	return out
}

// Expand materializes a broadcast of t to the given shape.
func (b *Backend) Expand(t *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	result, _, err := tensor.BroadcastShapes(t.Shape(), shape)
	if err != nil || !result.Equal(shape) {
		panic(fmt.Sprintf("cpu: %v: expand %v to %v", tensor.ErrShapeMismatch, t.Shape(), shape))
	}
	switch t.DType() {
	case tensor.Float32:
		return expandKernel[float32](t, shape)
	default:
		return expandKernel[float64](t, shape)
	}
}

func catKernel[T tensor.DType](tensors []*tensor.RawTensor, dim int, outShape tensor.Shape) *tensor.RawTensor {
	out := newRaw(outShape, tensors[0].DType(), tensors[0].Device())
	outData := data[T](out)
	outStrides := outShape.ComputeStrides()

	offset := 0
	for _, t := range tensors {
		in := data[T](t)
		shape := t.Shape()
		strides := shape.ComputeStrides()
		for i := range in {
			linear, outIdx := i, 0
			for d := range shape {
				coord := linear / strides[d]
				linear %= strides[d]
				if d == dim {
					coord += offset
				}
				outIdx += coord * outStrides[d]
			}
			outData[outIdx] = in[i]
		}
		offset += shape[dim]
	}
	return out
}

// Cat concatenates tensors along a dimension.
func (b *Backend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cpu: cat: no tensors")
	}

	outShape := tensors[0].Shape().Clone()
	for _, t := range tensors[1:] {
		s := t.Shape()
		if len(s) != len(outShape) {
			panic(fmt.Sprintf("cpu: %v: cat %v with %v", tensor.ErrShapeMismatch, outShape, s))
		}
		for d := range s {
			if d == dim {
				continue
			}
			if s[d] != outShape[d] {
				panic(fmt.Sprintf("cpu: %v: cat %v with %v along dim %d", tensor.ErrShapeMismatch, tensors[0].Shape(), s, dim))
			}
		}
		outShape[dim] += s[dim]
	}

	switch tensors[0].DType() {
	case tensor.Float32:
		return catKernel[float32](tensors, dim, outShape)
	default:
		return catKernel[float64](tensors, dim, outShape)
	}
}

func narrowKernel[T tensor.DType](t *tensor.RawTensor, dim, start int, outShape tensor.Shape) *tensor.RawTensor {
	out := newRaw(outShape, t.DType(), t.Device())
	in, outData := data[T](t), data[T](out)
	inStrides := t.Shape().ComputeStrides()
	outStrides := outShape.ComputeStrides()

	for i := range outData {
		linear, inIdx := i, 0
		for d := range outShape {
			coord := linear / outStrides[d]
			linear %= outStrides[d]
			if d == dim {
				coord += start
			}
			inIdx += coord * inStrides[d]
		}
		outData[i] = in[inIdx]
	}
	return out
}

// Narrow slices length elements starting at start along dim.
func (b *Backend) Narrow(t *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := t.Shape()
	if dim < 0 || dim >= len(shape) || start < 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("cpu: narrow: dim %d [%d:%d] out of range for shape %v", dim, start, start+length, shape))
	}

	outShape := shape.Clone()
	outShape[dim] = length
	switch t.DType() {
	case tensor.Float32:
		return narrowKernel[float32](t, dim, start, outShape)
	default:
		return narrowKernel[float64](t, dim, start, outShape)
	}
}
