package cpu

import (
	"fmt"

	"github.com/collo-ml/collo/internal/tensor"
)

// binaryOp applies f element-wise over a and b with broadcasting.
func binaryOp[T tensor.DType](a, b *tensor.RawTensor, f func(T, T) T) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("cpu: %v", err))
	}

	out := newRaw(outShape, a.DType(), a.Device())
	aData, bData, outData := data[T](a), data[T](b), data[T](out)

	if !needsBroadcast {
		for i := range outData {
			outData[i] = f(aData[i], bData[i])
		}
		return out
	}

	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(a.Shape(), a.Strides(), outShape)
	bStrides := broadcastStrides(b.Shape(), b.Strides(), outShape)
	for i := range outData {
		outData[i] = f(aData[offsetFor(i, outStrides, aStrides)], bData[offsetFor(i, outStrides, bStrides)])
	}
	return out
}

// dispatch2 selects the float32 or float64 kernel by runtime dtype.
func dispatch2(a, b *tensor.RawTensor, f32 func(float32, float32) float32, f64 func(float64, float64) float64) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("cpu: mixed dtypes %s and %s", a.DType(), b.DType()))
	}
	switch a.DType() {
	case tensor.Float32:
		return binaryOp(a, b, f32)
	default:
		return binaryOp(a, b, f64)
	}
}

// Add performs element-wise addition.
func (b *Backend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	return dispatch2(x, y,
		func(a, c float32) float32 { return a + c },
		func(a, c float64) float64 { return a + c })
}

// Sub performs element-wise subtraction.
func (b *Backend) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	return dispatch2(x, y,
		func(a, c float32) float32 { return a - c },
		func(a, c float64) float64 { return a - c })
}

// Mul performs element-wise multiplication.
func (b *Backend) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	return dispatch2(x, y,
		func(a, c float32) float32 { return a * c },
		func(a, c float64) float64 { return a * c })
}

// Div performs element-wise division.
func (b *Backend) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	return dispatch2(x, y,
		func(a, c float32) float32 { return a / c },
		func(a, c float64) float64 { return a / c })
}
