package cpu

import (
	"math"

	"github.com/collo-ml/collo/internal/tensor"
)

// unaryOp applies f element-wise, promoting through float64 so one
// kernel serves both dtypes.
func unaryOp(x *tensor.RawTensor, f func(float64) float64) *tensor.RawTensor {
	out := newRaw(x.Shape(), x.DType(), x.Device())
	switch x.DType() {
	case tensor.Float32:
		xd, od := x.AsFloat32(), out.AsFloat32()
		for i, v := range xd {
			od[i] = float32(f(float64(v)))
		}
	default:
		xd, od := x.AsFloat64(), out.AsFloat64()
		for i, v := range xd {
			od[i] = f(v)
		}
	}
	return out
}

// Exp computes the element-wise exponential.
func (b *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, math.Exp)
}

// Sin computes the element-wise sine.
func (b *Backend) Sin(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, math.Sin)
}

// Cos computes the element-wise cosine.
func (b *Backend) Cos(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, math.Cos)
}

// Tanh computes the element-wise hyperbolic tangent.
func (b *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return unaryOp(x, math.Tanh)
}

// MulScalar multiplies every element by a scalar.
func (b *Backend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return unaryOp(x, func(v float64) float64 { return v * scalar })
}

// AddScalar adds a scalar to every element.
func (b *Backend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	return unaryOp(x, func(v float64) float64 { return v + scalar })
}
