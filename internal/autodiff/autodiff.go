// Package autodiff implements reverse-mode automatic differentiation
// as a backend decorator.
//
// Backend wraps any tensor.Backend and records every operation on a
// gradient tape while forwarding the actual computation to the inner
// backend. Differentiation replays the tape in reverse. Because the
// replay itself goes through the decorator, a backward pass run with
// graph construction enabled produces gradients that are again
// differentiable, which is how higher-order derivatives are obtained.
package autodiff

import (
	"github.com/collo-ml/collo/internal/autodiff/ops"
	"github.com/collo-ml/collo/internal/tensor"
)

// BackwardCapable is a backend that carries a gradient tape.
type BackwardCapable interface {
	tensor.Backend
	Tape() *Tape
}

// Backend decorates an inner backend with tape recording.
type Backend[B tensor.Backend] struct {
	inner B
	tape  *Tape
}

// New wraps inner with a fresh, recording-disabled tape.
func New[B tensor.Backend](inner B) *Backend[B] {
	return &Backend[B]{inner: inner, tape: NewTape()}
}

// Tape returns the gradient tape.
func (a *Backend[B]) Tape() *Tape { return a.tape }

// Inner returns the wrapped backend.
func (a *Backend[B]) Inner() B { return a.inner }

// Name returns the backend name.
func (a *Backend[B]) Name() string { return "Autodiff(" + a.inner.Name() + ")" }

// Device returns the inner backend's device.
func (a *Backend[B]) Device() tensor.Device { return a.inner.Device() }

// Add computes a + b with broadcasting.
func (a *Backend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Add(x, y)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewAddOp(x, y, out))
	}
	return out
}

// Sub computes a - b with broadcasting.
func (a *Backend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Sub(x, y)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewSubOp(x, y, out))
	}
	return out
}

// Mul computes a * b with broadcasting.
func (a *Backend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Mul(x, y)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewMulOp(x, y, out))
	}
	return out
}

// Div computes a / b with broadcasting.
func (a *Backend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Div(x, y)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewDivOp(x, y, out))
	}
	return out
}

// MatMul computes the 2-D matrix product.
func (a *Backend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.MatMul(x, y)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewMatMulOp(x, y, out))
	}
	return out
}

// Transpose permutes axes (reversed when none are given).
func (a *Backend[B]) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	resolved := axes
	if len(resolved) == 0 {
		n := len(t.Shape())
		resolved = make([]int, n)
		for i := range resolved {
			resolved[i] = n - 1 - i
		}
	}
	out := a.inner.Transpose(t, resolved...)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewTransposeOp(t, out, resolved))
	}
	return out
}

// Reshape changes the shape without changing elements.
func (a *Backend[B]) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	out := a.inner.Reshape(t, newShape)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewReshapeOp(t, out))
	}
	return out
}

// Expand broadcasts t to a larger shape.
func (a *Backend[B]) Expand(t *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out := a.inner.Expand(t, shape)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewExpandOp(t, out))
	}
	return out
}

// Cat concatenates tensors along dim.
func (a *Backend[B]) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	out := a.inner.Cat(tensors, dim)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewCatOp(tensors, out, dim))
	}
	return out
}

// Narrow slices a contiguous range along dim.
func (a *Backend[B]) Narrow(t *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	out := a.inner.Narrow(t, dim, start, length)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewNarrowOp(t, out, dim, start, length))
	}
	return out
}

// MulScalar multiplies every element by scalar.
func (a *Backend[B]) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	out := a.inner.MulScalar(x, scalar)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewMulScalarOp(x, out, scalar))
	}
	return out
}

// AddScalar adds scalar to every element.
func (a *Backend[B]) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	out := a.inner.AddScalar(x, scalar)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewAddScalarOp(x, out))
	}
	return out
}

// Exp computes the element-wise exponential.
func (a *Backend[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Exp(x)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewExpOp(x, out))
	}
	return out
}

// Sin computes the element-wise sine.
func (a *Backend[B]) Sin(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Sin(x)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewSinOp(x, out))
	}
	return out
}

// Cos computes the element-wise cosine.
func (a *Backend[B]) Cos(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Cos(x)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewCosOp(x, out))
	}
	return out
}

// Tanh computes the element-wise hyperbolic tangent.
func (a *Backend[B]) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Tanh(x)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewTanhOp(x, out))
	}
	return out
}

// Sum reduces all elements to a shape {1} tensor.
func (a *Backend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.inner.Sum(x)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewSumOp(x, out))
	}
	return out
}

// SumDim sums along one dimension.
func (a *Backend[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	out := a.inner.SumDim(x, dim, keepDim)
	if a.tape.IsRecording() {
		a.tape.Record(ops.NewSumDimOp(x, out, dim, keepDim))
	}
	return out
}
