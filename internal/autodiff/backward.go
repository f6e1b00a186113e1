package autodiff

import (
	"github.com/pkg/errors"

	"github.com/collo-ml/collo/internal/autodiff/ops"
	"github.com/collo-ml/collo/internal/tensor"
)

var (
	// ErrNotLeaf reports a derivative request against a tensor that was
	// never marked as a differentiation variable.
	ErrNotLeaf = errors.New("autodiff: tensor does not require gradients")

	// ErrNotInGraph reports a derivative request against a leaf the
	// output does not depend on through recorded operations.
	ErrNotInGraph = errors.New("autodiff: tensor is not part of the recorded graph")
)

// Backward computes first-order gradients of loss with respect to every
// tensor in the recorded graph. For batched outputs the pass is seeded
// with ones, which differentiates the sum of the output's elements.
//
// The returned map is keyed by *RawTensor, so callers look up the
// gradient of a Tensor via its Raw() pointer.
func Backward[T tensor.DType, B BackwardCapable](loss *tensor.Tensor[T, B]) map[*tensor.RawTensor]*tensor.RawTensor {
	backend := loss.Backend()
	seed := ops.OnesLike(loss.Raw())
	return backend.Tape().Backward(loss.Raw(), seed, backend, false)
}

// Derivative computes the order-th partial derivative of y with respect
// to the leaf x, element-wise over the batch.
//
// Each pass runs backward with graph construction enabled, so the
// gradient it produces is itself differentiable and the next pass can
// differentiate it again. The result has y's shape.
//
// Returns ErrNotLeaf when x was never marked with RequireGrad, and
// ErrNotInGraph when some pass produces no gradient for x. The latter
// also fires when an intermediate derivative is constant in x (its
// graph no longer reaches the leaf), which for well-posed PDE networks
// does not occur.
func Derivative[T tensor.DType, B BackwardCapable](y, x *tensor.Tensor[T, B], order int) (*tensor.Tensor[T, B], error) {
	if order < 1 {
		return nil, errors.Errorf("autodiff: derivative order must be >= 1, got %d", order)
	}
	if !x.RequiresGrad() {
		return nil, errors.Wrapf(ErrNotLeaf, "derivative of order %d", order)
	}

	backend := y.Backend()
	tape := backend.Tape()

	current := y.Raw()
	for k := 1; k <= order; k++ {
		seed := ops.OnesLike(current)
		grads := tape.Backward(current, seed, backend, true)
		grad, ok := grads[x.Raw()]
		if !ok {
			return nil, errors.Wrapf(ErrNotInGraph, "derivative of order %d (pass %d)", order, k)
		}
		current = grad
	}

	return tensor.New[T, B](current, backend), nil
}
