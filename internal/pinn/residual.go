package pinn

import (
	"github.com/pkg/errors"

	"github.com/collo-ml/collo/internal/autodiff"
	"github.com/collo-ml/collo/internal/tensor"
)

// Residual evaluates the heat equation residual
//
//	r(x,t) = u_t(x,t) - u_xx(x,t)
//
// at batches of collocation points. A zero residual means the model
// satisfies the PDE exactly at those points.
type Residual[B autodiff.BackwardCapable] struct {
	model Model[B]
}

// NewResidual creates a residual evaluator over the given model.
func NewResidual[B autodiff.BackwardCapable](model Model[B]) *Residual[B] {
	return &Residual[B]{model: model}
}

// Evaluate computes the residual at the coordinate columns x and t,
// both shaped [N,1] and both marked as differentiation leaves. The
// forward pass must be recorded on the backend's tape, so the caller
// starts recording before building the batch.
func (r *Residual[B]) Evaluate(x, t *tensor.Tensor[float64, B]) (*tensor.Tensor[float64, B], error) {
	if !x.RequiresGrad() {
		return nil, errors.Wrap(autodiff.ErrNotLeaf, "residual: collocation x")
	}
	if !t.RequiresGrad() {
		return nil, errors.Wrap(autodiff.ErrNotLeaf, "residual: collocation t")
	}

	u := r.model.Forward(x, t)

	ut, err := autodiff.Derivative(u, t, 1)
	if err != nil {
		return nil, errors.Wrap(err, "residual: u_t")
	}
	uxx, err := autodiff.Derivative(u, x, 2)
	if err != nil {
		return nil, errors.Wrap(err, "residual: u_xx")
	}

	return ut.Sub(uxx), nil
}
