package pinn

import (
	"github.com/pkg/errors"

	"github.com/collo-ml/collo/internal/autodiff"
	"github.com/collo-ml/collo/internal/tensor"
)

// Data holds the training point sets as flat coordinate slices.
//
// Paired slices must have equal length: (Xf, Tf) are the interior
// collocation points, (X0, U0) the initial-condition points and their
// targets, and (Tb, Xn) the boundary times and the matching positions
// on the Neumann curve.
type Data struct {
	Xf []float64
	Tf []float64
	X0 []float64
	U0 []float64
	Tb []float64
	Xn []float64
}

func (d Data) validate() error {
	switch {
	case len(d.Xf) == 0 || len(d.X0) == 0 || len(d.Tb) == 0:
		return errors.New("pinn: empty training set")
	case len(d.Xf) != len(d.Tf):
		return errors.Wrapf(tensor.ErrShapeMismatch, "collocation: %d x vs %d t", len(d.Xf), len(d.Tf))
	case len(d.X0) != len(d.U0):
		return errors.Wrapf(tensor.ErrShapeMismatch, "initial: %d points vs %d targets", len(d.X0), len(d.U0))
	case len(d.Tb) != len(d.Xn):
		return errors.Wrapf(tensor.ErrShapeMismatch, "boundary: %d times vs %d curve positions", len(d.Tb), len(d.Xn))
	}
	return nil
}

// Parts breaks the composite loss into its terms, for logging and
// convergence diagnostics. All values are plain float64 snapshots.
type Parts struct {
	Residual  float64 // MSE of the PDE residual at collocation points
	Initial   float64 // MSE against u(x,0) = sin(2*pi*x)
	Dirichlet float64 // MSE of u(0,t) at boundary times
	Neumann   float64 // MSE of u(xn,t) - u_x(xn,t) on the moving curve
	Boundary  float64 // Dirichlet + Neumann
	Total     float64
}

// LossAssembler evaluates the composite training loss
//
//	L = MSE(r) + MSE(u0 - sin(2*pi*x0)) + MSE(u(0,tb)) + MSE(u(xn,tb) - u_x(xn,tb))
//
// over fixed training point sets. The batch tensors are built once at
// construction; every Evaluate records a fresh forward graph over them.
type LossAssembler[B autodiff.BackwardCapable] struct {
	model    Model[B]
	residual *Residual[B]

	xf, tf *tensor.Tensor[float64, B] // leaves, residual derivatives resolve against them
	x0, t0 *tensor.Tensor[float64, B]
	u0     *tensor.Tensor[float64, B]
	xd, tb *tensor.Tensor[float64, B]
	xn     *tensor.Tensor[float64, B] // leaf, u_x on the Neumann curve resolves against it
}

// NewLossAssembler builds the batch tensors from data and returns an
// assembler over model. The collocation coordinates and the Neumann
// curve positions are marked as differentiation leaves here, before
// any arithmetic can consume them.
func NewLossAssembler[B autodiff.BackwardCapable](model Model[B], data Data, backend B) (*LossAssembler[B], error) {
	if err := data.validate(); err != nil {
		return nil, err
	}

	l := &LossAssembler[B]{model: model, residual: NewResidual(model)}

	var err error
	if l.xf, err = tensor.Column(data.Xf, backend); err != nil {
		return nil, err
	}
	if l.tf, err = tensor.Column(data.Tf, backend); err != nil {
		return nil, err
	}
	l.xf.RequireGrad()
	l.tf.RequireGrad()

	if l.x0, err = tensor.Column(data.X0, backend); err != nil {
		return nil, err
	}
	if l.u0, err = tensor.Column(data.U0, backend); err != nil {
		return nil, err
	}
	l.t0 = tensor.Zeros[float64](tensor.Shape{len(data.X0), 1}, backend)

	if l.tb, err = tensor.Column(data.Tb, backend); err != nil {
		return nil, err
	}
	if l.xn, err = tensor.Column(data.Xn, backend); err != nil {
		return nil, err
	}
	l.xn.RequireGrad()
	l.xd = tensor.Zeros[float64](tensor.Shape{len(data.Tb), 1}, backend)

	return l, nil
}

// Evaluate computes the composite loss. The returned tensor has shape
// {1} and stays connected to the recorded graph, so a backward pass on
// it yields parameter gradients. Parts carries the term values as
// plain numbers.
func (l *LossAssembler[B]) Evaluate() (*tensor.Tensor[float64, B], Parts, error) {
	var parts Parts

	// PDE residual at interior collocation points.
	r, err := l.residual.Evaluate(l.xf, l.tf)
	if err != nil {
		return nil, parts, err
	}
	lossF := r.Square().Mean()

	// Initial condition u(x,0) = sin(2*pi*x).
	uInit := l.model.Forward(l.x0, l.t0)
	lossI := uInit.Sub(l.u0).Square().Mean()

	// Dirichlet condition u(0,t) = 0.
	uDir := l.model.Forward(l.xd, l.tb)
	lossD := uDir.Square().Mean()

	// Neumann-type condition u - u_x = 0 along the moving curve.
	uNeu := l.model.Forward(l.xn, l.tb)
	ux, err := autodiff.Derivative(uNeu, l.xn, 1)
	if err != nil {
		return nil, parts, errors.Wrap(err, "loss: u_x on the Neumann curve")
	}
	lossN := uNeu.Sub(ux).Square().Mean()

	total := lossF.Add(lossI).Add(lossD).Add(lossN)

	parts.Residual = lossF.Item()
	parts.Initial = lossI.Item()
	parts.Dirichlet = lossD.Item()
	parts.Neumann = lossN.Item()
	parts.Boundary = parts.Dirichlet + parts.Neumann
	parts.Total = total.Item()
	return total, parts, nil
}
