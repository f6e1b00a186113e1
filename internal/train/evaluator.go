// Package train drives the quasi-Newton optimization of the solver
// network. The loss and its parameter gradient are exposed as the
// closure pair gonum's optimizers expect, with the line search free to
// re-evaluate the closure at trial points as often as it needs.
package train

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"

	"github.com/collo-ml/collo/internal/autodiff"
	"github.com/collo-ml/collo/internal/nn"
	"github.com/collo-ml/collo/internal/pinn"
)

// ErrNonFinite reports a loss or gradient that is NaN or infinite.
// Evaluations that hit it are rejected by the line search rather than
// aborting the run.
var ErrNonFinite = errors.New("train: non-finite loss or gradient")

// Record is one logged evaluation.
type Record struct {
	Eval  int
	Loss  float64
	Parts pinn.Parts
}

// Evaluator adapts the composite loss to gonum's Func/Grad closure
// protocol over a flat parameter vector.
//
// Every evaluation counts, including line-search re-evaluations at
// trial points: the evaluation counter increments once per distinct
// parameter vector evaluated. Back-to-back Func and Grad calls at the
// same point reuse one evaluation.
type Evaluator[B autodiff.BackwardCapable] struct {
	assembler *pinn.LossAssembler[B]
	params    []*nn.Parameter[B]
	backend   B

	logEvery int
	onEval   func(Record)

	evals   int
	history []Record
	err     error // sticky: first hard failure aborts the run

	lastX    []float64
	lastLoss float64
	lastGrad []float64
}

// NewEvaluator creates an evaluator over the model parameters.
// logEvery controls the logging cadence in evaluations; 0 disables
// periodic logging.
func NewEvaluator[B autodiff.BackwardCapable](assembler *pinn.LossAssembler[B], params []*nn.Parameter[B], backend B, logEvery int) *Evaluator[B] {
	return &Evaluator[B]{
		assembler: assembler,
		params:    params,
		backend:   backend,
		logEvery:  logEvery,
	}
}

// NumParams returns the total number of scalar parameters.
func (e *Evaluator[B]) NumParams() int {
	n := 0
	for _, p := range e.params {
		n += p.Tensor().NumElements()
	}
	return n
}

// Flatten copies all parameters into one flat vector, in parameter
// order. The optimizer owns this layout; SetParams inverts it.
func (e *Evaluator[B]) Flatten() []float64 {
	x := make([]float64, 0, e.NumParams())
	for _, p := range e.params {
		x = append(x, p.Tensor().Data()...)
	}
	return x
}

// SetParams writes a flat vector back into the parameter tensors.
func (e *Evaluator[B]) SetParams(x []float64) {
	offset := 0
	for _, p := range e.params {
		data := p.Tensor().Data()
		copy(data, x[offset:offset+len(data)])
		offset += len(data)
	}
}

// Evals returns the number of closure evaluations so far.
func (e *Evaluator[B]) Evals() int { return e.evals }

// History returns the per-evaluation loss records.
func (e *Evaluator[B]) History() []Record { return e.history }

// Err returns the first hard failure, or nil.
func (e *Evaluator[B]) Err() error { return e.err }

// OnEvaluation installs a hook called after every completed
// evaluation, before logging.
func (e *Evaluator[B]) OnEvaluation(fn func(Record)) { e.onEval = fn }

// Func returns the loss at x. Part of gonum's optimize.Problem.
func (e *Evaluator[B]) Func(x []float64) float64 {
	if e.err != nil {
		return math.Inf(1)
	}
	if e.lastX == nil || !floats.Equal(x, e.lastX) {
		e.evaluate(x)
	}
	return e.lastLoss
}

// Grad writes the loss gradient at x into grad. Part of gonum's
// optimize.Problem.
func (e *Evaluator[B]) Grad(grad, x []float64) {
	if e.err != nil {
		for i := range grad {
			grad[i] = 0
		}
		return
	}
	if e.lastX == nil || !floats.Equal(x, e.lastX) {
		e.evaluate(x)
	}
	copy(grad, e.lastGrad)
}

// evaluate runs one full closure evaluation at x: load parameters,
// rebuild the forward graph, assemble the loss, backpropagate into
// the parameters, and cache the results for the matching Func/Grad
// pair.
func (e *Evaluator[B]) evaluate(x []float64) {
	e.SetParams(x)
	for _, p := range e.params {
		p.ZeroGrad()
	}

	tape := e.backend.Tape()
	tape.Clear()
	tape.StartRecording()
	defer tape.StopRecording()

	loss, parts, err := e.assembler.Evaluate()
	if err != nil {
		e.fail(err)
		return
	}

	lossVal := loss.Item()
	grads := autodiff.Backward(loss)

	flat := make([]float64, 0, e.NumParams())
	for _, p := range e.params {
		g, ok := grads[p.Tensor().Raw()]
		if !ok {
			e.fail(errors.Wrapf(autodiff.ErrNotInGraph, "parameter %q", p.Name()))
			return
		}
		flat = append(flat, g.AsFloat64()...)
	}

	e.lastX = append(e.lastX[:0], x...)
	e.lastLoss = lossVal
	e.lastGrad = flat

	if !isFinite(lossVal) || !allFinite(flat) {
		// Reject the trial point instead of aborting: the line search
		// backtracks to a shorter step.
		klog.Warningf("eval %d: non-finite loss or gradient, rejecting trial point", e.evals+1)
		e.lastLoss = math.Inf(1)
	}

	e.evals++
	rec := Record{Eval: e.evals, Loss: e.lastLoss, Parts: parts}
	e.history = append(e.history, rec)

	if e.onEval != nil {
		e.onEval(rec)
	}
	if e.logEvery > 0 && e.evals%e.logEvery == 0 {
		klog.Infof("eval %d: loss=%.6e residual=%.3e initial=%.3e boundary=%.3e",
			e.evals, parts.Total, parts.Residual, parts.Initial, parts.Boundary)
	}
}

func (e *Evaluator[B]) fail(err error) {
	e.err = err
	e.lastX = nil
	e.lastLoss = math.Inf(1)
	klog.Errorf("evaluation failed: %v", err)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(vs []float64) bool {
	for _, v := range vs {
		if !isFinite(v) {
			return false
		}
	}
	return true
}
