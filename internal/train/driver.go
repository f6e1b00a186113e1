package train

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/optimize"
	"k8s.io/klog/v2"

	"github.com/collo-ml/collo/internal/autodiff"
)

// State tracks the driver through its lifecycle.
type State int

const (
	// StateIdle means Run has not been called yet.
	StateIdle State = iota
	// StateEvaluating means the optimizer is running closure evaluations.
	StateEvaluating
	// StateConverged means a convergence criterion was met.
	StateConverged
	// StateBudgetExhausted means the iteration or evaluation budget ran
	// out before convergence. The parameters reached are still usable.
	StateBudgetExhausted
	// StateFailed means an evaluation hit a hard error or the line
	// search broke down.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateEvaluating:
		return "Evaluating"
	case StateConverged:
		return "Converged"
	case StateBudgetExhausted:
		return "IterationBudgetExhausted"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Config controls the optimization run.
type Config struct {
	// MaxIterations caps major (quasi-Newton) iterations. 0 means no cap.
	MaxIterations int
	// MaxEvaluations caps closure evaluations, line-search trials
	// included. 0 means no cap.
	MaxEvaluations int
	// GradientTolerance declares convergence when the gradient
	// infinity-norm drops below it.
	GradientTolerance float64
	// LossTolerance declares convergence when the loss stops improving
	// by more than this amount. 0 disables the loss criterion.
	LossTolerance float64
	// LogEvery is the logging cadence in evaluations.
	LogEvery int
	// CheckpointPath, when set, receives parameter snapshots during the
	// run and the final parameters after it.
	CheckpointPath string
	// CheckpointEvery is the snapshot cadence in evaluations.
	CheckpointEvery int
}

// DefaultConfig returns the standard run settings.
func DefaultConfig() Config {
	return Config{
		MaxIterations:     50000,
		GradientTolerance: 1e-8,
		LogEvery:          50,
		CheckpointEvery:   1000,
	}
}

// Result summarizes a finished run.
type Result struct {
	State      State
	Loss       float64
	Iterations int
	Evals      int
	History    []Record
}

// Driver owns one optimization run: it hands the evaluator's closures
// to an L-BFGS minimizer and maps the outcome back onto the solver's
// lifecycle states.
type Driver[B autodiff.BackwardCapable] struct {
	eval  *Evaluator[B]
	cfg   Config
	state State
}

// NewDriver creates a driver over the evaluator.
func NewDriver[B autodiff.BackwardCapable](eval *Evaluator[B], cfg Config) *Driver[B] {
	return &Driver[B]{eval: eval, cfg: cfg, state: StateIdle}
}

// State returns the current lifecycle state.
func (d *Driver[B]) State() State { return d.state }

// Run minimizes the loss starting from the network's current
// parameters and leaves the best parameters found loaded into the
// network. It returns the run summary; the error is non-nil only for
// the Failed state.
func (d *Driver[B]) Run() (Result, error) {
	d.state = StateEvaluating

	if d.cfg.CheckpointPath != "" && d.cfg.CheckpointEvery > 0 {
		d.eval.OnEvaluation(func(r Record) {
			if r.Eval%d.cfg.CheckpointEvery != 0 {
				return
			}
			if err := WriteCheckpoint(d.cfg.CheckpointPath, d.eval.lastX); err != nil {
				klog.Warningf("checkpoint at eval %d failed: %v", r.Eval, err)
			}
		})
	}

	problem := optimize.Problem{
		Func: d.eval.Func,
		Grad: d.eval.Grad,
		Status: func() (optimize.Status, error) {
			if err := d.eval.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}

	settings := &optimize.Settings{
		GradientThreshold: d.cfg.GradientTolerance,
		MajorIterations:   d.cfg.MaxIterations,
		FuncEvaluations:   d.cfg.MaxEvaluations,
	}
	if d.cfg.LossTolerance > 0 {
		settings.Converger = &optimize.FunctionConverge{
			Absolute:   d.cfg.LossTolerance,
			Iterations: 100,
		}
	}

	x0 := d.eval.Flatten()
	klog.Infof("starting L-BFGS over %d parameters", len(x0))

	result, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})

	res := Result{
		Evals:   d.eval.Evals(),
		History: d.eval.History(),
	}
	if result != nil {
		res.Loss = result.F
		res.Iterations = result.Stats.MajorIterations
		d.eval.SetParams(result.X)
	}

	switch {
	case d.eval.Err() != nil:
		d.state = StateFailed
		res.State = d.state
		return res, d.eval.Err()
	case err != nil:
		d.state = StateFailed
		res.State = d.state
		return res, errors.Wrap(err, "train: minimize")
	}

	switch result.Status {
	case optimize.GradientThreshold, optimize.FunctionConvergence, optimize.Success:
		d.state = StateConverged
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit:
		d.state = StateBudgetExhausted
	default:
		d.state = StateFailed
		res.State = d.state
		return res, errors.Errorf("train: optimizer stopped with status %v", result.Status)
	}
	res.State = d.state

	if d.cfg.CheckpointPath != "" {
		if werr := WriteCheckpoint(d.cfg.CheckpointPath, result.X); werr != nil {
			klog.Warningf("final checkpoint failed: %v", werr)
		}
	}

	klog.Infof("finished: state=%s loss=%.6e iterations=%d evals=%d",
		d.state, res.Loss, res.Iterations, res.Evals)
	return res, nil
}
