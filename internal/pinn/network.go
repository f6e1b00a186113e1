// Package pinn implements a mesh-free solver for the 1-D heat equation
//
//	u_t - u_xx = 0,  (x, t) in [0,1] x [0,T]
//
// using a physics-informed neural network: a dense feed-forward model
// approximates u(x,t), the PDE residual is evaluated at scattered
// collocation points through automatic differentiation, and a composite
// loss ties the network to the equation, the initial condition and the
// boundary conditions.
package pinn

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"github.com/collo-ml/collo/internal/nn"
	"github.com/collo-ml/collo/internal/tensor"
)

// Config describes the approximation network.
type Config struct {
	// HiddenWidth is the number of units per hidden layer.
	HiddenWidth int
	// HiddenDepth is the number of hidden layers.
	HiddenDepth int
	// Seed seeds weight initialization.
	Seed uint64
}

// DefaultConfig returns the standard solver architecture: 5 hidden
// tanh layers of 100 units.
func DefaultConfig() Config {
	return Config{HiddenWidth: 100, HiddenDepth: 5, Seed: 1}
}

func (c Config) withDefaults() Config {
	if c.HiddenWidth <= 0 {
		c.HiddenWidth = 100
	}
	if c.HiddenDepth <= 0 {
		c.HiddenDepth = 5
	}
	return c
}

// Model is anything that maps coordinate batches to a solution batch.
// The residual and loss computations depend only on this, which keeps
// them testable against closed-form models.
type Model[B tensor.Backend] interface {
	Forward(x, t *tensor.Tensor[float64, B]) *tensor.Tensor[float64, B]
}

// Network approximates the solution u(x,t) with a dense feed-forward
// net. Inputs are [N,1] coordinate columns; the output is an [N,1]
// solution column.
type Network[B tensor.Backend] struct {
	cfg     Config
	model   *nn.Sequential[B]
	backend B
}

// NewNetwork builds the approximation network: an input layer taking
// (x,t), cfg.HiddenDepth tanh layers of cfg.HiddenWidth units, and a
// linear output layer producing u.
func NewNetwork[B tensor.Backend](cfg Config, backend B) *Network[B] {
	n := &Network[B]{cfg: cfg.withDefaults(), backend: backend}
	n.model = buildModel(n.cfg, backend)
	return n
}

func buildModel[B tensor.Backend](cfg Config, backend B) *nn.Sequential[B] {
	rng := rand.New(rand.NewSource(cfg.Seed))

	modules := make([]nn.Module[B], 0, 2*cfg.HiddenDepth+1)
	width := 2
	for i := 0; i < cfg.HiddenDepth; i++ {
		modules = append(modules,
			nn.NewLinear(width, cfg.HiddenWidth, rng, backend),
			nn.NewTanh[B]())
		width = cfg.HiddenWidth
	}
	modules = append(modules, nn.NewLinear(width, 1, rng, backend))

	return nn.NewSequential(modules...)
}

// Forward evaluates the network on coordinate columns x and t, both
// shaped [N,1], and returns u shaped [N,1]. The coordinates are
// concatenated into the [N,2] input the first layer expects.
func (n *Network[B]) Forward(x, t *tensor.Tensor[float64, B]) *tensor.Tensor[float64, B] {
	in := tensor.Cat([]*tensor.Tensor[float64, B]{x, t}, 1)
	return n.model.Forward(in)
}

// Parameters returns all trainable parameters in layer order.
func (n *Network[B]) Parameters() []*nn.Parameter[B] {
	return n.model.Parameters()
}

// Config returns the effective network configuration.
func (n *Network[B]) Config() Config {
	return n.cfg
}

// Reinitialize resets all weights from the given seed, discarding the
// current parameters.
func (n *Network[B]) Reinitialize(seed uint64) {
	n.cfg.Seed = seed
	n.model = buildModel(n.cfg, n.backend)
}

// Predict evaluates the trained network at the given coordinates
// without any gradient bookkeeping.
func (n *Network[B]) Predict(xs, ts []float64) ([]float64, error) {
	if len(xs) != len(ts) {
		return nil, errors.Wrapf(tensor.ErrShapeMismatch,
			"predict: %d x coordinates vs %d t coordinates", len(xs), len(ts))
	}
	x, err := tensor.Column(xs, n.backend)
	if err != nil {
		return nil, err
	}
	t, err := tensor.Column(ts, n.backend)
	if err != nil {
		return nil, err
	}
	u := n.Forward(x, t)
	out := make([]float64, len(xs))
	copy(out, u.Data())
	return out, nil
}
