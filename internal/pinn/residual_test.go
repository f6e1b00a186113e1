package pinn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collo-ml/collo/internal/autodiff"
	"github.com/collo-ml/collo/internal/backend/cpu"
	"github.com/collo-ml/collo/internal/pinn"
	"github.com/collo-ml/collo/internal/tensor"
)

type testBackend = *autodiff.Backend[*cpu.Backend]

func leaf(t *testing.T, b testBackend, values []float64) *tensor.Tensor[float64, testBackend] {
	t.Helper()
	tt, err := tensor.Column(values, b)
	require.NoError(t, err)
	return tt.RequireGrad()
}

// driftModel is u(x,t) = t + 0*x^2: time drift with no diffusion.
type driftModel struct{}

func (driftModel) Forward(x, t *tensor.Tensor[float64, testBackend]) *tensor.Tensor[float64, testBackend] {
	return t.Add(x.Mul(x).MulScalar(0))
}

// parabolicModel is u(x,t) = x^2 + t.
type parabolicModel struct{}

func (parabolicModel) Forward(x, t *tensor.Tensor[float64, testBackend]) *tensor.Tensor[float64, testBackend] {
	return x.Mul(x).Add(t)
}

// exactModel is u(x,t) = exp(-4*pi^2*t) * sin(2*pi*x), the exact
// solution of the heat equation for the initial condition sin(2*pi*x).
type exactModel struct{}

func (exactModel) Forward(x, t *tensor.Tensor[float64, testBackend]) *tensor.Tensor[float64, testBackend] {
	decay := t.MulScalar(-4 * math.Pi * math.Pi).Exp()
	return x.MulScalar(2 * math.Pi).Sin().Mul(decay)
}

func TestResidualDrift(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	x := leaf(t, backend, []float64{0.1, 0.5, 0.9})
	tt := leaf(t, backend, []float64{0.2, 0.4, 0.6})

	r, err := pinn.NewResidual[testBackend](driftModel{}).Evaluate(x, tt)
	require.NoError(t, err)

	// u_t = 1, u_xx = 0.
	assert.InDeltaSlice(t, []float64{1, 1, 1}, r.Data(), 1e-12)
}

func TestResidualParabolic(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	x := leaf(t, backend, []float64{0.1, 0.5, 0.9})
	tt := leaf(t, backend, []float64{0.2, 0.4, 0.6})

	r, err := pinn.NewResidual[testBackend](parabolicModel{}).Evaluate(x, tt)
	require.NoError(t, err)

	// u_t = 1, u_xx = 2.
	assert.InDeltaSlice(t, []float64{-1, -1, -1}, r.Data(), 1e-12)
}

func TestResidualVanishesOnExactSolution(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	x := leaf(t, backend, []float64{0.1, 0.25, 0.5, 0.8})
	tt := leaf(t, backend, []float64{0.01, 0.02, 0.05, 0.1})

	r, err := pinn.NewResidual[testBackend](exactModel{}).Evaluate(x, tt)
	require.NoError(t, err)

	for i, v := range r.Data() {
		assert.InDelta(t, 0, v, 1e-8, "residual at point %d", i)
	}
}

func TestResidualRequiresLeaves(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	x, err := tensor.Column([]float64{0.5}, backend)
	require.NoError(t, err)
	tt := leaf(t, backend, []float64{0.5})

	_, err = pinn.NewResidual[testBackend](driftModel{}).Evaluate(x, tt)
	require.ErrorIs(t, err, autodiff.ErrNotLeaf)
}
