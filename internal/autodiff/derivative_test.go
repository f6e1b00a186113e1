package autodiff_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collo-ml/collo/internal/autodiff"
	"github.com/collo-ml/collo/internal/backend/cpu"
	"github.com/collo-ml/collo/internal/tensor"
)

func leaf(t *testing.T, b testBackend, values []float64) *tensor.Tensor[float64, testBackend] {
	t.Helper()
	return column(t, b, values).RequireGrad()
}

func TestDerivative_Cubic(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	x := leaf(t, backend, []float64{-1, 0, 2})
	y := x.Mul(x).Mul(x) // y = x^3

	first, err := autodiff.Derivative(y, x, 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 0, 12}, first.Data(), 1e-12, "dy/dx = 3x^2")

	second, err := autodiff.Derivative(y, x, 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-6, 0, 12}, second.Data(), 1e-12, "d2y/dx2 = 6x")
}

func TestDerivative_SecondOrderSin(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	xs := []float64{0, 0.5, 1.3, math.Pi / 2}
	x := leaf(t, backend, xs)
	y := x.Sin()

	second, err := autodiff.Derivative(y, x, 2)
	require.NoError(t, err)

	want := make([]float64, len(xs))
	for i, v := range xs {
		want[i] = -math.Sin(v)
	}
	assert.InDeltaSlice(t, want, second.Data(), 1e-12, "d2(sin x)/dx2 = -sin x")
}

func TestDerivative_SecondOrderTanh(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	xs := []float64{-0.7, 0, 0.3, 1.1}
	x := leaf(t, backend, xs)
	y := x.Tanh()

	second, err := autodiff.Derivative(y, x, 2)
	require.NoError(t, err)

	want := make([]float64, len(xs))
	for i, v := range xs {
		th := math.Tanh(v)
		want[i] = -2 * th * (1 - th*th)
	}
	assert.InDeltaSlice(t, want, second.Data(), 1e-12, "d2(tanh x)/dx2")
}

func TestDerivative_PartialThroughCat(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	// u(x,t) = x^2 * t, evaluated through the same concatenate-then-slice
	// path the solver network input uses.
	x := leaf(t, backend, []float64{1, 2, 3})
	tt := leaf(t, backend, []float64{10, 20, 30})

	joined := tensor.Cat([]*tensor.Tensor[float64, testBackend]{x, tt}, 1)
	xc := joined.Narrow(1, 0, 1)
	tc := joined.Narrow(1, 1, 1)
	u := xc.Mul(xc).Mul(tc)

	ut, err := autodiff.Derivative(u, tt, 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1, 4, 9}, ut.Data(), 1e-12, "u_t = x^2")

	uxx, err := autodiff.Derivative(u, x, 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{20, 40, 60}, uxx.Data(), 1e-12, "u_xx = 2t")
}

func TestDerivative_ExpChain(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	xs := []float64{0, 1, -0.5}
	x := leaf(t, backend, xs)
	y := x.MulScalar(-1).Exp() // y = e^{-x}

	third, err := autodiff.Derivative(y, x, 3)
	require.NoError(t, err)

	want := make([]float64, len(xs))
	for i, v := range xs {
		want[i] = -math.Exp(-v)
	}
	assert.InDeltaSlice(t, want, third.Data(), 1e-12, "d3(e^-x)/dx3 = -e^-x")
}

func TestDerivative_NotLeaf(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	x := column(t, backend, []float64{1, 2}) // no RequireGrad
	y := x.Mul(x)

	_, err := autodiff.Derivative(y, x, 1)
	require.ErrorIs(t, err, autodiff.ErrNotLeaf)
}

func TestDerivative_NotInGraph(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	x := leaf(t, backend, []float64{1, 2})
	z := leaf(t, backend, []float64{3, 4})
	y := z.Mul(z) // independent of x

	_, err := autodiff.Derivative(y, x, 1)
	require.ErrorIs(t, err, autodiff.ErrNotInGraph)
}

func TestDerivative_InvalidOrder(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := leaf(t, backend, []float64{1})

	_, err := autodiff.Derivative(x, x, 0)
	require.Error(t, err)
}
