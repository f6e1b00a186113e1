package nn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/collo-ml/collo/internal/backend/cpu"
	"github.com/collo-ml/collo/internal/nn"
	"github.com/collo-ml/collo/internal/tensor"
)

func TestLinearForward(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))
	layer := nn.NewLinear(2, 3, rng, backend)

	input, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	out := layer.Forward(input)
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
}

func TestLinearForwardValues(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))
	layer := nn.NewLinear(2, 1, rng, backend)

	// Overwrite the initialized parameters with known values.
	w := layer.Parameters()[0].Tensor().Data()
	w[0], w[1] = 2, 3
	b := layer.Parameters()[1].Tensor().Data()
	b[0] = 0.5

	input, err := tensor.FromSlice([]float64{1, 10}, tensor.Shape{1, 2}, backend)
	require.NoError(t, err)

	out := layer.Forward(input)
	assert.InDelta(t, 2*1+3*10+0.5, out.At(0, 0), 1e-12)
}

func TestLinearBiasConstant(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))
	layer := nn.NewLinear(2, 100, rng, backend)

	bias := layer.Parameters()[1].Tensor()
	for _, v := range bias.Data() {
		assert.Equal(t, 0.01, v)
	}
}

func TestLinearPanicsOnBadInput(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))
	layer := nn.NewLinear(2, 3, rng, backend)

	input, err := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{1, 3}, backend)
	require.NoError(t, err)

	assert.Panics(t, func() { layer.Forward(input) })
}

func TestGlorotNormalVariance(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(7))

	fanIn, fanOut := 100, 100
	w := nn.GlorotNormal(fanIn, fanOut, tensor.Shape{fanOut, fanIn}, rng, backend)

	var sum, sumSq float64
	data := w.Data()
	for _, v := range data {
		sum += v
		sumSq += v * v
	}
	n := float64(len(data))
	mean := sum / n
	variance := sumSq/n - mean*mean

	wantVar := 2.0 / float64(fanIn+fanOut)
	assert.InDelta(t, 0, mean, 0.005, "mean should be near zero")
	assert.InDelta(t, wantVar, variance, wantVar/4, "variance should match 2/(fanIn+fanOut)")
}

func TestGlorotNormalSeeded(t *testing.T) {
	backend := cpu.New()
	a := nn.GlorotNormal(10, 10, tensor.Shape{10, 10}, rand.New(rand.NewSource(3)), backend)
	b := nn.GlorotNormal(10, 10, tensor.Shape{10, 10}, rand.New(rand.NewSource(3)), backend)
	assert.Equal(t, a.Data(), b.Data(), "same seed must reproduce the same weights")
}

func TestParameterRequiresGrad(t *testing.T) {
	backend := cpu.New()
	p := nn.NewParameter("w", tensor.Ones[float64](tensor.Shape{2, 2}, backend))
	assert.True(t, p.Tensor().RequiresGrad(), "parameters must be differentiation leaves")
}

func TestParameterZeroGrad(t *testing.T) {
	backend := cpu.New()
	p := nn.NewParameter("w", tensor.Ones[float64](tensor.Shape{2}, backend))
	p.SetGrad(tensor.Zeros[float64](tensor.Shape{2}, backend))
	require.NotNil(t, p.Grad())

	p.ZeroGrad()
	assert.Nil(t, p.Grad())
}

func TestSequentialForward(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))

	model := nn.NewSequential[*cpu.Backend](
		nn.NewLinear(2, 4, rng, backend),
		nn.NewTanh[*cpu.Backend](),
		nn.NewLinear(4, 1, rng, backend),
	)

	input, err := tensor.FromSlice([]float64{0.5, 0.5}, tensor.Shape{1, 2}, backend)
	require.NoError(t, err)

	out := model.Forward(input)
	assert.Equal(t, tensor.Shape{1, 1}, out.Shape())
	assert.False(t, math.IsNaN(out.Item()))
}

func TestSequentialParameters(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))

	model := nn.NewSequential[*cpu.Backend](
		nn.NewLinear(2, 4, rng, backend),
		nn.NewTanh[*cpu.Backend](),
		nn.NewLinear(4, 1, rng, backend),
	)

	// Two Linear layers, weight and bias each.
	assert.Len(t, model.Parameters(), 4)
}
