package train_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collo-ml/collo/internal/autodiff"
	"github.com/collo-ml/collo/internal/backend/cpu"
	"github.com/collo-ml/collo/internal/pinn"
	"github.com/collo-ml/collo/internal/sample"
	"github.com/collo-ml/collo/internal/tensor"
	"github.com/collo-ml/collo/internal/train"
)

type testBackend = *autodiff.Backend[*cpu.Backend]

func smallData(t *testing.T, nf, n0, nb int) pinn.Data {
	t.Helper()
	sets, err := sample.New(sample.Config{Nf: nf, N0: n0, Nb: nb, T: 1, Seed: 11})
	require.NoError(t, err)
	return pinn.Data{
		Xf: sets.Xf, Tf: sets.Tf,
		X0: sets.X0, U0: sets.U0,
		Tb: sets.Tb, Xn: sets.Xn,
	}
}

func smallSetup(t *testing.T) (testBackend, *pinn.Network[testBackend], *train.Evaluator[testBackend]) {
	t.Helper()
	backend := autodiff.New(cpu.New())
	net := pinn.NewNetwork(pinn.Config{HiddenWidth: 6, HiddenDepth: 2, Seed: 1}, backend)

	assembler, err := pinn.NewLossAssembler[testBackend](net, smallData(t, 12, 8, 6), backend)
	require.NoError(t, err)

	return backend, net, train.NewEvaluator(assembler, net.Parameters(), backend, 0)
}

func TestEvaluatorFlattenRoundTrip(t *testing.T) {
	_, net, ev := smallSetup(t)

	x := ev.Flatten()
	assert.Len(t, x, ev.NumParams())

	for i := range x {
		x[i] = float64(i) * 0.001
	}
	ev.SetParams(x)
	assert.Equal(t, x, ev.Flatten())

	// Parameters must reflect the written values.
	first := net.Parameters()[0].Tensor().Data()
	assert.Equal(t, x[:len(first)], first)
}

func TestEvaluatorCountsDistinctPoints(t *testing.T) {
	_, _, ev := smallSetup(t)

	x := ev.Flatten()
	grad := make([]float64, len(x))

	_ = ev.Func(x)
	assert.Equal(t, 1, ev.Evals(), "first Func call is one evaluation")

	ev.Grad(grad, x)
	assert.Equal(t, 1, ev.Evals(), "Grad at the same point reuses the evaluation")

	x2 := append([]float64(nil), x...)
	x2[0] += 1e-3
	_ = ev.Func(x2)
	assert.Equal(t, 2, ev.Evals(), "a trial point is a new evaluation")

	ev.Grad(grad, x2)
	assert.Equal(t, 2, ev.Evals())
}

func TestEvaluatorGradientIsNonTrivial(t *testing.T) {
	_, _, ev := smallSetup(t)

	x := ev.Flatten()
	grad := make([]float64, len(x))
	ev.Grad(grad, x)

	nonZero := 0
	for _, g := range grad {
		if g != 0 {
			nonZero++
		}
	}
	assert.Greater(t, nonZero, len(grad)/2, "most gradient entries should be nonzero")
}

func TestEvaluatorGradientMatchesFiniteDifference(t *testing.T) {
	_, _, ev := smallSetup(t)

	x := ev.Flatten()
	grad := make([]float64, len(x))
	ev.Grad(grad, x)

	// Central difference on a handful of coordinates.
	const h = 1e-6
	for _, i := range []int{0, 7, len(x) / 2, len(x) - 1} {
		xp := append([]float64(nil), x...)
		xp[i] += h
		fp := ev.Func(xp)

		xm := append([]float64(nil), x...)
		xm[i] -= h
		fm := ev.Func(xm)

		numeric := (fp - fm) / (2 * h)
		assert.InDelta(t, numeric, grad[i], 1e-4*(1+absf(numeric)),
			"coordinate %d: analytic %v vs numeric %v", i, grad[i], numeric)
	}
}

func TestEvaluatorHistory(t *testing.T) {
	_, _, ev := smallSetup(t)

	x := ev.Flatten()
	_ = ev.Func(x)
	x[3] += 1e-3
	_ = ev.Func(x)

	h := ev.History()
	require.Len(t, h, 2)
	assert.Equal(t, 1, h[0].Eval)
	assert.Equal(t, 2, h[1].Eval)
	assert.Equal(t, h[0].Loss, h[0].Parts.Total)
}

func TestEvaluatorOnEvaluationHook(t *testing.T) {
	_, _, ev := smallSetup(t)

	var seen []int
	ev.OnEvaluation(func(r train.Record) { seen = append(seen, r.Eval) })

	x := ev.Flatten()
	_ = ev.Func(x)
	x[0] += 1e-3
	_ = ev.Func(x)

	assert.Equal(t, []int{1, 2}, seen)
}

// detachedModel never routes x through the graph, so the second
// x-derivative in the residual must fail and poison the evaluator.
type detachedModel struct{}

func (detachedModel) Forward(x, t *tensor.Tensor[float64, testBackend]) *tensor.Tensor[float64, testBackend] {
	return t.Add(t)
}

func TestEvaluatorStickyError(t *testing.T) {
	backend := autodiff.New(cpu.New())
	net := pinn.NewNetwork(pinn.Config{HiddenWidth: 4, HiddenDepth: 1, Seed: 1}, backend)

	assembler, err := pinn.NewLossAssembler[testBackend](detachedModel{}, smallData(t, 6, 4, 3), backend)
	require.NoError(t, err)

	ev := train.NewEvaluator(assembler, net.Parameters(), backend, 0)
	x := ev.Flatten()

	loss := ev.Func(x)
	assert.True(t, math.IsInf(loss, 1), "failed evaluation should return +Inf")
	require.Error(t, ev.Err())
	assert.ErrorIs(t, ev.Err(), autodiff.ErrNotInGraph)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
