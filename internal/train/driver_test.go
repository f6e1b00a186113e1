package train_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collo-ml/collo/internal/autodiff"
	"github.com/collo-ml/collo/internal/backend/cpu"
	"github.com/collo-ml/collo/internal/pinn"
	"github.com/collo-ml/collo/internal/sample"
	"github.com/collo-ml/collo/internal/train"
)

func TestDriverStateString(t *testing.T) {
	cases := map[train.State]string{
		train.StateIdle:            "Idle",
		train.StateEvaluating:      "Evaluating",
		train.StateConverged:       "Converged",
		train.StateBudgetExhausted: "IterationBudgetExhausted",
		train.StateFailed:          "Failed",
	}
	for state, want := range cases {
		assert.Equal(t, want, state.String())
	}
}

func TestDriverStartsIdle(t *testing.T) {
	_, _, ev := smallSetup(t)
	d := train.NewDriver(ev, train.DefaultConfig())
	assert.Equal(t, train.StateIdle, d.State())
}

func TestDriverReducesLoss(t *testing.T) {
	_, _, ev := smallSetup(t)

	x0 := ev.Flatten()
	initial := ev.Func(append([]float64(nil), x0...))

	d := train.NewDriver(ev, train.Config{
		MaxIterations:     150,
		GradientTolerance: 1e-8,
	})

	result, err := d.Run()
	require.NoError(t, err)

	assert.Contains(t, []train.State{train.StateConverged, train.StateBudgetExhausted}, result.State)
	assert.Equal(t, d.State(), result.State)
	assert.Less(t, result.Loss, initial/2, "loss should drop substantially")
	assert.Greater(t, result.Evals, 0)
	assert.NotEmpty(t, result.History)
}

func TestDriverBudgetExhausted(t *testing.T) {
	_, _, ev := smallSetup(t)

	d := train.NewDriver(ev, train.Config{
		MaxIterations:     2,
		GradientTolerance: 1e-300,
	})

	result, err := d.Run()
	require.NoError(t, err)
	assert.Equal(t, train.StateBudgetExhausted, result.State)
}

func TestDriverFailsOnPoisonedEvaluator(t *testing.T) {
	backend := autodiff.New(cpu.New())
	net := pinn.NewNetwork(pinn.Config{HiddenWidth: 4, HiddenDepth: 1, Seed: 1}, backend)

	assembler, err := pinn.NewLossAssembler[testBackend](detachedModel{}, smallData(t, 6, 4, 3), backend)
	require.NoError(t, err)

	ev := train.NewEvaluator(assembler, net.Parameters(), backend, 0)
	d := train.NewDriver(ev, train.Config{MaxIterations: 10, GradientTolerance: 1e-8})

	result, err := d.Run()
	require.Error(t, err)
	assert.Equal(t, train.StateFailed, result.State)
	assert.ErrorIs(t, err, autodiff.ErrNotInGraph)
}

func TestDriverWritesCheckpoints(t *testing.T) {
	_, _, ev := smallSetup(t)

	path := filepath.Join(t.TempDir(), "run.ckpt")
	d := train.NewDriver(ev, train.Config{
		MaxIterations:     5,
		GradientTolerance: 1e-8,
		CheckpointPath:    path,
		CheckpointEvery:   1,
	})

	_, err := d.Run()
	require.NoError(t, err)

	params, err := train.ReadCheckpoint(path)
	require.NoError(t, err)
	assert.Len(t, params, ev.NumParams())
}

// TestTrainingFitsInitialCondition trains a small network briefly and
// checks the prediction at t = 0 moves toward sin(2*pi*x).
func TestTrainingFitsInitialCondition(t *testing.T) {
	if testing.Short() {
		t.Skip("training run")
	}

	backend := autodiff.New(cpu.New())
	net := pinn.NewNetwork(pinn.Config{HiddenWidth: 16, HiddenDepth: 2, Seed: 1}, backend)

	sets, err := sample.New(sample.Config{Nf: 40, N0: 30, Nb: 20, T: 1, Seed: 7})
	require.NoError(t, err)

	assembler, err := pinn.NewLossAssembler[testBackend](net, pinn.Data{
		Xf: sets.Xf, Tf: sets.Tf,
		X0: sets.X0, U0: sets.U0,
		Tb: sets.Tb, Xn: sets.Xn,
	}, backend)
	require.NoError(t, err)

	ev := train.NewEvaluator(assembler, net.Parameters(), backend, 0)

	xs := []float64{0, 0.25, 0.5}
	ts := []float64{0, 0, 0}
	want := []float64{0, 1, 0}

	before, err := net.Predict(xs, ts)
	require.NoError(t, err)
	mseBefore := mse(before, want)

	d := train.NewDriver(ev, train.Config{MaxIterations: 400, GradientTolerance: 1e-9})
	result, err := d.Run()
	require.NoError(t, err)
	require.NotEqual(t, train.StateFailed, result.State)

	after, err := net.Predict(xs, ts)
	require.NoError(t, err)
	mseAfter := mse(after, want)

	assert.Less(t, mseAfter, mseBefore, "training should improve the initial condition fit")
	assert.Less(t, mseAfter, 0.05, "initial condition should be fit closely")
}

func mse(got, want []float64) float64 {
	var acc float64
	for i := range got {
		d := got[i] - want[i]
		acc += d * d
	}
	return acc / float64(len(got))
}
