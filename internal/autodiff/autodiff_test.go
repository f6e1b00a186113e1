package autodiff_test

import (
	"math"
	"testing"

	"github.com/collo-ml/collo/internal/autodiff"
	"github.com/collo-ml/collo/internal/backend/cpu"
	"github.com/collo-ml/collo/internal/tensor"
)

type testBackend = *autodiff.Backend[*cpu.Backend]

func column(t *testing.T, b testBackend, values []float64) *tensor.Tensor[float64, testBackend] {
	t.Helper()
	tt, err := tensor.Column(values, b)
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	return tt
}

// TestBackend_Name tests the Name method.
func TestBackend_Name(t *testing.T) {
	backend := autodiff.New(cpu.New())
	expected := "Autodiff(CPU)"
	if backend.Name() != expected {
		t.Errorf("Name() = %s, want %s", backend.Name(), expected)
	}
}

// TestBackend_Device tests the Device method.
func TestBackend_Device(t *testing.T) {
	backend := autodiff.New(cpu.New())
	if backend.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want %v", backend.Device(), tensor.CPU)
	}
}

// TestTape_Recording tests tape recording on/off.
func TestTape_Recording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()

	if tape.IsRecording() {
		t.Error("Tape should not be recording initially")
	}

	tape.StartRecording()
	if !tape.IsRecording() {
		t.Error("Tape should be recording after StartRecording()")
	}

	tape.StopRecording()
	if tape.IsRecording() {
		t.Error("Tape should not be recording after StopRecording()")
	}
}

// TestTape_RecordsOnlyWhileRecording tests that operations land on the
// tape only between StartRecording and StopRecording.
func TestTape_RecordsOnlyWhileRecording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	a := column(t, backend, []float64{1, 2})
	b := column(t, backend, []float64{3, 4})

	_ = a.Add(b)
	if n := backend.Tape().NumOps(); n != 0 {
		t.Errorf("NumOps() = %d before recording, want 0", n)
	}

	backend.Tape().StartRecording()
	_ = a.Add(b)
	backend.Tape().StopRecording()
	if n := backend.Tape().NumOps(); n != 1 {
		t.Errorf("NumOps() = %d after one recorded op, want 1", n)
	}

	backend.Tape().Clear()
	if n := backend.Tape().NumOps(); n != 0 {
		t.Errorf("NumOps() = %d after Clear, want 0", n)
	}
}

// TestBackward_Linear tests first-order gradients of y = a*b + c.
func TestBackward_Linear(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	a := column(t, backend, []float64{2, 3})
	b := column(t, backend, []float64{5, 7})
	c := column(t, backend, []float64{1, 1})

	y := a.Mul(b).Add(c)
	loss := y.Sum()

	grads := autodiff.Backward(loss)

	gradA, ok := grads[a.Raw()]
	if !ok {
		t.Fatal("no gradient for a")
	}
	wantA := []float64{5, 7}
	for i, v := range gradA.AsFloat64() {
		if math.Abs(v-wantA[i]) > 1e-12 {
			t.Errorf("dL/da[%d] = %v, want %v", i, v, wantA[i])
		}
	}

	gradC, ok := grads[c.Raw()]
	if !ok {
		t.Fatal("no gradient for c")
	}
	for i, v := range gradC.AsFloat64() {
		if math.Abs(v-1) > 1e-12 {
			t.Errorf("dL/dc[%d] = %v, want 1", i, v)
		}
	}
}

// TestBackward_Broadcast tests gradient reduction after broadcasting,
// the pattern a Linear layer's bias add produces.
func TestBackward_Broadcast(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	a, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	if err != nil {
		t.Fatal(err)
	}
	bias, err := tensor.FromSlice([]float64{10, 20, 30}, tensor.Shape{3}, backend)
	if err != nil {
		t.Fatal(err)
	}

	loss := a.Add(bias).Sum()
	grads := autodiff.Backward(loss)

	gradBias, ok := grads[bias.Raw()]
	if !ok {
		t.Fatal("no gradient for bias")
	}
	if !gradBias.Shape().Equal(tensor.Shape{3}) {
		t.Fatalf("bias gradient shape = %v, want [3]", gradBias.Shape())
	}
	// Each bias element feeds both rows.
	for i, v := range gradBias.AsFloat64() {
		if math.Abs(v-2) > 1e-12 {
			t.Errorf("dL/dbias[%d] = %v, want 2", i, v)
		}
	}
}

// TestBackward_DisablesRecording tests that a plain backward pass does
// not grow the tape.
func TestBackward_DisablesRecording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	defer backend.Tape().StopRecording()

	a := column(t, backend, []float64{2, 3})
	b := column(t, backend, []float64{5, 7})
	loss := a.Mul(b).Sum()

	before := backend.Tape().NumOps()
	_ = autodiff.Backward(loss)
	after := backend.Tape().NumOps()

	if after != before {
		t.Errorf("tape grew from %d to %d ops during a plain backward pass", before, after)
	}
	if !backend.Tape().IsRecording() {
		t.Error("recording should be restored after the backward pass")
	}
}
