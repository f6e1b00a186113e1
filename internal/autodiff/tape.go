package autodiff

import (
	"github.com/collo-ml/collo/internal/autodiff/ops"
	"github.com/collo-ml/collo/internal/tensor"
)

// Tape records operations during the forward pass for later
// backpropagation.
//
// The tape keys gradients by *RawTensor pointer: an operation's output
// pointer is the node identity, so backends must allocate fresh outputs
// and never reuse recorded tensors.
type Tape struct {
	operations []ops.Operation
	recording  bool
}

// NewTape creates a tape that is not yet recording.
func NewTape() *Tape {
	return &Tape{operations: make([]ops.Operation, 0, 256)}
}

// StartRecording enables operation recording.
func (t *Tape) StartRecording() { t.recording = true }

// StopRecording disables operation recording.
func (t *Tape) StopRecording() { t.recording = false }

// IsRecording reports whether operations are currently recorded.
func (t *Tape) IsRecording() bool { return t.recording }

// Record appends an operation to the tape.
func (t *Tape) Record(op ops.Operation) {
	t.operations = append(t.operations, op)
}

// NumOps returns the number of recorded operations.
func (t *Tape) NumOps() int { return len(t.operations) }

// Clear drops all recorded operations. Call between evaluations so the
// graph does not grow across closure invocations.
func (t *Tape) Clear() {
	t.operations = t.operations[:0]
}

// Backward runs reverse-mode differentiation from output, seeded with
// seed, and returns the gradient of every reached tensor.
//
// With createGraph set, recording stays enabled while the backward
// pass runs: the backend calls made by each operation's Backward are
// themselves taped, so the returned gradients can be differentiated
// again. The walk iterates over a snapshot of the operation list taken
// before the first Backward call, which keeps the newly recorded
// operations out of the current pass.
//
// Without createGraph, recording is suspended for the duration of the
// walk and the returned gradients are plain values.
func (t *Tape) Backward(output, seed *tensor.RawTensor, backend tensor.Backend, createGraph bool) map[*tensor.RawTensor]*tensor.RawTensor {
	snapshot := t.operations[:len(t.operations):len(t.operations)]

	if !createGraph {
		wasRecording := t.recording
		t.recording = false
		defer func() { t.recording = wasRecording }()
	}

	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	grads[output] = seed

	for i := len(snapshot) - 1; i >= 0; i-- {
		op := snapshot[i]
		outputGrad, ok := grads[op.Output()]
		if !ok {
			continue
		}

		inputGrads := op.Backward(outputGrad, backend)
		for j, input := range op.Inputs() {
			grad := inputGrads[j]
			if grad == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, grad)
			} else {
				grads[input] = grad
			}
		}
	}

	return grads
}
