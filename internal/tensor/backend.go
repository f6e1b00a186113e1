package tensor

// Backend defines the compute interface the solver runs on.
//
// Implementations:
//   - cpu: pure Go, parallelized matmul
//   - autodiff: decorator that records operations on a gradient tape
//
// Every operation allocates a fresh output tensor; backends never write
// through their inputs. The autodiff tape depends on this: recorded
// tensors must keep the values they had during the forward pass.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations (2-D).
	MatMul(a, b *RawTensor) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Expand(t *RawTensor, shape Shape) *RawTensor
	Cat(tensors []*RawTensor, dim int) *RawTensor
	Narrow(t *RawTensor, dim, start, length int) *RawTensor

	// Scalar operations (element-wise with a scalar).
	MulScalar(x *RawTensor, scalar float64) *RawTensor
	AddScalar(x *RawTensor, scalar float64) *RawTensor

	// Math operations (element-wise).
	Exp(x *RawTensor) *RawTensor
	Sin(x *RawTensor) *RawTensor
	Cos(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor

	// Reduction operations.
	Sum(x *RawTensor) *RawTensor                           // total sum, shape {1}
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor // sum along dimension

	// Metadata.
	Name() string
	Device() Device
}
