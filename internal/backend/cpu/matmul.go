package cpu

import (
	"fmt"

	"github.com/collo-ml/collo/internal/parallel"
	"github.com/collo-ml/collo/internal/tensor"
)

// matmulKernel computes [m,k] @ [k,n] with rows distributed over the
// worker pool.
func matmulKernel[T tensor.DType](a, b *tensor.RawTensor, m, k, n int, pool parallel.Config) *tensor.RawTensor {
	out := newRaw(tensor.Shape{m, n}, a.DType(), a.Device())
	aData, bData, outData := data[T](a), data[T](b), data[T](out)

	parallel.For(m, func(i int) {
		aRow := aData[i*k : (i+1)*k]
		outRow := outData[i*n : (i+1)*n]
		for p, av := range aRow {
			if av == 0 {
				continue
			}
			bRow := bData[p*n : (p+1)*n]
			for j, bv := range bRow {
				outRow[j] += av * bv
			}
		}
	}, pool)

	return out
}

// MatMul performs 2-D matrix multiplication.
func (b *Backend) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	xs, ys := x.Shape(), y.Shape()
	if len(xs) != 2 || len(ys) != 2 || xs[1] != ys[0] {
		panic(fmt.Sprintf("cpu: %v: matmul %v @ %v", tensor.ErrShapeMismatch, xs, ys))
	}

	m, k, n := xs[0], xs[1], ys[1]
	switch x.DType() {
	case tensor.Float32:
		return matmulKernel[float32](x, y, m, k, n, b.pool)
	default:
		return matmulKernel[float64](x, y, m, k, n, b.pool)
	}
}
