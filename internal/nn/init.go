package nn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/collo-ml/collo/internal/tensor"
)

// GlorotNormal initializes a tensor with Glorot (Xavier) normal
// initialization.
//
// Values are drawn from N(0, sigma^2) with sigma^2 = 2/(fanIn+fanOut),
// which keeps the activation variance roughly constant across tanh
// layers.
//
// Parameters:
//   - fanIn: Number of input units
//   - fanOut: Number of output units
//   - shape: Shape of the weight tensor
//   - rng: Seeded random source, shared across layers for reproducible runs
//   - backend: Backend to use for tensor creation
func GlorotNormal[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand, backend B) *tensor.Tensor[float64, B] {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: math.Sqrt(2.0 / float64(fanIn+fanOut)),
		Src:   rng,
	}

	t, err := tensor.NewRaw(shape, tensor.Float64, backend.Device())
	if err != nil {
		panic(err)
	}

	data := t.AsFloat64()
	for i := range data {
		data[i] = dist.Rand()
	}

	return tensor.New[float64, B](t, backend)
}

// Constant creates a tensor filled with a single value.
//
// Used for bias initialization: a small positive constant keeps tanh
// units away from exact zero at the start of training.
func Constant[B tensor.Backend](value float64, shape tensor.Shape, backend B) *tensor.Tensor[float64, B] {
	return tensor.Full[float64](shape, value, backend)
}
