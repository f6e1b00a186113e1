// Package sample generates the scattered training point sets the
// solver trains on. No mesh is involved: interior collocation points
// come from a Latin hypercube over the space-time domain, and the
// initial and boundary sets are uniform draws along their respective
// edges.
package sample

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/gonum/stat/samplemv"
)

// Config describes the training point sets.
type Config struct {
	// Nf is the number of interior collocation points.
	Nf int
	// N0 is the number of initial-condition points.
	N0 int
	// Nb is the number of boundary times.
	Nb int
	// T is the end of the time interval [0, T].
	T float64
	// Seed seeds the sampling source.
	Seed uint64
}

// DefaultConfig returns the standard training set sizes.
func DefaultConfig() Config {
	return Config{Nf: 10000, N0: 200, Nb: 200, T: 1, Seed: 1}
}

func (c Config) validate() error {
	switch {
	case c.Nf <= 0:
		return errors.Errorf("sample: Nf must be positive, got %d", c.Nf)
	case c.N0 <= 0:
		return errors.Errorf("sample: N0 must be positive, got %d", c.N0)
	case c.Nb <= 0:
		return errors.Errorf("sample: Nb must be positive, got %d", c.Nb)
	case c.T <= 0:
		return errors.Errorf("sample: T must be positive, got %g", c.T)
	}
	return nil
}

// Sets holds the generated point sets as flat coordinate slices.
type Sets struct {
	// Xf, Tf are the interior collocation coordinates, Nf entries each.
	Xf, Tf []float64
	// X0 are initial points in [0,1]; U0 the targets sin(2*pi*x0).
	X0, U0 []float64
	// Tb are boundary times in [0,T]; Xn the Neumann curve positions.
	Tb, Xn []float64
}

// New generates all training sets from cfg. The same seed reproduces
// the same sets exactly.
func New(cfg Config) (Sets, error) {
	if err := cfg.validate(); err != nil {
		return Sets{}, err
	}

	src := rand.NewSource(cfg.Seed)
	var s Sets

	// Interior collocation points: Latin hypercube over [0,1] x [0,T]
	// for even coverage without a mesh.
	bounds := []r1.Interval{{Min: 0, Max: 1}, {Min: 0, Max: cfg.T}}
	lhs := samplemv.LatinHypercube{Q: distmv.NewUniform(bounds, src), Src: src}
	batch := mat.NewDense(cfg.Nf, 2, nil)
	lhs.Sample(batch)

	s.Xf = make([]float64, cfg.Nf)
	s.Tf = make([]float64, cfg.Nf)
	for i := 0; i < cfg.Nf; i++ {
		s.Xf[i] = batch.At(i, 0)
		s.Tf[i] = batch.At(i, 1)
	}

	// Initial condition points along t = 0.
	xDist := distuv.Uniform{Min: 0, Max: 1, Src: src}
	s.X0 = make([]float64, cfg.N0)
	s.U0 = make([]float64, cfg.N0)
	for i := range s.X0 {
		s.X0[i] = xDist.Rand()
		s.U0[i] = InitialCondition(s.X0[i])
	}

	// Boundary times, shared by the Dirichlet and Neumann terms.
	tDist := distuv.Uniform{Min: 0, Max: cfg.T, Src: src}
	s.Tb = make([]float64, cfg.Nb)
	s.Xn = make([]float64, cfg.Nb)
	for i := range s.Tb {
		s.Tb[i] = tDist.Rand()
		s.Xn[i] = NeumannCurve(s.Tb[i])
	}

	return s, nil
}

// InitialCondition returns the prescribed solution at t = 0.
func InitialCondition(x float64) float64 {
	return math.Sin(2 * math.Pi * x)
}

// NeumannCurve returns the position of the moving boundary curve at
// time t. The curve positions are computed here, numerically, and
// enter the loss as fresh differentiation leaves; the Neumann term
// differentiates u along x at these positions, not along the curve
// parameter.
func NeumannCurve(t float64) float64 {
	return 2 * math.Pi * math.Exp(-t)
}
