package optimize

import (
	"math/rand"

	"github.com/golang/geo/r3"
)

// Move is what a fallback step gets to work with after a rejected
// reflection.
type Move struct {
	BestLin  []float64
	BestSph  []SphericalPoint
	TrialLin []float64
	TrialSph []SphericalPoint
}

// FallbackMove proposes a second candidate when the reflected point did
// not improve on the worst member of the population.
type FallbackMove interface {
	Propose(rng *rand.Rand, m Move) ([]float64, []SphericalPoint)
}

// BestPointMutation moves the rejected trial point toward (and past) the
// best point with a random weight per component in [-0.5, 1.5).
type BestPointMutation struct{}

func (BestPointMutation) Propose(rng *rand.Rand, m Move) ([]float64, []SphericalPoint) {
	lin := make([]float64, len(m.TrialLin))
	for j := range lin {
		w := rng.Float64()*2 - 0.5
		lin[j] = (1+w)*m.BestLin[j] - w*m.TrialLin[j]
	}

	sph := make([]SphericalPoint, len(m.TrialSph))
	for k := range sph {
		best := m.BestSph[k].Vec
		reflected := Reflect(m.TrialSph[k], m.BestSph[k]).Vec
		mix := func(b, r float64) float64 {
			w := rng.Float64()*2 - 0.5
			return (1-w)*b + w*r
		}
		sph[k] = FromCartesian(r3.Vector{
			X: mix(best.X, reflected.X),
			Y: mix(best.Y, reflected.Y),
			Z: mix(best.Z, reflected.Z),
		})
	}
	return lin, sph
}
