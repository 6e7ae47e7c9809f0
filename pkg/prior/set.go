package prior

import (
	"fmt"
	"math"
)

// Set holds one prior per dimension, in dimension order.
type Set struct {
	priors []Prior
}

func NewSet(names []string, specs map[string]Spec, refs map[string]float64) (*Set, error) {
	set := &Set{priors: make([]Prior, len(names))}
	for i, name := range names {
		spec, ok := specs[name]
		if !ok {
			return nil, fmt.Errorf("no prior configured for %q", name)
		}
		p, err := New(name, spec, refs)
		if err != nil {
			return nil, err
		}
		set.priors[i] = p
	}
	return set, nil
}

// Transform fills phys from unit; both slices have one entry per dimension.
func (s *Set) Transform(unit, phys []float64) {
	for i, p := range s.priors {
		phys[i] = p.Map(unit[i])
	}
}

// Priors returns the resolved priors, in dimension order.
func (s *Set) Priors() []Prior {
	out := make([]Prior, len(s.priors))
	copy(out, s.priors)
	return out
}

// DefaultSpecs are reasonable priors for a detector a few hundred metres
// across, centred on the charge-weighted centre of gravity of the event.
func DefaultSpecs() map[string]Spec {
	azimuth := Spec{Kind: Uniform, Low: 0, High: 2 * math.Pi}
	zenith := Spec{Kind: Cosine, Low: 0, High: math.Pi}
	return map[string]Spec{
		"time":            {Kind: Uniform, Low: -1000, High: 200, LocFrom: RefFirstTime},
		"x":               {Kind: Cauchy, Scale: 15, Low: -700, High: 700, LocFrom: RefCogX},
		"y":               {Kind: Cauchy, Scale: 15, Low: -700, High: 700, LocFrom: RefCogY},
		"z":               {Kind: Cauchy, Scale: 10, Low: -800, High: 600, LocFrom: RefCogZ},
		"track_azimuth":   azimuth,
		"track_zenith":    zenith,
		"cascade_azimuth": azimuth,
		"cascade_zenith":  zenith,
	}
}
