// Package prior maps points of the unit hypercube onto physical parameter
// values, one dimension at a time.
package prior

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	Uniform    = "uniform"
	LogUniform = "log_uniform"
	LogNormal  = "log_normal"
	Cauchy     = "cauchy"
	Cosine     = "cosine"
)

// Names of the event quantities a prior can be centred on.
const (
	RefCogX      = "cog_x"
	RefCogY      = "cog_y"
	RefCogZ      = "cog_z"
	RefFirstTime = "first_time"
)

// Spec is the configurable description of one prior.
//
// For uniform priors LocFrom shifts [Low, High] by the referenced event
// quantity. For cauchy priors LocFrom replaces Loc and [Low, High] is the
// truncation range in absolute units.
type Spec struct {
	Kind    string  `json:"kind"`
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
	Loc     float64 `json:"loc"`
	Scale   float64 `json:"scale"`
	LocFrom string  `json:"loc_from,omitempty"`
}

// Prior is a Spec resolved against one event.
type Prior struct {
	Name string
	Spec Spec
	// Loc, Low and High after event references are applied.
	Loc  float64
	Low  float64
	High float64

	quantile func(u float64) float64
}

var ErrMissingReference = errors.New("event reference not available")

func New(name string, spec Spec, refs map[string]float64) (Prior, error) {
	p := Prior{Name: name, Spec: spec, Loc: spec.Loc, Low: spec.Low, High: spec.High}
	if spec.LocFrom != "" {
		ref, ok := refs[spec.LocFrom]
		if !ok {
			return Prior{}, fmt.Errorf("prior %q: %w: %q", name, ErrMissingReference, spec.LocFrom)
		}
		switch spec.Kind {
		case Uniform:
			p.Low += ref
			p.High += ref
		case Cauchy:
			p.Loc = ref
		default:
			return Prior{}, fmt.Errorf("prior %q: loc_from is not supported for kind %q", name, spec.Kind)
		}
	}

	switch spec.Kind {
	case Uniform:
		if !(p.Low < p.High) {
			return Prior{}, fmt.Errorf("prior %q: low %g must be below high %g", name, p.Low, p.High)
		}
		dist := distuv.Uniform{Min: p.Low, Max: p.High}
		p.quantile = dist.Quantile

	case LogUniform:
		if !(p.Low > 0 && p.Low < p.High) {
			return Prior{}, fmt.Errorf("prior %q: log_uniform needs 0 < low < high, got [%g, %g]", name, p.Low, p.High)
		}
		logLow, logHigh := math.Log(p.Low), math.Log(p.High)
		p.quantile = func(u float64) float64 {
			return math.Exp(logLow + u*(logHigh-logLow))
		}

	case LogNormal:
		if !(spec.Scale > 0) {
			return Prior{}, fmt.Errorf("prior %q: log_normal needs a positive scale", name)
		}
		dist := distuv.LogNormal{Mu: p.Loc, Sigma: spec.Scale}
		p.quantile = dist.Quantile

	case Cauchy:
		if !(spec.Scale > 0) {
			return Prior{}, fmt.Errorf("prior %q: cauchy needs a positive scale", name)
		}
		if !(p.Low < p.High) {
			return Prior{}, fmt.Errorf("prior %q: cauchy needs a truncation range, got [%g, %g]", name, p.Low, p.High)
		}
		// Student's t with one degree of freedom is the Cauchy distribution
		dist := distuv.StudentsT{Mu: p.Loc, Sigma: spec.Scale, Nu: 1}
		cdfLow, cdfHigh := dist.CDF(p.Low), dist.CDF(p.High)
		low, high := p.Low, p.High
		p.quantile = func(u float64) float64 {
			x := dist.Quantile(cdfLow + u*(cdfHigh-cdfLow))
			return math.Min(math.Max(x, low), high)
		}

	case Cosine:
		if !(p.Low >= 0 && p.Low < p.High && p.High <= math.Pi) {
			return Prior{}, fmt.Errorf("prior %q: cosine needs 0 <= low < high <= pi, got [%g, %g]", name, p.Low, p.High)
		}
		cosLow, cosHigh := math.Cos(p.Low), math.Cos(p.High)
		p.quantile = func(u float64) float64 {
			c := cosLow + u*(cosHigh-cosLow)
			return math.Acos(math.Min(math.Max(c, -1), 1))
		}

	default:
		return Prior{}, fmt.Errorf("prior %q: unknown kind %q", name, spec.Kind)
	}
	return p, nil
}

// Map converts u in [0, 1] to physical units.
func (p Prior) Map(u float64) float64 {
	return p.quantile(u)
}
