package likelihood

import (
	"github.com/golang/geo/r3"
	reco "github.com/next-exp/reco_go/pkg"
	"github.com/next-exp/reco_go/pkg/optimize"
)

// Source is a point of light emission.
type Source struct {
	Pos     r3.Vector
	Time    float64
	Photons float64
	// direction of the emitting particle
	Dir r3.Vector
}

// Generator turns hypotheses into light sources.
//
// Generic sources do not depend on the likelihood-internal fits. Pegleg
// sources are the steps of a track the likelihood adds one by one. Scaling
// sources describe a 1 GeV cascade the likelihood scales to the best energy.
type Generator struct {
	Schema reco.Schema
	StepM  float64
	// number of pegleg steps
	MaxSteps int
}

func NewGenerator(schema reco.Schema, cfg reco.LikelihoodConfig) *Generator {
	steps := 0
	if schema.Pegleg && cfg.PeglegStepM > 0 {
		steps = int(cfg.MaxTrackLengthM / cfg.PeglegStepM)
	}
	return &Generator{Schema: schema, StepM: cfg.PeglegStepM, MaxSteps: steps}
}

// Generic returns the sources whose energy is part of the hypothesis itself,
// that is components not fitted inside the likelihood.
func (g *Generator) Generic(p reco.Params) []Source {
	var sources []Source
	if !g.Schema.Pegleg && p.TrackEnergy > 0 {
		length := p.TrackEnergy * reco.TrackMPerGeV
		sources = append(sources, trackSegments(p, 0, length, g.stepOrDefault())...)
	}
	if !g.Schema.Scaling && p.CascadeEnergy > 0 {
		sources = append(sources, cascade(p, p.CascadeEnergy))
	}
	return sources
}

// Pegleg returns the track steps in the order they are added.
func (g *Generator) Pegleg(p reco.Params) []Source {
	if !g.Schema.Pegleg {
		return nil
	}
	return trackSegments(p, 0, float64(g.MaxSteps)*g.StepM, g.StepM)
}

// Scaling returns the sources of a 1 GeV cascade.
func (g *Generator) Scaling(p reco.Params) []Source {
	if !g.Schema.Scaling {
		return nil
	}
	return []Source{cascade(p, 1)}
}

func (g *Generator) stepOrDefault() float64 {
	if g.StepM > 0 {
		return g.StepM
	}
	return 1
}

func trackSegments(p reco.Params, from, to, step float64) []Source {
	dir := optimize.FromAngles(p.TrackAzimuth, p.TrackZenith).Vec
	vertex := r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
	var sources []Source
	for l := from; l+step <= to+1e-9; l += step {
		mid := l + step/2
		sources = append(sources, Source{
			Pos:     vertex.Add(dir.Mul(mid)),
			Time:    p.Time + mid/SpeedOfLightMPerNs,
			Photons: TrackPhotonsPerM * step,
			Dir:     dir,
		})
	}
	return sources
}

func cascade(p reco.Params, energy float64) Source {
	return Source{
		Pos:     r3.Vector{X: p.X, Y: p.Y, Z: p.Z},
		Time:    p.Time,
		Photons: EMCascadePhotonsPerGeV * energy,
		Dir:     optimize.FromAngles(p.CascadeAzimuth, p.CascadeZenith).Vec,
	}
}
