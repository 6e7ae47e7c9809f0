package reco

import (
	"errors"

	"github.com/next-exp/reco_go/pkg/optimize"
)

// LLHPoint is one evaluated hypothesis with its derived quantities.
type LLHPoint struct {
	Params
	LLH         float64
	TotalEnergy float64
	// combined direction of track and cascade
	Azimuth float64
	Zenith  float64
}

// Estimate is the point estimate of one event. Mean averages the points
// within the configured llh distance of the best one.
type Estimate struct {
	Best     LLHPoint
	Mean     LLHPoint
	NumLLH   int
	NumInCut int
}

// DerivePoint computes total energy and combined direction of a sample
// recorded in ParamNames order.
func DerivePoint(schema Schema, s optimize.Sample) LLHPoint {
	p := ParamsFromValues(s.Values)
	az, zen := CombineDirections(schema, p)
	return LLHPoint{
		Params:      p,
		LLH:         s.LLH,
		TotalEnergy: p.TrackEnergy + p.CascadeEnergy,
		Azimuth:     az,
		Zenith:      zen,
	}
}

// CombineDirections returns the direction of the whole event: the only
// direction of single-component hypotheses, otherwise the energy-weighted
// vector sum of track and cascade directions. A component with zero energy
// leaves the other direction untouched.
func CombineDirections(schema Schema, p Params) (azimuth, zenith float64) {
	switch {
	case !schema.HasCascade():
		return p.TrackAzimuth, p.TrackZenith
	case !schema.HasTrack():
		return p.CascadeAzimuth, p.CascadeZenith
	case p.CascadeEnergy == 0:
		return p.TrackAzimuth, p.TrackZenith
	case p.TrackEnergy == 0:
		return p.CascadeAzimuth, p.CascadeZenith
	}
	dir, _ := optimize.WeightedSum(
		[]optimize.SphericalPoint{
			optimize.FromAngles(p.TrackAzimuth, p.TrackZenith),
			optimize.FromAngles(p.CascadeAzimuth, p.CascadeZenith),
		},
		[]float64{p.TrackEnergy, p.CascadeEnergy},
	)
	return dir.Azimuth, dir.Zenith
}

var ErrEmptyTrace = errors.New("no likelihood evaluations recorded")

// AssembleEstimate derives the best and mean points of a trace. The mean
// takes every sample within deltaLLH of the best one, which is always part
// of it; a negative or NaN distance counts as zero.
func AssembleEstimate(schema Schema, trace *optimize.Trace, deltaLLH float64) (Estimate, error) {
	bestSample, ok := trace.Best()
	if !ok {
		return Estimate{}, ErrEmptyTrace
	}
	best := DerivePoint(schema, bestSample)
	if !(deltaLLH > 0) {
		deltaLLH = 0
	}

	samples := trace.Samples()
	points := make([]LLHPoint, len(samples))
	cut := best.LLH - deltaLLH
	var selected []LLHPoint
	for i, s := range samples {
		points[i] = DerivePoint(schema, s)
		if points[i].LLH >= cut {
			selected = append(selected, points[i])
		}
	}
	return Estimate{
		Best:     best,
		Mean:     meanPoint(selected),
		NumLLH:   len(points),
		NumInCut: len(selected),
	}, nil
}

// meanPoint averages linear quantities arithmetically and directions on the
// sphere.
func meanPoint(points []LLHPoint) LLHPoint {
	var mean LLHPoint
	n := float64(len(points))
	track := make([]optimize.SphericalPoint, len(points))
	cascade := make([]optimize.SphericalPoint, len(points))
	combined := make([]optimize.SphericalPoint, len(points))
	for i, p := range points {
		mean.Time += p.Time / n
		mean.X += p.X / n
		mean.Y += p.Y / n
		mean.Z += p.Z / n
		mean.TrackEnergy += p.TrackEnergy / n
		mean.CascadeEnergy += p.CascadeEnergy / n
		mean.TotalEnergy += p.TotalEnergy / n
		mean.LLH += p.LLH / n
		track[i] = optimize.FromAngles(p.TrackAzimuth, p.TrackZenith)
		cascade[i] = optimize.FromAngles(p.CascadeAzimuth, p.CascadeZenith)
		combined[i] = optimize.FromAngles(p.Azimuth, p.Zenith)
	}
	t := optimize.Centroid(track)
	c := optimize.Centroid(cascade)
	d := optimize.Centroid(combined)
	mean.TrackAzimuth, mean.TrackZenith = t.Azimuth, t.Zenith
	mean.CascadeAzimuth, mean.CascadeZenith = c.Azimuth, c.Zenith
	mean.Azimuth, mean.Zenith = d.Azimuth, d.Zenith
	return mean
}
