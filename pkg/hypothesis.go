package reco

import (
	"fmt"

	"github.com/next-exp/reco_go/pkg/optimize"
)

const (
	ParamTime           = "time"
	ParamX              = "x"
	ParamY              = "y"
	ParamZ              = "z"
	ParamTrackAzimuth   = "track_azimuth"
	ParamTrackZenith    = "track_zenith"
	ParamCascadeAzimuth = "cascade_azimuth"
	ParamCascadeZenith  = "cascade_zenith"
	ParamTrackEnergy    = "track_energy"
	ParamCascadeEnergy  = "cascade_energy"
)

// ParamNames is the order of the recorded parameter vector.
var ParamNames = []string{
	ParamTime, ParamX, ParamY, ParamZ,
	ParamTrackAzimuth, ParamTrackZenith,
	ParamCascadeAzimuth, ParamCascadeZenith,
	ParamTrackEnergy, ParamCascadeEnergy,
}

// Params is a full hypothesis. Times in ns, lengths in m, energies in GeV,
// angles in rad.
type Params struct {
	Time           float64
	X              float64
	Y              float64
	Z              float64
	TrackAzimuth   float64
	TrackZenith    float64
	CascadeAzimuth float64
	CascadeZenith  float64
	TrackEnergy    float64
	CascadeEnergy  float64
}

func (p *Params) field(name string) (*float64, error) {
	switch name {
	case ParamTime:
		return &p.Time, nil
	case ParamX:
		return &p.X, nil
	case ParamY:
		return &p.Y, nil
	case ParamZ:
		return &p.Z, nil
	case ParamTrackAzimuth:
		return &p.TrackAzimuth, nil
	case ParamTrackZenith:
		return &p.TrackZenith, nil
	case ParamCascadeAzimuth:
		return &p.CascadeAzimuth, nil
	case ParamCascadeZenith:
		return &p.CascadeZenith, nil
	case ParamTrackEnergy:
		return &p.TrackEnergy, nil
	case ParamCascadeEnergy:
		return &p.CascadeEnergy, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownParameter, name)
}

func (p Params) Get(name string) (float64, error) {
	f, err := p.field(name)
	if err != nil {
		return 0, err
	}
	return *f, nil
}

func (p *Params) Set(name string, value float64) error {
	f, err := p.field(name)
	if err != nil {
		return err
	}
	*f = value
	return nil
}

// Values returns p in ParamNames order.
func (p Params) Values() []float64 {
	return []float64{
		p.Time, p.X, p.Y, p.Z,
		p.TrackAzimuth, p.TrackZenith,
		p.CascadeAzimuth, p.CascadeZenith,
		p.TrackEnergy, p.CascadeEnergy,
	}
}

// ParamsFromValues is the inverse of Values.
func ParamsFromValues(v []float64) Params {
	return Params{
		Time: v[0], X: v[1], Y: v[2], Z: v[3],
		TrackAzimuth: v[4], TrackZenith: v[5],
		CascadeAzimuth: v[6], CascadeZenith: v[7],
		TrackEnergy: v[8], CascadeEnergy: v[9],
	}
}

const (
	HypoTrack             = "track"
	HypoCascade           = "cascade"
	HypoTrackCascade      = "track_cascade"
	HypoTrackCascadeSplit = "track_cascade_split"
)

// Schema says which parameters the optimizer searches for a hypothesis.
// Track energy, when present, is found by the stepwise search inside the
// likelihood and cascade energy by its scale fit.
type Schema struct {
	Kind     string
	OptNames []string
	Pegleg   bool
	Scaling  bool
	// cascade direction follows the track direction
	Collinear bool
}

func NewSchema(kind string) (Schema, error) {
	vertex := []string{ParamTime, ParamX, ParamY, ParamZ}
	track := []string{ParamTrackAzimuth, ParamTrackZenith}
	cascade := []string{ParamCascadeAzimuth, ParamCascadeZenith}

	switch kind {
	case HypoTrack:
		return Schema{Kind: kind, OptNames: join(vertex, track), Pegleg: true}, nil
	case HypoCascade:
		return Schema{Kind: kind, OptNames: join(vertex, cascade), Scaling: true}, nil
	case HypoTrackCascade:
		return Schema{Kind: kind, OptNames: join(vertex, track), Pegleg: true, Scaling: true, Collinear: true}, nil
	case HypoTrackCascadeSplit:
		return Schema{Kind: kind, OptNames: join(vertex, track, cascade), Pegleg: true, Scaling: true}, nil
	}
	return Schema{}, fmt.Errorf("%w %q", ErrUnknownHypothesis, kind)
}

func join(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Space describes the optimized vector to the optimizer.
func (s Schema) Space(transform optimize.Transform) optimize.Space {
	space := optimize.Space{Names: s.OptNames, Prior: transform}
	pos := make(map[string]int, len(s.OptNames))
	for i, name := range s.OptNames {
		pos[name] = i
	}
	for i, name := range s.OptNames {
		switch name {
		case ParamTrackAzimuth, ParamTrackZenith, ParamCascadeAzimuth, ParamCascadeZenith:
		default:
			space.Linear = append(space.Linear, i)
		}
	}
	if az, ok := pos[ParamTrackAzimuth]; ok {
		space.Pairs = append(space.Pairs, optimize.Pair{Azimuth: az, Zenith: pos[ParamTrackZenith]})
	}
	if az, ok := pos[ParamCascadeAzimuth]; ok {
		space.Pairs = append(space.Pairs, optimize.Pair{Azimuth: az, Zenith: pos[ParamCascadeZenith]})
	}
	return space
}

// Params expands an optimized vector into a full hypothesis. Energies are
// left at zero.
func (s Schema) Params(x []float64) Params {
	var p Params
	for i, name := range s.OptNames {
		// names come from NewSchema
		_ = p.Set(name, x[i])
	}
	if s.Collinear {
		p.CascadeAzimuth = p.TrackAzimuth
		p.CascadeZenith = p.TrackZenith
	}
	return p
}

// HasTrack reports whether the hypothesis has a track component.
func (s Schema) HasTrack() bool {
	return s.Pegleg
}

// HasCascade reports whether the hypothesis has a cascade component.
func (s Schema) HasCascade() bool {
	return s.Scaling
}
