package likelihood

import (
	"fmt"
	"math"

	reco "github.com/next-exp/reco_go/pkg"
)

// Factory builds one Evaluator per event from shared tables.
type Factory struct {
	Tables *Tables
	Config reco.LikelihoodConfig
}

func NewFactory(tables *Tables, cfg reco.LikelihoodConfig) (*Factory, error) {
	if err := ValidateTables(tables); err != nil {
		return nil, err
	}
	if cfg.TimeBinNs <= 0 || cfg.TimeWindowNs < cfg.TimeBinNs {
		return nil, fmt.Errorf("invalid time binning: %g ns bins in a %g ns window", cfg.TimeBinNs, cfg.TimeWindowNs)
	}
	if cfg.MaxCascadeEnergy <= 0 {
		return nil, fmt.Errorf("max cascade energy must be positive")
	}
	return &Factory{Tables: tables, Config: cfg}, nil
}

func (f *Factory) NewEvaluator(info *reco.EventInfo, schema reco.Schema) (reco.Evaluator, error) {
	for _, s := range info.Sensors {
		if s.TableIdx < 0 || s.TableIdx >= len(f.Tables.Tables) {
			return nil, fmt.Errorf("sensor %d uses table %d of %d: %w", s.SensorID, s.TableIdx, len(f.Tables.Tables), reco.ErrTableIndex)
		}
	}
	nSensors, nHits := len(info.Sensors), len(info.Hits)
	return &Evaluator{
		tables:     f.Tables,
		cfg:        f.Config,
		info:       info,
		gen:        NewGenerator(schema, f.Config),
		schema:     schema,
		baseSensor: make([]float64, nSensors),
		baseHit:    make([]float64, nHits),
		unitSensor: make([]float64, nSensors),
		unitHit:    make([]float64, nHits),
	}, nil
}

// Evaluator is the time-binned Poisson likelihood of one event. It keeps
// scratch buffers and must not be used from several goroutines.
type Evaluator struct {
	tables *Tables
	cfg    reco.LikelihoodConfig
	info   *reco.EventInfo
	gen    *Generator
	schema reco.Schema

	// expected charge per sensor and per hit bin
	baseSensor []float64
	baseHit    []float64
	unitSensor []float64
	unitHit    []float64
}

// LogLikelihood compares every hit with the expected charge in its time bin
// and every sensor with its expected total charge. Each term is relative to
// the saturated model, so the result is never positive. The track length is
// found by adding pegleg steps one at a time, and for every length the
// cascade energy is fitted.
func (e *Evaluator) LogLikelihood(p reco.Params) (float64, int, float64) {
	for i, s := range e.info.Sensors {
		e.baseSensor[i] = s.NoiseRatePerNs * e.cfg.TimeWindowNs
		for h := s.HitsStart; h < s.HitsStop; h++ {
			e.baseHit[h] = s.NoiseRatePerNs * e.cfg.TimeBinNs
		}
	}
	clear(e.unitSensor)
	clear(e.unitHit)

	for _, src := range e.gen.Generic(p) {
		e.add(src, e.baseSensor, e.baseHit)
	}
	for _, src := range e.gen.Scaling(p) {
		e.add(src, e.unitSensor, e.unitHit)
	}

	bestLLH, bestScale := e.fitScale()
	bestIdx := 0
	for k, src := range e.gen.Pegleg(p) {
		if !e.add(src, e.baseSensor, e.baseHit) {
			continue
		}
		llh, scale := e.fitScale()
		if llh > bestLLH {
			bestLLH, bestScale, bestIdx = llh, scale, k+1
		}
	}
	return bestLLH, bestIdx, bestScale
}

// add accumulates the expectation of src. It reports whether any sensor
// sees the source.
func (e *Evaluator) add(src Source, sensorMu, hitMu []float64) bool {
	groupSpeed := SpeedOfLightMPerNs / RefractiveIndex
	half := e.cfg.TimeBinNs / 2
	seen := false
	for i := range e.info.Sensors {
		s := &e.info.Sensors[i]
		frac, dist := e.tables.acceptance(src, s)
		if frac == 0 {
			continue
		}
		seen = true
		mu := src.Photons * frac
		sensorMu[i] += mu

		direct := src.Time + dist/groupSpeed
		tau := 1 + dist/10
		for h := s.HitsStart; h < s.HitsStop; h++ {
			delay := e.info.Hits[h].Time - direct
			hitMu[h] += mu * (delayCDF(delay+half, tau) - delayCDF(delay-half, tau))
		}
	}
	return seen
}

// delayCDF is the probability that scattering delays a photon by less than
// dt, exponential with scale tau.
func delayCDF(dt, tau float64) float64 {
	if dt <= 0 {
		return 0
	}
	return -math.Expm1(-dt / tau)
}

func (e *Evaluator) llh(scale float64) float64 {
	total, inHits, llh := 0.0, 0.0, 0.0
	for i := range e.baseSensor {
		total += e.baseSensor[i] + scale*e.unitSensor[i]
	}
	for h, hit := range e.info.Hits {
		mu := e.baseHit[h] + scale*e.unitHit[h]
		inHits += mu
		if hit.Charge > 0 {
			llh += hit.Charge*math.Log(mu/hit.Charge) - mu + hit.Charge
		} else {
			llh -= mu
		}
	}
	if rest := total - inHits; rest > 0 {
		llh -= rest
	}
	return llh
}

// dllh is the derivative of llh with respect to scale; llh is concave in
// scale so its root is the best scale.
func (e *Evaluator) dllh(scale float64) float64 {
	d := 0.0
	for i := range e.unitSensor {
		d -= e.unitSensor[i]
	}
	for h, hit := range e.info.Hits {
		if hit.Charge > 0 {
			d += hit.Charge * e.unitHit[h] / (e.baseHit[h] + scale*e.unitHit[h])
		}
	}
	return d
}

func (e *Evaluator) fitScale() (float64, float64) {
	if !e.schema.Scaling {
		return e.llh(0), 0
	}
	lo, hi := 0.0, e.cfg.MaxCascadeEnergy
	switch {
	case e.dllh(lo) <= 0:
		hi = lo
	case e.dllh(hi) >= 0:
		lo = hi
	default:
		for i := 0; i < 60 && hi-lo > 1e-6; i++ {
			mid := (lo + hi) / 2
			if e.dllh(mid) > 0 {
				lo = mid
			} else {
				hi = mid
			}
		}
	}
	scale := (lo + hi) / 2
	return e.llh(scale), scale
}
