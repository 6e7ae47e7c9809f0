package reco

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/next-exp/reco_go/pkg/optimize"
	"github.com/next-exp/reco_go/pkg/prior"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticFactory struct {
	eval  Evaluator
	calls int
}

func (f *staticFactory) NewEvaluator(*EventInfo, Schema) (Evaluator, error) {
	f.calls++
	return f.eval, nil
}

var truth = Params{Time: 110, X: 3, Y: -4, Z: 5, TrackAzimuth: 1, TrackZenith: 2}

// peakedEvaluator compares the observed charge with an expectation that
// grows with the distance to truth, so llh = -(observed - expected)^2 peaks
// exactly at truth.
func peakedEvaluator(observed float64) EvaluatorFunc {
	target := optimize.FromAngles(truth.TrackAzimuth, truth.TrackZenith)
	return func(p Params) (float64, int, float64) {
		dir := optimize.FromAngles(p.TrackAzimuth, p.TrackZenith)
		d2 := (p.Time-truth.Time)*(p.Time-truth.Time)/100 +
			(p.X-truth.X)*(p.X-truth.X) +
			(p.Y-truth.Y)*(p.Y-truth.Y) +
			(p.Z-truth.Z)*(p.Z-truth.Z) +
			10*(1-dir.Vec.Dot(target.Vec))
		expected := observed + math.Sqrt(math.Max(d2, 0))
		return -(observed - expected) * (observed - expected), 33, 0
	}
}

func testConfiguration() Configuration {
	opt := optimize.DefaultConfig()
	opt.PopulationSize = 60
	opt.StdThreshold = 1e-4
	opt.Seed = 42

	priors := prior.DefaultSpecs()
	priors[ParamTime] = prior.Spec{Kind: prior.Uniform, Low: -50, High: 50, LocFrom: prior.RefFirstTime}
	for _, name := range []string{ParamX, ParamY, ParamZ} {
		priors[name] = prior.Spec{Kind: prior.Uniform, Low: -20, High: 20}
	}
	return Configuration{
		Hypothesis:       HypoTrack,
		Method:           optimize.MethodCRS2,
		Optimizer:        opt,
		Likelihood:       DefaultLikelihoodConfig(),
		Priors:           priors,
		NoiseFloor:       DefaultNoiseFloor,
		ReportAfter:      DefaultReportAfter,
		EstimateDeltaLLH: 1,
	}
}

func oneSensor() *Geometry {
	return NewGeometry([]SensorGeometry{{SensorID: 1, QE: 1, NoiseRateHz: 700, Operational: true}})
}

func TestReconstructSyntheticEvent(t *testing.T) {
	factory := &staticFactory{eval: peakedEvaluator(5.0)}
	r, err := NewReconstructor(testConfiguration(), oneSensor(), factory)
	require.NoError(t, err)

	event := NewEvent(3, []RawHit{{SensorID: 1, Time: 100, Charge: 5.0}})
	res, err := r.Reconstruct(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, optimize.StopConverged, res.Opt.Stop)
	assert.Less(t, res.Opt.Iterations, r.Optimizer.MaxIterations)
	assert.Equal(t, 1, res.NumHits)
	assert.Equal(t, 5.0, res.TotalCharge)

	best := res.Estimate.Best
	assert.InDelta(t, truth.Time, best.Time, 1)
	assert.InDelta(t, truth.X, best.X, 0.1)
	assert.InDelta(t, truth.Y, best.Y, 0.1)
	assert.InDelta(t, truth.Z, best.Z, 0.1)
	dir := optimize.FromAngles(best.TrackAzimuth, best.TrackZenith)
	target := optimize.FromAngles(truth.TrackAzimuth, truth.TrackZenith)
	assert.Greater(t, dir.Vec.Dot(target.Vec), math.Cos(0.05))

	// the stepwise track search result is turned into energy
	assert.InDelta(t, 33/TrackMPerGeV, best.TrackEnergy, 1e-12)
	assert.Zero(t, best.CascadeEnergy)
	assert.Equal(t, best.TrackEnergy, best.TotalEnergy)

	assert.Equal(t, res.Opt.Evaluations, res.Trace.Len())
	assert.Equal(t, res.Trace.Len(), res.Estimate.NumLLH)
	assert.Len(t, res.Priors, 6)
}

func TestReconstructRejectsEmptyEvent(t *testing.T) {
	factory := &staticFactory{eval: peakedEvaluator(5.0)}
	r, err := NewReconstructor(testConfiguration(), oneSensor(), factory)
	require.NoError(t, err)

	event := NewEvent(4, []RawHit{{SensorID: 1, Time: 100, Charge: 0}})
	_, err = r.Reconstruct(context.Background(), event)
	require.ErrorIs(t, err, ErrNoCharge)

	var eventErr *EventError
	require.ErrorAs(t, err, &eventErr)
	assert.Equal(t, 4, eventErr.EventID)
	// nothing was evaluated
	assert.Zero(t, factory.calls)
}

func TestReconstructBrokenLikelihood(t *testing.T) {
	cases := map[string]struct {
		llh  float64
		want error
	}{
		"positive": {llh: 0.5, want: ErrLLHPositive},
		"nan":      {llh: math.NaN(), want: ErrLLHNotFinite},
		"inf":      {llh: math.Inf(-1), want: ErrLLHNotFinite},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			eval := EvaluatorFunc(func(Params) (float64, int, float64) { return tc.llh, 0, 0 })
			r, err := NewReconstructor(testConfiguration(), oneSensor(), &staticFactory{eval: eval})
			require.NoError(t, err)

			event := NewEvent(5, []RawHit{{SensorID: 1, Time: 100, Charge: 5}})
			_, err = r.Reconstruct(context.Background(), event)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestReconstructCancelled(t *testing.T) {
	r, err := NewReconstructor(testConfiguration(), oneSensor(), &staticFactory{eval: peakedEvaluator(5.0)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := r.Reconstruct(ctx, NewEvent(6, []RawHit{{SensorID: 1, Time: 100, Charge: 5}}))
	require.NoError(t, err)
	assert.Equal(t, optimize.StopCancelled, res.Opt.Stop)
	assert.Equal(t, r.Optimizer.PopulationSize, res.Estimate.NumLLH)
}

func TestReconstructRandomMethod(t *testing.T) {
	config := testConfiguration()
	config.Method = optimize.MethodRandom
	config.Optimizer.Samples = 25
	r, err := NewReconstructor(config, oneSensor(), &staticFactory{eval: peakedEvaluator(5.0)})
	require.NoError(t, err)

	res, err := r.Reconstruct(context.Background(), NewEvent(7, []RawHit{{SensorID: 1, Time: 100, Charge: 5}}))
	require.NoError(t, err)
	assert.Equal(t, optimize.StopSamplesDone, res.Opt.Stop)
	assert.Equal(t, 25, res.Estimate.NumLLH)
}

func TestNewReconstructorValidates(t *testing.T) {
	config := testConfiguration()
	config.Hypothesis = "bogus"
	_, err := NewReconstructor(config, oneSensor(), &staticFactory{})
	assert.ErrorIs(t, err, ErrUnknownHypothesis)

	config = testConfiguration()
	delete(config.Priors, ParamTrackZenith)
	_, err = NewReconstructor(config, oneSensor(), &staticFactory{})
	assert.ErrorIs(t, err, ErrMissingPrior)

	config = testConfiguration()
	config.Method = "multinest"
	_, err = NewReconstructor(config, oneSensor(), &staticFactory{})
	assert.Error(t, err)

	for _, floor := range []float64{0, -1e-7, math.NaN()} {
		config = testConfiguration()
		config.NoiseFloor = floor
		_, err = NewReconstructor(config, oneSensor(), &staticFactory{})
		assert.ErrorIs(t, err, ErrNoiseFloor)
	}

	config = testConfiguration()
	config.EstimateDeltaLLH = -1
	_, err = NewReconstructor(config, oneSensor(), &staticFactory{})
	assert.ErrorIs(t, err, ErrEstimateDeltaLLH)

	config = testConfiguration()
	config.EstimateDeltaLLH = 0
	_, err = NewReconstructor(config, oneSensor(), &staticFactory{})
	assert.NoError(t, err)
}

func TestReconstructNelderMead(t *testing.T) {
	config := testConfiguration()
	config.Method = optimize.MethodNelderMead
	config.Optimizer.StdThreshold = 1e-9
	config.Optimizer.MaxNoImprovement = 200
	r, err := NewReconstructor(config, oneSensor(), &staticFactory{eval: peakedEvaluator(5.0)})
	require.NoError(t, err)

	res, err := r.Reconstruct(context.Background(), NewEvent(9, []RawHit{{SensorID: 1, Time: 100, Charge: 5}}))
	require.NoError(t, err)
	assert.Contains(t, []optimize.StopReason{optimize.StopConverged, optimize.StopNoImprovement}, res.Opt.Stop)
	assert.Equal(t, res.Opt.Evaluations, res.Estimate.NumLLH)
	assert.InDelta(t, truth.X, res.Estimate.Best.X, 0.5)
	assert.InDelta(t, truth.Y, res.Estimate.Best.Y, 0.5)
	assert.InDelta(t, truth.Z, res.Estimate.Best.Z, 0.5)
}

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Info(message string, module string) {
	l.messages = append(l.messages, module+": "+message)
}

func (l *recordingLogger) Error(message string) {
	l.messages = append(l.messages, message)
}

func TestReconstructVerbosity(t *testing.T) {
	rec := &recordingLogger{}
	SetLogger(rec)
	defer SetLogger(nil)

	event := NewEvent(10, []RawHit{{SensorID: 1, Time: 100, Charge: 5}})
	config := testConfiguration()
	config.Optimizer.MaxIterations = 100
	config.ReportAfter = 20

	config.Verbosity = 0
	r, err := NewReconstructor(config, oneSensor(), &staticFactory{eval: peakedEvaluator(5.0)})
	require.NoError(t, err)
	_, err = r.Reconstruct(context.Background(), event)
	require.NoError(t, err)
	assert.Empty(t, rec.messages)

	config.Verbosity = 2
	r, err = NewReconstructor(config, oneSensor(), &staticFactory{eval: peakedEvaluator(5.0)})
	require.NoError(t, err)
	_, err = r.Reconstruct(context.Background(), event)
	require.NoError(t, err)

	joined := strings.Join(rec.messages, "\n")
	assert.Contains(t, joined, "index: Event 10: 1 hits on 1 sensors")
	assert.Contains(t, joined, "reco: Event 10: 20 LLH computed")
	// only optimized parameters are listed
	assert.Contains(t, joined, "track_zenith=")
	assert.NotContains(t, joined, "cascade_energy=")
}

func TestRunMeta(t *testing.T) {
	r, err := NewReconstructor(testConfiguration(), oneSensor(), &staticFactory{})
	require.NoError(t, err)

	meta, err := r.Meta(8000)
	require.NoError(t, err)
	assert.NotEmpty(t, meta.RunID)
	assert.Equal(t, optimize.MethodCRS2, meta.Method)
	assert.Equal(t, HypoTrack, meta.Hypothesis)
	assert.Len(t, meta.Priors, 6)
	assert.Equal(t, r.Optimizer, meta.Optimizer)

	path := t.TempDir() + "/meta.json"
	require.NoError(t, meta.WriteJSON(path))
	assert.FileExists(t, path)
}
