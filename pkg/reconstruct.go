package reco

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/next-exp/reco_go/pkg/optimize"
	"github.com/next-exp/reco_go/pkg/prior"
)

const DefaultReportAfter = 100

// Reconstructor fits one hypothesis to events. It holds only immutable
// state and may be shared by several workers.
type Reconstructor struct {
	Geometry         *Geometry
	Factory          EvaluatorFactory
	Schema           Schema
	Priors           map[string]prior.Spec
	Method           string
	Optimizer        optimize.Config
	Likelihood       LikelihoodConfig
	NoiseFloor       float64
	ReportAfter      int
	EstimateDeltaLLH float64
	Verbosity        int
}

func NewReconstructor(config Configuration, geom *Geometry, factory EvaluatorFactory) (*Reconstructor, error) {
	schema, err := NewSchema(config.Hypothesis)
	if err != nil {
		return nil, err
	}
	for _, name := range schema.OptNames {
		if _, ok := config.Priors[name]; !ok {
			return nil, fmt.Errorf("hypothesis %q: %w for %q", schema.Kind, ErrMissingPrior, name)
		}
	}
	if !(config.NoiseFloor > 0) {
		return nil, fmt.Errorf("%w (got %g)", ErrNoiseFloor, config.NoiseFloor)
	}
	if !(config.EstimateDeltaLLH >= 0) {
		return nil, fmt.Errorf("%w (got %g)", ErrEstimateDeltaLLH, config.EstimateDeltaLLH)
	}
	// fail on a bad method name before the first event
	if _, err := optimize.New(config.Method, config.Optimizer); err != nil {
		return nil, err
	}
	return &Reconstructor{
		Geometry:         geom,
		Factory:          factory,
		Schema:           schema,
		Priors:           config.Priors,
		Method:           config.Method,
		Optimizer:        config.Optimizer,
		Likelihood:       config.Likelihood,
		NoiseFloor:       config.NoiseFloor,
		ReportAfter:      config.ReportAfter,
		EstimateDeltaLLH: config.EstimateDeltaLLH,
		Verbosity:        config.Verbosity,
	}, nil
}

// Result is everything known about one reconstructed event.
type Result struct {
	EventID     int
	NumHits     int
	NumSensors  int
	TotalCharge float64
	Priors      []prior.Prior
	Opt         optimize.Result
	Trace       *optimize.Trace
	Estimate    Estimate
	Duration    time.Duration
}

// Reconstruct fits the event. Errors are *EventError; the optimizer's own
// stopping rules are not errors and show up in Result.Opt.Stop.
func (r *Reconstructor) Reconstruct(ctx context.Context, event Event) (*Result, error) {
	start := time.Now()
	fail := func(err error) (*Result, error) {
		return nil, &EventError{EventID: event.ID, Err: err}
	}

	info, err := BuildEventInfo(r.Geometry, event, r.NoiseFloor)
	if err != nil {
		return fail(err)
	}
	if r.Verbosity > 1 {
		message := fmt.Sprintf("Event %d: %d hits on %d sensors, total charge %.2f, %d hits dropped",
			event.ID, len(info.Hits), len(info.Sensors), info.TotalCharge, info.DroppedHits)
		logger.Info(message, "index")
	}
	priors, err := prior.NewSet(r.Schema.OptNames, r.Priors, info.References())
	if err != nil {
		return fail(err)
	}
	evaluator, err := r.Factory.NewEvaluator(info, r.Schema)
	if err != nil {
		return fail(err)
	}

	cfg := r.Optimizer
	if cfg.Seed != 0 {
		cfg.Seed += int64(event.ID)
	}
	opt, err := optimize.New(r.Method, cfg)
	if err != nil {
		return fail(err)
	}

	trace := optimize.NewTrace()
	report := newProgress(event.ID, r.Schema, r.ReportAfter, r.Verbosity > 1)
	objective := func(_ context.Context, x []float64) (float64, optimize.Sample, error) {
		p := r.Schema.Params(x)
		llh, peglegIdx, scale := evaluator.LogLikelihood(p)
		if math.IsNaN(llh) || math.IsInf(llh, 0) {
			return 0, optimize.Sample{}, fmt.Errorf("%w: %g", ErrLLHNotFinite, llh)
		}
		if llh > 0 {
			return 0, optimize.Sample{}, fmt.Errorf("%w: %g", ErrLLHPositive, llh)
		}
		if r.Schema.Pegleg {
			p.TrackEnergy = r.Likelihood.TrackEnergy(peglegIdx)
		}
		if r.Schema.Scaling {
			p.CascadeEnergy = scale
		}
		sample := optimize.Sample{Values: p.Values(), LLH: llh}
		report.record(sample)
		return -llh, sample, nil
	}

	res, err := opt.Optimize(ctx, r.Schema.Space(priors), objective, trace)
	if err != nil {
		return fail(err)
	}
	estimate, err := AssembleEstimate(r.Schema, trace, r.EstimateDeltaLLH)
	if err != nil {
		return fail(err)
	}

	result := &Result{
		EventID:     event.ID,
		NumHits:     len(info.Hits),
		NumSensors:  len(info.Sensors),
		TotalCharge: info.TotalCharge,
		Priors:      priors.Priors(),
		Opt:         res,
		Trace:       trace,
		Estimate:    estimate,
		Duration:    time.Since(start),
	}
	if r.Verbosity > 0 {
		message := fmt.Sprintf("Event %d: %s after %d iterations, %d llh evaluations, best llh %.3f (%s)",
			event.ID, res.Stop, res.Iterations, res.Evaluations, estimate.Best.LLH, result.Duration.Round(time.Millisecond))
		logger.Info(message, "reco")
	}
	return result, nil
}

// progress logs the state of the search every n evaluations.
type progress struct {
	eventID int
	schema  Schema
	n       int
	verbose bool
	calls   int
	best    optimize.Sample
	start   time.Time
}

func newProgress(eventID int, schema Schema, n int, verbose bool) *progress {
	return &progress{
		eventID: eventID,
		schema:  schema,
		n:       n,
		verbose: verbose,
		best:    optimize.Sample{LLH: math.Inf(-1)},
		start:   time.Now(),
	}
}

func (p *progress) record(s optimize.Sample) {
	p.calls++
	if s.LLH > p.best.LLH {
		p.best = s
	}
	if !p.verbose || p.n <= 0 || p.calls%p.n != 0 {
		return
	}
	avg := time.Since(p.start).Seconds() * 1000 / float64(p.calls)
	message := fmt.Sprintf("Event %d: %d LLH computed, avg time per llh %.3f ms, best llh = %.3f @ %s",
		p.eventID, p.calls, avg, p.best.LLH, formatValues(p.schema, ParamsFromValues(p.best.Values)))
	logger.Info(message, "reco")
}

// formatValues lists the optimized parameters of p.
func formatValues(schema Schema, p Params) string {
	parts := make([]string, 0, len(schema.OptNames))
	for _, name := range schema.OptNames {
		v, err := p.Get(name)
		if err != nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%.1f", name, v))
	}
	return strings.Join(parts, " ")
}
