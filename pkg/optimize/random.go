package optimize

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RandomSearch draws Samples points from the prior and keeps the best one.
// It is mostly useful to sanity check a likelihood before a real fit.
type RandomSearch struct {
	Config Config
	Rand   *rand.Rand
}

func NewRandomSearch(cfg Config) *RandomSearch {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomSearch{Config: cfg, Rand: rand.New(rand.NewSource(seed))}
}

func (s *RandomSearch) Name() string {
	return MethodRandom
}

func (s *RandomSearch) Settings() any {
	return s.Config
}

func (s *RandomSearch) Optimize(ctx context.Context, space Space, objective Objective, trace *Trace) (Result, error) {
	if err := space.Validate(); err != nil {
		return Result{}, err
	}
	if objective == nil {
		return Result{}, errors.New("objective function is required")
	}
	if trace == nil {
		return Result{}, errors.New("trace is required")
	}
	if s.Config.Samples <= 0 {
		return Result{}, errors.New("samples must be > 0")
	}

	n := space.Dim()
	unit := make([]float64, n)
	result := Result{BestCost: math.Inf(1), Stop: StopSamplesDone}
	for i := 0; i < s.Config.Samples; i++ {
		if ctx.Err() != nil {
			result.Stop = StopCancelled
			break
		}
		for d := range unit {
			unit[d] = s.Rand.Float64()
		}
		x := make([]float64, n)
		space.Prior.Transform(unit, x)

		cost, sample, err := objective(ctx, x)
		if err != nil {
			return Result{}, err
		}
		trace.Append(sample)
		result.Evaluations++
		result.Iterations++
		if cost < result.BestCost {
			result.BestCost = cost
			result.Best = x
		}
	}
	return result, nil
}
