package optimize

import (
	"context"
	"errors"
	"math"

	gonumopt "gonum.org/v1/gonum/optimize"
)

const (
	nelderMeadSimplexSize = 0.1
	// keeps unbounded priors finite at the edge of the cube
	unitEdge = 1e-12
)

// NelderMead runs a downhill simplex from the centre of the prior. The
// simplex moves in the unit hypercube and every vertex is clamped into it
// before the prior maps it to physical units, so directions are searched
// componentwise in angle space.
//
// StdThreshold and MaxNoImprovement make up the convergence test: the fit
// stops once the best cost has not dropped by more than StdThreshold for
// MaxNoImprovement iterations.
type NelderMead struct {
	Config Config
}

func NewNelderMead(cfg Config) *NelderMead {
	return &NelderMead{Config: cfg}
}

func (s *NelderMead) Name() string {
	return MethodNelderMead
}

func (s *NelderMead) Settings() any {
	return s.Config
}

func (s *NelderMead) Optimize(ctx context.Context, space Space, objective Objective, trace *Trace) (Result, error) {
	if err := space.Validate(); err != nil {
		return Result{}, err
	}
	if objective == nil {
		return Result{}, errors.New("objective function is required")
	}
	if trace == nil {
		return Result{}, errors.New("trace is required")
	}
	if s.Config.MaxIterations < 0 || s.Config.MaxNoImprovement < 0 || s.Config.StdThreshold < 0 {
		return Result{}, errors.New("stopping rules must not be negative")
	}

	result := Result{BestCost: math.Inf(1)}
	if ctx.Err() != nil {
		result.Stop = StopCancelled
		return result, nil
	}

	n := space.Dim()
	unit := make([]float64, n)
	var evalErr error
	problem := gonumopt.Problem{
		Func: func(u []float64) float64 {
			for i, v := range u {
				unit[i] = math.Min(math.Max(v, unitEdge), 1-unitEdge)
			}
			x := make([]float64, n)
			space.Prior.Transform(unit, x)
			cost, sample, err := objective(ctx, x)
			if err != nil {
				evalErr = err
				return math.Inf(1)
			}
			trace.Append(sample)
			result.Evaluations++
			if cost < result.BestCost {
				result.BestCost = cost
				result.Best = x
			}
			return cost
		},
		Status: func() (gonumopt.Status, error) {
			if evalErr != nil {
				return gonumopt.Failure, evalErr
			}
			if err := ctx.Err(); err != nil {
				return gonumopt.Failure, err
			}
			return gonumopt.NotTerminated, nil
		},
	}
	settings := &gonumopt.Settings{
		MajorIterations: s.Config.MaxIterations,
		Converger: &gonumopt.FunctionConverge{
			Absolute:   s.Config.StdThreshold,
			Iterations: s.Config.MaxNoImprovement,
		},
	}

	centre := make([]float64, n)
	for i := range centre {
		centre[i] = 0.5
	}
	res, err := gonumopt.Minimize(problem, centre, settings, &gonumopt.NelderMead{SimplexSize: nelderMeadSimplexSize})
	if evalErr != nil {
		return Result{}, evalErr
	}
	if ctx.Err() != nil {
		result.Stop = StopCancelled
		if res != nil {
			result.Iterations = res.MajorIterations
		}
		return result, nil
	}
	if err != nil {
		return Result{}, err
	}

	result.Iterations = res.MajorIterations
	switch res.Status {
	case gonumopt.IterationLimit, gonumopt.FunctionEvaluationLimit:
		result.Stop = StopMaxIterations
	case gonumopt.FunctionConvergence:
		result.Stop = StopNoImprovement
	default:
		result.Stop = StopConverged
	}
	return result, nil
}
