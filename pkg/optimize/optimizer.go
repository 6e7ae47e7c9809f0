package optimize

import (
	"context"
	"fmt"
)

// Objective evaluates a parameter vector given in physical units. cost is
// minimized; sample is what gets recorded in the trace.
type Objective func(ctx context.Context, x []float64) (cost float64, sample Sample, err error)

// Optimizer is one interchangeable search strategy.
type Optimizer interface {
	Name() string
	// Settings is persisted with the results of a run.
	Settings() any
	Optimize(ctx context.Context, space Space, objective Objective, trace *Trace) (Result, error)
}

type StopReason int

const (
	StopNone StopReason = iota
	StopConverged
	StopNoImprovement
	StopMaxIterations
	StopCancelled
	StopSamplesDone
)

func (s StopReason) String() string {
	switch s {
	case StopConverged:
		return "converged"
	case StopNoImprovement:
		return "no_improvement"
	case StopMaxIterations:
		return "max_iterations"
	case StopCancelled:
		return "cancelled"
	case StopSamplesDone:
		return "samples_done"
	default:
		return "none"
	}
}

// Result is the best point found plus diagnostics counters.
type Result struct {
	Best            []float64
	BestCost        float64
	Iterations      int
	Evaluations     int
	SimplexSuccess  int
	FallbackSuccess int
	Failures        int
	Stop            StopReason
}

const (
	MethodCRS2       = "crs2"
	MethodRandom     = "random"
	MethodNelderMead = "nelder_mead"
)

// Config gathers the settings of all strategies; each one reads its part.
type Config struct {
	PopulationSize   int     `json:"population_size" hdf5:"population_size"`
	MaxIterations    int     `json:"max_iterations" hdf5:"max_iterations"`
	StdThreshold     float64 `json:"std_threshold" hdf5:"std_threshold"`
	MaxNoImprovement int     `json:"max_no_improvement" hdf5:"max_no_improvement"`
	UsePriors        bool    `json:"use_priors" hdf5:"use_priors"`
	Mutation         bool    `json:"mutation" hdf5:"mutation"`
	Samples          int     `json:"samples" hdf5:"samples"`
	Seed             int64   `json:"seed" hdf5:"seed"`
}

func DefaultConfig() Config {
	return Config{
		PopulationSize:   160,
		MaxIterations:    50000,
		StdThreshold:     0.1,
		MaxNoImprovement: 2000,
		UsePriors:        false,
		Mutation:         false,
		Samples:          100,
		Seed:             0,
	}
}

// New returns the strategy registered under method.
func New(method string, cfg Config) (Optimizer, error) {
	switch method {
	case MethodCRS2:
		crs := NewCRS2(cfg)
		if cfg.Mutation {
			crs.Fallback = BestPointMutation{}
		}
		return crs, nil
	case MethodRandom:
		return NewRandomSearch(cfg), nil
	case MethodNelderMead:
		return NewNelderMead(cfg), nil
	default:
		return nil, fmt.Errorf("unknown optimization method %q", method)
	}
}
