package optimize

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CRS2 is a controlled random search with simplex reflection in which
// directions are averaged and reflected on the unit sphere instead of
// componentwise in angle space.
//
// Linear dimensions are searched either in the unit hypercube (UsePriors,
// the prior maps them to physical units for every evaluation) or directly in
// physical units. Directions are always searched in angle space.
type CRS2 struct {
	Config   Config
	Rand     *rand.Rand
	Fallback FallbackMove
}

func NewCRS2(cfg Config) *CRS2 {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &CRS2{Config: cfg, Rand: rand.New(rand.NewSource(seed))}
}

func (c *CRS2) Name() string {
	return MethodCRS2
}

func (c *CRS2) Settings() any {
	return c.Config
}

type population struct {
	lin  [][]float64
	sph  [][]SphericalPoint
	cost []float64
}

type crs2Run struct {
	*CRS2
	space     Space
	objective Objective
	trace     *Trace
	result    Result
	unit      []float64
}

func (c *CRS2) Optimize(ctx context.Context, space Space, objective Objective, trace *Trace) (Result, error) {
	if err := space.Validate(); err != nil {
		return Result{}, err
	}
	if objective == nil {
		return Result{}, errors.New("objective function is required")
	}
	if trace == nil {
		return Result{}, errors.New("trace is required")
	}
	if c.Rand == nil {
		return Result{}, errors.New("random source is required")
	}
	n := space.Dim()
	N := c.Config.PopulationSize
	if N <= n+1 {
		return Result{}, fmt.Errorf("population size %d must be larger than dimensionality + 1 (%d)", N, n+1)
	}
	if c.Config.MaxIterations < 0 || c.Config.MaxNoImprovement < 0 || c.Config.StdThreshold < 0 {
		return Result{}, errors.New("stopping rules must not be negative")
	}

	run := &crs2Run{
		CRS2:      c,
		space:     space,
		objective: objective,
		trace:     trace,
		unit:      make([]float64, n),
	}
	pop, err := run.initialize(ctx, N)
	if err != nil {
		return Result{}, err
	}
	if err := run.iterate(ctx, pop); err != nil {
		return Result{}, err
	}

	bestIdx := floats.MinIdx(pop.cost)
	run.result.Best = run.physical(pop.lin[bestIdx], pop.sph[bestIdx])
	run.result.BestCost = pop.cost[bestIdx]
	return run.result, nil
}

func (r *crs2Run) initialize(ctx context.Context, N int) (*population, error) {
	n := r.space.Dim()
	points := haltonPoints(N, n, r.Rand.Uint64())
	pop := &population{
		lin:  make([][]float64, N),
		sph:  make([][]SphericalPoint, N),
		cost: make([]float64, N),
	}
	phys := make([]float64, n)
	for i := 0; i < N; i++ {
		u := points.RawRowView(i)
		r.space.Prior.Transform(u, phys)

		lin := make([]float64, len(r.space.Linear))
		for j, idx := range r.space.Linear {
			if r.Config.UsePriors {
				lin[j] = u[idx]
			} else {
				lin[j] = phys[idx]
			}
		}
		sph := make([]SphericalPoint, len(r.space.Pairs))
		for k, p := range r.space.Pairs {
			sph[k] = FromAngles(phys[p.Azimuth], phys[p.Zenith])
		}

		cost, err := r.evaluate(ctx, lin, sph)
		if err != nil {
			return nil, err
		}
		pop.lin[i] = lin
		pop.sph[i] = sph
		pop.cost[i] = cost
	}
	return pop, nil
}

func (r *crs2Run) iterate(ctx context.Context, pop *population) error {
	N := len(pop.cost)
	n := r.space.Dim()
	nLin := len(r.space.Linear)
	nPairs := len(r.space.Pairs)

	pool := make([]int, 0, N)
	subsetSph := make([]SphericalPoint, n)
	centroidLin := make([]float64, nLin)
	centroidSph := make([]SphericalPoint, nPairs)

	bestCost := floats.Min(pop.cost)
	noImprovement := -1

	for iter := 0; ; iter++ {
		if ctx.Err() != nil {
			r.result.Stop = StopCancelled
			return nil
		}
		if iter >= r.Config.MaxIterations {
			r.result.Stop = StopMaxIterations
			return nil
		}
		if stat.PopStdDev(pop.cost, nil) < r.Config.StdThreshold {
			r.result.Stop = StopConverged
			return nil
		}
		if noImprovement > r.Config.MaxNoImprovement {
			r.result.Stop = StopNoImprovement
			return nil
		}
		r.result.Iterations++

		if current := floats.Min(pop.cost); current < bestCost {
			bestCost = current
			noImprovement = 0
		} else {
			noImprovement++
		}

		worst := floats.MaxIdx(pop.cost)
		best := floats.MinIdx(pop.cost)

		// best plus n-1 random others, never the worst
		pool = pool[:0]
		for i := 0; i < N; i++ {
			if i != best && i != worst {
				pool = append(pool, i)
			}
		}
		for i := 0; i < n-1; i++ {
			j := i + r.Rand.Intn(len(pool)-i)
			pool[i], pool[j] = pool[j], pool[i]
		}
		subset := append(pool[:n-1:n-1], best)

		for j := range centroidLin {
			sum := 0.0
			for _, s := range subset {
				sum += pop.lin[s][j]
			}
			centroidLin[j] = sum / float64(len(subset))
		}
		for k := range centroidSph {
			for i, s := range subset {
				subsetSph[i] = pop.sph[s][k]
			}
			centroidSph[k] = Centroid(subsetSph[:len(subset)])
		}

		trialLin := make([]float64, nLin)
		for j := range trialLin {
			trialLin[j] = 2*centroidLin[j] - pop.lin[worst][j]
		}
		trialSph := make([]SphericalPoint, nPairs)
		for k := range trialSph {
			trialSph[k] = Reflect(pop.sph[worst][k], centroidSph[k])
		}

		if r.inside(trialLin) {
			cost, err := r.evaluate(ctx, trialLin, trialSph)
			if err != nil {
				return err
			}
			if cost < pop.cost[worst] {
				pop.lin[worst], pop.sph[worst], pop.cost[worst] = trialLin, trialSph, cost
				r.result.SimplexSuccess++
				continue
			}
		}

		if r.Fallback != nil {
			lin, sph := r.Fallback.Propose(r.Rand, Move{
				BestLin:  pop.lin[best],
				BestSph:  pop.sph[best],
				TrialLin: trialLin,
				TrialSph: trialSph,
			})
			if r.inside(lin) {
				cost, err := r.evaluate(ctx, lin, sph)
				if err != nil {
					return err
				}
				if cost < pop.cost[worst] {
					pop.lin[worst], pop.sph[worst], pop.cost[worst] = lin, sph, cost
					r.result.FallbackSuccess++
					continue
				}
			}
		}

		r.result.Failures++
	}
}

// inside reports whether lin lies in the unit hypercube. Without priors the
// search runs in physical units and there is nothing to check.
func (r *crs2Run) inside(lin []float64) bool {
	if !r.Config.UsePriors {
		return true
	}
	for _, v := range lin {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}

// physical assembles the flat parameter vector in physical units.
func (r *crs2Run) physical(lin []float64, sph []SphericalPoint) []float64 {
	x := make([]float64, r.space.Dim())
	if r.Config.UsePriors {
		for i := range r.unit {
			r.unit[i] = 0.5
		}
		for j, idx := range r.space.Linear {
			r.unit[idx] = lin[j]
		}
		r.space.Prior.Transform(r.unit, x)
	} else {
		for j, idx := range r.space.Linear {
			x[idx] = lin[j]
		}
	}
	for k, p := range r.space.Pairs {
		x[p.Azimuth] = sph[k].Azimuth
		x[p.Zenith] = sph[k].Zenith
	}
	return x
}

func (r *crs2Run) evaluate(ctx context.Context, lin []float64, sph []SphericalPoint) (float64, error) {
	x := r.physical(lin, sph)
	cost, sample, err := r.objective(ctx, x)
	if err != nil {
		return 0, err
	}
	r.trace.Append(sample)
	r.result.Evaluations++
	return cost, nil
}
