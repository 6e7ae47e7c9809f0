package optimize

import (
	"math"
	"sync"
)

// Sample is one recorded evaluation: the full parameter record and its
// log-likelihood.
type Sample struct {
	Values []float64
	LLH    float64
}

// Trace is the append-only log of every evaluation made while optimizing
// one event.
type Trace struct {
	mu      sync.Mutex
	samples []Sample
}

func NewTrace() *Trace {
	return &Trace{samples: make([]Sample, 0, 1024)}
}

// Append stores a copy of s.
func (t *Trace) Append(s Sample) {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = append(t.samples, Sample{Values: values, LLH: s.LLH})
}

func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.samples)
}

// Samples returns a snapshot of the recorded samples.
func (t *Trace) Samples() []Sample {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}

// Best returns the sample with the largest log-likelihood.
func (t *Trace) Best() (Sample, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bestIdx := -1
	bestLLH := math.Inf(-1)
	for i, s := range t.samples {
		if bestIdx < 0 || s.LLH > bestLLH {
			bestIdx = i
			bestLLH = s.LLH
		}
	}
	if bestIdx < 0 {
		return Sample{}, false
	}
	return t.samples[bestIdx], true
}
