package reco

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/next-exp/reco_go/pkg/optimize"
	"github.com/next-exp/reco_go/pkg/prior"
)

// RunMeta describes how a file of estimates was produced.
type RunMeta struct {
	RunID       string                `json:"run_id"`
	Created     time.Time             `json:"created"`
	RunNumber   int                   `json:"run_number"`
	Hypothesis  string                `json:"hypothesis"`
	OptNames    []string              `json:"opt_names"`
	Method      string                `json:"method"`
	Optimizer   any                   `json:"optimizer"`
	Priors      map[string]prior.Spec `json:"priors"`
	Likelihood  LikelihoodConfig      `json:"likelihood"`
	NoiseFloor  float64               `json:"noise_floor"`
	DeltaLLH    float64               `json:"estimate_delta_llh"`
	EventsDone  int                   `json:"events_done"`
	EventsError int                   `json:"events_error"`
}

func (r *Reconstructor) Meta(runNumber int) (RunMeta, error) {
	opt, err := optimize.New(r.Method, r.Optimizer)
	if err != nil {
		return RunMeta{}, err
	}
	priors := make(map[string]prior.Spec, len(r.Schema.OptNames))
	for _, name := range r.Schema.OptNames {
		priors[name] = r.Priors[name]
	}
	return RunMeta{
		RunID:      uuid.NewString(),
		Created:    time.Now().UTC(),
		RunNumber:  runNumber,
		Hypothesis: r.Schema.Kind,
		OptNames:   r.Schema.OptNames,
		Method:     opt.Name(),
		Optimizer:  opt.Settings(),
		Priors:     priors,
		Likelihood: r.Likelihood,
		NoiseFloor: r.NoiseFloor,
		DeltaLLH:   r.EstimateDeltaLLH,
	}, nil
}

func (m RunMeta) WriteJSON(filename string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding run metadata: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("error writing run metadata %q: %w", filename, err)
	}
	return nil
}
