package reco

// Evaluator computes the log-likelihood of one hypothesis for one event.
// llh must be finite and not positive; larger is better. peglegIdx is the
// number of track steps chosen by the stepwise search and scale the fitted
// cascade energy in GeV.
type Evaluator interface {
	LogLikelihood(p Params) (llh float64, peglegIdx int, scale float64)
}

// EvaluatorFactory builds the evaluator of each event. Implementations
// hold the immutable tables shared by all events.
type EvaluatorFactory interface {
	NewEvaluator(info *EventInfo, schema Schema) (Evaluator, error)
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(p Params) (float64, int, float64)

func (f EvaluatorFunc) LogLikelihood(p Params) (float64, int, float64) {
	return f(p)
}

// Track length per GeV of muon energy.
const TrackMPerGeV = 15.0 / 3.3

// TrackEnergy converts the stepwise search result into GeV.
func (c LikelihoodConfig) TrackEnergy(peglegIdx int) float64 {
	return float64(peglegIdx) * c.PeglegStepM / TrackMPerGeV
}
