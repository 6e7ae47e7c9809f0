package reco

import (
	"errors"
	"fmt"
)

// Preconditions checked before any optimizer iteration runs.
var (
	ErrNoCharge          = errors.New("event has no observed charge")
	ErrChargeNotFinite   = errors.New("total observed charge is not finite")
	ErrQuantumEfficiency = errors.New("quantum efficiency must be positive")
	ErrTableWeights      = errors.New("table weights must be finite and non-negative")
	ErrTableIndex        = errors.New("table index out of bounds")
	ErrUnknownParameter  = errors.New("unknown parameter")
	ErrUnknownHypothesis = errors.New("unknown hypothesis")
	ErrMissingPrior      = errors.New("missing prior")
	ErrNoiseFloor        = errors.New("noise floor must be positive")
	ErrEstimateDeltaLLH  = errors.New("estimate llh distance must not be negative")
)

// Invariants of the likelihood; a violation aborts the event.
var (
	ErrLLHNotFinite = errors.New("log-likelihood is not finite")
	ErrLLHPositive  = errors.New("log-likelihood is positive")
)

// EventError ties a failure to the event it happened in.
type EventError struct {
	EventID int
	Err     error
}

func (e *EventError) Error() string {
	return fmt.Sprintf("event %d: %v", e.EventID, e.Err)
}

func (e *EventError) Unwrap() error {
	return e.Err
}
