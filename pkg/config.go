package reco

import (
	"github.com/next-exp/reco_go/pkg/optimize"
	"github.com/next-exp/reco_go/pkg/prior"
)

type Configuration struct {
	FileIn           string                `json:"file_in"`
	FileOut          string                `json:"file_out"`
	PulsesTable      string                `json:"pulses_table"`
	MaxEvents        int                   `json:"max_events"`
	Skip             int                   `json:"skip"`
	Verbosity        int                   `json:"verbosity"`
	NumWorkers       int                   `json:"num_workers"`
	DBDriver         string                `json:"db_driver"`
	DBFile           string                `json:"db_file"`
	Host             string                `json:"host"`
	User             string                `json:"user"`
	Passwd           string                `json:"pass"`
	DBName           string                `json:"dbname"`
	RunNumber        int                   `json:"run_number"`
	Hypothesis       string                `json:"hypothesis"`
	Method           string                `json:"method"`
	Optimizer        optimize.Config       `json:"optimizer"`
	Likelihood       LikelihoodConfig      `json:"likelihood"`
	Priors           map[string]prior.Spec `json:"priors"`
	NoiseFloor       float64               `json:"noise_floor"`
	ReportAfter      int                   `json:"report_after"`
	EstimateDeltaLLH float64               `json:"estimate_delta_llh"`
	WriteTrace       bool                  `json:"write_trace"`
	CompressionLevel int                   `json:"compression_level"`
}

// LikelihoodConfig holds the settings of the photon-table likelihood.
type LikelihoodConfig struct {
	TimeWindowNs     float64 `json:"time_window_ns"`
	TimeBinNs        float64 `json:"time_bin_ns"`
	DistanceBinM     float64 `json:"distance_bin_m"`
	MaxDistanceM     float64 `json:"max_distance_m"`
	PeglegStepM      float64 `json:"pegleg_step_m"`
	MaxTrackLengthM  float64 `json:"max_track_length_m"`
	MaxCascadeEnergy float64 `json:"max_cascade_energy"`
	NumTables        int     `json:"num_tables"`
	CosBins          int     `json:"cos_bins"`
	AbsorptionLength float64 `json:"absorption_length_m"`
	SensorAreaM2     float64 `json:"sensor_area_m2"`
}

func DefaultLikelihoodConfig() LikelihoodConfig {
	return LikelihoodConfig{
		TimeWindowNs:     2000,
		TimeBinNs:        10,
		DistanceBinM:     5,
		MaxDistanceM:     500,
		PeglegStepM:      1,
		MaxTrackLengthM:  1000,
		MaxCascadeEnergy: 1000,
		NumTables:        2,
		CosBins:          40,
		AbsorptionLength: 100,
		SensorAreaM2:     0.0444,
	}
}
