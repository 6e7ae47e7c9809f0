package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	reco "github.com/next-exp/reco_go/pkg"
	"github.com/next-exp/reco_go/pkg/optimize"
	"github.com/next-exp/reco_go/pkg/prior"
	"golang.org/x/exp/maps"
)

func defaultConfiguration() reco.Configuration {
	var config reco.Configuration

	// Set default values
	config.PulsesTable = "/Pulses/pulses"
	config.MaxEvents = 1000000000
	config.Skip = 0
	config.Verbosity = 0
	config.NumWorkers = 1
	config.DBDriver = reco.DriverMySQL
	config.Host = "next.ific.uv.es"
	config.User = "nextreader"
	config.Passwd = "readonly"
	config.DBName = "NEXT100"
	config.Hypothesis = reco.HypoTrackCascade
	config.Method = optimize.MethodCRS2
	config.Optimizer = optimize.DefaultConfig()
	config.Likelihood = reco.DefaultLikelihoodConfig()
	config.Priors = prior.DefaultSpecs()
	config.NoiseFloor = reco.DefaultNoiseFloor
	config.ReportAfter = reco.DefaultReportAfter
	config.EstimateDeltaLLH = 15
	config.WriteTrace = false
	config.CompressionLevel = 4
	return config
}

// LoadConfiguration reads filename over the default values. Priors given in
// the file replace the default prior of the same parameter.
func LoadConfiguration(filename string) (reco.Configuration, error) {
	config := defaultConfiguration()

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	if config.NumWorkers < 1 {
		return config, fmt.Errorf("num_workers must be at least 1, got %d", config.NumWorkers)
	}
	if config.FileOut == "" {
		return config, fmt.Errorf("file_out is required")
	}
	if !(config.NoiseFloor > 0) {
		return config, fmt.Errorf("noise_floor: %w (got %g)", reco.ErrNoiseFloor, config.NoiseFloor)
	}
	if !(config.EstimateDeltaLLH >= 0) {
		return config, fmt.Errorf("estimate_delta_llh: %w (got %g)", reco.ErrEstimateDeltaLLH, config.EstimateDeltaLLH)
	}
	return config, nil
}

func printConfiguration(config reco.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("Pulses table: %s", config.PulsesTable), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("DB driver: %s", config.DBDriver), "config")
	if config.DBDriver == reco.DriverSQLite {
		logger.Info(fmt.Sprintf("DB file: %s", config.DBFile), "config")
	} else {
		logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
		logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	}
	logger.Info(fmt.Sprintf("Run number: %d", config.RunNumber), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Hypothesis: %s", config.Hypothesis), "config")
	logger.Info(fmt.Sprintf("Method: %s", config.Method), "config")
	logger.Info(fmt.Sprintf("Optimizer: %+v", config.Optimizer), "config")
	logger.Info(fmt.Sprintf("Likelihood: %+v", config.Likelihood), "config")
	names := maps.Keys(config.Priors)
	sort.Strings(names)
	for _, name := range names {
		logger.Info(fmt.Sprintf("Prior %s: %+v", name, config.Priors[name]), "config")
	}
	logger.Info(fmt.Sprintf("Noise floor: %g", config.NoiseFloor), "config")
	logger.Info(fmt.Sprintf("Report after: %d", config.ReportAfter), "config")
	logger.Info(fmt.Sprintf("Estimate delta llh: %g", config.EstimateDeltaLLH), "config")
	logger.Info(fmt.Sprintf("Write trace: %t", config.WriteTrace), "config")
	logger.Info(fmt.Sprintf("Compression level: %d", config.CompressionLevel), "config")
}
