package writer

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	reco "github.com/next-exp/reco_go/pkg"
	"github.com/next-exp/reco_go/pkg/optimize"
	"github.com/next-exp/reco_go/pkg/prior"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHdf5Strings(t *testing.T) {
	assert.Equal(t, "cascade_zenith", convertFromHdf5String(convertToHdf5String("cascade_zenith")))
	// truncated to STRLEN
	long := "a_very_long_parameter_name"
	assert.Equal(t, long[:STRLEN], convertFromHdf5String(convertToHdf5String(long)))
}

func TestSettingsToParams(t *testing.T) {
	cfg := optimize.DefaultConfig()
	cfg.Mutation = true
	cfg.Seed = 7
	params := settingsToParams(cfg)

	values := make(map[string]float64)
	for _, p := range params {
		values[convertFromHdf5String(p.param)] = p.value
	}
	assert.Len(t, values, 8)
	assert.Equal(t, float64(cfg.PopulationSize), values["population_size"])
	assert.Equal(t, cfg.StdThreshold, values["std_threshold"])
	assert.Equal(t, 1.0, values["mutation"])
	assert.Equal(t, 0.0, values["use_priors"])
	assert.Equal(t, 7.0, values["seed"])

	assert.Empty(t, settingsToParams(42))
	assert.Len(t, settingsToParams(&cfg), 8)
}

func TestPulsesRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "pulses.h5")
	pulses := []reco.Pulse{
		{EventID: 3, SensorID: 12, Time: 101.5, Charge: 1.25},
		{EventID: 3, SensorID: 4, Time: 99, Charge: 0.5},
		{EventID: 8, SensorID: 12, Time: 350, Charge: 2},
	}
	require.NoError(t, writePulses(filename, "Pulses", "pulses", pulses))

	read, err := ReadPulses(filename, "/Pulses/pulses")
	require.NoError(t, err)
	assert.Equal(t, pulses, read)

	_, err = ReadPulses(filepath.Join(t.TempDir(), "missing.h5"), "/Pulses/pulses")
	var openErr *ErrOpenFile
	assert.ErrorAs(t, err, &openErr)
}

func TestWriter(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "reco.h5")
	w, err := NewWriter(filename, 4, true)
	require.NoError(t, err)

	meta := reco.RunMeta{
		RunID:      "4b3c1f1e-0000-4000-8000-000000000000",
		RunNumber:  12,
		Hypothesis: reco.HypoCascade,
		Method:     optimize.MethodCRS2,
		Optimizer:  optimize.DefaultConfig(),
		Priors:     prior.DefaultSpecs(),
	}
	require.NoError(t, w.WriteConfiguration(meta))

	trace := optimize.NewTrace()
	trace.Append(optimize.Sample{Values: make([]float64, len(reco.ParamNames)), LLH: -12})
	trace.Append(optimize.Sample{Values: make([]float64, len(reco.ParamNames)), LLH: -10})
	res := &reco.Result{
		EventID:     5,
		NumHits:     10,
		NumSensors:  4,
		TotalCharge: 12.5,
		Opt:         optimize.Result{Iterations: 3, Evaluations: 2, Stop: optimize.StopConverged},
		Trace:       trace,
		Estimate:    reco.Estimate{Best: reco.LLHPoint{LLH: -10}, Mean: reco.LLHPoint{LLH: -11}, NumLLH: 2, NumInCut: 2},
		Duration:    1500 * time.Microsecond,
	}
	require.NoError(t, w.WriteEvent(res))
	require.NoError(t, w.WriteEvent(res))
	assert.Equal(t, 2, w.EvtCounter)
	assert.Equal(t, 4, w.LLHPTable.rows)
	assert.Equal(t, len(meta.Priors), w.PriorsTable.rows)
	require.NoError(t, w.Close())
}

// writePulses stores pulses in /<group>/<table>, the layout ReadPulses reads.
func writePulses(filename, groupName, tableName string, pulses []reco.Pulse) (err error) {
	f, err := createFile(filename)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	group, err := createGroup(f, groupName)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, group.Close()) }()

	t, err := createTable(group, tableName, PulseHDF5{}, 0)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, t.Close()) }()

	rows := make([]PulseHDF5, len(pulses))
	for i, p := range pulses {
		rows[i] = PulseHDF5{
			event:  int32(p.EventID),
			sensor: int32(p.SensorID),
			time:   p.Time,
			charge: p.Charge,
		}
	}
	if err := writeArrayToTable(t, &rows); err != nil {
		return fmt.Errorf("error writing pulses: %w", err)
	}
	return nil
}
