// Package writer stores reconstruction results in HDF5 files.
package writer

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/jmbenlloch/go-hdf5"
	reco "github.com/next-exp/reco_go/pkg"
	"golang.org/x/exp/maps"
)

type Writer struct {
	File           *hdf5.File
	Filename       string
	RecoGroup      *hdf5.Group
	ConfigGroup    *hdf5.Group
	EventTable     *table
	BestTable      *table
	MeanTable      *table
	LLHPTable      *table
	EventPriors    *table
	RunInfoTable   *table
	PriorsTable    *table
	OptimizerTable *table
	EvtCounter     int
}

// NewWriter creates filename, truncating it. With writeTrace every
// likelihood evaluation is stored in /Reco/llhp.
func NewWriter(filename string, compression int, writeTrace bool) (*Writer, error) {
	w := &Writer{Filename: filename}
	var err error
	if w.File, err = createFile(filename); err != nil {
		return nil, err
	}
	fail := func(err error) (*Writer, error) {
		return nil, errors.Join(err, w.Close())
	}

	if w.RecoGroup, err = createGroup(w.File, "Reco"); err != nil {
		return fail(err)
	}
	if w.ConfigGroup, err = createGroup(w.File, "Config"); err != nil {
		return fail(err)
	}
	tables := []struct {
		dst   **table
		group *hdf5.Group
		name  string
		row   interface{}
	}{
		{&w.EventTable, w.RecoGroup, "events", EventHDF5{}},
		{&w.BestTable, w.RecoGroup, "best", EstimateHDF5{}},
		{&w.MeanTable, w.RecoGroup, "mean", EstimateHDF5{}},
		{&w.EventPriors, w.RecoGroup, "priors", EventPriorHDF5{}},
		{&w.RunInfoTable, w.ConfigGroup, "run", RunInfoHDF5{}},
		{&w.PriorsTable, w.ConfigGroup, "priors", PriorSpecHDF5{}},
		{&w.OptimizerTable, w.ConfigGroup, "optimizer", ParamHDF5{}},
	}
	if writeTrace {
		tables = append(tables, struct {
			dst   **table
			group *hdf5.Group
			name  string
			row   interface{}
		}{&w.LLHPTable, w.RecoGroup, "llhp", LLHPointHDF5{}})
	}
	for _, t := range tables {
		if *t.dst, err = createTable(t.group, t.name, t.row, compression); err != nil {
			return fail(err)
		}
	}
	return w, nil
}

// WriteConfiguration stores how the file was produced.
func (w *Writer) WriteConfiguration(meta reco.RunMeta) error {
	var runID [40]byte
	copy(runID[:], meta.RunID)
	run := RunInfoHDF5{
		run_id:     runID,
		run_number: int32(meta.RunNumber),
		hypothesis: convertToHdf5String(meta.Hypothesis),
		method:     convertToHdf5String(meta.Method),
	}
	if err := writeEntryToTable(w.RunInfoTable, run); err != nil {
		return fmt.Errorf("error writing run info: %w", err)
	}

	names := maps.Keys(meta.Priors)
	sort.Strings(names)
	priors := make([]PriorSpecHDF5, len(names))
	for i, name := range names {
		spec := meta.Priors[name]
		priors[i] = PriorSpecHDF5{
			name:     convertToHdf5String(name),
			kind:     convertToHdf5String(spec.Kind),
			low:      spec.Low,
			high:     spec.High,
			loc:      spec.Loc,
			scale:    spec.Scale,
			loc_from: convertToHdf5String(spec.LocFrom),
		}
	}
	if err := writeArrayToTable(w.PriorsTable, &priors); err != nil {
		return fmt.Errorf("error writing priors: %w", err)
	}

	params := settingsToParams(meta.Optimizer)
	if err := writeArrayToTable(w.OptimizerTable, &params); err != nil {
		return fmt.Errorf("error writing optimizer settings: %w", err)
	}
	return nil
}

// settingsToParams flattens the numeric and boolean fields tagged with
// hdf5 into name/value rows.
func settingsToParams(settings any) []ParamHDF5 {
	v := reflect.ValueOf(settings)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	t := v.Type()
	var params []ParamHDF5
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		paramName := f.Tag.Get("hdf5")
		if paramName == "" {
			continue
		}
		var value float64
		switch f.Type.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			value = float64(v.Field(i).Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			value = float64(v.Field(i).Uint())
		case reflect.Float32, reflect.Float64:
			value = v.Field(i).Float()
		case reflect.Bool:
			if v.Field(i).Bool() {
				value = 1
			}
		default:
			continue
		}
		params = append(params, ParamHDF5{param: convertToHdf5String(paramName), value: value})
	}
	return params
}

func estimateRow(eventID int, p reco.LLHPoint) EstimateHDF5 {
	return EstimateHDF5{
		event_id:        int32(eventID),
		time:            p.Time,
		x:               p.X,
		y:               p.Y,
		z:               p.Z,
		track_azimuth:   p.TrackAzimuth,
		track_zenith:    p.TrackZenith,
		cascade_azimuth: p.CascadeAzimuth,
		cascade_zenith:  p.CascadeZenith,
		track_energy:    p.TrackEnergy,
		cascade_energy:  p.CascadeEnergy,
		energy:          p.TotalEnergy,
		azimuth:         p.Azimuth,
		zenith:          p.Zenith,
		llh:             p.LLH,
	}
}

// WriteEvent appends one reconstructed event to every table.
func (w *Writer) WriteEvent(res *reco.Result) error {
	event := EventHDF5{
		event_id:         int32(res.EventID),
		stop:             convertToHdf5String(res.Opt.Stop.String()),
		iterations:       int32(res.Opt.Iterations),
		evaluations:      int32(res.Opt.Evaluations),
		simplex_success:  int32(res.Opt.SimplexSuccess),
		fallback_success: int32(res.Opt.FallbackSuccess),
		failures:         int32(res.Opt.Failures),
		n_hits:           int32(res.NumHits),
		n_sensors:        int32(res.NumSensors),
		total_charge:     res.TotalCharge,
		n_llh:            int32(res.Estimate.NumLLH),
		n_in_cut:         int32(res.Estimate.NumInCut),
		duration_ms:      float64(res.Duration.Microseconds()) / 1000,
	}
	if err := writeEntryToTable(w.EventTable, event); err != nil {
		return fmt.Errorf("event %d: error writing event summary: %w", res.EventID, err)
	}
	if err := writeEntryToTable(w.BestTable, estimateRow(res.EventID, res.Estimate.Best)); err != nil {
		return fmt.Errorf("event %d: error writing best estimate: %w", res.EventID, err)
	}
	if err := writeEntryToTable(w.MeanTable, estimateRow(res.EventID, res.Estimate.Mean)); err != nil {
		return fmt.Errorf("event %d: error writing mean estimate: %w", res.EventID, err)
	}

	priors := make([]EventPriorHDF5, len(res.Priors))
	for i, p := range res.Priors {
		priors[i] = EventPriorHDF5{
			event_id: int32(res.EventID),
			name:     convertToHdf5String(p.Name),
			kind:     convertToHdf5String(p.Spec.Kind),
			low:      p.Low,
			high:     p.High,
			loc:      p.Loc,
			scale:    p.Spec.Scale,
		}
	}
	if err := writeArrayToTable(w.EventPriors, &priors); err != nil {
		return fmt.Errorf("event %d: error writing priors: %w", res.EventID, err)
	}

	if w.LLHPTable != nil && res.Trace != nil {
		samples := res.Trace.Samples()
		points := make([]LLHPointHDF5, len(samples))
		for i, s := range samples {
			p := reco.ParamsFromValues(s.Values)
			points[i] = LLHPointHDF5{
				event_id:        int32(res.EventID),
				time:            p.Time,
				x:               p.X,
				y:               p.Y,
				z:               p.Z,
				track_azimuth:   p.TrackAzimuth,
				track_zenith:    p.TrackZenith,
				cascade_azimuth: p.CascadeAzimuth,
				cascade_zenith:  p.CascadeZenith,
				track_energy:    p.TrackEnergy,
				cascade_energy:  p.CascadeEnergy,
				llh:             s.LLH,
			}
		}
		if err := writeArrayToTable(w.LLHPTable, &points); err != nil {
			return fmt.Errorf("event %d: error writing llh points: %w", res.EventID, err)
		}
	}
	w.EvtCounter++
	return nil
}

func (w *Writer) Close() error {
	var errs []error
	closeTable := func(t *table, name string) {
		if t == nil {
			return
		}
		if err := t.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s table: %w", name, err))
		}
	}
	closeTable(w.EventTable, "events")
	closeTable(w.BestTable, "best")
	closeTable(w.MeanTable, "mean")
	closeTable(w.LLHPTable, "llhp")
	closeTable(w.EventPriors, "event priors")
	closeTable(w.RunInfoTable, "run info")
	closeTable(w.PriorsTable, "priors")
	closeTable(w.OptimizerTable, "optimizer")

	if w.RecoGroup != nil {
		if err := w.RecoGroup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing reco group: %w", err))
		}
	}
	if w.ConfigGroup != nil {
		if err := w.ConfigGroup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing config group: %w", err))
		}
	}
	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing file: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
