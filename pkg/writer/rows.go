package writer

// Row layouts of the output tables. Field names become HDF5 column names.

type PulseHDF5 struct {
	event  int32
	sensor int32
	time   float64
	charge float64
}

type EventHDF5 struct {
	event_id         int32
	stop             [STRLEN]byte
	iterations       int32
	evaluations      int32
	simplex_success  int32
	fallback_success int32
	failures         int32
	n_hits           int32
	n_sensors        int32
	total_charge     float64
	n_llh            int32
	n_in_cut         int32
	duration_ms      float64
}

type EstimateHDF5 struct {
	event_id        int32
	time            float64
	x               float64
	y               float64
	z               float64
	track_azimuth   float64
	track_zenith    float64
	cascade_azimuth float64
	cascade_zenith  float64
	track_energy    float64
	cascade_energy  float64
	energy          float64
	azimuth         float64
	zenith          float64
	llh             float64
}

type LLHPointHDF5 struct {
	event_id        int32
	time            float64
	x               float64
	y               float64
	z               float64
	track_azimuth   float64
	track_zenith    float64
	cascade_azimuth float64
	cascade_zenith  float64
	track_energy    float64
	cascade_energy  float64
	llh             float64
}

// EventPriorHDF5 is a prior after it was centred on one event.
type EventPriorHDF5 struct {
	event_id int32
	name     [STRLEN]byte
	kind     [STRLEN]byte
	low      float64
	high     float64
	loc      float64
	scale    float64
}

type PriorSpecHDF5 struct {
	name     [STRLEN]byte
	kind     [STRLEN]byte
	low      float64
	high     float64
	loc      float64
	scale    float64
	loc_from [STRLEN]byte
}

type ParamHDF5 struct {
	param [STRLEN]byte
	value float64
}

type RunInfoHDF5 struct {
	run_id     [40]byte
	run_number int32
	hypothesis [STRLEN]byte
	method     [STRLEN]byte
}
