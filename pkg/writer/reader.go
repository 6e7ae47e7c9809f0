package writer

import (
	"github.com/jmbenlloch/go-hdf5"
	reco "github.com/next-exp/reco_go/pkg"
)

// ReadPulses reads every pulse stored in the given table, e.g. "/Pulses/pulses".
func ReadPulses(filename, tableName string) ([]reco.Pulse, error) {
	f, err := hdf5.OpenFile(filename, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer f.Close()

	rows, err := readTable[PulseHDF5](f, tableName)
	if err != nil {
		return nil, err
	}
	pulses := make([]reco.Pulse, len(rows))
	for i, r := range rows {
		pulses[i] = reco.Pulse{
			EventID:  int(r.event),
			SensorID: int(r.sensor),
			Time:     r.time,
			Charge:   r.charge,
		}
	}
	return pulses, nil
}
