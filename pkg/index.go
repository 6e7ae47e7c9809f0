package reco

import (
	"fmt"
	"math"

	"github.com/next-exp/reco_go/pkg/prior"
)

const DefaultNoiseFloor = 1e-7 // per ns

// BuildEventInfo restricts the event to operational sensors and builds the
// compact hit and sensor arrays used by the likelihood. Geometry and event
// indexer are both sorted by sensor id, so a single merge is enough.
func BuildEventInfo(geom *Geometry, event Event, noiseFloor float64) (*EventInfo, error) {
	// a dead sensor with a zero rate would make every llh -Inf
	if !(noiseFloor > 0) {
		return nil, fmt.Errorf("%w (got %g)", ErrNoiseFloor, noiseFloor)
	}
	info := &EventInfo{
		EventID:      event.ID,
		Hits:         make([]Hit, 0, len(event.Hits)),
		Sensors:      make([]SensorInfo, 0, len(geom.sensors)),
		FirstHitTime: math.Inf(1),
	}

	j := 0
	for _, sensor := range geom.sensors {
		// hits of sensors not in the geometry
		for j < len(event.Indexer) && event.Indexer[j].SensorID < sensor.SensorID {
			info.DroppedHits += event.Indexer[j].Num
			j++
		}
		var idx *HitIndex
		if j < len(event.Indexer) && event.Indexer[j].SensorID == sensor.SensorID {
			idx = &event.Indexer[j]
			j++
		}

		if !sensor.Operational {
			if idx != nil {
				info.DroppedHits += idx.Num
			}
			continue
		}
		if !(sensor.QE > 0) {
			return nil, fmt.Errorf("sensor %d: %w (got %g)", sensor.SensorID, ErrQuantumEfficiency, sensor.QE)
		}

		s := SensorInfo{
			SensorID:          sensor.SensorID,
			X:                 sensor.X,
			Y:                 sensor.Y,
			Z:                 sensor.Z,
			QuantumEfficiency: sensor.QE,
			NoiseRatePerNs:    math.Max(sensor.NoiseRateHz*1e-9, noiseFloor),
			TableIdx:          sensor.TableIdx,
			HitsStart:         len(info.Hits),
		}
		if idx != nil {
			sensorIdx := len(info.Sensors)
			for _, raw := range event.Hits[idx.Offset : idx.Offset+idx.Num] {
				info.Hits = append(info.Hits, Hit{Time: raw.Time, Charge: raw.Charge, SensorIdx: sensorIdx})
				s.TotalObservedCharge += raw.Charge
				info.COG = info.COG.Add(s.Position().Mul(raw.Charge))
				info.FirstHitTime = math.Min(info.FirstHitTime, raw.Time)
			}
		}
		s.HitsStop = len(info.Hits)
		info.TotalCharge += s.TotalObservedCharge
		info.Sensors = append(info.Sensors, s)
	}
	for ; j < len(event.Indexer); j++ {
		info.DroppedHits += event.Indexer[j].Num
	}

	if math.IsNaN(info.TotalCharge) || math.IsInf(info.TotalCharge, 0) {
		return nil, ErrChargeNotFinite
	}
	if info.TotalCharge <= 0 {
		return nil, ErrNoCharge
	}
	info.COG = info.COG.Mul(1 / info.TotalCharge)
	return info, nil
}

// References are the event quantities data-driven priors are centred on.
func (e *EventInfo) References() map[string]float64 {
	return map[string]float64{
		prior.RefCogX:      e.COG.X,
		prior.RefCogY:      e.COG.Y,
		prior.RefCogZ:      e.COG.Z,
		prior.RefFirstTime: e.FirstHitTime,
	}
}
