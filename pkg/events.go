package reco

import (
	"sort"

	"github.com/golang/geo/r3"
)

// Pulse is one row of the input pulse table.
type Pulse struct {
	EventID  int
	SensorID int
	Time     float64
	Charge   float64
}

type RawHit struct {
	SensorID int
	Time     float64
	Charge   float64
}

// HitIndex points at the hits of one sensor inside Event.Hits.
type HitIndex struct {
	SensorID int
	Offset   int
	Num      int
}

// Event holds the raw hits of one event sorted by sensor and time, and the
// per-sensor index over them sorted by sensor id.
type Event struct {
	ID      int
	Hits    []RawHit
	Indexer []HitIndex
}

func NewEvent(id int, hits []RawHit) Event {
	sorted := make([]RawHit, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SensorID != sorted[j].SensorID {
			return sorted[i].SensorID < sorted[j].SensorID
		}
		return sorted[i].Time < sorted[j].Time
	})

	indexer := make([]HitIndex, 0)
	for i, hit := range sorted {
		n := len(indexer)
		if n > 0 && indexer[n-1].SensorID == hit.SensorID {
			indexer[n-1].Num++
			continue
		}
		indexer = append(indexer, HitIndex{SensorID: hit.SensorID, Offset: i, Num: 1})
	}
	return Event{ID: id, Hits: sorted, Indexer: indexer}
}

// GroupEvents splits a pulse table into events, ordered by event id.
func GroupEvents(pulses []Pulse) []Event {
	byEvent := make(map[int][]RawHit)
	for _, p := range pulses {
		byEvent[p.EventID] = append(byEvent[p.EventID], RawHit{SensorID: p.SensorID, Time: p.Time, Charge: p.Charge})
	}
	ids := make([]int, 0, len(byEvent))
	for id := range byEvent {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	events := make([]Event, len(ids))
	for i, id := range ids {
		events[i] = NewEvent(id, byEvent[id])
	}
	return events
}

// SensorGeometry is one row of the SensorGeometry table.
type SensorGeometry struct {
	SensorID    int     `db:"SensorID"`
	X           float64 `db:"X"`
	Y           float64 `db:"Y"`
	Z           float64 `db:"Z"`
	QE          float64 `db:"QE"`
	NoiseRateHz float64 `db:"NoiseRate"`
	Operational bool    `db:"Operational"`
	TableIdx    int     `db:"TableIdx"`
}

// Geometry is the immutable detector description shared by all events of a
// run. Sensors are sorted by id.
type Geometry struct {
	sensors []SensorGeometry
}

func NewGeometry(sensors []SensorGeometry) *Geometry {
	sorted := make([]SensorGeometry, len(sensors))
	copy(sorted, sensors)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].SensorID < sorted[j].SensorID
	})
	return &Geometry{sensors: sorted}
}

func (g *Geometry) Sensors() []SensorGeometry {
	out := make([]SensorGeometry, len(g.sensors))
	copy(out, g.sensors)
	return out
}

func (g *Geometry) NumSensors() int {
	return len(g.sensors)
}

type Hit struct {
	Time      float64
	Charge    float64
	SensorIdx int
}

type SensorInfo struct {
	SensorID            int
	X, Y, Z             float64
	QuantumEfficiency   float64
	NoiseRatePerNs      float64
	TotalObservedCharge float64
	HitsStart           int
	HitsStop            int
	TableIdx            int
}

func (s SensorInfo) Position() r3.Vector {
	return r3.Vector{X: s.X, Y: s.Y, Z: s.Z}
}

// EventInfo is what the likelihood sees of an event. It is built once and
// never modified afterwards.
type EventInfo struct {
	EventID      int
	Hits         []Hit
	Sensors      []SensorInfo
	TotalCharge  float64
	COG          r3.Vector
	FirstHitTime float64
	// hits on sensors that are unknown or not operational
	DroppedHits int
}
