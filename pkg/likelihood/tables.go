// Package likelihood is a photon-table Poisson likelihood for hypotheses made
// of a muon track and an electromagnetic cascade.
package likelihood

import (
	"fmt"
	"math"

	reco "github.com/next-exp/reco_go/pkg"
)

const (
	SpeedOfLightMPerNs     = 0.299792458
	RefractiveIndex        = 1.32
	CosCherenkov           = 0.764540803152
	TrackPhotonsPerM       = 2451.4544553
	EMCascadePhotonsPerGeV = 12818.970
)

// Table gives, per distance bin, the fraction of emitted photons reaching a
// sensor of unit efficiency (Weights) and the angular template describing
// how that fraction depends on the emission angle (Index).
type Table struct {
	Weights []float64
	Index   []int
}

// Tables is the immutable photon model shared by all events.
type Tables struct {
	DistanceBinM float64
	Tables       []Table
	// Templates[i][j] is the relative acceptance of cos-angle bin j, bins
	// spanning [-1, 1].
	Templates [][]float64
}

// NewAnalyticTables builds tables from a simple propagation model: inverse
// square law with exponential absorption, and a Cherenkov cone smeared more
// the further the light travels.
func NewAnalyticTables(cfg reco.LikelihoodConfig) (*Tables, error) {
	if cfg.DistanceBinM <= 0 || cfg.MaxDistanceM <= cfg.DistanceBinM {
		return nil, fmt.Errorf("invalid distance binning: %g m bins up to %g m", cfg.DistanceBinM, cfg.MaxDistanceM)
	}
	if cfg.NumTables <= 0 || cfg.CosBins <= 0 {
		return nil, fmt.Errorf("need at least one table and one angular bin")
	}
	nDist := int(math.Ceil(cfg.MaxDistanceM / cfg.DistanceBinM))

	templates := make([][]float64, nDist)
	for d := range templates {
		r := (float64(d) + 0.5) * cfg.DistanceBinM
		width := 0.05 + r/cfg.MaxDistanceM
		row := make([]float64, cfg.CosBins)
		sum := 0.0
		for j := range row {
			c := -1 + (float64(j)+0.5)*2/float64(cfg.CosBins)
			row[j] = math.Exp(-0.5*math.Pow((c-CosCherenkov)/width, 2)) + 0.05
			sum += row[j]
		}
		// mean acceptance over the sphere is one
		for j := range row {
			row[j] *= float64(cfg.CosBins) / sum
		}
		templates[d] = row
	}

	tables := make([]Table, cfg.NumTables)
	for i := range tables {
		// later tables model sensors with a larger effective area
		area := cfg.SensorAreaM2 * (1 + float64(i))
		t := Table{Weights: make([]float64, nDist), Index: make([]int, nDist)}
		for d := range t.Weights {
			r := math.Max((float64(d)+0.5)*cfg.DistanceBinM, 1)
			t.Weights[d] = area / (4 * math.Pi * r * r) * math.Exp(-r/cfg.AbsorptionLength)
			t.Index[d] = d
		}
		tables[i] = t
	}
	return &Tables{DistanceBinM: cfg.DistanceBinM, Tables: tables, Templates: templates}, nil
}

// ValidateTables checks that the tables can be used at all. It runs once,
// before any event is reconstructed.
func ValidateTables(t *Tables) error {
	for i, row := range t.Templates {
		for j, w := range row {
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				return fmt.Errorf("template %d bin %d: %w (got %g)", i, j, reco.ErrTableWeights, w)
			}
		}
	}
	for i, table := range t.Tables {
		if len(table.Index) != len(table.Weights) {
			return fmt.Errorf("table %d: %d weights but %d indices: %w", i, len(table.Weights), len(table.Index), reco.ErrTableIndex)
		}
		for d, w := range table.Weights {
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				return fmt.Errorf("table %d bin %d: %w (got %g)", i, d, reco.ErrTableWeights, w)
			}
		}
		for d, idx := range table.Index {
			if idx < 0 || idx >= len(t.Templates) {
				return fmt.Errorf("table %d bin %d: template %d of %d: %w", i, d, idx, len(t.Templates), reco.ErrTableIndex)
			}
		}
	}
	return nil
}

// acceptance is the expected fraction of photons emitted by src that sensor
// s detects.
func (t *Tables) acceptance(src Source, s *reco.SensorInfo) (frac float64, dist float64) {
	delta := s.Position().Sub(src.Pos)
	dist = delta.Norm()
	d := int(dist / t.DistanceBinM)
	table := &t.Tables[s.TableIdx]
	if d >= len(table.Weights) {
		return 0, dist
	}
	cosAngle := 1.0
	if dist > 0 {
		cosAngle = src.Dir.Dot(delta) / dist
	}
	row := t.Templates[table.Index[d]]
	j := int((cosAngle + 1) / 2 * float64(len(row)))
	j = min(max(j, 0), len(row)-1)
	return s.QuantumEfficiency * table.Weights[d] * row[j], dist
}
