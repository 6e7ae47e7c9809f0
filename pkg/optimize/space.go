package optimize

import (
	"errors"
	"fmt"
)

// Transform maps a point of the unit hypercube onto physical units.
type Transform interface {
	Transform(unit []float64, phys []float64)
}

// Pair holds the vector indices of one (azimuth, zenith) direction.
type Pair struct {
	Azimuth int
	Zenith  int
}

// Space describes the searched parameter vector: which entries are ordinary
// real-valued dimensions and which ones form directions.
type Space struct {
	Names  []string
	Linear []int
	Pairs  []Pair
	Prior  Transform
}

func (s Space) Dim() int {
	return len(s.Linear) + 2*len(s.Pairs)
}

func (s Space) Validate() error {
	if s.Prior == nil {
		return errors.New("space has no prior transform")
	}
	n := s.Dim()
	if n == 0 {
		return errors.New("space has no dimensions")
	}
	if len(s.Names) != n {
		return fmt.Errorf("space has %d names for %d dimensions", len(s.Names), n)
	}
	seen := make([]bool, n)
	mark := func(idx int) error {
		if idx < 0 || idx >= n {
			return fmt.Errorf("dimension index %d out of range [0, %d)", idx, n)
		}
		if seen[idx] {
			return fmt.Errorf("dimension %q used twice", s.Names[idx])
		}
		seen[idx] = true
		return nil
	}
	for _, idx := range s.Linear {
		if err := mark(idx); err != nil {
			return err
		}
	}
	for _, p := range s.Pairs {
		if err := mark(p.Azimuth); err != nil {
			return err
		}
		if err := mark(p.Zenith); err != nil {
			return err
		}
	}
	return nil
}
