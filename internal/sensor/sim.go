package sensor

import "math/rand"

// SimSource generates a bounded random walk around room conditions. It
// stands in for the hardware when no humidity-capable hwmon chip is
// found, and in tests.
type SimSource struct {
	rng  *rand.Rand
	temp float64
	hum  float64
}

// NewSim creates a simulated source. The same seed reproduces the same
// walk.
func NewSim(seed int64) *SimSource {
	return &SimSource{
		rng:  rand.New(rand.NewSource(seed)),
		temp: 22.5,
		hum:  45.0,
	}
}

// Name identifies the source as simulated.
func (s *SimSource) Name() string { return "simulated" }

// Read advances the walk by one step. It never fails.
func (s *SimSource) Read() (Reading, error) {
	s.temp += (s.rng.Float64() - 0.5) * 0.4
	s.hum += (s.rng.Float64() - 0.5) * 1.2
	s.temp = clampWalk(s.temp, 15.0, 32.0)
	s.hum = clampWalk(s.hum, 25.0, 75.0)
	return Reading{Temperature: s.temp, Humidity: s.hum, Valid: true}, nil
}

func clampWalk(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
