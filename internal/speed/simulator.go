// Package speed produces the simulated speed readout shown while driving.
package speed

import (
	"math"
	"math/rand/v2"
)

// Simulator is a bounded random walk.
type Simulator struct {
	min, max float64
	current  float64
	rng      *rand.Rand
}

// NewSimulator starts a walk at start, clamped to [min, max]. A nil rng uses
// a randomly seeded source.
func NewSimulator(start, min, max float64, rng *rand.Rand) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulator{
		min:     min,
		max:     max,
		current: clamp(start, min, max),
		rng:     rng,
	}
}

// Next moves the reading by a uniform step in [-1, 1) and returns it.
func (s *Simulator) Next() float64 {
	variation := s.rng.Float64()*2 - 1
	s.current = clamp(s.current+variation, s.min, s.max)
	return s.current
}

// Current returns the last reading without moving it.
func (s *Simulator) Current() float64 {
	return s.current
}

// Display rounds a reading for the speedometer.
func Display(v float64) int {
	return int(math.Round(v))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
