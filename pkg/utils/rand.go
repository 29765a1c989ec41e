package utils

import (
	"math/rand"
	"time"
)

// RandSource is a seedable random number generator.
// It is not safe for concurrent use; draw values before fanning work out.
type RandSource struct {
	rng  *rand.Rand
	seed int64
}

// NewRandSource creates a new random source with the given seed.
// A zero seed picks one from the clock.
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		rng:  rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Seed returns the seed the source was created with.
func (r *RandSource) Seed() int64 {
	return r.seed
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// UniformFloat64 returns a uniformly distributed random number in [min, max)
func (r *RandSource) UniformFloat64(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}

// Float64s returns n values in [0.0, 1.0)
func (r *RandSource) Float64s(n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = r.rng.Float64()
	}
	return out
}
