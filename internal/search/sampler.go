package search

import (
	"fmt"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/utils"
)

// Sampler draws the split fractions a search evaluates.
type Sampler interface {
	// Fractions returns n values in [0, 1), in evaluation order.
	Fractions(n int) []float64
	// Name returns the name of the sampling strategy
	Name() string
}

// GridSampler spaces fractions evenly: k/n for k = 0..n-1.
type GridSampler struct{}

func (GridSampler) Name() string {
	return "grid"
}

func (GridSampler) Fractions(n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for k := range out {
		out[k] = float64(k) / float64(n)
	}
	return out
}

// RandomSampler draws uniform fractions from a seeded source.
// Two samplers with the same non-zero seed produce the same fractions.
type RandomSampler struct {
	seed int64
}

// NewRandomSampler creates a random sampler. A zero seed is reseeded per call from the clock.
func NewRandomSampler(seed int64) *RandomSampler {
	return &RandomSampler{seed: seed}
}

func (s *RandomSampler) Name() string {
	return "random"
}

func (s *RandomSampler) Fractions(n int) []float64 {
	return utils.NewRandSource(s.seed).Float64s(n)
}

// SamplerType names a sampling strategy in configuration.
type SamplerType string

const (
	SamplerGrid   SamplerType = "grid"
	SamplerRandom SamplerType = "random"
)

// NewSampler creates a sampler from a type string.
func NewSampler(kind string, seed int64) (Sampler, error) {
	switch SamplerType(kind) {
	case SamplerGrid, "":
		return GridSampler{}, nil
	case SamplerRandom:
		return NewRandomSampler(seed), nil
	default:
		return nil, fmt.Errorf("unknown sampler: %s (must be grid or random)", kind)
	}
}
