package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/stage"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/logger"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"
)

// DefaultSampleCount is the number of split fractions evaluated when none is configured.
const DefaultSampleCount = 1000

// ProgressReporter is called as samples complete with the number done so far
// and the lightest launch mass seen so far (+Inf while nothing is feasible).
type ProgressReporter func(completed int, bestMass float64)

// Result is the outcome of SearchBest.
type Result struct {
	Stages     []models.Stage `json:"stages"`
	LaunchMass float64        `json:"launch_mass"`
	Fraction   float64        `json:"fraction"`
	Samples    int            `json:"samples"`
	Feasible   int            `json:"feasible"`
	Sampler    string         `json:"sampler"`
}

// Searcher runs split-fraction sweeps over a worker pool.
type Searcher struct {
	sampler   Sampler
	workers   int
	stageOpts stage.Options
	progress  ProgressReporter
}

// NewSearcher creates a searcher. workers <= 0 uses one worker per CPU.
func NewSearcher(sampler Sampler, workers int) *Searcher {
	if sampler == nil {
		sampler = GridSampler{}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Searcher{
		sampler: sampler,
		workers: workers,
	}
}

// WithStageOptions sets the options passed to every stage solve
func (s *Searcher) WithStageOptions(opts stage.Options) *Searcher {
	s.stageOpts = opts
	return s
}

// WithProgressReporter sets a callback invoked after each sample
func (s *Searcher) WithProgressReporter(fn ProgressReporter) *Searcher {
	s.progress = fn
	return s
}

// Workers returns the size of the worker pool.
func (s *Searcher) Workers() int {
	return s.workers
}

type trial struct {
	stages []models.Stage
	err    error
}

// SearchBest evaluates sampleCount split fractions and returns the lightest vehicle.
// Samples whose stages cannot be solved are skipped; if none succeeds the
// error wraps models.ErrInfeasible. Ties keep the earliest sample.
func (s *Searcher) SearchBest(ctx context.Context, vr models.VehicleRequirement, catalog models.Catalog, sampleCount int) (*Result, error) {
	if sampleCount <= 0 {
		return nil, models.InvalidInputf("sample count must be positive, got %d", sampleCount)
	}
	if err := ValidateVehicle(vr); err != nil {
		return nil, err
	}

	started := time.Now()
	metrics := getMetrics()
	fractions := s.sampler.Fractions(sampleCount)
	trials := make([]trial, len(fractions))

	jobs := make(chan int)
	var wg sync.WaitGroup

	var mu sync.Mutex
	completed := 0
	bestSoFar := math.Inf(1)

	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				stages, err := searchOnce(vr.Clone(), catalog, fractions[idx], s.stageOpts)
				trials[idx] = trial{stages: stages, err: err}

				if s.progress == nil {
					continue
				}
				mu.Lock()
				completed++
				if err == nil {
					bestSoFar = math.Min(bestSoFar, models.LaunchMass(stages))
				}
				s.progress(completed, bestSoFar)
				mu.Unlock()
			}
		}()
	}

dispatch:
	for idx := range fractions {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		metrics.recordSearch(ctx, "cancelled", s.sampler.Name(), time.Since(started), 0)
		return nil, err
	}

	result := &Result{
		LaunchMass: math.Inf(1),
		Samples:    len(trials),
		Sampler:    s.sampler.Name(),
	}
	var lastErr error
	for idx, t := range trials {
		if t.err != nil {
			if !errors.Is(t.err, models.ErrInfeasible) {
				return nil, t.err
			}
			lastErr = t.err
			continue
		}
		result.Feasible++
		if mass := models.LaunchMass(t.stages); mass < result.LaunchMass {
			result.LaunchMass = mass
			result.Stages = t.stages
			result.Fraction = fractions[idx]
		}
	}
	metrics.recordSamples(ctx, result.Feasible, result.Samples-result.Feasible)

	if result.Stages == nil {
		metrics.recordSearch(ctx, "infeasible", s.sampler.Name(), time.Since(started), 0)
		logger.Debug("search found no feasible vehicle", "samples", result.Samples, "sampler", result.Sampler)
		return nil, fmt.Errorf("all %d samples infeasible: %w", result.Samples, lastErr)
	}

	metrics.recordSearch(ctx, "ok", s.sampler.Name(), time.Since(started), result.LaunchMass)
	logger.Debug("search completed",
		"samples", result.Samples,
		"feasible", result.Feasible,
		"fraction", result.Fraction,
		"launch_mass", result.LaunchMass,
		"elapsed", time.Since(started),
	)
	return result, nil
}
