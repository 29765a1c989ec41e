package designd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/archive"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/search"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/stage"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/config"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/logger"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"
)

const archiveTimeout = 10 * time.Second

// SearchExecutor runs searches asynchronously with per-search cancellation.
type SearchExecutor struct {
	store    *SearchStore
	catalog  models.Catalog
	defaults config.Optimizer
	sink     archive.Sink

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewSearchExecutor creates an executor over catalog. A nil opts uses config.DefaultOptimizer.
func NewSearchExecutor(store *SearchStore, catalog models.Catalog, opts *config.Optimizer) *SearchExecutor {
	if opts == nil {
		opts = config.DefaultOptimizer()
	}
	return &SearchExecutor{
		store:    store,
		catalog:  catalog,
		defaults: *opts,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// WithSink archives every completed search to sink.
func (e *SearchExecutor) WithSink(sink archive.Sink) *SearchExecutor {
	e.sink = sink
	return e
}

func (e *SearchExecutor) Catalog() models.Catalog {
	return e.catalog
}

func (e *SearchExecutor) stageOptions(exhaustive bool) stage.Options {
	return stage.Options{
		Exhaustive:     exhaustive || e.defaults.Exhaustive,
		MaxEngineCount: e.defaults.MaxEngineCount,
	}
}

// Solve sizes a single stage synchronously.
func (e *SearchExecutor) Solve(req SolveStageRequest) (models.Stage, error) {
	catalog, err := e.catalog.SelectKnown(req.Engines)
	if err != nil {
		return models.Stage{}, err
	}
	return stage.Solve(req.Requirement, catalog, e.stageOptions(req.Exhaustive))
}

// BuildInput resolves a create request into a validated SearchInput,
// filling unset tuning from the executor defaults.
func (e *SearchExecutor) BuildInput(req CreateSearchRequest) (SearchInput, error) {
	in := SearchInput{
		Engines:    req.Engines,
		Samples:    req.Samples,
		Sampler:    req.Sampler,
		Seed:       req.Seed,
		Exhaustive: req.Exhaustive,
	}

	switch {
	case req.VehicleYAML != "":
		v, err := config.ParseVehicleYAMLString(req.VehicleYAML)
		if err != nil {
			return SearchInput{}, models.InvalidInputf("vehicle_yaml: %v", err)
		}
		in.Vehicle = v.Requirement()
		if len(in.Engines) == 0 {
			in.Engines = v.Engines
		}
	case req.Vehicle != nil:
		in.Vehicle = req.Vehicle.Clone()
	default:
		return SearchInput{}, models.InvalidInputf("vehicle or vehicle_yaml is required")
	}

	if in.Samples == 0 {
		in.Samples = e.defaults.Samples
	}
	if in.Sampler == "" {
		in.Sampler = e.defaults.Sampler
	}
	if in.Seed == 0 {
		in.Seed = e.defaults.Seed
	}

	if in.Samples <= 0 {
		return SearchInput{}, models.InvalidInputf("samples must be positive, got %d", in.Samples)
	}
	if _, err := search.NewSampler(in.Sampler, in.Seed); err != nil {
		return SearchInput{}, models.InvalidInputf("%v", err)
	}
	if err := search.ValidateVehicle(in.Vehicle); err != nil {
		return SearchInput{}, err
	}
	if _, err := e.catalog.SelectKnown(in.Engines); err != nil {
		return SearchInput{}, err
	}
	return in, nil
}

// Submit validates, records and starts a search.
func (e *SearchExecutor) Submit(req CreateSearchRequest) (SearchRecord, error) {
	in, err := e.BuildInput(req)
	if err != nil {
		return SearchRecord{}, err
	}
	rec, err := e.store.Create(req.SearchID, in)
	if err != nil {
		return SearchRecord{}, err
	}
	return e.Start(rec.ID)
}

// Start begins executing a search asynchronously.
// Returns the updated record (running) or an error.
func (e *SearchExecutor) Start(searchID string) (SearchRecord, error) {
	if searchID == "" {
		return SearchRecord{}, ErrSearchIDMissing
	}

	rec, ok := e.store.Get(searchID)
	if !ok {
		return SearchRecord{}, fmt.Errorf("%w: %s", ErrSearchNotFound, searchID)
	}
	if rec.Status == StatusRunning {
		return rec, nil
	}
	if rec.Status.Terminal() {
		return SearchRecord{}, fmt.Errorf("%w: %s", ErrSearchTerminal, searchID)
	}

	updated, err := e.store.SetStatus(searchID, StatusRunning, "")
	if err != nil {
		return SearchRecord{}, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.mu.Lock()
	if old, exists := e.cancels[searchID]; exists {
		old()
	}
	e.cancels[searchID] = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go e.runSearch(ctx, updated)
	return updated, nil
}

// Stop cancels a running search and marks it cancelled.
func (e *SearchExecutor) Stop(searchID string) (SearchRecord, error) {
	if searchID == "" {
		return SearchRecord{}, ErrSearchIDMissing
	}

	// Mark first so a concurrent Finish cannot complete and archive it.
	rec, err := e.store.Cancel(searchID)
	if err != nil {
		return SearchRecord{}, err
	}

	e.mu.Lock()
	cancel, ok := e.cancels[searchID]
	e.mu.Unlock()
	if ok {
		cancel()
	}
	return rec, nil
}

// StopAll cancels every running search.
func (e *SearchExecutor) StopAll() {
	e.mu.Lock()
	ids := make([]string, 0, len(e.cancels))
	for id := range e.cancels {
		ids = append(ids, id)
	}
	e.mu.Unlock()

	for _, id := range ids {
		if _, err := e.Stop(id); err != nil && !errors.Is(err, ErrSearchTerminal) {
			logger.Warn("failed to stop search", "search_id", id, "error", err)
		}
	}
}

// Wait blocks until every started search has returned.
func (e *SearchExecutor) Wait() {
	e.wg.Wait()
}

func (e *SearchExecutor) cleanup(searchID string) {
	e.mu.Lock()
	if cancel, ok := e.cancels[searchID]; ok {
		cancel()
		delete(e.cancels, searchID)
	}
	e.mu.Unlock()
}

func (e *SearchExecutor) runSearch(ctx context.Context, rec SearchRecord) {
	defer e.wg.Done()
	defer e.cleanup(rec.ID)

	log := logger.ForSearch(rec.ID)
	in := rec.Input

	sampler, err := search.NewSampler(in.Sampler, in.Seed)
	if err != nil {
		e.fail(rec.ID, fmt.Sprintf("invalid sampler: %v", err))
		return
	}
	catalog, err := e.catalog.SelectKnown(in.Engines)
	if err != nil {
		e.fail(rec.ID, err.Error())
		return
	}

	searcher := search.NewSearcher(sampler, e.defaults.Workers).
		WithStageOptions(e.stageOptions(in.Exhaustive)).
		WithProgressReporter(func(completed int, bestMass float64) {
			e.store.SetProgress(rec.ID, completed, bestMass)
		})

	log.Info("starting search",
		"samples", in.Samples,
		"sampler", sampler.Name(),
		"stages", in.Vehicle.StageCount,
		"engines", catalog.Len(),
		"workers", searcher.Workers(),
	)
	result, err := searcher.SearchBest(ctx, in.Vehicle, catalog, in.Samples)
	if err != nil {
		if ctx.Err() != nil {
			log.Info("search cancelled")
			return
		}
		log.Warn("search failed", "error", err)
		e.fail(rec.ID, err.Error())
		return
	}

	done, ok := e.store.Finish(rec.ID, StatusCompleted, result, "")
	if !ok {
		log.Info("search finished after it was stopped; result dropped")
		return
	}
	log.Info("search completed",
		"launch_mass", result.LaunchMass,
		"fraction", result.Fraction,
		"feasible", result.Feasible,
	)

	if e.sink == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	err = e.sink.Save(saveCtx, archive.Record{
		SearchID:    done.ID,
		Requirement: in.Vehicle,
		Result:      result,
		CreatedAt:   time.UnixMilli(done.EndedAtUnixMs).UTC(),
	})
	if err != nil {
		log.Error("failed to archive design", "error", err)
	}
}

func (e *SearchExecutor) fail(searchID, msg string) {
	if _, ok := e.store.Finish(searchID, StatusFailed, nil, msg); !ok {
		logger.Debug("search already terminal", "search_id", searchID)
	}
}
