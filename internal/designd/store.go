package designd

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/search"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/utils"
)

type SearchStatus string

const (
	StatusPending   SearchStatus = "pending"
	StatusRunning   SearchStatus = "running"
	StatusCompleted SearchStatus = "completed"
	StatusFailed    SearchStatus = "failed"
	StatusCancelled SearchStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s SearchStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ParseSearchStatus maps a status name to a SearchStatus; unknown names return "".
func ParseSearchStatus(name string) SearchStatus {
	switch s := SearchStatus(name); s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return s
	}
	return ""
}

var (
	ErrSearchNotFound  = errors.New("search not found")
	ErrSearchExists    = errors.New("search already exists")
	ErrSearchTerminal  = errors.New("search is terminal")
	ErrSearchIDMissing = errors.New("search_id is required")
)

// SearchInput is everything needed to run one search.
type SearchInput struct {
	Vehicle    models.VehicleRequirement `json:"vehicle"`
	Engines    []string                  `json:"engines,omitempty"`
	Samples    int                       `json:"samples"`
	Sampler    string                    `json:"sampler"`
	Seed       int64                     `json:"seed,omitempty"`
	Exhaustive bool                      `json:"exhaustive,omitempty"`
}

// SearchRecord is a snapshot of one search. The store hands out copies.
type SearchRecord struct {
	ID     string
	Status SearchStatus
	Error  string
	Input  SearchInput
	Result *search.Result

	Completed int
	BestMass  float64

	CreatedAtUnixMs int64
	StartedAtUnixMs int64
	EndedAtUnixMs   int64
}

// SearchStore keeps search records in memory.
type SearchStore struct {
	mu       sync.RWMutex
	searches map[string]*SearchRecord
}

func NewSearchStore() *SearchStore {
	return &SearchStore{
		searches: make(map[string]*SearchRecord),
	}
}

func nowUnixMs() int64 {
	return time.Now().UTC().UnixMilli()
}

func (s *SearchStore) Create(searchID string, input SearchInput) (SearchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if searchID == "" {
		searchID = utils.GenerateSearchID()
	}
	if _, exists := s.searches[searchID]; exists {
		return SearchRecord{}, fmt.Errorf("%w: %s", ErrSearchExists, searchID)
	}

	rec := &SearchRecord{
		ID:              searchID,
		Status:          StatusPending,
		Input:           input,
		BestMass:        math.Inf(1),
		CreatedAtUnixMs: nowUnixMs(),
	}
	s.searches[searchID] = rec
	return *rec, nil
}

func (s *SearchStore) Get(searchID string) (SearchRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.searches[searchID]
	if !ok {
		return SearchRecord{}, false
	}
	return *rec, true
}

// List returns up to limit records, oldest first. An empty status matches all.
func (s *SearchStore) List(limit int, status SearchStatus) []SearchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	out := make([]SearchRecord, 0, min(limit, len(s.searches)))
	for _, rec := range s.searches {
		if status != "" && rec.Status != status {
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtUnixMs != out[j].CreatedAtUnixMs {
			return out[i].CreatedAtUnixMs < out[j].CreatedAtUnixMs
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *SearchStore) SetStatus(searchID string, status SearchStatus, errMsg string) (SearchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.searches[searchID]
	if !ok {
		return SearchRecord{}, fmt.Errorf("%w: %s", ErrSearchNotFound, searchID)
	}
	setStatus(rec, status, errMsg)
	return *rec, nil
}

func setStatus(rec *SearchRecord, status SearchStatus, errMsg string) {
	rec.Status = status
	if errMsg != "" {
		rec.Error = errMsg
	}

	switch status {
	case StatusRunning:
		if rec.StartedAtUnixMs == 0 {
			rec.StartedAtUnixMs = nowUnixMs()
		}
	case StatusCompleted, StatusFailed, StatusCancelled:
		rec.EndedAtUnixMs = nowUnixMs()
	}
}

// Finish moves a running search to a terminal status, attaching result.
// It reports false when the search was no longer running, e.g. already stopped.
func (s *SearchStore) Finish(searchID string, status SearchStatus, result *search.Result, errMsg string) (SearchRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.searches[searchID]
	if !ok || rec.Status != StatusRunning {
		return SearchRecord{}, false
	}
	if result != nil {
		rec.Result = result
		rec.BestMass = result.LaunchMass
	}
	setStatus(rec, status, errMsg)
	return *rec, true
}

// Cancel marks a pending or running search cancelled.
// A search that already reached a terminal status is left untouched.
func (s *SearchStore) Cancel(searchID string) (SearchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.searches[searchID]
	if !ok {
		return SearchRecord{}, fmt.Errorf("%w: %s", ErrSearchNotFound, searchID)
	}
	if rec.Status.Terminal() {
		return SearchRecord{}, fmt.Errorf("%w: %s", ErrSearchTerminal, searchID)
	}
	setStatus(rec, StatusCancelled, "")
	return *rec, nil
}

func (s *SearchStore) SetProgress(searchID string, completed int, bestMass float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.searches[searchID]
	if !ok {
		return
	}
	rec.Completed = completed
	rec.BestMass = bestMass
}
