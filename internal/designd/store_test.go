package designd

import (
	"errors"
	"math"
	"testing"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/search"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"
)

func testInput() SearchInput {
	return SearchInput{Vehicle: models.DefaultVehicle(), Samples: 10, Sampler: "grid"}
}

func TestSearchStoreCreateAndGet(t *testing.T) {
	store := NewSearchStore()

	rec, err := store.Create("", testInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("expected generated search id")
	}
	if rec.Status != StatusPending {
		t.Fatalf("expected status pending, got %v", rec.Status)
	}
	if rec.CreatedAtUnixMs == 0 {
		t.Fatalf("expected created_at_unix_ms to be set")
	}
	if !math.IsInf(rec.BestMass, 1) {
		t.Fatalf("expected best mass +Inf before any sample, got %v", rec.BestMass)
	}

	got, ok := store.Get(rec.ID)
	if !ok {
		t.Fatalf("expected search to exist")
	}
	if got.ID != rec.ID {
		t.Fatalf("expected same search id")
	}
}

func TestSearchStoreCreateDuplicate(t *testing.T) {
	store := NewSearchStore()
	if _, err := store.Create("search-1", testInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := store.Create("search-1", testInput())
	if !errors.Is(err, ErrSearchExists) {
		t.Fatalf("expected ErrSearchExists, got %v", err)
	}
}

func TestSearchStoreGetReturnsCopy(t *testing.T) {
	store := NewSearchStore()
	rec, _ := store.Create("search-1", testInput())
	rec.Status = StatusFailed

	got, _ := store.Get("search-1")
	if got.Status != StatusPending {
		t.Fatalf("store record changed through returned copy: %v", got.Status)
	}
}

func TestSearchStoreSetStatusSetsTimestamps(t *testing.T) {
	store := NewSearchStore()
	if _, err := store.Create("search-1", testInput()); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	rec, err := store.SetStatus("search-1", StatusRunning, "")
	if err != nil {
		t.Fatalf("SetStatus running error: %v", err)
	}
	if rec.StartedAtUnixMs == 0 {
		t.Fatalf("expected started_at_unix_ms set")
	}
	if rec.EndedAtUnixMs != 0 {
		t.Fatalf("did not expect ended_at_unix_ms set for running")
	}

	rec, err = store.SetStatus("search-1", StatusFailed, "boom")
	if err != nil {
		t.Fatalf("SetStatus failed error: %v", err)
	}
	if rec.EndedAtUnixMs == 0 {
		t.Fatalf("expected ended_at_unix_ms set")
	}
	if rec.Error != "boom" {
		t.Fatalf("expected error message, got %q", rec.Error)
	}

	if _, err := store.SetStatus("missing", StatusRunning, ""); !errors.Is(err, ErrSearchNotFound) {
		t.Fatalf("expected ErrSearchNotFound, got %v", err)
	}
}

func TestSearchStoreFinishOnlyFromRunning(t *testing.T) {
	store := NewSearchStore()
	_, _ = store.Create("search-1", testInput())
	res := &search.Result{LaunchMass: 42}

	if _, ok := store.Finish("search-1", StatusCompleted, res, ""); ok {
		t.Fatalf("Finish should not apply to a pending search")
	}

	_, _ = store.SetStatus("search-1", StatusRunning, "")
	rec, ok := store.Finish("search-1", StatusCompleted, res, "")
	if !ok {
		t.Fatalf("Finish should apply to a running search")
	}
	if rec.Status != StatusCompleted || rec.Result != res || rec.BestMass != 42 {
		t.Fatalf("unexpected record after Finish: %+v", rec)
	}

	if _, ok := store.Finish("search-1", StatusFailed, nil, "late"); ok {
		t.Fatalf("Finish should not apply twice")
	}
}

func TestSearchStoreCancel(t *testing.T) {
	store := NewSearchStore()
	_, _ = store.Create("search-1", testInput())
	_, _ = store.SetStatus("search-1", StatusRunning, "")

	rec, err := store.Cancel("search-1")
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if rec.Status != StatusCancelled || rec.EndedAtUnixMs == 0 {
		t.Fatalf("unexpected record after Cancel: %+v", rec)
	}
	if _, ok := store.Finish("search-1", StatusCompleted, &search.Result{LaunchMass: 1}, ""); ok {
		t.Fatalf("Finish should not apply after Cancel")
	}

	if _, err := store.Cancel("missing"); !errors.Is(err, ErrSearchNotFound) {
		t.Fatalf("expected ErrSearchNotFound, got %v", err)
	}
}

func TestSearchStoreCancelLeavesCompletedSearch(t *testing.T) {
	store := NewSearchStore()
	_, _ = store.Create("search-1", testInput())
	_, _ = store.SetStatus("search-1", StatusRunning, "")
	res := &search.Result{LaunchMass: 42}
	if _, ok := store.Finish("search-1", StatusCompleted, res, ""); !ok {
		t.Fatalf("Finish should apply to a running search")
	}

	if _, err := store.Cancel("search-1"); !errors.Is(err, ErrSearchTerminal) {
		t.Fatalf("expected ErrSearchTerminal, got %v", err)
	}
	rec, _ := store.Get("search-1")
	if rec.Status != StatusCompleted || rec.Result != res {
		t.Fatalf("completed search was modified: %+v", rec)
	}
}

func TestSearchStoreSetProgress(t *testing.T) {
	store := NewSearchStore()
	_, _ = store.Create("search-1", testInput())
	store.SetProgress("search-1", 7, 123.4)
	store.SetProgress("missing", 1, 1)

	rec, _ := store.Get("search-1")
	if rec.Completed != 7 || rec.BestMass != 123.4 {
		t.Fatalf("unexpected progress: %d %v", rec.Completed, rec.BestMass)
	}
}

func TestSearchStoreListLimitAndFilter(t *testing.T) {
	store := NewSearchStore()
	for i := 0; i < 10; i++ {
		if _, err := store.Create("", testInput()); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
	running, _ := store.Create("search-running", testInput())
	_, _ = store.SetStatus(running.ID, StatusRunning, "")

	if recs := store.List(3, ""); len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs := store.List(0, ""); len(recs) != 11 {
		t.Fatalf("expected 11 records, got %d", len(recs))
	}
	recs := store.List(100, StatusRunning)
	if len(recs) != 1 || recs[0].ID != "search-running" {
		t.Fatalf("expected only the running search, got %+v", recs)
	}
}

func TestParseSearchStatus(t *testing.T) {
	if ParseSearchStatus("completed") != StatusCompleted {
		t.Fatalf("expected completed")
	}
	if ParseSearchStatus("bogus") != "" {
		t.Fatalf("expected empty status for unknown name")
	}
	if !StatusCancelled.Terminal() || StatusRunning.Terminal() {
		t.Fatalf("unexpected Terminal results")
	}
}
