package archive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/search"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(id string, mass float64) Record {
	top := models.Stage{
		Engine:   models.Engine{Name: "RL10A-3", Mass: 0.131, VacIsp: 444, AtmIsp: 280, VacThrust: 66.7},
		Count:    1,
		Mass:     mass / 4,
		FuelMass: mass / 8,
		Payload:  10,
		DeltaV:   4000,
	}
	bottom := models.Stage{
		Engine:   models.Engine{Name: "LR79", Mass: 1.0, VacIsp: 282, AtmIsp: 248, VacThrust: 774},
		Count:    3,
		Mass:     mass,
		FuelMass: mass / 2,
		Payload:  mass / 4,
		DeltaV:   5400,
	}
	return Record{
		SearchID:    id,
		Requirement: models.DefaultVehicle(),
		Result: &search.Result{
			Stages:     []models.Stage{top, bottom},
			LaunchMass: mass,
			Fraction:   0.42,
			Samples:    100,
			Feasible:   73,
			Sampler:    "grid",
		},
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func openTestSink(t *testing.T) *GormSink {
	t.Helper()
	sink, err := Open(filepath.Join(t.TempDir(), "archive.db"), 1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })
	return sink
}

func TestIsPostgresDSN(t *testing.T) {
	assert.True(t, IsPostgresDSN("postgres://user:pw@localhost:5432/rocket"))
	assert.True(t, IsPostgresDSN("postgresql://localhost/rocket"))
	assert.True(t, IsPostgresDSN("host=localhost port=5432 dbname=rocket sslmode=disable"))
	assert.False(t, IsPostgresDSN(""))
	assert.False(t, IsPostgresDSN("designs.db"))
	assert.False(t, IsPostgresDSN(MemoryDSN))
}

func TestGormSinkSaveAndGet(t *testing.T) {
	sink := openTestSink(t)
	ctx := context.Background()

	require.NoError(t, sink.Save(ctx, testRecord("search-1", 120.5)))

	d, err := sink.Get(ctx, "search-1")
	require.NoError(t, err)
	assert.Equal(t, "search-1", d.SearchID)
	assert.InDelta(t, 120.5, d.LaunchMass, 1e-9)
	assert.Equal(t, 2, d.StageCount)
	assert.Equal(t, 100, d.Samples)
	assert.Equal(t, 73, d.Feasible)
	assert.Equal(t, "grid", d.Sampler)

	stages, err := d.StageList()
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, "RL10A-3", stages[0].Engine.Name)
	assert.Equal(t, "LR79", stages[1].Engine.Name)
	assert.Equal(t, 3, stages[1].Count)

	vr, err := d.VehicleRequirement()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultVehicle(), vr)
}

func TestGormSinkGetMissing(t *testing.T) {
	sink := openTestSink(t)
	_, err := sink.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormSinkRejectsDuplicateSearchID(t *testing.T) {
	sink := openTestSink(t)
	ctx := context.Background()
	require.NoError(t, sink.Save(ctx, testRecord("search-1", 100)))
	assert.Error(t, sink.Save(ctx, testRecord("search-1", 90)))
}

func TestGormSinkRejectsMissingResult(t *testing.T) {
	sink := openTestSink(t)
	rec := testRecord("search-1", 100)
	rec.Result = nil
	assert.Error(t, sink.Save(context.Background(), rec))
}

func TestGormSinkListLightestFirst(t *testing.T) {
	sink := openTestSink(t)
	ctx := context.Background()
	for i, mass := range []float64{300, 100, 200} {
		require.NoError(t, sink.Save(ctx, testRecord("search-"+string(rune('a'+i)), mass)))
	}

	all, err := sink.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"search-b", "search-c", "search-a"},
		[]string{all[0].SearchID, all[1].SearchID, all[2].SearchID})

	two, err := sink.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestPoints(t *testing.T) {
	points, err := Points(testRecord("search-1", 120.5))
	require.NoError(t, err)
	require.Len(t, points, 3)

	design := influxdb2_write.PointToLineProtocol(points[0], time.Nanosecond)
	assert.True(t, strings.HasPrefix(design, "design,"))
	assert.Contains(t, design, "search_id=search-1")
	assert.Contains(t, design, "sampler=grid")
	assert.Contains(t, design, "launch_mass=120.5")
	assert.Contains(t, design, "samples=100i")

	bottom := influxdb2_write.PointToLineProtocol(points[1], time.Nanosecond)
	assert.Contains(t, bottom, "engine=LR79")
	assert.Contains(t, bottom, "stage=0")
	assert.Contains(t, bottom, "count=3i")

	top := influxdb2_write.PointToLineProtocol(points[2], time.Nanosecond)
	assert.Contains(t, top, "engine=RL10A-3")
	assert.Contains(t, top, "stage=1")
}

func TestInfluxSinkWritesLineProtocol(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
		query  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v2/write" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(body))
		query = r.URL.RawQuery
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "rocketry", "designs")
	defer sink.Close()

	require.NoError(t, sink.Save(context.Background(), testRecord("search-1", 120.5)))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, bodies)
	all := strings.Join(bodies, "\n")
	assert.Contains(t, all, "design,")
	assert.Contains(t, all, "design_stage,")
	assert.Contains(t, query, "bucket=designs")
	assert.Contains(t, query, "org=rocketry")
}

type fakeSink struct {
	saved  []string
	err    error
	closed bool
}

func (f *fakeSink) Save(_ context.Context, rec Record) error {
	f.saved = append(f.saved, rec.SearchID)
	return f.err
}

func (f *fakeSink) Close() error {
	f.closed = true
	return f.err
}

func TestMultiSinkTriesEverySink(t *testing.T) {
	boom := errors.New("boom")
	a := &fakeSink{err: boom}
	b := &fakeSink{}
	multi := MultiSink{a, b}

	err := multi.Save(context.Background(), testRecord("search-1", 1))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"search-1"}, a.saved)
	assert.Equal(t, []string{"search-1"}, b.saved)

	assert.ErrorIs(t, multi.Close(), boom)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}
