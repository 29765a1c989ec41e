package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/search"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPrintsTable(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-vehicle", "../../config/vehicle.yaml",
		"-engines", "../../config/engines.yaml",
		"-samples", "50",
	}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "LR79 x 5:")
	assert.Contains(t, out, "RL10A-3 x 9:")
	assert.Contains(t, out, "Launch mass:")
	// bottom stage is listed first
	assert.Less(t, strings.Index(out, "LR79 x 5"), strings.Index(out, "RL10A-3 x 9"))
}

func TestRunJSON(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-engines", "../../config/engines.yaml",
		"-samples", "50",
		"-json",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var got output
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, models.DefaultVehicle(), got.Vehicle)
	require.Len(t, got.Result.Stages, 2)
	assert.Equal(t, 50, got.Result.Samples)
	assert.InDelta(t, got.Result.Stages[1].Mass, got.Result.LaunchMass, 1e-9)
}

func TestRunRandomSamplerAndErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-engines", "../../config/engines.yaml",
		"-samples", "10",
		"-sampler", "random",
		"-seed", "7",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	code = run(context.Background(), []string{"-engines", "missing.yaml"}, &stdout, &stderr)
	assert.Equal(t, 1, code)

	heavy := filepath.Join(t.TempDir(), "heavy.yaml")
	require.NoError(t, os.WriteFile(heavy, []byte(`
payload: 10
delta_v: 9400
planet: Earth
stages:
  - atm: 1.0
    twr: 500
  - atm: 0.1
    twr: 500
`), 0644))
	stderr.Reset()
	code = run(context.Background(), []string{"-vehicle", heavy, "-engines", "../../config/engines.yaml", "-samples", "10"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "infeasible")

	code = run(context.Background(), []string{"-bogus"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
}

func TestRunRejectsUnknownVehicleEngine(t *testing.T) {
	typo := filepath.Join(t.TempDir(), "typo.yaml")
	require.NoError(t, os.WriteFile(typo, []byte(`
payload: 10
delta_v: 9400
planet: Earth
engines: [LR79, RL10-A3]
stages:
  - atm: 1.0
    twr: 1.2
  - atm: 0.1
    twr: 0.8
`), 0644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-vehicle", typo, "-engines", "../../config/engines.yaml", "-samples", "10"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unknown engines [RL10-A3]")
	assert.Empty(t, stdout.String())
}

func TestRenderResult(t *testing.T) {
	res := &search.Result{
		Stages: []models.Stage{
			{Engine: models.Engine{Name: "RL10A-3"}, Count: 9, Mass: 69.17, FuelMass: 55.24, DeltaV: 6580},
			{Engine: models.Engine{Name: "LR79"}, Count: 5, Mass: 237.65, FuelMass: 155.70, DeltaV: 2820},
		},
		LaunchMass: 237.65,
		Fraction:   0.7,
		Samples:    1000,
		Feasible:   731,
		Sampler:    "grid",
	}
	out := renderResult(models.DefaultVehicle(), res)

	assert.Contains(t, out, "LR79 x 5: 237.65 t")
	assert.Contains(t, out, "RL10A-3 x 9: 69.17 t")
	assert.Contains(t, out, "731 of 1000 (grid)")
	assert.Contains(t, out, "2-stage vehicle")
}
