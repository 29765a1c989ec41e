package designd

import (
	"errors"
	"math"
	"net/http"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/search"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"
	"google.golang.org/grpc/codes"
)

// SolveStageRequest asks for the best engine and count for one stage.
type SolveStageRequest struct {
	Requirement models.StageRequirement `json:"requirement"`
	Engines     []string                `json:"engines,omitempty"`
	Exhaustive  bool                    `json:"exhaustive,omitempty"`
}

// CreateSearchRequest describes a search to start. Exactly one of
// VehicleYAML and Vehicle is expected; VehicleYAML wins when both are set.
type CreateSearchRequest struct {
	SearchID    string                     `json:"search_id,omitempty"`
	VehicleYAML string                     `json:"vehicle_yaml,omitempty"`
	Vehicle     *models.VehicleRequirement `json:"vehicle,omitempty"`
	Engines     []string                   `json:"engines,omitempty"`
	Samples     int                        `json:"samples,omitempty"`
	Sampler     string                     `json:"sampler,omitempty"`
	Seed        int64                      `json:"seed,omitempty"`
	Exhaustive  bool                       `json:"exhaustive,omitempty"`
}

type searchRequest struct {
	SearchID string `json:"search_id"`
}

func httpStatusFor(err error) int {
	switch {
	case errors.Is(err, ErrSearchNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSearchExists), errors.Is(err, ErrSearchTerminal):
		return http.StatusConflict
	case errors.Is(err, ErrSearchIDMissing), errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInfeasible):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func grpcCodeFor(err error) codes.Code {
	switch {
	case errors.Is(err, ErrSearchNotFound):
		return codes.NotFound
	case errors.Is(err, ErrSearchExists):
		return codes.AlreadyExists
	case errors.Is(err, ErrSearchTerminal), errors.Is(err, models.ErrInfeasible):
		return codes.FailedPrecondition
	case errors.Is(err, ErrSearchIDMissing), errors.Is(err, models.ErrInvalidInput):
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

func convertStageToJSON(st models.Stage) map[string]any {
	return map[string]any{
		"engine":    st.Engine.Name,
		"count":     st.Count,
		"mass":      st.Mass,
		"fuel_mass": st.FuelMass,
		"payload":   st.Payload,
		"delta_v":   st.DeltaV,
	}
}

func convertResultToJSON(res *search.Result) map[string]any {
	stages := make([]map[string]any, 0, len(res.Stages))
	for _, st := range res.Stages {
		stages = append(stages, convertStageToJSON(st))
	}
	return map[string]any{
		"launch_mass": res.LaunchMass,
		"fraction":    res.Fraction,
		"samples":     res.Samples,
		"feasible":    res.Feasible,
		"sampler":     res.Sampler,
		"stages":      stages,
	}
}

func convertSearchToJSON(rec SearchRecord) map[string]any {
	progress := map[string]any{
		"completed": rec.Completed,
		"samples":   rec.Input.Samples,
	}
	if !math.IsInf(rec.BestMass, 0) && !math.IsNaN(rec.BestMass) {
		progress["best_mass"] = rec.BestMass
	}

	out := map[string]any{
		"id":                 rec.ID,
		"status":             string(rec.Status),
		"created_at_unix_ms": rec.CreatedAtUnixMs,
		"started_at_unix_ms": rec.StartedAtUnixMs,
		"ended_at_unix_ms":   rec.EndedAtUnixMs,
		"error":              rec.Error,
		"progress":           progress,
	}
	if rec.Result != nil {
		out["result"] = convertResultToJSON(rec.Result)
	}
	return out
}
