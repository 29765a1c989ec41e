package search

import (
	"fmt"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/stage"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/utils"
)

// ValidateVehicle rejects vehicle requirements before any search starts.
func ValidateVehicle(vr models.VehicleRequirement) error {
	if vr.StageCount <= 0 {
		return models.InvalidInputf("stage count must be positive, got %d", vr.StageCount)
	}
	if len(vr.AtmFractions) != vr.StageCount {
		return models.InvalidInputf("expected %d atmosphere fractions, got %d", vr.StageCount, len(vr.AtmFractions))
	}
	if len(vr.TWRs) != vr.StageCount {
		return models.InvalidInputf("expected %d twr values, got %d", vr.StageCount, len(vr.TWRs))
	}
	if !(vr.Gravity > 0) {
		return models.InvalidInputf("gravity must be positive, got %v", vr.Gravity)
	}
	if vr.DeltaV < 0 {
		return models.InvalidInputf("delta-v cannot be negative, got %v", vr.DeltaV)
	}
	if vr.Payload < 0 {
		return models.InvalidInputf("payload cannot be negative, got %v", vr.Payload)
	}
	if vr.FuelRatio < 0 {
		return models.InvalidInputf("fuel ratio cannot be negative, got %v", vr.FuelRatio)
	}
	for i, twr := range vr.TWRs {
		if twr < 0 {
			return models.InvalidInputf("stage %d: twr cannot be negative, got %v", i, twr)
		}
	}
	return nil
}

// SearchOnce designs a vehicle for one split fraction.
// Every stage but the last takes frac of the delta-v still unassigned; the
// last takes the rest. Stages are returned topmost first.
func SearchOnce(vr models.VehicleRequirement, catalog models.Catalog, frac float64, opts stage.Options) ([]models.Stage, error) {
	if err := ValidateVehicle(vr); err != nil {
		return nil, err
	}
	return searchOnce(vr.Clone(), catalog, frac, opts)
}

// searchOnce consumes args; callers pass a clone.
func searchOnce(args models.VehicleRequirement, catalog models.Catalog, frac float64, opts stage.Options) ([]models.Stage, error) {
	stages := make([]models.Stage, 0, args.StageCount)

	for args.StageCount > 1 {
		req := project(args)
		req.DeltaV = args.DeltaV * frac

		st, err := stage.Solve(req, catalog, opts)
		if err != nil {
			return nil, fmt.Errorf("stage %d of %d: %w", len(stages)+1, cap(stages), err)
		}
		stages = append(stages, st)

		args.DeltaV -= req.DeltaV
		args.Payload = st.Mass
		args.AtmFractions = args.AtmFractions[:len(args.AtmFractions)-1]
		args.TWRs = args.TWRs[:len(args.TWRs)-1]
		args.StageCount--
	}

	st, err := stage.Solve(project(args), catalog, opts)
	if err != nil {
		return nil, fmt.Errorf("stage %d of %d: %w", len(stages)+1, cap(stages), err)
	}
	return append(stages, st), nil
}

func project(args models.VehicleRequirement) models.StageRequirement {
	req := args.Project()
	req.AtmFraction = utils.ClampFloat64(req.AtmFraction, 0, 1)
	return req
}
