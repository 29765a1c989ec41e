package stage

import (
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/utils"
)

// Options tunes the count search.
type Options struct {
	// Exhaustive evaluates every engine count instead of stopping at the first feasible one.
	Exhaustive bool
	// MaxEngineCount caps the cluster size; zero means models.MaxEngineCount.
	MaxEngineCount int
}

func (o Options) maxCount() int {
	if o.MaxEngineCount <= 0 || o.MaxEngineCount > models.MaxEngineCount {
		return models.MaxEngineCount
	}
	return o.MaxEngineCount
}

// Candidate is the sizing of one engine at one count.
type Candidate struct {
	Count     int
	FuelMass  float64
	TotalMass float64
	TWR       float64
	BurnTime  float64
	Feasible  bool
}

// Validate rejects requirements no solve could make sense of.
func Validate(req models.StageRequirement) error {
	switch {
	case !(req.Gravity > 0):
		return models.InvalidInputf("gravity must be positive, got %v", req.Gravity)
	case req.DeltaV < 0 || math.IsNaN(req.DeltaV):
		return models.InvalidInputf("delta-v cannot be negative, got %v", req.DeltaV)
	case req.Payload < 0 || math.IsNaN(req.Payload):
		return models.InvalidInputf("payload cannot be negative, got %v", req.Payload)
	case req.TWR < 0 || math.IsNaN(req.TWR):
		return models.InvalidInputf("twr cannot be negative, got %v", req.TWR)
	case req.FuelRatio < 0 || math.IsNaN(req.FuelRatio):
		return models.InvalidInputf("fuel ratio cannot be negative, got %v", req.FuelRatio)
	}
	return nil
}

// Size computes propellant and total mass for count engines of e.
// ok is false when the rocket equation has no positive solution.
func Size(e models.Engine, count int, req models.StageRequirement) (Candidate, bool) {
	isp := e.Isp(req.AtmFraction)
	if !(isp > 0) {
		return Candidate{}, false
	}
	r := math.Exp(req.DeltaV / (isp * models.StandardGravity))
	den := req.FuelRatio + 1 - r*req.FuelRatio
	if !(den > 0) || !utils.IsFinite(r) {
		return Candidate{}, false
	}

	payload := e.Mass*float64(count) + req.Payload
	fuel := (r - 1) * payload / den
	total := (req.FuelRatio+1)*fuel + payload
	if !utils.IsFinite(total) {
		return Candidate{}, false
	}

	c := Candidate{
		Count:     count,
		FuelMass:  fuel,
		TotalMass: total,
		TWR:       float64(count) * e.Thrust(req.AtmFraction) / (total * req.Gravity),
	}
	if flow := float64(count) * e.Consumption(req.AtmFraction); flow > 0 {
		c.BurnTime = fuel / flow
	} else {
		c.BurnTime = math.Inf(1)
	}
	c.Feasible = c.TWR >= req.TWR && (!e.HasBurnTimeLimit() || c.BurnTime <= e.BurnTime)
	return c, true
}

// BestForEngine returns the chosen count for a single engine.
func BestForEngine(e models.Engine, req models.StageRequirement, opts Options) (Candidate, bool) {
	var best Candidate
	found := false
	for i := 1; i <= opts.maxCount(); i++ {
		c, ok := Size(e, i, req)
		if !ok {
			// The denominator does not depend on the count.
			return Candidate{}, false
		}
		if !c.Feasible {
			continue
		}
		if !found || c.TotalMass < best.TotalMass {
			best = c
			found = true
		}
		if !opts.Exhaustive {
			break
		}
	}
	return best, found
}

// Solve returns the lightest feasible stage for req drawn from catalog.
// Ties keep the engine that appears first in the catalog.
func Solve(req models.StageRequirement, catalog models.Catalog, opts Options) (models.Stage, error) {
	if err := Validate(req); err != nil {
		return models.Stage{}, err
	}
	if catalog.Len() == 0 {
		return models.Stage{}, models.ErrEmptyCatalog
	}

	var best models.Stage
	found := false
	for i := 0; i < catalog.Len(); i++ {
		e := catalog.At(i)
		c, ok := BestForEngine(e, req, opts)
		if !ok {
			continue
		}
		if !found || c.TotalMass < best.Mass {
			best = models.Stage{
				Engine:   e,
				Count:    c.Count,
				Mass:     c.TotalMass,
				FuelMass: c.FuelMass,
				Payload:  req.Payload,
				DeltaV:   req.DeltaV,
			}
			found = true
		}
	}

	if !found {
		return models.Stage{}, fmt.Errorf("%w: %d engines, delta-v %.1f, twr %.2f", models.ErrInfeasible, catalog.Len(), req.DeltaV, req.TWR)
	}
	return best, nil
}
