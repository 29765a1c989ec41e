package models

import (
	"math"
	"slices"
	"strings"
)

// StandardGravity converts specific impulse (s) into effective exhaust velocity (m/s).
const StandardGravity = 9.81

// MaxEngineCount is the largest engine cluster a single stage may carry.
const MaxEngineCount = 9

// Engine is an immutable catalog record.
// Masses are in tonnes and thrust in kN, so thrust/(mass*gravity) is a TWR.
type Engine struct {
	Name      string   `json:"name" yaml:"name"`
	Mass      float64  `json:"mass" yaml:"mass"`
	VacIsp    float64  `json:"vac_isp" yaml:"vac_isp"`
	AtmIsp    float64  `json:"atm_isp" yaml:"atm_isp"`
	VacThrust float64  `json:"vac_thrust" yaml:"vac_thrust"`
	// AtmThrust is the sea-level thrust. Nil means thrust scales with isp.
	AtmThrust *float64 `json:"atm_thrust,omitempty" yaml:"atm_thrust,omitempty"`
	// BurnTime is the rated burn time in seconds. Zero or less means unlimited.
	BurnTime  float64  `json:"burn_time,omitempty" yaml:"burn_time,omitempty"`
}

// Isp interpolates specific impulse between vacuum (atm=0) and sea level (atm=1).
func (e Engine) Isp(atm float64) float64 {
	return e.VacIsp + atm*(e.AtmIsp-e.VacIsp)
}

// Thrust interpolates thrust between vacuum (atm=0) and sea level (atm=1).
func (e Engine) Thrust(atm float64) float64 {
	if e.AtmThrust == nil {
		if e.VacIsp == 0 {
			return 0
		}
		return e.VacThrust * e.Isp(atm) / e.VacIsp
	}
	return e.VacThrust + atm*(*e.AtmThrust-e.VacThrust)
}

// Float64 returns a pointer to v, for optional engine fields.
func Float64(v float64) *float64 {
	return &v
}

// Consumption returns the propellant mass flow of one engine at the given pressure.
func (e Engine) Consumption(atm float64) float64 {
	isp := e.Isp(atm)
	if isp <= 0 {
		return math.Inf(1)
	}
	return e.Thrust(atm) / (isp * StandardGravity)
}

// HasBurnTimeLimit reports whether the engine carries a rated burn time.
func (e Engine) HasBurnTimeLimit() bool {
	return e.BurnTime > 0
}

// Catalog is an ordered, read-only set of engines.
// Callers share it freely; nothing in the solver path mutates it.
type Catalog struct {
	engines []Engine
}

// NewCatalog copies engines into a new catalog.
func NewCatalog(engines []Engine) Catalog {
	return Catalog{engines: slices.Clone(engines)}
}

// Len returns the number of engines.
func (c Catalog) Len() int {
	return len(c.engines)
}

// Engines returns a copy of the catalog contents.
func (c Catalog) Engines() []Engine {
	return slices.Clone(c.engines)
}

// At returns the i-th engine.
func (c Catalog) At(i int) Engine {
	return c.engines[i]
}

// Find looks an engine up by name.
func (c Catalog) Find(name string) (Engine, bool) {
	for _, e := range c.engines {
		if e.Name == name {
			return e, true
		}
	}
	return Engine{}, false
}

// Select returns the subset of engines whose names are listed, keeping catalog order.
// An empty name list selects everything.
func (c Catalog) Select(names []string) Catalog {
	if len(names) == 0 {
		return c
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	out := make([]Engine, 0, len(names))
	for _, e := range c.engines {
		if want[e.Name] {
			out = append(out, e)
		}
	}
	return Catalog{engines: out}
}

// SelectKnown is Select, but names missing from the catalog are an ErrInvalidInput.
func (c Catalog) SelectKnown(names []string) (Catalog, error) {
	var unknown []string
	for _, n := range names {
		if _, ok := c.Find(n); !ok {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) > 0 {
		return Catalog{}, InvalidInputf("unknown engines %v", unknown)
	}
	return c.Select(names), nil
}

// SortedByName returns a copy ordered by engine name.
func (c Catalog) SortedByName() Catalog {
	out := slices.Clone(c.engines)
	slices.SortStableFunc(out, func(a, b Engine) int {
		return strings.Compare(a.Name, b.Name)
	})
	return Catalog{engines: out}
}

// StageRequirement describes what a single stage has to deliver.
type StageRequirement struct {
	Payload     float64 `json:"payload"`
	DeltaV      float64 `json:"delta_v"`
	Gravity     float64 `json:"gravity"`
	AtmFraction float64 `json:"atm_fraction"`
	TWR         float64 `json:"twr"`
	// FuelRatio is tank dry mass per unit of propellant mass.
	FuelRatio float64 `json:"fuel_ratio"`
}

// VehicleRequirement describes the whole vehicle.
// AtmFractions and TWRs are indexed from the bottom stage: the last element
// belongs to the topmost stage, which is solved first.
type VehicleRequirement struct {
	Payload      float64   `json:"payload"`
	DeltaV       float64   `json:"delta_v"`
	Gravity      float64   `json:"gravity"`
	StageCount   int       `json:"stage_count"`
	AtmFractions []float64 `json:"atm_fractions"`
	TWRs         []float64 `json:"twrs"`
	FuelRatio    float64   `json:"fuel_ratio"`
}

// Project returns the requirement of the topmost remaining stage.
// The caller must have validated that both sequences are non-empty.
func (v VehicleRequirement) Project() StageRequirement {
	return StageRequirement{
		Payload:     v.Payload,
		DeltaV:      v.DeltaV,
		Gravity:     v.Gravity,
		AtmFraction: v.AtmFractions[len(v.AtmFractions)-1],
		TWR:         v.TWRs[len(v.TWRs)-1],
		FuelRatio:   v.FuelRatio,
	}
}

// Clone returns a deep copy so the per-stage sequences can be popped safely.
func (v VehicleRequirement) Clone() VehicleRequirement {
	v.AtmFractions = slices.Clone(v.AtmFractions)
	v.TWRs = slices.Clone(v.TWRs)
	return v
}

// Stage is one solved stage of a vehicle.
type Stage struct {
	Engine Engine `json:"engine"`
	Count  int    `json:"count"`
	// Mass is the total stage mass including everything above it.
	Mass     float64 `json:"mass"`
	FuelMass float64 `json:"fuel_mass"`
	Payload  float64 `json:"payload"`
	DeltaV   float64 `json:"delta_v"`
}

// LaunchMass returns the mass of the bottom stage, i.e. the whole vehicle.
func LaunchMass(stages []Stage) float64 {
	if len(stages) == 0 {
		return 0
	}
	return stages[len(stages)-1].Mass
}
