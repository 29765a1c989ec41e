package config

import "github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"

// DefaultFuelRatio is the tankage ratio used when a vehicle does not set one.
const DefaultFuelRatio = 0.05

// Vehicle is the YAML form of a vehicle requirement.
type Vehicle struct {
	Payload   float64  `yaml:"payload"`
	DeltaV    float64  `yaml:"delta_v"`
	Gravity   float64  `yaml:"gravity,omitempty"`
	Planet    string   `yaml:"planet,omitempty"`
	FuelRatio *float64 `yaml:"fuel_ratio,omitempty"`
	// Stages are listed in burn order: first entry is the bottom stage.
	Stages []StageSpec `yaml:"stages"`
	// Engines optionally restricts the catalog to these names.
	Engines []string `yaml:"engines,omitempty"`
}

// StageSpec holds the per-stage settings of a vehicle.
type StageSpec struct {
	Atm float64 `yaml:"atm"`
	TWR float64 `yaml:"twr"`
}

// Catalog is the YAML form of an engine catalog.
type Catalog struct {
	Engines []models.Engine `yaml:"engines"`
}

// Optimizer holds search tuning knobs.
type Optimizer struct {
	LogLevel       string `yaml:"log_level"`
	Samples        int    `yaml:"samples"`
	Sampler        string `yaml:"sampler"` // grid or random
	Seed           int64  `yaml:"seed,omitempty"`
	Workers        int    `yaml:"workers,omitempty"`
	Exhaustive     bool   `yaml:"exhaustive,omitempty"`
	MaxEngineCount int    `yaml:"max_engine_count,omitempty"`
}

// DefaultOptimizer returns the tuning used when no optimizer file is given.
func DefaultOptimizer() *Optimizer {
	return &Optimizer{
		LogLevel: "info",
		Samples:  1000,
		Sampler:  "grid",
	}
}

// Requirement converts the YAML vehicle into a search requirement.
// Gravity must already be resolved, which Parse/Load guarantee.
func (v *Vehicle) Requirement() models.VehicleRequirement {
	req := models.VehicleRequirement{
		Payload:      v.Payload,
		DeltaV:       v.DeltaV,
		Gravity:      v.Gravity,
		StageCount:   len(v.Stages),
		AtmFractions: make([]float64, len(v.Stages)),
		TWRs:         make([]float64, len(v.Stages)),
		FuelRatio:    DefaultFuelRatio,
	}
	if v.FuelRatio != nil {
		req.FuelRatio = *v.FuelRatio
	}
	for i, s := range v.Stages {
		req.AtmFractions[i] = s.Atm
		req.TWRs[i] = s.TWR
	}
	return req
}

// FromRequirement builds the YAML form of a requirement.
func FromRequirement(req models.VehicleRequirement) *Vehicle {
	fr := req.FuelRatio
	v := &Vehicle{
		Payload:   req.Payload,
		DeltaV:    req.DeltaV,
		Gravity:   req.Gravity,
		FuelRatio: &fr,
		Stages:    make([]StageSpec, len(req.AtmFractions)),
	}
	for i := range v.Stages {
		v.Stages[i] = StageSpec{Atm: req.AtmFractions[i], TWR: req.TWRs[i]}
	}
	return v
}

// EngineCatalog returns the catalog as an immutable value.
func (c *Catalog) EngineCatalog() models.Catalog {
	return models.NewCatalog(c.Engines)
}
