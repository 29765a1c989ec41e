package config

import (
	"fmt"
	"math"
	"os"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"
)

// LoadVehicle loads and parses a vehicle file
func LoadVehicle(path string) (*Vehicle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vehicle file %s: %w", path, err)
	}
	v, err := ParseVehicleYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vehicle file %s: %w", path, err)
	}
	return v, nil
}

// LoadCatalog loads and parses an engine catalog file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	c, err := ParseCatalogYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return c, nil
}

// LoadOptimizer loads optimizer settings; an empty path returns the defaults.
func LoadOptimizer(path string) (*Optimizer, error) {
	if path == "" {
		return DefaultOptimizer(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read optimizer file %s: %w", path, err)
	}
	o, err := ParseOptimizerYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse optimizer file %s: %w", path, err)
	}
	return o, nil
}

// validateVehicle performs validation on the vehicle and resolves planet gravity
func validateVehicle(v *Vehicle) error {
	if v.Planet != "" {
		g, ok := models.GravityFor(v.Planet)
		if !ok {
			return fmt.Errorf("unknown planet: %s", v.Planet)
		}
		if v.Gravity != 0 && v.Gravity != g {
			return fmt.Errorf("planet %s conflicts with gravity %v", v.Planet, v.Gravity)
		}
		v.Gravity = g
	}
	if v.Gravity <= 0 {
		return fmt.Errorf("gravity must be positive, got %v", v.Gravity)
	}
	if v.Payload < 0 {
		return fmt.Errorf("payload cannot be negative, got %v", v.Payload)
	}
	if v.DeltaV < 0 {
		return fmt.Errorf("delta_v cannot be negative, got %v", v.DeltaV)
	}
	if v.FuelRatio != nil && *v.FuelRatio < 0 {
		return fmt.Errorf("fuel_ratio cannot be negative, got %v", *v.FuelRatio)
	}
	if len(v.Stages) == 0 {
		return fmt.Errorf("at least one stage must be defined")
	}
	for i, s := range v.Stages {
		if s.Atm < 0 || s.Atm > 1 {
			return fmt.Errorf("stage %d: atm must be between 0 and 1, got %v", i+1, s.Atm)
		}
		if s.TWR < 0 {
			return fmt.Errorf("stage %d: twr cannot be negative, got %v", i+1, s.TWR)
		}
	}
	return nil
}

// validateCatalog validates the engine records
func validateCatalog(c *Catalog) error {
	if len(c.Engines) == 0 {
		return fmt.Errorf("at least one engine must be defined")
	}
	names := make(map[string]bool)
	for i, e := range c.Engines {
		if e.Name == "" {
			return fmt.Errorf("engine %d: name cannot be empty", i)
		}
		if names[e.Name] {
			return fmt.Errorf("duplicate engine name: %s", e.Name)
		}
		names[e.Name] = true
		if e.Mass < 0 {
			return fmt.Errorf("engine %s: mass cannot be negative", e.Name)
		}
		if e.VacIsp <= 0 || e.AtmIsp < 0 {
			return fmt.Errorf("engine %s: isp must be positive", e.Name)
		}
		if e.VacThrust <= 0 || (e.AtmThrust != nil && *e.AtmThrust < 0) {
			return fmt.Errorf("engine %s: thrust must be positive", e.Name)
		}
		if e.BurnTime < 0 || math.IsInf(e.BurnTime, 0) {
			return fmt.Errorf("engine %s: burn_time must be finite and non-negative", e.Name)
		}
	}
	return nil
}

// validateOptimizer validates the search tuning
func validateOptimizer(o *Optimizer) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[o.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", o.LogLevel)
	}
	if o.Samples <= 0 {
		return fmt.Errorf("samples must be positive, got %d", o.Samples)
	}
	if o.Sampler != "grid" && o.Sampler != "random" {
		return fmt.Errorf("invalid sampler: %s (must be grid or random)", o.Sampler)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", o.Workers)
	}
	if o.MaxEngineCount < 0 || o.MaxEngineCount > models.MaxEngineCount {
		return fmt.Errorf("max_engine_count must be between 0 and %d, got %d", models.MaxEngineCount, o.MaxEngineCount)
	}
	return nil
}
