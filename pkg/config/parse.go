package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseVehicleYAML parses a Vehicle from YAML bytes and validates it.
// This is used for APIs where the vehicle is provided as payload (not via filesystem).
func ParseVehicleYAML(data []byte) (*Vehicle, error) {
	var v Vehicle
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse vehicle yaml: %w", err)
	}

	if err := validateVehicle(&v); err != nil {
		return nil, fmt.Errorf("invalid vehicle: %w", err)
	}

	return &v, nil
}

// ParseVehicleYAMLString parses a Vehicle from a YAML string and validates it.
func ParseVehicleYAMLString(yamlText string) (*Vehicle, error) {
	return ParseVehicleYAML([]byte(yamlText))
}

// ParseCatalogYAML parses an engine Catalog from YAML bytes and validates it.
func ParseCatalogYAML(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}

	if err := validateCatalog(&c); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	return &c, nil
}

// ParseOptimizerYAML parses Optimizer settings, filling defaults for omitted keys.
func ParseOptimizerYAML(data []byte) (*Optimizer, error) {
	o := DefaultOptimizer()
	if err := yaml.Unmarshal(data, o); err != nil {
		return nil, fmt.Errorf("failed to parse optimizer yaml: %w", err)
	}

	if err := validateOptimizer(o); err != nil {
		return nil, fmt.Errorf("invalid optimizer: %w", err)
	}

	return o, nil
}

// MarshalVehicleYAML renders a vehicle back to YAML.
func MarshalVehicleYAML(v *Vehicle) ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode vehicle yaml: %w", err)
	}
	return out, nil
}
