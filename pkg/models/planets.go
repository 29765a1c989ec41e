package models

import "strings"

// Planet is a named surface gravity preset.
type Planet struct {
	Name    string
	Gravity float64
}

// Planets lists the gravity presets offered to users.
var Planets = []Planet{
	{Name: "Earth", Gravity: 9.81},
	{Name: "Moon", Gravity: 1.63},
}

// GravityFor returns the surface gravity of a preset, matched case-insensitively.
func GravityFor(name string) (float64, bool) {
	for _, p := range Planets {
		if strings.EqualFold(p.Name, name) {
			return p.Gravity, true
		}
	}
	return 0, false
}

// DefaultVehicle is the starting point offered to a new user.
func DefaultVehicle() VehicleRequirement {
	return VehicleRequirement{
		Payload:      10.0,
		DeltaV:       9400.0,
		Gravity:      9.81,
		StageCount:   2,
		AtmFractions: []float64{1, 0.1},
		TWRs:         []float64{1.2, 0.8},
		FuelRatio:    0.05,
	}
}
