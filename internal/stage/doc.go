// Package stage picks the lightest engine cluster for a single rocket stage.
//
// For every engine in the catalog the solver walks engine counts from one up
// to models.MaxEngineCount, sizes the propellant load with the rocket
// equation and a fixed tankage ratio, and checks thrust-to-weight and rated
// burn time. By default the first feasible count ends the walk for that
// engine; Options.Exhaustive evaluates every count instead.
package stage
