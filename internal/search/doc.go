// Package search builds whole vehicles out of single-stage solutions.
//
// SearchOnce splits the remaining delta-v with a fixed fraction, solves the
// topmost stage, and feeds its mass down as the payload of the next stage.
// Searcher.SearchBest repeats that for every fraction drawn from a Sampler,
// in parallel, and keeps the lightest vehicle.
package search
