package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInfeasible means no engine and count satisfies the stage constraints.
	ErrInfeasible = errors.New("no feasible stage for these parameters")
	// ErrEmptyCatalog is returned when no engines were supplied. It also matches ErrInfeasible.
	ErrEmptyCatalog = fmt.Errorf("%w: engine catalog is empty", ErrInfeasible)
	// ErrInvalidInput marks requirements rejected before any search starts.
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidInputf formats a validation failure wrapping ErrInvalidInput.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
