// Package archive persists finished design searches.
package archive

import (
	"context"
	"errors"
	"time"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/search"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/models"
)

// ErrNotFound is returned when no design is archived under the requested search ID.
var ErrNotFound = errors.New("design not found")

// Record is one finished search as handed to a Sink.
type Record struct {
	SearchID    string
	Requirement models.VehicleRequirement
	Result      *search.Result
	CreatedAt   time.Time
}

func (r Record) timestamp() time.Time {
	if r.CreatedAt.IsZero() {
		return time.Now().UTC()
	}
	return r.CreatedAt
}

// Sink receives finished searches.
type Sink interface {
	Save(ctx context.Context, rec Record) error
	Close() error
}

// MultiSink fans a record out to several sinks. Every sink is tried; the
// errors are joined.
type MultiSink []Sink

func (m MultiSink) Save(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Save(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
