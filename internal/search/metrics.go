package search

import (
	"context"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/search"

// searchMetrics holds the instruments recorded by SearchBest.
// They come from the global OTel meter provider, which is a no-op unless one is installed.
type searchMetrics struct {
	samples    metric.Int64Counter
	searches   metric.Int64Counter
	duration   metric.Float64Histogram
	launchMass metric.Float64Histogram
}

var (
	metricsOnce sync.Once
	instruments *searchMetrics
)

func getMetrics() *searchMetrics {
	metricsOnce.Do(func() {
		m, err := newSearchMetrics(otel.Meter(instrumentationName))
		if err != nil {
			logger.Warn("search metrics disabled", "error", err)
			m, _ = newSearchMetrics(noop.NewMeterProvider().Meter(instrumentationName))
		}
		instruments = m
	})
	return instruments
}

func newSearchMetrics(m metric.Meter) (*searchMetrics, error) {
	sm := &searchMetrics{}
	var err error

	sm.samples, err = m.Int64Counter(
		"search.samples.evaluated",
		metric.WithDescription("Split fractions evaluated, by feasibility"),
	)
	if err != nil {
		return nil, err
	}

	sm.searches, err = m.Int64Counter(
		"search.runs",
		metric.WithDescription("Completed multi-stage searches, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	sm.duration, err = m.Float64Histogram(
		"search.duration",
		metric.WithDescription("Wall time of a multi-stage search"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	sm.launchMass, err = m.Float64Histogram(
		"search.launch_mass",
		metric.WithDescription("Launch mass of the best vehicle found"),
		metric.WithUnit("t"),
	)
	if err != nil {
		return nil, err
	}

	return sm, nil
}

func (m *searchMetrics) recordSamples(ctx context.Context, feasible, infeasible int) {
	m.samples.Add(ctx, int64(feasible), metric.WithAttributes(attribute.Bool("feasible", true)))
	m.samples.Add(ctx, int64(infeasible), metric.WithAttributes(attribute.Bool("feasible", false)))
}

func (m *searchMetrics) recordSearch(ctx context.Context, outcome string, sampler string, elapsed time.Duration, launchMass float64) {
	attrs := metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("sampler", sampler),
	)
	m.searches.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
	if outcome == "ok" {
		m.launchMass.Record(ctx, launchMass, metric.WithAttributes(attribute.String("sampler", sampler)))
	}
}
