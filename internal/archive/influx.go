package archive

import (
	"context"
	"fmt"
	"strconv"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
)

const (
	designMeasurement = "design"
	stageMeasurement  = "design_stage"
)

// InfluxSink writes one point per design and one per stage to an InfluxDB bucket.
type InfluxSink struct {
	client influxdb2.Client
	writer influxdb2_api.WriteAPIBlocking
}

// NewInfluxSink creates a sink writing to bucket in org at url.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	client := influxdb2.NewClientWithOptions(url, token, influxdb2.DefaultOptions())
	return &InfluxSink{
		client: client,
		writer: client.WriteAPIBlocking(org, bucket),
	}
}

func (s *InfluxSink) Save(ctx context.Context, rec Record) error {
	points, err := Points(rec)
	if err != nil {
		return err
	}
	if err := s.writer.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("write influx points for %s: %w", rec.SearchID, err)
	}
	return nil
}

func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

// Points converts a record into line-protocol points.
func Points(rec Record) ([]*influxdb2_write.Point, error) {
	if rec.Result == nil {
		return nil, fmt.Errorf("search %s has no result", rec.SearchID)
	}
	ts := rec.timestamp()
	res := rec.Result

	points := make([]*influxdb2_write.Point, 0, len(res.Stages)+1)
	points = append(points, influxdb2.NewPoint(designMeasurement,
		map[string]string{
			"search_id": rec.SearchID,
			"sampler":   res.Sampler,
			"stages":    strconv.Itoa(len(res.Stages)),
		},
		map[string]any{
			"launch_mass": res.LaunchMass,
			"fraction":    res.Fraction,
			"samples":     res.Samples,
			"feasible":    res.Feasible,
			"payload":     rec.Requirement.Payload,
			"delta_v":     rec.Requirement.DeltaV,
		},
		ts))

	// stage 0 is the bottom stage, matching how the vehicle is described
	n := len(res.Stages)
	for i := n - 1; i >= 0; i-- {
		st := res.Stages[i]
		p := influxdb2.NewPointWithMeasurement(stageMeasurement).
			AddTag("search_id", rec.SearchID).
			AddTag("stage", strconv.Itoa(n-1-i)).
			AddTag("engine", st.Engine.Name).
			AddField("count", st.Count).
			AddField("mass", st.Mass).
			AddField("fuel_mass", st.FuelMass).
			AddField("delta_v", st.DeltaV).
			SetTime(ts)
		points = append(points, p)
	}
	return points, nil
}
