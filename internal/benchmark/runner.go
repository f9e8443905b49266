package benchmark

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"arrival-benchmark/internal/extract"
	"arrival-benchmark/internal/flight"
	"arrival-benchmark/internal/metrics"
)

// DaySource enumerates benchmark days and loads each one.
type DaySource interface {
	Days(ctx context.Context) ([]flight.Day, error)
	LoadDay(ctx context.Context, day flight.Day) (DayInput, error)
}

// Sink receives the complete, sorted prediction table.
type Sink interface {
	Name() string
	Write(ctx context.Context, preds []flight.DayPrediction) error
}

type Runner struct {
	Source      DaySource
	Extractor   extract.Extractor
	Sinks       []Sink
	Concurrency int
	Log         *zap.Logger
	Metrics     *metrics.Collector
}

// Run resolves every day, concatenates the predictions, sorts them by flight
// id and hands the table to each sink. Days are independent and may run in
// parallel; nothing is written until all of them are done.
func (r *Runner) Run(ctx context.Context) ([]flight.DayPrediction, error) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	days, err := r.Source.Days(ctx)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	log.Info("benchmark days", zap.Int("count", len(days)))

	perDay := make([][]flight.DayPrediction, len(days))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, r.Concurrency))
	for i, day := range days {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			in, err := r.Source.LoadDay(gctx, day)
			if err != nil {
				return fmt.Errorf("load day %s: %w", day.FolderName, err)
			}
			res, err := ProcessDay(in, r.Extractor, log.Named("day"))
			if err != nil {
				return fmt.Errorf("process day %s: %w", day.FolderName, err)
			}
			perDay[i] = res.Predictions
			r.observe(res, time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []flight.DayPrediction
	for _, preds := range perDay {
		out = append(out, preds...)
	}
	slices.SortStableFunc(out, func(a, b flight.DayPrediction) int {
		return cmp.Compare(a.FlightHistoryID, b.FlightHistoryID)
	})

	for _, s := range r.Sinks {
		if err := s.Write(ctx, out); err != nil {
			return nil, fmt.Errorf("sink %s: %w", s.Name(), err)
		}
		log.Info("predictions written", zap.String("sink", s.Name()), zap.Int("rows", len(out)))
	}
	return out, nil
}

func (r *Runner) observe(res DayResult, d time.Duration) {
	if r.Metrics == nil {
		return
	}
	m := r.Metrics
	m.DaysProcessed.Inc()
	m.DayDuration.Observe(d.Seconds())
	m.Predictions.Add(float64(len(res.Predictions)))

	c := res.Counts
	m.Events.WithLabelValues(OutcomeApplied.String()).Add(float64(c.Applied))
	m.Events.WithLabelValues(OutcomeNoEstimate.String()).Add(float64(c.NoEstimate))
	m.Events.WithLabelValues(OutcomeUnknownFlight.String()).Add(float64(c.UnknownFlight))
	m.Events.WithLabelValues(OutcomeNoText.String()).Add(float64(c.NoText))
	m.EstimatesPresent.WithLabelValues(flight.Gate.String()).Set(float64(c.GatePresent))
	m.EstimatesPresent.WithLabelValues(flight.Runway.String()).Set(float64(c.RunwayPresent))

	for k, n := range res.Sources {
		m.Resolutions.WithLabelValues(k.Arrival.String(), k.Source.String()).Add(float64(n))
	}
}
