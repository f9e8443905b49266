package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"

	"arrival-benchmark/internal/benchmark"
	"arrival-benchmark/internal/flight"
)

type predictionRow struct {
	FlightHistoryID     int64  `csv:"flight_history_id"`
	ActualRunwayArrival string `csv:"actual_runway_arrival"`
	ActualGateArrival   string `csv:"actual_gate_arrival"`
}

// CSVSink writes the benchmark table to a comma-separated file. The file is
// replaced atomically.
type CSVSink struct {
	Path string
}

var _ benchmark.Sink = (*CSVSink)(nil)

func (s *CSVSink) Name() string { return "csv" }

func (s *CSVSink) Write(ctx context.Context, preds []flight.DayPrediction) error {
	rows := make([]predictionRow, 0, len(preds))
	for _, p := range preds {
		rows = append(rows, predictionRow{
			FlightHistoryID:     p.FlightHistoryID,
			ActualRunwayArrival: formatMinutes(p.ActualRunwayArrival),
			ActualGateArrival:   formatMinutes(p.ActualGateArrival),
		})
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gocsv.Marshal(rows, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

func formatMinutes(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
