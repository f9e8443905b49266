package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrival-benchmark/internal/flight"
)

func TestCSVSinkWritesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GEFlight", "estimated_arrival_benchmark.csv")
	sink := &CSVSink{Path: path}

	err := sink.Write(context.Background(), []flight.DayPrediction{
		{FlightHistoryID: 5, ActualRunwayArrival: 902, ActualGateArrival: 920},
		{FlightHistoryID: 9, ActualRunwayArrival: -30, ActualGateArrival: 1020.5},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"flight_history_id,actual_runway_arrival,actual_gate_arrival\n"+
			"5,902,920\n"+
			"9,-30,1020.5\n",
		string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestCSVSinkReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	sink := &CSVSink{Path: path}
	require.NoError(t, sink.Write(context.Background(), []flight.DayPrediction{{FlightHistoryID: 1, ActualRunwayArrival: 1, ActualGateArrival: 2}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1,1,2")
	assert.NotContains(t, string(data), "stale")
}
