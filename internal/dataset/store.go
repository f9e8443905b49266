package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"arrival-benchmark/internal/benchmark"
	"arrival-benchmark/internal/flight"
	"arrival-benchmark/internal/timeutil"
)

// ErrMissingColumn is returned when a table lacks a required header.
var ErrMissingColumn = errors.New("missing column")

// Marker used by prepared flight history tables for an unknown value.
const missingMarker = "MISSING"

const (
	daysFile          = "days.csv"
	testFlightsFile   = "test_flights.csv"
	flightHistoryDir  = "FlightHistory"
	flightHistoryFile = "flighthistory.csv"
	eventsFile        = "flighthistoryevents.csv"
)

type dayRow struct {
	FolderName         string `csv:"folder_name"`
	SelectedCutoffTime string `csv:"selected_cutoff_time"`
}

type flightHistoryRow struct {
	FlightHistoryID        string `csv:"flight_history_id"`
	ArrivalTZOffset        string `csv:"arrival_airport_timezone_offset"`
	ScheduledRunwayArrival string `csv:"scheduled_runway_arrival"`
	ScheduledGateArrival   string `csv:"scheduled_gate_arrival"`
	PublishedArrival       string `csv:"published_arrival"`
}

type eventRow struct {
	FlightHistoryID  string `csv:"flight_history_id"`
	DateTimeRecorded string `csv:"date_time_recorded"`
	Event            string `csv:"event"`
	DataUpdated      string `csv:"data_updated"`
}

// Store reads a release directory: days.csv at the root and one folder per
// day holding test_flights.csv and FlightHistory/.
type Store struct {
	root string
	log  *zap.Logger
}

func NewStore(root string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{root: root, log: log.Named("dataset")}
}

var _ benchmark.DaySource = (*Store)(nil)

// Days lists the benchmark days with their cutoff times, in file order.
func (s *Store) Days(ctx context.Context) ([]flight.Day, error) {
	var rows []dayRow
	if err := readTable(filepath.Join(s.root, daysFile), &rows, "folder_name", "selected_cutoff_time"); err != nil {
		return nil, err
	}
	days := make([]flight.Day, 0, len(rows))
	for i, r := range rows {
		cutoff, err := timeutil.Parse(r.SelectedCutoffTime)
		if err != nil {
			return nil, fmt.Errorf("%s row %d cutoff: %w", daysFile, i+1, err)
		}
		days = append(days, flight.Day{FolderName: strings.TrimSpace(r.FolderName), CutoffTime: cutoff})
	}
	return days, nil
}

// LoadDay reads the tracked flights, their reference attributes and the
// day's update events in log order.
func (s *Store) LoadDay(ctx context.Context, day flight.Day) (benchmark.DayInput, error) {
	dir := filepath.Join(s.root, day.FolderName)

	ids, err := readTestFlightIDs(filepath.Join(dir, testFlightsFile))
	if err != nil {
		return benchmark.DayInput{}, err
	}
	if err := ctx.Err(); err != nil {
		return benchmark.DayInput{}, err
	}

	refs, err := readFlightHistory(filepath.Join(dir, flightHistoryDir, flightHistoryFile))
	if err != nil {
		return benchmark.DayInput{}, err
	}
	flights := make([]*flight.TestFlight, 0, len(ids))
	unmatched := 0
	for _, id := range ids {
		f, ok := refs[id]
		if !ok {
			f = &flight.TestFlight{FlightHistoryID: id}
			unmatched++
		}
		flights = append(flights, f)
	}
	if unmatched > 0 {
		s.log.Warn("test flights without flight history", zap.String("day", day.FolderName), zap.Int("count", unmatched))
	}
	if err := ctx.Err(); err != nil {
		return benchmark.DayInput{}, err
	}

	events, err := readEvents(filepath.Join(dir, flightHistoryDir, eventsFile))
	if err != nil {
		return benchmark.DayInput{}, err
	}
	s.log.Debug("day loaded",
		zap.String("day", day.FolderName),
		zap.Int("test_flights", len(ids)),
		zap.Int("flight_history", len(refs)),
		zap.Int("events", len(events)),
	)
	return benchmark.DayInput{
		Day:     day,
		Flights: flight.NewFlightSet(flights),
		Events:  events,
	}, nil
}

// readTestFlightIDs takes the first column of every row after the header.
func readTestFlightIDs(path string) ([]int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := gocsv.LazyCSVReader(bytes.NewReader(data))
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("%s header: %w", path, err)
	}
	var ids []int64
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		id, err := parseID(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func readFlightHistory(path string) (map[int64]*flight.TestFlight, error) {
	var rows []flightHistoryRow
	if err := readTable(path, &rows,
		"flight_history_id", "arrival_airport_timezone_offset",
		"scheduled_runway_arrival", "scheduled_gate_arrival", "published_arrival",
	); err != nil {
		return nil, err
	}
	out := make(map[int64]*flight.TestFlight, len(rows))
	for i, r := range rows {
		id, err := parseID(r.FlightHistoryID)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		if _, dup := out[id]; dup {
			continue
		}
		f := &flight.TestFlight{FlightHistoryID: id}
		if v, ok := present(r.ArrivalTZOffset); ok {
			if f.ArrivalTZOffset, err = parseOffset(v); err != nil {
				return nil, fmt.Errorf("%s row %d timezone offset: %w", path, i+1, err)
			}
			f.HasTZOffset = true
		}
		for _, ref := range []struct {
			dst *flight.Time
			raw string
			col string
		}{
			{&f.ScheduledRunwayArrival, r.ScheduledRunwayArrival, "scheduled_runway_arrival"},
			{&f.ScheduledGateArrival, r.ScheduledGateArrival, "scheduled_gate_arrival"},
			{&f.PublishedArrival, r.PublishedArrival, "published_arrival"},
		} {
			v, ok := present(ref.raw)
			if !ok {
				continue
			}
			t, err := timeutil.Parse(v)
			if err != nil {
				return nil, fmt.Errorf("%s row %d %s: %w", path, i+1, ref.col, err)
			}
			*ref.dst = flight.Some(t)
		}
		out[id] = f
	}
	return out, nil
}

func readEvents(path string) ([]flight.UpdateEvent, error) {
	var rows []eventRow
	if err := readTable(path, &rows, "flight_history_id", "data_updated"); err != nil {
		return nil, err
	}
	events := make([]flight.UpdateEvent, 0, len(rows))
	for i, r := range rows {
		id, err := parseID(r.FlightHistoryID)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		events = append(events, flight.UpdateEvent{
			FlightHistoryID:  id,
			DateTimeRecorded: r.DateTimeRecorded,
			Event:            r.Event,
			DataUpdated:      strings.TrimSpace(r.DataUpdated),
		})
	}
	return events, nil
}

// readTable unmarshals a whole CSV file into out after checking that the
// header carries every required column.
func readTable(path string, out any, required ...string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	header, err := gocsv.LazyCSVReader(bytes.NewReader(data)).Read()
	if err != nil {
		return fmt.Errorf("%s header: %w", path, err)
	}
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[strings.TrimSpace(h)] = true
	}
	for _, col := range required {
		if !have[col] {
			return fmt.Errorf("%s: %w %q", path, ErrMissingColumn, col)
		}
	}
	if err := gocsv.UnmarshalCSV(gocsv.LazyCSVReader(bytes.NewReader(data)), out); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func present(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" || v == missingMarker {
		return "", false
	}
	return v, true
}

func parseID(raw string) (int64, error) {
	v := strings.TrimSpace(raw)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid flight_history_id %q", raw)
	}
	return id, nil
}

// parseOffset accepts whole hours, also when written as a float ("-8.0").
func parseOffset(v string) (int, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole hour offset: %q", v)
	}
	return int(f), nil
}
