package benchmark

import (
	"fmt"

	"go.uber.org/zap"

	"arrival-benchmark/internal/extract"
	"arrival-benchmark/internal/flight"
	"arrival-benchmark/internal/timeutil"
)

// Outcome says what replaying one update event did.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeNoEstimate
	OutcomeUnknownFlight
	OutcomeNoText
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeNoEstimate:
		return "no_estimate"
	case OutcomeUnknownFlight:
		return "unknown_flight"
	case OutcomeNoText:
		return "no_text"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Counts are diagnostics of one day's replay. They do not feed resolution.
type Counts struct {
	GatePresent   int
	RunwayPresent int

	Applied       int
	NoEstimate    int
	UnknownFlight int
	NoText        int
}

// Accumulator folds a day's update events into the tracked flights' live
// estimates. The last event carrying an estimate wins, in log order.
type Accumulator struct {
	flights *flight.FlightSet
	ex      extract.Extractor
	log     *zap.Logger
	counts  Counts
}

func NewAccumulator(flights *flight.FlightSet, ex extract.Extractor, log *zap.Logger) *Accumulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Accumulator{flights: flights, ex: ex, log: log}
}

// Apply replays one event. Only a timestamp that cannot be reconstructed is
// an error; every other unusable event is a no-op.
func (a *Accumulator) Apply(ev flight.UpdateEvent) (Outcome, error) {
	f, ok := a.flights.Get(ev.FlightHistoryID)
	if !ok {
		a.counts.UnknownFlight++
		return OutcomeUnknownFlight, nil
	}
	if !ev.HasText() {
		a.counts.NoText++
		a.log.Debug("event without update text", zap.Int64("flight_history_id", ev.FlightHistoryID))
		return OutcomeNoText, nil
	}

	gate, hasGate := a.ex.GateArrival(ev.DataUpdated)
	runway, hasRunway := a.ex.RunwayArrival(ev.DataUpdated)
	if !hasGate && !hasRunway {
		a.counts.NoEstimate++
		return OutcomeNoEstimate, nil
	}
	if !f.HasTZOffset {
		return 0, fmt.Errorf("flight %d: %w: arrival airport timezone offset unknown", f.FlightHistoryID, timeutil.ErrMalformedTimestamp)
	}
	offset := timeutil.OffsetString(f.ArrivalTZOffset)

	if hasGate {
		t, err := timeutil.ParseWithOffset(gate + offset)
		if err != nil {
			return 0, fmt.Errorf("flight %d gate estimate: %w", f.FlightHistoryID, err)
		}
		f.SetEstimated(flight.Gate, t)
	}
	if hasRunway {
		t, err := timeutil.ParseWithOffset(runway + offset)
		if err != nil {
			return 0, fmt.Errorf("flight %d runway estimate: %w", f.FlightHistoryID, err)
		}
		f.SetEstimated(flight.Runway, t)
	}
	a.counts.Applied++
	return OutcomeApplied, nil
}

// ApplyAll replays events in the given order and stops at the first error.
func (a *Accumulator) ApplyAll(events []flight.UpdateEvent) error {
	for i, ev := range events {
		if _, err := a.Apply(ev); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}

// Counts returns the event tallies so far and how many tracked flights
// currently hold a live gate and runway estimate.
func (a *Accumulator) Counts() Counts {
	c := a.counts
	for _, id := range a.flights.IDs() {
		f, _ := a.flights.Get(id)
		if f.EstimatedGateArrival.Present() {
			c.GatePresent++
		}
		if f.EstimatedRunwayArrival.Present() {
			c.RunwayPresent++
		}
	}
	return c
}
