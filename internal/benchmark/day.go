package benchmark

import (
	"go.uber.org/zap"

	"arrival-benchmark/internal/extract"
	"arrival-benchmark/internal/flight"
)

// DayInput is everything known about one benchmark day, fully loaded.
type DayInput struct {
	Day     flight.Day
	Flights *flight.FlightSet
	Events  []flight.UpdateEvent // log order
}

// SourceKey identifies a fallback link per arrival type.
type SourceKey struct {
	Arrival flight.ArrivalType
	Source  Source
}

type DayResult struct {
	Day         flight.Day
	Predictions []flight.DayPrediction // test-flight order
	Counts      Counts
	Sources     map[SourceKey]int
}

// ProcessDay replays every event of the day and only then resolves each
// tracked flight against the day's cutoff. The flights in the input are
// mutated.
func ProcessDay(in DayInput, ex extract.Extractor, log *zap.Logger) (DayResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	acc := NewAccumulator(in.Flights, ex, log)
	if err := acc.ApplyAll(in.Events); err != nil {
		return DayResult{}, err
	}
	counts := acc.Counts()
	log.Info("day accumulated",
		zap.String("day", in.Day.FolderName),
		zap.Int("flights", in.Flights.Len()),
		zap.Int("events", len(in.Events)),
		zap.Int("gate_present", counts.GatePresent),
		zap.Int("runway_present", counts.RunwayPresent),
		zap.Int("unknown_flight_events", counts.UnknownFlight),
	)

	res := DayResult{
		Day:         in.Day,
		Predictions: make([]flight.DayPrediction, 0, in.Flights.Len()),
		Counts:      counts,
		Sources:     make(map[SourceKey]int),
	}
	for _, id := range in.Flights.IDs() {
		f, _ := in.Flights.Get(id)
		p, src := predict(f, in.Day.CutoffTime)
		res.Predictions = append(res.Predictions, p)
		res.Sources[SourceKey{flight.Runway, src[0]}]++
		res.Sources[SourceKey{flight.Gate, src[1]}]++
	}
	return res, nil
}
