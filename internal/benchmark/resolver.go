package benchmark

import (
	"fmt"
	"time"

	"arrival-benchmark/internal/flight"
	"arrival-benchmark/internal/timeutil"
)

// Source names the link of the fallback chain that supplied an arrival.
type Source int

const (
	SourceEstimated Source = iota
	SourceEstimatedOther
	SourceScheduled
	SourceScheduledOther
	SourcePublished
	SourceCutoff
)

var sourceNames = [...]string{
	SourceEstimated:      "estimated",
	SourceEstimatedOther: "estimated_other",
	SourceScheduled:      "scheduled",
	SourceScheduledOther: "scheduled_other",
	SourcePublished:      "published",
	SourceCutoff:         "cutoff",
}

func (s Source) String() string {
	if s >= 0 && int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return fmt.Sprintf("source(%d)", int(s))
}

// Resolve picks the best known arrival of type a: the live estimate, then the
// other type's live estimate, the scheduled times in the same order, the
// published arrival and finally the cutoff itself.
func Resolve(f *flight.TestFlight, a flight.ArrivalType, cutoff time.Time) (time.Time, Source) {
	chain := [...]struct {
		v   flight.Time
		src Source
	}{
		{f.Estimated(a), SourceEstimated},
		{f.Estimated(a.Other()), SourceEstimatedOther},
		{f.Scheduled(a), SourceScheduled},
		{f.Scheduled(a.Other()), SourceScheduledOther},
		{f.PublishedArrival, SourcePublished},
	}
	for _, link := range chain {
		if link.v.Present() {
			return link.v.T, link.src
		}
	}
	return cutoff, SourceCutoff
}

// Predict resolves both arrival types of f as minutes after UTC midnight of
// the cutoff date.
func Predict(f *flight.TestFlight, cutoff time.Time) flight.DayPrediction {
	p, _ := predict(f, cutoff)
	return p
}

func predict(f *flight.TestFlight, cutoff time.Time) (flight.DayPrediction, [2]Source) {
	midnight := timeutil.UTCMidnight(cutoff)
	runway, rs := Resolve(f, flight.Runway, cutoff)
	gate, gs := Resolve(f, flight.Gate, cutoff)
	return flight.DayPrediction{
		FlightHistoryID:     f.FlightHistoryID,
		ActualRunwayArrival: timeutil.MinutesDifference(runway, midnight),
		ActualGateArrival:   timeutil.MinutesDifference(gate, midnight),
	}, [2]Source{rs, gs}
}
