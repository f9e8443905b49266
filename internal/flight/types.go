package flight

import "time"

// ArrivalType selects which arrival of a flight is being estimated.
type ArrivalType int

const (
	Gate ArrivalType = iota
	Runway
)

// Other returns the complementary arrival type.
func (a ArrivalType) Other() ArrivalType {
	if a == Runway {
		return Gate
	}
	return Runway
}

func (a ArrivalType) String() string {
	if a == Runway {
		return "runway"
	}
	return "gate"
}

// Time is an absolute instant that may be missing. The zero value is missing.
type Time struct {
	T     time.Time
	Valid bool
}

func Some(t time.Time) Time { return Time{T: t, Valid: true} }

func (t Time) Present() bool { return t.Valid }

type TestFlight struct {
	FlightHistoryID int64
	ArrivalTZOffset int // hours from UTC at the arrival airport
	HasTZOffset     bool

	ScheduledRunwayArrival Time
	ScheduledGateArrival   Time
	PublishedArrival       Time

	// Written only while replaying update events.
	EstimatedRunwayArrival Time
	EstimatedGateArrival   Time
}

func (f *TestFlight) Scheduled(a ArrivalType) Time {
	if a == Runway {
		return f.ScheduledRunwayArrival
	}
	return f.ScheduledGateArrival
}

func (f *TestFlight) Estimated(a ArrivalType) Time {
	if a == Runway {
		return f.EstimatedRunwayArrival
	}
	return f.EstimatedGateArrival
}

// SetEstimated overwrites the live estimate for the given arrival type.
func (f *TestFlight) SetEstimated(a ArrivalType, t time.Time) {
	if a == Runway {
		f.EstimatedRunwayArrival = Some(t)
		return
	}
	f.EstimatedGateArrival = Some(t)
}

// FlightSet is the tracked flights of one day, keyed by flight history id and
// kept in test-flight list order.
type FlightSet struct {
	ids     []int64
	flights map[int64]*TestFlight
}

func NewFlightSet(flights []*TestFlight) *FlightSet {
	s := &FlightSet{
		ids:     make([]int64, 0, len(flights)),
		flights: make(map[int64]*TestFlight, len(flights)),
	}
	for _, f := range flights {
		if _, dup := s.flights[f.FlightHistoryID]; dup {
			continue
		}
		s.ids = append(s.ids, f.FlightHistoryID)
		s.flights[f.FlightHistoryID] = f
	}
	return s
}

func (s *FlightSet) Get(id int64) (*TestFlight, bool) {
	f, ok := s.flights[id]
	return f, ok
}

func (s *FlightSet) IDs() []int64 { return s.ids }

func (s *FlightSet) Len() int { return len(s.ids) }

// UpdateEvent is one row of the flight history event log.
type UpdateEvent struct {
	FlightHistoryID  int64
	DateTimeRecorded string
	Event            string
	DataUpdated      string // empty when the row carried no update text
}

func (e UpdateEvent) HasText() bool { return e.DataUpdated != "" }

// DayPrediction holds the resolved arrivals of one flight, in minutes after
// UTC midnight of the cutoff date.
type DayPrediction struct {
	FlightHistoryID     int64
	ActualRunwayArrival float64
	ActualGateArrival   float64
}

// Day is one benchmark day: its folder and the instant up to which updates
// are known.
type Day struct {
	FolderName string
	CutoffTime time.Time
}
