package benchmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arrival-benchmark/internal/extract"
	"arrival-benchmark/internal/flight"
	"arrival-benchmark/internal/timeutil"
)

func newTrackedSet(flights ...*flight.TestFlight) *flight.FlightSet {
	return flight.NewFlightSet(flights)
}

func trackedFlight(id int64, offset int) *flight.TestFlight {
	return &flight.TestFlight{FlightHistoryID: id, ArrivalTZOffset: offset, HasTZOffset: true}
}

func utc(y int, mo time.Month, d, h, mi int) time.Time {
	return time.Date(y, mo, d, h, mi, 0, 0, time.UTC)
}

func TestApplyIgnoresUnknownFlightsAndEmptyText(t *testing.T) {
	f := trackedFlight(1, -5)
	acc := NewAccumulator(newTrackedSet(f), extract.NewPattern(), nil)

	out, err := acc.Apply(flight.UpdateEvent{FlightHistoryID: 2, DataUpdated: "EGA- New=2012-11-26 10:00"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknownFlight, out)

	out, err = acc.Apply(flight.UpdateEvent{FlightHistoryID: 1})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoText, out)

	out, err = acc.Apply(flight.UpdateEvent{FlightHistoryID: 1, DataUpdated: "STATUS- Old=S, New=A"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoEstimate, out)

	assert.False(t, f.EstimatedGateArrival.Present())
	assert.False(t, f.EstimatedRunwayArrival.Present())

	c := acc.Counts()
	assert.Equal(t, Counts{UnknownFlight: 1, NoText: 1, NoEstimate: 1}, c)
}

func TestApplyReconstructsTimezone(t *testing.T) {
	f := trackedFlight(7, 5)
	acc := NewAccumulator(newTrackedSet(f), extract.NewPattern(), nil)

	out, err := acc.Apply(flight.UpdateEvent{FlightHistoryID: 7, DataUpdated: "EGA- New=2016-01-02 08:00"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, out)

	literal, err := timeutil.ParseWithOffset("2016-01-02 08:00+5")
	require.NoError(t, err)
	require.True(t, f.EstimatedGateArrival.Present())
	assert.True(t, f.EstimatedGateArrival.T.Equal(literal))
	assert.False(t, f.EstimatedRunwayArrival.Present())
}

func TestApplyLastWriteWinsByLogOrder(t *testing.T) {
	f := trackedFlight(3, 0)
	acc := NewAccumulator(newTrackedSet(f), extract.NewPattern(), nil)

	// The later event carries the earlier timestamp; log order still decides.
	require.NoError(t, acc.ApplyAll([]flight.UpdateEvent{
		{FlightHistoryID: 3, DataUpdated: "ERA- New=2012-11-26 12:00"},
		{FlightHistoryID: 3, DataUpdated: "ERA- New=2012-11-26 11:15"},
	}))
	assert.True(t, f.EstimatedRunwayArrival.T.Equal(utc(2012, 11, 26, 11, 15)))
}

func TestApplyAbsentSubstringKeepsPreviousEstimate(t *testing.T) {
	f := trackedFlight(3, -8)
	acc := NewAccumulator(newTrackedSet(f), extract.NewPattern(), nil)

	require.NoError(t, acc.ApplyAll([]flight.UpdateEvent{
		{FlightHistoryID: 3, DataUpdated: "EGA- New=2012-11-26 09:00, ERA- New=2012-11-26 08:50"},
		{FlightHistoryID: 3, DataUpdated: "ERA- New=2012-11-26 08:55"},
		{FlightHistoryID: 3, DataUpdated: ""},
	}))
	assert.True(t, f.EstimatedGateArrival.T.Equal(utc(2012, 11, 26, 17, 0)))
	assert.True(t, f.EstimatedRunwayArrival.T.Equal(utc(2012, 11, 26, 16, 55)))

	c := acc.Counts()
	assert.Equal(t, 1, c.GatePresent)
	assert.Equal(t, 1, c.RunwayPresent)
	assert.Equal(t, 2, c.Applied)
	assert.Equal(t, 1, c.NoText)
}

func TestApplyMalformedTimestampIsFatal(t *testing.T) {
	f := trackedFlight(9, 1)
	acc := NewAccumulator(newTrackedSet(f), extract.NewPattern(), nil)

	err := acc.ApplyAll([]flight.UpdateEvent{
		{FlightHistoryID: 9, DataUpdated: "EGA- New=yesterday-ish"},
		{FlightHistoryID: 9, DataUpdated: "EGA- New=2012-11-26 09:00"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, timeutil.ErrMalformedTimestamp)
	assert.Contains(t, err.Error(), "flight 9")
	assert.False(t, f.EstimatedGateArrival.Present())
}

func TestApplyWithoutKnownOffsetIsFatal(t *testing.T) {
	f := &flight.TestFlight{FlightHistoryID: 4}
	acc := NewAccumulator(newTrackedSet(f), extract.NewPattern(), nil)

	_, err := acc.Apply(flight.UpdateEvent{FlightHistoryID: 4, DataUpdated: "ERA- New=2012-11-26 09:00"})
	assert.ErrorIs(t, err, timeutil.ErrMalformedTimestamp)

	// Events with nothing to reconstruct stay harmless.
	out, err := acc.Apply(flight.UpdateEvent{FlightHistoryID: 4, DataUpdated: "STATUS- New=L"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoEstimate, out)
}
