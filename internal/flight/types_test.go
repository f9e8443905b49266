package flight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrivalTypeOther(t *testing.T) {
	assert.Equal(t, Runway, Gate.Other())
	assert.Equal(t, Gate, Runway.Other())
	assert.Equal(t, "gate", Gate.String())
	assert.Equal(t, "runway", Runway.String())
}

func TestTimeZeroValueIsMissing(t *testing.T) {
	var tm Time
	assert.False(t, tm.Present())
	assert.True(t, Some(time.Time{}).Present())
}

func TestSetEstimatedTouchesOnlyOneField(t *testing.T) {
	f := &TestFlight{FlightHistoryID: 1}
	ts := time.Date(2012, 11, 26, 14, 0, 0, 0, time.UTC)

	f.SetEstimated(Runway, ts)
	assert.True(t, f.Estimated(Runway).Present())
	assert.False(t, f.Estimated(Gate).Present())
	assert.True(t, f.EstimatedRunwayArrival.T.Equal(ts))

	f.SetEstimated(Gate, ts.Add(time.Minute))
	assert.True(t, f.EstimatedGateArrival.T.Equal(ts.Add(time.Minute)))
}

func TestFlightSetKeepsListOrderAndDropsDuplicates(t *testing.T) {
	s := NewFlightSet([]*TestFlight{
		{FlightHistoryID: 30},
		{FlightHistoryID: 10},
		{FlightHistoryID: 30},
		{FlightHistoryID: 20},
	})
	require.Equal(t, 3, s.Len())
	assert.Equal(t, []int64{30, 10, 20}, s.IDs())

	_, ok := s.Get(10)
	assert.True(t, ok)
	_, ok = s.Get(99)
	assert.False(t, ok)
}
