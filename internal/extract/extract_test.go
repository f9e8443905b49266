package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatternExtractsBothFields(t *testing.T) {
	p := NewPattern()
	text := "ERA- New=11/12/12 2:31 PM, EGA- New=11/12/12 2:41 PM, EGD- New=11/12/12 11:05 AM"

	gate, ok := p.GateArrival(text)
	assert.True(t, ok)
	assert.Equal(t, "11/12/12 2:41 PM", gate)

	runway, ok := p.RunwayArrival(text)
	assert.True(t, ok)
	assert.Equal(t, "11/12/12 2:31 PM", runway)
}

func TestPatternFieldsAreIndependent(t *testing.T) {
	p := NewPattern()

	tests := []struct {
		name       string
		text       string
		wantGate   string
		wantRunway string
	}{
		{"gate only", "EGA- New=2016-03-01 10:00", "2016-03-01 10:00", ""},
		{"runway only", "STATUS- Old=S, New=A, ERA- New=2016-03-01 10:30", "", "2016-03-01 10:30"},
		{"neither", "STATUS- Old=S, New=A", "", ""},
		{"empty value", "EGA- New=, ERA- New=2016-03-01 10:30", "", "2016-03-01 10:30"},
		{"old value ignored", "EGA- Old=2016-03-01 09:00", "", ""},
		{"prefixed code ignored", "XEGA- New=2016-03-01 09:00", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, gok := p.GateArrival(tt.text)
			runway, rok := p.RunwayArrival(tt.text)
			assert.Equal(t, tt.wantGate != "", gok)
			assert.Equal(t, tt.wantGate, gate)
			assert.Equal(t, tt.wantRunway != "", rok)
			assert.Equal(t, tt.wantRunway, runway)
		})
	}
}
