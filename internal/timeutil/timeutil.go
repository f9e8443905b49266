package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedTimestamp is returned when a timestamp cannot be parsed.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// Layouts accepted for a timestamp without its UTC offset. Single-digit
// month/day/hour fields also accept two digits.
var partialLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"1/2/06 3:04:05 PM",
	"1/2/06 3:04 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/06 15:04",
}

var utcLayouts = append(append([]string{}, partialLayouts...), "2006-01-02")

var fullLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05-07",
	"2006-01-02 15:04Z07:00",
}

// <timestamp><sign><hours>[[:]<minutes>]
var offsetSuffix = regexp.MustCompile(`^(.*\S)\s*([+-])(\d{1,2})(?::?(\d{2}))?$`)

// OffsetString renders a whole-hour UTC offset as a suffix for a partial
// timestamp: non-negative offsets get a leading '+', negative ones keep
// their own sign.
func OffsetString(hours int) string {
	if hours >= 0 {
		return "+" + strconv.Itoa(hours)
	}
	return strconv.Itoa(hours)
}

// ParseWithOffset parses a partial timestamp that has an offset string
// appended, e.g. "2016-01-02 08:00+5" or "11/12/12 2:31 PM-8".
func ParseWithOffset(s string) (time.Time, error) {
	m := offsetSuffix.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, fmt.Errorf("%w: no utc offset in %q", ErrMalformedTimestamp, s)
	}
	hours, _ := strconv.Atoi(m[3])
	minutes := 0
	if m[4] != "" {
		minutes, _ = strconv.Atoi(m[4])
	}
	if hours > 23 || minutes > 59 {
		return time.Time{}, fmt.Errorf("%w: utc offset out of range in %q", ErrMalformedTimestamp, s)
	}
	secs := hours*3600 + minutes*60
	if m[2] == "-" {
		secs = -secs
	}
	loc := time.FixedZone("", secs)
	base := strings.TrimSpace(m[1])
	for _, layout := range partialLayouts {
		if t, err := time.ParseInLocation(layout, base, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

// Parse reads a complete timestamp as found in flight history and day
// tables. Values without any offset are taken as UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrMalformedTimestamp)
	}
	for _, layout := range fullLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := ParseWithOffset(s); err == nil {
		return t, nil
	}
	for _, layout := range utcLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
}

// MinutesDifference returns t - ref in fractional minutes; positive when t
// is later than ref.
func MinutesDifference(t, ref time.Time) float64 {
	return t.Sub(ref).Minutes()
}

// UTCMidnight returns 00:00 UTC on the calendar date t carries in its own
// location.
func UTCMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
