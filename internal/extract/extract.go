package extract

import (
	"regexp"
	"strings"
)

// Extractor pulls estimated arrival substrings out of a raw update blob. The
// returned values are partial timestamps lacking their UTC offset.
type Extractor interface {
	GateArrival(text string) (string, bool)
	RunwayArrival(text string) (string, bool)
}

// Pattern reads the "EGA- New=..." and "ERA- New=..." fields of a
// flighthistoryevents data_updated blob, e.g.
//
//	ERA- New=11/12/12 2:31 PM, EGA- New=11/12/12 2:41 PM, EGD- Old=...
type Pattern struct {
	gate   *regexp.Regexp
	runway *regexp.Regexp
}

func NewPattern() *Pattern {
	return &Pattern{
		gate:   fieldPattern("EGA"),
		runway: fieldPattern("ERA"),
	}
}

func fieldPattern(code string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + code + `-\s*New=([^,]*)`)
}

func (p *Pattern) GateArrival(text string) (string, bool) {
	return find(p.gate, text)
}

func (p *Pattern) RunwayArrival(text string) (string, bool) {
	return find(p.runway, text)
}

func find(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	if v == "" {
		return "", false
	}
	return v, true
}
