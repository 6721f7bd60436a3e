package model

import (
	"fmt"
	"strings"
	"time"
)

// LatencyNotAvailable is the sentinel stored in Sample.LatencyMs when the
// observation carries no latency (historical gaps, upstream connection errors).
const LatencyNotAvailable = -1

// Status is the portal state reported by a live sample.
type Status int

const (
	StatusUnknown Status = iota // historical points carry no status
	StatusUp
	StatusDown
	StatusLoading
)

// String returns the wire form of the status ("UP", "DOWN", "LOADING").
func (s Status) String() string {
	switch s {
	case StatusUp:
		return "UP"
	case StatusDown:
		return "DOWN"
	case StatusLoading:
		return "LOADING"
	default:
		return "UNKNOWN"
	}
}

// ParseStatus converts the wire form into a Status. Matching is case-insensitive.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UP":
		return StatusUp, nil
	case "DOWN":
		return StatusDown, nil
	case "LOADING":
		return StatusLoading, nil
	default:
		return StatusUnknown, fmt.Errorf("unknown status %q", s)
	}
}

// Sample is one timestamped observation of the portal.
// It is a value type; once built it is never modified.
type Sample struct {
	Timestamp  time.Time
	LatencyMs  int // LatencyNotAvailable when absent
	StatusCode int // 0 when absent
	Status     Status
}

// HasLatency reports whether the sample carries a latency value.
func (s Sample) HasLatency() bool {
	return s.LatencyMs >= 0
}

// HasStatusCode reports whether the sample carries an HTTP status code.
func (s Sample) HasStatusCode() bool {
	return s.StatusCode > 0
}

// Period selects which historical range is fetched.
type Period int

const (
	Last12H Period = iota
	Last24H
	Today
)

// DefaultPeriod is selected on startup.
const DefaultPeriod = Today

// Periods lists every period in selector order.
var Periods = []Period{Last12H, Last24H, Today}

// Token returns the path token used by the historical endpoint.
func (p Period) Token() string {
	switch p {
	case Last12H:
		return "12H"
	case Last24H:
		return "24H"
	case Today:
		return "TDY"
	default:
		return ""
	}
}

// String returns the short human name ("12h", "24h", "today").
func (p Period) String() string {
	switch p {
	case Last12H:
		return "12h"
	case Last24H:
		return "24h"
	case Today:
		return "today"
	default:
		return fmt.Sprintf("Period(%d)", int(p))
	}
}

// Label returns the long description shown next to the selector.
func (p Period) Label() string {
	switch p {
	case Last12H:
		return "Last 12 hours"
	case Last24H:
		return "Last day"
	case Today:
		return "Current day"
	default:
		return ""
	}
}

// Valid reports whether p is one of the known periods.
func (p Period) Valid() bool {
	return p >= Last12H && p <= Today
}

// Next returns the following period in selector order, wrapping around.
func (p Period) Next() Period {
	return Periods[(int(p)+1)%len(Periods)]
}

// ParsePeriod accepts either the endpoint token ("12H", "24H", "TDY") or the
// short name ("12h", "24h", "today"), case-insensitively.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "12h":
		return Last12H, nil
	case "24h":
		return Last24H, nil
	case "tdy", "today":
		return Today, nil
	default:
		return DefaultPeriod, fmt.Errorf("unknown period %q (want 12h, 24h or today)", s)
	}
}
