package model

// Direction is the sign of the latest latency relative to the window average.
type Direction int

const (
	DirectionNeutral Direction = iota
	DirectionUp
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return "neutral"
	}
}

// Arrow returns the glyph drawn next to the trend magnitude.
func (d Direction) Arrow() string {
	switch d {
	case DirectionUp:
		return "↗"
	case DirectionDown:
		return "↘"
	default:
		return "→"
	}
}

// Trend compares the latest latency with the window average.
// MagnitudePercent is only meaningful when HasMagnitude is true.
type Trend struct {
	Direction        Direction
	MagnitudePercent float64
	HasMagnitude     bool
}

// Snapshot is the derived view of the window plus the latest live sample.
// It is recomputed on every window change and never stored upstream.
type Snapshot struct {
	Latest           Sample
	HasLatest        bool
	AverageLatencyMs float64
	Trend            Trend
	UptimePercent    float64
	HasUptime        bool
	Points           int
}

// Connectivity reflects the health of the live channel.
type Connectivity int

const (
	Connecting Connectivity = iota
	Connected
	Disconnected
)

func (c Connectivity) String() string {
	switch c {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "connecting"
	}
}

// IsConnected collapses the tri-state into the boolean the dashboard shows.
func (c Connectivity) IsConnected() bool {
	return c == Connected
}
