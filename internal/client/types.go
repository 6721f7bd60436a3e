package client

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/dm/portalmon/internal/model"
)

// historicalPoint is one entry of the /historical-data array.
type historicalPoint struct {
	Timestamp string   `json:"timestamp"`
	Latency   *float64 `json:"latency"`
}

// liveMessage is the JSON payload of one status-stream event.
// On upstream connection failures latency is -1, statusCode is null and
// error carries a description.
type liveMessage struct {
	Timestamp  string   `json:"timestamp"`
	Latency    *float64 `json:"latency"`
	Status     string   `json:"status"`
	StatusCode *int     `json:"statusCode"`
	Error      string   `json:"error,omitempty"`
}

// naiveLayouts cover timestamps without a zone, as produced by
// datetime.isoformat(). Fractional seconds are accepted by Parse even
// though the layouts omit them.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseTimestamp reads an ISO-8601 timestamp. Values without a zone are
// interpreted in local time.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

// latencyMs converts the wire latency into whole milliseconds.
// Null and negative values mean absent.
func latencyMs(v *float64) int {
	if v == nil || *v < 0 || math.IsNaN(*v) {
		return model.LatencyNotAvailable
	}
	return int(math.Round(*v))
}

func (p historicalPoint) sample() (model.Sample, error) {
	ts, err := parseTimestamp(p.Timestamp)
	if err != nil {
		return model.Sample{}, err
	}
	return model.Sample{
		Timestamp: ts,
		LatencyMs: latencyMs(p.Latency),
	}, nil
}

func (m liveMessage) sample() (model.Sample, error) {
	ts, err := parseTimestamp(m.Timestamp)
	if err != nil {
		return model.Sample{}, err
	}
	status, err := model.ParseStatus(m.Status)
	if err != nil {
		return model.Sample{}, err
	}
	s := model.Sample{
		Timestamp: ts,
		LatencyMs: latencyMs(m.Latency),
		Status:    status,
	}
	if m.StatusCode != nil {
		s.StatusCode = *m.StatusCode
	}
	return s, nil
}

// decodeLiveSample parses one event payload into a Sample.
func decodeLiveSample(data []byte) (model.Sample, error) {
	var m liveMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return model.Sample{}, err
	}
	return m.sample()
}
