package engine

import (
	"math"

	"github.com/dm/portalmon/internal/model"
)

// safeDivide returns a/b, or 0 when b is zero.
func safeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// roundTo1 rounds f to one decimal place.
func roundTo1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Average returns the arithmetic mean latency over samples.
// Absent latencies count as 0; an empty slice yields 0.
func Average(samples []model.Sample) float64 {
	var sum float64
	for _, s := range samples {
		if s.HasLatency() {
			sum += float64(s.LatencyMs)
		}
	}
	return safeDivide(sum, float64(len(samples)))
}

// CalcTrend compares the current latency with the window average.
//
// Direction is down when current < average and up when current > average.
// It is neutral when they are equal, when average is 0, or when current is
// absent or non-positive; in the last two cases no magnitude is computed.
// The magnitude is |current-average| / average * 100 rounded to one decimal.
func CalcTrend(currentMs int, average float64) model.Trend {
	if average <= 0 || currentMs <= 0 {
		return model.Trend{Direction: model.DirectionNeutral}
	}

	current := float64(currentMs)
	t := model.Trend{
		MagnitudePercent: roundTo1(math.Abs((current - average) / average * 100)),
		HasMagnitude:     true,
	}
	switch {
	case current < average:
		t.Direction = model.DirectionDown
	case current > average:
		t.Direction = model.DirectionUp
	default:
		t.Direction = model.DirectionNeutral
	}
	return t
}

// Uptime returns the share of samples reporting UP among samples that carry
// a status at all. Historical points have no status, so ok is false when no
// live sample has been seen.
func Uptime(samples []model.Sample) (percent float64, ok bool) {
	var up, known int
	for _, s := range samples {
		switch s.Status {
		case model.StatusUp:
			up++
			known++
		case model.StatusDown:
			known++
		}
	}
	if known == 0 {
		return 0, false
	}
	return float64(up) / float64(known) * 100, true
}

// CalcSnapshot derives the dashboard summary from the window contents and
// the latest live sample (if any). The latest sample is passed separately
// because a historical replace can push it out of the window while the
// dashboard keeps showing it.
func CalcSnapshot(samples []model.Sample, latest model.Sample, hasLatest bool) model.Snapshot {
	avg := Average(samples)
	snap := model.Snapshot{
		Latest:           latest,
		HasLatest:        hasLatest,
		AverageLatencyMs: avg,
		Points:           len(samples),
	}
	if hasLatest {
		snap.Trend = CalcTrend(latest.LatencyMs, avg)
	}
	snap.UptimePercent, snap.HasUptime = Uptime(samples)
	return snap
}
