// Package format renders dashboard values as short strings. Absent values
// render as Placeholder.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Placeholder is shown for any value that is not available.
const Placeholder = "---"

// FormatLatency formats a latency value in milliseconds.
// Values >= 1000 ms are shown as seconds with 2 decimal places,
// smaller values as whole milliseconds.
// Negative values (absent latency) return "---".
func FormatLatency(ms float64) string {
	if ms < 0 {
		return Placeholder
	}
	if ms >= 1000 {
		return fmt.Sprintf("%.2f s", ms/1000)
	}
	return fmt.Sprintf("%.0f ms", ms)
}

// FormatLatencyMs is FormatLatency for a sample's integer latency.
func FormatLatencyMs(ms int) string {
	return FormatLatency(float64(ms))
}

// FormatStatusCode formats an HTTP status code; 0 (absent) returns "---".
func FormatStatusCode(code int) string {
	if code <= 0 {
		return Placeholder
	}
	return strconv.Itoa(code)
}

// FormatPercent formats a percentage with one decimal place.
// Example: 34.5 → "34.5%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatClock formats the time of day as HH:MM:SS; the zero time returns "---".
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format("15:04:05")
}

// FormatTimestamp formats a full local date and time; the zero time returns "---".
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format(time.DateTime)
}

// FormatNumber formats an integer with locale-style comma separators.
// Example: 12345678 → "12,345,678".
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		return "-" + insertCommas(s[1:])
	}
	return insertCommas(s)
}

// insertCommas inserts comma separators into a digit string every 3 digits from the right.
func insertCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var buf strings.Builder
	lead := n % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}
