package tui

import "github.com/charmbracelet/lipgloss"

// severity represents the alert level for a metric value.
type severity int

const (
	severityNormal   severity = iota
	severityWarning           // yellow
	severityCritical          // red
)

// latencySeverity returns Warning when latency > 500ms, Critical when > 1000ms.
// Absent latency (negative) is normal.
func latencySeverity(ms float64) severity {
	switch {
	case ms > 1000:
		return severityCritical
	case ms > 500:
		return severityWarning
	default:
		return severityNormal
	}
}

// statusCodeSeverity returns Warning for 4xx and Critical for 5xx codes.
func statusCodeSeverity(code int) severity {
	switch {
	case code >= 500:
		return severityCritical
	case code >= 400:
		return severityWarning
	default:
		return severityNormal
	}
}

// uptimeSeverity returns Warning below 99% and Critical below 95%.
func uptimeSeverity(pct float64) severity {
	switch {
	case pct < 95:
		return severityCritical
	case pct < 99:
		return severityWarning
	default:
		return severityNormal
	}
}

// severityToStyle maps a severity level to the appropriate lipgloss style.
func severityToStyle(s severity) lipgloss.Style {
	switch s {
	case severityWarning:
		return StyleYellow
	case severityCritical:
		return StyleRed
	default:
		return lipgloss.NewStyle()
	}
}

// titleStyle keeps card titles dim unless a threshold is crossed.
func titleStyle(s severity) lipgloss.Style {
	if s == severityNormal {
		return StyleDim
	}
	return severityToStyle(s).Bold(true)
}
