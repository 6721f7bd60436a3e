package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/dm/portalmon/internal/format"
	"github.com/dm/portalmon/internal/model"
)

// renderHeader renders the top header bar.
//
// Layout:
//
//	left:   "Portal <base URL>"
//	center: portal status badge and live channel indicator
//	right:  "Updated HH:MM:SS", highlighted while a fresh sample pulses
func renderHeader(app *App) string {
	width := app.viewWidth()

	snap := app.ctrl.CurrentSnapshot()
	status := model.StatusLoading
	if snap.HasLatest {
		status = snap.Latest.Status
	}
	conn := app.ctrl.Connectivity()

	center := StatusStyle(status).Render("● "+status.String()) +
		"  " + ConnectivityStyle(conn).Render(connectivityLabel(conn))

	right := "Updated " + format.FormatClock(app.ctrl.LastUpdate())
	if app.pulse {
		right = StylePulse.Render(right)
	} else {
		right = StyleDim.Render(right)
	}

	// StyleHeader has Padding(0, 1) so inner content width = total width - 2.
	innerWidth := width - 2
	centerVW := lipgloss.Width(center)
	rightVW := lipgloss.Width(right)

	// The URL gives way first when space runs out.
	leftMax := innerWidth - centerVW - rightVW - 2
	left := ""
	if leftMax > 0 {
		left = ansi.Truncate("Portal "+app.baseURL, leftMax, "…")
	}
	leftVW := lipgloss.Width(left)

	spacing := innerWidth - leftVW - centerVW - rightVW
	if spacing < 0 {
		spacing = 0
	}
	leftSpacing := spacing / 2
	rightSpacing := spacing - leftSpacing

	row := left +
		strings.Repeat(" ", leftSpacing) +
		center +
		strings.Repeat(" ", rightSpacing) +
		right
	row = ansi.Truncate(row, innerWidth, "")

	return StyleHeader.Width(width).MaxWidth(width).Render(row)
}

// connectivityLabel is the live channel indicator text.
func connectivityLabel(c model.Connectivity) string {
	switch c {
	case model.Connected:
		return "● LIVE"
	case model.Disconnected:
		return "● RECONNECTING"
	default:
		return "● CONNECTING"
	}
}
