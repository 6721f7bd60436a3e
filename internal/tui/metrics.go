package tui

import (
	"fmt"
	"net/http"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/portalmon/internal/format"
	"github.com/dm/portalmon/internal/model"
)

// card is the content of one summary card.
type card struct {
	title string
	value string
	sub   string
	color lipgloss.Color
	style lipgloss.Style // title style, dim unless a threshold is crossed
}

// renderMetricCard renders a single summary card.
//
// Layout (3 rows inside a rounded border):
//
//	╭──────────────────╮
//	│ Title            │   ← dim; yellow/red when a threshold is crossed
//	│ 123 ms           │   ← bold, card color
//	│ ↘ 12.5% vs avg   │   ← dim detail line
//	╰──────────────────╯
func renderMetricCard(c card, cardWidth int) string {
	const minCardWidth = 8
	if cardWidth < minCardWidth {
		cardWidth = minCardWidth
	}

	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(c.color)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGray).
		Padding(0, 1).
		Width(cardWidth - 4)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		c.style.Render(c.title),
		valueStyle.Render(c.value),
		StyleDim.Render(c.sub),
	))
}

// buildCards derives the four summary cards from the snapshot.
func buildCards(snap model.Snapshot) []card {
	current := card{title: "Current Latency", value: format.Placeholder, sub: format.Placeholder, color: colorGreen, style: StyleDim}
	status := card{title: "HTTP Status", value: format.Placeholder, sub: format.Placeholder, color: colorBlue, style: StyleDim}
	if snap.HasLatest {
		current.value = format.FormatLatencyMs(snap.Latest.LatencyMs)
		current.sub = trendText(snap.Trend)
		current.style = titleStyle(latencySeverity(float64(snap.Latest.LatencyMs)))

		status.value = format.FormatStatusCode(snap.Latest.StatusCode)
		status.sub = statusHint(snap.Latest.StatusCode)
		status.style = titleStyle(statusCodeSeverity(snap.Latest.StatusCode))
	}

	average := card{title: "Average Latency", value: format.Placeholder, sub: "0 points", color: colorCyan, style: StyleDim}
	if snap.Points > 0 {
		average.value = format.FormatLatency(snap.AverageLatencyMs)
		average.sub = format.FormatNumber(int64(snap.Points)) + " points"
		average.style = titleStyle(latencySeverity(snap.AverageLatencyMs))
	}

	uptime := card{title: "Uptime", value: format.Placeholder, sub: "live checks", color: colorPurple, style: StyleDim}
	if snap.HasUptime {
		uptime.value = format.FormatPercent(snap.UptimePercent)
		uptime.style = titleStyle(uptimeSeverity(snap.UptimePercent))
	}

	return []card{current, average, status, uptime}
}

// trendText renders "↘ 20.0% vs avg"; without a magnitude only the arrow is shown.
func trendText(t model.Trend) string {
	if !t.HasMagnitude {
		return t.Direction.Arrow() + " " + format.Placeholder
	}
	return fmt.Sprintf("%s %s vs avg", t.Direction.Arrow(), format.FormatPercent(t.MagnitudePercent))
}

// statusHint names the status code, "OK" for 200.
func statusHint(code int) string {
	if code <= 0 {
		return "no response"
	}
	if text := http.StatusText(code); text != "" {
		return text
	}
	return format.Placeholder
}

// renderCardsRow renders the 4 summary cards.
// Wide terminals (>= 80 cols): 1x4 horizontal row.
// Narrow terminals (< 80 cols): 2x2 grid.
func renderCardsRow(app *App) string {
	cards := buildCards(app.ctrl.CurrentSnapshot())
	width := app.viewWidth()

	if width < 80 {
		// Each card renders at (cardWidth-2) chars wide, so two fill the row at
		// cardWidth=(width+4)/2.
		cardWidth := (width + 4) / 2
		if cardWidth < 8 {
			return ""
		}
		top := lipgloss.JoinHorizontal(lipgloss.Top,
			renderMetricCard(cards[0], cardWidth),
			renderMetricCard(cards[1], cardWidth),
		)
		bottom := lipgloss.JoinHorizontal(lipgloss.Top,
			renderMetricCard(cards[2], cardWidth),
			renderMetricCard(cards[3], cardWidth),
		)
		return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	}

	cardWidth := (width + 8) / 4
	rendered := make([]string, len(cards))
	for i, c := range cards {
		rendered[i] = renderMetricCard(c, cardWidth)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
