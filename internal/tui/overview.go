package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/portalmon/internal/format"
	"github.com/dm/portalmon/internal/model"
)

// chartRows is the height of the latency chart in text rows.
const chartRows = 4

// renderOverview renders the period selector and the latency chart over the
// current window.
func renderOverview(app *App) string {
	width := app.viewWidth()
	period := app.ctrl.Period()

	title := renderPeriodSelector(period)
	if app.ctrl.Fetching() {
		title += StyleDim.Render("  loading…")
	}

	latencies := app.ctrl.Latencies()
	if len(latencies) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			StyleDim.Render("No samples for "+strings.ToLower(period.Label())),
		)
	}

	chartWidth := width - 2
	if chartWidth < 1 {
		chartWidth = 1
	}
	chart := RenderChart(resample(latencies, chartWidth), chartWidth, chartRows, colorGreen)

	stats := StyleDim.Render(fmt.Sprintf("min %s  max %s  %s points",
		format.FormatLatency(slices.Min(latencies)),
		format.FormatLatency(slices.Max(latencies)),
		format.FormatNumber(int64(len(latencies))),
	))

	return lipgloss.JoinVertical(lipgloss.Left, title, chart, stats)
}

// renderPeriodSelector renders "[1] 12h  [2] 24h  [3] today" with the active
// period highlighted, followed by its label.
func renderPeriodSelector(active model.Period) string {
	parts := make([]string, len(model.Periods))
	for i, p := range model.Periods {
		label := fmt.Sprintf("%d %s", i+1, p)
		if p == active {
			parts[i] = StylePeriodActive.Render(label)
		} else {
			parts[i] = StylePeriodInactive.Render(label)
		}
	}
	return strings.Join(parts, " ") + "  " + StyleDim.Render(active.Label())
}
