package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/dm/portalmon/internal/engine"
	"github.com/dm/portalmon/internal/format"
	"github.com/dm/portalmon/internal/model"
)

// RenderHistory prints a fetched period as a table for the history command.
// Only the newest last samples are listed when last > 0; the summary line
// always covers the whole period.
func RenderHistory(p model.Period, samples []model.Sample, last int) string {
	title := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s (%s)", p.Label(), p.Token()))
	if len(samples) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, StyleDim.Render("  (no samples)"))
	}

	rows := samples
	if last > 0 && len(rows) > last {
		rows = rows[len(rows)-last:]
	}

	t := ltable.New().
		Headers("Time", "Latency").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(colorGray).Padding(0, 1)
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if col == 1 {
				return base.Inherit(severityToStyle(latencySeverity(float64(rows[row].LatencyMs))))
			}
			return base.Foreground(colorWhite)
		}).
		BorderStyle(lipgloss.NewStyle().Foreground(colorGray)).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(true).
		BorderColumn(false)

	for _, s := range rows {
		t.Row(format.FormatTimestamp(s.Timestamp), format.FormatLatencyMs(s.LatencyMs))
	}

	snap := engine.CalcSnapshot(samples, model.Sample{}, false)
	summary := fmt.Sprintf("%s samples  avg %s", format.FormatNumber(int64(snap.Points)),
		format.FormatLatency(snap.AverageLatencyMs))
	if len(rows) < len(samples) {
		summary += fmt.Sprintf("  (showing last %d)", len(rows))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, t.Render(), StyleDim.Render(summary))
}
