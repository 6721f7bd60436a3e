package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks is the 8-level block character set for sparklines.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline converts a slice of float64 values into a block sparkline
// string of exactly `width` characters. The sparkline is colored using the provided
// lipgloss color style.
//
// Rules:
//   - Empty values → return width spaces
//   - All zeros → return all '▁' (floor level)
//   - Values longer than width → use last width values
//   - Fewer values than width → left-pad with spaces
func RenderSparkline(values []float64, width int, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat(" ", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	maxVal := slices.Max(values)

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", width-len(values)))
	for _, v := range values {
		sb.WriteRune(sparkBlocks[level(v, maxVal, len(sparkBlocks))])
	}

	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}

// RenderChart draws values as a bar chart `rows` lines tall, each line
// exactly `width` characters. Each row adds 8 levels of resolution.
// Like RenderSparkline it keeps the last width values and left-pads.
func RenderChart(values []float64, width, rows int, color lipgloss.Color) string {
	if width <= 0 || rows <= 0 {
		return ""
	}
	if rows == 1 {
		return RenderSparkline(values, width, color)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	var maxVal float64
	if len(values) > 0 {
		maxVal = slices.Max(values)
	}

	steps := rows * len(sparkBlocks)
	heights := make([]int, len(values))
	for i, v := range values {
		heights[i] = level(v, maxVal, steps)
	}

	pad := strings.Repeat(" ", width-len(values))
	lines := make([]string, rows)
	for r := 0; r < rows; r++ {
		// r=0 is the top line; its floor is the highest.
		floor := (rows - 1 - r) * len(sparkBlocks)
		var sb strings.Builder
		sb.WriteString(pad)
		for _, h := range heights {
			switch {
			case h >= floor+len(sparkBlocks)-1:
				sb.WriteRune(sparkBlocks[len(sparkBlocks)-1])
			case h >= floor && (h > floor || r == rows-1):
				sb.WriteRune(sparkBlocks[h-floor])
			case r == rows-1:
				sb.WriteRune(sparkBlocks[0])
			default:
				sb.WriteRune(' ')
			}
		}
		lines[r] = sb.String()
	}

	return lipgloss.NewStyle().Foreground(color).Render(strings.Join(lines, "\n"))
}

// level maps v onto [0, steps-1] relative to maxVal.
func level(v, maxVal float64, steps int) int {
	if maxVal <= 0 {
		return 0
	}
	idx := int(v / maxVal * float64(steps-1))
	if idx < 0 {
		return 0
	}
	if idx > steps-1 {
		return steps - 1
	}
	return idx
}

// resample shrinks values to at most width points by averaging consecutive
// buckets, so a whole period fits the chart instead of only its tail.
func resample(values []float64, width int) []float64 {
	n := len(values)
	if width <= 0 || n <= width {
		return values
	}
	out := make([]float64, width)
	for i := range out {
		lo := i * n / width
		hi := (i + 1) * n / width
		var sum float64
		for _, v := range values[lo:hi] {
			sum += v
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}
