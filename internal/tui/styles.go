package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/portalmon/internal/model"
)

// Color constants for the dashboard palette.
var (
	colorGreen  = lipgloss.Color("#10b981")
	colorYellow = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#6b7280")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorCyan   = lipgloss.Color("#06b6d4")
	colorPurple = lipgloss.Color("#8b5cf6")
	colorWhite  = lipgloss.Color("#f8fafc")
	colorDark   = lipgloss.Color("#1e293b")
)

// Status styles, used for the portal status badge.
var (
	StyleStatusUp      = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	StyleStatusLoading = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
	StyleStatusDown    = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	StyleStatusUnknown = lipgloss.NewStyle().Foreground(colorGray)
)

// StyleHeader is the full-width dark header bar.
var StyleHeader = lipgloss.NewStyle().
	Background(colorDark).
	Foreground(colorWhite).
	Padding(0, 1)

// StylePeriodActive highlights the selected period in the chart title.
var StylePeriodActive = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorDark).
	Background(colorBlue).
	Padding(0, 1)

// StylePeriodInactive is used for the other periods.
var StylePeriodInactive = lipgloss.NewStyle().
	Foreground(colorGray).
	Padding(0, 1)

// Utility styles.
var (
	StyleError = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleDim   = lipgloss.NewStyle().Foreground(colorGray)
	StylePulse = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
)

// Named color styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(colorRed)
)

// StatusStyle returns the badge style for a portal status.
func StatusStyle(s model.Status) lipgloss.Style {
	switch s {
	case model.StatusUp:
		return StyleStatusUp
	case model.StatusLoading:
		return StyleStatusLoading
	case model.StatusDown:
		return StyleStatusDown
	default:
		return StyleStatusUnknown
	}
}

// ConnectivityStyle returns the style of the live channel indicator.
func ConnectivityStyle(c model.Connectivity) lipgloss.Style {
	switch c {
	case model.Connected:
		return StyleGreen.Bold(true)
	case model.Disconnected:
		return StyleError
	default:
		return StyleYellow
	}
}
