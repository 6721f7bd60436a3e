// Package tui renders the dashboard controller's state in the terminal.
// It holds no data of its own beyond layout and the update pulse.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/portalmon/internal/client"
	"github.com/dm/portalmon/internal/dashboard"
	"github.com/dm/portalmon/internal/model"
)

// pulseDuration is how long the header highlights a fresh live sample.
const pulseDuration = 600 * time.Millisecond

// App is the root Bubble Tea model for portalmon.
type App struct {
	ctrl    *dashboard.Controller
	baseURL string

	// Layout
	width, height int

	// UI state
	showHelp bool
	help     help.Model
	pulse    bool
	pulseSeq int
}

// NewApp creates a new App rendering ctrl. baseURL is shown in the header.
func NewApp(ctrl *dashboard.Controller, baseURL string) *App {
	return &App{
		ctrl:    ctrl,
		baseURL: baseURL,
		help:    help.New(),
	}
}

// Init implements tea.Model. Starts the initial fetch and the live listener.
func (app *App) Init() tea.Cmd {
	return app.ctrl.Init()
}

// Update implements tea.Model. It is the single state-mutation entry point.
func (app *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		app.width = msg.Width
		app.height = msg.Height

	case dashboard.LiveMsg:
		cmd := app.ctrl.Update(msg)
		if msg.Event.Kind == client.EventSample {
			return app, tea.Batch(cmd, app.startPulse())
		}
		return app, cmd

	case dashboard.HistoricalMsg, dashboard.LiveClosedMsg, dashboard.RolloverMsg:
		return app, app.ctrl.Update(msg)

	case pulseEndMsg:
		if msg.seq == app.pulseSeq {
			app.pulse = false
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return app, tea.Quit
		case key.Matches(msg, keys.Refresh):
			if app.ctrl.Fetching() {
				return app, nil
			}
			return app, app.ctrl.Refresh()
		case key.Matches(msg, keys.Help):
			app.showHelp = !app.showHelp
		case key.Matches(msg, keys.Period12H):
			return app, app.ctrl.SelectPeriod(model.Last12H)
		case key.Matches(msg, keys.Period24H):
			return app, app.ctrl.SelectPeriod(model.Last24H)
		case key.Matches(msg, keys.PeriodToday):
			return app, app.ctrl.SelectPeriod(model.Today)
		case key.Matches(msg, keys.NextPeriod):
			return app, app.ctrl.SelectPeriod(app.ctrl.Period().Next())
		}
	}

	return app, nil
}

// startPulse turns the highlight on and schedules its end.
func (app *App) startPulse() tea.Cmd {
	app.pulse = true
	app.pulseSeq++
	seq := app.pulseSeq
	return tea.Tick(pulseDuration, func(time.Time) tea.Msg {
		return pulseEndMsg{seq: seq}
	})
}

// View implements tea.Model. Renders the full TUI.
func (app *App) View() string {
	parts := []string{
		renderHeader(app),
		renderCardsRow(app),
		renderOverview(app),
		renderFooter(app),
	}
	return strings.Join(parts, "\n")
}

func (app *App) viewWidth() int {
	if app.width <= 0 {
		return 80
	}
	return app.width
}
