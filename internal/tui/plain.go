package tui

import (
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/portalmon/internal/client"
	"github.com/dm/portalmon/internal/dashboard"
	pmerrors "github.com/dm/portalmon/internal/errors"
	"github.com/dm/portalmon/internal/format"
	"github.com/dm/portalmon/internal/model"
)

// LineApp drives the same controller as App but prints one line per event
// instead of drawing a screen. It is used when stdout is not a terminal.
type LineApp struct {
	ctrl *dashboard.Controller
	out  io.Writer
	now  func() time.Time
}

// NewLineApp creates a LineApp writing to out.
func NewLineApp(ctrl *dashboard.Controller, out io.Writer) *LineApp {
	return &LineApp{ctrl: ctrl, out: out, now: time.Now}
}

// Init implements tea.Model.
func (l *LineApp) Init() tea.Cmd {
	return l.ctrl.Init()
}

// Update implements tea.Model.
func (l *LineApp) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboard.LiveMsg:
		cmd := l.ctrl.Update(msg)
		switch msg.Event.Kind {
		case client.EventSample:
			l.println(FormatSampleLine(msg.Event.Sample, l.ctrl.CurrentSnapshot()))
		case client.EventOpened:
			l.println(l.stamp() + " live channel connected")
		case client.EventErrored:
			l.println(l.stamp() + " live channel lost: " + pmerrors.Summary(msg.Event.Err))
		}
		return l, cmd

	case dashboard.HistoricalMsg:
		cmd := l.ctrl.Update(msg)
		if msg.Err != nil {
			l.println(fmt.Sprintf("%s historical %s failed: %s", l.stamp(), msg.Period, pmerrors.Summary(msg.Err)))
		} else {
			l.println(fmt.Sprintf("%s loaded %d samples for %s (avg %s)", l.stamp(), len(msg.Samples),
				msg.Period, format.FormatLatency(l.ctrl.CurrentSnapshot().AverageLatencyMs)))
		}
		return l, cmd

	case dashboard.LiveClosedMsg:
		l.ctrl.Update(msg)
		return l, tea.Quit

	case dashboard.RolloverMsg:
		return l, l.ctrl.Update(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return l, tea.Quit
		}
	}
	return l, nil
}

// View implements tea.Model. Output is written directly in Update.
func (l *LineApp) View() string {
	return ""
}

func (l *LineApp) stamp() string {
	return "[" + format.FormatTimestamp(l.now()) + "]"
}

func (l *LineApp) println(s string) {
	fmt.Fprintln(l.out, s)
}

// FormatSampleLine renders a live sample as
// "[2006-01-02 15:04:05] UP 200 123 ms (avg 110 ms)".
func FormatSampleLine(s model.Sample, snap model.Snapshot) string {
	avg := format.Placeholder
	if snap.Points > 0 {
		avg = format.FormatLatency(snap.AverageLatencyMs)
	}
	return fmt.Sprintf("[%s] %s %s %s (avg %s)",
		format.FormatTimestamp(s.Timestamp),
		s.Status,
		format.FormatStatusCode(s.StatusCode),
		format.FormatLatencyMs(s.LatencyMs),
		avg,
	)
}
