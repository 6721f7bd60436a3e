// Package dashboard holds the state of the portal dashboard and the rules
// for changing it. Every mutation happens in Update, which the Bubble Tea
// program loop calls with one message at a time; fetches and the live
// subscription only ever produce messages.
package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dm/portalmon/internal/client"
	pmerrors "github.com/dm/portalmon/internal/errors"
	"github.com/dm/portalmon/internal/engine"
	"github.com/dm/portalmon/internal/logger"
	"github.com/dm/portalmon/internal/model"
	"github.com/dm/portalmon/internal/telemetry"
)

// Fetcher retrieves the historical samples of a period.
type Fetcher interface {
	FetchHistorical(ctx context.Context, period model.Period) ([]model.Sample, error)
}

// LiveChannel is the read side of a live subscription.
type LiveChannel interface {
	Events() <-chan client.LiveEvent
}

// Options configures a Controller. Zero values are replaced by defaults.
type Options struct {
	Period   model.Period
	Logger   logger.Logger
	Recorder telemetry.Recorder
	Now      func() time.Time
}

// Controller owns the sample window and the live connectivity state.
// It is not safe for concurrent use; only the program loop touches it.
type Controller struct {
	fetcher Fetcher
	live    LiveChannel
	log     logger.Logger
	rec     telemetry.Recorder
	now     func() time.Time

	period       model.Period
	window       *model.Window
	latest       model.Sample
	hasLatest    bool
	snapshot     model.Snapshot
	connectivity model.Connectivity
	pending      int // historical fetches in flight
	lastUpdate   time.Time
}

// New creates a Controller. live may be nil, in which case the controller
// stays in the connecting state and only shows historical data.
func New(fetcher Fetcher, live LiveChannel, opts Options) *Controller {
	if !opts.Period.Valid() {
		opts.Period = model.DefaultPeriod
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	if opts.Recorder == nil {
		opts.Recorder = telemetry.Noop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Controller{
		fetcher:      fetcher,
		live:         live,
		log:          opts.Logger,
		rec:          opts.Recorder,
		now:          opts.Now,
		period:       opts.Period,
		window:       model.NewWindow(model.MaxWindow),
		connectivity: model.Connecting,
	}
	c.recompute()
	c.rec.ConnectivityChanged(c.connectivity.String())
	return c
}

// Init fetches the initial period and starts listening to the live channel.
func (c *Controller) Init() tea.Cmd {
	return tea.Batch(c.fetchCmd(c.period), listenCmd(c.live))
}

// SelectPeriod switches the historical range. The fetch for the new period
// is returned as a command; a fetch still running for the previous period is
// not cancelled. Selecting the active period again does nothing.
func (c *Controller) SelectPeriod(p model.Period) tea.Cmd {
	if !p.Valid() || p == c.period {
		return nil
	}
	c.log.Debug("period %s -> %s", c.period, p)
	c.period = p
	return c.fetchCmd(p)
}

// Refresh re-fetches the active period.
func (c *Controller) Refresh() tea.Cmd {
	return c.fetchCmd(c.period)
}

// Update applies one message and returns the follow-up command, if any.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case HistoricalMsg:
		c.applyHistorical(msg)
		return nil

	case LiveMsg:
		c.applyLive(msg.Event)
		return listenCmd(c.live)

	case LiveClosedMsg:
		c.setConnectivity(model.Disconnected)
		return nil

	case RolloverMsg:
		if c.period != model.Today {
			return nil
		}
		c.log.Info("day rollover at %s, refreshing %s", time.Time(msg).Format(time.DateTime), c.period)
		return c.fetchCmd(c.period)
	}
	return nil
}

// applyHistorical replaces the window with a successful result. Results are
// applied in arrival order regardless of which period they belong to, so a
// slow fetch for an earlier selection can overwrite a newer one.
func (c *Controller) applyHistorical(msg HistoricalMsg) {
	if c.pending > 0 {
		c.pending--
	}
	if msg.Err != nil {
		c.log.Warn("historical %s: %s", msg.Period.Token(), pmerrors.Summary(msg.Err))
		return
	}
	if msg.Period != c.period {
		c.log.Debug("historical %s arrived after switching to %s", msg.Period.Token(), c.period.Token())
	}

	c.window.Replace(msg.Samples)
	c.lastUpdate = c.now()
	c.recompute()
}

func (c *Controller) applyLive(ev client.LiveEvent) {
	switch ev.Kind {
	case client.EventOpened:
		c.setConnectivity(model.Connected)
	case client.EventErrored:
		c.log.Debug("live channel: %s", pmerrors.Summary(ev.Err))
		c.setConnectivity(model.Disconnected)
	case client.EventSample:
		c.window.Append(ev.Sample)
		c.latest = ev.Sample
		c.hasLatest = true
		c.lastUpdate = c.now()
		c.rec.SampleReceived()
		c.recompute()
	}
}

func (c *Controller) setConnectivity(state model.Connectivity) {
	if c.connectivity == state {
		return
	}
	c.log.Info("live channel %s -> %s", c.connectivity, state)
	c.connectivity = state
	c.rec.ConnectivityChanged(state.String())
}

func (c *Controller) recompute() {
	c.snapshot = engine.CalcSnapshot(c.window.Samples(), c.latest, c.hasLatest)
	c.rec.WindowSize(c.window.Len())
}

func (c *Controller) fetchCmd(p model.Period) tea.Cmd {
	if c.fetcher == nil {
		return nil
	}
	c.pending++
	f := c.fetcher
	return func() tea.Msg {
		samples, err := f.FetchHistorical(context.Background(), p)
		return HistoricalMsg{Period: p, Samples: samples, Err: err}
	}
}

// listenCmd waits for the next live event. It is re-armed after every
// LiveMsg so at most one read is outstanding.
func listenCmd(live LiveChannel) tea.Cmd {
	if live == nil {
		return nil
	}
	events := live.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return LiveClosedMsg{}
		}
		return LiveMsg{Event: ev}
	}
}

// CurrentWindow returns a copy of the window, oldest first.
func (c *Controller) CurrentWindow() []model.Sample {
	return c.window.Samples()
}

// CurrentSnapshot returns the latest live sample and the derived metrics.
func (c *Controller) CurrentSnapshot() model.Snapshot {
	return c.snapshot
}

// Latencies returns the window latencies for charting.
func (c *Controller) Latencies() []float64 {
	return c.window.Latencies()
}

func (c *Controller) Connectivity() model.Connectivity {
	return c.connectivity
}

func (c *Controller) Period() model.Period {
	return c.period
}

// LastUpdate is the time of the last window change, zero before the first.
func (c *Controller) LastUpdate() time.Time {
	return c.lastUpdate
}

// Fetching reports whether a historical fetch is in flight.
func (c *Controller) Fetching() bool {
	return c.pending > 0
}
