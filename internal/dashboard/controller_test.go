package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/portalmon/internal/client"
	pmerrors "github.com/dm/portalmon/internal/errors"
	"github.com/dm/portalmon/internal/logger"
	"github.com/dm/portalmon/internal/model"
)

// MockStatusClient is a Fetcher whose behaviour is set per test.
type MockStatusClient struct {
	mu                  sync.Mutex
	calls               []model.Period
	FetchHistoricalFunc func(ctx context.Context, period model.Period) ([]model.Sample, error)
}

func (m *MockStatusClient) FetchHistorical(ctx context.Context, period model.Period) ([]model.Sample, error) {
	m.mu.Lock()
	m.calls = append(m.calls, period)
	m.mu.Unlock()
	if m.FetchHistoricalFunc != nil {
		return m.FetchHistoricalFunc(ctx, period)
	}
	return nil, nil
}

// fakeChannel is a LiveChannel fed by the test.
type fakeChannel struct {
	events chan client.LiveEvent
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{events: make(chan client.LiveEvent, 8)}
}

func (f *fakeChannel) Events() <-chan client.LiveEvent { return f.events }

var t0 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func hist(latencies ...int) []model.Sample {
	out := make([]model.Sample, len(latencies))
	for i, l := range latencies {
		out[i] = model.Sample{Timestamp: t0.Add(time.Duration(i) * time.Minute), LatencyMs: l}
	}
	return out
}

func liveSample(latency int) model.Sample {
	return model.Sample{Timestamp: t0.Add(time.Hour), LatencyMs: latency, StatusCode: 200, Status: model.StatusUp}
}

func fixedNow() time.Time { return t0.Add(2 * time.Hour) }

func newController(f Fetcher, live LiveChannel) *Controller {
	return New(f, live, Options{Now: fixedNow, Logger: logger.NewBufferLogger()})
}

// run executes cmd and, for batches, every command in it, returning the
// produced messages. Commands that block on the live channel are skipped.
func run(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(t, c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func TestNew_Defaults(t *testing.T) {
	c := New(nil, nil, Options{Period: model.Period(99)})
	assert.Equal(t, model.DefaultPeriod, c.Period())
	assert.Equal(t, model.Connecting, c.Connectivity())
	assert.Empty(t, c.CurrentWindow())
	assert.False(t, c.Fetching())
	assert.True(t, c.LastUpdate().IsZero())
	assert.False(t, c.CurrentSnapshot().HasLatest)
}

func TestInit_FetchesDefaultPeriod(t *testing.T) {
	m := &MockStatusClient{FetchHistoricalFunc: func(_ context.Context, p model.Period) ([]model.Sample, error) {
		return hist(10, 20, 30), nil
	}}
	c := newController(m, nil)

	msgs := run(t, c.Init())
	require.Len(t, msgs, 1)
	assert.True(t, c.Fetching())

	hm, ok := msgs[0].(HistoricalMsg)
	require.True(t, ok)
	assert.Equal(t, model.Today, hm.Period)

	assert.Nil(t, c.Update(hm))
	assert.False(t, c.Fetching())
	assert.Equal(t, hist(10, 20, 30), c.CurrentWindow())
	assert.Equal(t, fixedNow(), c.LastUpdate())
	assert.Equal(t, []model.Period{model.Today}, m.calls)
}

func TestHistoricalThenLiveSample(t *testing.T) {
	live := newFakeChannel()
	c := newController(&MockStatusClient{}, live)

	c.Update(HistoricalMsg{Period: model.Today, Samples: hist(10, 20, 30)})
	sample := liveSample(12)
	cmd := c.Update(LiveMsg{Event: client.LiveEvent{Kind: client.EventSample, Sample: sample}})
	require.NotNil(t, cmd, "listener must be re-armed after a live message")

	window := c.CurrentWindow()
	require.Len(t, window, 4)
	assert.Equal(t, sample, window[3])

	snap := c.CurrentSnapshot()
	assert.True(t, snap.HasLatest)
	assert.Equal(t, sample, snap.Latest)
	assert.InDelta(t, 18.0, snap.AverageLatencyMs, 1e-9)
	assert.Equal(t, model.DirectionDown, snap.Trend.Direction)
	assert.InDelta(t, 33.3, snap.Trend.MagnitudePercent, 1e-9)
	assert.Equal(t, 4, snap.Points)
}

func TestLiveSampleLargeLatencyAveragesExactly(t *testing.T) {
	c := newController(&MockStatusClient{}, newFakeChannel())

	sample := liveSample(400_000)
	c.Update(LiveMsg{Event: client.LiveEvent{Kind: client.EventSample, Sample: sample}})

	snap := c.CurrentSnapshot()
	assert.Equal(t, 1, snap.Points)
	assert.InDelta(t, 400_000.0, snap.AverageLatencyMs, 1e-9)
	assert.Equal(t, model.DirectionNeutral, snap.Trend.Direction)
	assert.InDelta(t, 0.0, snap.Trend.MagnitudePercent, 1e-9)
}

func TestLiveErroredKeepsWindow(t *testing.T) {
	c := newController(&MockStatusClient{}, newFakeChannel())
	c.Update(LiveMsg{Event: client.LiveEvent{Kind: client.EventOpened}})
	require.Equal(t, model.Connected, c.Connectivity())

	c.Update(HistoricalMsg{Period: model.Today, Samples: hist(5, 6)})
	before := c.CurrentWindow()

	c.Update(LiveMsg{Event: client.LiveEvent{
		Kind: client.EventErrored,
		Err:  pmerrors.Channel(errors.New("EOF"), "Live stream interrupted"),
	}})
	assert.Equal(t, model.Disconnected, c.Connectivity())
	assert.False(t, c.Connectivity().IsConnected())
	assert.Equal(t, before, c.CurrentWindow())

	// A later reconnect flips back.
	c.Update(LiveMsg{Event: client.LiveEvent{Kind: client.EventOpened}})
	assert.Equal(t, model.Connected, c.Connectivity())
}

func TestConnectingToDisconnected(t *testing.T) {
	c := newController(nil, newFakeChannel())
	c.Update(LiveMsg{Event: client.LiveEvent{Kind: client.EventErrored}})
	assert.Equal(t, model.Disconnected, c.Connectivity())
}

func TestOutOfOrderFetchesLastWriterWins(t *testing.T) {
	m := &MockStatusClient{FetchHistoricalFunc: func(_ context.Context, p model.Period) ([]model.Sample, error) {
		switch p {
		case model.Last12H:
			return hist(1, 2), nil
		case model.Last24H:
			return hist(3, 4, 5), nil
		}
		return nil, nil
	}}
	c := newController(m, nil)

	old := c.SelectPeriod(model.Last12H)
	newer := c.SelectPeriod(model.Last24H)
	require.NotNil(t, old)
	require.NotNil(t, newer)
	assert.Equal(t, model.Last24H, c.Period())

	// The newer fetch resolves first, the stale one last and still wins.
	c.Update(newer())
	assert.Equal(t, hist(3, 4, 5), c.CurrentWindow())
	assert.True(t, c.Fetching())

	c.Update(old())
	assert.Equal(t, hist(1, 2), c.CurrentWindow())
	assert.Equal(t, model.Last24H, c.Period())
	assert.False(t, c.Fetching())
}

func TestReplaceDropsEarlierLiveAppends(t *testing.T) {
	c := newController(&MockStatusClient{}, newFakeChannel())
	c.Update(HistoricalMsg{Period: model.Today, Samples: hist(10)})
	c.Update(LiveMsg{Event: client.LiveEvent{Kind: client.EventSample, Sample: liveSample(99)}})
	require.Len(t, c.CurrentWindow(), 2)

	c.Update(HistoricalMsg{Period: model.Today, Samples: hist(7, 8)})
	assert.Equal(t, hist(7, 8), c.CurrentWindow())

	// The latest live sample is still shown even though it left the window.
	snap := c.CurrentSnapshot()
	assert.True(t, snap.HasLatest)
	assert.Equal(t, 99, snap.Latest.LatencyMs)
}

func TestFetchFailureLeavesWindowUntouched(t *testing.T) {
	log := logger.NewBufferLogger()
	m := &MockStatusClient{FetchHistoricalFunc: func(_ context.Context, p model.Period) ([]model.Sample, error) {
		return nil, pmerrors.Network(errors.New("connection refused"), "Historical fetch failed")
	}}
	c := New(m, nil, Options{Logger: log, Now: fixedNow})
	c.Update(HistoricalMsg{Period: model.Today, Samples: hist(1, 2, 3)})
	before := c.CurrentWindow()
	beforeUpdate := c.LastUpdate()

	cmd := c.SelectPeriod(model.Last12H)
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Nil(t, c.Update(msg), "failed fetches are not retried")

	assert.Equal(t, before, c.CurrentWindow())
	assert.Equal(t, beforeUpdate, c.LastUpdate())
	assert.Equal(t, model.Last12H, c.Period())
	assert.True(t, log.HasLevel("warn"))
}

func TestSelectSamePeriodIsNoop(t *testing.T) {
	m := &MockStatusClient{}
	c := newController(m, nil)
	assert.Nil(t, c.SelectPeriod(model.Today))
	assert.Nil(t, c.SelectPeriod(model.Period(-1)))
	assert.False(t, c.Fetching())

	require.NotNil(t, c.Refresh())
	assert.True(t, c.Fetching())
}

func TestSelectPeriodDoesNotTouchLive(t *testing.T) {
	c := newController(&MockStatusClient{}, newFakeChannel())
	c.Update(LiveMsg{Event: client.LiveEvent{Kind: client.EventOpened}})
	c.SelectPeriod(model.Last24H)
	assert.Equal(t, model.Connected, c.Connectivity())
}

func TestWindowBoundedUnderLiveStream(t *testing.T) {
	c := newController(nil, newFakeChannel())
	for i := 0; i < model.MaxWindow+25; i++ {
		c.Update(LiveMsg{Event: client.LiveEvent{Kind: client.EventSample, Sample: liveSample(i + 1)}})
	}
	window := c.CurrentWindow()
	require.Len(t, window, model.MaxWindow)
	assert.Equal(t, 26, window[0].LatencyMs)
	assert.Equal(t, model.MaxWindow+25, window[len(window)-1].LatencyMs)
}

func TestListenCmd(t *testing.T) {
	live := newFakeChannel()
	c := newController(nil, live)

	ev := client.LiveEvent{Kind: client.EventSample, Sample: liveSample(5)}
	live.events <- ev
	msg := listenCmd(live)()
	assert.Equal(t, LiveMsg{Event: ev}, msg)

	close(live.events)
	msg = listenCmd(live)()
	assert.Equal(t, LiveClosedMsg{}, msg)

	c.Update(LiveMsg{Event: client.LiveEvent{Kind: client.EventOpened}})
	assert.Nil(t, c.Update(msg))
	assert.Equal(t, model.Disconnected, c.Connectivity())

	assert.Nil(t, listenCmd(nil))
}

func TestRolloverRefetchesToday(t *testing.T) {
	m := &MockStatusClient{}
	c := newController(m, nil)

	cmd := c.Update(RolloverMsg(t0))
	require.NotNil(t, cmd)
	hm, ok := cmd().(HistoricalMsg)
	require.True(t, ok)
	assert.Equal(t, model.Today, hm.Period)

	c.Update(hm)
	c.SelectPeriod(model.Last12H)
	assert.Nil(t, c.Update(RolloverMsg(t0)), "only the today range depends on the date")
}

func TestUnknownMessageIgnored(t *testing.T) {
	c := newController(nil, nil)
	assert.Nil(t, c.Update(tea.WindowSizeMsg{Width: 80, Height: 24}))
}
