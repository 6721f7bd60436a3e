package telemetry

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromRecorderCounters(t *testing.T) {
	p := NewPromRecorder()

	p.SampleReceived()
	p.SampleReceived()
	assert.Equal(t, 2.0, testutil.ToFloat64(p.received))

	p.Reconnect()
	assert.Equal(t, 1.0, testutil.ToFloat64(p.reconnects))

	p.SampleDropped("decode")
	p.SampleDropped("decode")
	assert.Equal(t, 2.0, testutil.ToFloat64(p.dropped.WithLabelValues("decode")))

	p.WindowSize(42)
	assert.Equal(t, 42.0, testutil.ToFloat64(p.window))
}

func TestPromRecorderFetches(t *testing.T) {
	p := NewPromRecorder()

	p.HistoricalFetched("TDY", 20*time.Millisecond, nil)
	p.HistoricalFetched("TDY", 30*time.Millisecond, errors.New("boom"))
	p.HistoricalFetched("12H", 10*time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.fetches.WithLabelValues("TDY", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.fetches.WithLabelValues("TDY", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.fetches.WithLabelValues("12H", "ok")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.fetchLatency))
}

func TestPromRecorderConnectivity(t *testing.T) {
	p := NewPromRecorder()

	p.ConnectivityChanged("connected")
	assert.Equal(t, 1.0, testutil.ToFloat64(p.connectivity.WithLabelValues("connected")))
	assert.Equal(t, 0.0, testutil.ToFloat64(p.connectivity.WithLabelValues("disconnected")))

	p.ConnectivityChanged("disconnected")
	assert.Equal(t, 0.0, testutil.ToFloat64(p.connectivity.WithLabelValues("connected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.connectivity.WithLabelValues("disconnected")))
}

func TestPromRecorderHandler(t *testing.T) {
	p := NewPromRecorder()
	p.SampleReceived()

	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "portalmon_live_samples_received_total 1")
}

func TestPromRecorderRegistersEveryMetric(t *testing.T) {
	p := NewPromRecorder()
	p.SampleReceived()
	p.Reconnect()
	p.WindowSize(1)
	p.SampleDropped("decode")
	p.HistoricalFetched("TDY", time.Millisecond, nil)
	p.ConnectivityChanged("connected")

	families, err := p.Registry().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"portalmon_live_samples_received_total",
		"portalmon_live_reconnects_total",
		"portalmon_window_samples",
		"portalmon_live_samples_dropped_total",
		"portalmon_historical_fetches_total",
		"portalmon_historical_fetch_seconds",
		"portalmon_live_connectivity",
	}, names)
}

func TestNoop(t *testing.T) {
	r := Noop()
	assert.NotPanics(t, func() {
		r.SampleReceived()
		r.SampleDropped("decode")
		r.HistoricalFetched("TDY", time.Second, nil)
		r.ConnectivityChanged("connected")
		r.WindowSize(3)
		r.Reconnect()
	})
}
