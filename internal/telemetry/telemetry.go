// Package telemetry counts what the dashboard sees: samples in and dropped,
// historical fetches, live channel transitions and reconnects.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives instrumentation events from the client and controller.
type Recorder interface {
	SampleReceived()
	SampleDropped(reason string)
	HistoricalFetched(period string, d time.Duration, err error)
	ConnectivityChanged(state string)
	WindowSize(n int)
	Reconnect()
}

type noop struct{}

// Noop returns a Recorder that ignores everything.
func Noop() Recorder { return noop{} }

func (noop) SampleReceived()                                {}
func (noop) SampleDropped(string)                           {}
func (noop) HistoricalFetched(string, time.Duration, error) {}
func (noop) ConnectivityChanged(string)                     {}
func (noop) WindowSize(int)                                 {}
func (noop) Reconnect()                                     {}

const namespace = "portalmon"

// connectivityStates are the values exported by the connected gauge vector.
var connectivityStates = []string{"connecting", "connected", "disconnected"}

// PromRecorder exports the events as Prometheus metrics on its own registry.
type PromRecorder struct {
	registry *prometheus.Registry

	received   prometheus.Counter
	reconnects prometheus.Counter
	window     prometheus.Gauge

	dropped      *prometheus.CounterVec
	fetches      *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
	connectivity *prometheus.GaugeVec
}

// NewPromRecorder builds the metric set and registers it on a fresh registry.
func NewPromRecorder() *PromRecorder {
	received := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "live_samples_received_total",
		Help:      "Live samples appended to the window.",
	})
	reconnects := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "live_reconnects_total",
		Help:      "Reconnect attempts of the live stream.",
	})
	window := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "window_samples",
		Help:      "Number of samples currently held in the window.",
	})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "live_samples_dropped_total",
		Help:      "Live messages dropped before reaching the window.",
	}, []string{"reason"})
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "historical_fetches_total",
		Help:      "Historical fetches by period and result.",
	}, []string{"period", "result"})
	fetchLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "historical_fetch_seconds",
		Help:      "Duration of historical fetches.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"period"})
	connectivity := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_connectivity",
		Help:      "1 for the current live channel state, 0 for the others.",
	}, []string{"state"})

	reg := prometheus.NewRegistry()
	reg.MustRegister(received, reconnects, window, dropped, fetches, fetchLatency, connectivity)

	return &PromRecorder{
		registry:     reg,
		received:     received,
		reconnects:   reconnects,
		window:       window,
		dropped:      dropped,
		fetches:      fetches,
		fetchLatency: fetchLatency,
		connectivity: connectivity,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (p *PromRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus text format.
func (p *PromRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

func (p *PromRecorder) SampleReceived() {
	p.received.Inc()
}

func (p *PromRecorder) SampleDropped(reason string) {
	p.dropped.WithLabelValues(reason).Inc()
}

func (p *PromRecorder) HistoricalFetched(period string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.fetches.WithLabelValues(period, result).Inc()
	p.fetchLatency.WithLabelValues(period).Observe(d.Seconds())
}

func (p *PromRecorder) ConnectivityChanged(state string) {
	for _, s := range connectivityStates {
		v := 0.0
		if s == state {
			v = 1
		}
		p.connectivity.WithLabelValues(s).Set(v)
	}
}

func (p *PromRecorder) WindowSize(n int) {
	p.window.Set(float64(n))
}

func (p *PromRecorder) Reconnect() {
	p.reconnects.Inc()
}
