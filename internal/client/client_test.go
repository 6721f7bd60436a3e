package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pmerrors "github.com/dm/portalmon/internal/errors"
	"github.com/dm/portalmon/internal/logger"
	"github.com/dm/portalmon/internal/model"
)

// fakeRecorder counts telemetry calls.
type fakeRecorder struct {
	mu         sync.Mutex
	fetches    []string
	fetchErrs  int
	dropped    map[string]int
	reconnects int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{dropped: make(map[string]int)}
}

func (f *fakeRecorder) SampleReceived() {}

func (f *fakeRecorder) SampleDropped(reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropped[reason]++
}

func (f *fakeRecorder) HistoricalFetched(period string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, period)
	if err != nil {
		f.fetchErrs++
	}
}

func (f *fakeRecorder) ConnectivityChanged(string) {}
func (f *fakeRecorder) WindowSize(int)             {}

func (f *fakeRecorder) Reconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnects++
}

func (f *fakeRecorder) droppedCount(reason string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped[reason]
}

// newTestClient creates a DefaultClient pointed at the given test server URL.
func newTestClient(t *testing.T, baseURL string, rec *fakeRecorder) *DefaultClient {
	t.Helper()
	c, err := NewDefaultClient(ClientConfig{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
		ReconnectBase:  10 * time.Millisecond,
		MaxBackoff:     50 * time.Millisecond,
		Logger:         logger.NewBufferLogger(),
		Recorder:       rec,
	})
	require.NoError(t, err)
	return c
}

func TestNewDefaultClient_RequiresBaseURL(t *testing.T) {
	_, err := NewDefaultClient(ClientConfig{})
	require.Error(t, err)
}

func TestNewDefaultClient_Defaults(t *testing.T) {
	c, err := NewDefaultClient(ClientConfig{BaseURL: "http://127.0.0.1:8000/"})
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, c.http.Timeout)
	assert.Zero(t, c.stream.Timeout)
	assert.Equal(t, time.Second, c.config.ReconnectBase)
	assert.Equal(t, 60*time.Second, c.config.MaxBackoff)
	assert.Equal(t, "http://127.0.0.1:8000/status-stream", c.url(endpointStatusStream))
}

func TestFetchHistorical(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/historical-data/TDY", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"timestamp":"2024-05-01T08:00:00.123456","latency":120.0},
			{"timestamp":"2024-05-01T08:00:10","latency":null},
			{"timestamp":"2024-05-01T08:00:20Z","latency":-1},
			{"timestamp":"2024-05-01 08:00:30","latency":99.6}
		]`))
	}))
	defer srv.Close()

	rec := newFakeRecorder()
	c := newTestClient(t, srv.URL, rec)
	samples, err := c.FetchHistorical(context.Background(), model.Today)
	require.NoError(t, err)
	require.Len(t, samples, 4)

	assert.Equal(t, 120, samples[0].LatencyMs)
	assert.True(t, time.Date(2024, 5, 1, 8, 0, 0, 123456000, time.Local).Equal(samples[0].Timestamp))
	assert.False(t, samples[1].HasLatency())
	assert.False(t, samples[2].HasLatency())
	assert.Equal(t, time.UTC, samples[2].Timestamp.Location())
	assert.Equal(t, 100, samples[3].LatencyMs)
	for _, s := range samples {
		assert.Equal(t, model.StatusUnknown, s.Status)
		assert.False(t, s.HasStatusCode())
	}

	assert.Equal(t, []string{"TDY"}, rec.fetches)
	assert.Zero(t, rec.fetchErrs)
}

func TestFetchHistorical_PeriodTokens(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, newFakeRecorder())
	for _, p := range model.Periods {
		samples, err := c.FetchHistorical(context.Background(), p)
		require.NoError(t, err)
		assert.Empty(t, samples)
	}
	assert.Equal(t, []string{"/historical-data/12H", "/historical-data/24H", "/historical-data/TDY"}, paths)
}

func TestFetchHistorical_Errors(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{"server error", http.StatusInternalServerError, `{"detail":"boom"}`, pmerrors.ErrNetwork},
		{"not found", http.StatusNotFound, `{}`, pmerrors.ErrNetwork},
		{"malformed json", http.StatusOK, `[{"timestamp":`, pmerrors.ErrDecode},
		{"wrong shape", http.StatusOK, `{"timestamp":"x"}`, pmerrors.ErrDecode},
		{"bad timestamp", http.StatusOK, `[{"timestamp":"yesterday","latency":1}]`, pmerrors.ErrDecode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			rec := newFakeRecorder()
			c := newTestClient(t, srv.URL, rec)
			samples, err := c.FetchHistorical(context.Background(), model.Last12H)
			require.Error(t, err)
			assert.Nil(t, samples)
			assert.True(t, pmerrors.IsCode(err, tc.wantCode), "got %v", err)
			assert.Equal(t, 1, rec.fetchErrs)
		})
	}
}

func TestFetchHistorical_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, newFakeRecorder())
	_, err := c.FetchHistorical(context.Background(), model.Last24H)
	require.Error(t, err)
	assert.True(t, pmerrors.IsCode(err, pmerrors.ErrNetwork))
}

func TestFetchHistorical_InvalidPeriod(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", newFakeRecorder())
	_, err := c.FetchHistorical(context.Background(), model.Period(42))
	require.Error(t, err)
	assert.True(t, pmerrors.IsCode(err, pmerrors.ErrConfig))
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-01T08:00:00", time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local)},
		{"2024-05-01T08:00:00.5", time.Date(2024, 5, 1, 8, 0, 0, 500_000_000, time.Local)},
		{"2024-05-01 08:00:00", time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local)},
		{"2024-05-01T08:00:00Z", time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)},
		{"2024-05-01T08:00:00+02:00", time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseTimestamp(tc.in)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %v, want %v", got, tc.want)
		})
	}

	_, err := parseTimestamp("")
	assert.Error(t, err)
	_, err = parseTimestamp("01/05/2024")
	assert.Error(t, err)
}

func TestDecodeLiveSample(t *testing.T) {
	s, err := decodeLiveSample([]byte(`{"status":"UP","statusCode":200,"latency":87,"timestamp":"2024-05-01T08:00:00"}`))
	require.NoError(t, err)
	assert.Equal(t, model.StatusUp, s.Status)
	assert.Equal(t, 200, s.StatusCode)
	assert.Equal(t, 87, s.LatencyMs)

	s, err = decodeLiveSample([]byte(`{"status":"DOWN","statusCode":null,"latency":-1,"error":"connection error","timestamp":"2024-05-01T08:00:05"}`))
	require.NoError(t, err)
	assert.Equal(t, model.StatusDown, s.Status)
	assert.False(t, s.HasStatusCode())
	assert.False(t, s.HasLatency())

	_, err = decodeLiveSample([]byte(`{"status":"SIDEWAYS","timestamp":"2024-05-01T08:00:05"}`))
	assert.Error(t, err)
	_, err = decodeLiveSample([]byte(`not json`))
	assert.Error(t, err)
}

func TestBackoffDuration(t *testing.T) {
	cases := []struct {
		fails int
		want  time.Duration
	}{
		{-1, time.Second},
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second},
		{10, 60 * time.Second},
		{100, 60 * time.Second},
	}
	for _, tc := range cases {
		got := backoffDuration(tc.fails, time.Second, 60*time.Second)
		assert.Equal(t, tc.want, got, "fails=%d", tc.fails)
	}

	assert.Equal(t, 5*time.Millisecond, backoffDuration(0, 10*time.Millisecond, 5*time.Millisecond))
}
