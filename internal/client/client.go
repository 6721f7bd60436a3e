package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dm/portalmon/internal/logger"
	"github.com/dm/portalmon/internal/model"
	"github.com/dm/portalmon/internal/telemetry"
)

// StatusClient defines the interface for talking to the portal status service.
type StatusClient interface {
	// FetchHistorical issues one request for the given period. It never retries.
	FetchHistorical(ctx context.Context, period model.Period) ([]model.Sample, error)
	// OpenLiveChannel starts a live subscription. The caller owns the returned
	// handle and must Close it.
	OpenLiveChannel(ctx context.Context) (*Subscription, error)
	BaseURL() string
}

// ClientConfig holds configuration for DefaultClient.
type ClientConfig struct {
	BaseURL        string
	RequestTimeout time.Duration

	// ReconnectBase is the first reconnect delay of the live stream; it
	// doubles per consecutive failure up to MaxBackoff.
	ReconnectBase time.Duration
	MaxBackoff    time.Duration

	Logger   logger.Logger
	Recorder telemetry.Recorder
}

// DefaultClient implements StatusClient using the standard net/http package.
type DefaultClient struct {
	http   *http.Client // historical requests, bounded by RequestTimeout
	stream *http.Client // live stream, no overall timeout
	config ClientConfig
	log    logger.Logger
	rec    telemetry.Recorder
}

// NewDefaultClient constructs a DefaultClient from the given config.
// Returns an error if BaseURL is empty.
func NewDefaultClient(cfg ClientConfig) (*DefaultClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.ReconnectBase <= 0 {
		cfg.ReconnectBase = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 60 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Noop()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = telemetry.Noop()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	return &DefaultClient{
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: transport,
		},
		stream: &http.Client{
			Transport: transport,
		},
		config: cfg,
		log:    cfg.Logger,
		rec:    cfg.Recorder,
	}, nil
}

// BaseURL returns the configured base URL of the status service.
func (c *DefaultClient) BaseURL() string {
	return c.config.BaseURL
}

func (c *DefaultClient) url(path string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + path
}

// doGet performs a GET request to the given path (relative to BaseURL).
// Returns the response body bytes or an error on non-2xx status.
func (c *DefaultClient) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	const maxResponseBytes = 8 * 1024 * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return body, nil
}

// backoffDuration returns min(base * 2^fails, ceiling).
// With the default base of 1s: fails=0: 1s, fails=1: 2s, ..., fails>=6: 60s.
func backoffDuration(fails int, base, ceiling time.Duration) time.Duration {
	if fails <= 0 {
		return min(base, ceiling)
	}
	if fails >= 30 {
		return ceiling
	}
	d := base * time.Duration(1<<fails)
	if d <= 0 || d > ceiling {
		return ceiling
	}
	return d
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
