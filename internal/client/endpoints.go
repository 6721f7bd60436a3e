package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pmerrors "github.com/dm/portalmon/internal/errors"
	"github.com/dm/portalmon/internal/model"
)

const (
	endpointHistorical   = "/historical-data/"
	endpointStatusStream = "/status-stream"
)

// FetchHistorical fetches the samples of one period from /historical-data/{token}.
// Transport failures and non-2xx replies yield a NETWORK error, malformed
// payloads a DECODE error.
func (c *DefaultClient) FetchHistorical(ctx context.Context, period model.Period) ([]model.Sample, error) {
	if !period.Valid() {
		return nil, pmerrors.New(pmerrors.ErrConfig, fmt.Sprintf("unknown period %d", int(period)), "")
	}

	start := time.Now()
	samples, err := c.fetchHistorical(ctx, period)
	c.rec.HistoricalFetched(period.Token(), time.Since(start), err)
	return samples, err
}

func (c *DefaultClient) fetchHistorical(ctx context.Context, period model.Period) ([]model.Sample, error) {
	body, err := c.doGet(ctx, endpointHistorical+period.Token())
	if err != nil {
		return nil, pmerrors.Network(err, fmt.Sprintf("Historical fetch for %s failed", period.Token()))
	}

	var points []historicalPoint
	if err := json.Unmarshal(body, &points); err != nil {
		return nil, pmerrors.Decode(err, fmt.Sprintf("Malformed historical payload for %s", period.Token()))
	}

	samples := make([]model.Sample, 0, len(points))
	for i, p := range points {
		s, err := p.sample()
		if err != nil {
			return nil, pmerrors.Decode(err, fmt.Sprintf("Malformed historical point %d for %s", i, period.Token()))
		}
		samples = append(samples, s)
	}
	return samples, nil
}
