package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dm/portalmon/internal/model"
)

// HistoricalFetcher is the subset of the status client FetchPeriods needs.
type HistoricalFetcher interface {
	FetchHistorical(ctx context.Context, period model.Period) ([]model.Sample, error)
}

// FetchPeriods fetches every given period concurrently. If any fetch fails,
// the others are cancelled and the first error is returned. The result
// slice is in the same order as periods.
func FetchPeriods(ctx context.Context, f HistoricalFetcher, periods []model.Period) ([][]model.Sample, error) {
	out := make([][]model.Sample, len(periods))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range periods {
		i, p := i, p
		g.Go(func() error {
			samples, err := f.FetchHistorical(gctx, p)
			if err != nil {
				return err
			}
			out[i] = samples
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
