package fetch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Many fetches urls concurrently with at most concurrency requests in
// flight. Outcomes and errors are index-aligned with the input slice and a
// per-URL failure never aborts the batch.
func (c *Client) Many(ctx context.Context, urls []string, concurrency int) ([]*Outcome, []error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	outcomes := make([]*Outcome, len(urls))
	errs := make([]error, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, u := range urls {
		g.Go(func() error {
			outcomes[i], errs[i] = c.Fetch(gctx, u)
			return nil
		})
	}

	// Workers record failures in errs rather than returning them.
	_ = g.Wait()

	return outcomes, errs
}
