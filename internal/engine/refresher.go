package engine

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"plat-tracker/internal/logger"
)

// DefaultRefreshWorkers bounds concurrent price refreshes. The upstream API
// is rate-limited anyway, so a small pool just keeps requests pipelined.
const DefaultRefreshWorkers = 4

// Refresher re-prices a set of items through a bounded worker pool. The
// resolver stays synchronous; concurrency is purely orchestration here.
type Refresher struct {
	Resolver *Resolver
	Workers  int // 0 means DefaultRefreshWorkers
}

func (r *Refresher) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return DefaultRefreshWorkers
}

// RefreshAll resolves every slug and returns the computed records in
// completion order. Individual failures are logged and skipped; the first
// context cancellation stops the pool.
func (r *Refresher) RefreshAll(ctx context.Context, slugs []string) []PriceRecord {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())

	var mu sync.Mutex
	records := make([]PriceRecord, 0, len(slugs))

	for _, slug := range slugs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rec, err := r.Resolver.Resolve(slug)
			if err != nil {
				logger.Warn("Refresh", fmt.Sprintf("%s: %v", slug, err))
				return nil
			}
			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()
	return records
}
