package scanner

import (
	"context"
	"sync"
)

// Item is one probe task for the worker pool.
type Item struct {
	Index    int    // position in the candidate list, for aggregation
	URL      string // request-form URL
	NeedBody bool   // classification requires body evidence
}

// Result pairs an item with its probe outcome. Exactly one Result is
// emitted per submitted Item, even under cancellation.
type Result struct {
	Item    Item
	Outcome *Outcome
}

// PoolConfig holds options for the worker pool.
type PoolConfig struct {
	Workers int
	Pauser  *Pauser // nil = no pause support
}

// RunPool fans items out across a fixed set of probe workers and returns
// a channel of results, closed once every item has been answered. When
// the context is cancelled, remaining items drain quickly with cancelled
// outcomes instead of being dropped, so callers can mark them incomplete.
func RunPool(ctx context.Context, prober *Prober, items []Item, cfg PoolConfig) <-chan Result {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	itemsCh := make(chan Item, workers*2)
	resultsCh := make(chan Result, workers*2)

	go func() {
		defer close(itemsCh)
		for _, item := range items {
			itemsCh <- item
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemsCh {
				if ctx.Err() != nil {
					resultsCh <- Result{Item: item, Outcome: &Outcome{
						ContentLength: -1,
						Err:           ctx.Err(),
						ErrKind:       ErrorCancelled,
					}}
					continue
				}
				if cfg.Pauser != nil {
					cfg.Pauser.Wait()
				}
				resultsCh <- Result{Item: item, Outcome: prober.Probe(ctx, item.URL, item.NeedBody)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	return resultsCh
}
