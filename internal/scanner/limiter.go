package scanner

import (
	"context"
	"math"

	"golang.org/x/time/rate"
)

// Governor gates probe dispatch: at most `concurrency` probes hold a slot
// at once, and when a rate is configured the long-run average request
// dispatch never exceeds it. Tokens are time-spaced by the underlying
// bucket, so bursts are smoothed rather than front-loaded each second.
type Governor struct {
	slots   chan struct{}
	limiter *rate.Limiter // nil = unlimited
}

// NewGovernor creates a governor with the given concurrency ceiling and
// requests-per-second rate. rps <= 0 disables rate limiting. Concurrency
// and rate validity are the caller's responsibility (config.Validate).
func NewGovernor(concurrency int, rps float64) *Governor {
	g := &Governor{
		slots: make(chan struct{}, concurrency),
	}
	if rps > 0 {
		// Burst of one second's worth of tokens, minimum 1. Keeps the
		// sliding-window overshoot within a single bucket refill.
		burst := int(math.Ceil(rps))
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return g
}

// Acquire blocks until a concurrency slot is free or the context is
// cancelled. Each Acquire must be paired with a Release.
func (g *Governor) Acquire(ctx context.Context) error {
	select {
	case g.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a concurrency slot.
func (g *Governor) Release() {
	<-g.slots
}

// Wait blocks until a rate token is available. Called once per outgoing
// HTTP request, not per probe, so the HEAD and the ranged GET each spend
// a token.
func (g *Governor) Wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	return g.limiter.Wait(ctx)
}

// InFlight returns the number of currently held slots.
func (g *Governor) InFlight() int {
	return len(g.slots)
}
