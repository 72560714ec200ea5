package scanner

import (
	"log/slog"
	"sync"
	"time"
)

// Throttler adds adaptive back-off on top of the configured rate ceiling.
// When targets answer 429/503 or connections start failing, the
// per-request delay doubles up to a cap; healthy responses let it decay
// back toward zero.
type Throttler struct {
	mu           sync.Mutex
	currentDelay time.Duration
	maxDelay     time.Duration
	consecutive  int // consecutive throttle signals
	enabled      bool
	logger       *slog.Logger
}

// NewThrottler creates an adaptive throttler. Disabled throttlers are
// inert and always report zero delay.
func NewThrottler(enabled bool, logger *slog.Logger) *Throttler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Throttler{
		maxDelay: 30 * time.Second,
		enabled:  enabled,
		logger:   logger,
	}
}

// Delay returns the current extra per-request delay.
func (t *Throttler) Delay() time.Duration {
	if !t.enabled {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentDelay
}

// RecordStatus updates the throttler from a response status code.
func (t *Throttler) RecordStatus(statusCode int) {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if statusCode == 429 || statusCode == 503 {
		t.consecutive++
		t.backOffLocked(statusCode)
		return
	}
	t.consecutive = 0
	if t.currentDelay > 0 {
		newDelay := t.currentDelay / 2
		if newDelay < 100*time.Millisecond {
			newDelay = 0
		}
		t.currentDelay = newDelay
		if t.currentDelay > 0 {
			t.logger.Debug("recovering", slog.Duration("delay", t.currentDelay))
		}
	}
}

// RecordError flags a connection failure as a possible rate-limit signal.
// Back-off starts after three consecutive errors.
func (t *Throttler) RecordError() {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.consecutive++
	if t.consecutive >= 3 {
		t.backOffLocked(0)
	}
}

func (t *Throttler) backOffLocked(statusCode int) {
	newDelay := t.currentDelay * 2
	if newDelay < 500*time.Millisecond {
		newDelay = 500 * time.Millisecond
	}
	if newDelay > t.maxDelay {
		newDelay = t.maxDelay
	}
	if newDelay != t.currentDelay {
		t.currentDelay = newDelay
		t.logger.Warn("backing off",
			slog.Int("status", statusCode),
			slog.Duration("delay", t.currentDelay))
	}
}
