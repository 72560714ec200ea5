package output

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

// Progress tracks and displays probe progress on stderr.
type Progress struct {
	total     atomic.Int64
	completed atomic.Int64
	findings  atomic.Int64
	errors    atomic.Int64
	start     time.Time
	done      chan struct{}
	quiet     bool
}

// NewProgress creates a progress tracker. Call Start() to begin display updates.
func NewProgress(total int, quiet bool) *Progress {
	p := &Progress{
		start: time.Now(),
		done:  make(chan struct{}),
		quiet: quiet,
	}
	p.total.Store(int64(total))
	return p
}

// SetTotal updates the expected probe count once it is known.
func (p *Progress) SetTotal(total int) {
	p.total.Store(int64(total))
}

// Start begins periodically printing progress to stderr.
func (p *Progress) Start() {
	if p.quiet {
		return
	}
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.print()
			case <-p.done:
				fmt.Fprint(os.Stderr, "\r\033[K")
				return
			}
		}
	}()
}

// Set records the number of completed probes.
func (p *Progress) Set(completed int) {
	p.completed.Store(int64(completed))
}

// IncrementFindings records a reported finding.
func (p *Progress) IncrementFindings() {
	p.findings.Add(1)
}

// IncrementErrors records a probe error.
func (p *Progress) IncrementErrors() {
	p.errors.Add(1)
}

// Stop clears the progress line.
func (p *Progress) Stop() {
	if p.quiet {
		return
	}
	close(p.done)
}

func (p *Progress) print() {
	completed := p.completed.Load()
	total := p.total.Load()
	elapsed := time.Since(p.start).Seconds()
	rate := float64(0)
	if elapsed > 0 {
		rate = float64(completed) / elapsed
	}

	pct := float64(0)
	if total > 0 {
		pct = float64(completed) / float64(total) * 100
	}

	eta := ""
	if rate > 0 && completed < total {
		remaining := float64(total-completed) / rate
		eta = fmt.Sprintf(" | ETA: %s", time.Duration(remaining*float64(time.Second)).Round(time.Second))
	}

	fmt.Fprintf(os.Stderr, "\r\033[K[%3.0f%%] %d/%d probed | %.0f req/s | Findings: %d | Errors: %d%s",
		pct, completed, total, rate,
		p.findings.Load(), p.errors.Load(), eta)
}
