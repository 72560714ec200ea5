// Package scan wires the pipeline together: normalize input lines,
// classify each URL, probe the candidates under the governor's ceilings,
// and aggregate ordered findings. Run is the sole contract presentation
// layers rely on.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sensiurl/sensiurl/internal/classify"
	"github.com/sensiurl/sensiurl/internal/config"
	"github.com/sensiurl/sensiurl/internal/evidence"
	"github.com/sensiurl/sensiurl/internal/normalize"
	"github.com/sensiurl/sensiurl/internal/scanner"
)

// Finding status values. Stable across versions; external consumers
// match on them.
const (
	StatusConfirmed   = "confirmed"
	StatusUnconfirmed = "unconfirmed"
	StatusError       = "error"
	StatusIncomplete  = "incomplete"
)

// Candidate is a validated URL together with its classification, eligible
// for probing.
type Candidate struct {
	Target         normalize.Target
	Classification classify.Classification
}

// Finding is the final reported result for one URL.
type Finding struct {
	URL           string
	Line          int // original input line, for stable ordering
	Category      classify.Category
	Severity      classify.Severity
	Status        string
	StatusCode    int // 0 when no response was obtained
	ContentType   string
	ContentLength int64
	Rule          string // primary matched rule name
	Reason        string
	Evidence      string
	Attempts      int
	Error         scanner.ErrorKind
}

// Report is everything one scan produced.
type Report struct {
	ScanID     string
	Findings   []Finding
	Histogram  classify.Histogram
	Warnings   []*normalize.ValidationError
	Targets    int // validated URLs
	Candidates int // URLs selected for probing
	Probed     int
	Errors     int
	Incomplete bool // scan was cancelled before all candidates resolved
	Duration   time.Duration
}

// Events carries optional streaming callbacks and runtime controls.
// Callbacks run on the aggregator goroutine; keep them fast.
type Events struct {
	OnProgress func(completed, total int)
	OnFinding  func(*Finding) // called for findings that survive suppression
	Pauser     *scanner.Pauser
}

// Run executes a full scan over the given input lines. Configuration
// errors abort before any network activity; per-URL failures never abort
// the scan. The returned report is complete even when the context is
// cancelled mid-flight — unresolved candidates carry the incomplete
// status.
func Run(ctx context.Context, lines []string, opts *config.Options, ev *Events, logger *slog.Logger) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if ev == nil {
		ev = &Events{}
	}

	var extra []*classify.Rule
	if opts.RulesFile != "" {
		loaded, err := classify.LoadRules(opts.RulesFile)
		if err != nil {
			return nil, err
		}
		extra = loaded
		logger.Debug("loaded extra rules", slog.Int("count", len(loaded)))
	}
	engine := classify.NewEngine(extra...)

	start := time.Now()
	report := &Report{
		ScanID:    uuid.NewString(),
		Histogram: classify.Histogram{},
	}

	targets, warnings := normalize.Lines(lines)
	report.Warnings = warnings
	report.Targets = len(targets)
	for _, w := range warnings {
		logger.Warn("skipping line", slog.Int("line", w.Line), slog.String("reason", w.Reason))
	}

	// Classification completes for every URL before any probing starts;
	// the histogram counts all validated URLs, matched or not.
	var candidates []Candidate
	for _, t := range targets {
		c := engine.Classify(t)
		report.Histogram.Add(c.Extension)
		if len(c.Matches) > 0 || opts.ProbeAll {
			candidates = append(candidates, Candidate{Target: t, Classification: c})
		}
	}
	report.Candidates = len(candidates)

	if opts.ClassifyOnly {
		for i := range candidates {
			f := classifyOnlyFinding(&candidates[i])
			report.Findings = append(report.Findings, *f)
			if ev.OnFinding != nil {
				ev.OnFinding(f)
			}
		}
		finalize(report, start)
		return report, nil
	}

	governor := scanner.NewGovernor(opts.Concurrency, opts.RateLimit)
	throttler := scanner.NewThrottler(opts.AdaptiveThrottle, logger)
	prober, err := scanner.NewProber(opts, governor, throttler, logger)
	if err != nil {
		return nil, err
	}

	items := make([]scanner.Item, len(candidates))
	for i := range candidates {
		items[i] = scanner.Item{
			Index:    i,
			URL:      candidates[i].Target.String(),
			NeedBody: candidates[i].Classification.NeedsBody(),
		}
	}

	completed := 0
	for res := range scanner.RunPool(ctx, prober, items, scanner.PoolConfig{Workers: opts.Concurrency, Pauser: ev.Pauser}) {
		completed++
		if ev.OnProgress != nil {
			ev.OnProgress(completed, len(items))
		}

		cand := &candidates[res.Item.Index]
		f, keep := buildFinding(cand, res.Outcome, opts.ProbeAll)
		report.Probed++
		if f.Status == StatusError {
			report.Errors++
		}
		if f.Status == StatusIncomplete {
			report.Incomplete = true
		}
		if !keep {
			continue
		}
		report.Findings = append(report.Findings, *f)
		if ev.OnFinding != nil {
			ev.OnFinding(f)
		}
	}

	finalize(report, start)
	return report, nil
}

// buildFinding merges classification and probe outcome into one Finding.
// keep is false when negative evidence suppresses the entry and the
// caller did not ask for exhaustive output.
func buildFinding(cand *Candidate, out *scanner.Outcome, probeAll bool) (*Finding, bool) {
	f := &Finding{
		URL:           cand.Target.String(),
		Line:          cand.Target.Line,
		Category:      classify.CategoryOther,
		ContentLength: -1,
		Attempts:      out.Attempts,
	}
	if primary := cand.Classification.Primary(); primary != nil {
		f.Category = primary.Category
		f.Rule = primary.Name
		f.Reason = primary.Description
	}

	if out.Err != nil {
		if out.ErrKind == scanner.ErrorCancelled {
			f.Status = StatusIncomplete
			f.Severity = classify.SeverityInfo
			f.Reason = "probe did not complete before cancellation"
			f.Error = out.ErrKind
			return f, true
		}
		f.Status = StatusError
		f.Severity = classify.SeverityInfo
		f.Reason = fmt.Sprintf("probe failed: %s", out.ErrKind)
		f.Evidence = capError(out.Err)
		f.Error = out.ErrKind
		return f, true
	}

	a := evidence.Evaluate(cand.Classification, out)
	f.StatusCode = out.StatusCode
	f.ContentType = out.ContentType
	f.ContentLength = out.ContentLength
	f.Severity = a.Severity
	f.Reason = a.Reason
	f.Evidence = a.Evidence
	if a.Confirmed {
		f.Status = StatusConfirmed
	} else {
		f.Status = StatusUnconfirmed
	}
	if a.Suppress && !probeAll {
		return f, false
	}
	return f, true
}

func classifyOnlyFinding(cand *Candidate) *Finding {
	f := &Finding{
		URL:           cand.Target.String(),
		Line:          cand.Target.Line,
		Category:      classify.CategoryOther,
		ContentLength: -1,
		Status:        StatusUnconfirmed,
		Severity:      cand.Classification.MaxSeverity(),
		Reason:        "classification only, not probed",
	}
	if primary := cand.Classification.Primary(); primary != nil {
		f.Category = primary.Category
		f.Rule = primary.Name
		f.Reason = primary.Description + " (not probed)"
	}
	return f
}

// finalize orders findings by severity descending, then by original input
// line, and stamps the duration.
func finalize(report *Report, start time.Time) {
	sort.SliceStable(report.Findings, func(i, j int) bool {
		if report.Findings[i].Severity != report.Findings[j].Severity {
			return report.Findings[i].Severity > report.Findings[j].Severity
		}
		return report.Findings[i].Line < report.Findings[j].Line
	})
	report.Duration = time.Since(start)
}

func capError(err error) string {
	s := err.Error()
	if len(s) > 200 {
		s = s[:200] + "…"
	}
	return s
}
