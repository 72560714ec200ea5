package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sensiurl/sensiurl/internal/classify"
	"github.com/sensiurl/sensiurl/internal/config"
	"github.com/sensiurl/sensiurl/internal/filter"
	"github.com/sensiurl/sensiurl/internal/hook"
	"github.com/sensiurl/sensiurl/internal/output"
	"github.com/sensiurl/sensiurl/internal/scan"
	"github.com/sensiurl/sensiurl/pkg/version"
)

// Run executes the full triage pipeline: collect input lines, scan them,
// filter the findings, and write the report. args holds URLs given
// directly on the command line.
func Run(ctx context.Context, opts *config.Options, args []string) error {
	lines, err := collectLines(opts, args)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("no URLs to scan: pass them as arguments or with -l")
	}

	logger := newLogger(opts)

	chain, err := buildChain(opts)
	if err != nil {
		return err
	}

	if !opts.Quiet {
		printBanner(opts, len(lines))
	}

	var hookRunner *hook.Runner
	if opts.OnFindingCmd != "" {
		hookRunner = hook.NewRunner(opts.OnFindingCmd, opts.Quiet)
	}

	progress := output.NewProgress(0, opts.Quiet || opts.ClassifyOnly)
	progress.Start()

	ev := &scan.Events{
		OnProgress: func(completed, total int) {
			progress.SetTotal(total)
			progress.Set(completed)
		},
		OnFinding: func(f *scan.Finding) {
			if f.Status == scan.StatusError {
				progress.IncrementErrors()
			}
			if hidden, _ := chain.Apply(f); hidden {
				return
			}
			progress.IncrementFindings()
			if hookRunner != nil {
				hookRunner.Run(f)
			}
		},
	}

	// Interactive pause toggle; only useful while probes are running.
	if !opts.ClassifyOnly {
		pauser, cleanup := startStdinToggle(opts.Quiet)
		defer cleanup()
		ev.Pauser = pauser
	}

	report, err := scan.Run(ctx, lines, opts, ev, logger)
	progress.Stop()
	if err != nil {
		return err
	}

	return writeReport(opts, chain, report)
}

// collectLines gathers input lines from command-line arguments and the
// input file, in that order. "-" reads from stdin.
func collectLines(opts *config.Options, args []string) ([]string, error) {
	lines := append([]string(nil), args...)

	if opts.InputFile == "" {
		return lines, nil
	}

	var r io.Reader
	if opts.InputFile == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(opts.InputFile)
		if err != nil {
			return nil, fmt.Errorf("opening input file: %w", err)
		}
		defer f.Close()
		r = f
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}

func newLogger(opts *config.Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	if opts.Quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildChain assembles the finding filter chain from the options.
func buildChain(opts *config.Options) (*filter.Chain, error) {
	chain := filter.NewChain()

	if opts.MinSeverity != "" {
		min, err := classify.ParseSeverity(opts.MinSeverity)
		if err != nil {
			return nil, fmt.Errorf("--min-severity: %w", err)
		}
		chain.Add(filter.NewSeverityFilter(min))
	}
	if len(opts.Categories) > 0 {
		cats := make([]classify.Category, 0, len(opts.Categories))
		for _, c := range opts.Categories {
			cat, err := classify.ParseCategory(c)
			if err != nil {
				return nil, fmt.Errorf("--category: %w", err)
			}
			cats = append(cats, cat)
		}
		chain.Add(filter.NewCategoryFilter(cats))
	}
	if len(opts.ExcludeStatus) > 0 {
		chain.Add(filter.NewStatusFilter(opts.ExcludeStatus))
	}
	return chain, nil
}

// writeReport filters the aggregated findings and hands them to the
// configured writer.
func writeReport(opts *config.Options, chain *filter.Chain, report *scan.Report) error {
	w, err := output.New(opts.OutputFormat, opts.OutputFile, opts.NoColor, opts.Quiet)
	if err != nil {
		return err
	}
	if opts.SortBy != "" && opts.SortBy != "severity" {
		w = output.NewSortedWriter(w, opts.SortBy)
	}
	defer w.Close()

	meta := output.Meta{
		ScanID:      report.ScanID,
		GeneratedAt: time.Now().UTC(),
		Warnings:    report.Warnings,
	}
	if err := w.WriteHeader(meta); err != nil {
		return err
	}

	stats := output.Stats{
		Targets:    report.Targets,
		Candidates: report.Candidates,
		Probed:     report.Probed,
		Errors:     report.Errors,
		Incomplete: report.Incomplete,
		Duration:   report.Duration,
		Histogram:  report.Histogram,
	}
	for i := range report.Findings {
		f := &report.Findings[i]
		if hidden, _ := chain.Apply(f); hidden {
			stats.Filtered++
			continue
		}
		stats.Findings++
		if err := w.WriteFinding(f); err != nil {
			return err
		}
	}

	return w.WriteFooter(stats)
}

func printBanner(opts *config.Options, lineCount int) {
	const (
		cyan  = "\033[36m"
		white = "\033[97m"
		dim   = "\033[2m"
		reset = "\033[0m"
	)

	c, w, d, rs := cyan, white, dim, reset
	if opts.NoColor {
		c, w, d, rs = "", "", "", ""
	}

	fmt.Fprintf(os.Stderr, `
%s    ________  ____  _____(_)_  ______/ /%s
%s   / ___/ _ \/ __ \/ ___/ / / / / ___/ / %s
%s  (__  )  __/ / / (__  ) / /_/ / /  / /  %s
%s /____/\___/_/ /_/____/_/\__,_/_/  /_/   %s %sv%s%s

%s    Sensitive URL Triage Scanner         %s
`,
		c, rs,
		c, rs,
		c, rs,
		c, rs, d, version.Version, rs,
		w, rs,
	)

	mode := "probe"
	if opts.ClassifyOnly {
		mode = "classify-only"
	}
	rate := "unlimited"
	if opts.RateLimit > 0 {
		rate = fmt.Sprintf("%.1f req/s", opts.RateLimit)
	}

	fmt.Fprintf(os.Stderr, "%s  ──────────────────────────────────────%s\n", d, rs)
	fmt.Fprintf(os.Stderr, "  %sInput:%s        %s%d lines%s\n", d, rs, w, lineCount, rs)
	fmt.Fprintf(os.Stderr, "  %sMode:%s         %s%s%s\n", d, rs, w, mode, rs)
	fmt.Fprintf(os.Stderr, "  %sConcurrency:%s  %s%d%s\n", d, rs, w, opts.Concurrency, rs)
	fmt.Fprintf(os.Stderr, "  %sRate limit:%s   %s%s%s\n", d, rs, w, rate, rs)
	if opts.RulesFile != "" {
		fmt.Fprintf(os.Stderr, "  %sExtra rules:%s  %s%s%s\n", d, rs, w, opts.RulesFile, rs)
	}
	if len(opts.Categories) > 0 {
		fmt.Fprintf(os.Stderr, "  %sCategories:%s   %s%s%s\n", d, rs, w, strings.Join(opts.Categories, ", "), rs)
	}
	fmt.Fprintf(os.Stderr, "%s  ──────────────────────────────────────%s\n\n", d, rs)
}
