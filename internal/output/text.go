package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/sensiurl/sensiurl/internal/classify"
	"github.com/sensiurl/sensiurl/internal/scan"
)

// Severity colors, matching the usual scanner palette.
var (
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
	highStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	mediumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD93D"))
	lowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6BCB77"))
	infoStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#4D96FF"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// TextWriter writes human-readable findings to a writer.
type TextWriter struct {
	w       io.Writer
	noColor bool
	quiet   bool
}

// NewTextWriter creates a text output writer. If outputFile is empty,
// stdout is used. noColor disables styling; writing to a file does too.
func NewTextWriter(outputFile string, noColor, quiet bool) (*TextWriter, error) {
	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, err
		}
		w = f
		noColor = true
	}
	return &TextWriter{w: w, noColor: noColor, quiet: quiet}, nil
}

func (t *TextWriter) WriteHeader(meta Meta) error {
	if t.quiet {
		return nil
	}
	for _, w := range meta.Warnings {
		line := fmt.Sprintf("warning: line %d skipped: %s", w.Line, w.Reason)
		if _, err := fmt.Fprintln(os.Stderr, t.render(mutedStyle, line)); err != nil {
			return err
		}
	}
	return nil
}

func (t *TextWriter) WriteFinding(f *scan.Finding) error {
	tag := fmt.Sprintf("[%-8s]", f.Severity)
	tag = t.render(t.styleFor(f.Severity), tag)

	status := "   -"
	if f.StatusCode > 0 {
		status = fmt.Sprintf("%4d", f.StatusCode)
	}

	suffix := ""
	switch f.Status {
	case scan.StatusConfirmed:
		// confirmed is the default reading; no marker
	case scan.StatusError:
		suffix = t.render(mutedStyle, fmt.Sprintf("  (%s: %s)", f.Status, f.Error))
	default:
		suffix = t.render(mutedStyle, fmt.Sprintf("  (%s)", f.Status))
	}

	if _, err := fmt.Fprintf(t.w, "%s %s  %-9s  %s%s\n", tag, status, f.Category, f.URL, suffix); err != nil {
		return err
	}
	if f.Reason != "" {
		if _, err := fmt.Fprintf(t.w, "           %s\n", t.render(mutedStyle, f.Reason)); err != nil {
			return err
		}
	}
	if f.Evidence != "" {
		if _, err := fmt.Fprintf(t.w, "           %s\n", t.render(mutedStyle, "evidence: "+f.Evidence)); err != nil {
			return err
		}
	}
	return nil
}

func (t *TextWriter) WriteFooter(stats Stats) error {
	if t.quiet {
		return nil
	}
	note := ""
	if stats.Incomplete {
		note = " | INCOMPLETE (cancelled)"
	}
	_, err := fmt.Fprintf(os.Stderr,
		"\nTargets: %d | Probed: %d | Findings: %d | Filtered: %d | Errors: %d | Duration: %s%s\n",
		stats.Targets,
		stats.Probed,
		stats.Findings,
		stats.Filtered,
		stats.Errors,
		stats.Duration.Round(time.Millisecond),
		note,
	)
	return err
}

func (t *TextWriter) Close() error {
	if closer, ok := t.w.(io.Closer); ok && t.w != os.Stdout {
		return closer.Close()
	}
	return nil
}

func (t *TextWriter) render(style lipgloss.Style, s string) string {
	if t.noColor {
		return s
	}
	return style.Render(s)
}

func (t *TextWriter) styleFor(sev classify.Severity) lipgloss.Style {
	switch sev {
	case classify.SeverityCritical:
		return criticalStyle
	case classify.SeverityHigh:
		return highStyle
	case classify.SeverityMedium:
		return mediumStyle
	case classify.SeverityLow:
		return lowStyle
	default:
		return infoStyle
	}
}
