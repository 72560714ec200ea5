package output

import (
	"sort"

	"github.com/sensiurl/sensiurl/internal/scan"
)

// SortedWriter buffers findings and replays them sorted by a field when
// WriteFooter is called. It wraps any other Writer.
type SortedWriter struct {
	inner    Writer
	sortBy   string
	findings []*scan.Finding
}

// NewSortedWriter wraps inner and buffers findings for sorted replay.
func NewSortedWriter(inner Writer, sortBy string) *SortedWriter {
	return &SortedWriter{inner: inner, sortBy: sortBy}
}

func (w *SortedWriter) WriteHeader(meta Meta) error {
	return w.inner.WriteHeader(meta)
}

func (w *SortedWriter) WriteFinding(f *scan.Finding) error {
	cpy := *f
	w.findings = append(w.findings, &cpy)
	return nil
}

func (w *SortedWriter) WriteFooter(stats Stats) error {
	sort.SliceStable(w.findings, func(i, j int) bool {
		switch w.sortBy {
		case "url":
			return w.findings[i].URL < w.findings[j].URL
		case "status":
			return w.findings[i].StatusCode < w.findings[j].StatusCode
		case "category":
			return w.findings[i].Category < w.findings[j].Category
		default:
			// severity is the pipeline's native order; leave it alone
			return false
		}
	})
	for _, f := range w.findings {
		if err := w.inner.WriteFinding(f); err != nil {
			return err
		}
	}
	return w.inner.WriteFooter(stats)
}

func (w *SortedWriter) Close() error {
	return w.inner.Close()
}
