package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sensiurl/sensiurl/internal/scan"
)

type jsonFinding struct {
	URL           string `json:"url"`
	Line          int    `json:"line"`
	Category      string `json:"category"`
	Severity      string `json:"severity"`
	Status        string `json:"status"`
	HTTPStatus    int    `json:"http_status,omitempty"`
	ContentType   string `json:"content_type,omitempty"`
	ContentLength int64  `json:"content_length"`
	Rule          string `json:"rule,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Evidence      string `json:"evidence,omitempty"`
	Attempts      int    `json:"attempts,omitempty"`
	Error         string `json:"error,omitempty"`
}

type jsonWarning struct {
	Line   int    `json:"line"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

type jsonStats struct {
	Targets    int            `json:"targets"`
	Candidates int            `json:"candidates"`
	Probed     int            `json:"probed"`
	Findings   int            `json:"findings"`
	Filtered   int            `json:"filtered"`
	Errors     int            `json:"errors"`
	Incomplete bool           `json:"incomplete"`
	DurationMS int64          `json:"duration_ms"`
	Extensions map[string]int `json:"extensions,omitempty"`
}

type jsonReport struct {
	ScanID      string        `json:"scan_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Warnings    []jsonWarning `json:"warnings"`
	Findings    []jsonFinding `json:"findings"`
	Stats       jsonStats     `json:"stats"`
}

// JSONWriter buffers findings and writes one report object at the end.
type JSONWriter struct {
	w      io.Writer
	closer io.Closer
	report jsonReport
}

// NewJSONWriter creates a JSON output writer.
func NewJSONWriter(outputFile string) (*JSONWriter, error) {
	var w io.Writer = os.Stdout
	var closer io.Closer
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return nil, err
		}
		w = f
		closer = f
	}
	return &JSONWriter{w: w, closer: closer}, nil
}

func (j *JSONWriter) WriteHeader(meta Meta) error {
	j.report.ScanID = meta.ScanID
	j.report.GeneratedAt = meta.GeneratedAt
	j.report.Warnings = make([]jsonWarning, 0, len(meta.Warnings))
	j.report.Findings = []jsonFinding{}
	for _, w := range meta.Warnings {
		j.report.Warnings = append(j.report.Warnings, jsonWarning{Line: w.Line, Raw: w.Raw, Reason: w.Reason})
	}
	return nil
}

func (j *JSONWriter) WriteFinding(f *scan.Finding) error {
	// ContentLength is emitted as-is: -1 means the server never said, 0 is
	// a genuine empty body.
	j.report.Findings = append(j.report.Findings, jsonFinding{
		URL:           f.URL,
		Line:          f.Line,
		Category:      string(f.Category),
		Severity:      f.Severity.String(),
		Status:        f.Status,
		HTTPStatus:    f.StatusCode,
		ContentType:   f.ContentType,
		ContentLength: f.ContentLength,
		Rule:          f.Rule,
		Reason:        f.Reason,
		Evidence:      f.Evidence,
		Attempts:      f.Attempts,
		Error:         string(f.Error),
	})
	return nil
}

func (j *JSONWriter) WriteFooter(stats Stats) error {
	j.report.Stats = jsonStats{
		Targets:    stats.Targets,
		Candidates: stats.Candidates,
		Probed:     stats.Probed,
		Findings:   stats.Findings,
		Filtered:   stats.Filtered,
		Errors:     stats.Errors,
		Incomplete: stats.Incomplete,
		DurationMS: stats.Duration.Milliseconds(),
		Extensions: stats.Histogram,
	}
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(j.report)
}

func (j *JSONWriter) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
