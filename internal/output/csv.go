package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/sensiurl/sensiurl/internal/scan"
)

// CSVWriter writes findings in CSV format.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVWriter creates a CSV output writer.
func NewCSVWriter(outputFile string) (*CSVWriter, error) {
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
	return &CSVWriter{w: csv.NewWriter(w), closer: closer}, nil
}

func (c *CSVWriter) WriteHeader(_ Meta) error {
	return c.w.Write([]string{
		"url", "line", "category", "severity", "status",
		"http_status", "content_type", "content_length",
		"rule", "reason", "evidence",
	})
}

func (c *CSVWriter) WriteFinding(f *scan.Finding) error {
	httpStatus := ""
	if f.StatusCode > 0 {
		httpStatus = fmt.Sprintf("%d", f.StatusCode)
	}
	length := ""
	if f.ContentLength >= 0 {
		length = fmt.Sprintf("%d", f.ContentLength)
	}
	return c.w.Write([]string{
		f.URL,
		fmt.Sprintf("%d", f.Line),
		string(f.Category),
		f.Severity.String(),
		f.Status,
		httpStatus,
		f.ContentType,
		length,
		f.Rule,
		f.Reason,
		f.Evidence,
	})
}

func (c *CSVWriter) WriteFooter(_ Stats) error {
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
