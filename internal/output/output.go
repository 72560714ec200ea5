package output

import (
	"fmt"
	"time"

	"github.com/sensiurl/sensiurl/internal/classify"
	"github.com/sensiurl/sensiurl/internal/normalize"
	"github.com/sensiurl/sensiurl/internal/scan"
)

// Meta identifies one scan run for the output header.
type Meta struct {
	ScanID      string
	GeneratedAt time.Time
	Warnings    []*normalize.ValidationError
}

// Stats holds aggregate scan statistics for the footer.
type Stats struct {
	Targets    int
	Candidates int
	Probed     int
	Findings   int
	Filtered   int
	Errors     int
	Incomplete bool
	Duration   time.Duration
	Histogram  classify.Histogram
}

// Writer is implemented by each output format.
type Writer interface {
	WriteHeader(meta Meta) error
	WriteFinding(f *scan.Finding) error
	WriteFooter(stats Stats) error
	Close() error
}

// New creates the writer for the requested format. An empty outputFile
// means stdout.
func New(format, outputFile string, noColor, quiet bool) (Writer, error) {
	switch format {
	case "", "text":
		return NewTextWriter(outputFile, noColor, quiet)
	case "json":
		return NewJSONWriter(outputFile)
	case "csv":
		return NewCSVWriter(outputFile)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
