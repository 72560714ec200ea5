package filter

import (
	"github.com/sensiurl/sensiurl/internal/classify"
	"github.com/sensiurl/sensiurl/internal/scan"
)

// SeverityFilter hides findings below a minimum severity.
type SeverityFilter struct {
	min classify.Severity
}

// NewSeverityFilter creates a minimum-severity filter.
func NewSeverityFilter(min classify.Severity) *SeverityFilter {
	return &SeverityFilter{min: min}
}

func (f *SeverityFilter) Name() string { return "severity" }

func (f *SeverityFilter) ShouldFilter(finding *scan.Finding) bool {
	return finding.Severity < f.min
}
