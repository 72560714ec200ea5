package filter

import "github.com/sensiurl/sensiurl/internal/scan"

// StatusFilter hides findings whose HTTP status code is on the exclude
// list. Findings without a response (status code 0) always pass.
type StatusFilter struct {
	exclude map[int]struct{}
}

// NewStatusFilter creates a status code exclude filter.
func NewStatusFilter(exclude []int) *StatusFilter {
	f := &StatusFilter{exclude: make(map[int]struct{}, len(exclude))}
	for _, code := range exclude {
		f.exclude[code] = struct{}{}
	}
	return f
}

func (f *StatusFilter) Name() string { return "status" }

func (f *StatusFilter) ShouldFilter(finding *scan.Finding) bool {
	if finding.StatusCode == 0 {
		return false
	}
	_, ok := f.exclude[finding.StatusCode]
	return ok
}
