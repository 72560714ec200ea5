package filter

import (
	"github.com/sensiurl/sensiurl/internal/classify"
	"github.com/sensiurl/sensiurl/internal/scan"
)

// CategoryFilter keeps only findings from the listed categories.
type CategoryFilter struct {
	include map[classify.Category]struct{}
}

// NewCategoryFilter creates a category allow-list filter. An empty list
// passes everything.
func NewCategoryFilter(categories []classify.Category) *CategoryFilter {
	f := &CategoryFilter{include: make(map[classify.Category]struct{}, len(categories))}
	for _, c := range categories {
		f.include[c] = struct{}{}
	}
	return f
}

func (f *CategoryFilter) Name() string { return "category" }

func (f *CategoryFilter) ShouldFilter(finding *scan.Finding) bool {
	if len(f.include) == 0 {
		return false
	}
	_, ok := f.include[finding.Category]
	return !ok
}
