package filter

import "github.com/sensiurl/sensiurl/internal/scan"

// Filter decides whether a finding should be hidden from output.
type Filter interface {
	Name() string
	ShouldFilter(f *scan.Finding) bool
}

// Chain applies multiple filters in order, short-circuiting on the first match.
type Chain struct {
	filters []Filter
}

// NewChain returns an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// Add appends a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Apply runs every filter against the finding. Returns true and the filter
// name if the finding should be filtered out.
func (c *Chain) Apply(f *scan.Finding) (bool, string) {
	for _, flt := range c.filters {
		if flt.ShouldFilter(f) {
			return true, flt.Name()
		}
	}
	return false, ""
}
