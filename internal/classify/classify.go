// Package classify maps URL paths and queries onto exposure categories
// using an ordered, static rule table. It performs no I/O and is safe for
// concurrent use once an Engine is built.
package classify

import (
	"fmt"
	"strings"

	"github.com/sensiurl/sensiurl/internal/normalize"
)

// Severity is the ordinal risk level of a finding.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityInfo:     "INFO",
	SeverityLow:      "LOW",
	SeverityMedium:   "MEDIUM",
	SeverityHigh:     "HIGH",
	SeverityCritical: "CRITICAL",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

// ParseSeverity parses a case-insensitive severity name.
func ParseSeverity(s string) (Severity, error) {
	for sev, name := range severityNames {
		if strings.EqualFold(s, name) {
			return sev, nil
		}
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q", s)
}

// Category labels the kind of exposure a rule detects.
type Category string

const (
	CategoryVCS       Category = "VCS"
	CategorySecrets   Category = "SECRETS"
	CategoryConfig    Category = "CONFIG"
	CategoryDumps     Category = "DUMPS"
	CategoryLogs      Category = "LOGS"
	CategoryArchives  Category = "ARCHIVES"
	CategoryTemp      Category = "TEMP"
	CategoryDirectory Category = "DIRECTORY"
	CategoryDebug     Category = "DEBUG"
	CategoryAdmin     Category = "ADMIN"
	CategoryOther     Category = "OTHER"
)

var knownCategories = map[Category]bool{
	CategoryVCS: true, CategorySecrets: true, CategoryConfig: true,
	CategoryDumps: true, CategoryLogs: true, CategoryArchives: true,
	CategoryTemp: true, CategoryDirectory: true, CategoryDebug: true,
	CategoryAdmin: true, CategoryOther: true,
}

// ParseCategory validates a case-insensitive category name.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(s))
	if !knownCategories[c] {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Rule matches a URL by its path (and optionally query). All non-empty
// matcher fields must hold for the rule to match. Matching is
// case-insensitive throughout.
type Rule struct {
	Name        string
	Category    Category
	Severity    Severity // base severity, adjustable by probe evidence
	Description string

	Contains      string // substring of the path
	Suffix        string // suffix of the path
	Segment       string // exact path segment
	SegmentPrefix string // prefix of any path segment
	Query         string // substring of the query string
	DirOnly       bool   // path must end with "/"

	NeedsBody bool // confirmation requires a body sample, not just headers
}

// Matches reports whether the rule applies to the given path and query.
// Both are expected pre-lowercased by the Engine.
func (r *Rule) Matches(path, query string) bool {
	if r.DirOnly && !strings.HasSuffix(path, "/") {
		return false
	}
	if r.Contains != "" && !strings.Contains(path, r.Contains) {
		return false
	}
	if r.Suffix != "" && !strings.HasSuffix(strings.TrimSuffix(path, "/"), r.Suffix) {
		return false
	}
	if r.Segment != "" || r.SegmentPrefix != "" {
		found := false
		for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
			if r.Segment != "" && seg == r.Segment {
				found = true
				break
			}
			if r.SegmentPrefix != "" && strings.HasPrefix(seg, r.SegmentPrefix) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if r.Query != "" && !strings.Contains(query, r.Query) {
		return false
	}
	return r.Contains != "" || r.Suffix != "" || r.Segment != "" ||
		r.SegmentPrefix != "" || r.Query != "" || r.DirOnly
}

// Classification is the result of running a Target through the rule table.
type Classification struct {
	Matches   []*Rule // ordered as in the table; may be empty
	Extension string  // lowercased, without dot; "none" when absent
}

// Primary returns the highest-priority matched rule: the earliest rule in
// the table whose severity equals the maximum across all matches. Nil when
// nothing matched.
func (c Classification) Primary() *Rule {
	max := c.MaxSeverity()
	for _, r := range c.Matches {
		if r.Severity == max {
			return r
		}
	}
	return nil
}

// MaxSeverity returns the highest base severity among the matches.
func (c Classification) MaxSeverity() Severity {
	max := SeverityInfo
	for _, r := range c.Matches {
		if r.Severity > max {
			max = r.Severity
		}
	}
	return max
}

// NeedsBody reports whether any matched rule requires body evidence.
func (c Classification) NeedsBody() bool {
	for _, r := range c.Matches {
		if r.NeedsBody {
			return true
		}
	}
	return false
}

// Engine evaluates the ordered rule table. Read-only after construction.
type Engine struct {
	rules []*Rule
}

// NewEngine builds an engine from the built-in table. Extra rules are
// prepended, so user-supplied rules take precedence in tie-breaks.
func NewEngine(extra ...*Rule) *Engine {
	rules := make([]*Rule, 0, len(extra)+len(builtinRules))
	rules = append(rules, extra...)
	rules = append(rules, builtinRules...)
	return &Engine{rules: rules}
}

// Classify runs the target through every rule in table order.
// Deterministic and idempotent: the same target always yields the same
// matches.
func (e *Engine) Classify(t normalize.Target) Classification {
	path := strings.ToLower(t.Path)
	query := strings.ToLower(t.RawQuery)

	c := Classification{Extension: Extension(t.Path)}
	for _, r := range e.rules {
		if r.Matches(path, query) {
			c.Matches = append(c.Matches, r)
		}
	}
	return c
}

// Extension returns the lowercased file extension of the path's last
// segment without the dot, or "none". Trailing-slash paths and dotfiles
// like /.env have no extension.
func Extension(p string) string {
	if strings.HasSuffix(p, "/") {
		return "none"
	}
	seg := p
	if i := strings.LastIndex(p, "/"); i >= 0 {
		seg = p[i+1:]
	}
	i := strings.LastIndex(seg, ".")
	if i <= 0 || i == len(seg)-1 {
		return "none"
	}
	return strings.ToLower(seg[i+1:])
}

// Histogram counts targets per file extension.
type Histogram map[string]int

// Add records one occurrence of ext.
func (h Histogram) Add(ext string) { h[ext]++ }
