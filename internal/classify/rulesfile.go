package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ruleSpec is the YAML representation of a classification rule.
type ruleSpec struct {
	Name          string `yaml:"name"`
	Category      string `yaml:"category"`
	Severity      string `yaml:"severity"`
	Description   string `yaml:"description"`
	Contains      string `yaml:"contains"`
	Suffix        string `yaml:"suffix"`
	Segment       string `yaml:"segment"`
	SegmentPrefix string `yaml:"segment_prefix"`
	Query         string `yaml:"query"`
	DirOnly       bool   `yaml:"dir_only"`
	NeedsBody     bool   `yaml:"needs_body"`
}

// LoadRules reads extra classification rules from a YAML file. The file
// holds a list of rules; each needs a name, category, severity, and at
// least one matcher field.
func LoadRules(path string) ([]*Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return parseRules(data)
}

func parseRules(data []byte) ([]*Rule, error) {
	var specs []ruleSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	rules := make([]*Rule, 0, len(specs))
	for i, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("rule %d: missing name", i+1)
		}
		cat, err := ParseCategory(s.Category)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", s.Name, err)
		}
		sev, err := ParseSeverity(s.Severity)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", s.Name, err)
		}
		if s.Contains == "" && s.Suffix == "" && s.Segment == "" &&
			s.SegmentPrefix == "" && s.Query == "" && !s.DirOnly {
			return nil, fmt.Errorf("rule %q: no matcher fields set", s.Name)
		}
		rules = append(rules, &Rule{
			Name:          s.Name,
			Category:      cat,
			Severity:      sev,
			Description:   s.Description,
			Contains:      strings.ToLower(s.Contains),
			Suffix:        strings.ToLower(s.Suffix),
			Segment:       strings.ToLower(s.Segment),
			SegmentPrefix: strings.ToLower(s.SegmentPrefix),
			Query:         strings.ToLower(s.Query),
			DirOnly:       s.DirOnly,
			NeedsBody:     s.NeedsBody,
		})
	}
	return rules, nil
}
