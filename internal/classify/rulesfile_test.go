package classify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseRules(t *testing.T) {
	data := []byte(`
- name: terraform-state
  category: SECRETS
  severity: critical
  description: Terraform state file
  suffix: .tfstate
  needs_body: true
- name: staging-dir
  category: DIRECTORY
  severity: low
  segment: staging
  dir_only: true
`)
	rules, err := parseRules(data)
	if err != nil {
		t.Fatalf("parseRules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(rules))
	}

	r := rules[0]
	if r.Name != "terraform-state" || r.Category != CategorySecrets || r.Severity != SeverityCritical {
		t.Errorf("unexpected rule: %+v", r)
	}
	if r.Suffix != ".tfstate" || !r.NeedsBody {
		t.Errorf("matchers not carried over: %+v", r)
	}
	if !rules[1].DirOnly {
		t.Error("dir_only not carried over")
	}
}

func TestParseRules_UppercaseMatchersLowered(t *testing.T) {
	data := []byte(`
- name: loud
  category: TEMP
  severity: low
  suffix: .BAK
`)
	rules, err := parseRules(data)
	if err != nil {
		t.Fatalf("parseRules: %v", err)
	}
	if rules[0].Suffix != ".bak" {
		t.Errorf("Suffix = %q, want lowercased", rules[0].Suffix)
	}
}

func TestParseRules_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string // substring of the error
	}{
		{
			name: "missing name",
			yaml: "- category: TEMP\n  severity: low\n  suffix: .x\n",
			want: "name",
		},
		{
			name: "unknown category",
			yaml: "- name: x\n  category: NOPE\n  severity: low\n  suffix: .x\n",
			want: "category",
		},
		{
			name: "unknown severity",
			yaml: "- name: x\n  category: TEMP\n  severity: extreme\n  suffix: .x\n",
			want: "severity",
		},
		{
			name: "no matcher",
			yaml: "- name: x\n  category: TEMP\n  severity: low\n",
			want: "matcher",
		},
		{
			name: "not yaml",
			yaml: "{{{",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRules([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadRules_FileAndPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "- name: custom-zip\n  category: SECRETS\n  severity: critical\n  suffix: .zip\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}

	// Extra rules outrank builtins with the same or lower severity.
	engine := NewEngine(rules...)
	tgt := target(t, "https://a.b/site.zip")
	primary := engine.Classify(tgt).Primary()
	if primary == nil || primary.Name != "custom-zip" {
		t.Errorf("Primary = %+v, want custom-zip", primary)
	}
}

func TestLoadRules_MissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
