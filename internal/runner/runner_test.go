package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sensiurl/sensiurl/internal/config"
	"github.com/sensiurl/sensiurl/internal/scan"
)

func TestCollectLines_ArgsThenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "https://a.example/.env\n# comment\nhttps://b.example/dump.sql\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := &config.Options{InputFile: path}
	lines, err := collectLines(opts, []string{"https://c.example/admin/"})
	if err != nil {
		t.Fatalf("collectLines: %v", err)
	}

	want := []string{
		"https://c.example/admin/",
		"https://a.example/.env",
		"# comment",
		"https://b.example/dump.sql",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d: %v", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestCollectLines_MissingFile(t *testing.T) {
	opts := &config.Options{InputFile: filepath.Join(t.TempDir(), "absent.txt")}
	if _, err := collectLines(opts, nil); err == nil {
		t.Error("expected error for missing input file")
	}
}

func TestCollectLines_ArgsOnly(t *testing.T) {
	lines, err := collectLines(&config.Options{}, []string{"https://a.example/x.zip"})
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
}

func TestBuildChain(t *testing.T) {
	opts := &config.Options{
		MinSeverity:   "high",
		Categories:    []string{"secrets", "VCS"},
		ExcludeStatus: []int{403},
	}
	chain, err := buildChain(opts)
	if err != nil {
		t.Fatalf("buildChain: %v", err)
	}

	hidden, name := chain.Apply(&scan.Finding{Severity: 1, Category: "VCS", StatusCode: 200})
	if !hidden || name != "severity" {
		t.Errorf("Apply = (%v, %q), want severity filter hit", hidden, name)
	}
}

func TestBuildChain_BadSeverity(t *testing.T) {
	if _, err := buildChain(&config.Options{MinSeverity: "extreme"}); err == nil {
		t.Error("expected error for unknown severity")
	}
}

func TestBuildChain_BadCategory(t *testing.T) {
	if _, err := buildChain(&config.Options{Categories: []string{"nope"}}); err == nil {
		t.Error("expected error for unknown category")
	}
}
