package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sensiurl/sensiurl/internal/classify"
	"github.com/sensiurl/sensiurl/internal/scan"
)

func sampleFinding() *scan.Finding {
	return &scan.Finding{
		URL:           "https://example.com/.git/HEAD",
		Line:          3,
		Category:      classify.CategoryVCS,
		Severity:      classify.SeverityCritical,
		Status:        scan.StatusConfirmed,
		StatusCode:    200,
		ContentType:   "text/plain",
		ContentLength: 23,
		Rule:          "git-head",
		Reason:        "git HEAD contents readable",
		Evidence:      "ref: refs/heads/main",
		Attempts:      1,
	}
}

func TestJSONWriter_Envelope(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONWriter{w: &buf}

	meta := Meta{ScanID: "abc-123", GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	if err := w.WriteHeader(meta); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFinding(sampleFinding()); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFooter(Stats{Targets: 5, Probed: 3, Findings: 1, Duration: 1200 * time.Millisecond}); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if got["scan_id"] != "abc-123" {
		t.Errorf("scan_id = %v", got["scan_id"])
	}
	findings := got["findings"].([]any)
	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	f := findings[0].(map[string]any)
	if f["url"] != "https://example.com/.git/HEAD" || f["severity"] != "CRITICAL" || f["status"] != "confirmed" {
		t.Errorf("unexpected finding entry: %v", f)
	}
	if f["content_length"] != float64(23) {
		t.Errorf("content_length = %v, want 23", f["content_length"])
	}
	stats := got["stats"].(map[string]any)
	if stats["duration_ms"] != float64(1200) {
		t.Errorf("duration_ms = %v", stats["duration_ms"])
	}
}

func TestJSONWriter_EmptyFindingsIsArray(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONWriter{w: &buf}
	if err := w.WriteHeader(Meta{ScanID: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFooter(Stats{}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `"findings": null`) {
		t.Error("empty findings should marshal as [], not null")
	}
}

func TestJSONWriter_ContentLengthAlwaysPresent(t *testing.T) {
	for _, length := range []int64{0, -1} {
		var buf bytes.Buffer
		w := &JSONWriter{w: &buf}
		if err := w.WriteHeader(Meta{ScanID: "x"}); err != nil {
			t.Fatal(err)
		}
		f := sampleFinding()
		f.ContentLength = length
		if err := w.WriteFinding(f); err != nil {
			t.Fatal(err)
		}
		if err := w.WriteFooter(Stats{}); err != nil {
			t.Fatal(err)
		}

		var got struct {
			Findings []map[string]any `json:"findings"`
		}
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		v, ok := got.Findings[0]["content_length"]
		if !ok {
			t.Errorf("content_length missing for value %d", length)
			continue
		}
		if v != float64(length) {
			t.Errorf("content_length = %v, want %d", v, length)
		}
	}
}

func TestCSVWriter_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{w: csv.NewWriter(&buf)}

	if err := w.WriteHeader(Meta{}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFinding(sampleFinding()); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFooter(Stats{}); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + 1", len(records))
	}
	if records[0][0] != "url" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][2] != "VCS" || records[1][3] != "CRITICAL" {
		t.Errorf("row = %v", records[1])
	}
}

func TestCSVWriter_NoResponseLeavesStatusEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{w: csv.NewWriter(&buf)}

	f := sampleFinding()
	f.StatusCode = 0
	f.ContentLength = -1
	if err := w.WriteFinding(f); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFooter(Stats{}); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if records[0][5] != "" || records[0][7] != "" {
		t.Errorf("http_status/content_length should be empty: %v", records[0])
	}
}

func TestTextWriter_NoColorPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	w := &TextWriter{w: &buf, noColor: true, quiet: true}

	if err := w.WriteFinding(sampleFinding()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Contains(out, "\033[") {
		t.Error("noColor output contains ANSI escapes")
	}
	for _, want := range []string{"CRITICAL", "200", "VCS", "https://example.com/.git/HEAD", "ref: refs/heads/main"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSortedWriter_ReplaysByURL(t *testing.T) {
	var buf bytes.Buffer
	inner := &TextWriter{w: &buf, noColor: true, quiet: true}
	w := NewSortedWriter(inner, "url")

	a := sampleFinding()
	a.URL = "https://example.com/b.zip"
	b := sampleFinding()
	b.URL = "https://example.com/a.zip"
	for _, f := range []*scan.Finding{a, b} {
		if err := w.WriteFinding(f); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.WriteFooter(Stats{}); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if strings.Index(out, "a.zip") > strings.Index(out, "b.zip") {
		t.Errorf("findings not sorted by URL:\n%s", out)
	}
}

func TestNew_UnknownFormat(t *testing.T) {
	if _, err := New("xml", "", true, true); err == nil {
		t.Error("expected error for unknown format")
	}
}
