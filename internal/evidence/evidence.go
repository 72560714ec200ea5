// Package evidence inspects probe outcomes and decides whether a
// classified candidate is a confirmed exposure. Pure given its inputs;
// all heuristics live in static tables so new signatures are added as
// entries, not branches.
package evidence

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sensiurl/sensiurl/internal/classify"
	"github.com/sensiurl/sensiurl/internal/scanner"
)

// maxEvidenceLen caps the evidence snippet in runes.
const maxEvidenceLen = 200

// Assessment is the verdict for one candidate.
type Assessment struct {
	Confirmed bool // strong positive signal observed
	Suppress  bool // negative evidence; drop unless the caller wants everything
	Severity  classify.Severity
	Reason    string
	Evidence  string
}

// signature is a body marker that confirms a category when present in the
// sampled bytes. Markers are matched case-insensitively.
type signature struct {
	category classify.Category // empty matches any category
	marker   string
	severity classify.Severity
	reason   string
}

var signatures = []signature{
	// VCS
	{classify.CategoryVCS, "ref: refs/heads/", classify.SeverityCritical, "git HEAD contents readable"},
	{classify.CategoryVCS, "repositoryformatversion", classify.SeverityCritical, "git config contents readable"},
	{classify.CategoryVCS, "[core]", classify.SeverityCritical, "git config contents readable"},
	{classify.CategoryVCS, "sqlite format 3", classify.SeverityHigh, "svn metadata database readable"},

	// Secrets
	{classify.CategorySecrets, "begin rsa private key", classify.SeverityCritical, "private key exposed"},
	{classify.CategorySecrets, "begin openssh private key", classify.SeverityCritical, "private key exposed"},
	{classify.CategorySecrets, "begin dsa private key", classify.SeverityCritical, "private key exposed"},
	{classify.CategorySecrets, "begin ec private key", classify.SeverityCritical, "private key exposed"},
	{classify.CategorySecrets, "database_url=", classify.SeverityCritical, "environment file with secrets"},
	{classify.CategorySecrets, "db_password=", classify.SeverityCritical, "environment file with secrets"},
	{classify.CategorySecrets, "secret_key=", classify.SeverityCritical, "environment file with secrets"},
	{classify.CategorySecrets, "jwt_secret", classify.SeverityCritical, "environment file with secrets"},
	{classify.CategorySecrets, "aws_secret_access_key", classify.SeverityCritical, "environment file with secrets"},
	{classify.CategorySecrets, "aws_access_key_id", classify.SeverityCritical, "environment file with secrets"},
	{classify.CategorySecrets, "api_key=", classify.SeverityHigh, "credential material readable"},

	// Configuration
	{classify.CategoryConfig, "db_password", classify.SeverityCritical, "config with database credentials"},
	{classify.CategoryConfig, "define('db_name'", classify.SeverityCritical, "wp-config contents readable"},
	{classify.CategoryConfig, "<?php", classify.SeverityHigh, "PHP source readable"},

	// Database dumps
	{classify.CategoryDumps, "-- mysql dump", classify.SeverityCritical, "MySQL dump readable"},
	{classify.CategoryDumps, "-- postgresql database dump", classify.SeverityCritical, "PostgreSQL dump readable"},
	{classify.CategoryDumps, "sqlite format 3", classify.SeverityCritical, "SQLite database readable"},
	{classify.CategoryDumps, "insert into", classify.SeverityCritical, "SQL dump readable"},

	// Directory listings
	{classify.CategoryDirectory, "index of /", classify.SeverityHigh, "directory listing enabled"},
	{classify.CategoryDirectory, "directory listing for", classify.SeverityHigh, "directory listing enabled"},
	{classify.CategoryDirectory, "<title>index of", classify.SeverityHigh, "directory listing enabled"},

	// Debug endpoints
	{classify.CategoryDebug, "phpinfo()", classify.SeverityHigh, "phpinfo output exposed"},
	{classify.CategoryDebug, "php version", classify.SeverityHigh, "phpinfo output exposed"},
}

var (
	createTableRe = regexp.MustCompile(`(?i)create table\s`)
	logLineRe     = regexp.MustCompile(`(?i)(\d{4}-\d{2}-\d{2}[ T]\d{2}:\d{2}:\d{2}|\[(error|warn|info|debug)\])`)
)

// contentTypes maps a path extension to content-type prefixes that make a
// 200 response consistent with the classified artifact.
var contentTypes = map[string][]string{
	"zip":     {"application/zip", "application/x-zip", "application/octet-stream"},
	"gz":      {"application/gzip", "application/x-gzip", "application/octet-stream"},
	"tgz":     {"application/gzip", "application/x-gzip", "application/octet-stream"},
	"7z":      {"application/x-7z-compressed", "application/octet-stream"},
	"rar":     {"application/vnd.rar", "application/x-rar", "application/octet-stream"},
	"tar":     {"application/x-tar", "application/octet-stream"},
	"sql":     {"text/", "application/sql", "application/octet-stream"},
	"db":      {"application/octet-stream"},
	"sqlite":  {"application/octet-stream"},
	"sqlite3": {"application/octet-stream"},
	"log":     {"text/"},
}

// Evaluate combines the classification and the probe outcome into an
// assessment. The outcome must be a real HTTP response; transport errors
// are the aggregator's business.
func Evaluate(c classify.Classification, out *scanner.Outcome) Assessment {
	primary := c.Primary()
	base := c.MaxSeverity()
	reason := "no classification match"
	if primary != nil {
		reason = primary.Description
	}

	// Negative evidence: the resource does not exist.
	if out.StatusCode == 404 || out.StatusCode == 410 {
		return Assessment{
			Suppress: true,
			Severity: classify.SeverityInfo,
			Reason:   fmt.Sprintf("%s (not found)", reason),
			Evidence: statusEvidence(out),
		}
	}

	body := strings.ToLower(string(out.BodySample))

	// Body signatures are the strongest signal.
	if len(body) > 0 && primary != nil && (out.StatusCode == 200 || out.StatusCode == 206) {
		for _, sig := range signatures {
			if sig.category != "" && !hasCategory(c, sig.category) {
				continue
			}
			if idx := strings.Index(body, sig.marker); idx >= 0 {
				return Assessment{
					Confirmed: true,
					Severity:  maxSeverity(base, sig.severity),
					Reason:    sig.reason,
					Evidence:  snippetAround(out.BodySample, idx, len(sig.marker)),
				}
			}
		}
		if hasCategory(c, classify.CategoryDumps) && createTableRe.MatchString(body) {
			return Assessment{
				Confirmed: true,
				Severity:  maxSeverity(base, classify.SeverityCritical),
				Reason:    "SQL dump readable",
				Evidence:  capString(createTableRe.FindString(string(out.BodySample))),
			}
		}
		if hasCategory(c, classify.CategoryLogs) && logLineRe.MatchString(body) {
			return Assessment{
				Confirmed: true,
				Severity:  maxSeverity(base, classify.SeverityMedium),
				Reason:    "log file readable",
				Evidence:  capString(logLineRe.FindString(string(out.BodySample))),
			}
		}
	}

	// Content-type consistent with the expected artifact.
	if out.StatusCode == 200 || out.StatusCode == 206 {
		ct := strings.ToLower(out.ContentType)
		if expected, ok := contentTypes[c.Extension]; ok && primary != nil {
			for _, prefix := range expected {
				if strings.HasPrefix(ct, prefix) {
					return Assessment{
						Confirmed: true,
						Severity:  base,
						Reason:    fmt.Sprintf("%s (content-type %s)", reason, out.ContentType),
						Evidence:  capString("content-type: " + out.ContentType),
					}
				}
			}
		}

		// Admin panels and debug endpoints exist by answering at all.
		if primary != nil && (primary.Category == classify.CategoryAdmin || primary.Category == classify.CategoryDebug) {
			return Assessment{
				Confirmed: true,
				Severity:  base,
				Reason:    fmt.Sprintf("%s responds", reason),
				Evidence:  statusEvidence(out),
			}
		}

		// Reachable but unverified: keep at base severity.
		return Assessment{
			Severity: base,
			Reason:   reason,
			Evidence: statusEvidence(out),
		}
	}

	// Access gated: weak positive, the resource likely exists behind auth.
	if out.StatusCode == 401 || out.StatusCode == 403 {
		return Assessment{
			Severity: maxSeverity(base, classify.SeverityMedium),
			Reason:   fmt.Sprintf("%s (access denied with %d, resource likely exists)", reason, out.StatusCode),
			Evidence: statusEvidence(out),
		}
	}

	// Redirects and everything else: informational.
	if out.StatusCode >= 300 && out.StatusCode < 400 {
		return Assessment{
			Severity: classify.SeverityInfo,
			Reason:   fmt.Sprintf("%s (redirects)", reason),
			Evidence: capString("location: " + out.RedirectURL),
		}
	}
	return Assessment{
		Severity: classify.SeverityInfo,
		Reason:   fmt.Sprintf("%s (HTTP %d)", reason, out.StatusCode),
		Evidence: statusEvidence(out),
	}
}

func hasCategory(c classify.Classification, cat classify.Category) bool {
	for _, r := range c.Matches {
		if r.Category == cat {
			return true
		}
	}
	return false
}

func maxSeverity(a, b classify.Severity) classify.Severity {
	if a > b {
		return a
	}
	return b
}

func statusEvidence(out *scanner.Outcome) string {
	if out.ContentType != "" {
		return capString(fmt.Sprintf("HTTP %d, content-type: %s", out.StatusCode, out.ContentType))
	}
	return capString(fmt.Sprintf("HTTP %d", out.StatusCode))
}

// snippetAround extracts the line containing a matched marker.
func snippetAround(body []byte, idx, markerLen int) string {
	start := idx
	for start > 0 && body[start-1] != '\n' {
		start--
	}
	end := idx + markerLen
	for end < len(body) && body[end] != '\n' && body[end] != '\r' {
		end++
	}
	return capString(strings.TrimSpace(string(body[start:end])))
}

func capString(s string) string {
	runes := []rune(s)
	if len(runes) <= maxEvidenceLen {
		return s
	}
	return string(runes[:maxEvidenceLen]) + "…"
}
