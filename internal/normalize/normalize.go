// Package normalize turns raw input lines into validated scan targets.
// It is the only place input text is parsed; everything downstream works
// with Target values and never re-reads the raw line.
package normalize

import (
	"fmt"
	"net/url"
	"strings"
)

// Target is a validated URL ready for classification and probing.
// The fragment is parsed then discarded and never reaches this struct.
type Target struct {
	Line     int // 1-based input line number
	Scheme   string
	Host     string
	Port     string // empty when the default port is used
	Path     string
	RawQuery string
}

// String rebuilds the URL in request form (no fragment).
func (t Target) String() string {
	u := url.URL{
		Scheme:   t.Scheme,
		Host:     t.hostport(),
		Path:     t.Path,
		RawQuery: t.RawQuery,
	}
	return u.String()
}

func (t Target) hostport() string {
	if t.Port == "" {
		return t.Host
	}
	return t.Host + ":" + t.Port
}

// ValidationError reports an input line that could not be parsed into a
// well-formed URL. It never aborts the scan; callers surface it as a
// per-line warning.
type ValidationError struct {
	Line   int
	Raw    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Raw)
}

// Parse parses one input line. ok is false when the line produces nothing
// (blank or comment). A returned error is always a *ValidationError.
func Parse(lineNo int, raw string) (Target, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.HasPrefix(s, "#") {
		return Target{}, false, nil
	}

	// Default the scheme before parsing so bare hostnames are not
	// mistaken for relative paths.
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		return Target{}, false, &ValidationError{Line: lineNo, Raw: raw, Reason: trimParseError(err)}
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Target{}, false, &ValidationError{Line: lineNo, Raw: raw, Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	if u.Hostname() == "" {
		return Target{}, false, &ValidationError{Line: lineNo, Raw: raw, Reason: "missing host"}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	return Target{
		Line:     lineNo,
		Scheme:   scheme,
		Host:     strings.ToLower(u.Hostname()),
		Port:     u.Port(),
		Path:     path,
		RawQuery: u.RawQuery,
	}, true, nil
}

// Lines parses a whole input in order. Targets and errors together map
// 1:1 to the non-skipped lines; relative order is preserved in both.
func Lines(lines []string) ([]Target, []*ValidationError) {
	var targets []Target
	var errs []*ValidationError
	for i, raw := range lines {
		t, ok, err := Parse(i+1, raw)
		if err != nil {
			errs = append(errs, err.(*ValidationError))
			continue
		}
		if ok {
			targets = append(targets, t)
		}
	}
	return targets, errs
}

// trimParseError strips the noisy `parse "...":` prefix net/url adds.
func trimParseError(err error) string {
	if ue, ok := err.(*url.Error); ok {
		return ue.Err.Error()
	}
	return err.Error()
}
