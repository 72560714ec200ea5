package config

import (
	"fmt"
	"math"
	"time"
)

// Options holds all configuration for a sensiurl scan.
type Options struct {
	// Target
	InputFile string // file with one URL per line
	RulesFile string // optional YAML file with extra classification rules

	// Performance
	Concurrency      int
	RateLimit        float64 // average requests/second ceiling, 0 = unlimited
	Timeout          time.Duration
	Retries          int  // additional attempts after the first
	AdaptiveThrottle bool // back off on 429/503 responses
	MaxBodyBytes     int  // ranged GET sample size

	// HTTP
	UserAgent       string
	Proxy           string
	Headers         map[string]string
	Insecure        bool // disable TLS verification
	FollowRedirects bool

	// Scan behavior
	ProbeAll     bool // probe URLs with no classification match
	ClassifyOnly bool // skip probing entirely (no network)

	// Finding filters
	MinSeverity   string
	Categories    []string
	ExcludeStatus []int

	// Output
	OutputFile   string
	OutputFormat string // "text", "json", "csv"
	SortBy       string // "", "severity", "url", "status", "category"
	Quiet        bool
	NoColor      bool
	Verbose      bool

	// Hooks
	OnFindingCmd string
}

// Defaults applied by Validate when a zero value is left in place.
const (
	DefaultConcurrency  = 25
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodyBytes = 2048
	DefaultUserAgent    = "sensiurl/1.0"
)

// Validate checks the options for misconfiguration and fills in defaults.
// It must be called before any network activity; a non-nil error aborts
// the whole run.
func (o *Options) Validate() error {
	if o.Concurrency == 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Concurrency < 0 {
		return fmt.Errorf("concurrency must be positive, got %d", o.Concurrency)
	}
	if o.RateLimit < 0 || math.IsNaN(o.RateLimit) || math.IsInf(o.RateLimit, 0) {
		return fmt.Errorf("rate limit must be a non-negative number, got %v", o.RateLimit)
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %s", o.Timeout)
	}
	if o.Retries < 0 {
		return fmt.Errorf("retries must be non-negative, got %d", o.Retries)
	}
	if o.MaxBodyBytes == 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if o.MaxBodyBytes < 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", o.MaxBodyBytes)
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	switch o.OutputFormat {
	case "", "text", "json", "csv":
	default:
		return fmt.Errorf("unknown output format %q (want text, json, or csv)", o.OutputFormat)
	}
	switch o.SortBy {
	case "", "severity", "url", "status", "category":
	default:
		return fmt.Errorf("unknown sort key %q (want severity, url, status, or category)", o.SortBy)
	}
	return nil
}
