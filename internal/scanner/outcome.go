package scanner

import (
	"net/http"
	"time"
)

// ErrorKind buckets probe failures for reporting and retry decisions.
type ErrorKind string

const (
	ErrorNone      ErrorKind = ""
	ErrorTimeout   ErrorKind = "timeout"
	ErrorNetwork   ErrorKind = "network"
	ErrorDNS       ErrorKind = "dns"
	ErrorTLS       ErrorKind = "tls"
	ErrorCancelled ErrorKind = "cancelled"
)

// Outcome holds everything observed while probing one URL. Immutable once
// returned by the Prober; later stages only read it.
type Outcome struct {
	StatusCode    int // 0 when no response was obtained
	ContentType   string
	ContentLength int64 // -1 when the server did not say
	Headers       http.Header
	BodySample    []byte // at most MaxBodyBytes of the response body
	FinalURL      string // after redirects, when followed
	RedirectURL   string // Location header when redirects are not followed
	Elapsed       time.Duration
	Attempts      int
	Err           error
	ErrKind       ErrorKind
}
