package scanner

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sensiurl/sensiurl/internal/config"
)

// redirectHopLimit caps redirect chains when following is enabled.
const redirectHopLimit = 10

// Prober confirms candidates with a minimal-footprint request sequence:
// a HEAD, then a small ranged GET when the HEAD alone cannot settle the
// question. It never issues write requests.
type Prober struct {
	client    *http.Client
	userAgent string
	headers   map[string]string
	timeout   time.Duration
	retries   int
	maxBody   int
	governor  *Governor
	throttler *Throttler
	logger    *slog.Logger
}

// NewProber creates a Prober from validated options.
func NewProber(opts *config.Options, gov *Governor, thr *Throttler, logger *slog.Logger) (*Prober, error) {
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.Insecure},
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: opts.Timeout,
		MaxIdleConns:        opts.Concurrency * 2,
		MaxIdleConnsPerHost: opts.Concurrency,
		ForceAttemptHTTP2:   true,
	}

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	}
	if opts.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= redirectHopLimit {
				return fmt.Errorf("stopped after %d redirects", redirectHopLimit)
			}
			return nil
		}
	} else {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &Prober{
		client:    client,
		userAgent: opts.UserAgent,
		headers:   opts.Headers,
		timeout:   opts.Timeout,
		retries:   opts.Retries,
		maxBody:   opts.MaxBodyBytes,
		governor:  gov,
		throttler: thr,
		logger:    logger,
	}, nil
}

// Probe fetches one URL. needBody forces the ranged GET even when the
// HEAD looks conclusive (set for categories whose evidence lives in the
// body). The returned Outcome is final: transient failures have already
// been retried.
func (p *Prober) Probe(ctx context.Context, rawURL string, needBody bool) *Outcome {
	start := time.Now()
	maxAttempts := p.retries + 1

	var out *Outcome
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var retryable bool
		out, retryable = p.attempt(ctx, rawURL, needBody)
		out.Attempts = attempt
		out.Elapsed = time.Since(start)

		if !retryable || attempt == maxAttempts {
			return out
		}

		// Linear back-off between attempts.
		select {
		case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
		case <-ctx.Done():
			out.Err = ctx.Err()
			out.ErrKind = ErrorCancelled
			return out
		}
	}
	return out
}

// attempt runs one HEAD (+ optional ranged GET) cycle. retryable reports
// whether a failure was transient.
func (p *Prober) attempt(ctx context.Context, rawURL string, needBody bool) (*Outcome, bool) {
	out := &Outcome{ContentLength: -1}

	if err := p.governor.Acquire(ctx); err != nil {
		out.Err = err
		out.ErrKind = ErrorCancelled
		return out, false
	}
	defer p.governor.Release()

	if delay := p.throttler.Delay(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			out.Err = ctx.Err()
			out.ErrKind = ErrorCancelled
			return out, false
		}
	}

	// Rate tokens are spent against the probe's context, not the
	// per-request deadline: a rate slower than one token per timeout must
	// pace the scan, never fail it.
	if err := p.governor.Wait(ctx); err != nil {
		out.Err = err
		out.ErrKind = ErrorCancelled
		return out, false
	}

	resp, err := p.do(ctx, http.MethodHead, rawURL, false)
	if err != nil {
		out.Err = err
		out.ErrKind = classifyError(ctx, err)
		if out.ErrKind == ErrorTimeout || out.ErrKind == ErrorNetwork {
			p.throttler.RecordError()
			return out, true
		}
		return out, false
	}
	resp.Body.Close()
	p.throttler.RecordStatus(resp.StatusCode)

	fill(out, resp)

	// 5xx is transient: retry the whole sequence, keeping the response
	// data in case this was the last attempt.
	if resp.StatusCode >= 500 {
		return out, true
	}

	if !p.needSample(resp.StatusCode, out.ContentLength, needBody) {
		return out, false
	}

	// The ranged GET is a second request and spends a second token.
	if err := p.governor.Wait(ctx); err != nil {
		out.Err = err
		out.ErrKind = ErrorCancelled
		return out, false
	}

	sample, sampleResp, err := p.sampleGet(ctx, rawURL)
	if err != nil {
		kind := classifyError(ctx, err)
		if kind == ErrorTimeout || kind == ErrorNetwork {
			p.throttler.RecordError()
			// Retry; if attempts are exhausted the HEAD-only outcome
			// above still stands.
			return out, true
		}
		return out, false
	}
	p.throttler.RecordStatus(sampleResp.StatusCode)

	out.BodySample = sample
	// Servers that reject HEAD outright tell the truth on GET.
	if resp.StatusCode == http.StatusMethodNotAllowed {
		fill(out, sampleResp)
	}
	return out, false
}

// do issues one request with the prober's standard headers.
func (p *Prober) do(ctx context.Context, method, rawURL string, ranged bool) (*http.Response, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "*/*")
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}
	if ranged {
		req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", p.maxBody-1))
	}

	p.logger.Debug("request", slog.String("method", method), slog.String("url", rawURL))
	return p.client.Do(req)
}

// sampleGet fetches at most maxBody bytes of the response body.
func (p *Prober) sampleGet(ctx context.Context, rawURL string) ([]byte, *http.Response, error) {
	resp, err := p.do(ctx, http.MethodGet, rawURL, true)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	// Cap the read even when the server ignores the Range header.
	sample, err := io.ReadAll(io.LimitReader(resp.Body, int64(p.maxBody)))
	if err != nil && len(sample) == 0 {
		return nil, nil, err
	}
	return sample, resp, nil
}

// needSample decides whether the HEAD response is inconclusive enough to
// warrant the ranged GET.
func (p *Prober) needSample(status int, contentLength int64, needBody bool) bool {
	switch status {
	case http.StatusMethodNotAllowed:
		return true
	case http.StatusOK, http.StatusPartialContent:
		return needBody || contentLength < 0
	case http.StatusUnauthorized, http.StatusForbidden:
		return needBody
	}
	return false
}

func fill(out *Outcome, resp *http.Response) {
	out.StatusCode = resp.StatusCode
	out.Headers = resp.Header
	out.ContentType = resp.Header.Get("Content-Type")
	out.ContentLength = resp.ContentLength
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			out.ContentLength = n
		}
	}
	if resp.Request != nil {
		out.FinalURL = resp.Request.URL.String()
	}
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		out.RedirectURL = resp.Header.Get("Location")
	}
}

// classifyError buckets a transport error for retry and reporting.
func classifyError(ctx context.Context, err error) ErrorKind {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return ErrorCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrorDNS
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) || strings.Contains(err.Error(), "x509:") {
		return ErrorTLS
	}
	return ErrorNetwork
}
