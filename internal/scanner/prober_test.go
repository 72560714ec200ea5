package scanner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensiurl/sensiurl/internal/config"
)

func testProber(t *testing.T, opts *config.Options) *Prober {
	t.Helper()
	if opts == nil {
		opts = &config.Options{}
	}
	require.NoError(t, opts.Validate())
	opts.Concurrency = 2
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	p, err := NewProber(opts, NewGovernor(opts.Concurrency, 0), NewThrottler(false, logger), logger)
	require.NoError(t, err)
	return p
}

func TestProbe_HeadOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("unexpected method %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Length", "123456")
		w.WriteHeader(200)
	}))
	defer srv.Close()

	p := testProber(t, nil)
	out := p.Probe(context.Background(), srv.URL+"/backup.zip", false)

	require.NoError(t, out.Err)
	assert.Equal(t, 200, out.StatusCode)
	assert.Equal(t, "application/zip", out.ContentType)
	assert.Equal(t, int64(123456), out.ContentLength)
	assert.Nil(t, out.BodySample, "conclusive HEAD should not trigger a GET")
	assert.Equal(t, 1, out.Attempts)
}

func TestProbe_RangedGetWhenBodyNeeded(t *testing.T) {
	var sawRange atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			sawRange.Store(r.Header.Get("Range"))
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Length", "26")
		fmt.Fprint(w, "ref: refs/heads/main\nxxxxx")
	}))
	defer srv.Close()

	p := testProber(t, &config.Options{MaxBodyBytes: 512})
	out := p.Probe(context.Background(), srv.URL+"/.git/HEAD", true)

	require.NoError(t, out.Err)
	assert.Equal(t, 200, out.StatusCode)
	assert.Contains(t, string(out.BodySample), "ref: refs/heads/")
	assert.Equal(t, "bytes=0-511", sawRange.Load())
}

func TestProbe_SampleCappedWhenRangeIgnored(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Ignore the Range header and send 1 MiB.
		w.WriteHeader(200)
		if r.Method == http.MethodGet {
			w.Write(make([]byte, 1<<20))
		}
	}))
	defer srv.Close()

	p := testProber(t, &config.Options{MaxBodyBytes: 256})
	out := p.Probe(context.Background(), srv.URL+"/dump.sql", true)

	require.NoError(t, out.Err)
	assert.Len(t, out.BodySample, 256)
}

func TestProbe_HeadRejectedFallsBackToGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(200)
		fmt.Fprint(w, "DB_PASSWORD=hunter2")
	}))
	defer srv.Close()

	p := testProber(t, nil)
	out := p.Probe(context.Background(), srv.URL+"/.env", false)

	require.NoError(t, out.Err)
	assert.Equal(t, 200, out.StatusCode, "GET status should replace the 405")
	assert.Contains(t, string(out.BodySample), "DB_PASSWORD")
}

func TestProbe_RetriesOn5xx(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 1 {
			w.WriteHeader(502)
			return
		}
		w.Header().Set("Content-Length", "5")
		w.WriteHeader(200)
	}))
	defer srv.Close()

	p := testProber(t, &config.Options{Retries: 2})
	out := p.Probe(context.Background(), srv.URL+"/x.sql.gz", false)

	require.NoError(t, out.Err)
	assert.Equal(t, 200, out.StatusCode)
	assert.Equal(t, 2, out.Attempts)
}

func TestProbe_TimeoutExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	p := testProber(t, &config.Options{
		Timeout: 100 * time.Millisecond,
		Retries: 2,
	})
	out := p.Probe(context.Background(), srv.URL+"/slow", false)

	require.Error(t, out.Err)
	assert.Equal(t, ErrorTimeout, out.ErrKind)
	assert.Equal(t, 3, out.Attempts, "retries+1 attempts expected")
}

func TestProbe_SlowRateLimitPacesInsteadOfFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(200)
	}))
	defer srv.Close()

	opts := &config.Options{Timeout: 500 * time.Millisecond}
	require.NoError(t, opts.Validate())
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	// One token every two seconds, far slower than the request timeout:
	// probes must pace, not fail.
	p, err := NewProber(opts, NewGovernor(2, 0.5), NewThrottler(false, logger), logger)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 2; i++ {
		out := p.Probe(context.Background(), srv.URL+"/a.zip", false)
		require.NoError(t, out.Err, "probe %d", i)
		assert.Equal(t, 200, out.StatusCode)
		assert.Equal(t, 1, out.Attempts)
	}
	assert.GreaterOrEqual(t, time.Since(start), 1500*time.Millisecond,
		"second token should arrive about 2s after the first")
}

func TestProbe_DNSFailureNotRetried(t *testing.T) {
	p := testProber(t, &config.Options{Retries: 3, Timeout: 2 * time.Second})
	out := p.Probe(context.Background(), "http://nonexistent.invalid/x", false)

	require.Error(t, out.Err)
	assert.Equal(t, ErrorDNS, out.ErrKind)
	assert.Equal(t, 1, out.Attempts, "DNS failures must not be retried")
}

func TestProbe_RedirectNotFollowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusMovedPermanently)
	}))
	defer srv.Close()

	p := testProber(t, &config.Options{FollowRedirects: false})
	out := p.Probe(context.Background(), srv.URL+"/admin/", false)

	require.NoError(t, out.Err)
	assert.Equal(t, 301, out.StatusCode)
	assert.Equal(t, "/elsewhere", out.RedirectURL)
}

func TestProbe_RedirectFollowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/admin/" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		w.Header().Set("Content-Length", "0")
		w.WriteHeader(200)
	}))
	defer srv.Close()

	p := testProber(t, &config.Options{FollowRedirects: true})
	out := p.Probe(context.Background(), srv.URL+"/admin/", false)

	require.NoError(t, out.Err)
	assert.Equal(t, 200, out.StatusCode)
	assert.True(t, strings.HasSuffix(out.FinalURL, "/login"), "FinalURL = %s", out.FinalURL)
}

func TestRunPool_OneResultPerItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
	}))
	defer srv.Close()

	p := testProber(t, nil)
	items := make([]Item, 20)
	for i := range items {
		items[i] = Item{Index: i, URL: fmt.Sprintf("%s/f%d", srv.URL, i)}
	}

	seen := make(map[int]bool)
	for res := range RunPool(context.Background(), p, items, PoolConfig{Workers: 5}) {
		assert.False(t, seen[res.Item.Index], "duplicate result for %d", res.Item.Index)
		seen[res.Item.Index] = true
	}
	assert.Len(t, seen, len(items))
}

func TestRunPool_CancelledItemsDrainAsIncomplete(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(200)
	}))
	defer srv.Close()
	defer close(release)

	p := testProber(t, &config.Options{Timeout: 5 * time.Second})
	items := make([]Item, 10)
	for i := range items {
		items[i] = Item{Index: i, URL: srv.URL + "/hang"}
	}

	ctx, cancel := context.WithCancel(context.Background())
	results := RunPool(ctx, p, items, PoolConfig{Workers: 2})

	time.Sleep(50 * time.Millisecond)
	cancel()

	var total, cancelled int
	for res := range results {
		total++
		if res.Outcome.ErrKind == ErrorCancelled {
			cancelled++
		}
	}
	assert.Equal(t, len(items), total, "every item must produce a result")
	assert.Greater(t, cancelled, 0, "cancellation should mark pending items")
}
