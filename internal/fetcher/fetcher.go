package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/killthrush/alexa-topsites/internal/config"
	"github.com/killthrush/alexa-topsites/internal/timing"
)

// Result holds a successfully fetched landing page.
type Result struct {
	// Body is the response body decoded to UTF-8 text (still markup;
	// the analyzer strips it down to prose).
	Body string

	// Headers contains all response headers, names canonicalized.
	Headers http.Header

	// StatusCode is the HTTP response status code.
	StatusCode int

	// Elapsed covers the network wait plus the body read. Queueing
	// delay caused by batching is deliberately not included; the
	// stopwatch starts inside Fetch, after any scheduling.
	Elapsed time.Duration
}

// HeaderNames returns the distinct response header names, sorted.
// Sorting keeps downstream aggregation order-independent of map iteration.
func (r *Result) HeaderNames() []string {
	names := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fetcher performs one GET per site against the domain's plain-HTTP root.
//
// Design decision: We hold the http.Client in the struct rather than
// passing it per call because client configuration (transport, pooling)
// should be consistent across the run, and a shared client reuses
// connections across batches. Tests inject their own client.
type Fetcher struct {
	// client is the HTTP client used for all fetches.
	client *http.Client

	// userAgent mimics a standard browser by default. Popular sites
	// serve different (often smaller) pages to obvious tools, which
	// would distort word counts.
	userAgent string

	// maxBodySize limits how many body bytes are read per page.
	maxBodySize int64

	// timeout bounds each fetch: connect, response wait, and body read.
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithClient sets a custom HTTP client. Used by tests and by callers that
// need transport-level configuration (proxies, TLS settings).
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// New creates a Fetcher with browser-like defaults.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		timeout:     config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{}
	}

	return f
}

// Fetch issues one GET to http://{domain} and returns the decoded body,
// the response headers, and the elapsed fetch time. It never blocks past
// the configured timeout; every failure mode comes back as a classified
// error value.
func (f *Fetcher) Fetch(ctx context.Context, domain string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+domain, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConnection, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	sw := timing.Start()

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	// Decode to UTF-8 based on the Content-Type charset, falling back to
	// sniffing the body. Pages declaring legacy encodings (windows-1251,
	// shift_jis, ...) are common among top-ranked domains.
	limited := io.LimitReader(resp.Body, f.maxBodySize)
	decoded, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}

	body, err := io.ReadAll(decoded)
	if err != nil {
		return nil, classify(err)
	}

	return &Result{
		Body:       string(body),
		Headers:    resp.Header.Clone(),
		StatusCode: resp.StatusCode,
		Elapsed:    sw.Elapsed(),
	}, nil
}
