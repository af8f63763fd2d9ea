package source

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// pageXML renders one listing page in the service's XML response shape.
func pageXML(domains []string) string {
	var sb strings.Builder
	sb.WriteString(`<aws:TopSitesResponse xmlns:aws="http://ats.amazonaws.com/doc/2005-11-21">`)
	sb.WriteString(`<aws:Response><aws:TopSites><aws:Country><aws:Sites>`)
	for _, d := range domains {
		fmt.Fprintf(&sb, `<aws:Site><aws:DataUrl>%s</aws:DataUrl></aws:Site>`, d)
	}
	sb.WriteString(`</aws:Sites></aws:Country></aws:TopSites></aws:Response></aws:TopSitesResponse>`)
	return sb.String()
}

// listingServer serves ranked domains in pages, honoring the Start and
// Count query parameters the way the real listing does.
func listingServer(t *testing.T, all []string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}

		start, err := strconv.Atoi(r.URL.Query().Get("Start"))
		if err != nil {
			t.Errorf("missing or invalid Start parameter: %v", err)
			start = 1
		}
		count, err := strconv.Atoi(r.URL.Query().Get("Count"))
		if err != nil {
			t.Errorf("missing or invalid Count parameter: %v", err)
			count = 100
		}

		from := start - 1
		if from > len(all) {
			from = len(all)
		}
		to := from + count
		if to > len(all) {
			to = len(all)
		}

		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(pageXML(all[from:to])))
	}))
}

// fixedClock pins the client's notion of "today".
func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
}

// TestTopDomains tests live fetching, paging, and caching.
func TestTopDomains(t *testing.T) {
	t.Parallel()

	t.Run("pages through the listing in rank order", func(t *testing.T) {
		t.Parallel()

		all := []string{"a.com", "b.com", "c.com", "d.com", "e.com"}
		srv := listingServer(t, all, nil)
		defer srv.Close()

		c := New("key", "secret",
			WithEndpoint(srv.URL),
			WithCacheDir(t.TempDir()),
			WithPageSize(2),
			WithClock(fixedClock()),
		)

		domains, err := c.TopDomains(context.Background(), 5)
		if err != nil {
			t.Fatalf("TopDomains failed: %v", err)
		}

		if len(domains) != 5 {
			t.Fatalf("expected 5 domains, got %d", len(domains))
		}
		for i, want := range all {
			if domains[i] != want {
				t.Errorf("expected domains[%d] = %s, got %s", i, want, domains[i])
			}
		}
	})

	t.Run("writes the daily cache file", func(t *testing.T) {
		t.Parallel()

		srv := listingServer(t, []string{"a.com"}, nil)
		defer srv.Close()

		cacheDir := t.TempDir()
		c := New("key", "secret",
			WithEndpoint(srv.URL),
			WithCacheDir(cacheDir),
			WithClock(fixedClock()),
		)

		if _, err := c.TopDomains(context.Background(), 10); err != nil {
			t.Fatalf("TopDomains failed: %v", err)
		}

		cacheFile := filepath.Join(cacheDir, "topsites-2025-06-15.json")
		if _, err := os.Stat(cacheFile); err != nil {
			t.Errorf("expected cache file %s to exist: %v", cacheFile, err)
		}
	})

	t.Run("same-day second call hits the cache, not the service", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := listingServer(t, []string{"a.com", "b.com"}, &hits)
		defer srv.Close()

		cacheDir := t.TempDir()
		mk := func() *Client {
			return New("key", "secret",
				WithEndpoint(srv.URL),
				WithCacheDir(cacheDir),
				WithClock(fixedClock()),
			)
		}

		if _, err := mk().TopDomains(context.Background(), 10); err != nil {
			t.Fatalf("first call failed: %v", err)
		}
		after := hits.Load()

		domains, err := mk().TopDomains(context.Background(), 10)
		if err != nil {
			t.Fatalf("second call failed: %v", err)
		}

		if hits.Load() != after {
			t.Errorf("second call queried the service: %d hits, want %d", hits.Load(), after)
		}
		if len(domains) != 2 {
			t.Errorf("expected 2 cached domains, got %d", len(domains))
		}
	})

	t.Run("accepts fewer domains than requested", func(t *testing.T) {
		t.Parallel()

		srv := listingServer(t, []string{"only.com"}, nil)
		defer srv.Close()

		c := New("key", "secret",
			WithEndpoint(srv.URL),
			WithCacheDir(t.TempDir()),
			WithClock(fixedClock()),
		)

		domains, err := c.TopDomains(context.Background(), 1000)
		if err != nil {
			t.Fatalf("TopDomains failed: %v", err)
		}
		if len(domains) != 1 {
			t.Errorf("expected 1 domain, got %d", len(domains))
		}
	})

	t.Run("deduplicates while preserving rank order", func(t *testing.T) {
		t.Parallel()

		srv := listingServer(t, []string{"a.com", "b.com", "a.com"}, nil)
		defer srv.Close()

		c := New("key", "secret",
			WithEndpoint(srv.URL),
			WithCacheDir(t.TempDir()),
			WithClock(fixedClock()),
		)

		domains, err := c.TopDomains(context.Background(), 10)
		if err != nil {
			t.Fatalf("TopDomains failed: %v", err)
		}
		if len(domains) != 2 || domains[0] != "a.com" || domains[1] != "b.com" {
			t.Errorf("expected deduplicated [a.com b.com], got %v", domains)
		}
	})

	t.Run("corrupt cache falls back to live query", func(t *testing.T) {
		t.Parallel()

		srv := listingServer(t, []string{"a.com"}, nil)
		defer srv.Close()

		cacheDir := t.TempDir()
		if err := os.WriteFile(filepath.Join(cacheDir, "topsites-2025-06-15.json"), []byte("{not json"), 0600); err != nil {
			t.Fatalf("failed to plant corrupt cache: %v", err)
		}

		c := New("key", "secret",
			WithEndpoint(srv.URL),
			WithCacheDir(cacheDir),
			WithClock(fixedClock()),
		)

		domains, err := c.TopDomains(context.Background(), 10)
		if err != nil {
			t.Fatalf("TopDomains failed: %v", err)
		}
		if len(domains) != 1 {
			t.Errorf("expected live result despite corrupt cache, got %v", domains)
		}
	})
}

// TestTopDomainsUnavailable tests the fatal no-domains conditions.
func TestTopDomainsUnavailable(t *testing.T) {
	t.Parallel()

	t.Run("service error with no cache", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer srv.Close()

		c := New("key", "secret",
			WithEndpoint(srv.URL),
			WithCacheDir(t.TempDir()),
			WithClock(fixedClock()),
		)

		_, err := c.TopDomains(context.Background(), 10)
		if !errors.Is(err, ErrSourceUnavailable) {
			t.Errorf("expected ErrSourceUnavailable, got %v", err)
		}
	})

	t.Run("empty listing", func(t *testing.T) {
		t.Parallel()

		srv := listingServer(t, nil, nil)
		defer srv.Close()

		c := New("key", "secret",
			WithEndpoint(srv.URL),
			WithCacheDir(t.TempDir()),
			WithClock(fixedClock()),
		)

		_, err := c.TopDomains(context.Background(), 10)
		if !errors.Is(err, ErrSourceUnavailable) {
			t.Errorf("expected ErrSourceUnavailable, got %v", err)
		}
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		endpoint := srv.URL
		srv.Close()

		c := New("key", "secret",
			WithEndpoint(endpoint),
			WithCacheDir(t.TempDir()),
			WithClock(fixedClock()),
		)

		_, err := c.TopDomains(context.Background(), 10)
		if !errors.Is(err, ErrSourceUnavailable) {
			t.Errorf("expected ErrSourceUnavailable, got %v", err)
		}
	})
}

// TestSignedPageURL tests the request signing scheme.
func TestSignedPageURL(t *testing.T) {
	t.Parallel()

	c := New("AKIAEXAMPLE", "secret", WithEndpoint("https://ats.amazonaws.com/"))
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	signedURL, err := c.signedPageURL(3, now)
	if err != nil {
		t.Fatalf("signedPageURL failed: %v", err)
	}

	u, err := url.Parse(signedURL)
	if err != nil {
		t.Fatalf("signed URL does not parse: %v", err)
	}
	q := u.Query()

	if q.Get("Action") != "TopSites" {
		t.Errorf("expected Action=TopSites, got %q", q.Get("Action"))
	}
	if q.Get("AWSAccessKeyId") != "AKIAEXAMPLE" {
		t.Errorf("expected access key id in query, got %q", q.Get("AWSAccessKeyId"))
	}
	// Page 3 with the default page size of 100 starts at entry 201
	if q.Get("Start") != "201" {
		t.Errorf("expected Start=201 for page 3, got %q", q.Get("Start"))
	}
	if q.Get("SignatureVersion") != "2" {
		t.Errorf("expected SignatureVersion=2, got %q", q.Get("SignatureVersion"))
	}

	sig, err := base64.StdEncoding.DecodeString(q.Get("Signature"))
	if err != nil {
		t.Fatalf("signature is not valid base64: %v", err)
	}
	if len(sig) != 32 {
		t.Errorf("expected 32-byte HMAC-SHA256 signature, got %d bytes", len(sig))
	}

	// Signing is deterministic for a fixed timestamp
	again, err := c.signedPageURL(3, now)
	if err != nil {
		t.Fatalf("second signedPageURL failed: %v", err)
	}
	if signedURL != again {
		t.Error("expected identical signed URLs for identical inputs")
	}
}
