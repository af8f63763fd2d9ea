package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// hostOf strips the scheme from an httptest server URL so it can be used
// as a bare domain, the way real top-sites entries are.
func hostOf(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	return strings.TrimPrefix(srv.URL, "http://")
}

// TestFetch tests the happy path of a single site fetch.
func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body, headers, and status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("X-Test-Header", "yes")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body>hello world</body></html>"))
		}))
		defer srv.Close()

		f := New(WithTimeout(5 * time.Second))
		res, err := f.Fetch(context.Background(), hostOf(t, srv))
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}

		if !strings.Contains(res.Body, "hello world") {
			t.Errorf("body missing expected content: %q", res.Body)
		}
		if res.Headers.Get("X-Test-Header") != "yes" {
			t.Error("expected X-Test-Header in response headers")
		}
		if res.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", res.StatusCode)
		}
		if res.Elapsed <= 0 {
			t.Errorf("expected positive elapsed time, got %v", res.Elapsed)
		}
	})

	t.Run("sends the configured user agent", func(t *testing.T) {
		t.Parallel()

		var gotUA string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
		}))
		defer srv.Close()

		f := New(WithUserAgent("TestAgent/1.0"))
		if _, err := f.Fetch(context.Background(), hostOf(t, srv)); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}

		if gotUA != "TestAgent/1.0" {
			t.Errorf("expected User-Agent TestAgent/1.0, got %q", gotUA)
		}
	})

	t.Run("truncates bodies beyond the size limit", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
		}))
		defer srv.Close()

		f := New(WithMaxBodySize(1024))
		res, err := f.Fetch(context.Background(), hostOf(t, srv))
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}

		if len(res.Body) > 1024 {
			t.Errorf("expected body capped at 1024 bytes, got %d", len(res.Body))
		}
	})

	t.Run("decodes legacy charsets to UTF-8", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			// 0xE9 is "é" in ISO-8859-1 and invalid as standalone UTF-8.
			_, _ = w.Write([]byte{'c', 'a', 'f', 0xE9})
		}))
		defer srv.Close()

		f := New()
		res, err := f.Fetch(context.Background(), hostOf(t, srv))
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}

		if !strings.Contains(res.Body, "café") {
			t.Errorf("expected decoded body to contain café, got %q", res.Body)
		}
	})
}

// TestFetchFailures tests that every failure mode becomes a classified
// error value rather than a panic or an unbounded wait.
func TestFetchFailures(t *testing.T) {
	t.Parallel()

	t.Run("slow server times out", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(2 * time.Second)
		}))
		defer srv.Close()

		f := New(WithTimeout(50 * time.Millisecond))
		start := time.Now()
		_, err := f.Fetch(context.Background(), hostOf(t, srv))
		elapsed := time.Since(start)

		if !errors.Is(err, ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
		if elapsed > time.Second {
			t.Errorf("fetch blocked past its timeout: %v", elapsed)
		}
	})

	t.Run("refused connection is a connection error", func(t *testing.T) {
		t.Parallel()

		// Start then immediately close to get a port with no listener.
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		addr := hostOf(t, srv)
		srv.Close()

		f := New(WithTimeout(2 * time.Second))
		_, err := f.Fetch(context.Background(), addr)

		if !errors.Is(err, ErrConnection) {
			t.Errorf("expected ErrConnection, got %v", err)
		}
	})

	t.Run("unresolvable domain is a connection error", func(t *testing.T) {
		t.Parallel()

		f := New(WithTimeout(2 * time.Second))
		_, err := f.Fetch(context.Background(), "no-such-host.invalid")

		if err == nil {
			t.Fatal("expected an error for unresolvable domain")
		}
		if !errors.Is(err, ErrConnection) && !errors.Is(err, ErrTimeout) {
			t.Errorf("expected classified fetch error, got %v", err)
		}
	})
}

// TestResultHeaderNames tests distinct, sorted header name extraction.
func TestResultHeaderNames(t *testing.T) {
	t.Parallel()

	res := &Result{
		Headers: http.Header{
			"Server":       []string{"nginx"},
			"Content-Type": []string{"text/html"},
			"Set-Cookie":   []string{"a=1", "b=2"},
		},
	}

	names := res.HeaderNames()
	want := []string{"Content-Type", "Server", "Set-Cookie"}

	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("expected names[%d] = %s, got %s", i, name, names[i])
		}
	}
}
