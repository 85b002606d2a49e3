package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hyperifyio/goleads/internal/cache"
	"github.com/hyperifyio/goleads/internal/failure"
)

func TestGet_Success(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 2, PerRequestTimeout: 2 * time.Second}
	body, ct, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct == "" || string(body) == "" {
		t.Fatalf("expected content type and body")
	}
	if gotUA != DefaultUserAgent {
		t.Fatalf("expected browser user agent, got %q", gotUA)
	}
}

func TestGet_RetryOn5xx(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(502)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 2, PerRequestTimeout: 2 * time.Second, RetryBackoff: time.Millisecond}
	if _, _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestGet_NotFoundIsNetworkErrorWithoutRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 3, RetryBackoff: time.Millisecond}
	_, _, err := c.Get(context.Background(), srv.URL)
	var ne *failure.NetworkError
	if !errors.As(err, &ne) || ne.Status != http.StatusNotFound {
		t.Fatalf("expected 404 NetworkError, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("4xx must not be retried, got %d calls", calls)
	}
}

func TestGet_TimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1, PerRequestTimeout: 50 * time.Millisecond}
	_, _, err := c.Get(context.Background(), srv.URL)
	var ne *failure.NetworkError
	if !errors.As(err, &ne) || !ne.Timeout() {
		t.Fatalf("expected timeout NetworkError, got %v", err)
	}
}

func TestGet_Conditional304_UsesCache(t *testing.T) {
	var calls int
	etag := `"abc123"`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "text/html")
		if calls == 1 {
			w.Header().Set("ETag", etag)
			_, _ = w.Write([]byte("first"))
			return
		}
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		fmt.Fprintln(w, "unexpected")
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second, Cache: &cache.PageCache{Dir: t.TempDir()}}

	b1, _, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("first get error: %v", err)
	}
	if string(b1) != "first" {
		t.Fatalf("unexpected body1: %q", string(b1))
	}
	b2, _, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("second get error: %v", err)
	}
	if string(b2) != "first" {
		t.Fatalf("expected cached body, got %q", string(b2))
	}
}

func TestGet_RejectsNonHTTP(t *testing.T) {
	c := &Client{MaxAttempts: 1, PerRequestTimeout: 1 * time.Second}
	_, _, err := c.Get(context.Background(), "file:///etc/hosts")
	if failure.KindOf(err) != failure.KindNetwork {
		t.Fatalf("expected network error for non-http scheme, got %v", err)
	}
}

func TestGet_ContentTypeGating(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.WriteHeader(200)
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second}
	_, _, err := c.Get(context.Background(), srv.URL)
	var pe *failure.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError for unsupported content type, got %v", err)
	}
}

func TestGet_RedirectLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/next", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second, RedirectMaxHops: 1}
	if _, _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected redirect limit error")
	}
}
