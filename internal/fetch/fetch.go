package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goleads/internal/cache"
	"github.com/hyperifyio/goleads/internal/failure"
)

// DefaultUserAgent is a browser-like UA; many company sites refuse bare
// library agents.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

// DefaultTimeout bounds a single request when PerRequestTimeout is zero.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps how much of a page is read.
const maxBodyBytes = 4 << 20

// Client wraps http.Client with a per-request timeout, bounded retry on
// transient errors, an optional conditional-GET cache and HTML content-type
// gating. Errors are *failure.NetworkError or *failure.ParseError.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request. Zero means DefaultTimeout.
	PerRequestTimeout time.Duration
	// Optional on-disk cache for page bodies and validators.
	Cache *cache.PageCache
	// BypassCache skips conditional headers but still stores fresh responses.
	BypassCache bool
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
	// RetryBackoff is the base delay between attempts. Zero means 200ms.
	RetryBackoff time.Duration
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// clone to attach our redirect policy without mutating the caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

type response struct {
	body        []byte
	contentType string
	etag        string
	lastMod     string
	status      int
}

// Get fetches rawURL and returns the body and its Content-Type.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	var etag, lastMod string
	if c.Cache != nil && !c.BypassCache {
		if meta, err := c.Cache.Meta(ctx, rawURL); err == nil {
			etag = meta.ETag
			lastMod = meta.LastModified
		}
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	backoff := c.RetryBackoff
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		resp, err := c.tryOnce(ctx, rawURL, etag, lastMod)
		if err == nil {
			return c.finish(ctx, rawURL, resp)
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			break
		}
		log.Debug().Str("url", rawURL).Int("attempt", i+1).Err(err).Msg("fetch: retrying")
		select {
		case <-ctx.Done():
			return nil, "", &failure.NetworkError{URL: rawURL, Err: ctx.Err()}
		case <-time.After(time.Duration(i+1) * backoff):
		}
	}
	if lastErr == nil {
		lastErr = &failure.NetworkError{URL: rawURL, Err: errors.New("unknown error")}
	}
	return nil, "", lastErr
}

func (c *Client) finish(ctx context.Context, rawURL string, resp response) ([]byte, string, error) {
	if resp.status == http.StatusNotModified && c.Cache != nil {
		body, err := c.Cache.Body(ctx, rawURL)
		if err == nil {
			ct := resp.contentType
			if meta, merr := c.Cache.Meta(ctx, rawURL); merr == nil && meta.ContentType != "" {
				ct = meta.ContentType
			}
			log.Debug().Str("url", rawURL).Msg("fetch: not modified, served from cache")
			return body, ct, nil
		}
		return nil, "", &failure.NetworkError{URL: rawURL, Status: resp.status, Err: errors.New("not modified but no cached body")}
	}
	if c.Cache != nil && resp.status == http.StatusOK {
		entry := cache.PageEntry{URL: rawURL, ContentType: resp.contentType, ETag: resp.etag, LastModified: resp.lastMod}
		if err := c.Cache.Store(ctx, entry, resp.body); err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("fetch: cache store failed")
		}
	}
	return resp.body, resp.contentType, nil
}

func (c *Client) tryOnce(ctx context.Context, rawURL, etag, lastMod string) (response, error) {
	timeout := c.PerRequestTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, &failure.NetworkError{URL: rawURL, Err: fmt.Errorf("new request: %w", err)}
	}
	if !isHTTPScheme(req.URL) {
		return response{}, &failure.NetworkError{URL: rawURL, Err: fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)}
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return response{}, &failure.NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	out := response{
		contentType: resp.Header.Get("Content-Type"),
		etag:        resp.Header.Get("ETag"),
		lastMod:     resp.Header.Get("Last-Modified"),
		status:      resp.StatusCode,
	}
	if resp.StatusCode == http.StatusNotModified {
		return out, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return response{}, &failure.NetworkError{URL: rawURL, Status: resp.StatusCode}
	}
	if !isAllowedHTMLContentType(out.contentType) {
		return response{}, &failure.ParseError{URL: rawURL, Reason: fmt.Sprintf("unsupported content type %q", out.contentType)}
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return response{}, &failure.NetworkError{URL: rawURL, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	out.body = b
	return out, nil
}

// isTransient treats timeouts, 429 and 5xx as worth another attempt.
func isTransient(err error) bool {
	var ne *failure.NetworkError
	if !errors.As(err, &ne) {
		return false
	}
	if ne.Status == http.StatusTooManyRequests || (ne.Status >= 500 && ne.Status <= 599) {
		return true
	}
	return ne.Status == 0 && ne.Timeout()
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// isAllowedHTMLContentType accepts text/html and XHTML. A missing header is
// accepted too; the parser sniffs the markup.
func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return ct == "" || strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}
