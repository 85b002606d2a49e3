package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hyperifyio/goleads/internal/failure"
)

// Result represents a single search hit from any provider. URL is the
// result link; only Title and URL are consumed by the pipeline.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"-"` // provider name for observability
}

// Provider is a web-search capability returning ranked results for a query.
// Implementations return at most limit results, in rank order.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}

const defaultTimeout = 10 * time.Second

func httpClientOr(hc *http.Client) *http.Client {
	if hc != nil {
		return hc
	}
	return &http.Client{Timeout: defaultTimeout}
}

// do executes req and returns the open response for 2xx statuses. Transport
// failures and other statuses are reported as *failure.NetworkError. The
// query string is left out of the error since it may carry an API key.
func do(hc *http.Client, req *http.Request, provider string) (*http.Response, error) {
	endpoint := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path
	resp, err := httpClientOr(hc).Do(req)
	if err != nil {
		return nil, &failure.NetworkError{URL: endpoint, Err: fmt.Errorf("%s: %w", provider, err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, &failure.NetworkError{URL: endpoint, Status: resp.StatusCode, Err: fmt.Errorf("%s status", provider)}
	}
	return resp, nil
}
