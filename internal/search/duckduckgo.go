package search

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

const duckDuckGoBaseURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the keyless HTML endpoint. It needs no credentials and
// is meant for local runs; the markup can change without notice.
type DuckDuckGo struct {
	BaseURL    string // optional, defaults to html.duckduckgo.com
	HTTPClient *http.Client
	UserAgent  string
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("empty query")
	}
	if limit <= 0 {
		limit = 10
	}
	base := d.BaseURL
	if base == "" {
		base = duckDuckGoBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	resp, err := do(d.HTTPClient, req, d.Name())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, limit)
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		a := s.Find("a.result__a").First()
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		link := resolveDDGLink(href)
		if link == "" {
			log.Debug().Str("href", href).Msg("duckduckgo: skipping unresolvable link")
			return true
		}
		out = append(out, Result{
			Title:   strings.TrimSpace(a.Text()),
			URL:     link,
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
			Source:  d.Name(),
		})
		return len(out) < limit
	})
	return out, nil
}

// resolveDDGLink unwraps the /l/?uddg= redirect links DuckDuckGo emits.
func resolveDDGLink(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
