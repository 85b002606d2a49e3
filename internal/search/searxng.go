package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goleads/internal/failure"
)

// SearxNG implements Provider against a SearxNG instance's JSON /search
// endpoint. Results without a URL are dropped; the title is optional.
type SearxNG struct {
	BaseURL    string
	APIKey     string // optional
	HTTPClient *http.Client
	UserAgent  string // optional custom UA
	// Categories defaults to "general".
	Categories string
}

func (s *SearxNG) Name() string { return "searxng" }

func (s *SearxNG) endpoint(query string, limit int) (string, error) {
	if s.BaseURL == "" {
		return "", errors.New("missing searxng base url")
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(u.Path, "/search") {
		u.Path = strings.TrimRight(u.Path, "/") + "/search"
	}
	categories := s.Categories
	if categories == "" {
		categories = "general"
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("safesearch", "1")
	q.Set("categories", categories)
	q.Set("count", strconv.Itoa(limit))
	if s.APIKey != "" {
		q.Set("apikey", s.APIKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *SearxNG) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	endpoint, err := s.endpoint(query, limit)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	resp, err := do(s.HTTPClient, req, s.Name())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body searxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &failure.ParseError{URL: req.URL.Scheme + "://" + req.URL.Host + req.URL.Path, Reason: "searxng json: " + err.Error()}
	}
	if len(body.Unresponsive) > 0 {
		log.Debug().Interface("engines", body.Unresponsive).Str("query", query).Msg("searxng engines unresponsive")
	}
	out := make([]Result, 0, limit)
	for _, r := range body.Results {
		link := strings.TrimSpace(r.URL)
		if link == "" {
			continue
		}
		out = append(out, Result{
			Title:   strings.TrimSpace(r.Title),
			URL:     link,
			Snippet: strings.TrimSpace(r.Content),
			Source:  s.Name(),
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type searxResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
	// Each entry is [engine, reason].
	Unresponsive [][]string `json:"unresponsive_engines"`
}
