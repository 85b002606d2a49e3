package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hyperifyio/goleads/internal/failure"
)

const serpAPIBaseURL = "https://serpapi.com/search.json"

// SerpAPI implements Provider with SerpApi's Google engine, reading the
// organic results in rank order.
type SerpAPI struct {
	APIKey     string
	BaseURL    string // optional, defaults to serpapi.com
	Engine     string // optional, defaults to "google"
	HTTPClient *http.Client
}

func (s *SerpAPI) Name() string { return "serpapi" }

func (s *SerpAPI) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, errors.New("missing serpapi api key")
	}
	if limit <= 0 {
		limit = 10
	}
	base := s.BaseURL
	if base == "" {
		base = serpAPIBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	engine := s.Engine
	if engine == "" {
		engine = "google"
	}
	q := u.Query()
	q.Set("engine", engine)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(limit))
	q.Set("api_key", s.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := do(s.HTTPClient, req, s.Name())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var sr serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, &failure.ParseError{URL: base, Reason: "serpapi json: " + err.Error()}
	}
	// SerpApi reports quota and key problems with a 200 and an error field.
	if sr.Error != "" && len(sr.OrganicResults) == 0 {
		if strings.Contains(strings.ToLower(sr.Error), "hasn't returned any results") {
			return []Result{}, nil
		}
		return nil, errors.New("serpapi: " + sr.Error)
	}
	out := make([]Result, 0, len(sr.OrganicResults))
	for _, r := range sr.OrganicResults {
		link := strings.TrimSpace(r.Link)
		if link == "" {
			continue
		}
		out = append(out, Result{
			Title:   strings.TrimSpace(r.Title),
			URL:     link,
			Snippet: strings.TrimSpace(r.Snippet),
			Source:  s.Name(),
		})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type serpResponse struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic_results"`
}
