package fetch

import (
	"bytes"
	"context"

	"github.com/hyperifyio/goleads/internal/extract"
	"github.com/hyperifyio/goleads/internal/failure"
)

// PageFetcher retrieves a web page and returns its visible body text.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Pages is the HTTP PageFetcher: Client for transport, Extractor for text.
type Pages struct {
	Client    *Client
	Extractor extract.Extractor // defaults to extract.BodyExtractor
}

// FetchPage returns *failure.ParseError when the page has no body text.
func (p *Pages) FetchPage(ctx context.Context, url string) (string, error) {
	client := p.Client
	if client == nil {
		client = &Client{}
	}
	body, contentType, err := client.Get(ctx, url)
	if err != nil {
		return "", err
	}
	ex := p.Extractor
	if ex == nil {
		ex = extract.BodyExtractor{}
	}
	doc, err := ex.Extract(bytes.NewReader(body), contentType)
	if err != nil {
		return "", &failure.ParseError{URL: url, Reason: err.Error()}
	}
	if doc.Text == "" {
		return "", &failure.ParseError{URL: url, Reason: "page has no body text"}
	}
	return doc.Text, nil
}
