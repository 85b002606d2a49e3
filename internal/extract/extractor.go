package extract

import "io"

// Extractor turns a fetched response body into a Document. The page fetcher
// depends on this so tests and alternate readability tactics can swap it.
type Extractor interface {
	Extract(r io.Reader, contentType string) (Document, error)
}

// BodyExtractor keeps the full <body> text, see Body.
type BodyExtractor struct{}

func (BodyExtractor) Extract(r io.Reader, contentType string) (Document, error) {
	return Body(r, contentType)
}

// MainContentExtractor prefers <main>/<article> and drops page chrome, see
// FromHTML.
type MainContentExtractor struct{}

func (MainContentExtractor) Extract(r io.Reader, contentType string) (Document, error) {
	utf8Reader, err := charsetReader(r, contentType)
	if err != nil {
		return Document{}, err
	}
	b, err := io.ReadAll(utf8Reader)
	if err != nil {
		return Document{}, err
	}
	return FromHTML(b), nil
}
