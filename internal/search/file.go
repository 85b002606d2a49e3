package search

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// FileProvider loads search results from a local JSON file for offline runs.
// The file is an array of {"title", "url", "snippet"} objects, or an object
// keyed by query whose values are such arrays. A keyed file falls back to the
// "*" entry when the query has no entry of its own.
type FileProvider struct {
	Path string
}

func (f *FileProvider) Name() string { return "file" }

func (f *FileProvider) Search(_ context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("file provider path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	raw, err := decodeFixture(b, query)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(raw))
	for _, r := range raw {
		if r.URL == "" {
			continue
		}
		r.Source = f.Name()
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func decodeFixture(b []byte, query string) ([]Result, error) {
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		var list []Result
		if err := json.Unmarshal(b, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var keyed map[string][]Result
	if err := json.Unmarshal(b, &keyed); err != nil {
		return nil, err
	}
	if list, ok := keyed[strings.TrimSpace(query)]; ok {
		return list, nil
	}
	return keyed["*"], nil
}
