package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PageEntry is the metadata stored next to a cached page body. ETag and
// LastModified drive conditional revalidation.
type PageEntry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	SavedAt      time.Time `json:"saved_at"`
}

// PageCache stores fetched pages on disk as <key>.meta.json and <key>.body,
// where key is sha256(url). There is no eviction; see PurgeOlderThan.
type PageCache struct {
	Dir string
}

// ErrMiss is returned by lookups when nothing is cached for the key.
var ErrMiss = errors.New("cache miss")

func (c *PageCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	return os.MkdirAll(c.Dir, 0o755)
}

func pageKey(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *PageCache) metaPath(key string) string { return filepath.Join(c.Dir, key+metaSuffix) }
func (c *PageCache) bodyPath(key string) string { return filepath.Join(c.Dir, key+bodySuffix) }

// Meta returns the stored metadata for url, or ErrMiss.
func (c *PageCache) Meta(_ context.Context, url string) (*PageEntry, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.metaPath(pageKey(url)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	var e PageEntry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode page meta: %w", err)
	}
	return &e, nil
}

// Body returns the stored body for url, or ErrMiss.
func (c *PageCache) Body(_ context.Context, url string) ([]byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.bodyPath(pageKey(url)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMiss
	}
	return b, err
}

// Store writes body first and then the metadata via rename, so a visible
// meta file always has its body.
func (c *PageCache) Store(_ context.Context, e PageEntry, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	key := pageKey(e.URL)
	if err := os.WriteFile(c.bodyPath(key), body, 0o644); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now().UTC()
	}
	return writeJSONAtomic(c.metaPath(key), e, 0o644)
}

func writeJSONAtomic(path string, v any, mode os.FileMode) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if err := json.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
