package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Completion is one cached generator response.
type Completion struct {
	Provider string    `json:"provider"`
	Model    string    `json:"model"`
	Text     string    `json:"text"`
	SavedAt  time.Time `json:"saved_at"`
}

// CompletionCache stores generator responses keyed by provider, model and
// prompt digest.
type CompletionCache struct {
	Dir string
	// StrictPerms enforces 0700 on the directory and 0600 on files.
	StrictPerms bool
}

func (c *CompletionCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	perm := os.FileMode(0o755)
	if c.StrictPerms {
		perm = 0o700
	}
	if err := os.MkdirAll(c.Dir, perm); err != nil {
		return err
	}
	if c.StrictPerms {
		if info, err := os.Stat(c.Dir); err == nil && info.Mode()&0o777 != 0o700 {
			_ = os.Chmod(c.Dir, 0o700)
		}
	}
	return nil
}

// CompletionKey builds a cache key for a prompt sent to provider/model.
func CompletionKey(provider, model, prompt string) string {
	h := sha256.Sum256([]byte(provider + "\x00" + model + "\n\n" + prompt))
	return hex.EncodeToString(h[:])
}

func (c *CompletionCache) pathFor(key string) string {
	return filepath.Join(c.Dir, key+completionSuffix)
}

// Get returns the cached completion for key, or ErrMiss.
func (c *CompletionCache) Get(_ context.Context, key string) (Completion, error) {
	if err := c.ensureDir(); err != nil {
		return Completion{}, err
	}
	p := c.pathFor(key)
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return Completion{}, ErrMiss
	}
	if err != nil {
		return Completion{}, err
	}
	var out Completion
	if err := json.Unmarshal(b, &out); err != nil {
		// unreadable entries are treated as absent and get overwritten
		return Completion{}, ErrMiss
	}
	now := time.Now()
	_ = os.Chtimes(p, now, now)
	return out, nil
}

// Put writes a completion under key.
func (c *CompletionCache) Put(_ context.Context, key string, v Completion) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	if v.SavedAt.IsZero() {
		v.SavedAt = time.Now().UTC()
	}
	mode := os.FileMode(0o644)
	if c.StrictPerms {
		mode = 0o600
	}
	return writeJSONAtomic(c.pathFor(key), v, mode)
}
