package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	metaSuffix       = ".meta.json"
	bodySuffix       = ".body"
	completionSuffix = ".completion.json"
)

// ClearDir removes the directory and all contents, then recreates it empty.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// PurgeOlderThan removes page entries whose SavedAt is older than maxAge and
// completion files whose modification time is older than maxAge. It walks
// dir recursively and returns the number of entries removed. A non-positive
// maxAge removes nothing.
func PurgeOlderThan(dir string, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	now := time.Now().UTC()
	removed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch name := d.Name(); {
		case strings.HasSuffix(name, metaSuffix):
			b, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			var e PageEntry
			if err := json.Unmarshal(b, &e); err != nil || now.Sub(e.SavedAt) <= maxAge {
				return nil
			}
			removed++
			_ = os.Remove(path)
			_ = os.Remove(strings.TrimSuffix(path, metaSuffix) + bodySuffix)
		case strings.HasSuffix(name, completionSuffix):
			info, err := d.Info()
			if err != nil || now.Sub(info.ModTime().UTC()) <= maxAge {
				return nil
			}
			removed++
			_ = os.Remove(path)
		}
		return nil
	})
	return removed, err
}
