package export

import (
	"errors"
	"os"
	"path/filepath"
)

// OutputSet stages a run's files beside their destinations and moves them
// into place together. Until Commit the destinations keep their old content.
type OutputSet struct {
	files []staged
}

type staged struct {
	final, tmp string
}

// Stage returns the path to write final's content to.
func (s *OutputSet) Stage(final string) string {
	tmp := filepath.Join(filepath.Dir(final), "."+filepath.Base(final)+".partial")
	s.files = append(s.files, staged{final: final, tmp: tmp})
	return tmp
}

// Files lists the destinations in staging order.
func (s *OutputSet) Files() []string {
	out := make([]string, len(s.files))
	for i, f := range s.files {
		out[i] = f.final
	}
	return out
}

// Discard removes every staged file.
func (s *OutputSet) Discard() {
	for _, f := range s.files {
		_ = os.Remove(f.tmp)
	}
}

// Commit renames the staged files into place. On failure the files not yet
// moved are removed.
func (s *OutputSet) Commit() error {
	for i, f := range s.files {
		if err := os.Rename(f.tmp, f.final); err != nil {
			for _, rest := range s.files[i:] {
				_ = os.Remove(rest.tmp)
			}
			return errors.Join(errors.New("commit outputs"), err)
		}
	}
	return nil
}
