// Package export writes a finished run's leads: JSON and CSV files, a console
// summary, an optional Markdown/PDF report, an optional SQLite sink and a
// manifest sidecar.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/hyperifyio/goleads/internal/lead"
)

// Run identifies one pipeline execution in manifests and the SQLite sink.
type Run struct {
	ID          string        `json:"run_id"`
	Criteria    lead.Criteria `json:"criteria"`
	Search      string        `json:"search_provider"`
	Generator   string        `json:"llm_provider"`
	Model       string        `json:"model"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// NewRun stamps a fresh run id and the current time.
func NewRun(c lead.Criteria, searchProvider, generator, model string) Run {
	return Run{
		ID:          uuid.NewString(),
		Criteria:    c,
		Search:      searchProvider,
		Generator:   generator,
		Model:       model,
		GeneratedAt: time.Now().UTC(),
	}
}

// columns is the field order shared by CSV and SQLite.
var columns = []string{"name", "website", "insights", "score", "message"}

func row(l lead.Lead) []string {
	return []string{l.Name, l.Website, l.Insights.String(), l.Score.String(), l.Message.String()}
}

// writeFileAtomic writes via a temp file in the same directory and renames it.
func writeFileAtomic(path string, write func(f *os.File) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
