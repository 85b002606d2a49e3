package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hyperifyio/goleads/internal/lead"
)

// Build identifies the binary that produced a run.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Counts summarizes how a run's leads came out.
type Counts struct {
	Leads    int `json:"leads"`
	Enriched int `json:"enriched"`
	Failed   int `json:"failed"`
}

// Manifest is the machine-readable sidecar written next to the JSON output.
type Manifest struct {
	Run
	Target int      `json:"leads_to_find"`
	Counts Counts   `json:"counts"`
	Files  []string `json:"files"`
	Build  Build    `json:"build"`
}

// CountLeads tallies fully enriched leads and leads with any failed field.
func CountLeads(leads []lead.Lead) Counts {
	c := Counts{Leads: len(leads)}
	for _, l := range leads {
		if l.Enriched() {
			c.Enriched++
		}
		if l.Insights.IsFailed() || l.Score.IsFailed() || l.Message.IsFailed() {
			c.Failed++
		}
	}
	return c
}

// ManifestPath returns the sidecar path for a JSON output path.
func ManifestPath(jsonPath string) string {
	return jsonPath + ".manifest.json"
}

// WriteManifest writes m as indented JSON at path.
func WriteManifest(path string, m Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	b = append(b, '\n')
	return writeFileAtomic(path, func(f *os.File) error {
		_, err := f.Write(b)
		return err
	})
}

// ReadManifest loads a sidecar written by WriteManifest. Criteria are not
// restored since they are only exported for inspection.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	var raw struct {
		ID          string    `json:"run_id"`
		Search      string    `json:"search_provider"`
		Gen         string    `json:"llm_provider"`
		Model       string    `json:"model"`
		GeneratedAt time.Time `json:"generated_at"`
		Target      int       `json:"leads_to_find"`
		Counts      Counts    `json:"counts"`
		Files       []string  `json:"files"`
		Build       Build     `json:"build"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return m, fmt.Errorf("decode manifest: %w", err)
	}
	m.ID, m.Search, m.Generator, m.Model = raw.ID, raw.Search, raw.Gen, raw.Model
	m.GeneratedAt = raw.GeneratedAt
	m.Target, m.Counts, m.Files, m.Build = raw.Target, raw.Counts, raw.Files, raw.Build
	return m, nil
}
