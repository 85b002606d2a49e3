package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/hyperifyio/goleads/internal/lead"
)

// WriteJSON writes leads as an indented JSON array of
// {name, website, insights, score, message} objects.
func WriteJSON(path string, leads []lead.Lead) error {
	if leads == nil {
		leads = []lead.Lead{}
	}
	return writeFileAtomic(path, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "    ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(leads); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	})
}

// WriteCSV writes a header row and one row per lead. Failed fields hold the
// sentinel.
func WriteCSV(path string, leads []lead.Lead) error {
	return writeFileAtomic(path, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(columns); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		for _, l := range leads {
			if err := w.Write(row(l)); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
		w.Flush()
		return w.Error()
	})
}
