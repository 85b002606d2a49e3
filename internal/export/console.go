package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/hyperifyio/goleads/internal/lead"
)

// Summary prints a human-readable block per lead.
func Summary(w io.Writer, leads []lead.Lead) error {
	var b strings.Builder
	b.WriteString("\n--- FINAL OUTPUT ---\n")
	if len(leads) == 0 {
		b.WriteString("\nNo leads found.\n")
	}
	for i, l := range leads {
		fmt.Fprintf(&b, "\n--- Lead %d ---\n", i+1)
		fmt.Fprintf(&b, "Company Name:       %s\n", l.Name)
		fmt.Fprintf(&b, "Website:            %s\n", l.Website)
		fmt.Fprintf(&b, "Lead Score:         %s\n", orNA(l.Score))
		b.WriteString("\nScraped Insights:\n")
		for _, line := range strings.Split(orNA(l.Insights), "\n") {
			if s := strings.TrimSpace(line); s != "" {
				fmt.Fprintf(&b, "  %s\n", s)
			}
		}
		b.WriteString("\nPersonalized Message:\n")
		b.WriteString(orNA(l.Message))
		b.WriteString("\n")
		b.WriteString(strings.Repeat("-", 25))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func orNA(f lead.Field) string {
	if !f.IsSet() {
		return "N/A"
	}
	return strings.TrimSpace(f.String())
}
