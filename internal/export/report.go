package export

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/goleads/internal/lead"
)

// Markdown renders the run as a Markdown lead report.
func Markdown(run Run, leads []lead.Lead) string {
	var b strings.Builder
	c := run.Criteria
	fmt.Fprintf(&b, "# Leads: %s\n\n", c.Industry())
	fmt.Fprintf(&b, "- Size: %s\n", c.Size())
	if c.Location() != "" {
		fmt.Fprintf(&b, "- Location: %s\n", c.Location())
	}
	fmt.Fprintf(&b, "- Generated: %s\n", run.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "- Run: %s\n", run.ID)
	for i, l := range leads {
		fmt.Fprintf(&b, "\n## %d. %s\n\n", i+1, l.Name)
		fmt.Fprintf(&b, "Website: [%s](%s)\n\n", l.Website, l.Website)
		fmt.Fprintf(&b, "Score: %s\n\n", orNA(l.Score))
		b.WriteString("### Insights\n\n")
		for _, line := range strings.Split(orNA(l.Insights), "\n") {
			if s := strings.TrimSpace(line); s != "" {
				b.WriteString(s)
				b.WriteString("\n")
			}
		}
		b.WriteString("\n### Message\n\n")
		b.WriteString(orNA(l.Message))
		b.WriteString("\n")
	}
	return b.String()
}

var linkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// WritePDF renders the Markdown report to a PDF at path. Headings become
// bold lines and [text](url) links stay clickable; no other Markdown layout
// is attempted.
func WritePDF(path, markdown string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; map UTF-8 text so accented names survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	scanner := bufio.NewScanner(strings.NewReader(markdown))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			pdf.Ln(3)
			continue
		}
		if strings.HasPrefix(s, "#") {
			level := 0
			for level < len(s) && s[level] == '#' {
				level++
			}
			text := strings.TrimSpace(s[level:])
			if text == "" {
				continue
			}
			size := 16.0
			switch level {
			case 2:
				size = 13
			case 3:
				size = 11
			}
			pdf.SetFont("Helvetica", "B", size)
			pdf.MultiCell(0, 7, tr(text), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
			continue
		}
		parts := linkRe.FindAllStringSubmatchIndex(s, -1)
		if len(parts) == 0 {
			pdf.MultiCell(0, 5, tr(s), "", "L", false)
			continue
		}
		pos := 0
		for _, m := range parts {
			if m[0] > pos {
				pdf.Write(5, tr(s[pos:m[0]]))
			}
			pdf.WriteLinkString(5, tr(s[m[2]:m[3]]), s[m[4]:m[5]])
			pos = m[1]
		}
		if pos < len(s) {
			pdf.Write(5, tr(s[pos:]))
		}
		pdf.Ln(6)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan report: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
