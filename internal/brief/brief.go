// Package brief parses a short Markdown file describing which leads to look
// for, as an alternative to flags or interactive prompts.
package brief

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperifyio/goleads/internal/lead"
)

// Brief is the lead request read from a single Markdown input. Empty fields
// mean unspecified.
type Brief struct {
	Industry string
	Size     string
	Location string
	// LeadsToFind is zero when the file does not say.
	LeadsToFind int
	// Raw is the original input.
	Raw string
}

var (
	headingRe  = regexp.MustCompile(`^\s{0,3}#{1,6}\s+(.+?)\s*$`)
	industryRe = regexp.MustCompile(`(?i)^\s*[-*]?\s*(?:industry|sector|market)\s*[:\-]\s*(.+?)\s*$`)
	sizeRe     = regexp.MustCompile(`(?i)^\s*[-*]?\s*(?:company\s+)?size\s*[:\-]\s*(.+?)\s*$`)
	locationRe = regexp.MustCompile(`(?i)^\s*[-*]?\s*(?:location|region|city)\s*[:\-]\s*(.+?)\s*$`)
	leadsRe    = regexp.MustCompile(`(?i)^\s*[-*]?\s*(?:leads|leads\s+to\s+find|count)\s*[:\-]\s*([0-9]{1,3})\b`)
)

// ParseBrief reads "Industry:", "Size:", "Location:" and "Leads:" lines
// (first occurrence wins). When no industry line is present, the first
// heading is used as the industry.
func ParseBrief(input string) Brief {
	scanner := bufio.NewScanner(strings.NewReader(input))
	b := Brief{Raw: input}
	var heading string

	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" {
			continue
		}
		if heading == "" {
			if m := headingRe.FindStringSubmatch(trimmed); len(m) == 2 {
				heading = stripMarkdown(m[1])
				continue
			}
		}
		if b.Industry == "" {
			if m := industryRe.FindStringSubmatch(trimmed); len(m) == 2 {
				b.Industry = stripMarkdown(m[1])
				continue
			}
		}
		if b.Size == "" {
			if m := sizeRe.FindStringSubmatch(trimmed); len(m) == 2 {
				b.Size = stripMarkdown(m[1])
				continue
			}
		}
		if b.Location == "" {
			if m := locationRe.FindStringSubmatch(trimmed); len(m) == 2 {
				b.Location = stripMarkdown(m[1])
				continue
			}
		}
		if b.LeadsToFind == 0 {
			if m := leadsRe.FindStringSubmatch(trimmed); len(m) == 2 {
				b.LeadsToFind, _ = strconv.Atoi(m[1])
			}
		}
	}
	if b.Industry == "" {
		b.Industry = heading
	}
	return b
}

// Criteria converts the brief into search criteria. Empty values stay empty;
// callers apply defaults.
func (b Brief) Criteria() lead.Criteria {
	return lead.NewCriteria(b.Industry, b.Size, b.Location)
}

func stripMarkdown(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`*_")
	return strings.TrimRight(s, " #:-.")
}
