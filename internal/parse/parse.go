// Package parse reads the free-text completions the pipeline asks for.
package parse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MinNameRunes is the shortest token accepted as a company name.
const MinNameRunes = 3

// Names splits a comma-separated completion into trimmed names, dropping
// tokens shorter than MinNameRunes. Order is preserved; duplicates are kept
// for the caller's set to collapse.
func Names(completion string) []string {
	parts := strings.Split(completion, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		name := strings.TrimSpace(p)
		if utf8.RuneCountInString(name) < MinNameRunes {
			continue
		}
		out = append(out, name)
	}
	return out
}

// FirstLine returns the first non-blank line of s, trimmed.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

// ErrNoScore is returned by Score when no 1-10 value can be found.
var ErrNoScore = errors.New("no score in completion")

// scoreRe matches "8/10: ...", "8 - ...", "Score: 8/10 ..." and similar.
var scoreRe = regexp.MustCompile(`(?i)^(?:\**\s*(?:lead\s+)?score\s*[:=]?\s*)?\**\s*(\d{1,2})(?:\s*/\s*10)?\**\s*(?:[:.\-–]\s*)?(.*)$`)

// Score reads the first non-blank line of a scoring completion as a value
// between 1 and 10 followed by an optional justification.
func Score(completion string) (int, string, error) {
	line := FirstLine(completion)
	m := scoreRe.FindStringSubmatch(line)
	if m == nil {
		return 0, "", ErrNoScore
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > 10 {
		return 0, "", ErrNoScore
	}
	return n, strings.TrimSpace(m[2]), nil
}
