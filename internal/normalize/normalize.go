package normalize

import (
	"net/url"
	"strings"
)

// Key is the canonical form of a URL used only for duplicate detection.
// It is the host (lowercased, without leading "www.") followed by the path
// without trailing slashes. Scheme, query and fragment are dropped.
type Key string

// URL canonicalizes raw into a Key. Two URLs are duplicates for lead-list
// purposes iff their keys are equal. URL never fails: input that does not
// parse is reduced with plain string trimming instead.
func URL(raw string) Key {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	// Scheme-less input ("acme.com/about", or an existing Key) must still
	// land the host in u.Host rather than in u.Path.
	if !strings.Contains(s, "://") && !strings.HasPrefix(s, "//") {
		s = "//" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return fallback(raw)
	}
	return Key(stripWWW(strings.ToLower(u.Host)) + strings.TrimRight(u.EscapedPath(), "/"))
}

func stripWWW(host string) string {
	for strings.HasPrefix(host, "www.") {
		host = strings.TrimPrefix(host, "www.")
	}
	return host
}

func fallback(raw string) Key {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	s = strings.TrimPrefix(s, "//")
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	host, path := s, ""
	if i := strings.IndexByte(s, '/'); i >= 0 {
		host, path = s[:i], s[i:]
	}
	return Key(stripWWW(strings.ToLower(host)) + strings.TrimRight(path, "/"))
}
