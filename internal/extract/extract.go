package extract

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/unicode/norm"
)

// Document is a simplified representation of extracted page content.
type Document struct {
	Title string
	Text  string
}

// FromHTML extracts readable text from HTML, preferring <main> or <article>,
// falling back to <body>. It keeps headings, paragraphs and list items on
// their own lines and skips boilerplate like <nav>, <footer> and cookie
// banners.
func FromHTML(input []byte) Document {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return Document{}
	}
	return fromNode(node, true)
}

// Body decodes r according to contentType (falling back to <meta charset>
// sniffing) and returns the whole <body> as a single line of text: markup
// stripped, whitespace collapsed, NFC normalized. Navigation and footers are
// kept since company sites often state what they do only there.
func Body(r io.Reader, contentType string) (Document, error) {
	utf8Reader, err := charsetReader(r, contentType)
	if err != nil {
		return Document{}, err
	}
	node, err := html.Parse(utf8Reader)
	if err != nil {
		return Document{}, err
	}
	doc := fromNode(node, false)
	doc.Text = collapseSpaces(strings.ReplaceAll(doc.Text, "\n", " "))
	return doc, nil
}

func charsetReader(r io.Reader, contentType string) (io.Reader, error) {
	return charset.NewReader(r, contentType)
}

func fromNode(node *html.Node, preferMain bool) Document {
	title := norm.NFC.String(collapseSpaces(strings.TrimSpace(findTitle(node))))
	var content *html.Node
	if preferMain {
		content = findFirst(node, "main")
		if content == nil {
			content = findFirst(node, "article")
		}
	}
	if content == nil {
		content = findFirst(node, "body")
	}
	var b strings.Builder
	if content != nil {
		collectText(&b, content, false, preferMain)
	}
	text := normalizeWhitespace(norm.NFC.String(b.String()))
	return Document{Title: title, Text: text}
}

// Truncate returns at most n runes of s. A non-positive n returns s unchanged.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func findTitle(n *html.Node) string {
	head := findFirst(n, "head")
	if head == nil {
		return ""
	}
	t := findFirst(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return t.FirstChild.Data
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

func collectText(b *strings.Builder, n *html.Node, inPre, skipChrome bool) {
	if n.Type == html.ElementNode {
		if skipChrome && isBoilerplateContainer(n) {
			return
		}
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "template", "iframe", "svg":
			return
		case "nav", "footer", "aside":
			if skipChrome {
				return
			}
		case "pre", "code":
			inPre = true
		case "br", "hr", "ul", "ol", "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "div", "section", "td", "th":
			b.WriteString("\n")
		}
	}

	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.ReplaceAll(data, "\t", " ")
			data = strings.ReplaceAll(data, "\r", " ")
		}
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre, skipChrome)
	}

	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6":
			b.WriteString("\n\n")
		case "li", "div", "section", "td", "th":
			b.WriteString("\n")
		case "pre", "code":
			b.WriteString("\n")
		}
	}
}

// isBoilerplateContainer reports whether the element looks like a cookie or
// consent banner.
func isBoilerplateContainer(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && !strings.HasPrefix(key, "data-") && key != "aria-label" && key != "role" {
			continue
		}
		if containsAny(strings.ToLower(attr.Val), []string{"cookie", "consent", "gdpr"}) {
			return true
		}
	}
	return false
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// keep at most one consecutive blank
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\u00a0' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimRight(b.String(), " ")
}
