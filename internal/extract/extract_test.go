package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFromHTML_PrefersMainOverBody(t *testing.T) {
	html := `<!doctype html>
	<html>
	  <head><title>Test Page</title></head>
	  <body>
		<nav>Nav should be ignored</nav>
		<main>
		  <h1>Main Heading</h1>
		  <p>This is the main content paragraph.</p>
		</main>
		<footer>Footer text</footer>
	  </body>
	</html>`

	doc := FromHTML([]byte(html))
	if doc.Title != "Test Page" {
		t.Fatalf("expected title 'Test Page', got %q", doc.Title)
	}
	if !strings.Contains(doc.Text, "Main Heading") {
		t.Fatalf("expected to contain main heading")
	}
	if !strings.Contains(doc.Text, "This is the main content paragraph.") {
		t.Fatalf("expected to contain main paragraph")
	}
	if strings.Contains(doc.Text, "Nav should be ignored") {
		t.Fatalf("did not expect nav text in extracted content")
	}
	if strings.Contains(doc.Text, "Footer text") {
		t.Fatalf("did not expect footer text in extracted content")
	}
}

func TestFromHTML_FallbackToBody(t *testing.T) {
	html := `<!doctype html>
	<html>
	  <head><title>No Main</title></head>
	  <body>
		<h2>Body Heading</h2>
		<p>Body paragraph</p>
	  </body>
	</html>`

	doc := FromHTML([]byte(html))
	if doc.Title != "No Main" {
		t.Fatalf("expected title 'No Main', got %q", doc.Title)
	}
	if !strings.Contains(doc.Text, "Body Heading") {
		t.Fatalf("expected to contain body heading")
	}
	if !strings.Contains(doc.Text, "Body paragraph") {
		t.Fatalf("expected to contain body paragraph")
	}
}

func TestFromHTML_PreservesCodeAndListItems(t *testing.T) {
	html := `<!doctype html>
	<html>
	  <head><title>Code and List</title></head>
	  <body>
		<article>
		  <h3>Examples</h3>
		  <ul>
			<li>First item</li>
			<li>Second item</li>
		  </ul>
		  <pre><code>print("hello")\nprint("world")</code></pre>
		</article>
	  </body>
	</html>`

	doc := FromHTML([]byte(html))
	if doc.Title != "Code and List" {
		t.Fatalf("expected title 'Code and List', got %q", doc.Title)
	}
	// list items appear in the text
	if !strings.Contains(doc.Text, "First item") || !strings.Contains(doc.Text, "Second item") {
		t.Fatalf("expected to contain list items; got: %q", doc.Text)
	}
	// code content is preserved verbatim
	if !strings.Contains(doc.Text, "print(\"hello\")") || !strings.Contains(doc.Text, "print(\"world\")") {
		t.Fatalf("expected code block content to be preserved; got: %q", doc.Text)
	}
}



func TestBody_KeepsWholeBodyOnOneLine(t *testing.T) {
	page := `<html><head><title>Acme</title><script>var x = 1;</script></head>
	<body><nav>About us</nav><main><h1>Acme   Security</h1><p>We build
	firewalls.</p></main><footer>San Francisco</footer><style>p{}</style></body></html>`
	doc, err := Body(strings.NewReader(page), "text/html; charset=utf-8")
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	want := "About us Acme Security We build firewalls. San Francisco"
	if doc.Text != want {
		t.Fatalf("text = %q, want %q", doc.Text, want)
	}
	if doc.Title != "Acme" {
		t.Fatalf("title = %q", doc.Title)
	}
}

func TestBody_DecodesDeclaredCharset(t *testing.T) {
	// "Café" in ISO-8859-1
	page := []byte("<html><body><p>Caf\xe9 Corp</p></body></html>")
	doc, err := Body(strings.NewReader(string(page)), "text/html; charset=iso-8859-1")
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	if doc.Text != "Café Corp" {
		t.Fatalf("text = %q", doc.Text)
	}
}

func TestBody_EmptyBody(t *testing.T) {
	doc, err := Body(strings.NewReader("<html><head><title>x</title></head><body>  <script>1</script></body></html>"), "text/html")
	if err != nil {
		t.Fatalf("body: %v", err)
	}
	if doc.Text != "" {
		t.Fatalf("expected empty text, got %q", doc.Text)
	}
}

func TestTruncate_RuneSafe(t *testing.T) {
	s := "héllo wörld"
	got := Truncate(s, 4)
	if got != "héll" || !utf8.ValidString(got) {
		t.Fatalf("Truncate = %q", got)
	}
	if Truncate(s, 100) != s || Truncate(s, 0) != s {
		t.Fatalf("short inputs must be returned unchanged")
	}
}

func TestMainContentExtractor(t *testing.T) {
	var ex Extractor = MainContentExtractor{}
	doc, err := ex.Extract(strings.NewReader("<html><body><nav>menu</nav><main><p>core</p></main></body></html>"), "text/html")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.Text != "core" {
		t.Fatalf("text = %q", doc.Text)
	}
}
