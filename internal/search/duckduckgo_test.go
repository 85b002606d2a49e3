package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const ddgPage = `<html><body>
<div class="result">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Facme.com%2Fabout&amp;rut=x">Acme Corp</a></h2>
  <a class="result__snippet">Anvils and more</a>
</div>
<div class="result">
  <h2><a class="result__a" href="https://bigco.example/">BigCo</a></h2>
</div>
<div class="result">
  <h2><a class="result__a" href="javascript:void(0)">Broken</a></h2>
</div>
<div class="result">
  <h2><a class="result__a" href="https://third.example/">Third</a></h2>
</div>
</body></html>`

func TestDuckDuckGo_Search_ParsesAndUnwraps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "top anvil makers" {
			t.Errorf("query: %q", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	d := &DuckDuckGo{BaseURL: srv.URL, HTTPClient: srv.Client()}
	got, err := d.Search(context.Background(), "top anvil makers", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(got), got)
	}
	if got[0].URL != "https://acme.com/about" || got[0].Title != "Acme Corp" || got[0].Snippet != "Anvils and more" {
		t.Fatalf("first result: %+v", got[0])
	}
	if got[1].URL != "https://bigco.example/" {
		t.Fatalf("second result: %+v", got[1])
	}
}

func TestResolveDDGLink(t *testing.T) {
	cases := map[string]string{
		"//duckduckgo.com/l/?uddg=https%3A%2F%2Fx.example%2F": "https://x.example/",
		"https://y.example/p":                                  "https://y.example/p",
		"mailto:someone@example.com":                           "",
	}
	for in, want := range cases {
		if got := resolveDDGLink(in); got != want {
			t.Errorf("resolveDDGLink(%q) = %q, want %q", in, got, want)
		}
	}
}
