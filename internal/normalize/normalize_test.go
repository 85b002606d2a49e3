package normalize

import "testing"

func TestURL_EquivalentForms(t *testing.T) {
	want := Key("acme.com")
	for _, in := range []string{
		"http://acme.com",
		"https://acme.com",
		"https://acme.com/",
		"http://www.acme.com/",
		"https://WWW.Acme.com",
		"acme.com",
		"www.acme.com/",
		"https://acme.com/?utm_source=x#top",
	} {
		if got := URL(in); got != want {
			t.Errorf("URL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestURL_KeepsPath(t *testing.T) {
	cases := map[string]Key{
		"https://www.acme.com/about/":  "acme.com/about",
		"http://acme.com/about":        "acme.com/about",
		"https://shop.acme.com/a/b//":  "shop.acme.com/a/b",
		"https://acme.com:8443/portal": "acme.com:8443/portal",
	}
	for in, want := range cases {
		if got := URL(in); got != want {
			t.Errorf("URL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestURL_DistinctSites(t *testing.T) {
	if URL("https://acme.com") == URL("https://acme.io") {
		t.Fatalf("different hosts must not collide")
	}
	if URL("https://acme.com/a") == URL("https://acme.com/b") {
		t.Fatalf("different paths must not collide")
	}
	if URL("https://www2.acme.com") == URL("https://acme.com") {
		t.Fatalf("only the www label is stripped")
	}
}

func TestURL_Idempotent(t *testing.T) {
	for _, in := range []string{
		"https://www.acme.com/about/",
		"http://www.www.acme.com//",
		"acme.com/a%20b",
		"https://acme.com:8080/x/",
		"not a url at all",
		"",
	} {
		once := URL(in)
		if twice := URL(string(once)); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestURL_UnparseableFallsBack(t *testing.T) {
	got := URL("http://www.acme.com/%zz/")
	if got != "acme.com/%zz" {
		t.Fatalf("unexpected fallback key: %q", got)
	}
}
