package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileProvider_List(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "results.json")
	if err := os.WriteFile(p, []byte(`[{"title":"A","url":"https://a.example"},{"title":"no url"},{"title":"B","url":"https://b.example"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := (&FileProvider{Path: p}).Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 || got[1].URL != "https://b.example" || got[0].Source != "file" {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestFileProvider_KeyedByQuery(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "results.json")
	body := `{"official website of Acme":[{"title":"Acme","url":"https://acme.com"}],"*":[{"title":"Fallback","url":"https://f.example"}]}`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	fp := &FileProvider{Path: p}
	got, err := fp.Search(context.Background(), "official website of Acme", 1)
	if err != nil || len(got) != 1 || got[0].URL != "https://acme.com" {
		t.Fatalf("keyed lookup: %+v %v", got, err)
	}
	got, err = fp.Search(context.Background(), "something else", 1)
	if err != nil || len(got) != 1 || got[0].URL != "https://f.example" {
		t.Fatalf("fallback lookup: %+v %v", got, err)
	}
}
