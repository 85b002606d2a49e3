package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/goleads/internal/export"
	"github.com/hyperifyio/goleads/internal/extract"
	"github.com/hyperifyio/goleads/internal/failure"
	"github.com/hyperifyio/goleads/internal/fetch"
	"github.com/hyperifyio/goleads/internal/governor"
	"github.com/hyperifyio/goleads/internal/lead"
	"github.com/hyperifyio/goleads/internal/pipeline"
	"github.com/hyperifyio/goleads/internal/prompts"
	"github.com/hyperifyio/goleads/internal/search"
	"github.com/hyperifyio/goleads/internal/stub"
)

var testCriteria = lead.NewCriteria("cybersecurity", "50-200 employees", "San Francisco")

// sitesServer serves a listing page and one homepage per company.
func sitesServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case "/list":
			_, _ = w.Write([]byte("<html><body><h1>Top firms</h1><p>Acme Corp, Globex and Initech lead the pack.</p></body></html>"))
		case "/acme", "/globex":
			fmt.Fprintf(w, "<html><body><main>%s builds network security appliances.</main></body></html>", strings.TrimPrefix(r.URL.Path, "/"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeSearchFixture maps the discovery and website queries to local URLs.
// Initech resolves to Acme's site and is dropped as a duplicate.
func writeSearchFixture(t *testing.T, dir, base string) string {
	t.Helper()
	fixture := map[string][]search.Result{
		prompts.DiscoveryQuery(testCriteria.Industry(), testCriteria.Size(), testCriteria.Location()): {
			{Title: "Top firms", URL: base + "/list"},
		},
		prompts.WebsiteQuery("Acme Corp"): {{Title: "Acme", URL: base + "/acme"}},
		prompts.WebsiteQuery("Globex"):    {{Title: "Globex", URL: base + "/globex"}},
		prompts.WebsiteQuery("Initech"):   {{Title: "Initech", URL: base + "/acme/"}},
	}
	b, err := json.Marshal(fixture)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(dir, "results.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestIntegration_FileSearchAndStubLLM(t *testing.T) {
	sites := sitesServer(t)
	llmSrv := httptest.NewServer(stub.NewHandler(stub.Options{}))
	defer llmSrv.Close()

	dir := t.TempDir()
	cfg := NewConfig()
	cfg.SearchProvider = "file"
	cfg.FileSearchPath = writeSearchFixture(t, dir, sites.URL)
	cfg.LLMProvider = "openai"
	cfg.LLMBaseURL = llmSrv.URL + "/v1"
	cfg.LLMModel = "test-model"
	cfg.GenerateDelay = NoDelay
	cfg.SearchDelay = NoDelay
	cfg.OutputJSON = filepath.Join(dir, "leads_output.json")
	cfg.OutputCSV = filepath.Join(dir, "leads_output.csv")
	cfg.OutputPDF = filepath.Join(dir, "leads.pdf")
	cfg.OutputSQLite = filepath.Join(dir, "leads.sqlite")
	cfg.CacheDir = filepath.Join(dir, "cache")

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()
	var out bytes.Buffer
	a.SetOutput(&out)

	if err := a.Run(context.Background(), testCriteria); err != nil {
		t.Fatalf("run: %v", err)
	}

	b, err := os.ReadFile(cfg.OutputJSON)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var leads []map[string]string
	if err := json.Unmarshal(b, &leads); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("want 2 leads after dedup, got %d: %s", len(leads), b)
	}
	if leads[0]["name"] != "Acme Corp" || leads[1]["name"] != "Globex" {
		t.Fatalf("unexpected order: %v", leads)
	}
	if !strings.Contains(leads[0]["insights"], "acme builds network security") {
		t.Fatalf("insights: %q", leads[0]["insights"])
	}
	if !strings.HasPrefix(leads[0]["score"], "7/10") || !strings.Contains(leads[1]["message"], "Hi Globex team") {
		t.Fatalf("score/message: %v", leads)
	}

	for _, p := range []string{cfg.OutputCSV, cfg.OutputPDF, cfg.OutputSQLite} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected output %s: %v", p, err)
		}
	}
	m, err := export.ReadManifest(export.ManifestPath(cfg.OutputJSON))
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if m.Search != "file" || m.Generator != "openai" || m.Counts.Leads != 2 || m.Counts.Enriched != 2 || m.Target != 5 {
		t.Fatalf("manifest: %+v", m)
	}
	if !strings.Contains(out.String(), "Company Name:       Acme Corp") {
		t.Fatalf("console summary missing: %s", out.String())
	}

	// Pages and completions were cached.
	for _, sub := range []string{"pages", "completions"} {
		entries, err := os.ReadDir(filepath.Join(cfg.CacheDir, sub))
		if err != nil || len(entries) == 0 {
			t.Fatalf("expected %s cache entries: %v", sub, err)
		}
	}
}

type fakeSearch struct {
	results map[string][]search.Result
	err     error
}

func (f *fakeSearch) Name() string { return "fake" }

func (f *fakeSearch) Search(_ context.Context, q string, limit int) ([]search.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	r := f.results[q]
	if limit > 0 && len(r) > limit {
		r = r[:limit]
	}
	return r, nil
}

type fakePages map[string]string

func (f fakePages) FetchPage(_ context.Context, url string) (string, error) {
	if t, ok := f[url]; ok {
		return t, nil
	}
	return "", &failure.NetworkError{URL: url, Status: 404}
}

type fakeGen struct{}

func (fakeGen) Name() string { return "fake-llm" }

func (fakeGen) Complete(_ context.Context, prompt string) (string, error) {
	out, ok := stub.Answer(prompt, []string{"Acme Corp"})
	if !ok {
		return "", &failure.GenerationError{Provider: "fake-llm", Err: failure.ErrEmptyCompletion}
	}
	return out, nil
}

func testConfig(dir string) Config {
	cfg := NewConfig()
	cfg.GenerateDelay = NoDelay
	cfg.SearchDelay = NoDelay
	cfg.OutputJSON = filepath.Join(dir, "leads.json")
	cfg.OutputCSV = filepath.Join(dir, "leads.csv")
	return cfg
}

func TestRun_NoLeadsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	q := prompts.DiscoveryQuery(testCriteria.Industry(), testCriteria.Size(), testCriteria.Location())
	a := NewWithDeps(testConfig(dir), pipeline.Deps{
		Search:    &fakeSearch{results: map[string][]search.Result{q: {{URL: "https://list.example"}}}},
		Pages:     fakePages{"https://list.example": "Acme Corp is great"},
		Generator: fakeGen{},
	})
	var out bytes.Buffer
	a.SetOutput(&out)

	err := a.Run(context.Background(), testCriteria)
	if !errors.Is(err, ErrNoLeads) {
		t.Fatalf("err = %v, want ErrNoLeads", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no output files, got %v", entries)
	}
	if !strings.Contains(out.String(), "No leads found.") {
		t.Fatalf("summary: %q", out.String())
	}
}

func TestRun_FatalSearchWritesNothing(t *testing.T) {
	dir := t.TempDir()
	a := NewWithDeps(testConfig(dir), pipeline.Deps{
		Search:    &fakeSearch{err: &failure.NetworkError{URL: "https://search.example", Status: 500}},
		Pages:     fakePages{},
		Generator: fakeGen{},
	})
	a.SetOutput(&bytes.Buffer{})

	err := a.Run(context.Background(), testCriteria)
	var fe *failure.PipelineFatalError
	if !errors.As(err, &fe) || fe.Stage != "discover" {
		t.Fatalf("err = %v, want fatal discover error", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "leads.json")); !os.IsNotExist(err) {
		t.Fatalf("json must not be written on fatal error")
	}
}

func TestRun_DryRun(t *testing.T) {
	q := prompts.DiscoveryQuery(testCriteria.Industry(), testCriteria.Size(), testCriteria.Location())
	cfg := testConfig(t.TempDir())
	cfg.DryRun = true
	a := NewWithDeps(cfg, pipeline.Deps{
		Search: &fakeSearch{results: map[string][]search.Result{q: {
			{Title: "One", URL: "https://one.example"},
			{Title: "Two", URL: "https://two.example"},
		}}},
	})
	var out bytes.Buffer
	a.SetOutput(&out)
	if err := a.Run(context.Background(), testCriteria); err != nil {
		t.Fatalf("dry run: %v", err)
	}
	s := out.String()
	for _, want := range []string{"Discovery query:\n" + q, "1. One - https://one.example", "2. Two - https://two.example"} {
		if !strings.Contains(s, want) {
			t.Fatalf("dry run output missing %q:\n%s", want, s)
		}
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.SearchProvider = "serpapi"
	if _, err := New(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "SERPAPI_API_KEY") {
		t.Fatalf("err = %v", err)
	}
}

func TestNew_ExtractModeSelectsExtractor(t *testing.T) {
	for mode, want := range map[string]extract.Extractor{
		"":     nil,
		"main": extract.MainContentExtractor{},
	} {
		cfg := NewConfig()
		cfg.SearchProvider = "file"
		cfg.FileSearchPath = filepath.Join(t.TempDir(), "results.json")
		cfg.ExtractMode = mode
		cfg.DryRun = true
		a, err := New(context.Background(), cfg)
		if err != nil {
			t.Fatalf("mode %q: %v", mode, err)
		}
		pages, ok := a.deps.Pages.(*fetch.Pages)
		if !ok {
			t.Fatalf("mode %q: pages is %T", mode, a.deps.Pages)
		}
		if pages.Extractor != want {
			t.Fatalf("mode %q: extractor = %#v, want %#v", mode, pages.Extractor, want)
		}
	}
}

func TestNewWithDeps_ZeroConfigIsPaced(t *testing.T) {
	a := NewWithDeps(Config{}, pipeline.Deps{})
	if got := a.Config(); got.GenerateDelay != governor.DefaultGenerateDelay || got.SearchDelay != governor.DefaultSearchDelay {
		t.Fatalf("delays = %v %v, want governor defaults", got.GenerateDelay, got.SearchDelay)
	}
}

func TestRun_FailedExportKeepsPreviousOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	if err := os.WriteFile(cfg.OutputJSON, []byte("previous"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A regular file where the CSV directory should be makes the CSV write fail.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.OutputCSV = filepath.Join(blocker, "leads.csv")

	q := prompts.DiscoveryQuery(testCriteria.Industry(), testCriteria.Size(), testCriteria.Location())
	a := NewWithDeps(cfg, pipeline.Deps{
		Search: &fakeSearch{results: map[string][]search.Result{
			q:                                 {{URL: "https://list.example"}},
			prompts.WebsiteQuery("Acme Corp"): {{URL: "https://acme.example"}},
		}},
		Pages: fakePages{
			"https://list.example": "Acme Corp is great",
			"https://acme.example": "Acme builds secure gateways",
		},
		Generator: fakeGen{},
	})
	a.SetOutput(&bytes.Buffer{})

	if err := a.Run(context.Background(), testCriteria); err == nil || !strings.Contains(err.Error(), "write csv") {
		t.Fatalf("err = %v, want csv write failure", err)
	}
	b, err := os.ReadFile(cfg.OutputJSON)
	if err != nil || string(b) != "previous" {
		t.Fatalf("json = %q, %v; previous output must be kept", b, err)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if e.Name() != "leads.json" && e.Name() != "blocker" {
			t.Fatalf("unexpected file left behind: %s", e.Name())
		}
	}
}
