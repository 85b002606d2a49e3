// Package app wires configuration, providers, the lead pipeline and the
// exporters into a single run.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goleads/internal/cache"
	"github.com/hyperifyio/goleads/internal/export"
	"github.com/hyperifyio/goleads/internal/extract"
	"github.com/hyperifyio/goleads/internal/fetch"
	"github.com/hyperifyio/goleads/internal/lead"
	"github.com/hyperifyio/goleads/internal/llm"
	"github.com/hyperifyio/goleads/internal/pipeline"
	"github.com/hyperifyio/goleads/internal/prompts"
)

// ErrNoLeads is returned when a run completes without a single lead. No
// output files are written in that case.
var ErrNoLeads = errors.New("no leads found")

type App struct {
	cfg  Config
	deps pipeline.Deps
	out  io.Writer
}

// New builds the providers described by cfg. cfg is defaulted and validated
// here; the generator is not created for dry runs.
func New(ctx context.Context, cfg Config) (*App, error) {
	cfg = cfg.WithDefaults()
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	hc := newHTTPClient(cfg.APITimeout)

	var pageCache *cache.PageCache
	var completions *cache.CompletionCache
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			n, err := cache.PurgeOlderThan(cfg.CacheDir, cfg.CacheMaxAge)
			if err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Info().Int("removed", n).Dur("max_age", cfg.CacheMaxAge).Msg("purged stale cache entries")
			}
		}
		pageCache = &cache.PageCache{Dir: filepath.Join(cfg.CacheDir, "pages")}
		completions = &cache.CompletionCache{Dir: filepath.Join(cfg.CacheDir, "completions"), StrictPerms: cfg.CacheStrictPerms}
	}

	sp, err := newSearchProvider(cfg, hc)
	if err != nil {
		return nil, err
	}
	pages := &fetch.Pages{Client: &fetch.Client{
		HTTPClient:        hc,
		UserAgent:         fetch.DefaultUserAgent,
		MaxAttempts:       2,
		PerRequestTimeout: cfg.APITimeout,
		Cache:             pageCache,
	}}
	if cfg.ExtractMode == ExtractMain {
		pages.Extractor = extract.MainContentExtractor{}
	}
	deps := pipeline.Deps{Search: sp, Pages: pages}
	if !cfg.DryRun {
		gen, err := newGenerator(ctx, cfg, hc)
		if err != nil {
			return nil, err
		}
		if completions != nil {
			gen = &llm.Cached{Inner: gen, Store: completions, Model: cfg.LLMModel}
		}
		deps.Generator = gen
	}
	log.Info().Str("search", sp.Name()).Str("llm", cfg.LLMProvider).Str("model", cfg.LLMModel).
		Bool("cache", cfg.CacheDir != "").Bool("dry_run", cfg.DryRun).Msg("providers ready")
	return &App{cfg: cfg, deps: deps, out: os.Stdout}, nil
}

// NewWithDeps uses caller-supplied providers, skipping provider construction
// and credential checks.
func NewWithDeps(cfg Config, deps pipeline.Deps) *App {
	return &App{cfg: cfg.WithDefaults(), deps: deps, out: os.Stdout}
}

// SetOutput redirects the console summary and dry-run listing.
func (a *App) SetOutput(w io.Writer) { a.out = w }

// Config returns the effective configuration.
func (a *App) Config() Config { return a.cfg }

func (a *App) Close() {}

// Run finds, enriches and exports leads for c.
func (a *App) Run(ctx context.Context, c lead.Criteria) error {
	log.Info().Str("industry", c.Industry()).Str("size", c.Size()).Str("location", c.Location()).
		Int("leads_to_find", a.cfg.LeadsToFind).Msg("starting lead search")
	if a.cfg.DryRun {
		return a.dryRun(ctx, c)
	}
	engine, err := pipeline.New(pipeline.Config{
		LeadsToFind:   a.cfg.LeadsToFind,
		SearchDelay:   a.cfg.SearchDelay,
		GenerateDelay: a.cfg.GenerateDelay,
		Model:         a.cfg.LLMModel,
		Prompts:       a.cfg.Prompts,
	}, a.deps)
	if err != nil {
		return err
	}
	leads, err := engine.Run(ctx, c)
	if err != nil {
		return err
	}
	if len(leads) == 0 {
		_ = export.Summary(a.out, nil)
		return ErrNoLeads
	}
	if err := a.writeOutputs(ctx, c, leads); err != nil {
		return err
	}
	return export.Summary(a.out, leads)
}

func (a *App) writeOutputs(ctx context.Context, c lead.Criteria, leads []lead.Lead) (err error) {
	run := export.NewRun(c, a.deps.Search.Name(), a.deps.Generator.Name(), a.cfg.LLMModel)

	// Lead files are staged and renamed together once every writer succeeded.
	var set export.OutputSet
	defer func() {
		if err != nil {
			set.Discard()
		}
	}()
	if err := export.WriteJSON(set.Stage(a.cfg.OutputJSON), leads); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	if err := export.WriteCSV(set.Stage(a.cfg.OutputCSV), leads); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if a.cfg.OutputPDF != "" {
		if err := export.WritePDF(set.Stage(a.cfg.OutputPDF), export.Markdown(run, leads)); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
	}
	files := set.Files()
	if a.cfg.OutputSQLite != "" {
		db, err := export.OpenSQLite(a.cfg.OutputSQLite)
		if err != nil {
			return err
		}
		err = db.Save(ctx, run, leads)
		if cerr := db.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write sqlite: %w", err)
		}
		files = append(files, a.cfg.OutputSQLite)
	}
	if err := set.Commit(); err != nil {
		return err
	}

	m := export.Manifest{
		Run:    run,
		Target: a.cfg.LeadsToFind,
		Counts: export.CountLeads(leads),
		Files:  files,
		Build:  buildInfo(),
	}
	if err := export.WriteManifest(export.ManifestPath(a.cfg.OutputJSON), m); err != nil {
		// The manifest is auxiliary; the lead files are already written.
		log.Warn().Err(err).Msg("manifest write failed")
	}
	log.Info().Str("run_id", run.ID).Strs("files", files).Int("leads", len(leads)).Msg("leads saved")
	return nil
}

// dryRun prints the discovery query and the source pages it returns without
// fetching them or calling the generator.
func (a *App) dryRun(ctx context.Context, c lead.Criteria) error {
	query := prompts.DiscoveryQuery(c.Industry(), c.Size(), c.Location())
	var b strings.Builder
	b.WriteString("# goleads (dry run)\n\n")
	fmt.Fprintf(&b, "Industry: %s\nSize: %s\nLocation: %s\nLeads to find: %d\n\n", c.Industry(), c.Size(), c.Location(), a.cfg.LeadsToFind)
	fmt.Fprintf(&b, "Discovery query:\n%s\n", query)
	results, err := a.deps.Search.Search(ctx, query, pipeline.DefaultSourcePages)
	if err != nil {
		log.Warn().Err(err).Str("query", query).Msg("search error")
	} else if len(results) > 0 {
		b.WriteString("\nSource pages:\n")
		for i, r := range results {
			if i == pipeline.DefaultSourcePages {
				break
			}
			fmt.Fprintf(&b, "%d. %s - %s\n", i+1, r.Title, r.URL)
		}
	}
	_, err = io.WriteString(a.out, b.String())
	return err
}
