package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/goleads/internal/app"
	"github.com/hyperifyio/goleads/internal/brief"
	"github.com/hyperifyio/goleads/internal/failure"
	"github.com/hyperifyio/goleads/internal/lead"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitNoLeads = 2
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	os.Exit(realMain(os.Args[1:], os.Stdin, os.Stdout))
}

// options are the flag values before layering.
type options struct {
	cfg        app.Config
	configPath string
	envPath    string
	industry   string
	size       string
	location   string
	rateDelay  float64
	searchWait float64
	timeout    float64
	verbose    bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	o := options{cfg: app.NewConfig()}
	c := &o.cfg
	fs := flag.NewFlagSet("goleads", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&o.industry, "industry", "", "Target industry, e.g. 'cybersecurity'")
	fs.StringVar(&o.size, "size", "", "Company size range, e.g. '50-200 employees'")
	fs.StringVar(&o.location, "location", "", "Target location, e.g. 'San Francisco' (optional)")
	fs.StringVar(&c.InputPath, "input", "", "Markdown brief with Industry:/Size:/Location:/Leads: lines")
	fs.StringVar(&o.configPath, "config", "", "YAML or JSON config file")
	fs.StringVar(&o.envPath, "env", ".env", "Dotenv file loaded before reading the environment")

	fs.StringVar(&c.OutputJSON, "out.json", "", "JSON output path (default "+app.DefaultOutputJSON+")")
	fs.StringVar(&c.OutputCSV, "out.csv", "", "CSV output path (default "+app.DefaultOutputCSV+")")
	fs.StringVar(&c.OutputPDF, "out.pdf", "", "Optional PDF lead report path")
	fs.StringVar(&c.OutputSQLite, "out.sqlite", "", "Optional SQLite database to append the run to")

	fs.IntVar(&c.LeadsToFind, "leads", 0, "Number of leads to find (default 5)")
	fs.Float64Var(&o.timeout, "timeout", 0, "Per-request timeout in seconds (default 15)")
	fs.Float64Var(&o.rateDelay, "rate.delay", 0, "Seconds between generation calls (default 20; 0 disables)")
	fs.Float64Var(&o.searchWait, "search.delay", 0, "Seconds between search calls (default 1; 0 disables)")

	fs.StringVar(&c.SearchProvider, "search.provider", "", "Search provider: serpapi, searxng, duckduckgo or file (default serpapi)")
	fs.StringVar(&c.SerpAPIKey, "serpapi.key", "", "SerpApi API key")
	fs.StringVar(&c.SearxURL, "searx.url", "", "SearxNG base URL")
	fs.StringVar(&c.SearxKey, "searx.key", "", "SearxNG API key (optional)")
	fs.StringVar(&c.SearxUA, "searx.ua", "", "Custom User-Agent for SearxNG requests")
	fs.StringVar(&c.FileSearchPath, "search.file", "", "Path to JSON file for offline file-based search provider")
	fs.StringVar(&c.ExtractMode, "extract", "", "Page text extraction: body or main (default body)")

	fs.StringVar(&c.LLMProvider, "llm.provider", "", "LLM provider: gemini, openai or anthropic (default gemini)")
	fs.StringVar(&c.LLMModel, "llm.model", "", "Model name (default per provider)")
	fs.StringVar(&c.LLMAPIKey, "llm.key", "", "LLM API key")
	fs.StringVar(&c.LLMBaseURL, "llm.base", "", "LLM base URL, e.g. an OpenAI-compatible server")

	fs.StringVar(&c.CacheDir, "cache.dir", "", "Cache directory for pages and completions (disabled when empty)")
	fs.DurationVar(&c.CacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	fs.BoolVar(&c.CacheClear, "cache.clear", false, "Clear cache directory before run")
	fs.BoolVar(&c.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")

	fs.BoolVar(&c.DryRun, "dry-run", false, "Print the discovery query and source pages without calling the model")
	fs.BoolVar(&o.verbose, "v", false, "Verbose logging")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if o.timeout > 0 {
		c.APITimeout = seconds(o.timeout)
	}
	// Only delays given on the command line are set; zero disables pacing.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "rate.delay":
			c.GenerateDelay = app.Delay(seconds(o.rateDelay))
		case "search.delay":
			c.SearchDelay = app.Delay(seconds(o.searchWait))
		}
	})
	c.Verbose = o.verbose
	return o, nil
}

func seconds(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// resolveConfig layers flags over env over the config file.
func resolveConfig(o options) (app.Config, error) {
	cfg := o.cfg
	if err := app.LoadEnvFiles(o.envPath); err != nil {
		return cfg, err
	}
	app.ApplyEnvToConfig(&cfg)
	if o.configPath != "" {
		fc, err := app.LoadConfigFile(o.configPath)
		if err != nil {
			return cfg, fmt.Errorf("config file: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyProviderKeyFromEnv(&cfg)
	return cfg, nil
}

// resolveCriteria takes criteria from flags, then the brief file, then
// interactive prompts. Empty values fall back to lead.DefaultCriteria.
func resolveCriteria(o options, cfg *app.Config, stdin io.Reader, stdout io.Writer) (lead.Criteria, error) {
	c := lead.NewCriteria(o.industry, o.size, o.location)
	if c.Industry() != "" || c.Size() != "" || c.Location() != "" {
		return c.WithDefaults(lead.DefaultCriteria), nil
	}
	if cfg.InputPath != "" {
		b, err := os.ReadFile(cfg.InputPath)
		if err != nil {
			return lead.Criteria{}, fmt.Errorf("read brief: %w", err)
		}
		br := brief.ParseBrief(string(b))
		if cfg.LeadsToFind == 0 && br.LeadsToFind > 0 {
			cfg.LeadsToFind = br.LeadsToFind
		}
		return br.Criteria().WithDefaults(lead.DefaultCriteria), nil
	}
	return promptCriteria(stdin, stdout)
}

func promptCriteria(stdin io.Reader, stdout io.Writer) (lead.Criteria, error) {
	r := bufio.NewReader(stdin)
	ask := func(q string) (string, error) {
		fmt.Fprint(stdout, q)
		line, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}
	fmt.Fprintln(stdout, "--- AI Lead Generation and Enrichment Tool ---")
	industry, err := ask("Enter the target industry (e.g., 'cybersecurity'): ")
	if err != nil {
		return lead.Criteria{}, err
	}
	size, err := ask("Enter the company size range (e.g., '50-200 employees'): ")
	if err != nil {
		return lead.Criteria{}, err
	}
	location, err := ask("Enter the target location (e.g., 'San Francisco'): ")
	if err != nil {
		return lead.Criteria{}, err
	}
	return lead.NewCriteria(industry, size, location).WithDefaults(lead.DefaultCriteria), nil
}

func realMain(args []string, stdin io.Reader, stdout io.Writer) int {
	o, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		log.Error().Err(err).Msg("invalid arguments")
		return exitFailure
	}
	cfg, err := resolveConfig(o)
	if err != nil {
		log.Error().Err(err).Msg("configuration failed")
		return exitFailure
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	criteria, err := resolveCriteria(o, &cfg, stdin, stdout)
	if err != nil {
		log.Error().Err(err).Msg("reading criteria failed")
		return exitFailure
	}
	return exitCode(run(cfg, criteria, stdout))
}

func run(cfg app.Config, criteria lead.Criteria, stdout io.Writer) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()
	a.SetOutput(stdout)

	return a.Run(ctx, criteria)
}

// exitCode maps a run error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, app.ErrNoLeads):
		log.Warn().Msg("no leads found; no files written")
		return exitNoLeads
	}
	var fe *failure.PipelineFatalError
	if errors.As(err, &fe) {
		log.Error().Err(fe.Err).Str("stage", fe.Stage).Msg("pipeline failed")
	} else {
		log.Error().Err(err).Msg("run failed")
	}
	return exitFailure
}
