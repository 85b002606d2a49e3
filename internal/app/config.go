package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hyperifyio/goleads/internal/governor"
	"github.com/hyperifyio/goleads/internal/llm"
	"github.com/hyperifyio/goleads/internal/pipeline"
	"github.com/hyperifyio/goleads/internal/prompts"
)

// Config holds runtime configuration for the application. Zero values mean
// unset; a layer that sets a delay of zero stores NoDelay instead so pacing
// stays disabled. WithDefaults fills what is left after flags, env and file
// config.
type Config struct {
	InputPath    string
	OutputJSON   string
	OutputCSV    string
	OutputPDF    string
	OutputSQLite string

	LeadsToFind   int
	APITimeout    time.Duration
	GenerateDelay time.Duration
	SearchDelay   time.Duration

	// Search
	SearchProvider string
	SerpAPIKey     string
	SearxURL       string
	SearxKey       string
	SearxUA        string
	FileSearchPath string

	// ExtractMode selects how page text is taken: "body" keeps the whole
	// body, "main" prefers <main>/<article> and drops navigation.
	ExtractMode string

	// LLM
	LLMProvider string
	LLMModel    string
	LLMAPIKey   string
	LLMBaseURL  string

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	Prompts prompts.Set

	// Behavior
	DryRun  bool
	Verbose bool
}

const (
	DefaultOutputJSON     = "leads_output.json"
	DefaultOutputCSV      = "leads_output.csv"
	DefaultAPITimeout     = 15 * time.Second
	DefaultSearchProvider = "serpapi"
	DefaultLLMProvider    = llm.ProviderGemini
	DefaultExtractMode    = ExtractBody
)

// Extraction modes.
const (
	ExtractBody = "body"
	ExtractMain = "main"
)

// NoDelay is the stored form of an explicit zero delay.
const NoDelay = pipeline.NoDelay

// Delay converts a configured delay to its stored form: zero or less becomes
// NoDelay.
func Delay(d time.Duration) time.Duration {
	if d <= 0 {
		return NoDelay
	}
	return d
}

// NewConfig returns a Config with every layered field unset.
func NewConfig() Config {
	return Config{}
}

// WithDefaults fills the fields no layer has set.
func (c Config) WithDefaults() Config {
	if c.OutputJSON == "" {
		c.OutputJSON = DefaultOutputJSON
	}
	if c.OutputCSV == "" {
		c.OutputCSV = DefaultOutputCSV
	}
	if c.LeadsToFind == 0 {
		c.LeadsToFind = pipeline.DefaultLeadsToFind
	}
	if c.APITimeout <= 0 {
		c.APITimeout = DefaultAPITimeout
	}
	if c.GenerateDelay == 0 {
		c.GenerateDelay = governor.DefaultGenerateDelay
	}
	if c.SearchDelay == 0 {
		c.SearchDelay = governor.DefaultSearchDelay
	}
	c.SearchProvider = strings.ToLower(strings.TrimSpace(c.SearchProvider))
	if c.SearchProvider == "" {
		c.SearchProvider = DefaultSearchProvider
	}
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	if c.LLMProvider == "" {
		c.LLMProvider = DefaultLLMProvider
	}
	c.ExtractMode = strings.ToLower(strings.TrimSpace(c.ExtractMode))
	if c.ExtractMode == "" {
		c.ExtractMode = DefaultExtractMode
	}
	if c.LLMModel == "" {
		c.LLMModel = llm.DefaultModel(c.LLMProvider)
	}
	c.Prompts = prompts.Default().WithOverrides(c.Prompts)
	return c
}

// ValidateConfig checks a defaulted config. Provider credentials are only
// required when the run will call the provider; dry runs skip the LLM.
func ValidateConfig(cfg Config) error {
	if cfg.LeadsToFind < 1 {
		return fmt.Errorf("config: leads_to_find must be at least 1, got %d", cfg.LeadsToFind)
	}
	if cfg.CacheMaxAge < 0 {
		return errors.New("config: negative cache max age is not allowed")
	}
	switch cfg.SearchProvider {
	case "serpapi":
		if strings.TrimSpace(cfg.SerpAPIKey) == "" {
			return errors.New("config: search provider serpapi needs SERPAPI_API_KEY")
		}
	case "searxng":
		if strings.TrimSpace(cfg.SearxURL) == "" {
			return errors.New("config: search provider searxng needs SEARX_URL")
		}
	case "file":
		if strings.TrimSpace(cfg.FileSearchPath) == "" {
			return errors.New("config: search provider file needs SEARCH_FILE")
		}
	case "duckduckgo":
	default:
		return fmt.Errorf("config: unknown search provider %q", cfg.SearchProvider)
	}
	if cfg.ExtractMode != ExtractBody && cfg.ExtractMode != ExtractMain {
		return fmt.Errorf("config: unknown extract mode %q", cfg.ExtractMode)
	}
	switch cfg.LLMProvider {
	case llm.ProviderGemini, llm.ProviderOpenAI, llm.ProviderAnthropic:
	default:
		return fmt.Errorf("config: unknown llm provider %q", cfg.LLMProvider)
	}
	if cfg.DryRun {
		return nil
	}
	// OpenAI-compatible local servers accept any key.
	if strings.TrimSpace(cfg.LLMAPIKey) == "" && !(cfg.LLMProvider == llm.ProviderOpenAI && cfg.LLMBaseURL != "") {
		return fmt.Errorf("config: llm provider %s needs an api key", cfg.LLMProvider)
	}
	return nil
}
