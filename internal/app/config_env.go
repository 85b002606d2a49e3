package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hyperifyio/goleads/internal/llm"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, keys ...string) {
		if *dst != "" {
			return
		}
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	setString(&cfg.InputPath, "INPUT")
	setString(&cfg.SearchProvider, "SEARCH_PROVIDER")
	setString(&cfg.SerpAPIKey, "SERPAPI_API_KEY", "SERPAPI_KEY")
	// SEARX_URL wins over SEARXNG_URL when both are set.
	setString(&cfg.SearxURL, "SEARX_URL", "SEARXNG_URL")
	setString(&cfg.SearxKey, "SEARX_KEY", "SEARXNG_KEY")
	setString(&cfg.FileSearchPath, "SEARCH_FILE")
	setString(&cfg.ExtractMode, "EXTRACT_MODE")
	setString(&cfg.LLMProvider, "LLM_PROVIDER")
	setString(&cfg.LLMModel, "LLM_MODEL")
	setString(&cfg.LLMAPIKey, "LLM_API_KEY")
	setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
	setString(&cfg.CacheDir, "CACHE_DIR")

	if cfg.LeadsToFind == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("LEADS_TO_FIND"))); err == nil && n > 0 {
			cfg.LeadsToFind = n
		}
	}
	if cfg.APITimeout <= 0 {
		if d, ok := envSeconds("API_TIMEOUT_SECONDS"); ok && d > 0 {
			cfg.APITimeout = d
		}
	}
	if cfg.GenerateDelay == 0 {
		if d, ok := envSeconds("RATE_LIMIT_DELAY_SECONDS"); ok {
			cfg.GenerateDelay = Delay(d)
		}
	}
	if cfg.SearchDelay == 0 {
		if d, ok := envSeconds("SEARCH_DELAY_SECONDS"); ok {
			cfg.SearchDelay = Delay(d)
		}
	}
	if cfg.CacheMaxAge == 0 {
		if s := os.Getenv("CACHE_MAX_AGE"); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				cfg.CacheMaxAge = d
			}
		}
	}

	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		switch strings.ToLower(strings.TrimSpace(os.Getenv(envKey))) {
		case "1", "true", "yes", "on":
			*dst = true
		}
	}
	setBool(&cfg.DryRun, "DRY_RUN")
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
}

// ApplyProviderKeyFromEnv fills an empty LLM key from the provider's own
// variable, after the provider itself has been resolved from every layer.
func ApplyProviderKeyFromEnv(cfg *Config) {
	if cfg == nil || cfg.LLMAPIKey != "" {
		return
	}
	var keys []string
	switch strings.ToLower(strings.TrimSpace(cfg.LLMProvider)) {
	case llm.ProviderOpenAI:
		keys = []string{"OPENAI_API_KEY"}
	case llm.ProviderAnthropic:
		keys = []string{"ANTHROPIC_API_KEY"}
	case llm.ProviderGemini, "":
		keys = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	}
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			cfg.LLMAPIKey = v
			return
		}
	}
}

// envSeconds parses a whole or fractional number of seconds.
func envSeconds(key string) (time.Duration, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return time.Duration(f * float64(time.Second)), true
}
