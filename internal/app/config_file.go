package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Keys are
// snake_case in both YAML and JSON.
type FileConfig struct {
	Input string `yaml:"input" json:"input"`

	Output struct {
		JSON   string `yaml:"json" json:"json"`
		CSV    string `yaml:"csv" json:"csv"`
		PDF    string `yaml:"pdf" json:"pdf"`
		SQLite string `yaml:"sqlite" json:"sqlite"`
	} `yaml:"output" json:"output"`

	LeadsToFind           int      `yaml:"leads_to_find" json:"leads_to_find"`
	APITimeoutSeconds     float64  `yaml:"api_timeout_seconds" json:"api_timeout_seconds"`
	RateLimitDelaySeconds *float64 `yaml:"rate_limit_delay_seconds" json:"rate_limit_delay_seconds"`
	SearchDelaySeconds    *float64 `yaml:"search_delay_seconds" json:"search_delay_seconds"`

	Search struct {
		Provider   string `yaml:"provider" json:"provider"`
		SerpAPIKey string `yaml:"serpapi_key" json:"serpapi_key"`
		SearxURL   string `yaml:"searx_url" json:"searx_url"`
		SearxKey   string `yaml:"searx_key" json:"searx_key"`
		SearxUA    string `yaml:"searx_ua" json:"searx_ua"`
		File       string `yaml:"file" json:"file"`
	} `yaml:"search" json:"search"`

	Extract string `yaml:"extract" json:"extract"`

	LLM struct {
		Provider string `yaml:"provider" json:"provider"`
		Model    string `yaml:"model" json:"model"`
		APIKey   string `yaml:"key" json:"key"`
		BaseURL  string `yaml:"base" json:"base"`
	} `yaml:"llm" json:"llm"`

	Cache struct {
		Dir         string `yaml:"dir" json:"dir"`
		MaxAge      string `yaml:"max_age" json:"max_age"`
		Clear       bool   `yaml:"clear" json:"clear"`
		StrictPerms bool   `yaml:"strict_perms" json:"strict_perms"`
	} `yaml:"cache" json:"cache"`

	Prompts struct {
		Extract  string `yaml:"extract" json:"extract"`
		Insights string `yaml:"insights" json:"insights"`
		Scoring  string `yaml:"scoring" json:"scoring"`
		Message  string `yaml:"message" json:"message"`
	} `yaml:"prompts" json:"prompts"`

	DryRun  bool `yaml:"dry_run" json:"dry_run"`
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	if fc.Cache.MaxAge != "" {
		if _, err := time.ParseDuration(fc.Cache.MaxAge); err != nil {
			return fc, fmt.Errorf("parse config: cache.max_age: %w", err)
		}
	}
	if fc.LeadsToFind < 0 {
		return fc, errors.New("parse config: leads_to_find must not be negative")
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are still unset after flags and env.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setString := func(dst *string, v string) {
		if *dst == "" && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	setString(&cfg.InputPath, fc.Input)
	setString(&cfg.OutputJSON, fc.Output.JSON)
	setString(&cfg.OutputCSV, fc.Output.CSV)
	setString(&cfg.OutputPDF, fc.Output.PDF)
	setString(&cfg.OutputSQLite, fc.Output.SQLite)

	setString(&cfg.SearchProvider, fc.Search.Provider)
	setString(&cfg.SerpAPIKey, fc.Search.SerpAPIKey)
	setString(&cfg.SearxURL, fc.Search.SearxURL)
	setString(&cfg.SearxKey, fc.Search.SearxKey)
	setString(&cfg.SearxUA, fc.Search.SearxUA)
	setString(&cfg.FileSearchPath, fc.Search.File)
	setString(&cfg.ExtractMode, fc.Extract)

	setString(&cfg.LLMProvider, fc.LLM.Provider)
	setString(&cfg.LLMModel, fc.LLM.Model)
	setString(&cfg.LLMAPIKey, fc.LLM.APIKey)
	setString(&cfg.LLMBaseURL, fc.LLM.BaseURL)

	if cfg.LeadsToFind == 0 && fc.LeadsToFind > 0 {
		cfg.LeadsToFind = fc.LeadsToFind
	}
	if cfg.APITimeout <= 0 && fc.APITimeoutSeconds > 0 {
		cfg.APITimeout = seconds(fc.APITimeoutSeconds)
	}
	if cfg.GenerateDelay == 0 && fc.RateLimitDelaySeconds != nil && *fc.RateLimitDelaySeconds >= 0 {
		cfg.GenerateDelay = Delay(seconds(*fc.RateLimitDelaySeconds))
	}
	if cfg.SearchDelay == 0 && fc.SearchDelaySeconds != nil && *fc.SearchDelaySeconds >= 0 {
		cfg.SearchDelay = Delay(seconds(*fc.SearchDelaySeconds))
	}

	setString(&cfg.CacheDir, fc.Cache.Dir)
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge != "" {
		if d, err := time.ParseDuration(fc.Cache.MaxAge); err == nil {
			cfg.CacheMaxAge = d
		}
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}

	setString(&cfg.Prompts.Extract, fc.Prompts.Extract)
	setString(&cfg.Prompts.Insights, fc.Prompts.Insights)
	setString(&cfg.Prompts.Scoring, fc.Prompts.Scoring)
	setString(&cfg.Prompts.Message, fc.Prompts.Message)

	if !cfg.DryRun && fc.DryRun {
		cfg.DryRun = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
