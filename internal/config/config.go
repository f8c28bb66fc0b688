// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string  `yaml:"token"`
	Mode     string  `yaml:"mode"` // polling | webhook (future)
	Username string  `yaml:"username"`
	Workers  int     `yaml:"workers"` // polling workers
	AdminIDs []int64 `yaml:"admin_ids"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"`
}

type AIConfig struct {
	OpenAIKey       string  `yaml:"openai_key"`
	GeminiKey       string  `yaml:"gemini_key"`
	GeminiURL       string  `yaml:"gemini_url"`
	CompatKey       string  `yaml:"compat_key"`
	CompatBaseURL   string  `yaml:"compat_base_url"`
	DefaultModel    string  `yaml:"default_model"`
	MaxTokens       int     `yaml:"max_tokens"`
	PromptBudget    int     `yaml:"prompt_budget"` // max prompt tokens per call; 0 takes the default
	Temperature     float64 `yaml:"temperature"`
	ConcurrentLimit int     `yaml:"concurrent_limit"` // max concurrent AI calls
}

type NewsConfig struct {
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	PageSize int           `yaml:"page_size"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type RateLimitConfig struct {
	Window time.Duration `yaml:"window"` // sliding window length
	Limit  int           `yaml:"limit"`  // requests per user per window
}

type HistoryConfig struct {
	MaxExchanges int `yaml:"max_exchanges"` // retained exchanges per user
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	AI        AIConfig        `yaml:"ai"`
	News      NewsConfig      `yaml:"news"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	History   HistoryConfig   `yaml:"history"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 1024
	}
	if cfg.AI.PromptBudget == 0 {
		cfg.AI.PromptBudget = 4096
	}
	if cfg.AI.CompatBaseURL == "" {
		cfg.AI.CompatBaseURL = "https://api.metisai.ir/openai/v1"
	}
	if cfg.News.BaseURL == "" {
		cfg.News.BaseURL = "https://newsapi.org"
	}
	if cfg.News.PageSize <= 0 {
		cfg.News.PageSize = 5
	}
	if cfg.News.CacheTTL <= 0 {
		cfg.News.CacheTTL = 5 * time.Minute
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.History.MaxExchanges == 0 {
		cfg.History.MaxExchanges = 10
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8081
	}

	// Validation. Bad limiter/history values are fatal here, never at call time.
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.RateLimit.Window < 0 {
		return nil, errors.New("rate_limit.window must not be negative")
	}
	if cfg.RateLimit.Limit < 0 {
		return nil, errors.New("rate_limit.limit must not be negative")
	}
	if cfg.History.MaxExchanges < 0 {
		return nil, errors.New("history.max_exchanges must not be negative")
	}
	if cfg.AI.PromptBudget < 0 {
		return nil, errors.New("ai.prompt_budget must not be negative")
	}
	if cfg.RateLimit.Limit == 0 {
		cfg.RateLimit.Limit = 20
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
