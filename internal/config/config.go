// Package config defines the service configuration and its loading order:
// defaults, then config file, then environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/siftlab/sift/internal/llm"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	LLM       llm.Config      `yaml:"llm" mapstructure:"llm"`
	Translate TranslateConfig `yaml:"translate" mapstructure:"translate"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBytes   int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	HTTPProxy  string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// SearchConfig configures both evidence sources and the result cache.
type SearchConfig struct {
	FactCheckAPIKey  string        `yaml:"fact_check_api_key" mapstructure:"fact_check_api_key"`
	FactCheckBaseURL string        `yaml:"fact_check_base_url" mapstructure:"fact_check_base_url"`
	WebSearchAPIKey  string        `yaml:"web_search_api_key" mapstructure:"web_search_api_key"`
	WebSearchCX      string        `yaml:"web_search_cx" mapstructure:"web_search_cx"`
	WebSearchBaseURL string        `yaml:"web_search_base_url" mapstructure:"web_search_base_url"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"`
	CacheTTL         time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// TranslateConfig configures the translation capability.
type TranslateConfig struct {
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Fetch: FetchConfig{
			Timeout:  15 * time.Second,
			MaxBytes: 2_000_000,
		},
		Search: SearchConfig{
			Timeout:  10 * time.Second,
			CacheTTL: time.Hour,
		},
		LLM:       llm.DefaultConfig(),
		Translate: TranslateConfig{Timeout: 10 * time.Second},
	}
}

// Load builds the configuration from defaults, the viper-loaded file, and
// environment variables. Well-known provider key variables are honored
// without the SIFT_ prefix.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyEnv(&cfg.Search.FactCheckAPIKey, "FACT_CHECK_API_KEY", "GOOGLE_API_KEY")
	applyEnv(&cfg.Search.WebSearchAPIKey, "GOOGLE_SEARCH_API_KEY")
	applyEnv(&cfg.Search.WebSearchCX, "GOOGLE_SEARCH_CX")
	applyEnv(&cfg.Translate.APIKey, "GOOGLE_TRANSLATE_API_KEY", "GOOGLE_API_KEY")

	switch cfg.LLM.Provider {
	case "openai":
		applyEnv(&cfg.LLM.APIKey, "OPENAI_API_KEY")
	case "gemini", "google":
		applyEnv(&cfg.LLM.APIKey, "GEMINI_API_KEY", "GOOGLE_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "", "gemini", "google", "openai":
	default:
		return fmt.Errorf("unknown llm provider: %q", c.LLM.Provider)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr must not be empty")
	}
	return nil
}

// applyEnv fills an unset target from the first non-empty variable.
func applyEnv(target *string, names ...string) {
	if *target != "" {
		return
	}
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			*target = val
			return
		}
	}
}
