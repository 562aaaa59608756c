// Package config loads ripple configuration from .ripple/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	riperr "ripple/internal/errors"
)

// Config represents the complete ripple configuration
type Config struct {
	Version      int    `json:"version" mapstructure:"version"`
	Project      string `json:"project" mapstructure:"project"`
	DatabasePath string `json:"databasePath" mapstructure:"databasePath"`

	Crawl   CrawlConfig   `json:"crawl" mapstructure:"crawl"`
	Resolve ResolveConfig `json:"resolve" mapstructure:"resolve"`
	Explain ExplainConfig `json:"explain" mapstructure:"explain"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// CrawlConfig contains crawler configuration
type CrawlConfig struct {
	Workers     int      `json:"workers" mapstructure:"workers"`
	ExcludeDirs []string `json:"excludeDirs" mapstructure:"excludeDirs"`
}

// ResolveConfig configures the heuristic endpoint-stitching rule.
// Empty slices fall back to the built-in rule.
type ResolveConfig struct {
	HTTPVerbs          []string `json:"httpVerbs" mapstructure:"httpVerbs"`
	EndpointPrefixes   []string `json:"endpointPrefixes" mapstructure:"endpointPrefixes"`
	EndpointSubstrings []string `json:"endpointSubstrings" mapstructure:"endpointSubstrings"`
}

// ExplainConfig configures the LLM explanation collaborator
type ExplainConfig struct {
	BaseURL   string `json:"baseUrl" mapstructure:"baseUrl"`
	Model     string `json:"model" mapstructure:"model"`
	APIKeyEnv string `json:"apiKeyEnv" mapstructure:"apiKeyEnv"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:      1,
		Project:      "default",
		DatabasePath: filepath.Join(".ripple", "graph.db"),
		Crawl: CrawlConfig{
			Workers: 4,
		},
		Explain: ExplainConfig{
			BaseURL:   "https://api.groq.com/openai/v1",
			Model:     "llama-3.3-70b-versatile",
			APIKeyEnv: "RIPPLE_EXPLAIN_API_KEY",
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads configuration from <root>/.ripple/config.json.
// A missing config file yields the defaults, not an error.
func Load(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("project", "default")
	v.SetDefault("databasePath", filepath.Join(".ripple", "graph.db"))
	v.SetDefault("crawl.workers", 4)
	v.SetDefault("explain.baseUrl", "https://api.groq.com/openai/v1")
	v.SetDefault("explain.model", "llama-3.3-70b-versatile")
	v.SetDefault("explain.apiKeyEnv", "RIPPLE_EXPLAIN_API_KEY")
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".ripple"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <root>/.ripple/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".ripple")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return riperr.New(riperr.ConfigInvalid, "unsupported config version", nil)
	}
	if c.Crawl.Workers < 1 {
		return riperr.New(riperr.ConfigInvalid, "crawl.workers must be at least 1", nil)
	}
	return nil
}
