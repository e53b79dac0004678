// Package config handles finagent configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/finagent/config.yaml, /etc/finagent/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "finagent", "config.yaml"))
	}

	paths = append(paths, "/etc/finagent/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all finagent configuration.
type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	MarketData MarketDataConfig `yaml:"market_data"`
	RiskModel  RiskModelConfig  `yaml:"risk_model"`
	Research   ResearchConfig   `yaml:"research"`
	Store      StoreConfig      `yaml:"store"`
	News       NewsConfig       `yaml:"news"`
	Agent      AgentConfig      `yaml:"agent"`
	LogLevel   string           `yaml:"log_level"`
}

// LLMConfig defines the language model used for the decision step and for
// narrative finalizers.
type LLMConfig struct {
	// Provider is one of openai, anthropic, cohere.
	Provider string `yaml:"provider"`
	// APIKey falls back to the provider's usual environment variable
	// (OPENAI_API_KEY, ANTHROPIC_API_KEY, CO_API_KEY) when empty.
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// Key returns the configured API key, falling back to the environment.
func (c LLMConfig) Key() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	switch c.Provider {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "cohere":
		return os.Getenv("CO_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

// MarketDataConfig defines the financial data provider connection.
type MarketDataConfig struct {
	// APIKey falls back to FMP_API_KEY when empty.
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	// ConnectTimeoutSec bounds dialing, ReadTimeoutSec bounds waiting for
	// response headers, WriteTimeoutSec bounds sending the request.
	ConnectTimeoutSec int `yaml:"connect_timeout_sec"`
	ReadTimeoutSec    int `yaml:"read_timeout_sec"`
	WriteTimeoutSec   int `yaml:"write_timeout_sec"`
	// MaxRetries bounds transport-level retries. A request is never retried
	// after response bytes have been observed.
	MaxRetries int `yaml:"max_retries"`
}

// Key returns the configured API key, falling back to the environment.
func (c MarketDataConfig) Key() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	return os.Getenv("FMP_API_KEY")
}

// ConnectTimeout returns the dial timeout.
func (c MarketDataConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSec) * time.Second
}

// ReadTimeout returns the response-header timeout.
func (c MarketDataConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the request-write timeout.
func (c MarketDataConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSec) * time.Second
}

// RiskModelConfig defines the risk prediction service.
type RiskModelConfig struct {
	URL string `yaml:"url"`
	// Threshold is the class-0 probability above which the verdict is
	// high risk.
	Threshold  float64 `yaml:"threshold"`
	TimeoutSec int     `yaml:"timeout_sec"`
}

// ResearchConfig defines the reference-document corpus.
type ResearchConfig struct {
	// Embedder is one of openai, gemini.
	Embedder       string `yaml:"embedder"`
	EmbedderModel  string `yaml:"embedder_model"`
	EmbedderAPIKey string `yaml:"embedder_api_key"`
	// Engine is one of memory, chromem, milvus.
	Engine string `yaml:"engine"`
	// Path is the chromem persistence directory; Address the milvus endpoint.
	Path       string `yaml:"path"`
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"`
	TopK       int    `yaml:"top_k"`
	// ChunkSize and ChunkOverlap are token counts.
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	// Sources lists documents to ingest at startup: local paths, http(s)
	// URLs, or s3://bucket/key object names.
	Sources []string `yaml:"sources"`
}

// StoreConfig defines conversation-state persistence.
type StoreConfig struct {
	// Engine is one of memory, sqlite.
	Engine string `yaml:"engine"`
	// Path is the sqlite database file.
	Path string `yaml:"path"`
}

// NewsConfig bounds article retrieval.
type NewsConfig struct {
	Limit        int `yaml:"limit"`
	LookbackDays int `yaml:"lookback_days"`
}

// AgentConfig tunes the orchestration loop.
type AgentConfig struct {
	// MaxHops bounds decide/dispatch round trips within one turn.
	MaxHops int `yaml:"max_hops"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			Temperature: 0,
			MaxTokens:   2048,
		},
		MarketData: MarketDataConfig{
			BaseURL:           "https://financialmodelingprep.com",
			ConnectTimeoutSec: 10,
			ReadTimeoutSec:    120,
			WriteTimeoutSec:   10,
			MaxRetries:        2,
		},
		RiskModel: RiskModelConfig{
			URL:        "http://localhost:8001/predict",
			Threshold:  0.7,
			TimeoutSec: 30,
		},
		Research: ResearchConfig{
			Embedder:      "openai",
			EmbedderModel: "text-embedding-3-small",
			Engine:        "memory",
			Collection:    "reference",
			TopK:          4,
			ChunkSize:     200,
			ChunkOverlap:  50,
		},
		Store: StoreConfig{
			Engine: "memory",
			Path:   "finagent.db",
		},
		News: NewsConfig{
			Limit:        3,
			LookbackDays: 30,
		},
		Agent: AgentConfig{
			MaxHops: 8,
		},
	}
}
