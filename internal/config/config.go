// Package config loads the engine configuration from YAML with defaults
// filled in for anything left unset. API keys come from the environment,
// never from the file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete engine configuration.
type Config struct {
	Paths     PathsConfig     `yaml:"paths"`
	Search    SearchConfig    `yaml:"search"`
	Splitter  SplitterConfig  `yaml:"splitter"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Retry     RetryConfig     `yaml:"retry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// PathsConfig locates the on-disk stores.
type PathsConfig struct {
	Database string `yaml:"database"`
	Vectors  string `yaml:"vectors"`
}

// SearchConfig tunes the hybrid retriever.
type SearchConfig struct {
	// LexicalWeight and SemanticWeight set the channel trust in rank
	// fusion. Lexical is biased upward: keyword match outperforms
	// embedding similarity on Arabic legal text.
	LexicalWeight  float64 `yaml:"lexical_weight"`
	SemanticWeight float64 `yaml:"semantic_weight"`

	// RRFConstant is the fusion smoothing parameter k.
	RRFConstant int `yaml:"rrf_constant"`

	TopK int `yaml:"top_k"`

	// RerankTimeout bounds the judging round-trip.
	RerankTimeout time.Duration `yaml:"rerank_timeout"`
}

// SplitterConfig sets the generic windowing geometry, in runes.
type SplitterConfig struct {
	WindowSize    int `yaml:"window_size"`
	WindowOverlap int `yaml:"window_overlap"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	Timeout    time.Duration `yaml:"timeout"`
	CacheSize  int           `yaml:"cache_size"`

	// APIKey is populated from GEMINI_API_KEY, not the file.
	APIKey string `yaml:"-"`
}

// LLMConfig configures the text-completion provider used for reranking.
type LLMConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`

	// APIKey is populated from LLM_API_KEY, not the file.
	APIKey string `yaml:"-"`
}

// RetryConfig bounds outbound calls; it maps onto retry.Policy.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			Database: "mizan.db",
			Vectors:  "mizan.hnsw",
		},
		Search: SearchConfig{
			LexicalWeight:  0.7,
			SemanticWeight: 0.3,
			RRFConstant:    60,
			TopK:           15,
			RerankTimeout:  30 * time.Second,
		},
		Splitter: SplitterConfig{
			WindowSize:    3200,
			WindowOverlap: 400,
		},
		Embedding: EmbeddingConfig{
			Model:      "text-embedding-004",
			Dimensions: 768,
			Timeout:    60 * time.Second,
			CacheSize:  512,
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.groq.com/openai/v1",
			Model:       "llama-3.3-70b-versatile",
			Temperature: 0.3,
			MaxTokens:   4096,
			Timeout:     120 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:  4,
			InitialDelay: 1 * time.Second,
			MaxDelay:     16 * time.Second,
			Multiplier:   2.0,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path and overlays it on DefaultConfig. A missing file is not
// an error; the defaults apply. API keys are read from the environment in
// both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
			cfg.fillDefaults()
		}
	}

	cfg.Embedding.APIKey = os.Getenv("GEMINI_API_KEY")
	cfg.LLM.APIKey = os.Getenv("LLM_API_KEY")
	return cfg, nil
}

// fillDefaults restores defaults for zero values a partial file left
// unset.
func (c *Config) fillDefaults() {
	def := DefaultConfig()

	if c.Paths.Database == "" {
		c.Paths.Database = def.Paths.Database
	}
	if c.Paths.Vectors == "" {
		c.Paths.Vectors = def.Paths.Vectors
	}
	if c.Search.LexicalWeight == 0 && c.Search.SemanticWeight == 0 {
		c.Search.LexicalWeight = def.Search.LexicalWeight
		c.Search.SemanticWeight = def.Search.SemanticWeight
	}
	if c.Search.RRFConstant == 0 {
		c.Search.RRFConstant = def.Search.RRFConstant
	}
	if c.Search.TopK == 0 {
		c.Search.TopK = def.Search.TopK
	}
	if c.Search.RerankTimeout == 0 {
		c.Search.RerankTimeout = def.Search.RerankTimeout
	}
	if c.Splitter.WindowSize == 0 {
		c.Splitter.WindowSize = def.Splitter.WindowSize
	}
	if c.Splitter.WindowOverlap == 0 {
		c.Splitter.WindowOverlap = def.Splitter.WindowOverlap
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = def.Embedding.Model
	}
	if c.Embedding.Dimensions == 0 {
		c.Embedding.Dimensions = def.Embedding.Dimensions
	}
	if c.Embedding.Timeout == 0 {
		c.Embedding.Timeout = def.Embedding.Timeout
	}
	if c.Embedding.CacheSize == 0 {
		c.Embedding.CacheSize = def.Embedding.CacheSize
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = def.LLM.BaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = def.LLM.Model
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = def.LLM.MaxTokens
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = def.LLM.Timeout
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = def.Retry.MaxAttempts
	}
	if c.Retry.InitialDelay == 0 {
		c.Retry.InitialDelay = def.Retry.InitialDelay
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = def.Retry.MaxDelay
	}
	if c.Retry.Multiplier == 0 {
		c.Retry.Multiplier = def.Retry.Multiplier
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}
