package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the orchestrator service.
type Config struct {
	Server    ServerConfig      `json:"server" yaml:"server"`
	LLM       LLMConfig         `json:"llm" yaml:"llm"`
	Embedding EmbeddingConfig   `json:"embedding" yaml:"embedding"`
	VectorDB  VectorDBConfig    `json:"vectordb" yaml:"vectordb"`
	Pipeline  PipelineConfig    `json:"pipeline" yaml:"pipeline"`
	Intent    IntentConfig      `json:"intent" yaml:"intent"`
	Routes    RoutesConfig      `json:"routes" yaml:"routes"`
	HTTP      *HTTPClientConfig `json:"http,omitempty" yaml:"http,omitempty"`
	Log       LogConfig         `json:"log" yaml:"log"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// LLMConfig defines configuration for the completion model.
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider"` // Available options: openai
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	TimeoutMs   int     `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// EmbeddingConfig defines configuration for the embedding model.
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: openai
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// VectorDBConfig defines configuration for the vector store.
type VectorDBConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: milvus
	Host       string `json:"host,omitempty" yaml:"host,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database   string `json:"database,omitempty" yaml:"database,omitempty"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
	Username   string `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty"`
}

// PipelineConfig tunes the multi-query answering pipeline.
type PipelineConfig struct {
	// Variants is the number of reformulated phrasings generated in
	// addition to the original question.
	Variants int `json:"variants,omitempty" yaml:"variants,omitempty"`
	// TopK is the per-variant retrieval depth.
	TopK      int     `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	// MaxPassages caps how many merged passages enter the context.
	MaxPassages int `json:"max_passages,omitempty" yaml:"max_passages,omitempty"`
	// MaxContextTokens caps the assembled context size, measured with
	// the configured tokenizer encoding.
	MaxContextTokens   int    `json:"max_context_tokens,omitempty" yaml:"max_context_tokens,omitempty"`
	Encoding           string `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	RetrievalTimeoutMs int    `json:"retrieval_timeout_ms,omitempty" yaml:"retrieval_timeout_ms,omitempty"`
}

// IntentConfig tunes the intent classifier.
type IntentConfig struct {
	Cache IntentCacheConfig `json:"cache" yaml:"cache"`
}

// IntentCacheConfig enables the optional decision cache. Disabled by
// default; identical questions then always reach the model.
type IntentCacheConfig struct {
	Enable     bool `json:"enable" yaml:"enable"`
	MaxEntries int  `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	TTLSeconds int  `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
}

// RoutesConfig maps remote intents to downstream service endpoints.
type RoutesConfig struct {
	AnalyzePDF      string `json:"analyze_pdf" yaml:"analyze_pdf"`
	ShoppingAdvisor string `json:"shopping_advisor" yaml:"shopping_advisor"`
	// ChatRAG optionally offloads answering to a remote assistant
	// instead of the in-process pipeline.
	ChatRAG string `json:"chat_rag,omitempty" yaml:"chat_rag,omitempty"`
}

// HTTPClientConfig tunes the outbound HTTP client shared by all
// downstream calls.
type HTTPClientConfig struct {
	TimeoutMs              int      `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	Retry                  int      `json:"retry,omitempty" yaml:"retry,omitempty"`
	BackoffMinMs           int      `json:"backoff_min_ms,omitempty" yaml:"backoff_min_ms,omitempty"`
	BackoffMaxMs           int      `json:"backoff_max_ms,omitempty" yaml:"backoff_max_ms,omitempty"`
	HostAllowlist          []string `json:"host_allowlist,omitempty" yaml:"host_allowlist,omitempty"`
	MaxConsecutiveFailures int      `json:"max_consecutive_failures,omitempty" yaml:"max_consecutive_failures,omitempty"`
	CircuitOpenSeconds     int      `json:"circuit_open_seconds,omitempty" yaml:"circuit_open_seconds,omitempty"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	JSON  bool   `json:"json,omitempty" yaml:"json,omitempty"`
}

// Default returns a configuration with all tunables at their defaults.
// API keys and endpoints still have to come from file or environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8080"},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			TopP:        1.0,
			MaxTokens:   1024,
			TimeoutMs:   30000,
		},
		Embedding: EmbeddingConfig{
			Provider:   "openai",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		},
		VectorDB: VectorDBConfig{
			Provider:   "milvus",
			Host:       "localhost",
			Port:       19530,
			Collection: "knowledge_base",
		},
		Pipeline: PipelineConfig{
			Variants:           2,
			TopK:               5,
			MaxPassages:        8,
			MaxContextTokens:   3000,
			Encoding:           "cl100k_base",
			RetrievalTimeoutMs: 5000,
		},
		Intent: IntentConfig{
			Cache: IntentCacheConfig{MaxEntries: 512, TTLSeconds: 300},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. An empty path yields defaults plus env.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file failed, err: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file failed, err: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets secrets stay out of config files.
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = v
		}
		if c.Embedding.APIKey == "" {
			c.Embedding.APIKey = v
		}
	}
	if v := os.Getenv("ORCHESTRATOR_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ANALYZE_PDF_ENDPOINT"); v != "" {
		c.Routes.AnalyzePDF = v
	}
	if v := os.Getenv("SHOPPING_ADVISOR_ENDPOINT"); v != "" {
		c.Routes.ShoppingAdvisor = v
	}
}
