package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all factagent configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// LLM configuration
	LLM LLMConfig `yaml:"llm"`

	// Memory store configuration
	Memory MemoryConfig `yaml:"memory"`

	// Fact-check pipeline configuration
	Pipeline PipelineConfig `yaml:"pipeline"`

	// HTTP server configuration
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the Gemini client.
type LLMConfig struct {
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	EmbeddingModel  string `yaml:"embedding_model"`
	BaseURL         string `yaml:"base_url"`
	Timeout         string `yaml:"timeout"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`

	// EnableGoogleSearch enables Google Search grounding during
	// evidence retrieval.
	EnableGoogleSearch bool `yaml:"enable_google_search"`
}

// MemoryConfig configures the SQLite memory store.
type MemoryConfig struct {
	DatabasePath string `yaml:"database_path"`

	// CacheSimilarity is the minimum similarity ratio for a cached
	// verified claim to count as a hit.
	CacheSimilarity float64 `yaml:"cache_similarity"`

	// CacheScanLimit bounds how many recent cached claims are compared
	// against an incoming query.
	CacheScanLimit int `yaml:"cache_scan_limit"`
}

// PipelineConfig configures the fact-check pipeline.
type PipelineConfig struct {
	// TopK documents retrieved from the knowledge base per claim.
	TopK int `yaml:"top_k"`

	// MaxClaims caps how many claims are extracted from one input.
	MaxClaims int `yaml:"max_claims"`

	// MaxParallelClaims bounds concurrent claim verification.
	MaxParallelClaims int `yaml:"max_parallel_claims"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`

	// MaxUploadBytes caps image uploads for image verification.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "factagent",
		Version: "1.0.0",

		LLM: LLMConfig{
			Model:              "gemini-2.5-flash",
			EmbeddingModel:     "gemini-embedding-001",
			BaseURL:            "https://generativelanguage.googleapis.com/v1beta",
			Timeout:            "120s",
			MaxOutputTokens:    8192,
			EnableGoogleSearch: true,
		},

		Memory: MemoryConfig{
			DatabasePath:    "data/factagent.db",
			CacheSimilarity: 0.85,
			CacheScanLimit:  20,
		},

		Pipeline: PipelineConfig{
			TopK:              3,
			MaxClaims:         5,
			MaxParallelClaims: 3,
		},

		Server: ServerConfig{
			Addr:            ":8501",
			ReadTimeout:     "30s",
			WriteTimeout:    "300s",
			ShutdownTimeout: "10s",
			MaxUploadBytes:  10 << 20,
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file, overlays the nearest .env
// file, and applies environment variable overrides. A missing config file
// is not an error; defaults are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Overlay .env before reading the environment so file-level values
	// win over stale machine-level ones.
	if _, err := LoadDotenv(DefaultEnvPaths(filepath.Dir(path)), true); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// Credential (check in priority order; GEMINI_API_KEY wins)
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}

	if model := os.Getenv("FACTAGENT_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if path := os.Getenv("FACTAGENT_DB"); path != "" {
		c.Memory.DatabasePath = path
	}
	if addr := os.Getenv("FACTAGENT_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("FACTAGENT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("API key not configured (set GEMINI_API_KEY in the environment or a .env file)")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("LLM model not configured")
	}
	if c.Memory.DatabasePath == "" {
		return fmt.Errorf("database path not configured")
	}
	if c.Memory.CacheSimilarity < 0 || c.Memory.CacheSimilarity > 1 {
		return fmt.Errorf("cache_similarity must be in [0,1], got %v", c.Memory.CacheSimilarity)
	}
	return nil
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetShutdownTimeout returns the server shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
