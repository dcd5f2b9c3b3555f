package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"webrag/internal/domain"
)

// Config holds all configuration for the webrag tool. It is validated
// once at load time and never mutated mid-run.
type Config struct {
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Index     IndexConfig     `yaml:"index"`
}

// ChunkingConfig holds segmentation parameters.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	MinChunkLen  int `yaml:"min_chunk_len"`
}

// RetrieveConfig holds query-time parameters.
type RetrieveConfig struct {
	TopK                int     `yaml:"top_k"`
	DedupeBySource      bool    `yaml:"dedupe_by_source"`
	CandidateMultiplier int     `yaml:"candidate_multiplier"`
	MinScoreThreshold   float64 `yaml:"min_score_threshold"` // Filter results below this score (0 = disabled)
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "jina", "ollama", "mock"
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL   string `yaml:"base_url"`    // Override for self-hosted endpoints
	Dimension int    `yaml:"dimension"`   // Used by the mock provider
	Workers   int    `yaml:"workers"`     // Concurrent embedding calls during ingest
}

// CorpusConfig selects which scraped page files enter the pipeline.
type CorpusConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// IndexConfig holds vector index storage configuration.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			ChunkSize:    800,
			ChunkOverlap: 100,
			MinChunkLen:  20,
		},
		Retrieve: RetrieveConfig{
			TopK:                5,
			DedupeBySource:      true,
			CandidateMultiplier: 3,
			MinScoreThreshold:   0,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			Workers:   4,
		},
		Corpus: CorpusConfig{
			Includes: []string{"**/*.json"},
			Excludes: []string{"**/.webrag/**"},
		},
		Index: IndexConfig{
			Path: "",
		},
	}
}

// Validate checks the constraints the pipeline relies on. Violations
// abort a run before any work starts.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return &domain.ConfigError{Param: "chunk_size", Reason: "must be positive"}
	}
	if c.Chunking.ChunkOverlap < 0 {
		return &domain.ConfigError{Param: "chunk_overlap", Reason: "must not be negative"}
	}
	if c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return &domain.ConfigError{Param: "chunk_overlap", Reason: "must be smaller than chunk_size"}
	}
	if c.Retrieve.TopK < 1 {
		return &domain.ConfigError{Param: "top_k", Reason: "must be at least 1"}
	}
	if c.Embedding.Workers < 1 {
		return &domain.ConfigError{Param: "workers", Reason: "must be at least 1"}
	}
	return nil
}

// Load loads configuration from a YAML file, falling back to defaults
// when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for
// webrag.yaml, then .webrag/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "webrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".webrag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDBPath returns the path to the vector index database.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, ".webrag", "index.db")
}

// EnsureDataDir ensures the .webrag directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".webrag"), 0755)
}
