// Package file provides TOML-based configuration loading.
// Configuration lives in a TOML file within the pharmaguard config directory.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
)

// Default tuning values, restated here so the config adapter depends
// only on the domain. They mirror the core's built-in policies.
const (
	defaultMaxChars       = 1000
	defaultOverlapChars   = 100
	defaultTopK           = 6
	defaultMinSimilarity  = 0.25
	defaultTimeoutSeconds = 30
)

// Config holds all user-tunable settings.
type Config struct {
	// DataDir is where the label database lives (default: ~/.pharmaguard/data).
	DataDir string `toml:"data_dir"`

	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Answer    AnswerConfig    `toml:"answer"`
}

// ChunkingConfig controls how label sections are split into passages.
type ChunkingConfig struct {
	MaxChars     int `toml:"max_chars"`
	OverlapChars int `toml:"overlap_chars"`
}

// RetrievalConfig controls evidence search.
type RetrievalConfig struct {
	TopK          int     `toml:"top_k"`
	MinSimilarity float64 `toml:"min_similarity"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	Model      string `toml:"model"`
	APIKey     string `toml:"api_key"`
	Dimensions int    `toml:"dimensions"`

	// TimeoutSeconds bounds each embedding request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// AnswerConfig controls answer composition.
type AnswerConfig struct {
	// SafetyNote overrides the note appended to every answer.
	SafetyNote string `toml:"safety_note"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Chunking: ChunkingConfig{
			MaxChars:     defaultMaxChars,
			OverlapChars: defaultOverlapChars,
		},
		Retrieval: RetrievalConfig{
			TopK:          defaultTopK,
			MinSimilarity: defaultMinSimilarity,
		},
		Embedding: EmbeddingConfig{
			Provider:       "ollama",
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Answer: AnswerConfig{
			SafetyNote: domain.DefaultSafetyNote,
		},
	}
}

// DefaultPath returns the default config file path (~/.pharmaguard/config.toml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pharmaguard", "config.toml"), nil
}

// Load reads configuration from path, filling unset fields with defaults.
// A missing file is not an error; defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save persists the configuration to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Restricted permissions; the file may hold an API key.
	return os.WriteFile(path, data, 0600)
}

// Validate reports configuration values that cannot work.
func (c Config) Validate() error {
	if c.Chunking.MaxChars <= 0 {
		return fmt.Errorf("chunking.max_chars must be positive, got %d", c.Chunking.MaxChars)
	}
	if c.Chunking.OverlapChars <= 0 {
		return fmt.Errorf("chunking.overlap_chars must be positive, got %d", c.Chunking.OverlapChars)
	}
	if c.Chunking.OverlapChars >= c.Chunking.MaxChars {
		return fmt.Errorf("chunking.overlap_chars (%d) must be smaller than chunking.max_chars (%d)",
			c.Chunking.OverlapChars, c.Chunking.MaxChars)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.MinSimilarity < 0 || c.Retrieval.MinSimilarity >= 1 {
		return fmt.Errorf("retrieval.min_similarity must be in [0, 1), got %g", c.Retrieval.MinSimilarity)
	}
	switch c.Embedding.Provider {
	case "", "ollama", "openai":
	default:
		return fmt.Errorf("embedding.provider must be ollama or openai, got %q", c.Embedding.Provider)
	}
	if c.Embedding.TimeoutSeconds < 0 {
		return fmt.Errorf("embedding.timeout_seconds must not be negative, got %d", c.Embedding.TimeoutSeconds)
	}
	return nil
}
