// Package config provides configuration loading for the phase engine.
package config

import (
	"fmt"
	"time"
)

// Config is the root engine configuration.
type Config struct {
	Logging   LoggingConfig   `koanf:"logging"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Index     IndexConfig     `koanf:"index"`
	Detection DetectionConfig `koanf:"detection"`
	Cache     CacheConfig     `koanf:"cache"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "tei" or "openai".
	Provider string `koanf:"provider"`
	Model    string `koanf:"model"`
	BaseURL  string `koanf:"base_url"`
	// APIKey is read from MAKALAH_EMBEDDING_API_KEY; never put it in the
	// config file.
	APIKey string `koanf:"api_key"`
}

// IndexConfig configures the phase vector index.
type IndexConfig struct {
	// Backend is "chromem" or "qdrant".
	Backend string `koanf:"backend"`

	// Path is the chromem persistence directory; empty means in-memory.
	Path string `koanf:"path"`

	// Collection holds the phase definition chunks.
	Collection string `koanf:"collection"`

	QdrantHost   string `koanf:"qdrant_host"`
	QdrantPort   int    `koanf:"qdrant_port"`
	QdrantAPIKey string `koanf:"qdrant_api_key"`
	QdrantUseTLS bool   `koanf:"qdrant_use_tls"`
}

// DetectionConfig tunes the semantic phase detector.
type DetectionConfig struct {
	TopK         int           `koanf:"top_k"`
	Threshold    float64       `koanf:"threshold"`
	Timeout      time.Duration `koanf:"timeout"`
	EmbedRetries int           `koanf:"embed_retries"`
}

// CacheConfig tunes the workflow context cache.
type CacheConfig struct {
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "tei", "openai":
	default:
		return fmt.Errorf("embedding.provider must be tei or openai, got %q", c.Embedding.Provider)
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required")
	}

	switch c.Index.Backend {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("index.backend must be chromem or qdrant, got %q", c.Index.Backend)
	}

	if c.Detection.TopK <= 0 {
		return fmt.Errorf("detection.top_k must be positive, got %d", c.Detection.TopK)
	}
	if c.Detection.Threshold <= 0 || c.Detection.Threshold > 1 {
		return fmt.Errorf("detection.threshold must be in (0, 1], got %v", c.Detection.Threshold)
	}
	if c.Detection.Timeout <= 0 {
		return fmt.Errorf("detection.timeout must be positive, got %v", c.Detection.Timeout)
	}
	if c.Detection.EmbedRetries < 0 {
		return fmt.Errorf("detection.embed_retries must not be negative, got %d", c.Detection.EmbedRetries)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
	}

	return nil
}
