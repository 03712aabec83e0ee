package embeddings

import (
	"fmt"
	"strings"

	"github.com/makalah-app/makalah-beta-sub003/internal/workflow"
)

// Provider is the interface for embedding providers.
type Provider interface {
	workflow.Embedder
	// Dimension returns the embedding dimension for the current model.
	Dimension() int
	// Close releases resources held by the provider.
	Close() error
}

// ProviderConfig holds configuration for creating an embedding provider.
type ProviderConfig struct {
	// Provider is the provider type: "tei" or "openai".
	Provider string
	// Model is the embedding model name.
	Model string
	// BaseURL is the embedding API URL.
	BaseURL string
	// APIKey authenticates against OpenAI-compatible APIs.
	APIKey string
}

// detectDimensionFromModel returns the embedding dimension for a model name.
// Falls back to 384 if the model is unknown.
func detectDimensionFromModel(model string) int {
	switch {
	case strings.Contains(model, "text-embedding-3-large"):
		return 3072
	case strings.Contains(model, "text-embedding-3-small"),
		strings.Contains(model, "text-embedding-ada"):
		return 1536
	case strings.Contains(model, "base"):
		return 768
	case strings.Contains(model, "large"):
		return 1024
	case strings.Contains(model, "small"), strings.Contains(model, "mini"):
		return 384
	default:
		return 384 // safe default for bge-small
	}
}

// NewProvider creates an embedding provider based on the configuration.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "tei", "":
		svc, err := NewTEIService(TEIConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
		})
		if err != nil {
			return nil, err
		}
		return &teiProvider{TEIService: svc, dimension: detectDimensionFromModel(cfg.Model)}, nil
	case "openai":
		svc, err := NewOpenAIService(OpenAIConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		})
		if err != nil {
			return nil, err
		}
		return &openAIProvider{OpenAIService: svc, dimension: detectDimensionFromModel(cfg.Model)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// teiProvider wraps TEIService to implement Provider.
type teiProvider struct {
	*TEIService
	dimension int
}

func (t *teiProvider) Dimension() int { return t.dimension }

// Close is a no-op for TEI since it uses HTTP.
func (t *teiProvider) Close() error { return nil }

// openAIProvider wraps OpenAIService to implement Provider.
type openAIProvider struct {
	*OpenAIService
	dimension int
}

func (o *openAIProvider) Dimension() int { return o.dimension }

// Close is a no-op for HTTP-backed providers.
func (o *openAIProvider) Close() error { return nil }
