package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/makalah-app/makalah-beta-sub003/internal/config"
	"github.com/makalah-app/makalah-beta-sub003/internal/embeddings"
	"github.com/makalah-app/makalah-beta-sub003/internal/logging"
	"github.com/makalah-app/makalah-beta-sub003/internal/phaseindex"
	"github.com/makalah-app/makalah-beta-sub003/internal/workflow"
)

// engine bundles the wired collaborators behind the detect command.
type engine struct {
	Detector *workflow.Detector
	provider embeddings.Provider
	index    phaseindex.Index
	logger   *zap.Logger
}

// newEngine wires config -> logger -> embedding provider -> phase index ->
// detector.
func newEngine(ctx context.Context, configPath string) (*engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return nil, err
	}

	provider, err := embeddings.NewProvider(embeddings.ProviderConfig{
		Provider: cfg.Embedding.Provider,
		Model:    cfg.Embedding.Model,
		BaseURL:  cfg.Embedding.BaseURL,
		APIKey:   cfg.Embedding.APIKey,
	})
	if err != nil {
		return nil, err
	}

	// Seeding the index embeds the reference corpus; give it its own bound.
	seedCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	index, err := phaseindex.New(seedCtx, phaseindex.Config{
		Backend: cfg.Index.Backend,
		Chromem: phaseindex.ChromemConfig{
			Path:       cfg.Index.Path,
			Collection: cfg.Index.Collection,
		},
		Qdrant: phaseindex.QdrantConfig{
			Host:       cfg.Index.QdrantHost,
			Port:       cfg.Index.QdrantPort,
			APIKey:     cfg.Index.QdrantAPIKey,
			UseTLS:     cfg.Index.QdrantUseTLS,
			Collection: cfg.Index.Collection,
			VectorSize: provider.Dimension(),
		},
	}, provider, logger)
	if err != nil {
		_ = provider.Close()
		return nil, err
	}

	detector, err := workflow.NewDetector(workflow.DetectorConfig{
		TopK:         cfg.Detection.TopK,
		Threshold:    float32(cfg.Detection.Threshold),
		Timeout:      cfg.Detection.Timeout,
		EmbedRetries: cfg.Detection.EmbedRetries,
	}, provider, index, logger)
	if err != nil {
		_ = index.Close()
		_ = provider.Close()
		return nil, err
	}

	return &engine{
		Detector: detector,
		provider: provider,
		index:    index,
		logger:   logger,
	}, nil
}

// Close releases the engine's resources.
func (e *engine) Close() {
	_ = e.index.Close()
	_ = e.provider.Close()
	_ = e.logger.Sync()
}
