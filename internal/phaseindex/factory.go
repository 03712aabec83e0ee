package phaseindex

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/makalah-app/makalah-beta-sub003/internal/workflow"
)

// Index combines searching with resource cleanup.
type Index interface {
	workflow.PhaseSearcher
	io.Closer
}

// Config selects and configures a phase index backend.
type Config struct {
	// Backend is "chromem" (default) or "qdrant".
	Backend string

	Chromem ChromemConfig
	Qdrant  QdrantConfig
}

// New creates a phase index based on the configuration.
func New(ctx context.Context, cfg Config, embedder workflow.Embedder, logger *zap.Logger) (Index, error) {
	switch cfg.Backend {
	case "chromem", "":
		return NewChromemIndex(ctx, cfg.Chromem, embedder, logger)
	case "qdrant":
		return NewQdrantIndex(ctx, cfg.Qdrant, embedder, logger)
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, cfg.Backend)
	}
}
