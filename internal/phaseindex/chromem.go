package phaseindex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"
	"go.uber.org/zap"

	"github.com/makalah-app/makalah-beta-sub003/internal/workflow"
)

// ChromemConfig holds configuration for the embedded chromem-go index.
type ChromemConfig struct {
	// Path is the directory for persistent storage. Empty means in-memory,
	// reseeded on every start.
	Path string

	// Compress enables gzip compression for stored data.
	Compress bool

	// Collection is the collection name holding phase definition chunks.
	// Default: "phase_definitions".
	Collection string
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Collection == "" {
		c.Collection = "phase_definitions"
	}
}

// ChromemIndex is a workflow.PhaseSearcher backed by an embedded chromem-go
// database.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   workflow.Embedder
	config     ChromemConfig
	logger     *zap.Logger
}

// NewChromemIndex opens (or creates) the chromem index and seeds it with
// the phase reference corpus when empty.
func NewChromemIndex(ctx context.Context, config ChromemConfig, embedder workflow.Embedder, logger *zap.Logger) (*ChromemIndex, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()

	var db *chromem.DB
	if config.Path == "" {
		db = chromem.NewDB()
	} else {
		expanded, err := expandPath(config.Path)
		if err != nil {
			return nil, fmt.Errorf("expanding path: %w", err)
		}
		if err := os.MkdirAll(expanded, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", expanded, err)
		}
		db, err = chromem.NewPersistentDB(expanded, config.Compress)
		if err != nil {
			return nil, fmt.Errorf("creating chromem DB: %w", err)
		}
	}

	embeddingFunc := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}
	collection, err := db.GetOrCreateCollection(config.Collection, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("getting/creating collection %s: %w", config.Collection, err)
	}

	idx := &ChromemIndex{
		db:         db,
		collection: collection,
		embedder:   embedder,
		config:     config,
		logger:     logger,
	}

	if err := idx.seed(ctx); err != nil {
		return nil, err
	}

	return idx, nil
}

// seed indexes the phase reference corpus. A collection that already holds
// chunks (persistent path, prior run) is left untouched.
func (i *ChromemIndex) seed(ctx context.Context) error {
	if i.collection.Count() > 0 {
		i.logger.Debug("phase index already seeded",
			zap.Int("chunks", i.collection.Count()))
		return nil
	}

	chunks, err := definitionChunks()
	if err != nil {
		return err
	}

	texts := make([]string, len(chunks))
	for n, c := range chunks {
		texts[n] = c.Content
	}
	vectors, err := i.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding phase definitions: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: got %d vectors for %d chunks", ErrSearchFailed, len(vectors), len(chunks))
	}

	docs := make([]chromem.Document, len(chunks))
	for n, c := range chunks {
		docs[n] = chromem.Document{
			ID:        uuid.New().String(),
			Content:   c.Content,
			Embedding: vectors[n],
			Metadata: map[string]string{
				"chunk_type": workflow.PhaseChunkType,
				"phase":      string(c.Phase),
				"label":      c.Label,
			},
		}
	}

	if err := i.collection.AddDocuments(ctx, docs, 2); err != nil {
		return fmt.Errorf("adding phase definition chunks: %w", err)
	}

	i.logger.Info("phase index seeded",
		zap.Int("chunks", len(docs)),
		zap.String("collection", i.config.Collection),
	)
	return nil
}

// SearchPhases returns the phase-tagged chunks nearest queryVector, ordered
// by similarity descending, excluding matches below threshold.
func (i *ChromemIndex) SearchPhases(ctx context.Context, queryVector []float32, topK int, threshold float32) ([]workflow.PhaseMatch, error) {
	count := i.collection.Count()
	if count == 0 {
		return nil, ErrNotSeeded
	}
	if topK > count {
		topK = count
	}

	where := map[string]string{"chunk_type": workflow.PhaseChunkType}
	results, err := i.collection.QueryEmbedding(ctx, queryVector, topK, where, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	matches := make([]workflow.PhaseMatch, 0, len(results))
	for _, r := range results {
		if r.Similarity < threshold {
			continue
		}
		matches = append(matches, workflow.PhaseMatch{
			Phase:      r.Metadata["phase"],
			Similarity: r.Similarity,
		})
	}
	return matches, nil
}

// Close releases the index. chromem holds no external resources.
func (i *ChromemIndex) Close() error {
	return nil
}

func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
