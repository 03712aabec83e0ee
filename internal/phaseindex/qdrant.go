package phaseindex

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/makalah-app/makalah-beta-sub003/internal/workflow"
)

// QdrantConfig holds configuration for a Qdrant-backed phase index.
type QdrantConfig struct {
	// Host is the Qdrant server host. Default: "localhost".
	Host string

	// Port is the Qdrant gRPC port. Default: 6334.
	Port int

	// APIKey authenticates against Qdrant Cloud. Optional.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool

	// Collection is the collection holding phase definition chunks.
	// Default: "phase_definitions".
	Collection string

	// VectorSize is the embedding dimension. Required for collection
	// creation.
	VectorSize int
}

// ApplyDefaults sets default values for unset fields.
func (c *QdrantConfig) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6334
	}
	if c.Collection == "" {
		c.Collection = "phase_definitions"
	}
}

// Validate validates the configuration.
func (c *QdrantConfig) Validate() error {
	if c.VectorSize <= 0 {
		return fmt.Errorf("%w: vector size must be positive", ErrInvalidConfig)
	}
	return nil
}

// QdrantIndex is a workflow.PhaseSearcher backed by a Qdrant collection.
type QdrantIndex struct {
	client   *qdrant.Client
	embedder workflow.Embedder
	config   QdrantConfig
	logger   *zap.Logger
}

// NewQdrantIndex connects to Qdrant, creating and seeding the phase
// collection when it does not exist yet.
func NewQdrantIndex(ctx context.Context, config QdrantConfig, embedder workflow.Embedder, logger *zap.Logger) (*QdrantIndex, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		APIKey: config.APIKey,
		UseTLS: config.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to Qdrant: %w", err)
	}

	idx := &QdrantIndex{
		client:   client,
		embedder: embedder,
		config:   config,
		logger:   logger,
	}

	if err := idx.ensureSeeded(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	return idx, nil
}

// ensureSeeded creates the collection and indexes the phase reference
// corpus on first use.
func (i *QdrantIndex) ensureSeeded(ctx context.Context) error {
	exists, err := i.client.CollectionExists(ctx, i.config.Collection)
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}
	if exists {
		return nil
	}

	err = i.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: i.config.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(i.config.VectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", i.config.Collection, err)
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

	points := make([]*qdrant.PointStruct, len(chunks))
	for n, c := range chunks {
		payload := map[string]*qdrant.Value{
			"chunk_type": {Kind: &qdrant.Value_StringValue{StringValue: workflow.PhaseChunkType}},
			"phase":      {Kind: &qdrant.Value_StringValue{StringValue: string(c.Phase)}},
			"label":      {Kind: &qdrant.Value_StringValue{StringValue: c.Label}},
			"content":    {Kind: &qdrant.Value_StringValue{StringValue: c.Content}},
		}
		points[n] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.New().String()),
			Vectors: qdrant.NewVectors(vectors[n]...),
			Payload: payload,
		}
	}

	_, err = i.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: i.config.Collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("seeding phase definitions: %w", err)
	}

	i.logger.Info("phase index seeded",
		zap.Int("chunks", len(points)),
		zap.String("collection", i.config.Collection),
	)
	return nil
}

// SearchPhases returns the phase-tagged chunks nearest queryVector, ordered
// by similarity descending, excluding matches below threshold.
func (i *QdrantIndex) SearchPhases(ctx context.Context, queryVector []float32, topK int, threshold float32) ([]workflow.PhaseMatch, error) {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key: "chunk_type",
						Match: &qdrant.Match{
							MatchValue: &qdrant.Match_Keyword{Keyword: workflow.PhaseChunkType},
						},
					},
				},
			},
		},
	}

	results, err := i.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: i.config.Collection,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		ScoreThreshold: qdrant.PtrOf(threshold),
		Filter:         filter,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	matches := make([]workflow.PhaseMatch, 0, len(results))
	for _, point := range results {
		phase := ""
		if v, ok := point.Payload["phase"]; ok {
			phase = v.GetStringValue()
		}
		matches = append(matches, workflow.PhaseMatch{
			Phase:      phase,
			Similarity: point.Score,
		})
	}
	return matches, nil
}

// Close closes the gRPC connection.
func (i *QdrantIndex) Close() error {
	return i.client.Close()
}
