package phaseindex

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/makalah-app/makalah-beta-sub003/internal/workflow"
)

// Sentinel errors for phase index operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSearchFailed indicates a vector search failure.
	ErrSearchFailed = errors.New("phase search failed")

	// ErrNotSeeded indicates the index holds no phase definition chunks.
	ErrNotSeeded = errors.New("phase index not seeded")
)

// chunk is one unit of indexed reference text.
type chunk struct {
	Phase   workflow.Phase
	Label   string
	Content string
}

const (
	chunkSize    = 220
	chunkOverlap = 40
)

// definitionChunks splits every phase description in the registry into
// indexable chunks. Descriptions are short, so most phases produce one or
// two chunks.
func definitionChunks() ([]chunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)

	var chunks []chunk
	for _, phase := range workflow.PhaseSequence {
		def := workflow.Lookup(phase)
		parts, err := splitter.SplitText(def.Description)
		if err != nil {
			return nil, fmt.Errorf("splitting description for %s: %w", phase, err)
		}
		for _, part := range parts {
			chunks = append(chunks, chunk{
				Phase:   def.ID,
				Label:   def.Label,
				Content: part,
			})
		}
	}
	return chunks, nil
}
