package phaseindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/makalah-app/makalah-beta-sub003/internal/workflow"
)

const testVectorDim = 64

// seqEmbedder assigns each embedded document a distinct one-hot vector in
// the order the documents arrive, so tests can query for a specific chunk
// with a known vector and get cosine similarity 1.0.
type seqEmbedder struct {
	next int
}

func oneHot(i int) []float32 {
	v := make([]float32, testVectorDim)
	v[i%testVectorDim] = 1
	return v
}

func (e *seqEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	v := oneHot(e.next)
	e.next++
	return v, nil
}

func (e *seqEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = oneHot(e.next)
		e.next++
	}
	return out, nil
}

// chunkIndexFor returns the position of the first chunk tagged with phase.
func chunkIndexFor(t *testing.T, phase workflow.Phase) int {
	t.Helper()
	chunks, err := definitionChunks()
	require.NoError(t, err)
	for i, c := range chunks {
		if c.Phase == phase {
			return i
		}
	}
	t.Fatalf("no chunk for phase %s", phase)
	return -1
}

func newTestIndex(t *testing.T) *ChromemIndex {
	t.Helper()
	idx, err := NewChromemIndex(context.Background(), ChromemConfig{}, &seqEmbedder{}, nil)
	require.NoError(t, err)
	return idx
}

func TestDefinitionChunks_CoverEveryPhase(t *testing.T) {
	chunks, err := definitionChunks()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), len(workflow.PhaseSequence))

	seen := map[workflow.Phase]bool{}
	for _, c := range chunks {
		assert.NotEmpty(t, c.Content)
		seen[c.Phase] = true
	}
	for _, phase := range workflow.PhaseSequence {
		assert.True(t, seen[phase], "phase %s has no chunk", phase)
	}
}

func TestNewChromemIndex_SeedsOnce(t *testing.T) {
	idx := newTestIndex(t)

	chunks, err := definitionChunks()
	require.NoError(t, err)
	assert.Equal(t, len(chunks), idx.collection.Count())
}

func TestNewChromemIndex_RequiresEmbedder(t *testing.T) {
	_, err := NewChromemIndex(context.Background(), ChromemConfig{}, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSearchPhases_ExactMatch(t *testing.T) {
	idx := newTestIndex(t)

	target := chunkIndexFor(t, workflow.PhaseResearching)
	matches, err := idx.SearchPhases(context.Background(), oneHot(target), 3, 0.65)
	require.NoError(t, err)

	require.NotEmpty(t, matches)
	assert.Equal(t, string(workflow.PhaseResearching), matches[0].Phase)
	assert.InDelta(t, 1.0, float64(matches[0].Similarity), 1e-3)
}

func TestSearchPhases_ThresholdFiltersWeakMatches(t *testing.T) {
	idx := newTestIndex(t)

	a := chunkIndexFor(t, workflow.PhaseDrafting)
	b := chunkIndexFor(t, workflow.PhasePolishing)

	// Unit vector leaning toward drafting: similarity 0.8 vs 0.6.
	query := make([]float32, testVectorDim)
	query[a%testVectorDim] = 0.8
	query[b%testVectorDim] = 0.6

	matches, err := idx.SearchPhases(context.Background(), query, 3, 0.65)
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, string(workflow.PhaseDrafting), matches[0].Phase)
	assert.InDelta(t, 0.8, float64(matches[0].Similarity), 1e-3)
}

func TestSearchPhases_TopKClampedToCorpus(t *testing.T) {
	idx := newTestIndex(t)

	// Asking for more results than the corpus holds must not error.
	_, err := idx.SearchPhases(context.Background(), oneHot(0), 10_000, 0.99)
	require.NoError(t, err)
}

func TestSearchPhases_ResultsOrderedBySimilarity(t *testing.T) {
	idx := newTestIndex(t)

	query := make([]float32, testVectorDim)
	// Spread weight across the first three chunks, descending.
	query[0] = 0.8
	query[1] = 0.5
	query[2] = 0.33

	matches, err := idx.SearchPhases(context.Background(), query, 3, 0.0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(matches), 2)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Similarity, matches[i].Similarity)
	}
}

func TestNew_Factory(t *testing.T) {
	idx, err := New(context.Background(), Config{Backend: "chromem"}, &seqEmbedder{}, nil)
	require.NoError(t, err)
	require.NoError(t, idx.Close())

	_, err = New(context.Background(), Config{Backend: "bogus"}, &seqEmbedder{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
