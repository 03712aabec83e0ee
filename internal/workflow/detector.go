package workflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// PhaseChunkType tags reference chunks holding phase descriptions in the
// vector index. Detection only ever searches chunks of this type.
const PhaseChunkType = "phase_definition"

// Method identifies how a detection result was produced.
type Method string

const (
	// MethodSemantic means the phase came from embedding search plus the
	// transition guardrail.
	MethodSemantic Method = "semantic"
	// MethodFallback means classification failed and the current phase was
	// kept with confidence 0.5.
	MethodFallback Method = "fallback"
)

// DetectionResult is the outcome of one detection call. The engine does not
// persist it; the caller commits Phase into session state before the next
// detection.
type DetectionResult struct {
	Phase      Phase   `json:"phase"`
	Confidence float64 `json:"confidence"`
	Method     Method  `json:"method"`
}

// Embedder turns text into fixed-dimension vectors. Implementations live in
// internal/embeddings.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// PhaseMatch is one vector search hit: the phase tag of the matched chunk
// and its similarity to the query.
type PhaseMatch struct {
	Phase      string
	Similarity float32
}

// PhaseSearcher finds the reference chunks nearest a query vector,
// restricted to phase_definition chunks, ordered by similarity descending.
// Implementations live in internal/phaseindex.
type PhaseSearcher interface {
	SearchPhases(ctx context.Context, queryVector []float32, topK int, threshold float32) ([]PhaseMatch, error)
}

// DetectorConfig tunes the semantic detection pipeline.
type DetectorConfig struct {
	// TopK is how many nearest chunks to retrieve (default: 3).
	TopK int

	// Threshold is the minimum similarity for a chunk to count (default: 0.65).
	Threshold float32

	// Timeout bounds one full detection call including retries (default: 5s).
	Timeout time.Duration

	// EmbedRetries is how many times embedding generation is retried after
	// the first failure (default: 2).
	EmbedRetries int
}

// DefaultDetectorConfig returns the standard detection settings.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		TopK:         3,
		Threshold:    0.65,
		Timeout:      5 * time.Second,
		EmbedRetries: 2,
	}
}

func (c *DetectorConfig) applyDefaults() {
	d := DefaultDetectorConfig()
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.Threshold <= 0 {
		c.Threshold = d.Threshold
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.EmbedRetries < 0 {
		c.EmbedRetries = d.EmbedRetries
	}
}

// Detector classifies assistant responses into workflow phases by nearest-
// neighbor search over embedded phase descriptions, gated by the transition
// guardrail. Detect never returns an error: every failure mode degrades to
// keeping the current phase.
type Detector struct {
	config   DetectorConfig
	embedder Embedder
	searcher PhaseSearcher
	logger   *zap.Logger
	metrics  *DetectorMetrics
}

// NewDetector creates a Detector. Embedder and searcher are required.
func NewDetector(cfg DetectorConfig, embedder Embedder, searcher PhaseSearcher, logger *zap.Logger) (*Detector, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if searcher == nil {
		return nil, errors.New("phase searcher is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()

	return &Detector{
		config:   cfg,
		embedder: embedder,
		searcher: searcher,
		logger:   logger,
		metrics:  NewDetectorMetrics(logger),
	}, nil
}

// Detect classifies responseText against the phase reference corpus and
// returns the phase to commit, the raw similarity as confidence, and the
// method used. Callers must serialize Detect calls per session since
// currentPhase is an input; calls across sessions are independent.
func (d *Detector) Detect(ctx context.Context, responseText string, currentPhase Phase) DetectionResult {
	start := time.Now()
	result := d.detect(ctx, responseText, currentPhase)
	d.metrics.RecordDetection(ctx, result.Method, time.Since(start))
	return result
}

func (d *Detector) detect(ctx context.Context, responseText string, currentPhase Phase) DetectionResult {
	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	vector, err := d.embedWithRetry(ctx, responseText)
	if err != nil {
		d.logger.Warn("phase detection: embedding failed, keeping current phase",
			zap.String("current_phase", string(currentPhase)),
			zap.Error(err),
		)
		return d.fallback(currentPhase)
	}

	matches, err := d.searcher.SearchPhases(ctx, vector, d.config.TopK, d.config.Threshold)
	if err != nil || len(matches) == 0 {
		if err != nil {
			d.logger.Warn("phase detection: search failed, keeping current phase",
				zap.String("current_phase", string(currentPhase)),
				zap.Error(err),
			)
		}
		return d.fallback(currentPhase)
	}

	best := matches[0]
	detected := Phase(best.Phase)
	confidence := float64(best.Similarity)

	resolved := ResolveTransition(currentPhase, detected, confidence)
	if resolved != detected {
		d.metrics.RecordOverride(ctx)
		d.logger.Debug("phase detection: guardrail overrode detected phase",
			zap.String("current_phase", string(currentPhase)),
			zap.String("detected_phase", string(detected)),
			zap.String("resolved_phase", string(resolved)),
			zap.Float64("confidence", confidence),
		)
	}

	return DetectionResult{
		Phase:      resolved,
		Confidence: confidence,
		Method:     MethodSemantic,
	}
}

// fallback is the degraded result used for every failure: stay in the
// current phase for one more turn at confidence 0.5.
func (d *Detector) fallback(currentPhase Phase) DetectionResult {
	return DetectionResult{
		Phase:      currentPhase,
		Confidence: 0.5,
		Method:     MethodFallback,
	}
}

// embedWithRetry generates the query embedding, retrying transient failures
// up to EmbedRetries times. Context cancellation stops the retry loop.
func (d *Detector) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= d.config.EmbedRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vector, err := d.embedder.EmbedQuery(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err
		d.logger.Debug("phase detection: embedding attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return nil, lastErr
}
