package workflow

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// Metadata is the caller-supplied workflow snapshot used for context
// generation. The engine does not retain it beyond the cache lookup.
type Metadata struct {
	Phase     Phase
	Artifacts Artifacts
	// Timestamp is the RFC 3339 time of the snapshot. Unparseable or empty
	// values fall back to the builder's clock.
	Timestamp string
}

// Builder renders the workflow state block injected ahead of each model
// call. Rendering is pure; the builder only adds the short-lived cache.
type Builder struct {
	cache     ContextCache
	logger    *zap.Logger
	maxTokens int
	now       func() time.Time
}

// NewBuilder creates a Builder backed by cache. A nil cache gets the
// default in-memory implementation, a nil logger a no-op logger.
func NewBuilder(cache ContextCache, logger *zap.Logger) *Builder {
	if cache == nil {
		cache = NewMemoryCache(ContextCacheTTL, ContextCacheMaxEntries)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		cache:     cache,
		logger:    logger,
		maxTokens: DefaultMaxTokens,
		now:       time.Now,
	}
}

// SetClock replaces the builder's time source used when the metadata
// timestamp is missing or unparseable.
func (b *Builder) SetClock(now func() time.Time) {
	b.now = now
}

// GetWorkflowContext returns the ready-to-inject state block for md. Two
// calls with the same phase and artifact projection inside one 30-second
// bucket return the identical cached string. This component cannot fail:
// unknown phases resolve to the exploring definition and empty artifacts
// render as "None yet".
func (b *Builder) GetWorkflowContext(md Metadata) string {
	key := b.cacheKey(md)

	if cached, ok := b.cache.Get(key); ok {
		return cached
	}

	def := Lookup(md.Phase)
	summary := FormatArtifacts(md.Artifacts, b.maxTokens)
	rendered := renderContext(def, summary)

	b.cache.Set(key, rendered)
	b.logger.Debug("workflow context rendered",
		zap.String("phase", string(def.ID)),
		zap.String("cache_key", key),
	)
	return rendered
}

func renderContext(def Definition, artifactSummary string) string {
	return fmt.Sprintf("[Workflow State]\nPhase: %s\nContext: %s\n%s",
		def.Label, def.Description, artifactSummary)
}

// cacheKey derives the deterministic key: phase, 30-second time bucket,
// structural artifact fingerprint.
func (b *Builder) cacheKey(md Metadata) string {
	bucket := timeBucket(md.Timestamp, b.now)
	fp := artifactFingerprint(md.Artifacts)
	return string(md.Phase) + ":" + strconv.FormatInt(bucket, 10) + ":" + strconv.FormatUint(fp, 16)
}

// timeBucket returns floor(epoch_ms/30000) for the given RFC 3339 timestamp,
// falling back to now when the timestamp is absent or malformed.
func timeBucket(timestamp string, now func() time.Time) int64 {
	t := now()
	if timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, timestamp); err == nil {
			t = parsed
		}
	}
	return t.UnixMilli() / int64(ContextCacheTTL/time.Millisecond)
}

// fingerprintPrefixLen bounds how much artifact text enters the fingerprint.
const fingerprintPrefixLen = 24

// artifactFingerprint hashes a reduced projection of the artifacts: text
// prefixes and counts only, never full content. Minor edits deep in the
// topic, outline or section names do not invalidate the cache; the summary
// those edits would produce is considered cache-equivalent for one TTL
// window. This is a deliberate accuracy/performance trade-off.
func artifactFingerprint(a Artifacts) uint64 {
	h := xxhash.New()

	writeField := func(s string) {
		if len(s) > fingerprintPrefixLen {
			s = s[:fingerprintPrefixLen]
		}
		_, _ = h.WriteString(s)
		_, _ = h.Write([]byte{0})
	}

	writeField(a.TopicSummary)
	writeField(a.ResearchQuestion)
	writeField(strconv.Itoa(len(a.References)))
	writeField(strconv.Itoa(len(a.Keywords)))
	writeField(strconv.FormatBool(a.Outline != ""))
	writeField(strconv.Itoa(len(a.CompletedSections)))
	writeField(strconv.Itoa(a.WordCount))
	writeField(strconv.Itoa(a.TargetWordCount))

	return h.Sum64()
}
