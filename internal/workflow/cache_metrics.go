package workflow

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalCacheMetrics *CacheMetrics
	cacheMetricsOnce   sync.Once
)

// CacheMetrics holds Prometheus metrics for the context cache.
type CacheMetrics struct {
	HitsTotal   prometheus.Counter
	MissesTotal prometheus.Counter
	Size        prometheus.Gauge
}

// NewCacheMetrics creates and registers the context cache metrics.
//
// Registration happens once per process; repeated calls return the same
// instance, preventing duplicate collector registration panics.
func NewCacheMetrics() *CacheMetrics {
	cacheMetricsOnce.Do(func() {
		globalCacheMetrics = &CacheMetrics{
			HitsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "workflow_context_cache_hits_total",
				Help: "Total number of context cache hits",
			}),
			MissesTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "workflow_context_cache_misses_total",
				Help: "Total number of context cache misses (absent or expired)",
			}),
			Size: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "workflow_context_cache_size",
				Help: "Current number of cached workflow contexts",
			}),
		}
	})
	return globalCacheMetrics
}

// RecordHit increments the hit counter.
func (m *CacheMetrics) RecordHit() {
	if m.HitsTotal != nil {
		m.HitsTotal.Inc()
	}
}

// RecordMiss increments the miss counter.
func (m *CacheMetrics) RecordMiss() {
	if m.MissesTotal != nil {
		m.MissesTotal.Inc()
	}
}

// SetSize updates the size gauge.
func (m *CacheMetrics) SetSize(n int) {
	if m.Size != nil {
		m.Size.Set(float64(n))
	}
}
