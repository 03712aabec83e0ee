package workflow

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/makalah-app/makalah-beta-sub003/internal/workflow"

// DetectorMetrics holds OpenTelemetry metrics for phase detection.
type DetectorMetrics struct {
	meter      metric.Meter
	logger     *zap.Logger
	detections metric.Int64Counter
	duration   metric.Float64Histogram
	overrides  metric.Int64Counter
}

// NewDetectorMetrics creates a DetectorMetrics instance.
func NewDetectorMetrics(logger *zap.Logger) *DetectorMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &DetectorMetrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *DetectorMetrics) init() {
	var err error

	m.detections, err = m.meter.Int64Counter(
		"workflow.detection.total",
		metric.WithDescription("Total phase detection calls by method (semantic, fallback)"),
		metric.WithUnit("{detection}"),
	)
	if err != nil {
		m.logger.Warn("failed to create detections counter", zap.Error(err))
	}

	m.duration, err = m.meter.Float64Histogram(
		"workflow.detection.duration_seconds",
		metric.WithDescription("Duration of one phase detection call including embedding and search"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.overrides, err = m.meter.Int64Counter(
		"workflow.guardrail.overrides_total",
		metric.WithDescription("Detections where the guardrail committed a different phase than the classifier detected"),
		metric.WithUnit("{override}"),
	)
	if err != nil {
		m.logger.Warn("failed to create overrides counter", zap.Error(err))
	}
}

// RecordDetection records one detection call.
func (m *DetectorMetrics) RecordDetection(ctx context.Context, method Method, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("method", string(method)))
	if m.detections != nil {
		m.detections.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, duration.Seconds(), attrs)
	}
}

// RecordOverride records a guardrail override.
func (m *DetectorMetrics) RecordOverride(ctx context.Context) {
	if m.overrides != nil {
		m.overrides.Add(ctx, 1)
	}
}
