package embeddings

import (
	"context"
	"time"

	"github.com/fyrsmithlabs/embedkit/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const embeddingsInstrumentationName = "github.com/fyrsmithlabs/embedkit/internal/embeddings"

// Metrics holds all embedding-related metrics.
type Metrics struct {
	meter    metric.Meter
	logger   *logging.Logger
	duration metric.Float64Histogram
	calls    metric.Int64Counter
	errors   metric.Int64Counter
	padded   metric.Int64Counter
}

// NewMetrics creates a Metrics instance on the global meter provider.
func NewMetrics(logger *logging.Logger) *Metrics {
	return NewMetricsWithMeter(otel.Meter(embeddingsInstrumentationName), logger)
}

// NewMetricsWithMeter creates a Metrics instance on the given meter.
func NewMetricsWithMeter(meter metric.Meter, logger *logging.Logger) *Metrics {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Metrics{meter: meter, logger: logger}
	m.init()
	return m
}

func (m *Metrics) init() {
	ctx := context.Background()
	var err error

	// Remote endpoints dominate the upper buckets.
	m.duration, err = m.meter.Float64Histogram(
		"embedkit.embedding.duration_seconds",
		metric.WithDescription("Duration of a single embedding call in seconds, labeled by endpoint_type, model and operation"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0),
	)
	if err != nil {
		m.logger.Warn(ctx, "failed to create duration histogram", zap.Error(err))
	}

	m.calls, err = m.meter.Int64Counter(
		"embedkit.embedding.calls_total",
		metric.WithDescription("Total embedding calls by endpoint_type, model and operation"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		m.logger.Warn(ctx, "failed to create calls counter", zap.Error(err))
	}

	m.errors, err = m.meter.Int64Counter(
		"embedkit.embedding.errors_total",
		metric.WithDescription("Total failed embedding calls. Includes transport failures, timeouts, malformed payloads and local model errors."),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.logger.Warn(ctx, "failed to create errors counter", zap.Error(err))
	}

	m.padded, err = m.meter.Int64Counter(
		"embedkit.embedding.padded_total",
		metric.WithDescription("Total vectors zero-padded to the storage width"),
		metric.WithUnit("{vector}"),
	)
	if err != nil {
		m.logger.Warn(ctx, "failed to create padded counter", zap.Error(err))
	}
}

// RecordGeneration records one embedding call.
func (m *Metrics) RecordGeneration(ctx context.Context, kind EndpointType, model, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("endpoint_type", string(kind)),
		attribute.String("model", model),
		attribute.String("operation", operation),
	)

	if m.duration != nil {
		m.duration.Record(ctx, duration.Seconds(), attrs)
	}
	if m.calls != nil {
		m.calls.Add(ctx, 1, attrs)
	}
	if err != nil && m.errors != nil {
		m.errors.Add(ctx, 1, attrs)
	}
}

// RecordPadding records a vector widened from its native dimension.
func (m *Metrics) RecordPadding(ctx context.Context, from, to int) {
	if m == nil || m.padded == nil || from >= to {
		return
	}
	m.padded.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("from_dimension", from),
		attribute.Int("to_dimension", to),
	))
}
