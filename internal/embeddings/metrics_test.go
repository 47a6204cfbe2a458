package embeddings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fyrsmithlabs/embedkit/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// newTestMetrics returns metrics backed by a manual reader.
func newTestMetrics(t *testing.T) (*Metrics, *metric.ManualReader) {
	t.Helper()
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))
	return NewMetricsWithMeter(mp.Meter(embeddingsInstrumentationName), logging.NewNop()), reader
}

// collect gathers metrics by name.
func collect(t *testing.T, reader *metric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumInt64(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_RecordGeneration(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordGeneration(ctx, EndpointLocal, LocalModel, "embed_text", 100*time.Millisecond, nil)
	m.RecordGeneration(ctx, EndpointLocal, LocalModel, "embed_query", 50*time.Millisecond, nil)
	m.RecordGeneration(ctx, EndpointHTTP, "bge-large", "embed_text", 25*time.Millisecond, errors.New("boom"))

	metrics := collect(t, reader)

	duration, ok := metrics["embedkit.embedding.duration_seconds"]
	require.True(t, ok, "duration histogram not found")
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
	assert.Len(t, hist.DataPoints, 3)

	assert.Equal(t, int64(3), sumInt64(t, metrics["embedkit.embedding.calls_total"]))
	assert.Equal(t, int64(1), sumInt64(t, metrics["embedkit.embedding.errors_total"]))
}

func TestMetrics_RecordPadding(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordPadding(ctx, 384, MaxEmbeddingDim)
	m.RecordPadding(ctx, MaxEmbeddingDim, MaxEmbeddingDim)

	metrics := collect(t, reader)
	assert.Equal(t, int64(1), sumInt64(t, metrics["embedkit.embedding.padded_total"]))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordGeneration(context.Background(), EndpointLocal, LocalModel, "embed_text", time.Millisecond, nil)
		m.RecordPadding(context.Background(), 1, 2)
	})
}
