package embeddings

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Provider embeds text. Implementations are immutable after construction
// and safe for concurrent use.
type Provider interface {
	// EmbedText embeds text, blocking until the backend answers.
	EmbedText(ctx context.Context, text string) ([]float32, error)
	// EmbedTextAsync embeds text in a separate goroutine. The channel
	// yields exactly one Result and is then closed.
	EmbedTextAsync(ctx context.Context, text string) <-chan Result
	// EmbedQuery is EmbedText; none of the backends encode queries differently.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// EmbedMany applies EmbedText to every text in order. The first
	// failure aborts the batch.
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	// Kind returns the backend variant.
	Kind() EndpointType
	// Model returns the embedding model identifier.
	Model() string
	// Close releases resources held by the provider.
	Close() error
}

// Result is the outcome of an asynchronous embedding.
type Result struct {
	Vector []float32
	Err    error
}

// embedFunc performs one backend call.
type embedFunc func(ctx context.Context, text string) ([]float32, error)

// base implements the Provider surface on top of a variant's embedFunc.
type base struct {
	kind    EndpointType
	model   string
	metrics *Metrics
	tracer  trace.Tracer
	embed   embedFunc
}

func newBase(kind EndpointType, model string, o *options, embed embedFunc) base {
	return base{kind: kind, model: model, metrics: o.metrics, tracer: o.tracer, embed: embed}
}

func (b *base) Kind() EndpointType { return b.kind }

func (b *base) Model() string { return b.model }

// Close is a no-op for backends that hold no resources.
func (b *base) Close() error { return nil }

func (b *base) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return b.record(ctx, "embed_text", text)
}

func (b *base) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return b.record(ctx, "embed_query", text)
}

func (b *base) EmbedTextAsync(ctx context.Context, text string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		vec, err := b.record(ctx, "embed_text_async", text)
		out <- Result{Vector: vec, Err: err}
	}()
	return out
}

func (b *base) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := b.EmbedText(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("text %d of %d: %w", i+1, len(texts), err)
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func (b *base) record(ctx context.Context, operation, text string) ([]float32, error) {
	ctx, span := b.tracer.Start(ctx, "embeddings."+operation, trace.WithAttributes(
		attribute.String("embedding.endpoint_type", string(b.kind)),
		attribute.String("embedding.model", b.model),
		attribute.Int("embedding.chars", len(text)),
	))
	defer span.End()

	start := time.Now()
	vec, err := b.embed(ctx, text)
	b.metrics.RecordGeneration(ctx, b.kind, b.model, operation, time.Since(start), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("embedding.dimension", len(vec)))
	}
	return vec, err
}
