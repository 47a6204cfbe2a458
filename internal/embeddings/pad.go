package embeddings

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/embedkit/internal/tokenizer"
)

// MaxEmbeddingDim is the fixed vector width of the storage layer.
const MaxEmbeddingDim = 4096

// Pad returns a copy of vec zero-extended to width. vec is never truncated:
// a vector wider than width fails with ErrOversizedVector.
func Pad(vec []float32, width int) ([]float32, error) {
	if width < 0 {
		return nil, fmt.Errorf("%w: negative width %d", ErrInvalidConfig, width)
	}
	if len(vec) > width {
		return nil, fmt.Errorf("%w: %d > %d", ErrOversizedVector, len(vec), width)
	}
	out := make([]float32, width)
	copy(out, vec)
	return out, nil
}

// QueryEmbedding embeds a search query and pads it to MaxEmbeddingDim.
func QueryEmbedding(ctx context.Context, p Provider, text string) ([]float32, error) {
	vec, err := p.EmbedQuery(ctx, text)
	if err != nil {
		return nil, err
	}
	return padForStorage(ctx, p, vec)
}

// EmbedForStorage fits text to the provider model's token budget, embeds
// each resulting segment and pads every vector to MaxEmbeddingDim.
func EmbedForStorage(ctx context.Context, p Provider, chunker *tokenizer.Chunker, text string) ([][]float32, error) {
	segments := chunker.FitToBudget(ctx, text, p.Model())

	vectors, err := p.EmbedMany(ctx, segments)
	if err != nil {
		return nil, err
	}

	out := make([][]float32, len(vectors))
	for i, vec := range vectors {
		if out[i], err = padForStorage(ctx, p, vec); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func padForStorage(ctx context.Context, p Provider, vec []float32) ([]float32, error) {
	padded, err := Pad(vec, MaxEmbeddingDim)
	if err != nil {
		return nil, fmt.Errorf("%s model %s: %w", p.Kind(), p.Model(), err)
	}
	if m, ok := p.(interface{ metricsRecorder() *Metrics }); ok {
		m.metricsRecorder().RecordPadding(ctx, len(vec), MaxEmbeddingDim)
	}
	return padded, nil
}

func (b *base) metricsRecorder() *Metrics { return b.metrics }
