package tokenizer

import (
	"context"
	"strings"

	"github.com/fyrsmithlabs/embedkit/internal/logging"
	"go.uber.org/zap"
)

// DefaultMaxTokens is the budget used when a tokenizer declares no limit.
// It matches the input limit of OpenAI's embedding models.
const DefaultMaxTokens = 8191

// Chunker fits text into a model's token budget.
type Chunker struct {
	resolver *Resolver
	logger   *logging.Logger
}

// NewChunker creates a Chunker. A nil logger discards diagnostics.
func NewChunker(resolver *Resolver, logger *logging.Logger) *Chunker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Chunker{resolver: resolver, logger: logger}
}

// CountTokens returns the number of tokens text occupies for model.
func (c *Chunker) CountTokens(ctx context.Context, text, model string) (int, error) {
	tok, err := c.resolver.Resolve(ctx, model)
	if err != nil {
		return 0, err
	}
	return len(tok.Encode(text)), nil
}

// FitToBudget returns text as a single segment that fits model's token
// budget, truncating it when necessary. It never fails: when no tokenizer
// can be loaded the text is returned unchanged.
func (c *Chunker) FitToBudget(ctx context.Context, text, model string) []string {
	tok, err := c.resolver.Resolve(ctx, model)
	if err != nil {
		c.logger.Error(ctx, "tokenizer unavailable, passing text through unchecked",
			zap.String("model", model),
			zap.Error(err))
		return []string{text}
	}

	tokens := tok.Encode(text)
	maxLength := c.maxLength(ctx, tok, model)

	if len(tokens) <= maxLength {
		return []string{text}
	}

	c.logger.Warn(ctx, "text is too long, truncating",
		zap.String("model", model),
		zap.Int("tokens", len(tokens)),
		zap.Int("max_tokens", maxLength))

	return []string{truncate(tok, tokens, maxLength)}
}

func (c *Chunker) maxLength(ctx context.Context, tok Tokenizer, model string) int {
	if l, ok := tok.(Limited); ok && l.MaxLength() > 0 {
		return l.MaxLength()
	}
	c.logger.Debug(ctx, "tokenizer declares no max length, using default",
		zap.String("model", model),
		zap.String("encoding", tok.Name()),
		zap.Int("max_tokens", DefaultMaxTokens))
	return DefaultMaxTokens
}

// truncate decodes the first limit tokens. A cut inside a multi-byte
// character leaves an invalid UTF-8 tail, which is dropped; if the result
// still re-encodes to more than limit tokens the cut moves back.
func truncate(tok Tokenizer, tokens []int, limit int) string {
	for n := limit; n > 0; n-- {
		out := strings.ToValidUTF8(tok.Decode(tokens[:n]), "")
		if len(tok.Encode(out)) <= limit {
			return out
		}
	}
	return ""
}
