package tokenizer

import (
	"context"
	"fmt"
	"sync"

	"github.com/fyrsmithlabs/embedkit/internal/logging"
	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
	"go.uber.org/zap"
)

// DefaultEncoding is used for models without an entry in ModelEncodings.
const DefaultEncoding = "cl100k_base"

// ModelEncodings maps embedding model identifiers to tiktoken encodings.
var ModelEncodings = map[string]string{
	"text-embedding-ada-002": "cl100k_base",
	"text-embedding-3-small": "cl100k_base",
	"text-embedding-3-large": "cl100k_base",
}

// Tokenizer turns text into tokens and back.
type Tokenizer interface {
	Name() string
	Encode(text string) []int
	Decode(tokens []int) string
}

// Limited is implemented by tokenizers that declare their own input limit.
type Limited interface {
	MaxLength() int
}

// EncodingLoader loads the tokenizer for an encoding name.
type EncodingLoader func(name string) (Tokenizer, error)

// Resolver resolves model identifiers to tokenizers. Loaded encodings are
// cached; Resolver is safe for concurrent use.
type Resolver struct {
	mapping  map[string]string
	fallback string
	load     EncodingLoader
	logger   *logging.Logger

	mu    sync.Mutex
	cache map[string]Tokenizer
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMapping replaces the model to encoding mapping.
func WithMapping(m map[string]string) ResolverOption {
	return func(r *Resolver) { r.mapping = m }
}

// WithDefaultEncoding replaces the fallback encoding.
func WithDefaultEncoding(name string) ResolverOption {
	return func(r *Resolver) { r.fallback = name }
}

// WithLoader replaces the tiktoken loader.
func WithLoader(load EncodingLoader) ResolverOption {
	return func(r *Resolver) { r.load = load }
}

// NewResolver creates a Resolver. A nil logger discards diagnostics.
func NewResolver(logger *logging.Logger, opts ...ResolverOption) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Resolver{
		mapping:  ModelEncodings,
		fallback: DefaultEncoding,
		load:     LoadTiktoken,
		logger:   logger,
		cache:    make(map[string]Tokenizer),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the tokenizer for model. An unmapped model is not an
// error: a warning is logged and the default encoding is used. Errors only
// come from loading the encoding itself.
func (r *Resolver) Resolve(ctx context.Context, model string) (Tokenizer, error) {
	name, ok := r.mapping[model]
	if !ok {
		r.logger.Warn(ctx, "tokenizer not found for model, using default tokenizer",
			zap.String("model", model),
			zap.String("encoding", r.fallback))
		name = r.fallback
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tok, ok := r.cache[name]; ok {
		return tok, nil
	}
	tok, err := r.load(name)
	if err != nil {
		return nil, fmt.Errorf("loading encoding %q: %w", name, err)
	}
	r.cache[name] = tok
	return tok, nil
}

// tiktokenEncoding adapts *tiktoken.Tiktoken to Tokenizer. tiktoken
// encodings declare no input limit, so it does not implement Limited.
type tiktokenEncoding struct {
	name string
	enc  *tiktoken.Tiktoken
}

var offlineBPE sync.Once

// LoadTiktoken loads a tiktoken encoding by name. BPE ranks come from the
// files embedded in tiktoken-go-loader, so no network access is needed.
func LoadTiktoken(name string) (Tokenizer, error) {
	offlineBPE.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, err
	}
	return &tiktokenEncoding{name: name, enc: enc}, nil
}

func (t *tiktokenEncoding) Name() string { return t.name }

// Encode treats special-token text as ordinary text.
func (t *tiktokenEncoding) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *tiktokenEncoding) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}
