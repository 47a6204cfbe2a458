package embeddings

import "errors"

var (
	// ErrInvalidConfig indicates an unusable argument or configuration value.
	ErrInvalidConfig = errors.New("invalid embedding configuration")

	// ErrInvalidEndpointURL indicates a base URL without scheme or host.
	ErrInvalidEndpointURL = errors.New("invalid embedding endpoint URL")

	// ErrMalformedResponse indicates a response body matching neither a bare
	// vector nor an OpenAI-style {"data":[{"embedding":[...]}]} envelope.
	ErrMalformedResponse = errors.New("unexpected payload from embedding endpoint")

	// ErrMissingCredentials indicates a hosted provider built without its vendor credentials.
	ErrMissingCredentials = errors.New("missing embedding credentials")

	// ErrOversizedVector indicates a vector already wider than the padding target.
	ErrOversizedVector = errors.New("vector wider than target width")

	// ErrRequestFailed indicates a transport failure, timeout or non-2xx
	// status from the HTTP endpoint. The cause stays in the error chain.
	ErrRequestFailed = errors.New("embedding request failed")

	// ErrEmbeddingFailed indicates a hosted or local backend failed to embed.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrLocalModelUnavailable indicates the local model cannot run on this host.
	ErrLocalModelUnavailable = errors.New("local embedding model unavailable")
)
