package embeddings

import "github.com/fyrsmithlabs/embedkit/internal/config"

// EndpointType selects the embedding backend.
type EndpointType string

const (
	EndpointOpenAI EndpointType = config.EndpointOpenAI
	EndpointAzure  EndpointType = config.EndpointAzure
	EndpointHTTP   EndpointType = config.EndpointHTTP
	EndpointLocal  EndpointType = config.EndpointLocal

	// endpointHuggingFace is the historical name of EndpointHTTP.
	endpointHuggingFace EndpointType = config.EndpointHuggingFace
)

// ParseEndpointType maps a configuration string to an EndpointType.
// The second result is false when s is not a recognized type; the
// returned type is then EndpointLocal.
func ParseEndpointType(s string) (EndpointType, bool) {
	switch t := EndpointType(config.NormalizeEndpointType(s)); t {
	case EndpointOpenAI, EndpointAzure, EndpointHTTP, EndpointLocal:
		return t, true
	case endpointHuggingFace:
		return EndpointHTTP, true
	default:
		return EndpointLocal, false
	}
}

// Default models of the hosted and local variants.
const (
	AzureModel     = config.DefaultHostedModel
	OpenAIModel    = config.DefaultHostedModel
	LocalModel     = config.DefaultLocalModel
	LocalDimension = config.DefaultLocalDimension
)

// Config describes which backend to use. It is a value type; providers keep
// their own copy.
type Config struct {
	EndpointType EndpointType
	Model        string
	// EndpointURL is the base URL of an http-endpoint server, or an optional
	// OpenAI-compatible gateway for openai.
	EndpointURL string
	// Dimension is the native width the backend is declared to produce.
	Dimension int
	// ChunkSize is the passage size callers split documents into before embedding.
	ChunkSize int
}

// ConfigFrom converts the file/env configuration section.
func ConfigFrom(c config.EmbeddingConfig) Config {
	return Config{
		EndpointType: EndpointType(c.EndpointType),
		Model:        c.Model,
		EndpointURL:  c.EndpointURL,
		Dimension:    c.Dimension,
		ChunkSize:    c.ChunkSize,
	}
}
