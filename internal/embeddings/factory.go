package embeddings

import (
	"context"

	"github.com/fyrsmithlabs/embedkit/internal/config"
	"go.uber.org/zap"
)

// NewProvider builds the provider selected by cfg.EndpointType.
//
// Unrecognized or empty endpoint types select the local provider; they are
// never an error. Errors come only from the selected variant's constructor:
// missing vendor credentials or an invalid endpoint URL.
func NewProvider(cfg Config, creds config.Credentials, opts ...Option) (Provider, error) {
	kind, known := ParseEndpointType(string(cfg.EndpointType))

	switch kind {
	case EndpointOpenAI:
		return built(NewOpenAIProvider(cfg.Model, cfg.EndpointURL, creds, opts...))
	case EndpointAzure:
		return built(NewAzureProvider(creds, opts...))
	case EndpointHTTP:
		return built(NewEndpointProvider(cfg.Model, cfg.EndpointURL, opts...))
	case EndpointLocal:
		if !known && cfg.EndpointType != "" {
			o := newOptions(opts)
			o.logger.Warn(context.Background(), "unknown embedding endpoint type, using local model",
				zap.String("endpoint_type", string(cfg.EndpointType)),
				zap.String("model", LocalModel))
		}
		return NewLocalProvider(opts...), nil
	default:
		return NewLocalProvider(opts...), nil
	}
}

// built keeps a failed constructor's typed nil out of the Provider interface.
func built[P Provider](p P, err error) (Provider, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}
