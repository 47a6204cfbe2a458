// Package config provides configuration loading for embedkit.
//
// Configuration is read from an optional YAML file and overridden by
// environment variables. Vendor credentials may also come from the
// conventional vendor environment variables (OPENAI_API_KEY, AZURE_OPENAI_*).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Endpoint type names as they appear in configuration files.
const (
	EndpointOpenAI      = "openai"
	EndpointAzure       = "azure"
	EndpointHTTP        = "http-endpoint"
	EndpointHuggingFace = "hugging-face"
	EndpointLocal       = "local"
)

// NormalizeEndpointType lowercases and trims an endpoint type name so that
// "OpenAI" and " openai " select the same backend.
func NormalizeEndpointType(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Default model identifiers and widths.
const (
	DefaultHostedModel     = "text-embedding-ada-002"
	DefaultHostedDimension = 1536
	DefaultLocalModel      = "BAAI/bge-small-en-v1.5"
	DefaultLocalDimension  = 384
	DefaultChunkSize       = 300
	DefaultHTTPTimeout     = 60 * time.Second
)

// Telemetry defaults. Telemetry is off unless enabled, since most users
// have no OTEL collector.
const (
	DefaultTelemetryEndpoint = "localhost:4317"
	DefaultTelemetryProtocol = "grpc"
	DefaultServiceName       = "embedkit"
	DefaultServiceVersion    = "0.1.0"
	DefaultExportInterval    = 15 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

// Config holds the complete embedkit configuration.
type Config struct {
	Embedding   EmbeddingConfig `koanf:"embedding"`
	Credentials Credentials     `koanf:"credentials"`
	HTTP        HTTPConfig      `koanf:"http"`
	Local       LocalConfig     `koanf:"local"`
	Logging     LoggingConfig   `koanf:"logging"`
	Telemetry   TelemetryConfig `koanf:"telemetry"`
}

// EmbeddingConfig selects the embedding backend.
type EmbeddingConfig struct {
	// EndpointType is one of openai, azure, http-endpoint (or hugging-face), local.
	// Anything else selects the local model.
	EndpointType string `koanf:"endpoint_type"`
	Model        string `koanf:"model"`
	// EndpointURL is the base URL for openai (optional gateway) and http-endpoint.
	EndpointURL string `koanf:"endpoint_url"`
	Dimension   int    `koanf:"dimension"`
	ChunkSize   int    `koanf:"chunk_size"`
}

// Credentials holds vendor credentials. Read-only once loaded.
type Credentials struct {
	OpenAIKey                Secret `koanf:"openai_key"`
	AzureKey                 Secret `koanf:"azure_key"`
	AzureEndpoint            string `koanf:"azure_endpoint"`
	AzureVersion             string `koanf:"azure_version"`
	AzureEmbeddingDeployment string `koanf:"azure_embedding_deployment"`
}

// HTTPConfig holds settings for the self-hosted HTTP endpoint.
type HTTPConfig struct {
	Timeout Duration `koanf:"timeout"`
}

// LocalConfig holds settings for the local model.
type LocalConfig struct {
	CacheDir string `koanf:"cache_dir"`
}

// LoggingConfig holds the subset of logging settings exposed through config files.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig controls OTLP export of traces and metrics.
type TelemetryConfig struct {
	Enabled        bool     `koanf:"enabled"`
	Endpoint       string   `koanf:"endpoint"`
	Protocol       string   `koanf:"protocol"` // grpc or http/protobuf
	ServiceName    string   `koanf:"service_name"`
	ServiceVersion string   `koanf:"service_version"`
	Insecure       bool     `koanf:"insecure"`
	SamplingRate   float64  `koanf:"sampling_rate"`
	ExportInterval Duration `koanf:"export_interval"`
	Shutdown       Duration `koanf:"shutdown_timeout"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Embedding.Dimension < 0 {
		return fmt.Errorf("invalid embedding dimension: %d", c.Embedding.Dimension)
	}
	if c.Embedding.ChunkSize < 0 {
		return fmt.Errorf("invalid chunk size: %d", c.Embedding.ChunkSize)
	}
	switch NormalizeEndpointType(c.Embedding.EndpointType) {
	case EndpointHTTP, EndpointHuggingFace:
		if c.Embedding.EndpointURL == "" {
			return errors.New("endpoint_url required for http-endpoint embeddings")
		}
		if c.Embedding.Model == "" {
			return errors.New("model required for http-endpoint embeddings")
		}
	}
	if c.HTTP.Timeout.Duration() <= 0 {
		return errors.New("http timeout must be positive")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return c.Telemetry.Validate()
}

// Validate checks telemetry settings. Disabled telemetry is always valid.
func (t *TelemetryConfig) Validate() error {
	if !t.Enabled {
		return nil
	}
	if t.Endpoint == "" {
		return errors.New("telemetry endpoint required when telemetry is enabled")
	}
	if t.ServiceName == "" {
		return errors.New("telemetry service_name required when telemetry is enabled")
	}
	if t.Protocol != "grpc" && t.Protocol != "http/protobuf" {
		return fmt.Errorf("telemetry protocol must be 'grpc' or 'http/protobuf', got %q", t.Protocol)
	}
	if t.Insecure && !isLocalEndpoint(t.Endpoint) {
		return errors.New("insecure telemetry export is only allowed to local endpoints")
	}
	if t.SamplingRate < 0 || t.SamplingRate > 1 {
		return fmt.Errorf("telemetry sampling_rate must be between 0 and 1, got %g", t.SamplingRate)
	}
	if t.ExportInterval.Duration() <= 0 {
		return errors.New("telemetry export_interval must be positive")
	}
	if t.Shutdown.Duration() <= 0 {
		return errors.New("telemetry shutdown_timeout must be positive")
	}
	return nil
}

// isLocalEndpoint reports whether endpoint (host:port, optionally with a
// scheme) points at the local machine.
func isLocalEndpoint(endpoint string) bool {
	host := strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")

	if strings.HasPrefix(host, "[") {
		if idx := strings.Index(host, "]"); idx != -1 {
			host = host[1:idx]
		}
	} else if strings.Count(host, ":") == 1 {
		host = host[:strings.LastIndex(host, ":")]
	}

	return host == "localhost" || host == "::1" || strings.HasPrefix(host, "127.")
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	switch NormalizeEndpointType(cfg.Embedding.EndpointType) {
	case EndpointOpenAI, EndpointAzure:
		if cfg.Embedding.Model == "" {
			cfg.Embedding.Model = DefaultHostedModel
		}
		if cfg.Embedding.Dimension == 0 {
			cfg.Embedding.Dimension = DefaultHostedDimension
		}
	case EndpointHTTP, EndpointHuggingFace:
		// model and width are server specific
	default:
		if cfg.Embedding.Model == "" {
			cfg.Embedding.Model = DefaultLocalModel
		}
		if cfg.Embedding.Dimension == 0 {
			cfg.Embedding.Dimension = DefaultLocalDimension
		}
	}
	if cfg.Embedding.ChunkSize == 0 {
		cfg.Embedding.ChunkSize = DefaultChunkSize
	}

	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = Duration(DefaultHTTPTimeout)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	t := &cfg.Telemetry
	if t.Endpoint == "" {
		t.Endpoint = DefaultTelemetryEndpoint
	}
	if t.Protocol == "" {
		t.Protocol = DefaultTelemetryProtocol
	}
	if t.ServiceName == "" {
		t.ServiceName = DefaultServiceName
	}
	if t.ServiceVersion == "" {
		t.ServiceVersion = DefaultServiceVersion
	}
	if t.SamplingRate == 0 {
		t.SamplingRate = 1
	}
	if t.ExportInterval == 0 {
		t.ExportInterval = Duration(DefaultExportInterval)
	}
	if t.Shutdown == 0 {
		t.Shutdown = Duration(DefaultShutdownTimeout)
	}
}
