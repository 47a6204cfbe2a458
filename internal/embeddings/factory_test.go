package embeddings

import (
	"testing"

	"github.com/fyrsmithlabs/embedkit/internal/config"
	"github.com/fyrsmithlabs/embedkit/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseEndpointType(t *testing.T) {
	tests := []struct {
		in    string
		want  EndpointType
		known bool
	}{
		{"openai", EndpointOpenAI, true},
		{"azure", EndpointAzure, true},
		{"http-endpoint", EndpointHTTP, true},
		{"hugging-face", EndpointHTTP, true},
		{" HTTP-Endpoint ", EndpointHTTP, true},
		{"local", EndpointLocal, true},
		{"", EndpointLocal, false},
		{"unknown-value", EndpointLocal, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, known := ParseEndpointType(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestNewProvider_Dispatch(t *testing.T) {
	creds := config.Credentials{
		OpenAIKey:     "sk-test",
		AzureKey:      "azure-secret",
		AzureEndpoint: "https://example.openai.azure.com",
		AzureVersion:  "2023-05-15",
	}

	tests := []struct {
		name     string
		cfg      Config
		wantKind EndpointType
		wantType any
	}{
		{"openai", Config{EndpointType: EndpointOpenAI}, EndpointOpenAI, &HostedProvider{}},
		{"azure", Config{EndpointType: EndpointAzure}, EndpointAzure, &HostedProvider{}},
		{
			"http-endpoint",
			Config{EndpointType: EndpointHTTP, Model: "bge-large", EndpointURL: "http://localhost:8080"},
			EndpointHTTP, &EndpointProvider{},
		},
		{
			"hugging-face alias",
			Config{EndpointType: "hugging-face", Model: "bge-large", EndpointURL: "http://localhost:8080"},
			EndpointHTTP, &EndpointProvider{},
		},
		{"local", Config{EndpointType: EndpointLocal}, EndpointLocal, &LocalProvider{}},
		{"absent", Config{}, EndpointLocal, &LocalProvider{}},
		{"unknown", Config{EndpointType: "unknown-value"}, EndpointLocal, &LocalProvider{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg, creds, WithCacheDir(t.TempDir()))
			require.NoError(t, err)
			defer p.Close()

			assert.IsType(t, tt.wantType, p)
			assert.Equal(t, tt.wantKind, p.Kind())
		})
	}
}

func TestNewProvider_UnknownTypeWarns(t *testing.T) {
	tl := logging.NewTestLogger()

	p, err := NewProvider(Config{EndpointType: "unknown-value"}, config.Credentials{}, WithLogger(tl.Logger))
	require.NoError(t, err)
	assert.Equal(t, LocalModel, p.Model())

	tl.AssertLogged(t, zapcore.WarnLevel, "unknown embedding endpoint type")
	tl.AssertField(t, "unknown embedding endpoint type", "endpoint_type", "unknown-value")
}

func TestNewProvider_AbsentTypeDoesNotWarn(t *testing.T) {
	tl := logging.NewTestLogger()

	_, err := NewProvider(Config{}, config.Credentials{}, WithLogger(tl.Logger))
	require.NoError(t, err)
	tl.AssertNotLogged(t, zapcore.WarnLevel, "unknown embedding endpoint type")
}

func TestNewProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"openai without key", Config{EndpointType: EndpointOpenAI}, ErrMissingCredentials},
		{"azure without key", Config{EndpointType: EndpointAzure}, ErrMissingCredentials},
		{
			"http-endpoint with bad url",
			Config{EndpointType: EndpointHTTP, Model: "m", EndpointURL: "not a url"},
			ErrInvalidEndpointURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg, config.Credentials{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, p)
		})
	}
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.EmbeddingConfig{
		EndpointType: config.EndpointHTTP,
		Model:        "bge-large",
		EndpointURL:  "http://localhost:8080",
		Dimension:    1024,
		ChunkSize:    300,
	})

	assert.Equal(t, Config{
		EndpointType: EndpointHTTP,
		Model:        "bge-large",
		EndpointURL:  "http://localhost:8080",
		Dimension:    1024,
		ChunkSize:    300,
	}, cfg)
}

func TestNewProvider_MixedCaseTypeFromConfig(t *testing.T) {
	for _, key := range []string{config.EnvOpenAIKey, config.EnvAzureKey, config.EnvAzureEndpoint, config.EnvAzureVersion, config.EnvAzureDeployment} {
		t.Setenv(key, "")
	}
	t.Setenv(config.EnvOpenAIKey, "sk-test")
	t.Setenv("EMBEDKIT_EMBEDDING_ENDPOINT_TYPE", "OpenAI")

	cfg, err := config.Load("")
	require.NoError(t, err)

	p, err := NewProvider(ConfigFrom(cfg.Embedding), cfg.Credentials)
	require.NoError(t, err)
	assert.Equal(t, EndpointOpenAI, p.Kind())
	assert.Equal(t, OpenAIModel, p.Model())
	assert.Equal(t, config.DefaultHostedDimension, cfg.Embedding.Dimension)
}
