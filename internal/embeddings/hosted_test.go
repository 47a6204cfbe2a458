package embeddings

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fyrsmithlabs/embedkit/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const openAIEmbeddingResponse = `{
  "object": "list",
  "data": [{"object": "embedding", "index": 0, "embedding": [0.25, -0.5, 0.75]}],
  "model": "text-embedding-ada-002",
  "usage": {"prompt_tokens": 2, "total_tokens": 2}
}`

// hostedRequest is what the stub hosted API saw.
type hostedRequest struct {
	Path   string
	Query  string
	Header http.Header
	Body   map[string]any
}

func newStubHostedAPI(t *testing.T) (*httptest.Server, *atomic.Pointer[hostedRequest]) {
	t.Helper()
	var last atomic.Pointer[hostedRequest]
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		req := &hostedRequest{Path: r.URL.Path, Query: r.URL.RawQuery, Header: r.Header.Clone()}
		_ = json.Unmarshal(raw, &req.Body)
		last.Store(req)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, openAIEmbeddingResponse)
	}))
	t.Cleanup(srv.Close)
	return srv, &last
}

func TestNewOpenAIProvider_MissingKey(t *testing.T) {
	p, err := NewOpenAIProvider("", "", config.Credentials{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Nil(t, p)
}

func TestNewOpenAIProvider_InvalidBaseURL(t *testing.T) {
	_, err := NewOpenAIProvider("", "not a url", config.Credentials{OpenAIKey: "sk-test"})
	assert.ErrorIs(t, err, ErrInvalidEndpointURL)
}

func TestOpenAIProvider_Embed(t *testing.T) {
	srv, last := newStubHostedAPI(t)

	p, err := NewOpenAIProvider("", srv.URL, config.Credentials{OpenAIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, EndpointOpenAI, p.Kind())
	assert.Equal(t, OpenAIModel, p.Model())

	vec, err := p.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5, 0.75}, vec)

	req := last.Load()
	require.NotNil(t, req)
	assert.Equal(t, "/embeddings", req.Path)
	assert.Equal(t, "Bearer sk-test", req.Header.Get("Authorization"))
	assert.Equal(t, OpenAIModel, req.Body["model"])
	assert.Contains(t, req.Body["input"], "hello")
	_, hasUser := req.Body["user"]
	assert.False(t, hasUser)
}

func TestOpenAIProvider_UserTag(t *testing.T) {
	srv, last := newStubHostedAPI(t)
	user := uuid.New()

	p, err := NewOpenAIProvider("text-embedding-3-small", srv.URL, config.Credentials{OpenAIKey: "sk-test"}, WithUser(user))
	require.NoError(t, err)

	_, err = p.EmbedText(context.Background(), "hello")
	require.NoError(t, err)

	req := last.Load()
	assert.Equal(t, user.String(), req.Body["user"])
	assert.Equal(t, "text-embedding-3-small", req.Body["model"])
}

func TestOpenAIProvider_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"invalid api key","type":"invalid_request_error"}}`)
	}))
	t.Cleanup(srv.Close)

	p, err := NewOpenAIProvider("", srv.URL, config.Credentials{OpenAIKey: "sk-bad"})
	require.NoError(t, err)

	_, err = p.EmbedText(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestNewAzureProvider_MissingCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds config.Credentials
	}{
		{"nothing", config.Credentials{}},
		{"key only", config.Credentials{AzureKey: "k"}},
		{"endpoint only", config.Credentials{AzureEndpoint: "https://x.openai.azure.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAzureProvider(tt.creds)
			assert.ErrorIs(t, err, ErrMissingCredentials)
		})
	}
}

func TestAzureProvider_Embed(t *testing.T) {
	srv, last := newStubHostedAPI(t)

	p, err := NewAzureProvider(config.Credentials{
		AzureKey:                 "azure-secret",
		AzureEndpoint:            srv.URL,
		AzureVersion:             "2023-05-15",
		AzureEmbeddingDeployment: "ada-deploy",
	})
	require.NoError(t, err)
	assert.Equal(t, EndpointAzure, p.Kind())
	assert.Equal(t, AzureModel, p.Model())

	vec, err := p.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, -0.5, 0.75}, vec)

	req := last.Load()
	require.NotNil(t, req)
	assert.Equal(t, "/openai/deployments/ada-deploy/embeddings", req.Path)
	assert.Contains(t, req.Query, "api-version=2023-05-15")
	assert.Equal(t, "azure-secret", req.Header.Get("api-key"))
}

func TestAzureProvider_DeploymentDefaultsToModel(t *testing.T) {
	srv, last := newStubHostedAPI(t)

	p, err := NewAzureProvider(config.Credentials{
		AzureKey:      "azure-secret",
		AzureEndpoint: srv.URL,
	})
	require.NoError(t, err)

	_, err = p.EmbedText(context.Background(), "hello")
	require.NoError(t, err)
	req := last.Load()
	assert.True(t, strings.HasPrefix(req.Path, "/openai/deployments/"+AzureModel+"/"))
	// Without a configured version the client default still applies.
	assert.Contains(t, req.Query, "api-version=")
}

func TestUserTagTransport(t *testing.T) {
	var got map[string]any
	var gotLength int64
	next := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotLength = r.ContentLength
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &got))
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}")), Request: r}, nil
	})
	tr := &userTagTransport{user: "u-1", next: next}

	body := `{"input":["hi"],"model":"m"}`
	req, err := http.NewRequest(http.MethodPost, "https://api.example.com/v1/embeddings", strings.NewReader(body))
	require.NoError(t, err)

	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "u-1", got["user"])
	assert.Equal(t, "m", got["model"])
	assert.Greater(t, gotLength, int64(len(body)))
}

func TestUserTagTransport_PassesOtherRequestsThrough(t *testing.T) {
	var seen *http.Request
	next := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: r}, nil
	})
	tr := &userTagTransport{user: "u-1", next: next}

	req, err := http.NewRequest(http.MethodGet, "https://api.example.com/v1/models", nil)
	require.NoError(t, err)

	_, err = tr.RoundTrip(req)
	require.NoError(t, err)
	assert.Same(t, req, seen)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
