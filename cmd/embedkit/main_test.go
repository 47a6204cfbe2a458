package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fyrsmithlabs/embedkit/internal/config"
	"github.com/fyrsmithlabs/embedkit/internal/embeddings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useStubEndpoint points the configuration at an in-process embedding server
// that answers every request with a three-component vector.
func useStubEndpoint(t *testing.T) *[]map[string]any {
	t.Helper()
	var requests []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		requests = append(requests, body)
		_, _ = io.WriteString(w, `{"data":[{"embedding":[0.1,0.2,0.3]}]}`)
	}))
	t.Cleanup(srv.Close)

	for _, key := range []string{config.EnvOpenAIKey, config.EnvAzureKey, config.EnvAzureEndpoint, config.EnvAzureVersion, config.EnvAzureDeployment} {
		t.Setenv(key, "")
	}
	t.Setenv("EMBEDKIT_EMBEDDING_ENDPOINT_TYPE", "http-endpoint")
	t.Setenv("EMBEDKIT_EMBEDDING_ENDPOINT_URL", srv.URL)
	t.Setenv("EMBEDKIT_EMBEDDING_MODEL", "BAAI/bge-large-en-v1.5")
	t.Setenv("EMBEDKIT_LOGGING_LEVEL", "error")
	return &requests
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestEmbedCommand(t *testing.T) {
	requests := useStubEndpoint(t)

	stdout, _, err := execute(t, "", "embed", "--user", "9f1c3f7e-2a4b-4c9d-8e6f-0a1b2c3d4e5f", "hello")
	require.NoError(t, err)

	var out embedOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "http-endpoint", out.EndpointType)
	assert.Equal(t, "BAAI/bge-large-en-v1.5", out.Model)
	assert.Equal(t, 3, out.Dimension)
	assert.False(t, out.Padded)
	assert.Equal(t, [][]float32{{0.1, 0.2, 0.3}}, out.Vectors)

	require.Len(t, *requests, 1)
	assert.Equal(t, "hello", (*requests)[0]["input"])
	assert.Equal(t, "9f1c3f7e-2a4b-4c9d-8e6f-0a1b2c3d4e5f", (*requests)[0]["user"])
}

func TestEmbedCommand_QueryPad(t *testing.T) {
	useStubEndpoint(t)

	stdout, _, err := execute(t, "from stdin\n", "embed", "--query", "--pad", "-")
	require.NoError(t, err)

	var out embedOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.True(t, out.Padded)
	assert.Equal(t, embeddings.MaxEmbeddingDim, out.Dimension)
	require.Len(t, out.Vectors, 1)
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0}, out.Vectors[0][:4])
}

func TestEmbedCommand_InvalidUser(t *testing.T) {
	useStubEndpoint(t)

	_, _, err := execute(t, "", "embed", "--user", "not-a-uuid", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --user")
}

func TestEmbedCommand_EmptyStdin(t *testing.T) {
	useStubEndpoint(t)

	_, _, err := execute(t, "", "embed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input text")
}

func TestEmbedCommand_BadEndpointURL(t *testing.T) {
	useStubEndpoint(t)
	t.Setenv("EMBEDKIT_EMBEDDING_ENDPOINT_URL", "not a url")

	_, _, err := execute(t, "", "embed", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, embeddings.ErrInvalidEndpointURL)
}

func TestTokensCommand(t *testing.T) {
	useStubEndpoint(t)

	stdout, _, err := execute(t, "", "tokens", "--model", "text-embedding-ada-002", "hello world")
	require.NoError(t, err)
	assert.Equal(t, "2\n", stdout)
}
