package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fyrsmithlabs/embedkit/internal/config"
	"github.com/fyrsmithlabs/embedkit/internal/logging"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// HostedProvider embeds text through the OpenAI or Azure OpenAI APIs.
type HostedProvider struct {
	base
	embedder *embeddings.EmbedderImpl
	logger   *logging.Logger
}

var _ Provider = (*HostedProvider)(nil)

// NewOpenAIProvider returns a provider for the OpenAI embeddings API.
// An empty model selects OpenAIModel; an empty baseURL selects the public API.
func NewOpenAIProvider(model, baseURL string, creds config.Credentials, opts ...Option) (*HostedProvider, error) {
	if !creds.OpenAIKey.IsSet() {
		return nil, fmt.Errorf("%w: openai_key required", ErrMissingCredentials)
	}
	if model == "" {
		model = OpenAIModel
	}
	o := newOptions(opts)

	llmOpts := []openai.Option{
		openai.WithToken(creds.OpenAIKey.Value()),
		openai.WithModel(model),
		openai.WithEmbeddingModel(model),
		openai.WithHTTPClient(o.taggedClient()),
	}
	if baseURL != "" {
		if err := validateEndpointURL(baseURL); err != nil {
			return nil, err
		}
		llmOpts = append(llmOpts, openai.WithBaseURL(strings.TrimRight(baseURL, "/")))
	}

	return newHostedProvider(EndpointOpenAI, model, o, llmOpts)
}

// NewAzureProvider returns a provider for an Azure OpenAI embedding deployment.
// The model is always AzureModel; the deployment defaults to the model name.
func NewAzureProvider(creds config.Credentials, opts ...Option) (*HostedProvider, error) {
	if !creds.AzureKey.IsSet() || creds.AzureEndpoint == "" {
		return nil, fmt.Errorf("%w: azure_key and azure_endpoint required", ErrMissingCredentials)
	}
	if err := validateEndpointURL(creds.AzureEndpoint); err != nil {
		return nil, err
	}
	o := newOptions(opts)

	deployment := creds.AzureEmbeddingDeployment
	if deployment == "" {
		deployment = AzureModel
	}

	llmOpts := []openai.Option{
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithToken(creds.AzureKey.Value()),
		openai.WithBaseURL(strings.TrimRight(creds.AzureEndpoint, "/")),
		// Azure routes by deployment, so the deployment stands in for the model.
		openai.WithModel(deployment),
		openai.WithEmbeddingModel(deployment),
		openai.WithHTTPClient(o.client()),
	}
	if creds.AzureVersion != "" {
		llmOpts = append(llmOpts, openai.WithAPIVersion(creds.AzureVersion))
	}

	return newHostedProvider(EndpointAzure, AzureModel, o, llmOpts)
}

func newHostedProvider(kind EndpointType, model string, o *options, llmOpts []openai.Option) (*HostedProvider, error) {
	llm, err := openai.New(llmOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", kind, err)
	}

	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(false))
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	p := &HostedProvider{
		embedder: embedder,
		logger:   o.logger.Named(string(kind)).With(zap.String("model", model)),
	}
	p.base = newBase(kind, model, o, p.embed)
	return p, nil
}

func (p *HostedProvider) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := p.embedder.EmbedQuery(ctx, text)
	if err != nil {
		p.logger.Debug(ctx, "hosted embedding failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	return vec, nil
}

// taggedClient returns a client copy that adds the user tag to embedding
// requests. Without a user it is the plain copy.
func (o *options) taggedClient() *http.Client {
	c := o.client()
	if o.user == "" {
		return c
	}
	next := c.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	c.Transport = &userTagTransport{user: o.user, next: next}
	return c
}

// userTagTransport sets the "user" field of JSON embedding request bodies.
type userTagTransport struct {
	user string
	next http.RoundTripper
}

func (t *userTagTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || req.Body == nil || !strings.HasSuffix(req.URL.Path, "/embeddings") {
		return t.next.RoundTrip(req)
	}

	raw, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}

	body := raw
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err == nil {
		payload["user"] = t.user
		if tagged, err := json.Marshal(payload); err == nil {
			body = tagged
		}
	}

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(body))
	out.ContentLength = int64(len(body))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return t.next.RoundTrip(out)
}
