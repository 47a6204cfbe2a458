package embeddings

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fyrsmithlabs/embedkit/internal/logging"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// EndpointProvider embeds text through a self-hosted server speaking the
// OpenAI embeddings schema, such as text-embeddings-inference.
type EndpointProvider struct {
	base
	baseURL string
	target  string
	user    string
	timeout time.Duration
	client  *resty.Client
	logger  *logging.Logger
}

var _ Provider = (*EndpointProvider)(nil)

// embeddingRequest is the wire body of POST {base_url}/embeddings.
type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
	User  string `json:"user,omitempty"`
}

// NewEndpointProvider returns a provider posting to {baseURL}/embeddings.
// baseURL must be an absolute URL; no request is made here.
func NewEndpointProvider(model, baseURL string, opts ...Option) (*EndpointProvider, error) {
	if err := validateEndpointURL(baseURL); err != nil {
		return nil, err
	}
	baseURL = strings.TrimRight(baseURL, "/")
	target, err := url.JoinPath(baseURL, "embeddings")
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidEndpointURL, baseURL, err)
	}
	o := newOptions(opts)

	client := resty.NewWithClient(o.client()).
		SetRetryCount(0).
		SetLogger(o.logger.Underlying().Sugar())

	p := &EndpointProvider{
		baseURL: baseURL,
		target:  target,
		user:    o.user,
		timeout: o.timeout,
		client:  client,
		logger:  o.logger.Named("endpoint").With(zap.String("model", model)),
	}
	p.base = newBase(EndpointHTTP, model, o, p.embed)
	return p, nil
}

// BaseURL returns the endpoint base URL without a trailing slash.
func (p *EndpointProvider) BaseURL() string { return p.baseURL }

func (p *EndpointProvider) embed(ctx context.Context, text string) ([]float32, error) {
	if err := validateEndpointURL(p.baseURL); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.logger.Debug(ctx, "posting embedding request", zap.String("url", p.target), zap.Int("chars", len(text)))

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(embeddingRequest{Input: text, Model: p.model, User: p.user}).
		Post(p.target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.StatusCode(), truncateBody(resp.Body()))
	}

	return ParseResponse(resp.Body())
}

// validateEndpointURL requires an absolute URL with scheme and host and
// without a query or fragment, since request paths are appended to it.
func validateEndpointURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidEndpointURL, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q: scheme and host required", ErrInvalidEndpointURL, raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("%w: %q: query and fragment not allowed", ErrInvalidEndpointURL, raw)
	}
	return nil
}

func truncateBody(body []byte) string {
	s := string(body)
	if len(s) > maxPayloadInError {
		return s[:maxPayloadInError] + "..."
	}
	return s
}
