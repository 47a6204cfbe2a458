package embeddings

import (
	"net/http"
	"time"

	"github.com/fyrsmithlabs/embedkit/internal/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds a single call to the self-hosted HTTP endpoint.
const DefaultTimeout = 60 * time.Second

// Option configures provider construction.
type Option func(*options)

type options struct {
	user       string
	timeout    time.Duration
	logger     *logging.Logger
	metrics    *Metrics
	tracer     trace.Tracer
	httpClient *http.Client
	cacheDir   string
}

// WithUser tags requests with the calling user. uuid.Nil leaves requests untagged.
func WithUser(id uuid.UUID) Option {
	return func(o *options) {
		if id != uuid.Nil {
			o.user = id.String()
		}
	}
}

// WithTimeout sets the per-call timeout of the HTTP endpoint provider.
// Non-positive values keep DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger for construction and call diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracer sets the tracer used for per-call spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithHTTPClient sets the HTTP client used by the hosted and endpoint providers.
// The client is copied, never modified.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithCacheDir sets where the local model files are cached.
func WithCacheDir(dir string) Option {
	return func(o *options) { o.cacheDir = dir }
}

func newOptions(opts []Option) *options {
	o := &options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.metrics == nil {
		o.metrics = NewMetrics(o.logger)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(embeddingsInstrumentationName)
	}
	return o
}

// client returns a private copy of the configured HTTP client.
func (o *options) client() *http.Client {
	if o.httpClient == nil {
		return &http.Client{}
	}
	c := *o.httpClient
	return &c
}
