package embeddings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fyrsmithlabs/embedkit/internal/logging"
	"go.uber.org/zap"
)

// localRuntime runs the local model for one text at a time.
type localRuntime interface {
	Embed(text string) ([]float32, error)
	Close() error
}

// LocalProvider embeds text with LocalModel on this host. It needs no
// network access once the model files are cached, and no credentials.
type LocalProvider struct {
	base
	cacheDir string
	logger   *logging.Logger
	load     func(cacheDir string) (localRuntime, error)

	mu      sync.RWMutex
	runtime localRuntime
	closed  bool
}

var _ Provider = (*LocalProvider)(nil)

// NewLocalProvider returns the local fallback provider. It never fails:
// the model is loaded on the first call, and load errors surface there.
func NewLocalProvider(opts ...Option) *LocalProvider {
	o := newOptions(opts)

	cacheDir := o.cacheDir
	if cacheDir == "" {
		cacheDir = defaultCacheDir()
	}

	p := &LocalProvider{
		cacheDir: cacheDir,
		logger:   o.logger.Named("local").With(zap.String("model", LocalModel)),
		load:     newLocalRuntime,
	}
	p.base = newBase(EndpointLocal, LocalModel, o, p.embed)
	return p
}

// Dimension returns the width of LocalModel vectors.
func (p *LocalProvider) Dimension() int { return LocalDimension }

// CacheDir returns where model files are cached.
func (p *LocalProvider) CacheDir() string { return p.cacheDir }

func (p *LocalProvider) embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rt, err := p.ensureRuntime(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, fmt.Errorf("%w: provider closed", ErrLocalModelUnavailable)
	}

	vec, err := rt.Embed(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	return vec, nil
}

// ensureRuntime loads the model once. A failed load is retried on the next call.
func (p *LocalProvider) ensureRuntime(ctx context.Context) (localRuntime, error) {
	p.mu.RLock()
	rt := p.runtime
	p.mu.RUnlock()
	if rt != nil {
		return rt, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, fmt.Errorf("%w: provider closed", ErrLocalModelUnavailable)
	}
	if p.runtime != nil {
		return p.runtime, nil
	}

	p.logger.Info(ctx, "loading local embedding model", zap.String("cache_dir", p.cacheDir))
	rt, err := p.load(p.cacheDir)
	if err != nil {
		p.logger.Error(ctx, "failed to load local embedding model", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrLocalModelUnavailable, err)
	}
	p.runtime = rt
	return rt, nil
}

// Close releases the loaded model. Later calls fail with ErrLocalModelUnavailable.
func (p *LocalProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.runtime == nil {
		return nil
	}
	err := p.runtime.Close()
	p.runtime = nil
	return err
}

// defaultCacheDir returns ~/.cache/embedkit/models.
func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".", "local_cache")
	}
	return filepath.Join(dir, "embedkit", "models")
}
