//go:build cgo

package embeddings

import (
	"fmt"

	fastembed "github.com/anush008/fastembed-go"
)

// localMaxLength is the model's input sequence limit in tokens.
const localMaxLength = 512

// fastembedRuntime runs LocalModel through ONNX.
type fastembedRuntime struct {
	model *fastembed.FlagEmbedding
}

func newLocalRuntime(cacheDir string) (localRuntime, error) {
	if path := ONNXLibraryPath(); path != "" {
		if err := setONNXPathEnv(path); err != nil {
			return nil, fmt.Errorf("setting %s: %w", EnvONNXPath, err)
		}
	}

	showProgress := false
	model, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                fastembed.BGESmallENV15,
		CacheDir:             cacheDir,
		MaxLength:            localMaxLength,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing fastembed: %w", err)
	}
	return &fastembedRuntime{model: model}, nil
}

// Embed runs the model without the passage/query prefixes, so documents and
// queries embed identically.
func (r *fastembedRuntime) Embed(text string) ([]float32, error) {
	vectors, err := r.model.Embed([]string{text}, 1)
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("fastembed returned %d vectors for 1 text", len(vectors))
	}
	return vectors[0], nil
}

func (r *fastembedRuntime) Close() error {
	return r.model.Destroy()
}
