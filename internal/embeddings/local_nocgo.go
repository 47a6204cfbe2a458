//go:build !cgo

package embeddings

import "errors"

var errNoCGO = errors.New("binary built without cgo; use the http-endpoint provider instead")

func newLocalRuntime(string) (localRuntime, error) {
	return nil, errNoCGO
}
