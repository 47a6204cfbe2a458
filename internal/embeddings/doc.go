// Package embeddings turns text into embedding vectors through one of
// several interchangeable backends.
//
// NewProvider maps a Config and vendor credentials to a Provider:
//
//	openai          hosted OpenAI (or OpenAI-compatible gateway) via langchaingo
//	azure           Azure OpenAI via langchaingo
//	http-endpoint   self-hosted OpenAI/TEI-compatible server (alias: hugging-face)
//	anything else   local BAAI/bge-small-en-v1.5 via fastembed
//
// Unknown endpoint types select the local model instead of failing, so
// embedding generation stays available.
//
// Vectors differ in width between backends. Pad zero-extends a vector to a
// fixed width and QueryEmbedding pads to MaxEmbeddingDim, the width shared
// with the vector store.
package embeddings
