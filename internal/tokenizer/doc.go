// Package tokenizer measures text against an embedding model's token budget.
//
// Resolver maps an embedding model identifier to a tiktoken encoding,
// falling back to DefaultEncoding (with a warning) for unmapped models.
// Chunker uses the resolved encoding to hard-truncate text that exceeds
// the model's input limit. Truncation always yields exactly one segment;
// splitting oversized text into several segments is not implemented.
package tokenizer
