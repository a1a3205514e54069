// Package embed defines the embedding provider contract and its
// implementations: the Gemini REST embedder and an LRU-cached wrapper.
package embed

import (
	"context"
	"errors"
)

var (
	// ErrDimensionMismatch is returned when the provider produces vectors
	// of a different length than configured. Detected at ingestion time,
	// never silently carried into the vector store.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCountMismatch is returned when a batch response carries a
	// different number of embeddings than texts submitted. Misaligned
	// embeddings corrupt the index with no later symptom, so the whole
	// batch aborts.
	ErrCountMismatch = errors.New("embedding count mismatch")
)

// Embedder produces fixed-length vectors for texts. isQuery selects the
// provider's query-side task type where the model distinguishes roles.
type Embedder interface {
	// Embed returns the vector for a single text.
	Embed(ctx context.Context, text string, isQuery bool) ([]float32, error)

	// EmbedBatch returns one document-role vector per text, aligned by
	// index. Implementations must return exactly len(texts) vectors or
	// an error.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the configured vector length.
	Dimensions() int

	// ModelName identifies the backing model.
	ModelName() string

	// Available reports whether the provider is reachable and ready.
	Available(ctx context.Context) bool

	// Close releases provider resources.
	Close() error
}
