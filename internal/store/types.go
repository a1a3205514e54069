// Package store holds the persistent document/chunk store and the two
// retrieval indexes: a lexical bleve index rebuilt from the store and an
// in-process HNSW vector store.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrClosed is returned by operations on a closed store or index.
	ErrClosed = errors.New("store is closed")

	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrDimensionMismatch is returned when a vector's length does not
	// match the store's configured dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Document is a parent unit of ingestion. Documents and their chunks are
// immutable after creation; re-ingestion creates a new document.
type Document struct {
	ID           string
	Category     string
	Filename     string
	LawName      string
	Jurisdiction string
	TotalChunks  int
	CreatedAt    time.Time
}

// Chunk is the atomic retrievable unit. Index is the zero-based position
// within the parent document and forms a contiguous 0..N-1 sequence.
type Chunk struct {
	ID         string
	DocumentID string
	Index      int
	Content    string
	Type       string

	// StatuteArticleNumber and DecisionNumber are distinct optional
	// identifiers; at most one of them is set for a given chunk.
	StatuteArticleNumber string
	DecisionNumber       string

	Metadata map[string]string
}

// CorpusEntry is the (content, metadata) pair the lexical index is built
// from. Metadata merges document fields with the chunk's own metadata.
type CorpusEntry struct {
	ChunkID  string
	Content  string
	Metadata map[string]string
}

// ChunkSource supplies the full current corpus for a lexical rebuild.
type ChunkSource interface {
	ListCorpus(ctx context.Context) ([]*CorpusEntry, error)
}

// LexicalResult is one scored hit from the lexical index.
type LexicalResult struct {
	ChunkID  string
	Content  string
	Score    float64
	Metadata map[string]string
}

// VectorResult is one scored hit from the vector store.
type VectorResult struct {
	ChunkID string
	Score   float32
}

// Stats summarizes store contents for the stats command.
type Stats struct {
	Documents        int
	Chunks           int
	ChunksByCategory map[string]int
}
