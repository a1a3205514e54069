package search

import (
	"context"
	"fmt"

	"github.com/mizanlegal/mizan/internal/embed"
	"github.com/mizanlegal/mizan/internal/store"
)

// SemanticIndex is the semantic channel contract: embed the query, run a
// nearest-neighbor search, return ranked content. Implementations are
// fallible collaborators; the retriever degrades them to empty on error.
type SemanticIndex interface {
	Search(ctx context.Context, query string, topK int, categoryFilter string) ([]ChannelResult, error)
}

// VectorSearcher is the nearest-neighbor query surface of the vector
// store.
type VectorSearcher interface {
	Search(ctx context.Context, query []float32, k int) ([]*store.VectorResult, error)
}

// CorpusLookup resolves chunk IDs to content and metadata.
type CorpusLookup interface {
	GetCorpus(ctx context.Context, ids []string) (map[string]*store.CorpusEntry, error)
}

// VectorSemanticIndex implements the semantic channel over the embedder
// and the in-process vector store. The category filter is applied after
// the neighbor search over an over-fetched candidate set, since the graph
// itself has no notion of categories.
type VectorSemanticIndex struct {
	embedder embed.Embedder
	vectors  VectorSearcher
	corpus   CorpusLookup
}

// overFetchFactor widens the neighbor search when a category filter will
// discard part of the candidate set.
const overFetchFactor = 5

// NewVectorSemanticIndex wires the semantic channel.
func NewVectorSemanticIndex(embedder embed.Embedder, vectors VectorSearcher, corpus CorpusLookup) *VectorSemanticIndex {
	return &VectorSemanticIndex{embedder: embedder, vectors: vectors, corpus: corpus}
}

// Search embeds query and returns the nearest chunks, optionally filtered
// by document category.
func (v *VectorSemanticIndex) Search(ctx context.Context, query string, topK int, categoryFilter string) ([]ChannelResult, error) {
	if topK <= 0 {
		return []ChannelResult{}, nil
	}

	vec, err := v.embedder.Embed(ctx, query, true)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	fetchK := topK
	if categoryFilter != "" {
		fetchK = topK * overFetchFactor
	}

	hits, err := v.vectors.Search(ctx, vec, fetchK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(hits) == 0 {
		return []ChannelResult{}, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ChunkID
	}
	entries, err := v.corpus.GetCorpus(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve chunks: %w", err)
	}

	results := make([]ChannelResult, 0, topK)
	for _, h := range hits {
		entry, ok := entries[h.ChunkID]
		if !ok {
			continue
		}
		if categoryFilter != "" && entry.Metadata["category"] != categoryFilter {
			continue
		}
		results = append(results, ChannelResult{
			ChunkID:  entry.ChunkID,
			Content:  entry.Content,
			Metadata: entry.Metadata,
		})
		if len(results) == topK {
			break
		}
	}
	return results, nil
}
