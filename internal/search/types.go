// Package search is the retrieval core: parallel lexical and semantic
// channels, Reciprocal Rank Fusion, and the optional LLM reranking pass.
package search

// Weights sets the relative trust per channel. Lexical outweighs semantic
// by default: for Arabic legal text, keyword match materially outperforms
// embedding similarity.
type Weights struct {
	Lexical  float64
	Semantic float64
}

// DefaultWeights returns the 70/30 lexical-biased split.
func DefaultWeights() Weights {
	return Weights{Lexical: 0.7, Semantic: 0.3}
}

const (
	// DefaultRRFK is the rank-fusion smoothing constant shared by both
	// channels.
	DefaultRRFK = 60

	// DefaultTopK is the result count when the caller does not specify
	// one.
	DefaultTopK = 15
)

// ChannelResult is one ranked hit from a single channel, before fusion.
type ChannelResult struct {
	ChunkID  string
	Content  string
	Metadata map[string]string
}

// Result is a fused, ranked hit. FromLexical/FromSemantic record which
// channels contributed. Results are query-scoped and never persisted.
type Result struct {
	ChunkID      string
	Content      string
	Score        float64
	FromLexical  bool
	FromSemantic bool
	Metadata     map[string]string
}

// ScoredCandidate is a reranker output pair: content plus a relevance
// score in [0, 1].
type ScoredCandidate struct {
	Content string
	Score   float64
}
