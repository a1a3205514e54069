package search

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mizanlegal/mizan/internal/store"
)

// LexicalSearcher is the lexical channel contract, satisfied by
// store.LexicalIndex.
type LexicalSearcher interface {
	Search(ctx context.Context, query string, topK int, filters map[string]string) ([]*store.LexicalResult, error)
}

// Retriever runs both channels in parallel, fuses their rankings, and
// optionally reranks. A failing channel degrades to an empty contribution;
// retrieval only yields an empty result set, never an error, when every
// channel is down.
type Retriever struct {
	lexical  LexicalSearcher
	semantic SemanticIndex
	reranker Reranker
	weights  Weights
	rrfK     int
	logger   *slog.Logger
}

// RetrieverOption adjusts retriever construction.
type RetrieverOption func(*Retriever)

// WithWeights overrides the channel weights.
func WithWeights(w Weights) RetrieverOption {
	return func(r *Retriever) { r.weights = w }
}

// WithRRFK overrides the fusion smoothing constant.
func WithRRFK(k int) RetrieverOption {
	return func(r *Retriever) { r.rrfK = k }
}

// WithReranker enables the precision pass over fused results.
func WithReranker(rr Reranker) RetrieverOption {
	return func(r *Retriever) { r.reranker = rr }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) RetrieverOption {
	return func(r *Retriever) { r.logger = l }
}

// NewRetriever wires the hybrid retriever.
func NewRetriever(lexical LexicalSearcher, semantic SemanticIndex, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		lexical:  lexical,
		semantic: semantic,
		weights:  DefaultWeights(),
		rrfK:     DefaultRRFK,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve runs lexical and semantic search for query concurrently and
// returns the fused ranking, truncated to topK. Filters are exact
// metadata equality; the "category" filter is also pushed to the semantic
// channel.
func (r *Retriever) Retrieve(ctx context.Context, query string, filters map[string]string, topK int) ([]Result, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	var lexical, semantic []ChannelResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := r.lexical.Search(gctx, query, topK, filters)
		if err != nil {
			r.logger.Warn("lexical_search_failed", slog.String("error", err.Error()))
			return nil
		}
		lexical = make([]ChannelResult, len(hits))
		for i, h := range hits {
			lexical[i] = ChannelResult{ChunkID: h.ChunkID, Content: h.Content, Metadata: h.Metadata}
		}
		return nil
	})
	g.Go(func() error {
		hits, err := r.semantic.Search(gctx, query, topK, filters["category"])
		if err != nil {
			r.logger.Warn("semantic_search_failed", slog.String("error", err.Error()))
			return nil
		}
		semantic = hits
		return nil
	})
	// Channel errors are swallowed above; Wait only propagates context
	// cancellation of the group itself.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := Fuse(lexical, semantic, r.weights, r.rrfK, topK)

	if r.reranker != nil && len(fused) > 0 {
		fused = r.rerank(ctx, query, fused, topK)
	}
	return fused, nil
}

// rerank re-scores fused results through the configured reranker and
// reorders them by judged relevance. The reranker's own fallback already
// guarantees a usable ranking, so any residual error keeps the fused
// order.
func (r *Retriever) rerank(ctx context.Context, query string, fused []Result, topK int) []Result {
	contents := make([]string, len(fused))
	byContent := make(map[string]Result, len(fused))
	for i, res := range fused {
		contents[i] = res.Content
		byContent[res.Content] = res
	}

	scored, err := r.reranker.Rerank(ctx, query, contents, topK)
	if err != nil {
		r.logger.Warn("rerank_failed", slog.String("error", err.Error()))
		return fused
	}

	out := make([]Result, 0, len(scored))
	for _, sc := range scored {
		res, ok := byContent[sc.Content]
		if !ok {
			continue
		}
		res.Score = sc.Score
		out = append(out, res)
	}
	return out
}
