package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEmbedder wraps an Embedder with an LRU cache. Queries repeat far
// more often than documents, so single embeds are cached while batches
// pass through; batch texts are chunk bodies that are embedded once at
// ingestion and never again.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps inner with a cache of the given size.
func NewCachedEmbedder(inner Embedder, size int) (*CachedEmbedder, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

// cacheKey hashes text together with the model and role so a model change
// or role change never serves a stale vector.
func (c *CachedEmbedder) cacheKey(text string, isQuery bool) string {
	role := "doc"
	if isQuery {
		role = "query"
	}
	sum := sha256.Sum256([]byte(c.inner.ModelName() + "\x00" + role + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Embed returns the cached vector when present, otherwise delegates and
// stores the result.
func (c *CachedEmbedder) Embed(ctx context.Context, text string, isQuery bool) ([]float32, error) {
	key := c.cacheKey(text, isQuery)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text, isQuery)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, vec)
	return vec, nil
}

// EmbedBatch delegates to the wrapped embedder without caching.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped embedder's dimensionality.
func (c *CachedEmbedder) Dimensions() int {
	return c.inner.Dimensions()
}

// ModelName returns the wrapped embedder's model identifier.
func (c *CachedEmbedder) ModelName() string {
	return c.inner.ModelName()
}

// Available delegates to the wrapped embedder.
func (c *CachedEmbedder) Available(ctx context.Context) bool {
	return c.inner.Available(ctx)
}

// Close purges the cache and closes the wrapped embedder.
func (c *CachedEmbedder) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}
