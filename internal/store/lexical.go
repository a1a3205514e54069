package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"

	"github.com/mizanlegal/mizan/internal/arabic"
)

const (
	// ArabicTokenizerName is the registry name of the Arabic tokenizer.
	ArabicTokenizerName = "arabic_legal_tokenizer"

	// ArabicAnalyzerName is the registry name of the Arabic analyzer.
	ArabicAnalyzerName = "arabic_legal_analyzer"
)

func init() {
	registry.RegisterTokenizer(ArabicTokenizerName, arabicTokenizerConstructor)
}

func arabicTokenizerConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.Tokenizer, error) {
	return &arabicTokenizer{}, nil
}

// arabicTokenizer adapts arabic.Tokenize to bleve's analysis contract. The
// same tokenization runs at index and query time, which keeps scores
// symmetric.
type arabicTokenizer struct{}

func (t *arabicTokenizer) Tokenize(input []byte) analysis.TokenStream {
	tokens := arabic.Tokenize(string(input))

	stream := make(analysis.TokenStream, 0, len(tokens))
	offset := 0
	for i, tok := range tokens {
		// Offsets are approximate: normalization changes byte positions,
		// and scoring only needs term identity and frequency.
		start := offset
		end := start + len(tok)
		offset = end
		stream = append(stream, &analysis.Token{
			Term:     []byte(tok),
			Position: i + 1,
			Start:    start,
			End:      end,
			Type:     analysis.AlphaNumeric,
		})
	}
	return stream
}

func createArabicIndexMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(ArabicAnalyzerName, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     ArabicTokenizerName,
		"token_filters": []string{},
	})
	if err != nil {
		return nil, fmt.Errorf("add custom analyzer: %w", err)
	}
	indexMapping.DefaultAnalyzer = ArabicAnalyzerName

	return indexMapping, nil
}

type indexedChunk struct {
	Content string `json:"content"`
}

// LexicalIndex is the BM25-scored keyword index over the chunk corpus. It
// rebuilds wholesale from a ChunkSource: the first search after
// construction or after MarkStale triggers the rebuild, concurrent
// triggers collapse into one build, and repeated builds with no new data
// are no-ops. The index lags the store between ingestion and the next
// rebuild, which is the accepted staleness tradeoff.
type LexicalIndex struct {
	source ChunkSource

	mu      sync.RWMutex
	index   bleve.Index
	entries map[string]*CorpusEntry
	built   bool
	closed  bool
}

// NewLexicalIndex wires the index to its corpus source. No build happens
// here; the owner decides when by searching or calling Rebuild.
func NewLexicalIndex(source ChunkSource) *LexicalIndex {
	return &LexicalIndex{source: source}
}

// MarkStale schedules a rebuild before the next search.
func (l *LexicalIndex) MarkStale() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.built = false
}

// Rebuild forces an immediate rebuild from the source.
func (l *LexicalIndex) Rebuild(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.built = false
	return l.buildLocked(ctx)
}

func (l *LexicalIndex) ensureBuilt(ctx context.Context) error {
	l.mu.RLock()
	built, closed := l.built, l.closed
	l.mu.RUnlock()
	if closed {
		return ErrClosed
	}
	if built {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buildLocked(ctx)
}

// buildLocked rebuilds the in-memory index from the full corpus. Caller
// holds the write lock.
func (l *LexicalIndex) buildLocked(ctx context.Context) error {
	if l.closed {
		return ErrClosed
	}
	if l.built {
		return nil
	}

	indexMapping, err := createArabicIndexMapping()
	if err != nil {
		return err
	}
	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	entries, err := l.source.ListCorpus(ctx)
	if err != nil {
		idx.Close()
		return fmt.Errorf("load corpus: %w", err)
	}

	batch := idx.NewBatch()
	byID := make(map[string]*CorpusEntry, len(entries))
	for _, e := range entries {
		byID[e.ChunkID] = e
		if err := batch.Index(e.ChunkID, indexedChunk{Content: e.Content}); err != nil {
			idx.Close()
			return fmt.Errorf("index chunk %s: %w", e.ChunkID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return fmt.Errorf("execute batch: %w", err)
	}

	if l.index != nil {
		l.index.Close()
	}
	l.index = idx
	l.entries = byID
	l.built = true
	return nil
}

// Search scores the corpus against query and returns up to topK hits.
// Filters are exact metadata equality, applied after scoring; a filter
// matching nothing yields an empty result. A query whose terms appear
// nowhere returns an empty result, never an error.
func (l *LexicalIndex) Search(ctx context.Context, query string, topK int, filters map[string]string) ([]*LexicalResult, error) {
	if err := l.ensureBuilt(ctx); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrClosed
	}

	if strings.TrimSpace(query) == "" || topK <= 0 {
		return []*LexicalResult{}, nil
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetField("content")

	req := bleve.NewSearchRequest(matchQuery)
	req.Size = topK
	if len(filters) > 0 {
		// Filters drop hits after scoring, so over-fetch the whole
		// corpus to keep topK meaningful.
		req.Size = len(l.entries)
	}

	res, err := l.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	results := make([]*LexicalResult, 0, topK)
	for _, hit := range res.Hits {
		entry, ok := l.entries[hit.ID]
		if !ok {
			continue
		}
		if !matchesFilters(entry.Metadata, filters) {
			continue
		}
		results = append(results, &LexicalResult{
			ChunkID:  entry.ChunkID,
			Content:  entry.Content,
			Score:    hit.Score,
			Metadata: entry.Metadata,
		})
		if len(results) == topK {
			break
		}
	}
	return results, nil
}

// Size reports the number of indexed chunks, building first if needed.
func (l *LexicalIndex) Size(ctx context.Context) (int, error) {
	if err := l.ensureBuilt(ctx); err != nil {
		return 0, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries), nil
}

// Close releases the underlying bleve index.
func (l *LexicalIndex) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.built = false
	if l.index != nil {
		err := l.index.Close()
		l.index = nil
		return err
	}
	return nil
}

func matchesFilters(meta, filters map[string]string) bool {
	for k, want := range filters {
		if meta[k] != want {
			return false
		}
	}
	return true
}
