// Package ingest wires the splitter to the backing stores: split, embed,
// persist, index.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mizanlegal/mizan/internal/embed"
	"github.com/mizanlegal/mizan/internal/split"
	"github.com/mizanlegal/mizan/internal/store"
)

// DocumentStore persists a document with its chunks atomically.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc *store.Document, chunks []*store.Chunk) error
}

// VectorAdder receives chunk embeddings after persistence.
type VectorAdder interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
}

// Staler invalidates the lexical index after new data lands.
type Staler interface {
	MarkStale()
}

// Pipeline is the ingestion flow. Embedding runs before persistence so a
// count or dimension mismatch aborts with no partial state in any store.
type Pipeline struct {
	splitter *split.Splitter
	docs     DocumentStore
	vectors  VectorAdder
	embedder embed.Embedder
	lexical  Staler
	logger   *slog.Logger
}

// NewPipeline wires the pipeline. lexical may be nil when no lexical index
// is attached.
func NewPipeline(splitter *split.Splitter, docs DocumentStore, vectors VectorAdder, embedder embed.Embedder, lexical Staler, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		splitter: splitter,
		docs:     docs,
		vectors:  vectors,
		embedder: embedder,
		lexical:  lexical,
		logger:   logger,
	}
}

// IngestFile reads path and ingests its contents. The file path also
// feeds jurisdiction sniffing.
func (p *Pipeline) IngestFile(ctx context.Context, path string, category split.Category) (*store.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.Ingest(ctx, string(data), category, filepath.Base(path), path)
}

// Ingest splits text, embeds the chunks, and persists document, chunks,
// and vectors. An empty document is stored with zero chunks and is not an
// error. The returned document carries its assigned ID.
func (p *Pipeline) Ingest(ctx context.Context, text string, category split.Category, filename, sourcePath string) (*store.Document, error) {
	drafts := p.splitter.Split(text, category, filename)
	storageCategory := split.StorageCategory(category, drafts)

	doc := &store.Document{
		Category:     string(storageCategory),
		Filename:     filename,
		Jurisdiction: sniffJurisdiction(sourcePath),
	}
	if category == split.CategoryLaw {
		doc.LawName = strings.TrimSuffix(filename, ".txt")
	}

	chunks := make([]*store.Chunk, len(drafts))
	texts := make([]string, len(drafts))
	for i, d := range drafts {
		chunks[i] = &store.Chunk{
			Content:              d.Content,
			Type:                 string(d.Type),
			StatuteArticleNumber: d.StatuteArticleNumber,
			DecisionNumber:       d.DecisionNumber,
			Metadata:             d.Metadata,
		}
		texts[i] = d.Content
	}

	var vectors [][]float32
	if len(chunks) > 0 {
		var err error
		vectors, err = p.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed %s: %w", filename, err)
		}
		if len(vectors) != len(chunks) {
			return nil, fmt.Errorf("%s: got %d embeddings for %d chunks: %w",
				filename, len(vectors), len(chunks), embed.ErrCountMismatch)
		}
	}

	if err := p.docs.SaveDocument(ctx, doc, chunks); err != nil {
		return nil, fmt.Errorf("persist %s: %w", filename, err)
	}

	if len(chunks) > 0 {
		ids := make([]string, len(chunks))
		for i, c := range chunks {
			ids[i] = c.ID
		}
		if err := p.vectors.Add(ctx, ids, vectors); err != nil {
			return nil, fmt.Errorf("index vectors for %s: %w", filename, err)
		}
	}

	if p.lexical != nil {
		p.lexical.MarkStale()
	}

	p.logger.Info("document_ingested",
		slog.String("document_id", doc.ID),
		slog.String("filename", filename),
		slog.String("category", doc.Category),
		slog.Int("chunks", len(chunks)))
	return doc, nil
}

// sniffJurisdiction recognizes court markers in the source path, with
// both space and underscore spellings.
func sniffJurisdiction(path string) string {
	switch {
	case strings.Contains(path, "مجلس الدولة"), strings.Contains(path, "مجلس_الدولة"):
		return "مجلس الدولة"
	case strings.Contains(path, "محكمة عليا"), strings.Contains(path, "محكمة_عليا"):
		return "المحكمة العليا"
	}
	return ""
}
