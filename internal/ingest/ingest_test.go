package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizanlegal/mizan/internal/embed"
	"github.com/mizanlegal/mizan/internal/split"
	"github.com/mizanlegal/mizan/internal/store"
)

type fakeEmbedder struct {
	dims    int
	short   bool
	batches int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string, isQuery bool) ([]float32, error) {
	return make([]float32, f.dims), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.batches++
	n := len(texts)
	if f.short && n > 0 {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, f.dims)
		out[i][0] = 1
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int                    { return f.dims }
func (f *fakeEmbedder) ModelName() string                  { return "fake" }
func (f *fakeEmbedder) Available(ctx context.Context) bool { return true }
func (f *fakeEmbedder) Close() error                       { return nil }

type recordingVectors struct {
	ids []string
}

func (r *recordingVectors) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	r.ids = append(r.ids, ids...)
	return nil
}

type staleFlag struct {
	calls int
}

func (s *staleFlag) MarkStale() { s.calls++ }

func newTestPipeline(t *testing.T, emb *fakeEmbedder) (*Pipeline, *store.DB, *recordingVectors, *staleFlag) {
	t.Helper()
	db, err := store.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	vectors := &recordingVectors{}
	stale := &staleFlag{}
	p := NewPipeline(split.NewSplitter(), db, vectors, emb, stale, nil)
	return p, db, vectors, stale
}

func TestIngestLawDocument(t *testing.T) {
	p, db, vectors, stale := newTestPipeline(t, &fakeEmbedder{dims: 3})
	ctx := context.Background()

	doc, err := p.Ingest(ctx, "المادة 1\nنص أول\nالمادة 2\nنص ثاني",
		split.CategoryLaw, "قانون_العقوبات.txt", "data/قانون_العقوبات.txt")
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)

	assert.Equal(t, "law", doc.Category)
	assert.Equal(t, "قانون_العقوبات", doc.LawName)
	assert.Equal(t, 2, doc.TotalChunks)

	chunks, err := db.ChunksByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, "article", c.Type)
	}
	assert.Equal(t, "1", chunks[0].StatuteArticleNumber)

	assert.Len(t, vectors.ids, 2)
	assert.Equal(t, chunks[0].ID, vectors.ids[0])
	assert.Equal(t, 1, stale.calls)
}

func TestIngestResolvesJurisprudenceStorageCategory(t *testing.T) {
	p, _, _, _ := newTestPipeline(t, &fakeEmbedder{dims: 3})

	doc, err := p.Ingest(context.Background(),
		"رأس القرار\nلهذه الأسباب\nتقرر المحكمة",
		split.CategoryJurisprudence, "قرار.txt", "data/محكمة_عليا/قرار.txt")
	require.NoError(t, err)

	assert.Equal(t, "jurisprudence_full", doc.Category)
	assert.Equal(t, "المحكمة العليا", doc.Jurisdiction)
	assert.Empty(t, doc.LawName)
}

func TestIngestSniffsConseilEtatPath(t *testing.T) {
	p, _, _, _ := newTestPipeline(t, &fakeEmbedder{dims: 3})

	doc, err := p.Ingest(context.Background(), "نص عام",
		split.CategoryGeneric, "doc.txt", "data/مجلس_الدولة/doc.txt")
	require.NoError(t, err)
	assert.Equal(t, "مجلس الدولة", doc.Jurisdiction)
}

func TestIngestEmptyDocument(t *testing.T) {
	emb := &fakeEmbedder{dims: 3}
	p, db, vectors, stale := newTestPipeline(t, emb)
	ctx := context.Background()

	doc, err := p.Ingest(ctx, "   \n ", split.CategoryGeneric, "empty.txt", "empty.txt")
	require.NoError(t, err)
	assert.Equal(t, 0, doc.TotalChunks)

	stored, err := db.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.TotalChunks)

	assert.Zero(t, emb.batches)
	assert.Empty(t, vectors.ids)
	assert.Equal(t, 1, stale.calls)
}

func TestIngestCountMismatchAbortsCleanly(t *testing.T) {
	p, db, vectors, stale := newTestPipeline(t, &fakeEmbedder{dims: 3, short: true})
	ctx := context.Background()

	_, err := p.Ingest(ctx, "المادة 1\nنص\nالمادة 2\nنص",
		split.CategoryLaw, "قانون.txt", "قانون.txt")
	require.ErrorIs(t, err, embed.ErrCountMismatch)

	// Nothing persisted anywhere.
	stats, serr := db.Stats(ctx)
	require.NoError(t, serr)
	assert.Zero(t, stats.Documents)
	assert.Zero(t, stats.Chunks)
	assert.Empty(t, vectors.ids)
	assert.Zero(t, stale.calls)
}

func TestIngestFileMissing(t *testing.T) {
	p, _, _, _ := newTestPipeline(t, &fakeEmbedder{dims: 3})

	_, err := p.IngestFile(context.Background(), "/no/such/file.txt", split.CategoryLaw)
	assert.Error(t, err)
}
