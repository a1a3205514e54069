package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource counts corpus loads so tests can observe rebuilds.
type fakeSource struct {
	entries []*CorpusEntry
	loads   int
}

func (f *fakeSource) ListCorpus(ctx context.Context) ([]*CorpusEntry, error) {
	f.loads++
	return f.entries, nil
}

func legalCorpus() []*CorpusEntry {
	return []*CorpusEntry{
		{
			ChunkID: "c1",
			Content: "المادة 1 يعاقب كل من ارتكب جريمة السرقة",
			Metadata: map[string]string{"category": "law", "filename": "code.txt"},
		},
		{
			ChunkID: "c2",
			Content: "المادة 2 تسقط الدعوى العمومية بالتقادم",
			Metadata: map[string]string{"category": "law", "filename": "code.txt"},
		},
		{
			ChunkID: "c3",
			Content: "قرار يتعلق بجريمة السرقة الموصوفة والظروف المشددة",
			Metadata: map[string]string{"category": "jurisprudence_full", "filename": "arret.txt"},
		},
	}
}

func TestLexicalSearchScoresMatches(t *testing.T) {
	src := &fakeSource{entries: legalCorpus()}
	idx := NewLexicalIndex(src)
	defer idx.Close()

	results, err := idx.Search(context.Background(), "جريمة السرقة", 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Greater(t, r.Score, 0.0)
		assert.Contains(t, []string{"c1", "c3"}, r.ChunkID)
	}
}

func TestLexicalSearchNormalizedQueryMatches(t *testing.T) {
	src := &fakeSource{entries: legalCorpus()}
	idx := NewLexicalIndex(src)
	defer idx.Close()

	// Query with hamza and diacritics still matches the corpus because
	// both sides go through the same normalization.
	results, err := idx.Search(context.Background(), "جَرِيمَةُ السَّرِقَةِ", 10, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestLexicalZeroHitQuery(t *testing.T) {
	src := &fakeSource{entries: legalCorpus()}
	idx := NewLexicalIndex(src)
	defer idx.Close()

	results, err := idx.Search(context.Background(), "كلمات غير موجودة اطلاقا", 10, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLexicalEmptyQuery(t *testing.T) {
	idx := NewLexicalIndex(&fakeSource{entries: legalCorpus()})
	defer idx.Close()

	results, err := idx.Search(context.Background(), "   ", 10, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLexicalLazyIdempotentBuild(t *testing.T) {
	src := &fakeSource{entries: legalCorpus()}
	idx := NewLexicalIndex(src)
	defer idx.Close()

	assert.Equal(t, 0, src.loads)

	_, err := idx.Search(context.Background(), "السرقة", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, src.loads)

	// Further searches reuse the built index.
	_, err = idx.Search(context.Background(), "التقادم", 5, nil)
	require.NoError(t, err)
	_, err = idx.Search(context.Background(), "السرقة", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, src.loads)
}

func TestLexicalMarkStaleTriggersRebuild(t *testing.T) {
	src := &fakeSource{entries: legalCorpus()}
	idx := NewLexicalIndex(src)
	defer idx.Close()

	_, err := idx.Search(context.Background(), "السرقة", 5, nil)
	require.NoError(t, err)

	src.entries = append(src.entries, &CorpusEntry{
		ChunkID:  "c4",
		Content:  "نص جديد عن جنحة النصب",
		Metadata: map[string]string{"category": "law"},
	})
	idx.MarkStale()

	results, err := idx.Search(context.Background(), "النصب", 5, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c4", results[0].ChunkID)
	assert.Equal(t, 2, src.loads)
}

func TestLexicalFilters(t *testing.T) {
	idx := NewLexicalIndex(&fakeSource{entries: legalCorpus()})
	defer idx.Close()

	results, err := idx.Search(context.Background(), "جريمة السرقة", 10,
		map[string]string{"category": "jurisprudence_full"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c3", results[0].ChunkID)

	// A filter matching nothing is an empty result, not an error.
	results, err = idx.Search(context.Background(), "جريمة السرقة", 10,
		map[string]string{"category": "no_such_category"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLexicalTopKTruncation(t *testing.T) {
	idx := NewLexicalIndex(&fakeSource{entries: legalCorpus()})
	defer idx.Close()

	results, err := idx.Search(context.Background(), "جريمة السرقة المادة", 1, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestLexicalClosed(t *testing.T) {
	idx := NewLexicalIndex(&fakeSource{entries: legalCorpus()})
	require.NoError(t, idx.Close())

	_, err := idx.Search(context.Background(), "السرقة", 5, nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestLexicalSize(t *testing.T) {
	idx := NewLexicalIndex(&fakeSource{entries: legalCorpus()})
	defer idx.Close()

	n, err := idx.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
