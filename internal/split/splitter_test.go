package split

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLawTwoArticlesNoPreamble(t *testing.T) {
	s := NewSplitter()

	drafts := s.Split("المادة 1\nنص أول\nالمادة 2\nنص ثاني", CategoryLaw, "code.txt")

	require.Len(t, drafts, 2)
	assert.Equal(t, ChunkArticle, drafts[0].Type)
	assert.Equal(t, "1", drafts[0].StatuteArticleNumber)
	assert.Equal(t, ChunkArticle, drafts[1].Type)
	assert.Equal(t, "2", drafts[1].StatuteArticleNumber)
	assert.Contains(t, drafts[0].Content, "نص أول")
	assert.Contains(t, drafts[1].Content, "نص ثاني")
}

func TestSplitLawPreambleAndOrder(t *testing.T) {
	s := NewSplitter()
	text := "ديباجة القانون\nالمادة 7\nالنص السابع\nArticle 8\neighth text\nالمادة 9\nالنص التاسع"

	drafts := s.Split(text, CategoryLaw, "code.txt")

	require.Len(t, drafts, 4)
	assert.Equal(t, ChunkPreamble, drafts[0].Type)
	assert.Equal(t, "ديباجة القانون", drafts[0].Content)

	wantNumbers := []string{"7", "8", "9"}
	for i, want := range wantNumbers {
		d := drafts[i+1]
		assert.Equal(t, ChunkArticle, d.Type)
		assert.Equal(t, want, d.StatuteArticleNumber)
	}
	// Reading order is preserved.
	assert.Contains(t, drafts[2].Content, "eighth text")
}

func TestSplitLawNoHeadings(t *testing.T) {
	s := NewSplitter()

	drafts := s.Split("نص بدون مواد", CategoryLaw, "x.txt")

	require.Len(t, drafts, 1)
	assert.Equal(t, ChunkPreamble, drafts[0].Type)
}

func TestSplitEmptyDocument(t *testing.T) {
	s := NewSplitter()

	for _, cat := range []Category{CategoryLaw, CategoryJurisprudenceFull, CategoryJurisprudenceSummary, CategoryGeneric} {
		assert.Empty(t, s.Split("", cat, "empty.txt"), "category %s", cat)
		assert.Empty(t, s.Split("   \n  ", cat, "empty.txt"), "category %s", cat)
	}
}

func TestSplitFullDecisionAllSections(t *testing.T) {
	s := NewSplitter()
	text := "الجمهورية الجزائرية\nبيانات القضية\n" +
		"من حيث الشكل\nالطعن مقبول شكلا\n" +
		"من حيث الموضوع\nحيث أن الوقائع تدل على كذا\n" +
		"لهذه الأسباب\nتقرر المحكمة رفض الطعن"

	drafts := s.Split(text, CategoryJurisprudenceFull, "decision.txt")

	require.Len(t, drafts, 4)
	assert.Equal(t, ChunkHeader, drafts[0].Type)
	assert.Equal(t, ChunkForm, drafts[1].Type)
	assert.Equal(t, ChunkReasoning, drafts[2].Type)
	assert.Equal(t, ChunkOperative, drafts[3].Type)
	assert.Contains(t, drafts[3].Content, "تقرر المحكمة")
}

func TestSplitFullDecisionOperativeOnly(t *testing.T) {
	s := NewSplitter()
	text := "بيانات القضية والأطراف\nلهذه الأسباب\nتقرر المحكمة قبول الطعن"

	drafts := s.Split(text, CategoryJurisprudenceFull, "decision.txt")

	require.Len(t, drafts, 2)
	assert.Equal(t, ChunkHeader, drafts[0].Type)
	assert.Equal(t, ChunkOperative, drafts[1].Type)
	for _, d := range drafts {
		assert.NotEqual(t, ChunkReasoning, d.Type)
	}
}

func TestSplitFullDecisionFormPhraseInsideOperative(t *testing.T) {
	s := NewSplitter()
	// The only form phrase is part of the dispositif wording, after the
	// operative marker. It must not be taken as a section boundary.
	text := "بيانات القضية والأطراف\nلهذه الأسباب\nقررت المحكمة قبول الطعن في الشكل ورفضه في الموضوع"

	drafts := s.Split(text, CategoryJurisprudenceFull, "decision.txt")

	require.Len(t, drafts, 2)
	assert.Equal(t, ChunkHeader, drafts[0].Type)
	assert.Equal(t, "بيانات القضية والأطراف", drafts[0].Content)
	assert.Equal(t, ChunkOperative, drafts[1].Type)
	assert.Contains(t, drafts[1].Content, "في الشكل")
}

func TestSplitFullDecisionFormWithoutReasoningMarker(t *testing.T) {
	s := NewSplitter()
	text := "رأس القرار\nفي الشكل\nالطعن مقبول وحيث أن الملف جاهز\nولهذه الأسباب\nتقرر المحكمة"

	drafts := s.Split(text, CategoryJurisprudenceFull, "decision.txt")

	require.Len(t, drafts, 3)
	assert.Equal(t, ChunkHeader, drafts[0].Type)
	assert.Equal(t, ChunkFormAndReasoning, drafts[1].Type)
	assert.Equal(t, ChunkOperative, drafts[2].Type)
}

func TestSplitFullDecisionNoMarkersFallsBack(t *testing.T) {
	s := NewSplitter(WithWindow(40, 10))
	text := strings.Repeat("نص قضائي بدون اي علامات بنيوية معروفة ", 10)

	drafts := s.Split(text, CategoryJurisprudenceFull, "decision.txt")

	require.NotEmpty(t, drafts)
	for _, d := range drafts {
		assert.Equal(t, ChunkFullDecisionFallback, d.Type)
		assert.NotEmpty(t, strings.TrimSpace(d.Content))
	}
}

func TestSplitFullDecisionFrenchMarkers(t *testing.T) {
	s := NewSplitter()
	text := "entete de la decision\nsur la forme\nrecevable\npar ces motifs\nla cour rejette le pourvoi"

	drafts := s.Split(text, CategoryJurisprudenceFull, "arret.txt")

	require.Len(t, drafts, 3)
	assert.Equal(t, ChunkHeader, drafts[0].Type)
	assert.Equal(t, ChunkFormAndReasoning, drafts[1].Type)
	assert.Equal(t, ChunkOperative, drafts[2].Type)
}

func TestSplitSummariesClassificationAndNumbers(t *testing.T) {
	s := NewSplitter()
	text := "القرار رقم 1234\nملخص القرار الأول\n" +
		"\n----\n" +
		"المبدأ القانوني: لا جريمة بغير نص\nالقرار رقم 5678\n" +
		"\n---\n" +
		"ملخص بدون رقم قرار"

	drafts := s.Split(text, CategoryJurisprudenceSummary, "summaries.txt")

	require.Len(t, drafts, 3)
	assert.Equal(t, ChunkSummary, drafts[0].Type)
	assert.Equal(t, "1234", drafts[0].DecisionNumber)
	assert.Equal(t, "1234", drafts[0].Metadata["decision_number"])

	assert.Equal(t, ChunkPrincipleSummary, drafts[1].Type)
	assert.Equal(t, "5678", drafts[1].DecisionNumber)

	assert.Equal(t, ChunkSummary, drafts[2].Type)
	assert.Empty(t, drafts[2].DecisionNumber)
	assert.NotContains(t, drafts[2].Metadata, "decision_number")
}

func TestSplitSummariesDropsEmptySegments(t *testing.T) {
	s := NewSplitter()
	text := "ملخص أول\n---\n   \n---\nملخص ثاني"

	drafts := s.Split(text, CategoryJurisprudenceSummary, "summaries.txt")

	require.Len(t, drafts, 2)
}

func TestSplitUnknownCategoryFallsBackToGeneric(t *testing.T) {
	s := NewSplitter(WithWindow(50, 10))

	drafts := s.Split("some uncategorized text that still needs chunking somehow", Category("mystery"), "x.txt")

	require.NotEmpty(t, drafts)
	for _, d := range drafts {
		assert.Equal(t, ChunkGeneric, d.Type)
	}
}

func TestJurisprudenceCompilationHeuristic(t *testing.T) {
	s := NewSplitter()

	big := strings.Repeat("ملخص قرار قضائي طويل بما يكفي ", 3000) // > 50000 runes
	compilation := "القرار رقم 1\nملخص\n---\n" + big

	drafts := s.Split(compilation, CategoryJurisprudence, "اجتهادات_الغرفة_الجنائية.txt")
	require.NotEmpty(t, drafts)
	assert.Equal(t, ChunkSummary, drafts[0].Type)

	// Same text under a non-compilation filename goes through the full
	// decision parser instead.
	drafts = s.Split("رأس\nلهذه الأسباب\nمنطوق", CategoryJurisprudence, "قرار_واحد.txt")
	require.Len(t, drafts, 2)
	assert.Equal(t, ChunkOperative, drafts[1].Type)
}

func TestCompilationThresholdCountsRunes(t *testing.T) {
	s := NewSplitter()

	// Roughly 42k runes but over 70k bytes: below the rune threshold, so
	// a compilation filename still routes to the full decision parser.
	text := "رأس القرار\n" + strings.Repeat("نص عربي قصير ", 3200) + "\nلهذه الاسباب\nمنطوق القرار"

	drafts := s.Split(text, CategoryJurisprudence, "اجتهادات_مجموعة.txt")

	require.NotEmpty(t, drafts)
	assert.Equal(t, ChunkOperative, drafts[len(drafts)-1].Type)
}

func TestStorageCategoryHeuristic(t *testing.T) {
	summaryFirst := []Draft{{Type: ChunkSummary}, {Type: ChunkPrincipleSummary}}
	assert.Equal(t, CategoryJurisprudenceSummary, StorageCategory(CategoryJurisprudence, summaryFirst))

	principleFirst := []Draft{{Type: ChunkPrincipleSummary}}
	assert.Equal(t, CategoryJurisprudenceSummary, StorageCategory(CategoryJurisprudence, principleFirst))

	headerFirst := []Draft{{Type: ChunkHeader}, {Type: ChunkOperative}}
	assert.Equal(t, CategoryJurisprudenceFull, StorageCategory(CategoryJurisprudence, headerFirst))

	// Non-jurisprudence categories pass through untouched.
	assert.Equal(t, CategoryLaw, StorageCategory(CategoryLaw, summaryFirst))
	assert.Equal(t, CategoryGeneric, StorageCategory(CategoryGeneric, nil))
}

func TestStorageCategoryHeuristicKnownLimitation(t *testing.T) {
	// A decision with no structural markers windows into
	// full_decision_fallback chunks. The first-chunk heuristic then files
	// it as a full decision, which is the documented behavior even though
	// the document was never structurally parsed.
	fallback := []Draft{{Type: ChunkFullDecisionFallback}}
	assert.Equal(t, CategoryJurisprudenceFull, StorageCategory(CategoryJurisprudence, fallback))
}

func TestWindowTextTermination(t *testing.T) {
	// Overlap equal to window size must still advance.
	pieces := windowText(strings.Repeat("a", 100), 10, 10)
	require.NotEmpty(t, pieces)
	for _, p := range pieces {
		assert.NotEmpty(t, p)
	}
}

func TestWindowTextHardCutWithoutBoundaries(t *testing.T) {
	pieces := windowText(strings.Repeat("x", 95), 30, 5)

	require.NotEmpty(t, pieces)
	total := 0
	for _, p := range pieces {
		assert.LessOrEqual(t, len(p), 30)
		assert.NotEmpty(t, p)
		total += len(p)
	}
	assert.GreaterOrEqual(t, total, 95)
}

func TestWindowTextNudgesToBoundary(t *testing.T) {
	text := "كلمة أولى ثم كلمة ثانية ثم كلمة ثالثة وهكذا حتى نهاية النص الطويل"

	pieces := windowText(text, 20, 5)

	require.Greater(t, len(pieces), 1)
	for _, p := range pieces[:len(pieces)-1] {
		// No window should end mid-word when spaces are available.
		assert.False(t, strings.HasSuffix(p, "كلم"), "window cut mid-word: %q", p)
	}
}

func TestWindowTextOffsetsNonDecreasing(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta ", 50)

	pieces := windowText(text, 40, 10)

	require.NotEmpty(t, pieces)
	prev := -1
	search := 0
	for _, p := range pieces {
		idx := strings.Index(text[search:], p)
		require.GreaterOrEqual(t, idx, 0)
		abs := search + idx
		assert.GreaterOrEqual(t, abs, prev)
		prev = abs
		search = abs + 1
	}
}
