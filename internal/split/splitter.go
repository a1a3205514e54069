package split

import (
	"strings"
	"unicode/utf8"
)

// Compilation files carry this marker in their filename (e.g.
// "اجتهادات_الغرفة_الجنائية.txt"). Together with a size threshold it
// distinguishes a summaries compilation from a single full decision when
// the caller only says "jurisprudence".
const (
	compilationFilenameMarker = "اجتهادات"

	// compilationMinSize is a rune count; Arabic text doubles it in bytes.
	compilationMinSize = 50000
)

type splitFunc func(s *Splitter, text, filename string) []Draft

// Splitter dispatches document text to a category-specific strategy. The
// strategy table is fixed at construction; categories outside it fall back
// to generic windowing.
type Splitter struct {
	window     int
	overlap    int
	byCategory map[Category]splitFunc
}

// Option adjusts splitter construction.
type Option func(*Splitter)

// WithWindow overrides the generic window geometry (sizes in runes).
func WithWindow(size, overlap int) Option {
	return func(s *Splitter) {
		s.window = size
		s.overlap = overlap
	}
}

// NewSplitter builds a splitter with the default strategy table.
func NewSplitter(opts ...Option) *Splitter {
	s := &Splitter{
		window:  DefaultWindowSize,
		overlap: DefaultWindowOverlap,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.byCategory = map[Category]splitFunc{
		CategoryLaw: func(_ *Splitter, text, _ string) []Draft {
			return splitLaw(text)
		},
		CategoryJurisprudence: func(s *Splitter, text, filename string) []Draft {
			if isCompilation(text, filename) {
				return splitSummaries(text)
			}
			return s.splitFullDecision(text)
		},
		CategoryJurisprudenceFull: func(s *Splitter, text, _ string) []Draft {
			return s.splitFullDecision(text)
		},
		CategoryJurisprudenceConseilEtat: func(s *Splitter, text, _ string) []Draft {
			return s.splitFullDecision(text)
		},
		CategoryJurisprudenceSummary: func(_ *Splitter, text, _ string) []Draft {
			return splitSummaries(text)
		},
		CategoryGeneric: func(s *Splitter, text, _ string) []Draft {
			return splitGeneric(text, s.window, s.overlap, ChunkGeneric)
		},
	}
	return s
}

// isCompilation guesses whether an unspecialized jurisprudence document is
// a compilation of summaries rather than one full decision.
func isCompilation(text, filename string) bool {
	name := strings.ToLower(filename)
	return strings.Contains(name, compilationFilenameMarker) &&
		strings.Contains(name, ".txt") &&
		utf8.RuneCountInString(text) > compilationMinSize
}

// Split converts text into an ordered sequence of chunk drafts using the
// strategy for category. Unknown categories fall back to generic
// windowing. An empty document yields zero drafts, never an error.
func (s *Splitter) Split(text string, category Category, filename string) []Draft {
	fn, ok := s.byCategory[category]
	if !ok {
		fn = s.byCategory[CategoryGeneric]
	}
	return fn(s, text, filename)
}

// StorageCategory maps the input category to the category persisted with
// the document. The unspecialized jurisprudence category is resolved by
// inspecting only the first produced chunk: a summary-type first chunk
// means the whole document is stored as a summaries compilation. This is a
// deliberate single-chunk heuristic and can misclassify a document whose
// first chunk is atypical, such as a windowed fallback decision.
func StorageCategory(category Category, drafts []Draft) Category {
	if category != CategoryJurisprudence {
		return category
	}
	if len(drafts) > 0 && (drafts[0].Type == ChunkSummary || drafts[0].Type == ChunkPrincipleSummary) {
		return CategoryJurisprudenceSummary
	}
	return CategoryJurisprudenceFull
}
