// Package split converts raw legal document text into ordered chunk drafts.
// Each document category maps to a splitting strategy; unknown categories
// fall back to fixed-size windowing.
package split

// Category identifies the document class driving strategy dispatch.
type Category string

const (
	// CategoryLaw is a statutory code split into atomic articles.
	CategoryLaw Category = "law"
	// CategoryJurisprudence is the unspecialized input category. The
	// splitter decides between summary and full-decision parsing, and the
	// storage category is resolved afterward from the produced chunks.
	CategoryJurisprudence Category = "jurisprudence"
	// CategoryJurisprudenceFull is a single full court decision.
	CategoryJurisprudenceFull Category = "jurisprudence_full"
	// CategoryJurisprudenceSummary is a compilation of decision summaries.
	CategoryJurisprudenceSummary Category = "jurisprudence_summary"
	// CategoryJurisprudenceConseilEtat is a Conseil d'Etat decision,
	// parsed with the full-decision strategy.
	CategoryJurisprudenceConseilEtat Category = "jurisprudence_conseil_etat"
	// CategoryGeneric is windowed fallback text.
	CategoryGeneric Category = "generic"
)

// ChunkType tags the structural role of a chunk within its document.
type ChunkType string

const (
	ChunkPreamble             ChunkType = "preamble"
	ChunkArticle              ChunkType = "article"
	ChunkHeader               ChunkType = "header"
	ChunkForm                 ChunkType = "form"
	ChunkReasoning            ChunkType = "reasoning"
	ChunkFormAndReasoning     ChunkType = "form_and_reasoning"
	ChunkOperative            ChunkType = "operative"
	ChunkSummary              ChunkType = "summary"
	ChunkPrincipleSummary     ChunkType = "principle_summary"
	ChunkGeneric              ChunkType = "generic"
	ChunkFullDecisionFallback ChunkType = "full_decision_fallback"
)

// Draft is a chunk before persistence. The caller assigns chunk_index from
// the slice position; the store assigns IDs.
type Draft struct {
	Content string
	Type    ChunkType

	// StatuteArticleNumber is set for law article chunks only.
	StatuteArticleNumber string
	// DecisionNumber is set for jurisprudence summary chunks where a
	// decision number pattern was found.
	DecisionNumber string

	Metadata map[string]string
}
