package split

import (
	"strings"

	"github.com/mizanlegal/mizan/internal/arabic"
)

// Section markers for full court decisions. Marker scanning runs over
// Alef-folded text (see arabic.FoldAlef), which preserves byte offsets into
// the original, so the markers themselves use the bare Alef form.
var (
	// Operative markers are searched first: the dispositif phrase is the
	// least ambiguous anchor in a decision.
	operativeMarkers = []string{"لهذه الاسباب", "ولهذه الاسباب", "par ces motifs"}

	formMarkers = []string{"من حيث الشكل", "في الشكل", "sur la forme", "من حيث الاجراءات"}

	// Reasoning markers are only searched inside the form-to-operative
	// span; these phrases recur throughout a decision body and are
	// unreliable as global anchors.
	reasoningMarkers = []string{"من حيث الموضوع", "في الموضوع"}
)

func findFirst(text string, markers []string) int {
	for _, m := range markers {
		if idx := strings.Index(text, m); idx != -1 {
			return idx
		}
	}
	return -1
}

// splitFullDecision parses a single court decision into its structural
// sections: header, form, reasoning, operative. When neither an operative
// nor a form marker is found the structure is abandoned and the text is
// windowed with the full_decision_fallback tag.
func (s *Splitter) splitFullDecision(text string) []Draft {
	folded := arabic.FoldAlef(text)

	operativeStart := findFirst(folded, operativeMarkers)
	formStart := findFirst(folded, formMarkers)

	// A form phrase at or past the operative marker belongs to the
	// dispositif wording ("قبول الطعن في الشكل"), not a section boundary.
	if operativeStart != -1 && formStart >= operativeStart {
		formStart = -1
	}

	if operativeStart == -1 && formStart == -1 {
		return splitGeneric(text, s.window, s.overlap, ChunkFullDecisionFallback)
	}

	var drafts []Draft

	headerEnd := formStart
	if headerEnd == -1 {
		headerEnd = operativeStart
	}
	if header := strings.TrimSpace(text[:headerEnd]); header != "" {
		drafts = append(drafts, Draft{
			Content:  header,
			Type:     ChunkHeader,
			Metadata: map[string]string{"section": "header"},
		})
	}

	if formStart != -1 {
		formEnd := len(text)
		if operativeStart != -1 {
			formEnd = operativeStart
		}

		relReasoning := findFirst(folded[formStart:formEnd], reasoningMarkers)
		if relReasoning != -1 {
			reasoningStart := formStart + relReasoning
			if form := strings.TrimSpace(text[formStart:reasoningStart]); form != "" {
				drafts = append(drafts, Draft{
					Content:  form,
					Type:     ChunkForm,
					Metadata: map[string]string{"section": "form"},
				})
			}
			for _, piece := range windowText(text[reasoningStart:formEnd], reasoningWindowSize, reasoningWindowOverlap) {
				drafts = append(drafts, Draft{
					Content:  piece,
					Type:     ChunkReasoning,
					Metadata: map[string]string{"section": "reasoning"},
				})
			}
		} else if lumped := strings.TrimSpace(text[formStart:formEnd]); lumped != "" {
			drafts = append(drafts, Draft{
				Content:  lumped,
				Type:     ChunkFormAndReasoning,
				Metadata: map[string]string{"section": "form_reasoning"},
			})
		}
	}

	if operativeStart != -1 {
		if operative := strings.TrimSpace(text[operativeStart:]); operative != "" {
			drafts = append(drafts, Draft{
				Content:  operative,
				Type:     ChunkOperative,
				Metadata: map[string]string{"section": "operative"},
			})
		}
	}

	return drafts
}
