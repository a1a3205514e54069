package split

import (
	"regexp"
	"strings"
)

// Compilation files separate individual decision summaries with a
// horizontal rule of three or more dashes.
var summaryRule = regexp.MustCompile(`\n-{3,}\n`)

// principleMarker classifies a segment as a stated legal principle rather
// than a plain summary.
const principleMarker = "المبدأ القانوني"

var decisionNumberPattern = regexp.MustCompile(`القرار رقم\s*(\d+)`)

// splitSummaries parses a compilation of decision summaries. Each
// rule-delimited segment becomes one chunk; segments quoting a legal
// principle are tagged principle_summary. A decision number found in the
// segment is kept both as the draft's DecisionNumber and in metadata.
func splitSummaries(text string) []Draft {
	parts := summaryRule.Split(text, -1)

	drafts := make([]Draft, 0, len(parts))
	for _, part := range parts {
		content := strings.TrimSpace(part)
		if content == "" {
			continue
		}

		ctype := ChunkSummary
		if strings.Contains(content, principleMarker) {
			ctype = ChunkPrincipleSummary
		}

		meta := map[string]string{}
		var decisionNum string
		if m := decisionNumberPattern.FindStringSubmatch(content); m != nil {
			decisionNum = m[1]
			meta["decision_number"] = decisionNum
		}

		drafts = append(drafts, Draft{
			Content:        content,
			Type:           ctype,
			DecisionNumber: decisionNum,
			Metadata:       meta,
		})
	}

	return drafts
}
