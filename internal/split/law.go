package split

import (
	"regexp"
	"strings"
)

// articlePattern matches a statutory article heading at line start, in
// Arabic ("المادة 15") or Latin ("Article 15") form.
var articlePattern = regexp.MustCompile(`(?m)^(المادة\s+\d+|Article\s+\d+)`)

var firstNumber = regexp.MustCompile(`\d+`)

// splitLaw parses a statutory code into one chunk per article. Text before
// the first heading becomes a preamble chunk when non-empty. Articles are
// kept atomic regardless of size.
func splitLaw(text string) []Draft {
	locs := articlePattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []Draft{{
			Content:  trimmed,
			Type:     ChunkPreamble,
			Metadata: map[string]string{"section": "preamble"},
		}}
	}

	drafts := make([]Draft, 0, len(locs)+1)

	if preamble := strings.TrimSpace(text[:locs[0][0]]); preamble != "" {
		drafts = append(drafts, Draft{
			Content:  preamble,
			Type:     ChunkPreamble,
			Metadata: map[string]string{"section": "preamble"},
		})
	}

	for i, loc := range locs {
		heading := strings.TrimSpace(text[loc[0]:loc[1]])
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(text[loc[1]:end])

		content := heading
		if body != "" {
			content = heading + "\n" + body
		}

		drafts = append(drafts, Draft{
			Content:              content,
			Type:                 ChunkArticle,
			StatuteArticleNumber: firstNumber.FindString(heading),
			Metadata:             map[string]string{"header": heading},
		})
	}

	return drafts
}
