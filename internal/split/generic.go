package split

import "strings"

// Default window geometry for fallback splitting, in runes.
const (
	DefaultWindowSize    = 3200
	DefaultWindowOverlap = 400
)

// Reasoning sections get wider windows since they carry the analytical
// content an answer will quote.
const (
	reasoningWindowSize    = 4000
	reasoningWindowOverlap = 400
)

// isBoundaryRune reports whether a window end may land on r. Window ends
// are nudged back to one of these so a window does not cut mid-word.
func isBoundaryRune(r rune) bool {
	return r == ' ' || r == '\n' || r == '.' || r == '،'
}

// windowText splits text into fixed-size overlapping windows of at most
// window runes. The cut point is nudged backward to the nearest boundary
// rune; if none exists within the window a hard cut is forced. The start
// offset strictly advances on every iteration, so the loop always
// terminates and window start offsets are non-decreasing.
func windowText(text string, window, overlap int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var out []string
	start := 0
	for start < len(runes) {
		end := start + window
		if end >= len(runes) {
			end = len(runes)
		} else {
			cut := end
			for cut > start && !isBoundaryRune(runes[cut]) {
				cut--
			}
			if cut == start {
				// No boundary inside the window, force the cut.
				cut = start + window
			}
			end = cut
		}

		if piece := strings.TrimSpace(string(runes[start:end])); piece != "" {
			out = append(out, piece)
		}

		if end >= len(runes) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return out
}

// splitGeneric windows text and tags every window with chunkType.
func splitGeneric(text string, window, overlap int, chunkType ChunkType) []Draft {
	pieces := windowText(text, window, overlap)
	drafts := make([]Draft, 0, len(pieces))
	for _, p := range pieces {
		drafts = append(drafts, Draft{
			Content:  p,
			Type:     chunkType,
			Metadata: map[string]string{},
		})
	}
	return drafts
}
