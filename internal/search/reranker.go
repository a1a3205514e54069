package search

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mizanlegal/mizan/internal/llm"
)

// Reranker re-scores candidates by judged relevance to the query. Scores
// land in [0, 1] and the output is always sorted descending then truncated
// to topK. Implementations must degrade instead of failing: a broken judge
// yields neutral scores, not an error.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []string, topK int) ([]ScoredCandidate, error)
}

// NoopReranker keeps the candidate order and assigns the neutral score.
type NoopReranker struct{}

// Rerank returns the first topK candidates unchanged.
func (NoopReranker) Rerank(_ context.Context, _ string, candidates []string, topK int) ([]ScoredCandidate, error) {
	return neutralFallback(candidates, topK), nil
}

const (
	// maxJudged bounds how many candidates go to the judge; the rest get
	// overflowScore so they remain selectable without another call.
	maxJudged     = 10
	overflowScore = 0.1

	// neutralScore is assigned to every candidate when judging fails.
	neutralScore = 0.5

	// candidateExcerptRunes truncates each candidate in the prompt.
	candidateExcerptRunes = 500
)

var jsonObjectPattern = regexp.MustCompile(`\{[^}]*\}`)

// LLMReranker judges candidates with an Arabic 0-10 rubric prompt sent to
// the text-completion provider.
type LLMReranker struct {
	client  llm.Client
	timeout time.Duration
}

// NewLLMReranker builds a reranker over client. timeout bounds the judging
// round-trip; zero means 30 seconds.
func NewLLMReranker(client llm.Client, timeout time.Duration) *LLMReranker {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &LLMReranker{client: client, timeout: timeout}
}

// Rerank judges at most the first 10 candidates and scores the rest at
// 0.1. On any judging failure, including timeout and unparseable output,
// every candidate falls back to the neutral 0.5 in original order; the
// error is never propagated.
func (r *LLMReranker) Rerank(ctx context.Context, query string, candidates []string, topK int) ([]ScoredCandidate, error) {
	if len(candidates) == 0 {
		return []ScoredCandidate{}, nil
	}

	judged := candidates
	if len(judged) > maxJudged {
		judged = judged[:maxJudged]
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	response, err := r.client.Complete(callCtx, buildRubricPrompt(query, judged))
	if err != nil {
		return neutralFallback(candidates, topK), nil
	}

	scores, ok := parseScores(response)
	if !ok {
		return neutralFallback(candidates, topK), nil
	}

	ranked := make([]ScoredCandidate, 0, len(candidates))
	for i, c := range judged {
		// Missing or malformed per-candidate score defaults to 0.
		ranked = append(ranked, ScoredCandidate{Content: c, Score: scores[strconv.Itoa(i+1)] / 10.0})
	}
	for _, c := range candidates[len(judged):] {
		ranked = append(ranked, ScoredCandidate{Content: c, Score: overflowScore})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if topK > 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}
	return ranked, nil
}

func neutralFallback(candidates []string, topK int) []ScoredCandidate {
	out := make([]ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, ScoredCandidate{Content: c, Score: neutralScore})
		if topK > 0 && len(out) == topK {
			break
		}
	}
	return out
}

// parseScores extracts the {"1": 8, ...} object from the judge's reply.
// A reply with no JSON object fails the whole parse; a non-numeric value
// only zeroes that candidate.
func parseScores(response string) (map[string]float64, bool) {
	match := jsonObjectPattern.FindString(response)
	if match == "" {
		return nil, false
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(match), &raw); err != nil {
		return nil, false
	}

	scores := make(map[string]float64, len(raw))
	for k, v := range raw {
		if f, ok := v.(float64); ok {
			scores[k] = f
		}
	}
	return scores, true
}

func buildRubricPrompt(query string, candidates []string) string {
	var b strings.Builder
	for i, c := range candidates {
		excerpt := []rune(c)
		if len(excerpt) > candidateExcerptRunes {
			excerpt = excerpt[:candidateExcerptRunes]
		}
		fmt.Fprintf(&b, "\n\n### النص %d:\n%s...\n", i+1, string(excerpt))
	}

	return fmt.Sprintf(`أنت خبير قانوني جزائري. مهمتك ترتيب النصوص القانونية حسب صلتها بالسؤال.

السؤال: %s

النصوص المتاحة:
%s

معايير التقييم (مهم جداً):
- 10: المادة القانونية التي تُعرِّف الجريمة أو تحدد العقوبة المطلوبة مباشرة
- 9-10: الاجتهاد القضائي (قرار المحكمة العليا/مجلس الدولة) الذي يفصل في نفس المسألة بدقة
- 8-9: مادة من نفس القانون تتحدث عن نفس الموضوع
- 5-7: مادة أو اجتهاد ذو صلة جزئية
- 0-4: مادة من قانون آخر أو موضوع مختلف

أجب بـ JSON فقط: {"1": 8, "2": 5, ...}`, query, b.String())
}
