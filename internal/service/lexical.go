package service

import (
	"math"
	"sort"

	"corpusqa/internal/textutil"
)

// lexicalRank orders fragments by the Ochiai coefficient of their token sets
// against the query, |A∩B| / sqrt(|A||B|), and returns the best topK ids.
func lexicalRank(query string, fragments []string, topK int) []int {
	qset := tokenSet(query)
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(fragments))
	for i, f := range fragments {
		scores[i] = pair{i, overlapOchiai(qset, tokenSet(f))}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if topK > len(scores) {
		topK = len(scores)
	}
	out := make([]int, topK)
	for i := range out {
		out[i] = scores[i].idx
	}
	return out
}

func tokenSet(s string) map[string]struct{} {
	tokens := textutil.Tokens(s)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func overlapOchiai(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range b {
		if _, ok := a[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(a))*float64(len(b)))
}
